package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"contas/internal/domain/notification"
)

type NotificationRepository struct {
	db querier
}

func NewNotificationRepository(db *DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// UpsertDeviceToken registers a device token, reassigning it when another
// user already owns it (same device, new login).
func (r *NotificationRepository) UpsertDeviceToken(ctx context.Context, params notification.CreateDeviceTokenParams) (*notification.DeviceToken, error) {
	query := `
		INSERT INTO device_tokens (id, user_id, token, device_type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token) DO UPDATE
			SET user_id = EXCLUDED.user_id,
			    device_type = EXCLUDED.device_type,
			    is_active = TRUE,
			    last_used = CURRENT_TIMESTAMP
		RETURNING id, user_id, token, device_type, is_active, created_at, last_used
	`

	var dt notification.DeviceToken
	err := r.db.QueryRowContext(
		ctx, query,
		uuid.NewString(), params.UserID, params.Token, params.DeviceType,
	).Scan(&dt.ID, &dt.UserID, &dt.Token, &dt.DeviceType, &dt.IsActive, &dt.CreatedAt, &dt.LastUsed)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert device token: %w", err)
	}

	return &dt, nil
}

func (r *NotificationRepository) GetActiveTokensByUserID(ctx context.Context, userID int64) ([]*notification.DeviceToken, error) {
	query := `
		SELECT id, user_id, token, device_type, is_active, created_at, last_used
		FROM device_tokens
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY last_used DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*notification.DeviceToken
	for rows.Next() {
		var dt notification.DeviceToken
		if err := rows.Scan(&dt.ID, &dt.UserID, &dt.Token, &dt.DeviceType, &dt.IsActive, &dt.CreatedAt, &dt.LastUsed); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, &dt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating device tokens: %w", err)
	}

	return tokens, nil
}

func (r *NotificationRepository) DeactivateToken(ctx context.Context, token string) error {
	query := `UPDATE device_tokens SET is_active = FALSE WHERE token = $1`

	result, err := r.db.ExecContext(ctx, query, token)
	if err != nil {
		return fmt.Errorf("failed to deactivate device token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return notification.ErrDeviceTokenNotFound
	}

	return nil
}

func (r *NotificationRepository) GetPreferences(ctx context.Context, userID int64) (*notification.NotificationPreference, error) {
	query := `
		SELECT id, user_id, bills_enabled, invoices_enabled, general_enabled, updated_at
		FROM notification_preferences
		WHERE user_id = $1
	`

	var pref notification.NotificationPreference
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&pref.ID, &pref.UserID, &pref.BillsEnabled, &pref.InvoicesEnabled,
		&pref.GeneralEnabled, &pref.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notification.ErrPreferencesNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification preferences: %w", err)
	}

	return &pref, nil
}

func (r *NotificationRepository) UpsertPreferences(ctx context.Context, userID int64, params notification.UpdatePreferenceParams) (*notification.NotificationPreference, error) {
	query := `
		INSERT INTO notification_preferences (id, user_id, bills_enabled, invoices_enabled, general_enabled)
		VALUES (
			$1,
			$2,
			COALESCE($3::boolean, TRUE),
			COALESCE($4::boolean, TRUE),
			COALESCE($5::boolean, TRUE)
		)
		ON CONFLICT (user_id) DO UPDATE
			SET bills_enabled = COALESCE($3::boolean, notification_preferences.bills_enabled),
			    invoices_enabled = COALESCE($4::boolean, notification_preferences.invoices_enabled),
			    general_enabled = COALESCE($5::boolean, notification_preferences.general_enabled),
			    updated_at = CURRENT_TIMESTAMP
		RETURNING id, user_id, bills_enabled, invoices_enabled, general_enabled, updated_at
	`

	var pref notification.NotificationPreference
	err := r.db.QueryRowContext(
		ctx, query,
		uuid.NewString(), userID,
		params.BillsEnabled, params.InvoicesEnabled, params.GeneralEnabled,
	).Scan(
		&pref.ID, &pref.UserID, &pref.BillsEnabled, &pref.InvoicesEnabled,
		&pref.GeneralEnabled, &pref.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert notification preferences: %w", err)
	}

	return &pref, nil
}

func (r *NotificationRepository) CreateNotification(ctx context.Context, params notification.CreateNotificationParams) (*notification.Notification, error) {
	dataJSON, err := json.Marshal(params.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification data: %w", err)
	}

	query := `
		INSERT INTO notifications (id, user_id, title, message, category, data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, title, message, category, data, opened_at, created_at
	`

	n, err := scanNotification(r.db.QueryRowContext(
		ctx, query,
		uuid.NewString(), params.UserID, params.Title, params.Message, params.Category, dataJSON,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	return n, nil
}

func (r *NotificationRepository) ListByUserID(ctx context.Context, userID int64, page, perPage int) ([]*notification.Notification, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1`,
		userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := `
		SELECT id, user_id, title, message, category, data, opened_at, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating notifications: %w", err)
	}

	return notifications, total, nil
}

func (r *NotificationRepository) MarkOpened(ctx context.Context, notificationID string, userID int64) error {
	query := `
		UPDATE notifications
		SET opened_at = COALESCE(opened_at, CURRENT_TIMESTAMP)
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification as opened: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notification.ErrNotificationNotFound
	}

	return nil
}

func scanNotification(r row) (*notification.Notification, error) {
	var n notification.Notification
	var dataBytes []byte
	var openedAt sql.NullTime

	err := r.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Category, &dataBytes, &openedAt, &n.CreatedAt)
	if err != nil {
		return nil, err
	}

	if openedAt.Valid {
		n.OpenedAt = &openedAt.Time
	}
	if len(dataBytes) > 0 {
		if err := json.Unmarshal(dataBytes, &n.Data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal notification data: %w", err)
		}
	}

	return &n, nil
}
