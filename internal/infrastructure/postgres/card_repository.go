package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"contas/internal/domain/card"
)

type CardRepository struct {
	db querier
}

func NewCardRepository(db *DB) *CardRepository {
	return &CardRepository{db: db}
}

const cardColumns = `id, user_id, name, bank, credit_limit, current_limit, closing_day, due_day, created_at, updated_at`

func (r *CardRepository) Create(ctx context.Context, params card.CreateParams) (*card.Card, error) {
	query := `
		INSERT INTO cards (id, user_id, name, bank, credit_limit, current_limit, closing_day, due_day)
		VALUES ($1, $2, $3, $4, $5, $5, $6, $7)
		RETURNING ` + cardColumns

	var c card.Card
	err := r.db.QueryRowContext(
		ctx, query,
		uuid.NewString(), params.UserID, params.Name, params.Bank,
		params.Limit, params.ClosingDay, params.DueDay,
	).Scan(
		&c.ID, &c.UserID, &c.Name, &c.Bank, &c.Limit, &c.CurrentLimit,
		&c.ClosingDay, &c.DueDay, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}

	return &c, nil
}

func (r *CardRepository) GetByID(ctx context.Context, id string) (*card.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

func (r *CardRepository) GetForUpdate(ctx context.Context, id string) (*card.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1 FOR UPDATE`
	return r.scanOne(ctx, query, id)
}

func (r *CardRepository) scanOne(ctx context.Context, query string, id string) (*card.Card, error) {
	var c card.Card
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.UserID, &c.Name, &c.Bank, &c.Limit, &c.CurrentLimit,
		&c.ClosingDay, &c.DueDay, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	return &c, nil
}

func (r *CardRepository) ListByUserID(ctx context.Context, userID int64) ([]*card.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE user_id = $1 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []*card.Card
	for rows.Next() {
		var c card.Card
		err := rows.Scan(
			&c.ID, &c.UserID, &c.Name, &c.Bank, &c.Limit, &c.CurrentLimit,
			&c.ClosingDay, &c.DueDay, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cards: %w", err)
	}

	return cards, nil
}

// ListUserIDs returns every user that owns at least one card. Used by the
// admin recalculate command.
func (r *CardRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM cards ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list card owners: %w", err)
	}
	defer rows.Close()

	var userIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		userIDs = append(userIDs, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating card owners: %w", err)
	}

	return userIDs, nil
}

func (r *CardRepository) Update(ctx context.Context, id string, params card.UpdateParams) (*card.Card, error) {
	query := `
		UPDATE cards
		SET name = COALESCE($1, name),
		    bank = COALESCE($2, bank),
		    credit_limit = COALESCE($3, credit_limit),
		    closing_day = COALESCE($4, closing_day),
		    due_day = COALESCE($5, due_day),
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $6
		RETURNING ` + cardColumns

	var c card.Card
	err := r.db.QueryRowContext(
		ctx, query,
		params.Name, params.Bank, params.Limit, params.ClosingDay, params.DueDay, id,
	).Scan(
		&c.ID, &c.UserID, &c.Name, &c.Bank, &c.Limit, &c.CurrentLimit,
		&c.ClosingDay, &c.DueDay, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, card.ErrCardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update card: %w", err)
	}

	return &c, nil
}

func (r *CardRepository) SaveCurrentLimit(ctx context.Context, id string, currentLimit float64) error {
	query := `UPDATE cards SET current_limit = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, currentLimit, id)
	if err != nil {
		return fmt.Errorf("failed to save card limit: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return card.ErrCardNotFound
	}

	return nil
}

func (r *CardRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM cards WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return card.ErrCardNotFound
	}

	return nil
}
