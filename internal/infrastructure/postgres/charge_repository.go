package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"contas/internal/domain/card"
	"contas/internal/domain/charge"
	"contas/internal/domain/invoice"
)

type ChargeRepository struct {
	db querier
}

func NewChargeRepository(db *DB) *ChargeRepository {
	return &ChargeRepository{db: db}
}

const chargeColumns = `id, card_id, user_id, description, amount, type, charge_date,
       invoice_year, invoice_month, installment_number, installment_total,
       purchase_id, category_id, created_at, updated_at`

func (r *ChargeRepository) Create(ctx context.Context, params charge.CreateRecordParams) (*charge.Charge, error) {
	query := `
		INSERT INTO card_charges (id, card_id, user_id, description, amount, type, charge_date,
		                          invoice_year, invoice_month, installment_number, installment_total,
		                          purchase_id, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + chargeColumns

	var c charge.Charge
	var categoryID sql.NullString
	err := r.db.QueryRowContext(
		ctx, query,
		uuid.NewString(), params.CardID, params.UserID, params.Description,
		params.Amount, params.Type, params.Date,
		params.Period.Year, int(params.Period.Month),
		params.InstallmentNumber, params.InstallmentTotal,
		params.PurchaseID, params.CategoryID,
	).Scan(
		&c.ID, &c.CardID, &c.UserID, &c.Description, &c.Amount, &c.Type, &c.Date,
		&c.InvoiceYear, &c.InvoiceMonth, &c.InstallmentNumber, &c.InstallmentTotal,
		&c.PurchaseID, &categoryID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create charge: %w", err)
	}

	applyNullableChargeFields(&c, categoryID)
	return &c, nil
}

func (r *ChargeRepository) GetByID(ctx context.Context, id string) (*charge.Charge, error) {
	query := `SELECT ` + chargeColumns + ` FROM card_charges WHERE id = $1`

	var c charge.Charge
	var categoryID sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.CardID, &c.UserID, &c.Description, &c.Amount, &c.Type, &c.Date,
		&c.InvoiceYear, &c.InvoiceMonth, &c.InstallmentNumber, &c.InstallmentTotal,
		&c.PurchaseID, &categoryID, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get charge: %w", err)
	}

	applyNullableChargeFields(&c, categoryID)
	return &c, nil
}

func (r *ChargeRepository) ListByCard(ctx context.Context, cardID string) ([]*charge.Charge, error) {
	query := `SELECT ` + chargeColumns + `
		FROM card_charges
		WHERE card_id = $1
		ORDER BY invoice_year DESC, invoice_month DESC, charge_date DESC`

	rows, err := r.db.QueryContext(ctx, query, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list charges: %w", err)
	}
	defer rows.Close()

	return scanCharges(rows)
}

func (r *ChargeRepository) ListByCardPeriod(ctx context.Context, cardID string, p invoice.Period) ([]*charge.Charge, error) {
	query := `SELECT ` + chargeColumns + `
		FROM card_charges
		WHERE card_id = $1 AND invoice_year = $2 AND invoice_month = $3
		ORDER BY charge_date, created_at`

	rows, err := r.db.QueryContext(ctx, query, cardID, p.Year, int(p.Month))
	if err != nil {
		return nil, fmt.Errorf("failed to list charges for period: %w", err)
	}
	defer rows.Close()

	return scanCharges(rows)
}

func (r *ChargeRepository) ListByPurchase(ctx context.Context, purchaseID string) ([]*charge.Charge, error) {
	query := `SELECT ` + chargeColumns + `
		FROM card_charges
		WHERE purchase_id = $1
		ORDER BY installment_number`

	rows, err := r.db.QueryContext(ctx, query, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list charges by purchase: %w", err)
	}
	defer rows.Close()

	return scanCharges(rows)
}

// ListEntriesFromPeriod returns the signed ledger entries of a card from the
// given invoice period onward. Expenses come back positive, incomes
// negative, so the caller can subtract the sum straight from the limit.
func (r *ChargeRepository) ListEntriesFromPeriod(ctx context.Context, cardID string, from invoice.Period) ([]card.LedgerEntry, error) {
	query := `
		SELECT CASE WHEN type = 'INCOME' THEN -amount ELSE amount END, invoice_year, invoice_month
		FROM card_charges
		WHERE card_id = $1 AND (invoice_year > $2 OR (invoice_year = $2 AND invoice_month >= $3))
	`

	rows, err := r.db.QueryContext(ctx, query, cardID, from.Year, int(from.Month))
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []card.LedgerEntry
	for rows.Next() {
		var e card.LedgerEntry
		var year, month int
		if err := rows.Scan(&e.Amount, &year, &month); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		e.Period = invoice.Period{Year: year, Month: time.Month(month)}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entries: %w", err)
	}

	return entries, nil
}

func (r *ChargeRepository) Update(ctx context.Context, id string, params charge.UpdateRecordParams) (*charge.Charge, error) {
	query := `
		UPDATE card_charges
		SET description = $1,
		    amount = $2,
		    type = $3,
		    charge_date = $4,
		    invoice_year = $5,
		    invoice_month = $6,
		    category_id = $7,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $8
		RETURNING ` + chargeColumns

	var c charge.Charge
	var categoryID sql.NullString
	err := r.db.QueryRowContext(
		ctx, query,
		params.Description, params.Amount, params.Type, params.Date,
		params.Period.Year, int(params.Period.Month), params.CategoryID, id,
	).Scan(
		&c.ID, &c.CardID, &c.UserID, &c.Description, &c.Amount, &c.Type, &c.Date,
		&c.InvoiceYear, &c.InvoiceMonth, &c.InstallmentNumber, &c.InstallmentTotal,
		&c.PurchaseID, &categoryID, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, charge.ErrChargeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update charge: %w", err)
	}

	applyNullableChargeFields(&c, categoryID)
	return &c, nil
}

func (r *ChargeRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM card_charges WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete charge: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return charge.ErrChargeNotFound
	}

	return nil
}

func scanCharges(rows *sql.Rows) ([]*charge.Charge, error) {
	var charges []*charge.Charge
	for rows.Next() {
		var c charge.Charge
		var categoryID sql.NullString
		err := rows.Scan(
			&c.ID, &c.CardID, &c.UserID, &c.Description, &c.Amount, &c.Type, &c.Date,
			&c.InvoiceYear, &c.InvoiceMonth, &c.InstallmentNumber, &c.InstallmentTotal,
			&c.PurchaseID, &categoryID, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan charge: %w", err)
		}

		applyNullableChargeFields(&c, categoryID)
		charges = append(charges, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating charges: %w", err)
	}

	return charges, nil
}

func applyNullableChargeFields(c *charge.Charge, categoryID sql.NullString) {
	if categoryID.Valid {
		c.CategoryID = &categoryID.String
	}
}
