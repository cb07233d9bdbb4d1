package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"contas/internal/domain/bill"
)

type BillRepository struct {
	db querier
}

func NewBillRepository(db *DB) *BillRepository {
	return &BillRepository{db: db}
}

const billColumns = `id, user_id, description, amount, due_date, type, is_paid,
       category_id, card_id, invoice_year, invoice_month, paid_at, created_at, updated_at`

func (r *BillRepository) Create(ctx context.Context, params bill.CreateParams) (*bill.Bill, error) {
	query := `
		INSERT INTO bills (id, user_id, description, amount, due_date, type,
		                   category_id, card_id, invoice_year, invoice_month)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + billColumns

	row := r.db.QueryRowContext(
		ctx, query,
		uuid.NewString(), params.UserID, params.Description, params.Amount,
		params.DueDate, params.Type, params.CategoryID, params.CardID,
		params.InvoiceYear, params.InvoiceMonth,
	)

	b, err := scanBill(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create bill: %w", err)
	}
	return b, nil
}

func (r *BillRepository) GetByID(ctx context.Context, id string) (*bill.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE id = $1`

	b, err := scanBill(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return b, nil
}

func (r *BillRepository) GetByCardPeriod(ctx context.Context, cardID string, year int, month time.Month) (*bill.Bill, error) {
	query := `SELECT ` + billColumns + `
		FROM bills
		WHERE card_id = $1 AND invoice_year = $2 AND invoice_month = $3`

	b, err := scanBill(r.db.QueryRowContext(ctx, query, cardID, year, int(month)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice bill: %w", err)
	}
	return b, nil
}

func (r *BillRepository) ListByUserID(ctx context.Context, userID int64, year int, month time.Month) ([]*bill.Bill, error) {
	query := `SELECT ` + billColumns + `
		FROM bills
		WHERE user_id = $1
		  AND date_part('year', due_date) = $2
		  AND date_part('month', due_date) = $3
		ORDER BY due_date, created_at`

	rows, err := r.db.QueryContext(ctx, query, userID, year, int(month))
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	return scanBills(rows)
}

func (r *BillRepository) ListUnpaidDueBefore(ctx context.Context, cutoff time.Time) ([]*bill.Bill, error) {
	query := `SELECT ` + billColumns + `
		FROM bills
		WHERE is_paid = FALSE AND due_date <= $1
		ORDER BY due_date`

	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list unpaid bills: %w", err)
	}
	defer rows.Close()

	return scanBills(rows)
}

func (r *BillRepository) Update(ctx context.Context, id string, params bill.UpdateParams) (*bill.Bill, error) {
	query := `
		UPDATE bills
		SET description = COALESCE($1, description),
		    amount = COALESCE($2, amount),
		    due_date = COALESCE($3, due_date),
		    category_id = COALESCE($4, category_id),
		    is_paid = COALESCE($5, is_paid),
		    paid_at = CASE
		        WHEN $5 = TRUE THEN CURRENT_TIMESTAMP
		        WHEN $5 = FALSE THEN NULL
		        ELSE paid_at
		    END,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $6
		RETURNING ` + billColumns

	b, err := scanBill(r.db.QueryRowContext(
		ctx, query,
		params.Description, params.Amount, params.DueDate, params.CategoryID, params.IsPaid, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, bill.ErrBillNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update bill: %w", err)
	}
	return b, nil
}

func (r *BillRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM bills WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return bill.ErrBillNotFound
	}

	return nil
}

func scanBill(r row) (*bill.Bill, error) {
	var b bill.Bill
	var categoryID, cardID sql.NullString
	var invoiceYear, invoiceMonth sql.NullInt64
	var paidAt sql.NullTime

	err := r.Scan(
		&b.ID, &b.UserID, &b.Description, &b.Amount, &b.DueDate, &b.Type, &b.IsPaid,
		&categoryID, &cardID, &invoiceYear, &invoiceMonth, &paidAt,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	applyNullableBillFields(&b, categoryID, cardID, invoiceYear, invoiceMonth, paidAt)
	return &b, nil
}

func scanBills(rows *sql.Rows) ([]*bill.Bill, error) {
	var bills []*bill.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bills: %w", err)
	}

	return bills, nil
}

func applyNullableBillFields(b *bill.Bill, categoryID, cardID sql.NullString,
	invoiceYear, invoiceMonth sql.NullInt64, paidAt sql.NullTime) {
	if categoryID.Valid {
		b.CategoryID = &categoryID.String
	}
	if cardID.Valid {
		b.CardID = &cardID.String
	}
	if invoiceYear.Valid {
		year := int(invoiceYear.Int64)
		b.InvoiceYear = &year
	}
	if invoiceMonth.Valid {
		month := int(invoiceMonth.Int64)
		b.InvoiceMonth = &month
	}
	if paidAt.Valid {
		b.PaidAt = &paidAt.Time
	}
}
