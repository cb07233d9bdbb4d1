package charge

import (
	"fmt"
	"time"

	"contas/internal/domain/invoice"
)

// Installment is one slice of a purchase: its own amount, date and invoice
// period.
type Installment struct {
	Number int
	Amount float64
	Date   time.Time
	Period invoice.Period
}

// Label renders the conventional "i/n" suffix for an installment of a
// purchase split n ways.
func (i Installment) Label(total int) string {
	return fmt.Sprintf("%d/%d", i.Number, total)
}

// BuildInstallmentPlan splits a purchase total into count installments.
//
// Every installment is total/count rounded to cents, except the last, which
// absorbs the rounding remainder so the plan always sums back to the exact
// total (100/3 becomes 33.33, 33.33, 33.34). Dates advance by calendar
// months with end-of-month clamping, and each installment lands one invoice
// period after the previous, starting from the period the caller resolved
// for the purchase date.
func BuildInstallmentPlan(total float64, count int, purchaseDate time.Time, first invoice.Period) ([]Installment, error) {
	if total <= 0 {
		return nil, ErrInvalidAmount
	}
	if count < 1 {
		return nil, ErrInvalidInstallments
	}

	base := round2(total / float64(count))
	last := round2(total - base*float64(count-1))
	if last <= 0 {
		// Degenerate rounding (tiny totals over many installments)
		return nil, fmt.Errorf("cannot split %.2f into %d installments", total, count)
	}

	plan := make([]Installment, count)
	for i := 0; i < count; i++ {
		amount := base
		if i == count-1 {
			amount = last
		}
		plan[i] = Installment{
			Number: i + 1,
			Amount: amount,
			Date:   invoice.AddMonthsClamped(purchaseDate, i),
			Period: first.AddMonths(i),
		}
	}

	return plan, nil
}
