package card

import (
	"math"

	"contas/internal/domain/invoice"
)

// LedgerEntry is a signed charge as seen by the credit ledger: positive
// amounts consume credit (expenses), negative amounts restore it (incomes
// and refunds).
type LedgerEntry struct {
	Amount float64
	Period invoice.Period
}

// ApplyUsage folds a signed delta into the available credit. A positive
// delta lowers CurrentLimit.
func (c *Card) ApplyUsage(delta float64) {
	c.CurrentLimit = round2(c.CurrentLimit - delta)
}

// RevertUsage undoes a previously applied delta.
func (c *Card) RevertUsage(delta float64) {
	c.CurrentLimit = round2(c.CurrentLimit + delta)
}

// Recalculate rebuilds CurrentLimit from scratch: the configured limit minus
// every entry that still weighs on the card, meaning entries in the current
// invoice period or later. Entries on already-collected invoices no longer
// hold credit.
func (c *Card) Recalculate(entries []LedgerEntry, current invoice.Period) {
	var used float64
	for _, e := range entries {
		if e.Period.Before(current) {
			continue
		}
		used += e.Amount
	}
	c.CurrentLimit = round2(c.Limit - used)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
