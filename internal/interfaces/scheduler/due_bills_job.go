package scheduler

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"

	"contas/internal/domain/bill"
	"contas/internal/domain/notification"
)

// Notifier is the slice of the notification service the due-bill job needs.
type Notifier interface {
	SendToUser(ctx context.Context, userID int64, title, body, category string, data map[string]string) error
}

// DueBillsJob pushes a reminder for each of one user's unpaid bills that are
// due soon or overdue.
type DueBillsJob struct {
	userID   int64
	bills    []*bill.Bill
	notifier Notifier
	now      time.Time
}

// NewDueBillsJob creates a due-bill reminder job for a single user.
func NewDueBillsJob(userID int64, bills []*bill.Bill, notifier Notifier, now time.Time) *DueBillsJob {
	return &DueBillsJob{
		userID:   userID,
		bills:    bills,
		notifier: notifier,
		now:      now,
	}
}

// Execute sends one notification per bill. Invoice bills go out under the
// invoices category, everything else under bills, so user preferences apply
// per kind.
func (j *DueBillsJob) Execute(ctx context.Context) error {
	var failed int
	for _, b := range j.bills {
		title, body := j.describe(b)

		category := notification.CategoryBills
		if b.IsInvoice() {
			category = notification.CategoryInvoices
		}

		err := j.notifier.SendToUser(ctx, j.userID, title, body, category, map[string]string{
			"billId": b.ID,
		})
		if err != nil {
			log.Printf("Due-bill reminder failed for bill %s (user %d): %v", b.ID, j.userID, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to send %d of %d due-bill reminders", failed, len(j.bills))
	}
	return nil
}

func (j *DueBillsJob) describe(b *bill.Bill) (title, body string) {
	title = "Bill due soon"
	if b.IsInvoice() {
		title = "Invoice due soon"
	}

	today := j.now.Truncate(24 * time.Hour)
	due := b.DueDate.Truncate(24 * time.Hour)
	days := int(due.Sub(today).Hours() / 24)

	switch {
	case days < 0:
		title = "Bill overdue"
		if b.IsInvoice() {
			title = "Invoice overdue"
		}
		body = fmt.Sprintf("%s (%.2f) was due on %s", b.Description, b.Amount, b.DueDate.Format("Jan 2"))
	case days == 0:
		body = fmt.Sprintf("%s (%.2f) is due today", b.Description, b.Amount)
	case days == 1:
		body = fmt.Sprintf("%s (%.2f) is due tomorrow", b.Description, b.Amount)
	default:
		body = fmt.Sprintf("%s (%.2f) is due in %d days", b.Description, b.Amount, days)
	}

	return title, body
}

// UserID returns the user this job notifies.
func (j *DueBillsJob) UserID() string {
	return strconv.FormatInt(j.userID, 10)
}

// Description returns a human-readable description of the job.
func (j *DueBillsJob) Description() string {
	return fmt.Sprintf("Due-bill reminders for user %d (%d bills)", j.userID, len(j.bills))
}

// NewDueBillsProvider builds the job provider the scheduler runs: it scans
// for unpaid bills due within the next withinDays days (overdue included)
// and groups them into one job per user.
func NewDueBillsProvider(bills bill.Repository, notifier Notifier, withinDays int, now func() time.Time) func(context.Context) ([]Job, error) {
	return func(ctx context.Context) ([]Job, error) {
		at := now()
		cutoff := at.AddDate(0, 0, withinDays)

		due, err := bills.ListUnpaidDueBefore(ctx, cutoff)
		if err != nil {
			return nil, fmt.Errorf("failed to list due bills: %w", err)
		}

		byUser := make(map[int64][]*bill.Bill)
		for _, b := range due {
			byUser[b.UserID] = append(byUser[b.UserID], b)
		}

		userIDs := make([]int64, 0, len(byUser))
		for userID := range byUser {
			userIDs = append(userIDs, userID)
		}
		sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

		jobs := make([]Job, 0, len(userIDs))
		for _, userID := range userIDs {
			jobs = append(jobs, NewDueBillsJob(userID, byUser[userID], notifier, at))
		}

		return jobs, nil
	}
}
