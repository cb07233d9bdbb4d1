package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"contas/internal/domain/bill"
	"contas/internal/domain/card"
	"contas/internal/domain/category"
	"contas/internal/domain/charge"
	"contas/internal/domain/invoice"
)

// In-memory fakes backing the charge handler tests. The unit of work is a
// passthrough: every operation sees the same stores.

type memChargeRepo struct {
	seq     int
	charges map[string]*charge.Charge
}

func newMemChargeRepo() *memChargeRepo {
	return &memChargeRepo{charges: make(map[string]*charge.Charge)}
}

func (r *memChargeRepo) Create(ctx context.Context, params charge.CreateRecordParams) (*charge.Charge, error) {
	r.seq++
	c := &charge.Charge{
		ID:                fmt.Sprintf("charge-%d", r.seq),
		CardID:            params.CardID,
		UserID:            params.UserID,
		Description:       params.Description,
		Amount:            params.Amount,
		Type:              params.Type,
		Date:              params.Date,
		InvoiceYear:       params.Period.Year,
		InvoiceMonth:      int(params.Period.Month),
		InstallmentNumber: params.InstallmentNumber,
		InstallmentTotal:  params.InstallmentTotal,
		PurchaseID:        params.PurchaseID,
		CategoryID:        params.CategoryID,
	}
	r.charges[c.ID] = c
	return c, nil
}

func (r *memChargeRepo) GetByID(ctx context.Context, id string) (*charge.Charge, error) {
	return r.charges[id], nil
}

func (r *memChargeRepo) ListByCard(ctx context.Context, cardID string) ([]*charge.Charge, error) {
	var out []*charge.Charge
	for _, c := range r.charges {
		if c.CardID == cardID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memChargeRepo) ListByCardPeriod(ctx context.Context, cardID string, p invoice.Period) ([]*charge.Charge, error) {
	var out []*charge.Charge
	for _, c := range r.charges {
		if c.CardID == cardID && c.InvoiceYear == p.Year && c.InvoiceMonth == int(p.Month) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memChargeRepo) ListByPurchase(ctx context.Context, purchaseID string) ([]*charge.Charge, error) {
	var out []*charge.Charge
	for _, c := range r.charges {
		if c.PurchaseID == purchaseID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memChargeRepo) ListEntriesFromPeriod(ctx context.Context, cardID string, from invoice.Period) ([]card.LedgerEntry, error) {
	var out []card.LedgerEntry
	for _, c := range r.charges {
		p := invoice.Period{Year: c.InvoiceYear, Month: time.Month(c.InvoiceMonth)}
		if c.CardID == cardID && !p.Before(from) {
			out = append(out, card.LedgerEntry{Amount: c.Signed(), Period: p})
		}
	}
	return out, nil
}

func (r *memChargeRepo) Update(ctx context.Context, id string, params charge.UpdateRecordParams) (*charge.Charge, error) {
	c, ok := r.charges[id]
	if !ok {
		return nil, charge.ErrChargeNotFound
	}
	c.Description = params.Description
	c.Amount = params.Amount
	c.Type = params.Type
	c.Date = params.Date
	c.InvoiceYear = params.Period.Year
	c.InvoiceMonth = int(params.Period.Month)
	c.CategoryID = params.CategoryID
	return c, nil
}

func (r *memChargeRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.charges[id]; !ok {
		return charge.ErrChargeNotFound
	}
	delete(r.charges, id)
	return nil
}

type memBillRepo struct {
	seq   int
	bills map[string]*bill.Bill
}

func newMemBillRepo() *memBillRepo {
	return &memBillRepo{bills: make(map[string]*bill.Bill)}
}

func (r *memBillRepo) Create(ctx context.Context, params bill.CreateParams) (*bill.Bill, error) {
	r.seq++
	b := &bill.Bill{
		ID:           fmt.Sprintf("bill-%d", r.seq),
		UserID:       params.UserID,
		Description:  params.Description,
		Amount:       params.Amount,
		DueDate:      params.DueDate,
		Type:         params.Type,
		CategoryID:   params.CategoryID,
		CardID:       params.CardID,
		InvoiceYear:  params.InvoiceYear,
		InvoiceMonth: params.InvoiceMonth,
	}
	r.bills[b.ID] = b
	return b, nil
}

func (r *memBillRepo) GetByID(ctx context.Context, id string) (*bill.Bill, error) {
	return r.bills[id], nil
}

func (r *memBillRepo) GetByCardPeriod(ctx context.Context, cardID string, year int, month time.Month) (*bill.Bill, error) {
	for _, b := range r.bills {
		if b.CardID != nil && *b.CardID == cardID &&
			b.InvoiceYear != nil && *b.InvoiceYear == year &&
			b.InvoiceMonth != nil && *b.InvoiceMonth == int(month) {
			return b, nil
		}
	}
	return nil, nil
}

func (r *memBillRepo) ListByUserID(ctx context.Context, userID int64, year int, month time.Month) ([]*bill.Bill, error) {
	var out []*bill.Bill
	for _, b := range r.bills {
		if b.UserID == userID && b.DueDate.Year() == year && b.DueDate.Month() == month {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memBillRepo) ListUnpaidDueBefore(ctx context.Context, cutoff time.Time) ([]*bill.Bill, error) {
	var out []*bill.Bill
	for _, b := range r.bills {
		if !b.IsPaid && !b.DueDate.After(cutoff) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memBillRepo) Update(ctx context.Context, id string, params bill.UpdateParams) (*bill.Bill, error) {
	b, ok := r.bills[id]
	if !ok {
		return nil, bill.ErrBillNotFound
	}
	if params.Description != nil {
		b.Description = *params.Description
	}
	if params.Amount != nil {
		b.Amount = *params.Amount
	}
	if params.DueDate != nil {
		b.DueDate = *params.DueDate
	}
	if params.CategoryID != nil {
		b.CategoryID = params.CategoryID
	}
	if params.IsPaid != nil {
		b.IsPaid = *params.IsPaid
	}
	return b, nil
}

func (r *memBillRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.bills[id]; !ok {
		return bill.ErrBillNotFound
	}
	delete(r.bills, id)
	return nil
}

type memCategoryRepo struct {
	seq        int
	categories map[string]*category.Category
}

func newMemCategoryRepo() *memCategoryRepo {
	return &memCategoryRepo{categories: make(map[string]*category.Category)}
}

func (r *memCategoryRepo) Create(ctx context.Context, params category.CreateParams) (*category.Category, error) {
	r.seq++
	c := &category.Category{
		ID:       fmt.Sprintf("cat-%d", r.seq),
		UserID:   params.UserID,
		Name:     params.Name,
		IsSystem: params.IsSystem,
	}
	r.categories[c.ID] = c
	return c, nil
}

func (r *memCategoryRepo) GetByID(ctx context.Context, id string) (*category.Category, error) {
	return r.categories[id], nil
}

func (r *memCategoryRepo) GetOrCreate(ctx context.Context, userID int64, name string, isSystem bool) (*category.Category, error) {
	for _, c := range r.categories {
		if c.UserID == userID && c.Name == name {
			return c, nil
		}
	}
	return r.Create(ctx, category.CreateParams{UserID: userID, Name: name, IsSystem: isSystem})
}

func (r *memCategoryRepo) ListByUserID(ctx context.Context, userID int64) ([]*category.Category, error) {
	var out []*category.Category
	for _, c := range r.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCategoryRepo) Delete(ctx context.Context, id string) error {
	delete(r.categories, id)
	return nil
}

type passthroughUoW struct {
	repos charge.Repos
}

func (u *passthroughUoW) Do(ctx context.Context, fn func(r charge.Repos) error) error {
	return fn(u.repos)
}

type chargeFixture struct {
	cards      *MockCardRepo
	charges    *memChargeRepo
	bills      *memBillRepo
	categories *memCategoryRepo
	handler    *ChargeHandler
	card       *card.Card
}

func newChargeFixture() *chargeFixture {
	testCard := &card.Card{
		ID:           "card-1",
		UserID:       1,
		Name:         "Platinum",
		Limit:        1000,
		CurrentLimit: 1000,
		ClosingDay:   10,
		DueDay:       17,
	}

	cards := &MockCardRepo{
		GetByIDFunc: func(ctx context.Context, id string) (*card.Card, error) {
			if id == testCard.ID {
				return testCard, nil
			}
			return nil, nil
		},
	}
	cards.GetForUpdateFunc = cards.GetByIDFunc

	charges := newMemChargeRepo()
	bills := newMemBillRepo()
	categories := newMemCategoryRepo()

	uow := &passthroughUoW{repos: charge.Repos{
		Cards:      cards,
		Charges:    charges,
		Bills:      bills,
		Categories: categories,
	}}

	svc := charge.NewService(uow, cards, charges, bills)
	return &chargeFixture{
		cards:      cards,
		charges:    charges,
		bills:      bills,
		categories: categories,
		handler:    NewChargeHandler(svc),
		card:       testCard,
	}
}

func TestHandleCreateCharge_Installments(t *testing.T) {
	f := newChargeFixture()

	body, _ := json.Marshal(map[string]any{
		"description":  "notebook",
		"amount":       300.0,
		"type":         "EXPENSE",
		"date":         "2025-01-05",
		"installments": 3,
	})
	req := authedRequest(http.MethodPost, "/api/cards/card-1/charges", body, 1)
	req.SetPathValue("id", "card-1")
	rr := httptest.NewRecorder()

	f.handler.HandleCardCharges(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("handler returned wrong status code: got %v want %v (%s)", rr.Code, http.StatusCreated, rr.Body.String())
	}

	var created []*charge.Charge
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("expected 3 installment charges, got %d", len(created))
	}
	if f.card.CurrentLimit != 700 {
		t.Errorf("expected available limit 700 after purchase, got %.2f", f.card.CurrentLimit)
	}
	if len(f.bills.bills) != 3 {
		t.Errorf("expected 3 invoice bills, got %d", len(f.bills.bills))
	}
}

func TestHandleCreateCharge_InvalidBody(t *testing.T) {
	f := newChargeFixture()

	body, _ := json.Marshal(map[string]any{
		"description": "notebook",
		"amount":      -5.0,
		"date":        "2025-01-05",
	})
	req := authedRequest(http.MethodPost, "/api/cards/card-1/charges", body, 1)
	req.SetPathValue("id", "card-1")
	rr := httptest.NewRecorder()

	f.handler.HandleCardCharges(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusBadRequest)
	}
}

func TestHandleDeleteCharge_MissingIsNoContent(t *testing.T) {
	f := newChargeFixture()

	req := authedRequest(http.MethodDelete, "/api/charges/nope", nil, 1)
	req.SetPathValue("id", "nope")
	rr := httptest.NewRecorder()

	f.handler.HandleChargeByID(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusNoContent)
	}
}

func TestHandleInvoice(t *testing.T) {
	f := newChargeFixture()

	body, _ := json.Marshal(map[string]any{
		"description": "mercado",
		"amount":      250.50,
		"type":        "EXPENSE",
		"date":        "2025-01-05",
	})
	req := authedRequest(http.MethodPost, "/api/cards/card-1/charges", body, 1)
	req.SetPathValue("id", "card-1")
	rr := httptest.NewRecorder()
	f.handler.HandleCardCharges(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("setup charge failed: %d (%s)", rr.Code, rr.Body.String())
	}

	req = authedRequest(http.MethodGet, "/api/cards/card-1/invoice?year=2025&month=1", nil, 1)
	req.SetPathValue("id", "card-1")
	rr = httptest.NewRecorder()
	f.handler.HandleInvoice(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v (%s)", rr.Code, http.StatusOK, rr.Body.String())
	}

	var summary charge.InvoiceSummary
	if err := json.Unmarshal(rr.Body.Bytes(), &summary); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if summary.Total != 250.50 {
		t.Errorf("expected invoice total 250.50, got %.2f", summary.Total)
	}
	if len(summary.Charges) != 1 {
		t.Errorf("expected 1 charge on invoice, got %d", len(summary.Charges))
	}
}

func TestHandleInvoicePeriod(t *testing.T) {
	f := newChargeFixture()

	req := authedRequest(http.MethodGet, "/api/invoice-period?date=2025-01-15&closingDay=10&dueDay=17", nil, 1)
	rr := httptest.NewRecorder()
	f.handler.HandleInvoicePeriod(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}

	var resp map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["period"] != "2025-02" {
		t.Errorf("expected period 2025-02, got %v", resp["period"])
	}
}

func TestHandleInvoicePeriod_BadParams(t *testing.T) {
	f := newChargeFixture()

	req := authedRequest(http.MethodGet, "/api/invoice-period?date=2025-01-15&closingDay=40&dueDay=17", nil, 1)
	rr := httptest.NewRecorder()
	f.handler.HandleInvoicePeriod(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusBadRequest)
	}
}
