package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"contas/internal/domain/card"
	"contas/internal/domain/invoice"
	"contas/internal/shared/middleware"
)

// MockCardRepo implements card.Repository for testing
type MockCardRepo struct {
	CreateFunc           func(ctx context.Context, params card.CreateParams) (*card.Card, error)
	GetByIDFunc          func(ctx context.Context, id string) (*card.Card, error)
	GetForUpdateFunc     func(ctx context.Context, id string) (*card.Card, error)
	ListByUserIDFunc     func(ctx context.Context, userID int64) ([]*card.Card, error)
	UpdateFunc           func(ctx context.Context, id string, params card.UpdateParams) (*card.Card, error)
	SaveCurrentLimitFunc func(ctx context.Context, id string, currentLimit float64) error
	DeleteFunc           func(ctx context.Context, id string) error
}

func (m *MockCardRepo) Create(ctx context.Context, params card.CreateParams) (*card.Card, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockCardRepo) GetByID(ctx context.Context, id string) (*card.Card, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockCardRepo) GetForUpdate(ctx context.Context, id string) (*card.Card, error) {
	if m.GetForUpdateFunc != nil {
		return m.GetForUpdateFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockCardRepo) ListByUserID(ctx context.Context, userID int64) ([]*card.Card, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockCardRepo) Update(ctx context.Context, id string, params card.UpdateParams) (*card.Card, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, params)
	}
	return nil, nil
}

func (m *MockCardRepo) SaveCurrentLimit(ctx context.Context, id string, currentLimit float64) error {
	if m.SaveCurrentLimitFunc != nil {
		return m.SaveCurrentLimitFunc(ctx, id, currentLimit)
	}
	return nil
}

func (m *MockCardRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockUsageSource implements card.UsageSource for testing
type MockUsageSource struct {
	ListEntriesFromPeriodFunc func(ctx context.Context, cardID string, from invoice.Period) ([]card.LedgerEntry, error)
}

func (m *MockUsageSource) ListEntriesFromPeriod(ctx context.Context, cardID string, from invoice.Period) ([]card.LedgerEntry, error) {
	if m.ListEntriesFromPeriodFunc != nil {
		return m.ListEntriesFromPeriodFunc(ctx, cardID, from)
	}
	return nil, nil
}

// cardPassthroughUoW implements card.UnitOfWork over the mocks without a
// real transaction.
type cardPassthroughUoW struct {
	cards card.Repository
	usage card.UsageSource
}

func (u cardPassthroughUoW) Do(ctx context.Context, fn func(card.Repository, card.UsageSource) error) error {
	return fn(u.cards, u.usage)
}

func newCardService(repo card.Repository, usage card.UsageSource) *card.Service {
	return card.NewService(cardPassthroughUoW{cards: repo, usage: usage}, repo)
}

func authedRequest(method, target string, body []byte, userID int64) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func TestHandleCreateCard(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]any
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]any{
				"name":       "Platinum",
				"bank":       "Nubank",
				"limit":      5000.0,
				"closingDay": 10,
				"dueDay":     17,
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Invalid Limit",
			body: map[string]any{
				"name":       "Platinum",
				"bank":       "Nubank",
				"limit":      0.0,
				"closingDay": 10,
				"dueDay":     17,
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Invalid Cycle Day",
			body: map[string]any{
				"name":       "Platinum",
				"bank":       "Nubank",
				"limit":      5000.0,
				"closingDay": 32,
				"dueDay":     17,
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockCardRepo{
				CreateFunc: func(ctx context.Context, params card.CreateParams) (*card.Card, error) {
					return &card.Card{
						ID:           "card-1",
						UserID:       params.UserID,
						Name:         params.Name,
						Limit:        params.Limit,
						CurrentLimit: params.Limit,
					}, nil
				},
			}
			handler := NewCardHandler(newCardService(repo, &MockUsageSource{}))

			body, _ := json.Marshal(tt.body)
			req := authedRequest(http.MethodPost, "/api/cards", body, 1)
			rr := httptest.NewRecorder()

			handler.HandleCards(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}
		})
	}
}

func TestHandleGetCard(t *testing.T) {
	tests := []struct {
		name           string
		userID         int64
		stored         *card.Card
		expectedStatus int
	}{
		{
			name:           "Success",
			userID:         1,
			stored:         &card.Card{ID: "card-1", UserID: 1, Name: "Platinum"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Not Found",
			userID:         1,
			stored:         nil,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Forbidden",
			userID:         2,
			stored:         &card.Card{ID: "card-1", UserID: 1, Name: "Platinum"},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockCardRepo{
				GetByIDFunc: func(ctx context.Context, id string) (*card.Card, error) {
					return tt.stored, nil
				},
			}
			handler := NewCardHandler(newCardService(repo, &MockUsageSource{}))

			req := authedRequest(http.MethodGet, "/api/cards/card-1", nil, tt.userID)
			req.SetPathValue("id", "card-1")
			rr := httptest.NewRecorder()

			handler.HandleCardByID(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}
		})
	}
}

func TestHandleDeleteCard(t *testing.T) {
	deleted := false
	repo := &MockCardRepo{
		GetByIDFunc: func(ctx context.Context, id string) (*card.Card, error) {
			return &card.Card{ID: "card-1", UserID: 1}, nil
		},
		DeleteFunc: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}
	handler := NewCardHandler(newCardService(repo, &MockUsageSource{}))

	req := authedRequest(http.MethodDelete, "/api/cards/card-1", nil, 1)
	req.SetPathValue("id", "card-1")
	rr := httptest.NewRecorder()

	handler.HandleCardByID(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusNoContent)
	}
	if !deleted {
		t.Error("expected repository Delete to be called")
	}
}

func TestHandleCards_Unauthenticated(t *testing.T) {
	handler := NewCardHandler(newCardService(&MockCardRepo{}, &MockUsageSource{}))

	req := httptest.NewRequest(http.MethodGet, "/api/cards", nil)
	rr := httptest.NewRecorder()

	handler.HandleCards(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusUnauthorized)
	}
}
