package chat

import (
	"errors"
	"testing"
	"time"

	"contas/internal/domain/charge"
)

func fixedParser() *Parser {
	return NewParser().WithClock(func() time.Time {
		return time.Date(2025, time.January, 5, 10, 0, 0, 0, time.UTC)
	})
}

func TestParse(t *testing.T) {
	tests := []struct {
		name             string
		text             string
		wantAmount       float64
		wantType         string
		wantInstallments int
		wantDate         time.Time
		wantDesc         string
	}{
		{
			name:             "plain purchase",
			text:             "mercado 250,50",
			wantAmount:       250.50,
			wantType:         charge.TypeExpense,
			wantInstallments: 1,
			wantDate:         time.Date(2025, time.January, 5, 10, 0, 0, 0, time.UTC),
			wantDesc:         "mercado",
		},
		{
			name:             "installments with em N vezes",
			text:             "notebook 3600 em 10 vezes",
			wantAmount:       3600,
			wantType:         charge.TypeExpense,
			wantInstallments: 10,
			wantDate:         time.Date(2025, time.January, 5, 10, 0, 0, 0, time.UTC),
			wantDesc:         "notebook",
		},
		{
			name:             "installments with Nx and currency sign",
			text:             "tv R$ 1999.90 3x",
			wantAmount:       1999.90,
			wantType:         charge.TypeExpense,
			wantInstallments: 3,
			wantDate:         time.Date(2025, time.January, 5, 10, 0, 0, 0, time.UTC),
			wantDesc:         "tv",
		},
		{
			name:             "refund becomes income",
			text:             "estorno netflix 39,90",
			wantAmount:       39.90,
			wantType:         charge.TypeIncome,
			wantInstallments: 1,
			wantDate:         time.Date(2025, time.January, 5, 10, 0, 0, 0, time.UTC),
			wantDesc:         "netflix",
		},
		{
			name:             "explicit iso date",
			text:             "jantar 180 2025-01-02",
			wantAmount:       180,
			wantType:         charge.TypeExpense,
			wantInstallments: 1,
			wantDate:         time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC),
			wantDesc:         "jantar",
		},
		{
			name:             "brazilian date format",
			text:             "farmacia 85,30 em 02/01/2025",
			wantAmount:       85.30,
			wantType:         charge.TypeExpense,
			wantInstallments: 1,
			wantDate:         time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC),
			wantDesc:         "farmacia",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent, err := fixedParser().Parse(tt.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if intent.Amount != tt.wantAmount {
				t.Errorf("amount = %.2f, want %.2f", intent.Amount, tt.wantAmount)
			}
			if intent.Type != tt.wantType {
				t.Errorf("type = %s, want %s", intent.Type, tt.wantType)
			}
			if intent.Installments != tt.wantInstallments {
				t.Errorf("installments = %d, want %d", intent.Installments, tt.wantInstallments)
			}
			if !intent.Date.Equal(tt.wantDate) {
				t.Errorf("date = %s, want %s", intent.Date, tt.wantDate)
			}
			if intent.Description != tt.wantDesc {
				t.Errorf("description = %q, want %q", intent.Description, tt.wantDesc)
			}
		})
	}
}

func TestParseNoAmount(t *testing.T) {
	if _, err := fixedParser().Parse("bought some stuff"); !errors.Is(err, ErrNoAmount) {
		t.Errorf("expected ErrNoAmount, got %v", err)
	}
	if _, err := fixedParser().Parse("   "); !errors.Is(err, ErrNoAmount) {
		t.Errorf("expected ErrNoAmount for empty text, got %v", err)
	}
}

func TestParseFallbackDescription(t *testing.T) {
	intent, err := fixedParser().Parse("120")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.Description != "Chat purchase" {
		t.Errorf("description = %q, want fallback", intent.Description)
	}
}
