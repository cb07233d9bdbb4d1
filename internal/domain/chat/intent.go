package chat

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"contas/internal/domain/charge"
)

// ErrNoAmount is returned when no monetary amount can be found in the text.
var ErrNoAmount = errors.New("could not find an amount in the message")

// PurchaseIntent is a create-charge request extracted from free text. The
// parser is rules-based: regexes over normalized text, no model calls.
type PurchaseIntent struct {
	Description  string    `json:"description"`
	Amount       float64   `json:"amount"`
	Type         string    `json:"type"`
	Installments int       `json:"installments"`
	Date         time.Time `json:"date"`
}

// Parser extracts purchase intents from chat messages
type Parser struct {
	now func() time.Time
}

// NewParser creates a new intent parser
func NewParser() *Parser {
	return &Parser{now: time.Now}
}

// WithClock overrides the parser clock. Used in tests.
func (p *Parser) WithClock(now func() time.Time) *Parser {
	p.now = now
	return p
}

var (
	amountRe       = regexp.MustCompile(`(?i)(?:r\$|\$)?\s*([0-9]+(?:[.,][0-9]{1,2})?)`)
	installmentsRe = regexp.MustCompile(`(?i)(?:\bem\s+([0-9]{1,2})\s*(?:x|vezes|parcelas)\b|\b([0-9]{1,2})\s*x\b)`)
	dateRes        = []*regexp.Regexp{
		regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`), // YYYY-MM-DD
		regexp.MustCompile(`\b(\d{2})/(\d{2})/(\d{4})\b`), // DD/MM/YYYY
	}
	incomeWords = []string{"estorno", "reembolso", "refund", "cashback"}
)

// Parse extracts a purchase intent from a free-text message like
// "mercado 250,50 em 3x ontem" or "refund netflix 39.90".
func (p *Parser) Parse(text string) (*PurchaseIntent, error) {
	text = normalize(text)
	if text == "" {
		return nil, ErrNoAmount
	}

	amount, amountMatch, ok := findAmount(text)
	if !ok {
		return nil, ErrNoAmount
	}

	intent := &PurchaseIntent{
		Amount:       amount,
		Type:         charge.TypeExpense,
		Installments: 1,
		Date:         p.now(),
	}

	lower := strings.ToLower(text)
	for _, w := range incomeWords {
		if strings.Contains(lower, w) {
			intent.Type = charge.TypeIncome
			break
		}
	}

	consumed := []string{amountMatch}

	if m := installmentsRe.FindStringSubmatch(text); m != nil {
		digits := m[1]
		if digits == "" {
			digits = m[2]
		}
		if n, err := strconv.Atoi(digits); err == nil && n >= 1 {
			intent.Installments = n
		}
		consumed = append(consumed, m[0])
	}

	if d, match, ok := findDate(text); ok {
		intent.Date = d
		consumed = append(consumed, match)
	}

	intent.Description = buildDescription(text, consumed)
	if intent.Description == "" {
		intent.Description = "Chat purchase"
	}

	if intent.Type == charge.TypeIncome {
		// Refunds are never split
		intent.Installments = 1
	}

	return intent, nil
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
}

// findAmount picks the largest monetary token so that "tv 3x 100" reads the
// price rather than the installment count.
func findAmount(text string) (float64, string, bool) {
	// Drop installment expressions first so "3x" is never read as money
	cleaned := installmentsRe.ReplaceAllString(text, " ")
	for _, r := range dateRes {
		cleaned = r.ReplaceAllString(cleaned, " ")
	}

	best := 0.0
	bestMatch := ""
	for _, m := range amountRe.FindAllStringSubmatch(cleaned, -1) {
		v, err := parseAmount(m[1])
		if err != nil {
			continue
		}
		if v > best {
			best = v
			bestMatch = m[0]
		}
	}
	if best <= 0 {
		return 0, "", false
	}
	return best, bestMatch, true
}

func findDate(text string) (time.Time, string, bool) {
	for i, r := range dateRes {
		m := r.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		var year, month, day int
		if i == 0 {
			year, _ = strconv.Atoi(m[1])
			month, _ = strconv.Atoi(m[2])
			day, _ = strconv.Atoi(m[3])
		} else {
			day, _ = strconv.Atoi(m[1])
			month, _ = strconv.Atoi(m[2])
			year, _ = strconv.Atoi(m[3])
		}
		if month < 1 || month > 12 || day < 1 || day > 31 {
			continue
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), m[0], true
	}
	return time.Time{}, "", false
}

// connectorWords are dangling prepositions left behind once the amount,
// date and installment tokens are cut out ("farmacia 85,30 em 02/01/2025").
var connectorWords = map[string]struct{}{
	"em": {}, "de": {}, "no": {}, "na": {}, "dia": {}, "on": {}, "at": {}, "for": {},
}

func buildDescription(text string, consumed []string) string {
	out := text
	for _, c := range consumed {
		out = strings.Replace(out, c, " ", 1)
	}
	for _, w := range incomeWords {
		re := regexp.MustCompile(`(?i)\b` + w + `\b`)
		out = re.ReplaceAllString(out, " ")
	}

	words := strings.Fields(strings.Trim(normalize(out), " -:,."))
	for len(words) > 0 {
		if _, ok := connectorWords[strings.ToLower(words[len(words)-1])]; !ok {
			break
		}
		words = words[:len(words)-1]
	}
	for len(words) > 0 {
		if _, ok := connectorWords[strings.ToLower(words[0])]; !ok {
			break
		}
		words = words[1:]
	}

	out = strings.Join(words, " ")
	if len(out) > 64 {
		out = strings.TrimSpace(out[:64])
	}
	return out
}

// parseAmount accepts both decimal separators: "120,50" and "120.50".
func parseAmount(s string) (float64, error) {
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}
