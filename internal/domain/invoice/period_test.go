package invoice

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolvePeriod(t *testing.T) {
	tests := []struct {
		name       string
		purchase   time.Time
		closingDay int
		dueDay     int
		want       Period
	}{
		{
			name:       "before closing with due after closing stays in month",
			purchase:   date(2025, time.January, 5),
			closingDay: 10,
			dueDay:     15,
			want:       Period{2025, time.January},
		},
		{
			name:       "after closing moves to next month",
			purchase:   date(2025, time.January, 15),
			closingDay: 10,
			dueDay:     15,
			want:       Period{2025, time.February},
		},
		{
			name:       "due before closing shifts one extra month",
			purchase:   date(2025, time.January, 5),
			closingDay: 25,
			dueDay:     10,
			want:       Period{2025, time.February},
		},
		{
			name:       "double shift rolls the year over",
			purchase:   date(2025, time.December, 26),
			closingDay: 25,
			dueDay:     15,
			want:       Period{2026, time.February},
		},
		{
			name:       "purchase exactly on closing day stays",
			purchase:   date(2025, time.March, 10),
			closingDay: 10,
			dueDay:     20,
			want:       Period{2025, time.March},
		},
		{
			name:       "due day equal to closing day shifts",
			purchase:   date(2025, time.March, 5),
			closingDay: 10,
			dueDay:     10,
			want:       Period{2025, time.April},
		},
		{
			name:       "after closing in december rolls year",
			purchase:   date(2025, time.December, 28),
			closingDay: 20,
			dueDay:     28,
			want:       Period{2026, time.January},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePeriod(tt.purchase, tt.closingDay, tt.dueDay)
			if got != tt.want {
				t.Errorf("ResolvePeriod(%s, %d, %d) = %s, want %s",
					tt.purchase.Format("2006-01-02"), tt.closingDay, tt.dueDay, got, tt.want)
			}
		})
	}
}

func TestPeriodAddMonths(t *testing.T) {
	tests := []struct {
		name string
		from Period
		n    int
		want Period
	}{
		{"same year", Period{2025, time.March}, 2, Period{2025, time.May}},
		{"rolls over december", Period{2025, time.November}, 3, Period{2026, time.February}},
		{"multiple years", Period{2025, time.January}, 25, Period{2027, time.February}},
		{"zero months", Period{2025, time.June}, 0, Period{2025, time.June}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.AddMonths(tt.n); got != tt.want {
				t.Errorf("%s.AddMonths(%d) = %s, want %s", tt.from, tt.n, got, tt.want)
			}
		})
	}
}

func TestPeriodBefore(t *testing.T) {
	tests := []struct {
		name string
		a, b Period
		want bool
	}{
		{"earlier year", Period{2024, time.December}, Period{2025, time.January}, true},
		{"earlier month same year", Period{2025, time.March}, Period{2025, time.April}, true},
		{"equal", Period{2025, time.March}, Period{2025, time.March}, false},
		{"later", Period{2025, time.May}, Period{2025, time.March}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Before(tt.b); got != tt.want {
				t.Errorf("%s.Before(%s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestPeriodDueDate(t *testing.T) {
	tests := []struct {
		name   string
		period Period
		dueDay int
		want   time.Time
	}{
		{"plain day", Period{2025, time.January}, 15, date(2025, time.January, 15)},
		{"clamped in february", Period{2025, time.February}, 30, date(2025, time.February, 28)},
		{"leap year february", Period{2024, time.February}, 30, date(2024, time.February, 29)},
		{"day 31 in april", Period{2025, time.April}, 31, date(2025, time.April, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.period.DueDate(tt.dueDay); !got.Equal(tt.want) {
				t.Errorf("%s.DueDate(%d) = %s, want %s", tt.period, tt.dueDay, got, tt.want)
			}
		})
	}
}

func TestAddMonthsClamped(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		n    int
		want time.Time
	}{
		{"plain month", date(2025, time.January, 15), 1, date(2025, time.February, 15)},
		{"jan 31 clamps to feb 28", date(2025, time.January, 31), 1, date(2025, time.February, 28)},
		{"jan 31 two months is mar 31", date(2025, time.January, 31), 2, date(2025, time.March, 31)},
		{"rolls the year", date(2025, time.November, 30), 3, date(2026, time.February, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AddMonthsClamped(tt.from, tt.n); !got.Equal(tt.want) {
				t.Errorf("AddMonthsClamped(%s, %d) = %s, want %s",
					tt.from.Format("2006-01-02"), tt.n, got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
			}
		})
	}
}
