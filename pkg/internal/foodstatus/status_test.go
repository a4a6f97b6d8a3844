package foodstatus_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yeisme/xianshiji/pkg/internal/foodstatus"
)

var today = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.Local)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func decp(v string) *decimal.Decimal {
	d := dec(v)

	return &d
}

func day(offset int) *time.Time {
	t := today.AddDate(0, 0, offset)

	return &t
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name string
		in   foodstatus.Input
		want foodstatus.Status
	}{
		{"no thresholds", foodstatus.Input{Quantity: dec("5")}, foodstatus.Normal},
		{"below min", foodstatus.Input{Quantity: dec("1"), MinQuantity: decp("2")}, foodstatus.Insufficient},
		{"equal min", foodstatus.Input{Quantity: dec("2"), MinQuantity: decp("2")}, foodstatus.Insufficient},
		{"above min", foodstatus.Input{Quantity: dec("2.5"), MinQuantity: decp("2")}, foodstatus.Normal},
		{"zero never insufficient", foodstatus.Input{Quantity: dec("0"), MinQuantity: decp("2")}, foodstatus.Normal},
		{"zero and expired", foodstatus.Input{Quantity: dec("0"), MinQuantity: decp("2"), ExpiryDate: day(-1)}, foodstatus.Expired},
		{"insufficient beats expired", foodstatus.Input{Quantity: dec("1"), MinQuantity: decp("2"), ExpiryDate: day(-5)}, foodstatus.Insufficient},
		{"insufficient beats near expiry", foodstatus.Input{Quantity: dec("1"), MinQuantity: decp("2"), ExpiryDate: day(1)}, foodstatus.Insufficient},
		{"yesterday", foodstatus.Input{Quantity: dec("3"), ExpiryDate: day(-1)}, foodstatus.Expired},
		{"today", foodstatus.Input{Quantity: dec("3"), ExpiryDate: day(0)}, foodstatus.NearExpiry},
		{"in three days", foodstatus.Input{Quantity: dec("3"), ExpiryDate: day(3)}, foodstatus.NearExpiry},
		{"in four days", foodstatus.Input{Quantity: dec("3"), ExpiryDate: day(4)}, foodstatus.Normal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := foodstatus.Compute(tt.in, today); got != tt.want {
				t.Errorf("Compute() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestComputeIgnoresTimeOfDay(t *testing.T) {
	lateEvening := today.Add(23*time.Hour + 59*time.Minute)
	expiry := today.AddDate(0, 0, 4).Add(time.Hour)

	got := foodstatus.Compute(foodstatus.Input{Quantity: dec("1"), ExpiryDate: &expiry}, lateEvening)
	if got != foodstatus.Normal {
		t.Errorf("Compute() = %s, want NORMAL for four calendar days", got)
	}
}

func TestDaysBetweenAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata not available")
	}

	from := time.Date(2025, time.March, 29, 0, 0, 0, 0, loc)
	to := time.Date(2025, time.April, 1, 0, 0, 0, 0, loc)

	if got := foodstatus.DaysBetween(from, to); got != 3 {
		t.Errorf("DaysBetween() = %d, want 3", got)
	}
}

func TestParse(t *testing.T) {
	for _, s := range []string{"NORMAL", "near_expiry", " Expired "} {
		if _, ok := foodstatus.Parse(s); !ok {
			t.Errorf("Parse(%q) not recognized", s)
		}
	}

	if _, ok := foodstatus.Parse("ROTTEN"); ok {
		t.Error("Parse(ROTTEN) should be unknown")
	}
}

func TestClockToday(t *testing.T) {
	fixed := foodstatus.Clock(func() time.Time {
		return time.Date(2025, time.March, 10, 22, 30, 0, 0, time.UTC)
	})

	shanghai := time.FixedZone("CST", 8*3600)
	got := fixed.Today(shanghai)

	if got.Day() != 11 || got.Hour() != 0 {
		t.Errorf("Today() = %v, want 2025-03-11 00:00 CST", got)
	}
}
