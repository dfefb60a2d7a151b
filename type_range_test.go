package portfolio

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRange(t *testing.T) {
	tests := []struct {
		name string
		r    Range
		len  int
	}{
		{"single day", NewRange(NewDate(2024, 1, 10), NewDate(2024, 1, 10)), 1},
		{"leap february", NewRange(NewDate(2024, 2, 1), NewDate(2024, 2, 29)), 29},
		{"swapped bounds", NewRange(NewDate(2024, 1, 17), NewDate(2024, 1, 10)), 8},
		{"across a year", NewRange(NewDate(2023, 12, 30), NewDate(2024, 1, 2)), 4},
		{"across DST", NewRange(NewDate(2024, 3, 30), NewDate(2024, 4, 1)), 3},
		{"four centuries", NewRange(NewDate(1600, 1, 1), NewDate(2020, 1, 1)), 153403},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Len(); got != tt.len {
				t.Errorf("Range.Len() = %d, want %d", got, tt.len)
			}
			days := slices.Collect(tt.r.Days())
			if len(days) != tt.len {
				t.Fatalf("Range.Days() yields %d days, want %d", len(days), tt.len)
			}
			if days[0] != tt.r.From || days[len(days)-1] != tt.r.To {
				t.Errorf("Range.Days() = %v..%v, want %v", days[0], days[len(days)-1], tt.r)
			}
		})
	}
}

func TestUntilBeforeEpochIsEmpty(t *testing.T) {
	r := Until(NewDate(1970, 1, 1))
	if got := r.Len(); got != 0 {
		t.Errorf("Until(1970-01-01).Len() = %d, want 0", got)
	}
	if days := slices.Collect(r.Days()); len(days) != 0 {
		t.Errorf("Until(1970-01-01).Days() = %v, want none", days)
	}
	if r.Contains(Epoch) || r.Contains(NewDate(1970, 1, 1)) {
		t.Errorf("Until(1970-01-01) = %v should not contain any day", r)
	}
	if got, want := Until(Epoch).Len(), 1; got != want {
		t.Errorf("Until(Epoch).Len() = %d, want %d", got, want)
	}
}

func TestRangeContains(t *testing.T) {
	r := NewRange(NewDate(2024, 1, 10), NewDate(2024, 1, 17))
	for day, want := range map[Date]bool{
		NewDate(2024, 1, 9):  false,
		NewDate(2024, 1, 10): true,
		NewDate(2024, 1, 17): true,
		NewDate(2024, 1, 18): false,
	} {
		if got := r.Contains(day); got != want {
			t.Errorf("%v.Contains(%v) = %v, want %v", r, day, got, want)
		}
	}
	if got, want := Until(NewDate(2024, 1, 1)).From, Epoch; got != want {
		t.Errorf("Until().From = %v, want %v", got, want)
	}
}

func TestRangeDaysStops(t *testing.T) {
	r := NewRange(NewDate(2024, 1, 1), NewDate(2024, 12, 31))
	var got []string
	for day := range r.Days() {
		if len(got) == 3 {
			break
		}
		got = append(got, day.String())
	}
	if diff := cmp.Diff([]string{"2024-01-01", "2024-01-02", "2024-01-03"}, got); diff != "" {
		t.Errorf("Range.Days() mismatch (-want +got):\n%s", diff)
	}
}
