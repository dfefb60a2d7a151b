package portfolio

import (
	"testing"
)

func TestHistoryAppend(t *testing.T) {
	var h History
	h.Append(NewDate(2020, 1, 6), D("2"))
	h.Append(NewDate(2020, 1, 3), D("1"))
	h.Append(NewDate(2020, 1, 8), D("3"))
	h.Append(NewDate(2020, 1, 6), D("2.5")) // overwrite

	if h.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", h.Len())
	}
	var prev Date
	for day := range h.Values() {
		if !prev.IsZero() && !prev.Before(day) {
			t.Errorf("Values() not sorted: %v then %v", prev, day)
		}
		prev = day
	}
	if v, ok := h.Get(NewDate(2020, 1, 6)); !ok || !v.Equal(D("2.5")) {
		t.Errorf("Get() = %v, %v, want 2.5, true", v, ok)
	}
	if _, ok := h.Get(NewDate(2020, 1, 7)); ok {
		t.Error("Get() on a missing day should fail")
	}
	if day, v := h.Latest(); day != NewDate(2020, 1, 8) || !v.Equal(D("3")) {
		t.Errorf("Latest() = %v, %v", day, v)
	}
}

func TestHistoryValueAsOf(t *testing.T) {
	var h History
	h.Append(NewDate(2020, 1, 3), D("1"))
	h.Append(NewDate(2020, 1, 6), D("2"))

	tests := []struct {
		day  Date
		want string
		ok   bool
	}{
		{NewDate(2020, 1, 2), "0", false},
		{NewDate(2020, 1, 3), "1", true},
		{NewDate(2020, 1, 5), "1", true},
		{NewDate(2020, 1, 6), "2", true},
		{NewDate(2030, 1, 1), "2", true},
	}
	for _, tt := range tests {
		got, ok := h.ValueAsOf(tt.day)
		if ok != tt.ok || got.String() != tt.want {
			t.Errorf("ValueAsOf(%v) = %v, %v, want %v, %v", tt.day, got, ok, tt.want, tt.ok)
		}
	}

	var empty History
	if _, ok := empty.ValueAsOf(NewDate(2020, 1, 1)); ok {
		t.Error("ValueAsOf() on empty history should fail")
	}
	if day, _ := empty.Latest(); !day.IsZero() {
		t.Errorf("Latest() on empty history = %v", day)
	}
}
