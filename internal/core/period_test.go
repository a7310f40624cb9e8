package core

import (
	"testing"
	"time"
)

func TestParsePeriod(t *testing.T) {
	cases := []struct {
		in  string
		out Period
		ok  bool
	}{
		{"", PeriodMonthly, true},
		{"weekly", PeriodWeekly, true},
		{"MONTHLY", PeriodMonthly, true},
		{"custom", PeriodCustom, true},
		{"all", PeriodAll, true},
		{"yearly", "", false},
	}
	for _, tc := range cases {
		got, err := ParsePeriod(tc.in)
		if tc.ok && (err != nil || got != tc.out) {
			t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
		}
		if !tc.ok && !IsValidation(err) {
			t.Fatalf("%q expected validation error, got %v", tc.in, err)
		}
	}
}

func TestResolveWindow(t *testing.T) {
	now := time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)
	end := NewDate(2024, 6, 15)
	start := NewDate(2024, 5, 20)

	cases := []struct {
		name      string
		period    Period
		start     *Date
		end       *Date
		wantStart string
		wantEnd   string
	}{
		{"weekly", PeriodWeekly, nil, &end, "2024-06-08", "2024-06-15"},
		{"monthly", PeriodMonthly, nil, &end, "2024-06-01", "2024-06-15"},
		{"monthly defaults end to now", PeriodMonthly, nil, nil, "2024-06-01", "2024-06-15"},
		{"custom with start", PeriodCustom, &start, &end, "2024-05-20", "2024-06-15"},
		{"custom without start", PeriodCustom, nil, &end, "2024-05-16", "2024-06-15"},
		{"weekly ignores start", PeriodWeekly, &start, &end, "2024-06-08", "2024-06-15"},
		{"all", PeriodAll, nil, &end, "", "2024-06-15"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, err := ResolveWindow(tc.period, now, tc.start, tc.end)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			gotStart := ""
			if w.Start != nil {
				gotStart = w.Start.String()
			}
			if gotStart != tc.wantStart || w.End.String() != tc.wantEnd {
				t.Fatalf("expected [%s, %s], got [%s, %s]", tc.wantStart, tc.wantEnd, gotStart, w.End)
			}
		})
	}
}

func TestResolveWindowRejectsInvertedRange(t *testing.T) {
	start := NewDate(2024, 7, 1)
	end := NewDate(2024, 6, 1)
	if _, err := ResolveWindow(PeriodCustom, time.Now(), &start, &end); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestWindowContainsEndDay(t *testing.T) {
	end := NewDate(2024, 6, 15)
	w, err := ResolveWindow(PeriodWeekly, time.Now(), nil, &end)
	if err != nil {
		t.Fatal(err)
	}
	if !w.Contains(end) {
		t.Fatalf("end day must be inside the window")
	}
	if !w.Contains(NewDate(2024, 6, 8)) {
		t.Fatalf("start day must be inside the window")
	}
	if w.Contains(NewDate(2024, 6, 16)) || w.Contains(NewDate(2024, 6, 7)) {
		t.Fatalf("days outside the window must be excluded")
	}
	if got := w.EndExclusive().String(); got != "2024-06-16" {
		t.Fatalf("expected exclusive bound 2024-06-16, got %s", got)
	}
}
