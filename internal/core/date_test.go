package core

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"2024-06-15", "2024-06-15", true},
		{" 2024-01-01 ", "2024-01-01", true},
		{"2024-06-15T23:30:00-05:00", "2024-06-15", true},
		{"2024-06-15T00:30:00+09:00", "2024-06-15", true},
		{"2024-06-15T10:00:00Z", "2024-06-15", true},
		{"15/06/2024", "", false},
		{"2024-13-01", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestDateOfIgnoresServerZone(t *testing.T) {
	loc := time.FixedZone("UTC+14", 14*3600)
	late := time.Date(2024, 6, 15, 23, 59, 0, 0, loc)
	if got := DateOf(late).String(); got != "2024-06-15" {
		t.Fatalf("expected 2024-06-15, got %s", got)
	}
	if DateOf(late).Location() != time.UTC {
		t.Fatalf("expected date normalized to UTC")
	}
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2024, 3, 1)
	if got := d.AddDays(-1).String(); got != "2024-02-29" {
		t.Fatalf("expected leap day, got %s", got)
	}
	if got := NewDate(2024, 6, 15).FirstOfMonth().String(); got != "2024-06-01" {
		t.Fatalf("expected 2024-06-01, got %s", got)
	}
}

func TestParseOptionalDate(t *testing.T) {
	d, err := ParseOptionalDate("")
	if err != nil || d != nil {
		t.Fatalf("expected nil date, got %v (err=%v)", d, err)
	}
	d, err = ParseOptionalDate("2024-06-01")
	if err != nil || d == nil || d.String() != "2024-06-01" {
		t.Fatalf("expected 2024-06-01, got %v (err=%v)", d, err)
	}
}
