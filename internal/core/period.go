package core

import (
	"strings"
	"time"
)

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodCustom  Period = "custom"
	PeriodAll     Period = "all"
)

// DefaultPeriod applies when the caller names none.
const DefaultPeriod = PeriodMonthly

const (
	weeklySpanDays     = 7
	customFallbackDays = 30
)

type Period string

func ParsePeriod(s string) (Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultPeriod, nil
	}
	switch p := Period(s); p {
	case PeriodWeekly, PeriodMonthly, PeriodCustom, PeriodAll:
		return p, nil
	}
	return "", Validationf("invalid period %q: must be one of weekly, monthly, custom, all", s)
}

// Window is a closed range of calendar days. A nil Start means unbounded.
type Window struct {
	Start *Date
	End   Date
}

// ResolveWindow turns a period selector into a concrete window. end
// defaults to the calendar day of now; start is only consulted for custom.
func ResolveWindow(p Period, now time.Time, start, end *Date) (Window, error) {
	w := Window{End: DateOf(now)}
	if end != nil {
		w.End = *end
	}
	switch p {
	case PeriodWeekly:
		s := w.End.AddDays(-weeklySpanDays)
		w.Start = &s
	case PeriodMonthly:
		s := w.End.FirstOfMonth()
		w.Start = &s
	case PeriodCustom:
		s := w.End.AddDays(-customFallbackDays)
		if start != nil {
			s = *start
		}
		w.Start = &s
	case PeriodAll:
	default:
		return Window{}, Validationf("invalid period %q", string(p))
	}
	if w.Start != nil && w.Start.After(w.End.Time) {
		return Window{}, Validationf("startDate must not be after endDate")
	}
	return w, nil
}

// EndExclusive is the first day past the window. Stores compare with
// date < EndExclusive so the end day is included in full.
func (w Window) EndExclusive() Date { return w.End.AddDays(1) }

func (w Window) Contains(d Date) bool {
	if w.Start != nil && d.Before(w.Start.Time) {
		return false
	}
	return d.Before(w.EndExclusive().Time)
}

// Apply narrows f to the window.
func (w Window) Apply(f BillFilter) BillFilter {
	f.From = w.Start
	end := w.End
	f.Until = &end
	return f
}
