package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"mealbills/internal/core"
	applog "mealbills/internal/log"
	"mealbills/internal/metrics"
	"mealbills/internal/storage"
)

// statsWindowDays is how far back the stats daily series reaches.
const statsWindowDays = 30

// SummaryQuery selects the bills to aggregate. Start is only consulted
// for the custom period; End defaults to today.
type SummaryQuery struct {
	Period       core.Period
	ConsumerName *string
	Start        *core.Date
	End          *core.Date
}

// Stats is the dashboard overview across all bills.
type Stats struct {
	TotalBills  int
	TotalAmount core.Money
	ByMealType  []core.MealTypeTotal
	RecentBills []core.Bill
	Daily       []core.DailyTotal
}

// SummaryService computes derived, never persisted, views over bills.
type SummaryService struct {
	store   storage.BillStore
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewSummaryService(store storage.BillStore, m *metrics.Metrics) *SummaryService {
	return &SummaryService{store: store, metrics: m, now: time.Now}
}

// Summarize resolves the period into a window and reduces the matching
// bills by consumer, meal type and day. Any store failure fails the whole
// summary.
func (s *SummaryService) Summarize(ctx context.Context, q SummaryQuery) (core.Summary, error) {
	started := time.Now()
	window, err := core.ResolveWindow(q.Period, s.now(), q.Start, q.End)
	if err != nil {
		return core.Summary{}, err
	}
	filter := window.Apply(core.BillFilter{ConsumerName: q.ConsumerName})

	var (
		bills  []core.Bill
		totals []core.MealTypeTotal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bills, err = s.store.ListBills(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		totals, err = s.store.TotalsByMealType(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Summary{}, failed(applog.OpSummarize, "Failed to fetch summary", err)
	}

	byConsumer := core.FoldByConsumer(bills)
	summary := core.Summary{
		ByConsumer: byConsumer,
		ByMealType: totals,
		Daily:      core.FoldDaily(bills),
		GrandTotal: core.GrandTotal(byConsumer),
		Period:     q.Period,
		Window:     window,
	}
	s.metrics.ObserveSummary(string(q.Period), time.Since(started))
	applog.FromContext(ctx).DebugContext(ctx, "Summary computed",
		applog.FieldPeriod, string(q.Period),
		applog.FieldCount, len(bills))
	return summary, nil
}

// Stats reports overall totals, per-meal totals, the latest bills and the
// daily series of the last 30 days.
func (s *SummaryService) Stats(ctx context.Context) (Stats, error) {
	since := core.DateOf(s.now()).AddDays(-statsWindowDays)

	var (
		totals []core.MealTypeTotal
		recent []core.Bill
		window []core.Bill
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = s.store.TotalsByMealType(gctx, core.BillFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.store.RecentBills(gctx, storage.RecentBillsLimit)
		return err
	})
	g.Go(func() error {
		var err error
		window, err = s.store.ListBills(gctx, core.BillFilter{From: &since})
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, failed(applog.OpStats, "Failed to fetch bill statistics", err)
	}

	st := Stats{ByMealType: totals, RecentBills: recent, Daily: core.FoldDaily(window)}
	for _, t := range totals {
		st.TotalBills += t.Count
		st.TotalAmount = st.TotalAmount.Add(t.Total)
	}
	return st, nil
}

// failed never passes a classified store error through: aggregation is
// all-or-nothing and reports one generic message.
func failed(op, msg string, err error) error {
	return core.Unexpected(msg, fmt.Errorf("%s: %w", op, err))
}
