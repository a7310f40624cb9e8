// Package storagetest holds behaviour checks shared by every Store
// implementation.
package storagetest

import (
	"context"
	"testing"

	"mealbills/internal/core"
	"mealbills/internal/storage"
)

// Run exercises s against the Store contract. newStore must return an
// empty store.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Run("consumers", func(t *testing.T) { testConsumers(t, newStore(t)) })
	t.Run("consumer delete rules", func(t *testing.T) { testConsumerDelete(t, newStore(t)) })
	t.Run("bills", func(t *testing.T) { testBills(t, newStore(t)) })
	t.Run("bill filters", func(t *testing.T) { testBillFilters(t, newStore(t)) })
	t.Run("meal type totals", func(t *testing.T) { testMealTypeTotals(t, newStore(t)) })
	t.Run("recent bills", func(t *testing.T) { testRecentBills(t, newStore(t)) })
}

func strPtr(s string) *string { return &s }

// MustConsumer creates an active consumer or fails the test.
func MustConsumer(t *testing.T, s storage.Store, name string) core.Consumer {
	t.Helper()
	c, err := s.CreateConsumer(context.Background(), core.Consumer{Name: name, IsActive: true})
	if err != nil {
		t.Fatalf("create consumer %s: %v", name, err)
	}
	return c
}

// MustBill creates a bill or fails the test.
func MustBill(t *testing.T, s storage.Store, consumerID string, mt core.MealType, cents int64, date core.Date) core.Bill {
	t.Helper()
	b, err := s.CreateBill(context.Background(), core.Bill{
		ConsumerID: consumerID,
		MealType:   mt,
		Amount:     core.Money{Cents: cents},
		Date:       date,
	})
	if err != nil {
		t.Fatalf("create bill: %v", err)
	}
	return b
}

func testConsumers(t *testing.T, s storage.Store) {
	ctx := context.Background()

	c, err := s.CreateConsumer(ctx, core.Consumer{Name: "Hamad", Email: strPtr("h@example.com"), IsActive: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.ID == "" || c.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamps, got %+v", c)
	}
	if c.Email == nil || *c.Email != "h@example.com" || c.Phone != nil {
		t.Fatalf("unexpected contact fields: %+v", c)
	}

	if _, err := s.CreateConsumer(ctx, core.Consumer{Name: "Hamad", IsActive: true}); !core.IsConflict(err) {
		t.Fatalf("expected conflict on duplicate name, got %v", err)
	}
	if _, err := s.CreateConsumer(ctx, core.Consumer{Name: "hamad", IsActive: true}); err != nil {
		t.Fatalf("names are case-sensitive, got %v", err)
	}
	inactive, err := s.CreateConsumer(ctx, core.Consumer{Name: "Ameer", IsActive: false})
	if err != nil {
		t.Fatalf("create inactive: %v", err)
	}

	byName, err := s.GetConsumerByName(ctx, "Hamad")
	if err != nil || byName.ID != c.ID {
		t.Fatalf("get by name: %+v, %v", byName, err)
	}
	if _, err := s.GetConsumer(ctx, "missing"); !core.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	all, err := s.ListConsumers(ctx, core.ConsumerFilter{})
	if err != nil || len(all) != 3 {
		t.Fatalf("list all: %d, %v", len(all), err)
	}
	if all[0].Name != "Ameer" || all[1].Name != "Hamad" || all[2].Name != "hamad" {
		t.Fatalf("expected name order, got %s, %s, %s", all[0].Name, all[1].Name, all[2].Name)
	}
	active := true
	onlyActive, err := s.ListConsumers(ctx, core.ConsumerFilter{IsActive: &active})
	if err != nil || len(onlyActive) != 2 {
		t.Fatalf("list active: %d, %v", len(onlyActive), err)
	}

	inactive.Name = "hamad"
	if _, err := s.UpdateConsumer(ctx, inactive); !core.IsConflict(err) {
		t.Fatalf("expected rename conflict, got %v", err)
	}
	inactive.Name = "Ameer K"
	inactive.IsActive = true
	inactive.Phone = strPtr("555")
	updated, err := s.UpdateConsumer(ctx, inactive)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Ameer K" || !updated.IsActive || updated.Phone == nil || *updated.Phone != "555" {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if _, err := s.UpdateConsumer(ctx, core.Consumer{ID: "missing", Name: "X"}); !core.IsNotFound(err) {
		t.Fatalf("expected not found on update, got %v", err)
	}
}

func testConsumerDelete(t *testing.T, s storage.Store) {
	ctx := context.Background()
	withBills := MustConsumer(t, s, "Muneer")
	empty := MustConsumer(t, s, "Hamad")
	MustBill(t, s, withBills.ID, core.Lunch, 500, core.NewDate(2024, 6, 1))

	if n, err := s.CountBillsByConsumer(ctx, withBills.ID); err != nil || n != 1 {
		t.Fatalf("count: %d, %v", n, err)
	}
	got, err := s.GetConsumer(ctx, withBills.ID)
	if err != nil || got.BillCount != 1 {
		t.Fatalf("expected bill count 1, got %+v (err=%v)", got, err)
	}
	if err := s.DeleteConsumer(ctx, withBills.ID); !core.IsConflict(err) {
		t.Fatalf("expected conflict deleting consumer with bills, got %v", err)
	}
	if err := s.DeleteConsumer(ctx, empty.ID); err != nil {
		t.Fatalf("delete empty consumer: %v", err)
	}
	if err := s.DeleteConsumer(ctx, empty.ID); !core.IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func testBills(t *testing.T, s storage.Store) {
	ctx := context.Background()
	c := MustConsumer(t, s, "Hamad")
	other := MustConsumer(t, s, "Muneer")

	if _, err := s.CreateBill(ctx, core.Bill{ConsumerID: "missing", MealType: core.Lunch, Amount: core.Money{Cents: 1}, Date: core.NewDate(2024, 6, 1)}); !core.IsNotFound(err) {
		t.Fatalf("expected not found for unknown consumer, got %v", err)
	}

	b := MustBill(t, s, c.ID, core.Breakfast, 1250, core.NewDate(2024, 6, 15))
	if b.ID == "" || b.ConsumerName != "Hamad" || b.Date.String() != "2024-06-15" || b.Amount.Cents != 1250 {
		t.Fatalf("unexpected bill %+v", b)
	}

	got, err := s.GetBill(ctx, b.ID)
	if err != nil || got.ConsumerName != "Hamad" || got.MealType != core.Breakfast {
		t.Fatalf("get bill: %+v, %v", got, err)
	}

	got.ConsumerID = other.ID
	got.MealType = core.Dinner
	got.Amount = core.Money{Cents: 999}
	got.Date = core.NewDate(2024, 6, 14)
	updated, err := s.UpdateBill(ctx, got)
	if err != nil {
		t.Fatalf("update bill: %v", err)
	}
	if updated.ConsumerName != "Muneer" || updated.MealType != core.Dinner || updated.Amount.Cents != 999 || updated.Date.String() != "2024-06-14" {
		t.Fatalf("unexpected updated bill %+v", updated)
	}

	got.ConsumerID = "missing"
	if _, err := s.UpdateBill(ctx, got); !core.IsNotFound(err) {
		t.Fatalf("expected not found for unknown consumer on update, got %v", err)
	}
	if _, err := s.UpdateBill(ctx, core.Bill{ID: "missing", ConsumerID: c.ID, MealType: core.Lunch, Amount: core.Money{Cents: 1}, Date: core.NewDate(2024, 1, 1)}); !core.IsNotFound(err) {
		t.Fatalf("expected not found for unknown bill, got %v", err)
	}

	if err := s.DeleteBill(ctx, b.ID); err != nil {
		t.Fatalf("delete bill: %v", err)
	}
	if _, err := s.GetBill(ctx, b.ID); !core.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := s.DeleteBill(ctx, b.ID); !core.IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func testBillFilters(t *testing.T, s storage.Store) {
	ctx := context.Background()
	h := MustConsumer(t, s, "Hamad")
	m := MustConsumer(t, s, "Muneer")

	MustBill(t, s, h.ID, core.Lunch, 100, core.NewDate(2024, 6, 7))
	MustBill(t, s, h.ID, core.Dinner, 200, core.NewDate(2024, 6, 8))
	MustBill(t, s, m.ID, core.Lunch, 300, core.NewDate(2024, 6, 15))
	MustBill(t, s, h.ID, core.Breakfast, 400, core.NewDate(2024, 6, 15))
	MustBill(t, s, m.ID, core.Lunch, 500, core.NewDate(2024, 6, 16))

	all, err := s.ListBills(ctx, core.BillFilter{})
	if err != nil || len(all) != 5 {
		t.Fatalf("list all: %d, %v", len(all), err)
	}
	for i := 1; i < len(all); i++ {
		if all[i].Date.After(all[i-1].Date.Time) {
			t.Fatalf("bills not ordered by date desc at %d: %s after %s", i, all[i].Date, all[i-1].Date)
		}
	}
	// same day: newest entry first
	if all[1].Amount.Cents != 400 || all[2].Amount.Cents != 300 {
		t.Fatalf("expected newest first within a day, got %d then %d", all[1].Amount.Cents, all[2].Amount.Cents)
	}

	from := core.NewDate(2024, 6, 8)
	until := core.NewDate(2024, 6, 15)
	windowed, err := s.ListBills(ctx, core.BillFilter{From: &from, Until: &until})
	if err != nil || len(windowed) != 3 {
		t.Fatalf("expected 3 bills in [06-08, 06-15], got %d (err=%v)", len(windowed), err)
	}
	if windowed[0].Date.String() != "2024-06-15" {
		t.Fatalf("bill on the end date must be included, first was %s", windowed[0].Date)
	}

	name := "Muneer"
	lunch := core.Lunch
	filtered, err := s.ListBills(ctx, core.BillFilter{ConsumerName: &name, MealType: &lunch, Until: &until})
	if err != nil || len(filtered) != 1 || filtered[0].Amount.Cents != 300 {
		t.Fatalf("expected Muneer's lunch on 06-15 only, got %+v (err=%v)", filtered, err)
	}

	nobody := "Nobody"
	empty, err := s.ListBills(ctx, core.BillFilter{ConsumerName: &nobody})
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v (err=%v)", empty, err)
	}

	lastDay := core.NewDate(9999, 12, 31)
	upToLast, err := s.ListBills(ctx, core.BillFilter{Until: &lastDay})
	if err != nil || len(upToLast) != 5 {
		t.Fatalf("%q expected all 5 bills, got %d (err=%v)", lastDay, len(upToLast), err)
	}
	totals, err := s.TotalsByMealType(ctx, core.BillFilter{Until: &lastDay})
	if err != nil {
		t.Fatalf("totals up to %s: %v", lastDay, err)
	}
	counted := 0
	for _, tt := range totals {
		counted += tt.Count
	}
	if counted != 5 {
		t.Fatalf("%q expected totals over 5 bills, got %d", lastDay, counted)
	}
}

func testMealTypeTotals(t *testing.T, s storage.Store) {
	ctx := context.Background()
	h := MustConsumer(t, s, "Hamad")
	m := MustConsumer(t, s, "Muneer")
	MustBill(t, s, h.ID, core.Dinner, 333, core.NewDate(2024, 6, 1))
	MustBill(t, s, m.ID, core.Dinner, 1, core.NewDate(2024, 6, 2))
	MustBill(t, s, h.ID, core.Breakfast, 150, core.NewDate(2024, 6, 3))
	MustBill(t, s, m.ID, core.Breakfast, 50, core.NewDate(2024, 7, 1))

	totals, err := s.TotalsByMealType(ctx, core.BillFilter{})
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if len(totals) != 2 || totals[0].MealType != core.Breakfast || totals[1].MealType != core.Dinner {
		t.Fatalf("expected breakfast then dinner, got %+v", totals)
	}
	if totals[0].Count != 2 || totals[0].Total.Cents != 200 || totals[1].Count != 2 || totals[1].Total.Cents != 334 {
		t.Fatalf("unexpected totals %+v", totals)
	}

	until := core.NewDate(2024, 6, 30)
	name := "Hamad"
	scoped, err := s.TotalsByMealType(ctx, core.BillFilter{ConsumerName: &name, Until: &until})
	if err != nil || len(scoped) != 2 || scoped[0].Total.Cents != 150 || scoped[1].Total.Cents != 333 {
		t.Fatalf("unexpected scoped totals %+v (err=%v)", scoped, err)
	}
}

func testRecentBills(t *testing.T, s storage.Store) {
	ctx := context.Background()
	c := MustConsumer(t, s, "Hamad")
	var last core.Bill
	for i := 1; i <= 12; i++ {
		last = MustBill(t, s, c.ID, core.Lunch, int64(i*100), core.NewDate(2024, 1, i))
	}
	recent, err := s.RecentBills(ctx, storage.RecentBillsLimit)
	if err != nil || len(recent) != storage.RecentBillsLimit {
		t.Fatalf("expected %d recent bills, got %d (err=%v)", storage.RecentBillsLimit, len(recent), err)
	}
	if recent[0].ID != last.ID {
		t.Fatalf("expected most recently created first")
	}
}
