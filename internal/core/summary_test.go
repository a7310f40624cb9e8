package core

import "testing"

func bill(name string, mt MealType, cents int64, d Date) Bill {
	return Bill{ConsumerName: name, MealType: mt, Amount: Money{Cents: cents}, Date: d}
}

func sampleBills() []Bill {
	return []Bill{
		bill("Muneer", Lunch, 1050, NewDate(2024, 6, 14)),
		bill("Hamad", Breakfast, 333, NewDate(2024, 6, 15)),
		bill("Muneer", Dinner, 1, NewDate(2024, 6, 12)),
		bill("Ameer", Lunch, 999, NewDate(2024, 6, 15)),
		bill("Hamad", Lunch, 10, NewDate(2024, 6, 12)),
	}
}

func TestFoldByConsumerKeepsFirstSeenOrder(t *testing.T) {
	groups := FoldByConsumer(sampleBills())
	want := []ConsumerTotal{
		{ConsumerName: "Muneer", Count: 2, Total: Money{Cents: 1051}},
		{ConsumerName: "Hamad", Count: 2, Total: Money{Cents: 343}},
		{ConsumerName: "Ameer", Count: 1, Total: Money{Cents: 999}},
	}
	if len(groups) != len(want) {
		t.Fatalf("expected %d groups, got %d", len(want), len(groups))
	}
	for i := range want {
		if groups[i] != want[i] {
			t.Fatalf("group %d: expected %+v, got %+v", i, want[i], groups[i])
		}
	}
}

func TestGrandTotalMatchesBillSum(t *testing.T) {
	bills := sampleBills()
	groups := FoldByConsumer(bills)
	if GrandTotal(groups) != Sum(bills) {
		t.Fatalf("grand total %s differs from bill sum %s", GrandTotal(groups), Sum(bills))
	}
	count := 0
	for _, g := range groups {
		count += g.Count
	}
	if count != len(bills) {
		t.Fatalf("expected %d bills across groups, got %d", len(bills), count)
	}
}

func TestFoldByConsumerEmpty(t *testing.T) {
	groups := FoldByConsumer(nil)
	if groups == nil || len(groups) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", groups)
	}
	if GrandTotal(groups).Cents != 0 {
		t.Fatalf("expected zero grand total")
	}
}

func TestFoldDailySortedAscending(t *testing.T) {
	daily := FoldDaily(sampleBills())
	want := []DailyTotal{
		{Date: "2024-06-12", Count: 2, Total: Money{Cents: 11}},
		{Date: "2024-06-14", Count: 1, Total: Money{Cents: 1050}},
		{Date: "2024-06-15", Count: 2, Total: Money{Cents: 1332}},
	}
	if len(daily) != len(want) {
		t.Fatalf("expected %d days, got %d", len(want), len(daily))
	}
	for i := range want {
		if daily[i] != want[i] {
			t.Fatalf("day %d: expected %+v, got %+v", i, want[i], daily[i])
		}
	}
}

func TestFoldByMealTypeCanonicalOrder(t *testing.T) {
	totals := FoldByMealType(sampleBills())
	if len(totals) != 3 {
		t.Fatalf("expected 3 meal types, got %d", len(totals))
	}
	for i, mt := range MealTypes {
		if totals[i].MealType != mt {
			t.Fatalf("position %d: expected %s, got %s", i, mt, totals[i].MealType)
		}
	}
	if totals[1].Count != 3 || totals[1].Total.Cents != 2059 {
		t.Fatalf("unexpected lunch total %+v", totals[1])
	}
}
