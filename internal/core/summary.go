package core

import "sort"

// ConsumerTotal accumulates bills for one consumer name.
type ConsumerTotal struct {
	ConsumerName string `json:"consumerName"`
	Count        int    `json:"count"`
	Total        Money  `json:"total"`
}

// MealTypeTotal accumulates bills for one meal type.
type MealTypeTotal struct {
	MealType MealType `json:"mealType"`
	Count    int      `json:"count"`
	Total    Money    `json:"total"`
}

// DailyTotal accumulates bills for one calendar day, rendered YYYY-MM-DD.
type DailyTotal struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Total Money  `json:"total"`
}

// Summary is the aggregated view of a bill set over a resolved window.
type Summary struct {
	ByConsumer []ConsumerTotal
	ByMealType []MealTypeTotal
	Daily      []DailyTotal
	GrandTotal Money
	Period     Period
	Window     Window
}

// FoldByConsumer groups bills by consumer name, keeping groups in the
// order their first bill appears.
func FoldByConsumer(bills []Bill) []ConsumerTotal {
	index := make(map[string]int)
	out := make([]ConsumerTotal, 0)
	for _, b := range bills {
		i, ok := index[b.ConsumerName]
		if !ok {
			i = len(out)
			index[b.ConsumerName] = i
			out = append(out, ConsumerTotal{ConsumerName: b.ConsumerName})
		}
		out[i].Count++
		out[i].Total = out[i].Total.Add(b.Amount)
	}
	return out
}

// FoldByMealType groups bills by meal type in canonical meal order.
// Meal types without bills are omitted.
func FoldByMealType(bills []Bill) []MealTypeTotal {
	acc := make(map[MealType]*MealTypeTotal)
	for _, b := range bills {
		t, ok := acc[b.MealType]
		if !ok {
			t = &MealTypeTotal{MealType: b.MealType}
			acc[b.MealType] = t
		}
		t.Count++
		t.Total = t.Total.Add(b.Amount)
	}
	out := make([]MealTypeTotal, 0, len(acc))
	for _, t := range acc {
		out = append(out, *t)
	}
	SortMealTypeTotals(out)
	return out
}

// SortMealTypeTotals orders totals by canonical meal order.
func SortMealTypeTotals(totals []MealTypeTotal) {
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].MealType.Rank() < totals[j].MealType.Rank()
	})
}

// FoldDaily groups bills by calendar day, ascending.
func FoldDaily(bills []Bill) []DailyTotal {
	acc := make(map[string]*DailyTotal)
	for _, b := range bills {
		key := b.Date.String()
		t, ok := acc[key]
		if !ok {
			t = &DailyTotal{Date: key}
			acc[key] = t
		}
		t.Count++
		t.Total = t.Total.Add(b.Amount)
	}
	out := make([]DailyTotal, 0, len(acc))
	for _, t := range acc {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// GrandTotal sums the per-consumer totals.
func GrandTotal(groups []ConsumerTotal) Money {
	var sum Money
	for _, g := range groups {
		sum = sum.Add(g.Total)
	}
	return sum
}

// Sum adds up the amounts of bills.
func Sum(bills []Bill) Money {
	var sum Money
	for _, b := range bills {
		sum = sum.Add(b.Amount)
	}
	return sum
}
