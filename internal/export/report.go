// Package export renders bill reports: a detail table, per-consumer
// subtotals with a meal-type breakdown, and a grand total.
package export

import (
	"fmt"
	"strings"
	"time"

	"mealbills/internal/core"
)

const (
	reportTitle      = "Bill Management System Export"
	longDateLayout   = "January 2, 2006"
	detailDateLayout = "Jan 02, 2006"
	currencyPrefix   = "RS "
)

// Subtotal is one consumer's share of a report.
type Subtotal struct {
	ConsumerName string
	Count        int
	Total        core.Money
	Breakdown    map[core.MealType]core.Money
}

// Report is a bill set reduced for export.
type Report struct {
	Bills      []core.Bill
	Subtotals  []Subtotal
	GrandTotal core.Money
	BillCount  int
}

// Meta describes how the report was selected.
type Meta struct {
	GeneratedAt  time.Time
	ConsumerName string // empty means all consumers
	From         *core.Date
	Until        *core.Date
}

// Build groups bills by consumer in first-seen order.
func Build(bills []core.Bill) Report {
	groups := core.FoldByConsumer(bills)
	index := make(map[string]int, len(groups))
	subtotals := make([]Subtotal, len(groups))
	for i, g := range groups {
		index[g.ConsumerName] = i
		subtotals[i] = Subtotal{
			ConsumerName: g.ConsumerName,
			Count:        g.Count,
			Total:        g.Total,
			Breakdown:    make(map[core.MealType]core.Money, len(core.MealTypes)),
		}
	}
	for _, b := range bills {
		s := &subtotals[index[b.ConsumerName]]
		s.Breakdown[b.MealType] = s.Breakdown[b.MealType].Add(b.Amount)
	}
	return Report{
		Bills:      bills,
		Subtotals:  subtotals,
		GrandTotal: core.GrandTotal(groups),
		BillCount:  len(bills),
	}
}

// FileName is the download name for a report generated at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("bills-export-%s.csv", t.Format(core.DateLayout))
}

func formatMoney(m core.Money) string {
	return currencyPrefix + m.String()
}

// Rows lays the report out as a grid: header block, detail table,
// summary table and grand total, separated by empty rows.
func Rows(r Report, meta Meta) [][]string {
	rows := [][]string{
		{reportTitle},
		{"Export Date:", meta.GeneratedAt.Format(longDateLayout)},
		{"Consumer Filter:", consumerLabel(meta.ConsumerName)},
	}
	if meta.From != nil || meta.Until != nil {
		rows = append(rows, []string{"Date Range:", rangeBound(meta.From, "Start") + " - " + rangeBound(meta.Until, "End")})
	}
	rows = append(rows, []string{})

	rows = append(rows, []string{"Consumer", "Meal Type", "Amount", "Date"})
	for _, b := range r.Bills {
		rows = append(rows, []string{
			textCell(b.ConsumerName),
			strings.ToLower(string(b.MealType)),
			formatMoney(b.Amount),
			b.Date.Format(detailDateLayout),
		})
	}

	rows = append(rows, []string{}, []string{"SUMMARY"})
	header := []string{"Consumer", "Total Amount", "Bill Count"}
	for _, mt := range core.MealTypes {
		header = append(header, mealLabel(mt))
	}
	rows = append(rows, header)
	for _, s := range r.Subtotals {
		row := []string{textCell(s.ConsumerName), formatMoney(s.Total), fmt.Sprint(s.Count)}
		for _, mt := range core.MealTypes {
			row = append(row, formatMoney(s.Breakdown[mt]))
		}
		rows = append(rows, row)
	}

	rows = append(rows, []string{}, []string{"GRAND TOTAL", formatMoney(r.GrandTotal), fmt.Sprint(r.BillCount)})
	return rows
}

func consumerLabel(name string) string {
	if name == "" {
		return "All Consumers"
	}
	return textCell(name)
}

func rangeBound(d *core.Date, open string) string {
	if d == nil {
		return open
	}
	return d.Format(longDateLayout)
}

// textCell quotes free text that a spreadsheet would read as a formula.
func textCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

// mealLabel turns LUNCH into Lunch.
func mealLabel(mt core.MealType) string {
	s := strings.ToLower(string(mt))
	return strings.ToUpper(s[:1]) + s[1:]
}
