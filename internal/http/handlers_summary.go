package http

import (
	"net/http"

	"mealbills/internal/core"
	"mealbills/internal/services"
)

type summaryResponse struct {
	TotalByConsumer []core.ConsumerTotal `json:"totalByConsumer"`
	TotalByMealType []core.MealTypeTotal `json:"totalByMealType"`
	DailyTotals     []core.DailyTotal    `json:"dailyTotals"`
	GrandTotal      core.Money           `json:"grandTotal"`
	Period          core.Period          `json:"period"`
	StartDate       *core.Date           `json:"startDate"`
	EndDate         core.Date            `json:"endDate"`
}

type statsResponse struct {
	TotalBills      int                  `json:"totalBills"`
	TotalAmount     core.Money           `json:"totalAmount"`
	BillsByMealType []core.MealTypeTotal `json:"billsByMealType"`
	RecentBills     []billResponse       `json:"recentBills"`
	DailyTotals     []core.DailyTotal    `json:"dailyTotals"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	const failed = "Failed to fetch summary"

	period, err := core.ParsePeriod(queryParam(r, "period"))
	if err != nil {
		writeError(w, r, err, failed)
		return
	}
	start, err := core.ParseOptionalDate(queryParam(r, "startDate"))
	if err != nil {
		writeError(w, r, err, failed)
		return
	}
	end, err := core.ParseOptionalDate(queryParam(r, "endDate"))
	if err != nil {
		writeError(w, r, err, failed)
		return
	}
	// the bill filter owns the "all" convention for consumer names
	f, err := core.NewBillFilter(queryParam(r, "consumerName"), "", "", "")
	if err != nil {
		writeError(w, r, err, failed)
		return
	}

	sum, err := s.summary.Summarize(r.Context(), services.SummaryQuery{
		Period:       period,
		ConsumerName: f.ConsumerName,
		Start:        start,
		End:          end,
	})
	if err != nil {
		writeError(w, r, err, failed)
		return
	}
	writeJSON(w, r, http.StatusOK, summaryResponse{
		TotalByConsumer: nonNil(sum.ByConsumer),
		TotalByMealType: nonNil(sum.ByMealType),
		DailyTotals:     nonNil(sum.Daily),
		GrandTotal:      sum.GrandTotal,
		Period:          sum.Period,
		StartDate:       sum.Window.Start,
		EndDate:         sum.Window.End,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.summary.Stats(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to fetch bill statistics")
		return
	}
	writeJSON(w, r, http.StatusOK, statsResponse{
		TotalBills:      st.TotalBills,
		TotalAmount:     st.TotalAmount,
		BillsByMealType: nonNil(st.ByMealType),
		RecentBills:     toBillResponses(st.RecentBills),
		DailyTotals:     nonNil(st.Daily),
	})
}
