package http

import (
	"net/http"

	"mealbills/internal/core"
)

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	f, err := core.NewBillFilter(
		queryParam(r, "consumerName"),
		queryParam(r, "mealType"),
		queryParam(r, "startDate"),
		queryParam(r, "endDate"),
	)
	if err != nil {
		writeError(w, r, err, "Failed to fetch bills")
		return
	}
	bills, err := s.bills.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err, "Failed to fetch bills")
		return
	}
	writeJSON(w, r, http.StatusOK, toBillResponses(bills))
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "Failed to create bill")
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, r, err, "Failed to create bill")
		return
	}
	b, err := s.bills.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err, "Failed to create bill")
		return
	}
	writeJSON(w, r, http.StatusCreated, toBillResponse(b))
}

func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	b, err := s.bills.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "Failed to fetch bill")
		return
	}
	writeJSON(w, r, http.StatusOK, toBillResponse(b))
}

func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	var req updateBillRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "Failed to update bill")
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		writeError(w, r, err, "Failed to update bill")
		return
	}
	b, err := s.bills.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err, "Failed to update bill")
		return
	}
	writeJSON(w, r, http.StatusOK, toBillResponse(b))
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	if err := s.bills.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err, "Failed to delete bill")
		return
	}
	writeMessage(w, r, "Bill deleted successfully")
}
