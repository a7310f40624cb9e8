package http

import (
	"fmt"
	"net/http"

	"mealbills/internal/core"
	"mealbills/internal/export"
	applog "mealbills/internal/log"
)

type exportJobResponse struct {
	ID          string `json:"id"`
	RequestedAt string `json:"requestedAt"`
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	f, err := core.NewBillFilter(
		queryParam(r, "consumerName"),
		queryParam(r, "mealType"),
		queryParam(r, "startDate"),
		queryParam(r, "endDate"),
	)
	if err != nil {
		writeError(w, r, err, "Failed to export bills")
		return
	}
	report, meta, err := s.exports.BuildReport(r.Context(), f)
	if err != nil {
		writeError(w, r, err, "Failed to export bills")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", export.FileName(meta.GeneratedAt)))
	w.WriteHeader(http.StatusOK)
	if err := export.WriteCSV(w, report, meta); err != nil {
		// headers are gone; all that is left is to log
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to stream export",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpExport)
	}
}

func (s *Server) handleEnqueueExport(w http.ResponseWriter, r *http.Request) {
	var req exportJobRequest
	// an empty body exports everything
	if r.ContentLength != 0 {
		if err := s.decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "Failed to enqueue export")
			return
		}
	}
	job, err := s.exports.Enqueue(r.Context(), sanitizeInput(req.ConsumerName), sanitizeInput(req.StartDate), sanitizeInput(req.EndDate))
	if err != nil {
		writeError(w, r, err, "Failed to enqueue export")
		return
	}
	writeJSON(w, r, http.StatusAccepted, exportJobResponse{
		ID:          job.ID,
		RequestedAt: job.RequestedAt.Format(timestampLayout),
	})
}
