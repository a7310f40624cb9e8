package http

import (
	"net/http"

	"mealbills/internal/core"
)

func (s *Server) handleListConsumers(w http.ResponseWriter, r *http.Request) {
	active, err := parseIsActive(queryParam(r, "isActive"))
	if err != nil {
		writeError(w, r, err, "Failed to fetch consumers")
		return
	}
	consumers, err := s.consumers.List(r.Context(), core.ConsumerFilter{IsActive: active})
	if err != nil {
		writeError(w, r, err, "Failed to fetch consumers")
		return
	}
	out := make([]consumerResponse, len(consumers))
	for i, c := range consumers {
		out[i] = toConsumerResponse(c)
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleCreateConsumer(w http.ResponseWriter, r *http.Request) {
	var req consumerRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "Failed to create consumer")
		return
	}
	c, err := s.consumers.Create(r.Context(), req.toInput())
	if err != nil {
		writeError(w, r, err, "Failed to create consumer")
		return
	}
	writeJSON(w, r, http.StatusCreated, toConsumerResponse(c))
}

func (s *Server) handleGetConsumer(w http.ResponseWriter, r *http.Request) {
	c, err := s.consumers.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "Failed to fetch consumer")
		return
	}
	writeJSON(w, r, http.StatusOK, toConsumerResponse(c))
}

func (s *Server) handleUpdateConsumer(w http.ResponseWriter, r *http.Request) {
	var req consumerRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "Failed to update consumer")
		return
	}
	c, err := s.consumers.Update(r.Context(), r.PathValue("id"), req.toInput())
	if err != nil {
		writeError(w, r, err, "Failed to update consumer")
		return
	}
	writeJSON(w, r, http.StatusOK, toConsumerResponse(c))
}

func (s *Server) handleDeleteConsumer(w http.ResponseWriter, r *http.Request) {
	if err := s.consumers.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err, "Failed to delete consumer")
		return
	}
	writeMessage(w, r, "Consumer deleted successfully")
}
