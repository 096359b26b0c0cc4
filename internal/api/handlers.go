package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/integration-list-exporter/internal/entry"
	"github.com/nerrad567/integration-list-exporter/internal/history"
)

// maxRunsLimit caps the limit query parameter of the runs endpoint.
const maxRunsLimit = 500

type createEntryRequest struct {
	Title      string `json:"title"`
	UpdateTime string `json:"update_time"`
}

func (s *Server) handleListEntries(w http.ResponseWriter, _ *http.Request) {
	entries := s.entries.Entries()
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	e, err := s.entries.Add(r.Context(), req.Title, req.UpdateTime)
	switch {
	case errors.Is(err, entry.ErrInvalidTime):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	case errors.Is(err, entry.ErrNoRepository):
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "entry storage not configured")
		return
	case err != nil:
		s.logger.Error("failed to create entry", "error", err)
		writeInternalError(w, "failed to create entry")
		return
	}

	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := s.entries.Remove(r.Context(), id)
	switch {
	case errors.Is(err, entry.ErrEntryNotFound):
		writeNotFound(w, "entry not found")
		return
	case errors.Is(err, entry.ErrNoRepository):
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "entry storage not configured")
		return
	case err != nil:
		s.logger.Error("failed to delete entry", "entry_id", id, "error", err)
		writeInternalError(w, "failed to delete entry")
		return
	}

	if s.onRemove != nil {
		s.onRemove(id)
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCallService runs a command synchronously. A failed export answers 500
// with the joined per-entry errors so callers can see which entry failed.
func (s *Server) handleCallService(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	err := s.services.Call(r.Context(), entry.Domain, name)
	switch {
	case errors.Is(err, entry.ErrServiceNotFound):
		writeNotFound(w, "service not registered: "+name)
		return
	case err != nil:
		writeInternalError(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": entry.Domain + "." + name,
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "run history not configured")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxRunsLimit {
			writeBadRequest(w, "limit must be between 1 and "+strconv.Itoa(maxRunsLimit))
			return
		}
		limit = n
	}

	var (
		runs []history.Run
		err  error
	)
	if entryID := r.URL.Query().Get("entry_id"); entryID != "" {
		runs, err = s.history.ListByEntry(r.Context(), entryID, limit)
	} else {
		runs, err = s.history.ListRecent(r.Context(), limit)
	}
	if err != nil {
		s.logger.Error("failed to list runs", "error", err)
		writeInternalError(w, "failed to list runs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}
