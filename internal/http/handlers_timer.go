package http

import (
	"net/http"

	"tempo/internal/middleware/identity"
)

type startTimerRequest struct {
	ClientID    string `json:"clientId"`
	ProjectID   string `json:"projectId"`
	Description string `json:"description"`
}

type stopTimerRequest struct {
	EntryID string `json:"entryId"`
}

type updateEntryRequest struct {
	Description string `json:"description"`
}

// handleTimerCurrent returns the running entry joined with its client and
// project, or a JSON null when the timer is idle.
func (s *Server) handleTimerCurrent(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserID(r.Context())
	current, err := s.timer.Current(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, current)
}

func (s *Server) handleTimerStart(w http.ResponseWriter, r *http.Request) {
	var req startTimerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := identity.UserID(r.Context())
	id, err := s.timer.Start(r.Context(), userID, req.ClientID, req.ProjectID,
		sanitizeInput(req.Description))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateReports(userID)
	writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

func (s *Server) handleTimerStop(w http.ResponseWriter, r *http.Request) {
	var req stopTimerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := identity.UserID(r.Context())
	if err := s.timer.Stop(r.Context(), userID, req.EntryID); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateReports(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	var req updateEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := identity.UserID(r.Context())
	entryID := r.PathValue("id")
	if err := s.timer.UpdateDescription(r.Context(), userID, entryID,
		sanitizeInput(req.Description)); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateReports(userID)
	w.WriteHeader(http.StatusNoContent)
}
