package http

import (
	"net/http"

	"tempo/internal/core"
	"tempo/internal/middleware/identity"
	"tempo/internal/services"
)

type createClientRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateClientRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

type createProjectRequest struct {
	ClientID    string `json:"clientId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateProjectRequest struct {
	ClientID    *string `json:"clientId"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

type createdResponse struct {
	ID string `json:"id"`
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserID(r.Context())
	clients, err := s.catalog.Clients(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if clients == nil {
		clients = []core.Client{}
	}
	writeJSON(w, http.StatusOK, clients)
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := identity.UserID(r.Context())
	id, err := s.catalog.CreateClient(r.Context(), userID,
		sanitizeInput(req.Name), sanitizeInput(req.Description))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateReports(userID)
	writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	var req updateClientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := identity.UserID(r.Context())
	upd := services.ClientUpdate{
		ID:       r.PathValue("id"),
		IsActive: req.IsActive,
	}
	if req.Name != nil {
		name := sanitizeInput(*req.Name)
		upd.Name = &name
	}
	if req.Description != nil {
		desc := sanitizeInput(*req.Description)
		upd.Description = &desc
	}
	if err := s.catalog.UpdateClient(r.Context(), userID, upd); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateReports(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserID(r.Context())
	clientID := r.URL.Query().Get("clientId")
	projects, err := s.catalog.Projects(r.Context(), userID, clientID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if projects == nil {
		projects = []core.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := identity.UserID(r.Context())
	id, err := s.catalog.CreateProject(r.Context(), userID, req.ClientID,
		sanitizeInput(req.Name), sanitizeInput(req.Description))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateReports(userID)
	writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var req updateProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := identity.UserID(r.Context())
	upd := services.ProjectUpdate{
		ID:       r.PathValue("id"),
		ClientID: req.ClientID,
		IsActive: req.IsActive,
	}
	if req.Name != nil {
		name := sanitizeInput(*req.Name)
		upd.Name = &name
	}
	if req.Description != nil {
		desc := sanitizeInput(*req.Description)
		upd.Description = &desc
	}
	if err := s.catalog.UpdateProject(r.Context(), userID, upd); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateReports(userID)
	w.WriteHeader(http.StatusNoContent)
}
