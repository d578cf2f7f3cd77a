package api

import (
	"net/http"

	"github.com/nerrad567/album-catalog/internal/auth"
)

type updateRoleRequest struct {
	Role string `json:"role"`
}

type setEnabledRequest struct {
	Enabled *bool `json:"enabled"`
}

// handleListUsers returns all user accounts. ADMIN only.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context(), callerFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, "list users", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": users,
		"count": len(users),
	})
}

// handleGetUser returns one account. ADMIN only.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	user, err := s.users.Get(r.Context(), callerFrom(r.Context()), id)
	if err != nil {
		s.writeServiceError(w, r, "get user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleUpdateUserRole sets an account's role. The value is normalized, so
// "editor" and "ROLE_EDITOR" both mean EDITOR.
func (s *Server) handleUpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req updateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Role == "" {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, auth.ErrInvalidRole.Error())
		return
	}

	user, err := s.users.UpdateRole(r.Context(), callerFrom(r.Context()), id, req.Role)
	if err != nil {
		s.writeServiceError(w, r, "update role", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleSetUserEnabled enables or disables an account.
func (s *Server) handleSetUserEnabled(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req setEnabledRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Enabled == nil {
		writeBadRequest(w, "enabled is required")
		return
	}

	user, err := s.users.SetEnabled(r.Context(), callerFrom(r.Context()), id, *req.Enabled)
	if err != nil {
		s.writeServiceError(w, r, "set user enabled", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleDeleteUser removes an account. Albums it owned are kept without
// an owner.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := s.users.Delete(r.Context(), callerFrom(r.Context()), id); err != nil {
		s.writeServiceError(w, r, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
