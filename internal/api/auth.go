package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/album-catalog/internal/auth"
)

// ticketTTL is how long a WebSocket ticket is valid.
const ticketTTL = 60 * time.Second

// credentialsRequest is the body of POST /auth/register and /auth/login.
// Role is only meaningful for registration, where anything but USER is refused.
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// authResponse is returned by register and login.
type authResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
	UserID   int64  `json:"userId"`
}

type meResponse struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// handleRegister creates a USER account and signs the new user in.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := s.authenticator.Register(r.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		s.writeServiceError(w, r, "register", err)
		return
	}

	session, err := s.authenticator.IssueSession(user)
	if err != nil {
		s.writeServiceError(w, r, "issue token", err)
		return
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	writeJSON(w, http.StatusCreated, newAuthResponse(session))
}

// handleLogin authenticates a user and returns a session token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		writeBadRequest(w, "username and password are required")
		return
	}

	session, err := s.authenticator.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.Info("login failed", "username", req.Username)
		}
		s.writeServiceError(w, r, "login", err)
		return
	}

	writeJSON(w, http.StatusOK, newAuthResponse(session))
}

func newAuthResponse(session *auth.Session) authResponse {
	return authResponse{
		Token:    session.Token,
		Username: session.User.Username,
		Role:     string(session.User.EffectiveRole()),
		UserID:   session.User.ID,
	}
}

// handleMe returns the caller as resolved for this request.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r.Context())
	writeJSON(w, http.StatusOK, meResponse{
		UserID:   caller.ID,
		Username: caller.Username,
		Role:     string(caller.Role),
	})
}

// handleChangePassword replaces the caller's own password.
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	caller := callerFrom(r.Context())
	err := s.authenticator.ChangePassword(r.Context(), caller.ID, req.CurrentPassword, req.NewPassword)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeBadRequest(w, "current password is incorrect")
		return
	}
	if err != nil {
		s.writeServiceError(w, r, "change password", err)
		return
	}

	s.logger.Info("password changed", "user_id", caller.ID)
	w.WriteHeader(http.StatusNoContent)
}

// handleWSTicket generates a single-use WebSocket authentication ticket.
// The client uses this ticket to authenticate the WebSocket connection
// without exposing the bearer token in the URL.
func (s *Server) handleWSTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := s.tickets.issue(callerFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, "issue ticket", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ticket":     ticket,
		"expires_in": int(ticketTTL.Seconds()),
	})
}

// ticketStore holds pending WebSocket authentication tickets.
// Tickets are single-use and expire after ttl.
type ticketStore struct {
	tickets map[string]ticketEntry
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
}

type ticketEntry struct {
	caller    auth.Caller
	expiresAt time.Time
}

func newTicketStore(ttl time.Duration) *ticketStore {
	return &ticketStore{
		tickets: make(map[string]ticketEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// ticketBytes is the number of random bytes used for WebSocket tickets.
const ticketBytes = 32

func (ts *ticketStore) issue(caller auth.Caller) (string, error) {
	b := make([]byte, ticketBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	ticket := hex.EncodeToString(b)

	ts.mu.Lock()
	ts.tickets[ticket] = ticketEntry{caller: caller, expiresAt: ts.now().Add(ts.ttl)}
	ts.mu.Unlock()

	return ticket, nil
}

// consume validates a ticket and removes it (single-use).
func (ts *ticketStore) consume(ticket string) (auth.Caller, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	entry, ok := ts.tickets[ticket]
	if !ok {
		return auth.Caller{}, false
	}
	delete(ts.tickets, ticket)

	if !ts.now().Before(entry.expiresAt) {
		return auth.Caller{}, false
	}
	return entry.caller, true
}

// cleanExpired removes expired tickets from the store.
func (ts *ticketStore) cleanExpired() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	now := ts.now()
	for ticket, entry := range ts.tickets {
		if now.After(entry.expiresAt) {
			delete(ts.tickets, ticket)
		}
	}
}

func (ts *ticketStore) size() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.tickets)
}

// cleanTicketsLoop runs cleanExpired periodically until the context is cancelled.
func (s *Server) cleanTicketsLoop(ctx context.Context) {
	ticker := time.NewTicker(ticketTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tickets.cleanExpired()
		}
	}
}

// decodeJSON decodes the request body into v, writing a 400 (or 413 for an
// oversized body) and returning false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "request body too large")
			return false
		}
		writeBadRequest(w, "invalid JSON body")
		return false
	}
	return true
}
