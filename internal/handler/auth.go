package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/ess-backend/internal/schema"
	"github.com/sakif/ess-backend/internal/service"
)

// AuthHandler serves register and login.
type AuthHandler struct {
	auth    *service.AuthService
	schemas *schema.Validator
	logger  *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth *service.AuthService, schemas *schema.Validator, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, schemas: schemas, logger: logger}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates an account.
//
// HTTP: POST /api/register
// REQUEST BODY: {"email": "a@x.com", "password": "pw"}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(w, r, h.schemas, schema.Credentials, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	res, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeTokens(w, res)
}

// HandleLogin checks credentials and issues fresh tokens.
//
// HTTP: POST /api/login
// REQUEST BODY: {"email": "a@x.com", "password": "pw"}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(w, r, h.schemas, schema.Credentials, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeTokens(w, res)
}

// Both register and login answer "Successful Login".
func writeTokens(w http.ResponseWriter, res *service.AuthResult) {
	tok := res.Token
	writeJSON(w, http.StatusOK, Response{
		Result:      true,
		Message:     "Successful Login",
		Token:       &tok,
		AccessToken: res.AccessToken,
	})
}

// Pinger is satisfied by the database handle.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatusHandler serves the health check.
type StatusHandler struct {
	db     Pinger
	logger *slog.Logger
}

// NewStatusHandler creates a StatusHandler. A nil db skips the ping.
func NewStatusHandler(db Pinger, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{db: db, logger: logger}
}

// HandleStatus reports whether the server can reach its database.
//
// HTTP: GET /api/status
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
	}
	writeOK(w, "Server status normal")
}
