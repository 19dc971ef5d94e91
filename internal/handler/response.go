package handler

// Every endpoint answers with the same envelope:
//
//	{"result": true, "message": "...", ...extra}
//
// A failure the client caused (missing field, wrong password, bad token) is
// still HTTP 200 with result:false; existing clients branch on "result", not
// on the status code. Storage and programming failures are 500 and carry a
// generic message only.

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/sakif/ess-backend/internal/apperror"
	"github.com/sakif/ess-backend/internal/model"
	"github.com/sakif/ess-backend/internal/schema"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

// Response is the envelope shared by all endpoints. Token and AccessToken
// are only set by register and login.
type Response struct {
	Result      bool         `json:"result"`
	Message     string       `json:"message"`
	Token       *model.Token `json:"token,omitempty"`
	AccessToken string       `json:"accessToken,omitempty"`
}

// listResponse answers the event-kind queries (food, commute, journal).
type listResponse[T any] struct {
	Result  bool   `json:"result"`
	Message string `json:"message"`
	List    []T    `json:"list"`
}

// contentResponse answers the per-day queries (water, showers, ...).
type contentResponse struct {
	Result  bool   `json:"result"`
	Message string `json:"message"`
	Content any    `json:"content"`
}

// writeJSON sends data as JSON with the given status code.
// Headers must be set before WriteHeader; after it they are ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are gone already; logging is all that is left.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeOK sends a bare success envelope.
func writeOK(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, Response{Result: true, Message: message})
}

// writeError reports err in the envelope. *apperror.AppError values are
// business failures and their message is shown to the client; anything else
// is logged and hidden behind a 500.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		writeJSON(w, http.StatusOK, Response{Result: false, Message: appErr.Message})
		return
	}

	// Never expose internal error details: they can contain SQL or paths.
	logger.Error("request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	writeJSON(w, http.StatusInternalServerError, Response{
		Result:  false,
		Message: "An internal error occurred",
	})
}

// readBody reads at most MaxBodyBytes of the request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperror.ValidationFailed("", "Request body too large")
		}
		return nil, apperror.ValidationFailed("", schema.NoJSON)
	}
	return body, nil
}

// decode validates the request body against the schema id and unmarshals it
// into dst.
func decode(w http.ResponseWriter, r *http.Request, schemas *schema.Validator, id string, dst any) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	if err := schemas.Validate(id, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperror.ValidationFailed("", schema.NoJSON)
	}
	return nil
}

// NotFound answers unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, Response{Result: false, Message: "Not found"})
}

// MethodNotAllowed answers known routes hit with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, Response{Result: false, Message: "Method not allowed"})
}
