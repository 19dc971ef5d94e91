package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/ess-backend/internal/apperror"
	"github.com/sakif/ess-backend/internal/model"
	"github.com/sakif/ess-backend/internal/schema"
	"github.com/sakif/ess-backend/internal/service"
)

// Endpoint describes the HTTP side of one record kind: the shape of its
// submissions (C) and how query results are rendered.
type Endpoint[T, C any] struct {
	// Schema is the schema id for POST /api/<kind>/new.
	Schema string

	// Bind turns a validated submission into a record owned by email.
	// ts is the submission's metadata.timestamp.
	Bind func(email string, c *C, ts time.Time) (*T, error)

	// QueryMessage is a format string taking the queried date.
	QueryMessage string

	// Daily kinds hold at most one row per day and answer queries with
	// "content" instead of "list". A day without a row renders the zero T.
	Daily bool

	// Present renders the content of a Daily kind. Nil renders T as is.
	Present func(rec *T) any
}

type submission[C any] struct {
	Content  C `json:"content"`
	Metadata struct {
		Timestamp string `json:"timestamp"`
	} `json:"metadata"`
	Token *model.Token `json:"token"`
}

type queryRequest struct {
	Date  string       `json:"date"`
	Token *model.Token `json:"token"`
}

// RecordHandler serves the query and submit endpoints of one kind.
type RecordHandler[T, C any] struct {
	records  *service.RecordService[T]
	auth     *service.AuthService
	schemas  *schema.Validator
	endpoint Endpoint[T, C]
	logger   *slog.Logger
}

// NewRecordHandler creates a RecordHandler.
func NewRecordHandler[T, C any](
	records *service.RecordService[T],
	auth *service.AuthService,
	schemas *schema.Validator,
	endpoint Endpoint[T, C],
	logger *slog.Logger,
) *RecordHandler[T, C] {
	return &RecordHandler[T, C]{
		records:  records,
		auth:     auth,
		schemas:  schemas,
		endpoint: endpoint,
		logger:   logger,
	}
}

// HandleQuery returns the caller's records for one day.
//
// HTTP: POST /api/<kind>
// REQUEST BODY: {"date": "2024-01-01", "token": {...}}
func (h *RecordHandler[T, C]) HandleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decode(w, r, h.schemas, schema.Query, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	email, err := h.auth.Authenticate(r.Context(), req.Token)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	recs, err := h.records.ListByDay(r.Context(), email, req.Date)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	msg := fmt.Sprintf(h.endpoint.QueryMessage, req.Date)
	if !h.endpoint.Daily {
		writeJSON(w, http.StatusOK, listResponse[T]{Result: true, Message: msg, List: recs})
		return
	}

	var rec T
	if len(recs) > 0 {
		rec = recs[0]
	}
	var content any = &rec
	if h.endpoint.Present != nil {
		content = h.endpoint.Present(&rec)
	}
	writeJSON(w, http.StatusOK, contentResponse{Result: true, Message: msg, Content: content})
}

// HandleNew creates or updates one record.
//
// HTTP: POST /api/<kind>/new
// REQUEST BODY: {"content": {...}, "metadata": {"timestamp": "..."}, "token": {...}}
func (h *RecordHandler[T, C]) HandleNew(w http.ResponseWriter, r *http.Request) {
	var req submission[C]
	if err := decode(w, r, h.schemas, h.endpoint.Schema, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	email, err := h.auth.Authenticate(r.Context(), req.Token)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	ts, err := model.ParseTimestamp(req.Metadata.Timestamp)
	if err != nil {
		writeError(w, r, h.logger, invalidField("metadata.timestamp"))
		return
	}

	rec, err := h.endpoint.Bind(email, &req.Content, ts)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	created, err := h.records.Upsert(r.Context(), rec)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, h.records.Message(created))
}

func invalidField(path string) error {
	return apperror.ValidationFailed(path, "Invalid field: "+path)
}
