package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/ess-backend/internal/apperror"
	"github.com/sakif/ess-backend/internal/model"
	"github.com/sakif/ess-backend/internal/repository"
)

// Kind describes the rules of one record kind on top of plain storage.
type Kind[T any] struct {
	// Name is used in client messages, e.g. "journal entry".
	Name string

	// Defaults fills unset optional fields before a write. May be nil.
	Defaults func(*T)

	// Merge folds the stored row into the incoming one on update. Nil means
	// the incoming fields overwrite the stored ones.
	Merge repository.MergeFunc[T]
}

// RecordService upserts and lists the records of one kind.
type RecordService[T any] struct {
	kind   Kind[T]
	repo   repository.RecordRepository[T]
	logger *slog.Logger
}

// NewRecordService creates a RecordService for kind backed by repo.
func NewRecordService[T any](kind Kind[T], repo repository.RecordRepository[T], logger *slog.Logger) *RecordService[T] {
	return &RecordService[T]{
		kind:   kind,
		repo:   repo,
		logger: logger.With(slog.String("kind", kind.Name)),
	}
}

// Upsert applies defaults and writes rec, whose Meta must already carry the
// owner email and day. created reports whether a new row was inserted.
func (s *RecordService[T]) Upsert(ctx context.Context, rec *T) (bool, error) {
	if s.kind.Defaults != nil {
		s.kind.Defaults(rec)
	}

	created, err := s.repo.Upsert(ctx, rec, s.kind.Merge)
	if err != nil {
		if apperror.IsBusiness(err) {
			return false, err
		}
		return false, fmt.Errorf("service/record: upserting %s: %w", s.kind.Name, err)
	}

	s.logger.Debug("record saved", slog.Bool("created", created))
	return created, nil
}

// ListByDay returns email's records for date (YYYY-MM-DD). A day without
// records is an empty slice.
func (s *RecordService[T]) ListByDay(ctx context.Context, email, date string) ([]T, error) {
	day, err := model.ParseDay(date)
	if err != nil {
		return nil, apperror.ValidationFailed("date", "Invalid field: date")
	}

	recs, err := s.repo.ListByDay(ctx, email, day)
	if err != nil {
		return nil, fmt.Errorf("service/record: listing %s for %s: %w", s.kind.Name, day, err)
	}
	return recs, nil
}

// Message is the client message for a completed upsert.
func (s *RecordService[T]) Message(created bool) string {
	if created {
		return "Inserted new " + s.kind.Name + "."
	}
	return "Updated existing " + s.kind.Name + "."
}
