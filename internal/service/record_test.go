package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/ess-backend/internal/apperror"
	"github.com/sakif/ess-backend/internal/model"
	"github.com/sakif/ess-backend/internal/repository"
)

// fakeRecordRepo keeps one record per natural key, as the real store does.
type fakeRecordRepo[T any] struct {
	key  func(*T) string
	meta func(*T) *model.Meta
	rows map[string]T
	keys []string // insertion order

	upsertErr error
	listErr   error
}

func newFakeRecordRepo[T any](key func(*T) string, meta func(*T) *model.Meta) *fakeRecordRepo[T] {
	return &fakeRecordRepo[T]{key: key, meta: meta, rows: make(map[string]T)}
}

func (f *fakeRecordRepo[T]) Upsert(ctx context.Context, rec *T, merge repository.MergeFunc[T]) (bool, error) {
	if f.upsertErr != nil {
		return false, f.upsertErr
	}
	k := f.key(rec)
	existing, ok := f.rows[k]
	if ok && merge != nil {
		merge(&existing, rec)
	}
	if !ok {
		f.keys = append(f.keys, k)
	}
	f.rows[k] = *rec
	return !ok, nil
}

func (f *fakeRecordRepo[T]) ListByDay(ctx context.Context, email, day string) ([]T, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]T, 0)
	for _, k := range f.keys {
		rec := f.rows[k]
		if m := f.meta(&rec); m.Email == email && m.Day == day {
			out = append(out, rec)
		}
	}
	return out, nil
}

func newWaterService() (*RecordService[model.WaterCups], *fakeRecordRepo[model.WaterCups]) {
	repo := newFakeRecordRepo(
		func(w *model.WaterCups) string { return w.Email + "|" + w.Day },
		func(w *model.WaterCups) *model.Meta { return &w.Meta },
	)
	return NewRecordService(WaterKind, repo, testLogger()), repo
}

func newFoodService() (*RecordService[model.Food], *fakeRecordRepo[model.Food]) {
	repo := newFakeRecordRepo(
		func(f *model.Food) string { return f.Email + "|" + f.Name + "|" + f.MealTime },
		func(f *model.Food) *model.Meta { return &f.Meta },
	)
	return NewRecordService(FoodKind, repo, testLogger()), repo
}

func water(count int, increment bool) *model.WaterCups {
	return &model.WaterCups{
		Meta:      model.Meta{Email: "a@x.com", Day: "2024-01-01"},
		Count:     count,
		Increment: increment,
	}
}

// =========================================================================
// UPSERT
// =========================================================================

func TestUpsert_WaterIncrementAccumulates(t *testing.T) {
	svc, _ := newWaterService()
	ctx := context.Background()

	created, err := svc.Upsert(ctx, water(2, true))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.Upsert(ctx, water(2, true))
	require.NoError(t, err)
	assert.False(t, created)

	list, err := svc.ListByDay(ctx, "a@x.com", "2024-01-01")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 4, list[0].Count)
}

func TestUpsert_WaterReplaceMode(t *testing.T) {
	svc, _ := newWaterService()
	ctx := context.Background()

	_, err := svc.Upsert(ctx, water(5, true))
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, water(1, false))
	require.NoError(t, err)

	list, err := svc.ListByDay(ctx, "a@x.com", "2024-01-01")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].Count)
}

func TestUpsert_FoodLastWriteWins(t *testing.T) {
	svc, _ := newFoodService()
	ctx := context.Background()

	for _, cal := range []float64{400, 550} {
		_, err := svc.Upsert(ctx, &model.Food{
			Meta:     model.Meta{Email: "a@x.com", Day: "2024-01-01"},
			Name:     "lunch",
			MealTime: "2024-01-01T12:00:00",
			Calories: cal,
		})
		require.NoError(t, err)
	}

	list, err := svc.ListByDay(ctx, "a@x.com", "2024-01-01")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 550.0, list[0].Calories)
	assert.Equal(t, DefaultFoodQuantity, list[0].Quantity)
	assert.Equal(t, DefaultFoodQuantityUnits, list[0].QuantityUnits)
}

func TestUpsert_BusinessErrorPassesThrough(t *testing.T) {
	svc, repo := newWaterService()
	repo.upsertErr = apperror.NotFound("User")

	_, err := svc.Upsert(context.Background(), water(1, false))
	require.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, "User not found", err.Error())
}

func TestUpsert_StorageErrorIsWrapped(t *testing.T) {
	svc, repo := newWaterService()
	cause := errors.New("disk full")
	repo.upsertErr = cause

	_, err := svc.Upsert(context.Background(), water(1, false))
	require.ErrorIs(t, err, cause)
	assert.False(t, apperror.IsBusiness(err))
}

// =========================================================================
// LIST
// =========================================================================

func TestListByDay_EmptyDay(t *testing.T) {
	svc, _ := newWaterService()

	list, err := svc.ListByDay(context.Background(), "a@x.com", "2024-02-02")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestListByDay_BadDate(t *testing.T) {
	svc, _ := newWaterService()

	for _, date := range []string{"", "yesterday", "2024-13-01", "2024-01-01T00:00:00"} {
		_, err := svc.ListByDay(context.Background(), "a@x.com", date)
		require.ErrorIs(t, err, apperror.ErrValidation, "date %q", date)
		assert.Equal(t, "Invalid field: date", err.Error())
	}
}

func TestMessage(t *testing.T) {
	svc, _ := newFoodService()

	assert.Equal(t, "Inserted new food.", svc.Message(true))
	assert.Equal(t, "Updated existing food.", svc.Message(false))
}
