package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/ess-backend/internal/apperror"
	"github.com/sakif/ess-backend/internal/model"
)

func newFood(email, name, mealTime string, calories float64) *model.Food {
	return &model.Food{
		Meta:          model.Meta{Email: email, Day: mealTime[:10]},
		Name:          name,
		MealTime:      mealTime,
		Quantity:      1,
		QuantityUnits: "UNIT",
		Calories:      calories,
	}
}

// =========================================================================
// UPSERT
// =========================================================================

func TestUpsert_InsertThenUpdate(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "a@x.com")
	foods := db.Records().Food
	ctx := context.Background()

	first := newFood("a@x.com", "lunch", "2024-01-01T12:00:00", 500)
	created, err := foods.Upsert(ctx, first, nil)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second := newFood("a@x.com", "lunch", "2024-01-01T12:00:00", 650)
	second.Category = "meal"
	created, err = foods.Upsert(ctx, second, nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID, "update keeps the surrogate id")
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))

	list, err := foods.ListByDay(ctx, "a@x.com", "2024-01-01")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 650.0, list[0].Calories)
	assert.Equal(t, "meal", list[0].Category)
}

func TestUpsert_DistinctKeysInsertSeparately(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "a@x.com")
	createTestUser(t, db, "b@x.com")
	foods := db.Records().Food
	ctx := context.Background()

	for _, f := range []*model.Food{
		newFood("a@x.com", "lunch", "2024-01-01T12:00:00", 1),
		newFood("a@x.com", "lunch", "2024-01-01T19:00:00", 2),
		newFood("a@x.com", "dinner", "2024-01-01T19:00:00", 3),
		newFood("b@x.com", "lunch", "2024-01-01T12:00:00", 4),
	} {
		created, err := foods.Upsert(ctx, f, nil)
		require.NoError(t, err)
		assert.True(t, created)
	}

	list, err := foods.ListByDay(ctx, "a@x.com", "2024-01-01")
	require.NoError(t, err)
	require.Len(t, list, 3)
	// Oldest first.
	assert.Equal(t, 1.0, list[0].Calories)
	assert.Equal(t, 3.0, list[2].Calories)
}

func TestUpsert_MergeSeesStoredRow(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "a@x.com")
	water := db.Records().Water
	ctx := context.Background()

	add := func(existing, incoming *model.WaterCups) { incoming.Count += existing.Count }

	for range 2 {
		_, err := water.Upsert(ctx, &model.WaterCups{
			Meta:  model.Meta{Email: "a@x.com", Day: "2024-01-01"},
			Count: 2,
		}, add)
		require.NoError(t, err)
	}

	list, err := water.ListByDay(ctx, "a@x.com", "2024-01-01")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 4, list[0].Count)
}

func TestUpsert_MergeCanKeepStoredDay(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "a@x.com")
	journal := db.Records().Journal
	ctx := context.Background()

	keep := func(existing, incoming *model.JournalEntry) {
		incoming.Edited = incoming.Created
		incoming.Created = existing.Created
		incoming.Day = existing.Day
	}

	_, err := journal.Upsert(ctx, &model.JournalEntry{
		Meta:     model.Meta{Email: "a@x.com", Day: "2024-01-01"},
		Title:    "monday",
		Contents: "v1",
		Created:  "2024-01-01T09:00:00",
	}, keep)
	require.NoError(t, err)

	_, err = journal.Upsert(ctx, &model.JournalEntry{
		Meta:     model.Meta{Email: "a@x.com", Day: "2024-01-03"},
		Title:    "monday",
		Contents: "v2",
		Created:  "2024-01-03T10:00:00",
	}, keep)
	require.NoError(t, err)

	list, err := journal.ListByDay(ctx, "a@x.com", "2024-01-01")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "v2", list[0].Contents)
	assert.Equal(t, "2024-01-01T09:00:00", list[0].Created)
	assert.Equal(t, "2024-01-03T10:00:00", list[0].Edited)

	later, err := journal.ListByDay(ctx, "a@x.com", "2024-01-03")
	require.NoError(t, err)
	assert.Empty(t, later)
}

func TestUpsert_BooleanColumn(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "a@x.com")
	showers := db.Records().Shower
	ctx := context.Background()

	_, err := showers.Upsert(ctx, &model.ShowerUsage{
		Meta:    model.Meta{Email: "a@x.com", Day: "2024-01-01"},
		Minutes: 7,
		Cold:    true,
	}, nil)
	require.NoError(t, err)

	list, err := showers.ListByDay(ctx, "a@x.com", "2024-01-01")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 7, list[0].Minutes)
	assert.True(t, list[0].Cold)
}

func TestUpsert_UnknownUser(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Records().Health.Upsert(context.Background(), &model.Health{
		Meta:       model.Meta{Email: "ghost@x.com", Day: "2024-01-01"},
		Cigarettes: 3,
	}, nil)
	require.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, "User not found", err.Error())
}

// =========================================================================
// LIST
// =========================================================================

func TestListByDay_EmptyIsNotNil(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "a@x.com")

	list, err := db.Records().Commute.ListByDay(context.Background(), "a@x.com", "2024-01-01")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestListByDay_OnlyOwnRecords(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "a@x.com")
	createTestUser(t, db, "b@x.com")
	hours := db.Records().Entertainment
	ctx := context.Background()

	_, err := hours.Upsert(ctx, &model.EntertainmentUsage{
		Meta:  model.Meta{Email: "b@x.com", Day: "2024-01-01"},
		Hours: 2.5,
	}, nil)
	require.NoError(t, err)

	list, err := hours.ListByDay(ctx, "a@x.com", "2024-01-01")
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = hours.ListByDay(ctx, "b@x.com", "2024-01-01")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2.5, list[0].Hours)
	assert.Equal(t, "b@x.com", list[0].Email)
}
