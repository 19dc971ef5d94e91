package sqlstore

import (
	"github.com/sakif/ess-backend/internal/model"
	"github.com/sakif/ess-backend/internal/repository"
)

var (
	_ repository.RecordRepository[model.Food]               = (*RecordStore[model.Food])(nil)
	_ repository.RecordRepository[model.Commute]            = (*RecordStore[model.Commute])(nil)
	_ repository.RecordRepository[model.JournalEntry]       = (*RecordStore[model.JournalEntry])(nil)
	_ repository.RecordRepository[model.WaterCups]          = (*RecordStore[model.WaterCups])(nil)
	_ repository.RecordRepository[model.ShowerUsage]        = (*RecordStore[model.ShowerUsage])(nil)
	_ repository.RecordRepository[model.EntertainmentUsage] = (*RecordStore[model.EntertainmentUsage])(nil)
	_ repository.RecordRepository[model.Health]             = (*RecordStore[model.Health])(nil)
)

var FoodTable = Table[model.Food]{
	Name:   "foods",
	Key:    []string{"name", "meal_time"},
	Fields: []string{"quantity", "quantity_units", "calories", "category"},
	Meta:   func(r *model.Food) *model.Meta { return &r.Meta },
	Columns: func(r *model.Food) []any {
		return []any{&r.Name, &r.MealTime, &r.Quantity, &r.QuantityUnits, &r.Calories, &r.Category}
	},
}

var CommuteTable = Table[model.Commute]{
	Name:   "commutes",
	Key:    []string{"arrival"},
	Fields: []string{"departure", "method", "distance"},
	Meta:   func(r *model.Commute) *model.Meta { return &r.Meta },
	Columns: func(r *model.Commute) []any {
		return []any{&r.Arrival, &r.Departure, &r.Method, &r.Distance}
	},
}

var JournalTable = Table[model.JournalEntry]{
	Name:   "journal_entries",
	Key:    []string{"title"},
	Fields: []string{"contents", "created", "edited"},
	Meta:   func(r *model.JournalEntry) *model.Meta { return &r.Meta },
	Columns: func(r *model.JournalEntry) []any {
		return []any{&r.Title, &r.Contents, &r.Created, &r.Edited}
	},
}

var WaterTable = Table[model.WaterCups]{
	Name:       "water_cups",
	KeyedByDay: true,
	Fields:     []string{"cups"},
	Meta:       func(r *model.WaterCups) *model.Meta { return &r.Meta },
	Columns:    func(r *model.WaterCups) []any { return []any{&r.Count} },
}

var ShowerTable = Table[model.ShowerUsage]{
	Name:       "shower_usage",
	KeyedByDay: true,
	Fields:     []string{"minutes", "cold"},
	Meta:       func(r *model.ShowerUsage) *model.Meta { return &r.Meta },
	Columns:    func(r *model.ShowerUsage) []any { return []any{&r.Minutes, &r.Cold} },
}

var EntertainmentTable = Table[model.EntertainmentUsage]{
	Name:       "entertainment_usage",
	KeyedByDay: true,
	Fields:     []string{"hours"},
	Meta:       func(r *model.EntertainmentUsage) *model.Meta { return &r.Meta },
	Columns:    func(r *model.EntertainmentUsage) []any { return []any{&r.Hours} },
}

var HealthTable = Table[model.Health]{
	Name:       "health",
	KeyedByDay: true,
	Fields:     []string{"cigarettes"},
	Meta:       func(r *model.Health) *model.Meta { return &r.Meta },
	Columns:    func(r *model.Health) []any { return []any{&r.Cigarettes} },
}

// Stores bundles one RecordStore per kind.
type Stores struct {
	Food          *RecordStore[model.Food]
	Commute       *RecordStore[model.Commute]
	Journal       *RecordStore[model.JournalEntry]
	Water         *RecordStore[model.WaterCups]
	Shower        *RecordStore[model.ShowerUsage]
	Entertainment *RecordStore[model.EntertainmentUsage]
	Health        *RecordStore[model.Health]
}

// Records builds the stores for every kind on db.
func (db *DB) Records() *Stores {
	return &Stores{
		Food:          NewRecordStore(db, FoodTable),
		Commute:       NewRecordStore(db, CommuteTable),
		Journal:       NewRecordStore(db, JournalTable),
		Water:         NewRecordStore(db, WaterTable),
		Shower:        NewRecordStore(db, ShowerTable),
		Entertainment: NewRecordStore(db, EntertainmentTable),
		Health:        NewRecordStore(db, HealthTable),
	}
}
