package service

import "github.com/sakif/ess-backend/internal/model"

// Food defaults. A zero quantity or empty unit counts as unset.
const (
	DefaultFoodQuantity      = 1.0
	DefaultFoodQuantityUnits = "UNIT"
)

var FoodKind = Kind[model.Food]{
	Name: "food",
	Defaults: func(f *model.Food) {
		if f.Quantity == 0 {
			f.Quantity = DefaultFoodQuantity
		}
		if f.QuantityUnits == "" {
			f.QuantityUnits = DefaultFoodQuantityUnits
		}
	},
}

var CommuteKind = Kind[model.Commute]{Name: "commute"}

// JournalKind keeps an entry's creation time and day across edits; the
// timestamp of a later submission becomes its edit time.
var JournalKind = Kind[model.JournalEntry]{
	Name: "journal entry",
	Merge: func(existing, incoming *model.JournalEntry) {
		incoming.Edited = incoming.Created
		incoming.Created = existing.Created
		incoming.Day = existing.Day
	},
}

// WaterKind adds to the stored count in increment mode and replaces it
// otherwise.
var WaterKind = Kind[model.WaterCups]{
	Name: "water entry",
	Merge: func(existing, incoming *model.WaterCups) {
		if incoming.Increment {
			incoming.Count += existing.Count
		}
	},
}

var ShowerKind = Kind[model.ShowerUsage]{Name: "shower entry"}

var EntertainmentKind = Kind[model.EntertainmentUsage]{Name: "entertainment entry"}

var HealthKind = Kind[model.Health]{Name: "health entry"}
