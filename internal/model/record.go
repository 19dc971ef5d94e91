package model

import "time"

// Meta is the bookkeeping every daily record carries besides its own fields.
//
// ID is a surrogate key (xid); the natural key that upserts match on is
// declared per kind in the repository layer. Day is the calendar day the
// record is filed under, which is what day queries match against.
//
// All fields are tagged "-": clients only ever see the kind's own fields.
type Meta struct {
	ID        string    `json:"-"`
	Email     string    `json:"-"`
	Day       string    `json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Food is a meal event. Natural key: (email, name, mealTime).
type Food struct {
	Meta
	Name          string  `json:"name"`
	MealTime      string  `json:"mealTime"`
	Quantity      float64 `json:"quantity"`
	QuantityUnits string  `json:"quantityUnits"`
	Calories      float64 `json:"calories"`
	Category      string  `json:"category"`
}

// Commute is one trip. Natural key: (email, arrival).
type Commute struct {
	Meta
	Method    string  `json:"method"`
	Distance  float64 `json:"distance"`
	Departure string  `json:"departure"`
	Arrival   string  `json:"arrival"`
}

// JournalEntry is a titled note. Natural key: (email, title).
// Created is fixed by the first submission; Edited tracks the latest one and
// is empty until the entry is edited.
type JournalEntry struct {
	Meta
	Contents string `json:"contents"`
	Title    string `json:"title"`
	Created  string `json:"created"`
	Edited   string `json:"edited"`
}

// WaterCups counts cups of water for a day. Natural key: (email, day).
//
// Increment is request state, not a column: it tells the merge whether Count
// adds to the stored value or replaces it.
type WaterCups struct {
	Meta
	Count     int  `json:"cupsCount"`
	Increment bool `json:"-"`
}

// ShowerUsage records shower minutes for a day. Natural key: (email, day).
type ShowerUsage struct {
	Meta
	Minutes int  `json:"minutes"`
	Cold    bool `json:"cold"`
}

// EntertainmentUsage records entertainment hours for a day. Natural key: (email, day).
type EntertainmentUsage struct {
	Meta
	Hours float64 `json:"hours"`
}

// Health records the cigarette count for a day. Natural key: (email, day).
type Health struct {
	Meta
	Cigarettes int `json:"cigarettes"`
}
