package handler

import (
	"time"

	"github.com/sakif/ess-backend/internal/model"
	"github.com/sakif/ess-backend/internal/schema"
)

// Submission bodies, one per kind. Field presence and types are already
// checked by the schema; Bind only parses timestamps.
//
// Counts are float64 so that 2.0 decodes; the schema bounds them to whole
// numbers that fit an int.

type foodContent struct {
	Name          string  `json:"name"`
	MealTime      string  `json:"mealTime"`
	Quantity      float64 `json:"quantity"`
	QuantityUnits string  `json:"quantityUnits"`
	Calories      float64 `json:"calories"`
	Category      string  `json:"category"`
}

type commuteContent struct {
	Arrival   string  `json:"arrival"`
	Departure string  `json:"departure"`
	Method    string  `json:"method"`
	Distance  float64 `json:"distance"`
}

type journalContent struct {
	Title    string `json:"title"`
	Contents string `json:"contents"`
}

type waterContent struct {
	IsIncrement bool    `json:"isIncrement"`
	Cups        float64 `json:"cups"`
}

type showerContent struct {
	Minutes float64 `json:"minutes"`
	Cold    bool    `json:"cold"`
}

type entertainmentContent struct {
	Hours float64 `json:"hours"`
}

type healthContent struct {
	Cigarettes float64 `json:"cigarettes"`
}

// normalise parses a content timestamp and returns it in stored form.
func normalise(path, s string) (time.Time, string, error) {
	t, err := model.ParseTimestamp(s)
	if err != nil {
		return time.Time{}, "", invalidField(path)
	}
	return t, model.FormatTimestamp(t), nil
}

var FoodEndpoint = Endpoint[model.Food, foodContent]{
	Schema:       schema.Food,
	QueryMessage: "Returning all foods found for %s",
	Bind: func(email string, c *foodContent, _ time.Time) (*model.Food, error) {
		at, mealTime, err := normalise("content.mealTime", c.MealTime)
		if err != nil {
			return nil, err
		}
		return &model.Food{
			Meta:          model.Meta{Email: email, Day: model.DayOf(at)},
			Name:          c.Name,
			MealTime:      mealTime,
			Quantity:      c.Quantity,
			QuantityUnits: c.QuantityUnits,
			Calories:      c.Calories,
			Category:      c.Category,
		}, nil
	},
}

var CommuteEndpoint = Endpoint[model.Commute, commuteContent]{
	Schema:       schema.Commute,
	QueryMessage: "Returning all commutes found for %s",
	Bind: func(email string, c *commuteContent, _ time.Time) (*model.Commute, error) {
		at, arrival, err := normalise("content.arrival", c.Arrival)
		if err != nil {
			return nil, err
		}
		_, departure, err := normalise("content.departure", c.Departure)
		if err != nil {
			return nil, err
		}
		return &model.Commute{
			Meta:      model.Meta{Email: email, Day: model.DayOf(at)},
			Arrival:   arrival,
			Departure: departure,
			Method:    c.Method,
			Distance:  c.Distance,
		}, nil
	},
}

var JournalEndpoint = Endpoint[model.JournalEntry, journalContent]{
	Schema:       schema.Journal,
	QueryMessage: "Returning all journals found for %s",
	Bind: func(email string, c *journalContent, ts time.Time) (*model.JournalEntry, error) {
		return &model.JournalEntry{
			Meta:     model.Meta{Email: email, Day: model.DayOf(ts)},
			Title:    c.Title,
			Contents: c.Contents,
			Created:  model.FormatTimestamp(ts),
		}, nil
	},
}

// waterView is the water query content; isIncrement is always false there.
type waterView struct {
	CupsCount   int  `json:"cupsCount"`
	IsIncrement bool `json:"isIncrement"`
}

var WaterEndpoint = Endpoint[model.WaterCups, waterContent]{
	Schema:       schema.Water,
	QueryMessage: "Returning water consumption for %s",
	Daily:        true,
	Present: func(rec *model.WaterCups) any {
		return waterView{CupsCount: rec.Count}
	},
	Bind: func(email string, c *waterContent, ts time.Time) (*model.WaterCups, error) {
		return &model.WaterCups{
			Meta:      model.Meta{Email: email, Day: model.DayOf(ts)},
			Count:     int(c.Cups),
			Increment: c.IsIncrement,
		}, nil
	},
}

var ShowerEndpoint = Endpoint[model.ShowerUsage, showerContent]{
	Schema:       schema.Showers,
	QueryMessage: "Returning shower usage for %s",
	Daily:        true,
	Bind: func(email string, c *showerContent, ts time.Time) (*model.ShowerUsage, error) {
		return &model.ShowerUsage{
			Meta:    model.Meta{Email: email, Day: model.DayOf(ts)},
			Minutes: int(c.Minutes),
			Cold:    c.Cold,
		}, nil
	},
}

var EntertainmentEndpoint = Endpoint[model.EntertainmentUsage, entertainmentContent]{
	Schema:       schema.Entertainment,
	QueryMessage: "Returning entertainment usage for %s",
	Daily:        true,
	Bind: func(email string, c *entertainmentContent, ts time.Time) (*model.EntertainmentUsage, error) {
		return &model.EntertainmentUsage{
			Meta:  model.Meta{Email: email, Day: model.DayOf(ts)},
			Hours: c.Hours,
		}, nil
	},
}

var HealthEndpoint = Endpoint[model.Health, healthContent]{
	Schema:       schema.Health,
	QueryMessage: "Returning health for %s",
	Daily:        true,
	Bind: func(email string, c *healthContent, ts time.Time) (*model.Health, error) {
		return &model.Health{
			Meta:       model.Meta{Email: email, Day: model.DayOf(ts)},
			Cigarettes: int(c.Cigarettes),
		}, nil
	},
}
