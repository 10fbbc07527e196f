// Package domain holds DTOs for predict http and service contracts
package domain

import "context"

// ServicePort is the predict service contract
type ServicePort interface {
	Line(ctx context.Context, in LineInput) (LinePrediction, error)
	Overview(ctx context.Context) (Overview, error)
}

// LineInput selects a line, mode, and weekday to predict for. Empty line
// or mode means no filter on that axis
type LineInput struct {
	LineID     string `json:"line_id" example:"10"`
	Mode       string `json:"mode" validate:"omitempty,oneof=tram bus night unknown" example:"tram"`
	WeekdayIdx int    `json:"weekday_idx" validate:"gte=0,lte=6" example:"0"`
}

// LinePrediction carries hourly check probabilities for one weekday
type LinePrediction struct {
	LineID     string      `json:"line_id" example:"10"`
	Mode       string      `json:"mode" example:"tram"`
	WeekdayIdx int         `json:"weekday_idx" example:"0"`
	Hours      []HourProbe `json:"hours"`
}

// HourProbe is the posterior for one hour slot
type HourProbe struct {
	Hour      int     `json:"hour" example:"10"`
	Trials    int     `json:"trials" example:"3"`
	Successes int     `json:"successes" example:"2"`
	ProbMean  float64 `json:"prob_mean" example:"0.625"`
	ProbLow   float64 `json:"prob_low" example:"0.17"`
	ProbHigh  float64 `json:"prob_high" example:"0.95"`
}

// Overview summarizes check probability for the whole range and per weekday
type Overview struct {
	Range    RangeProbe    `json:"range"`
	Weekdays []WeekdayProb `json:"weekdays"`
}

// RangeProbe is the posterior over all dataset days
type RangeProbe struct {
	Trials    int     `json:"trials" example:"90"`
	Successes int     `json:"successes" example:"34"`
	ProbMean  float64 `json:"prob_mean" example:"0.379121"`
	ProbLow   float64 `json:"prob_low" example:"0.283"`
	ProbHigh  float64 `json:"prob_high" example:"0.481"`
}

// WeekdayProb is the posterior for one weekday across the range
type WeekdayProb struct {
	WeekdayIdx int     `json:"weekday_idx" example:"0"`
	Weekday    string  `json:"weekday" example:"Mon"`
	Trials     int     `json:"trials" example:"13"`
	Successes  int     `json:"successes" example:"6"`
	ProbMean   float64 `json:"prob_mean" example:"0.464286"`
	ProbLow    float64 `json:"prob_low" example:"0.22"`
	ProbHigh   float64 `json:"prob_high" example:"0.72"`
}
