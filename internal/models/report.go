package models

import (
	"errors"
	"time"
)

// Report is one answered weather request: the observed conditions and the
// probabilities inferred from them.
type Report struct {
	ID          string    `json:"id"`
	Location    string    `json:"location"`
	Temperature float64   `json:"temperature"`
	Humidity    int       `json:"humidity"`
	Description string    `json:"description"`
	RainChance  float64   `json:"rain_chance"`
	Sunlight    float64   `json:"sunlight"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate checks that all report fields are valid
func (r *Report) Validate() error {
	if r.ID == "" {
		return errors.New("report ID must not be empty")
	}
	if r.Location == "" {
		return errors.New("location must not be empty")
	}
	if r.RainChance < 0.0 || r.RainChance > 1.0 {
		return errors.New("rain chance must be between 0.0 and 1.0")
	}
	if r.Sunlight < 0.0 || r.Sunlight > 1.0 {
		return errors.New("sunlight must be between 0.0 and 1.0")
	}
	if r.CreatedAt.IsZero() {
		return errors.New("created at must be set")
	}
	if r.CreatedAt.After(time.Now()) {
		return errors.New("created at must not be in the future")
	}
	return nil
}
