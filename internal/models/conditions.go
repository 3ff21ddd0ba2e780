// Package models defines the domain entities shared by the weather advisor:
// the current conditions reported by the upstream weather service and the
// reports produced from them.
// All models include built-in validation so bad upstream data is caught at the edge.
package models

import (
	"errors"
	"strings"
)

// Conditions is the current weather at a location, as reported upstream.
type Conditions struct {
	Location     string  `json:"location"`
	TemperatureC float64 `json:"temperature"`
	HumidityPct  int     `json:"humidity"`
	Description  string  `json:"description"`
}

// Validate checks that the conditions are usable
func (c *Conditions) Validate() error {
	if strings.TrimSpace(c.Location) == "" {
		return errors.New("location must not be empty")
	}
	if c.HumidityPct < 0 || c.HumidityPct > 100 {
		return errors.New("humidity must be between 0 and 100")
	}
	// Coldest and hottest recorded surface temperatures, with margin.
	if c.TemperatureC < -100 || c.TemperatureC > 70 {
		return errors.New("temperature is outside the physical range")
	}
	return nil
}
