package service

import (
	"strings"

	"github.com/rewired-gh/whetherai/internal/inference"
	"github.com/rewired-gh/whetherai/internal/models"
)

// Thresholds turn measurements into evidence bits. A measurement must be
// strictly above its threshold to count as "high".
type Thresholds struct {
	TemperatureC float64
	HumidityPct  int
	CloudKeyword string
}

// DefaultThresholds returns 20 °C, 60 % and the keyword "cloud".
func DefaultThresholds() Thresholds {
	return Thresholds{TemperatureC: 20, HumidityPct: 60, CloudKeyword: "cloud"}
}

// Derive maps current conditions to network evidence: cloudy when the sky
// description mentions the keyword, humid above the humidity threshold, warm
// above the temperature threshold.
func Derive(c models.Conditions, t Thresholds) inference.Evidence {
	cloudy := strings.Contains(strings.ToLower(c.Description), strings.ToLower(t.CloudKeyword))
	humid := c.HumidityPct > t.HumidityPct
	warm := c.TemperatureC > t.TemperatureC
	return inference.NewEvidence(cloudy, humid, warm)
}
