// Package inference holds the weather network: three observed roots (cloud
// cover, humidity, temperature) feeding the rain and sunlight variables.
//
// An Engine is built once at startup and passed to whatever serves requests.
// It is read-only after construction and safe for concurrent use.
package inference

import (
	"fmt"

	"github.com/rewired-gh/whetherai/internal/bayes"
)

// Evidence holds the three observed bits. A nil field means the observation
// is missing.
type Evidence struct {
	CloudCover  *int `json:"cloud_cover"`
	Humidity    *int `json:"humidity"`
	Temperature *int `json:"temperature"`
}

// Prediction is the probability of rain and of bright sunlight.
type Prediction struct {
	RainChance float64 `json:"rain_chance"`
	Sunlight   float64 `json:"sunlight"`
}

// NewEvidence normalizes boolean observations to the 0/1 encoding.
func NewEvidence(cloudy, humid, warm bool) Evidence {
	return Evidence{
		CloudCover:  bit(cloudy),
		Humidity:    bit(humid),
		Temperature: bit(warm),
	}
}

// Bits builds evidence from integer observations without checking them.
func Bits(cloudCover, humidity, temperature int) Evidence {
	return Evidence{
		CloudCover:  &cloudCover,
		Humidity:    &humidity,
		Temperature: &temperature,
	}
}

func bit(b bool) *int {
	v := 0
	if b {
		v = 1
	}
	return &v
}

// Assignment converts the evidence to a network assignment, rejecting missing
// or non-binary fields.
func (e Evidence) Assignment() (bayes.Assignment, error) {
	fields := []struct {
		name  string
		value *int
	}{
		{CloudCover, e.CloudCover},
		{Humidity, e.Humidity},
		{Temperature, e.Temperature},
	}

	a := make(bayes.Assignment, len(fields))
	for _, f := range fields {
		if f.value == nil {
			return nil, &bayes.EvidenceError{Variable: f.name, Reason: "missing"}
		}
		if *f.value != 0 && *f.value != 1 {
			return nil, &bayes.EvidenceError{Variable: f.name, Reason: fmt.Sprintf("value %d is not 0 or 1", *f.value)}
		}
		a[f.name] = *f.value
	}
	return a, nil
}

// Engine answers rain and sunlight queries against the weather network.
type Engine struct {
	net *bayes.Network
}

// NewEngine builds the engine from the built-in tables. An error means the
// tables are broken and the process should not start.
func NewEngine() (*Engine, error) {
	return NewEngineFromTables(Tables())
}

// NewEngineFromTables builds the engine over the standard structure with the
// given tables.
func NewEngineFromTables(cpts []bayes.CPT) (*Engine, error) {
	net, err := bayes.NewNetwork(Variables(), Edges(), cpts)
	if err != nil {
		return nil, fmt.Errorf("failed to build weather network: %w", err)
	}
	return &Engine{net: net}, nil
}

// Network exposes the underlying network for inspection.
func (e *Engine) Network() *bayes.Network {
	return e.net
}

// Predict returns P(RainChance=1) and P(Sunlight=1) given the evidence.
// Invalid evidence wraps bayes.ErrInvalidEvidence and yields no prediction.
func (e *Engine) Predict(ev Evidence) (Prediction, error) {
	evidence, err := ev.Assignment()
	if err != nil {
		return Prediction{}, err
	}

	rain, err := e.net.Query(RainChance, evidence)
	if err != nil {
		return Prediction{}, fmt.Errorf("rain query: %w", err)
	}
	sun, err := e.net.Query(Sunlight, evidence)
	if err != nil {
		return Prediction{}, fmt.Errorf("sunlight query: %w", err)
	}

	return Prediction{RainChance: rain[1], Sunlight: sun[1]}, nil
}
