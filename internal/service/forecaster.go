// Package service wires the weather source, the inference engine and the
// report history into the single operation both request surfaces need:
// place name in, report out.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rewired-gh/whetherai/internal/inference"
	"github.com/rewired-gh/whetherai/internal/logger"
	"github.com/rewired-gh/whetherai/internal/models"
)

// WeatherSource returns the current conditions for a place name.
type WeatherSource interface {
	CurrentConditions(ctx context.Context, location string) (models.Conditions, error)
}

// ReportStore records answered reports.
type ReportStore interface {
	AddReport(report *models.Report) error
}

// Forecaster answers weather requests. It holds no mutable state of its own
// and is safe for concurrent use when its collaborators are.
type Forecaster struct {
	source     WeatherSource
	engine     *inference.Engine
	thresholds Thresholds
	store      ReportStore
	now        func() time.Time
}

// NewForecaster creates a Forecaster. store may be nil to skip history.
func NewForecaster(source WeatherSource, engine *inference.Engine, thresholds Thresholds, store ReportStore) *Forecaster {
	return &Forecaster{
		source:     source,
		engine:     engine,
		thresholds: thresholds,
		store:      store,
		now:        time.Now,
	}
}

// Thresholds returns the thresholds used for evidence derivation.
func (f *Forecaster) Thresholds() Thresholds {
	return f.thresholds
}

// Conditions fetches the current conditions without predicting.
func (f *Forecaster) Conditions(ctx context.Context, location string) (models.Conditions, error) {
	return f.source.CurrentConditions(ctx, location)
}

// Predict runs the engine directly on caller-supplied evidence.
func (f *Forecaster) Predict(ev inference.Evidence) (inference.Prediction, error) {
	return f.engine.Predict(ev)
}

// FromConditions derives evidence from conditions and predicts.
func (f *Forecaster) FromConditions(c models.Conditions) (inference.Prediction, error) {
	return f.engine.Predict(Derive(c, f.thresholds))
}

// Report fetches the conditions for location, predicts rain and sunlight, and
// records the result. A failure to record is logged, not returned.
func (f *Forecaster) Report(ctx context.Context, location string) (*models.Report, error) {
	conditions, err := f.source.CurrentConditions(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch weather for %q: %w", location, err)
	}

	evidence := Derive(conditions, f.thresholds)
	prediction, err := f.engine.Predict(evidence)
	if err != nil {
		return nil, fmt.Errorf("failed to predict weather for %q: %w", location, err)
	}
	logger.Debug("Prediction for %s: evidence=(cloud=%d humid=%d warm=%d) rain=%.2f sun=%.2f",
		conditions.Location, *evidence.CloudCover, *evidence.Humidity, *evidence.Temperature,
		prediction.RainChance, prediction.Sunlight)

	report := &models.Report{
		ID:          uuid.New().String(),
		Location:    conditions.Location,
		Temperature: conditions.TemperatureC,
		Humidity:    conditions.HumidityPct,
		Description: conditions.Description,
		RainChance:  prediction.RainChance,
		Sunlight:    prediction.Sunlight,
		CreatedAt:   f.now(),
	}

	if f.store != nil {
		if err := f.store.AddReport(report); err != nil {
			logger.Warn("Failed to record report %s: %v", report.ID, err)
		}
	}

	return report, nil
}
