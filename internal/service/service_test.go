package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/rewired-gh/whetherai/internal/inference"
	"github.com/rewired-gh/whetherai/internal/models"
)

type fakeSource struct {
	conditions models.Conditions
	err        error
}

func (f *fakeSource) CurrentConditions(ctx context.Context, location string) (models.Conditions, error) {
	if f.err != nil {
		return models.Conditions{}, f.err
	}
	c := f.conditions
	c.Location = location
	return c, nil
}

type fakeStore struct {
	mu      sync.Mutex
	reports []*models.Report
	err     error
}

func (s *fakeStore) AddReport(r *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.reports = append(s.reports, r)
	return nil
}

func mustEngine(t *testing.T) *inference.Engine {
	t.Helper()
	e, err := inference.NewEngine()
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return e
}

func TestDerive(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name       string
		conditions models.Conditions
		cloud      int
		humid      int
		warm       int
	}{
		{"overcast humid hot", models.Conditions{TemperatureC: 31, HumidityPct: 80, Description: "overcast clouds"}, 1, 1, 1},
		{"clear dry cold", models.Conditions{TemperatureC: 5, HumidityPct: 30, Description: "clear sky"}, 0, 0, 0},
		{"thresholds are strict", models.Conditions{TemperatureC: 20, HumidityPct: 60, Description: "mist"}, 0, 0, 0},
		{"keyword is case insensitive", models.Conditions{TemperatureC: 20.1, HumidityPct: 61, Description: "Scattered CLOUDS"}, 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Derive(tt.conditions, th)
			if *ev.CloudCover != tt.cloud || *ev.Humidity != tt.humid || *ev.Temperature != tt.warm {
				t.Errorf("Derive = (%d,%d,%d), expected (%d,%d,%d)",
					*ev.CloudCover, *ev.Humidity, *ev.Temperature, tt.cloud, tt.humid, tt.warm)
			}
		})
	}
}

func TestReport(t *testing.T) {
	source := &fakeSource{conditions: models.Conditions{TemperatureC: 26, HumidityPct: 75, Description: "broken clouds"}}
	store := &fakeStore{}
	f := NewForecaster(source, mustEngine(t), DefaultThresholds(), store)

	report, err := f.Report(context.Background(), "Nagpur")
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	if report.ID == "" {
		t.Error("Expected report ID to be set")
	}
	if report.Location != "Nagpur" || report.Temperature != 26 || report.Humidity != 75 {
		t.Errorf("Unexpected report conditions: %+v", report)
	}
	if math.Abs(report.RainChance-0.6) > 1e-9 || math.Abs(report.Sunlight-0.6) > 1e-9 {
		t.Errorf("Expected rain 0.6 and sunlight 0.6, got %f and %f", report.RainChance, report.Sunlight)
	}
	if len(store.reports) != 1 || store.reports[0] != report {
		t.Errorf("Expected report to be recorded, store has %d", len(store.reports))
	}
}

func TestReport_SourceError(t *testing.T) {
	upstream := errors.New("city not found")
	store := &fakeStore{}
	f := NewForecaster(&fakeSource{err: upstream}, mustEngine(t), DefaultThresholds(), store)

	report, err := f.Report(context.Background(), "Atlantis")
	if !errors.Is(err, upstream) {
		t.Fatalf("Expected upstream error, got %v", err)
	}
	if report != nil {
		t.Errorf("Expected no report, got %+v", report)
	}
	if len(store.reports) != 0 {
		t.Error("Expected nothing recorded on failure")
	}
}

func TestReport_StoreErrorIsNotFatal(t *testing.T) {
	source := &fakeSource{conditions: models.Conditions{TemperatureC: 12, HumidityPct: 40, Description: "clear sky"}}
	f := NewForecaster(source, mustEngine(t), DefaultThresholds(), &fakeStore{err: errors.New("disk full")})

	report, err := f.Report(context.Background(), "Shimla")
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if math.Abs(report.RainChance-0.2) > 1e-9 || math.Abs(report.Sunlight-0.1) > 1e-9 {
		t.Errorf("Expected rain 0.2 and sunlight 0.1, got %f and %f", report.RainChance, report.Sunlight)
	}
}

func TestReport_NilStore(t *testing.T) {
	source := &fakeSource{conditions: models.Conditions{TemperatureC: 12, HumidityPct: 40, Description: "clear sky"}}
	f := NewForecaster(source, mustEngine(t), DefaultThresholds(), nil)

	if _, err := f.Report(context.Background(), "Shimla"); err != nil {
		t.Fatalf("Report failed: %v", err)
	}
}
