package server

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rewired-gh/whetherai/internal/inference"
	"github.com/rewired-gh/whetherai/internal/models"
	"github.com/rewired-gh/whetherai/internal/openweather"
	"github.com/rewired-gh/whetherai/internal/service"
	"github.com/rewired-gh/whetherai/internal/storage"
)

type fakeSource struct {
	byCity map[string]models.Conditions
	err    error
}

func (f *fakeSource) CurrentConditions(ctx context.Context, location string) (models.Conditions, error) {
	if f.err != nil {
		return models.Conditions{}, f.err
	}
	c, ok := f.byCity[location]
	if !ok {
		return models.Conditions{}, &openweather.APIError{StatusCode: http.StatusNotFound, Message: "city not found"}
	}
	return c, nil
}

type fakeUpstream string

func (u fakeUpstream) State() string { return string(u) }

func newTestServer(t *testing.T, source service.WeatherSource, origins []string) (*Server, *storage.Storage) {
	t.Helper()

	engine, err := inference.NewEngine()
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	store, err := storage.New(50, ":memory:")
	if err != nil {
		t.Fatalf("storage.New failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	forecaster := service.NewForecaster(source, engine, service.DefaultThresholds(), store)
	return New(forecaster, store, fakeUpstream("closed"), Options{
		AllowedOrigins: origins,
		RequestTimeout: 5 * time.Second,
	}), store
}

func defaultSource() *fakeSource {
	return &fakeSource{byCity: map[string]models.Conditions{
		"Pune":  {Location: "Pune", TemperatureC: 27.4, HumidityPct: 72, Description: "broken clouds"},
		"Leh":   {Location: "Leh", TemperatureC: 4, HumidityPct: 20, Description: "clear sky"},
		"Kochi": {Location: "Kochi", TemperatureC: 30, HumidityPct: 85, Description: "light rain"},
	}}
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	return resp.Error
}

func TestWeather(t *testing.T) {
	srv, store := newTestServer(t, defaultSource(), []string{"*"})

	rec := do(t, srv, http.MethodPost, "/weather", `{"city":"Pune"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp weatherResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Temperature != 27.4 || resp.Humidity != 72 || resp.Description != "broken clouds" {
		t.Errorf("Unexpected conditions: %+v", resp)
	}
	// cloudy, humid, warm -> rain 0.6, sunlight 0.6
	if math.Abs(resp.RainChance-0.6) > 1e-9 || math.Abs(resp.Sunlight-0.6) > 1e-9 {
		t.Errorf("Expected 0.6/0.6, got %f/%f", resp.RainChance, resp.Sunlight)
	}

	n, err := store.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 stored report, got %d", n)
	}
}

func TestWeather_Errors(t *testing.T) {
	tests := []struct {
		name       string
		source     *fakeSource
		body       string
		wantStatus int
		wantError  string
	}{
		{"unknown city", defaultSource(), `{"city":"Atlantis"}`, http.StatusBadRequest, "city not found"},
		{"missing city", defaultSource(), `{}`, http.StatusBadRequest, "city is required"},
		{"blank city", defaultSource(), `{"city":"   "}`, http.StatusBadRequest, "city is required"},
		{"empty body", defaultSource(), ``, http.StatusBadRequest, "request body must not be empty"},
		{"malformed json", defaultSource(), `{"city":`, http.StatusBadRequest, "malformed JSON in request body"},
		{"unknown field", defaultSource(), `{"town":"Pune"}`, http.StatusBadRequest, `unknown field "town"`},
		{
			"upstream down",
			&fakeSource{err: fmt.Errorf("%w: connection refused", openweather.ErrUnavailable)},
			`{"city":"Pune"}`,
			http.StatusBadGateway,
			"weather service unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tt.source, []string{"*"})
			rec := do(t, srv, http.MethodPost, "/weather", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if got := decodeError(t, rec); got != tt.wantError {
				t.Errorf("Expected error %q, got %q", tt.wantError, got)
			}
		})
	}
}

func TestPredict(t *testing.T) {
	srv, _ := newTestServer(t, defaultSource(), []string{"*"})

	rec := do(t, srv, http.MethodPost, "/predict", `{"cloud_cover":1,"humidity":1,"temperature":0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp predictResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if math.Abs(resp.RainChance-0.6) > 1e-9 || math.Abs(resp.Sunlight-0.1) > 1e-9 {
		t.Errorf("Expected 0.6/0.1, got %f/%f", resp.RainChance, resp.Sunlight)
	}
	if !resp.Advice.Rain.Likely || resp.Advice.Sun.Likely {
		t.Errorf("Unexpected advice: %+v", resp.Advice)
	}
}

func TestPredict_InvalidEvidence(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantError string
	}{
		{"missing field", `{"cloud_cover":1,"humidity":1}`, "temperature is required"},
		{"non binary", `{"cloud_cover":2,"humidity":1,"temperature":0}`, "cloud_cover must be one of: 0 1"},
		{"wrong type", `{"cloud_cover":"yes","humidity":1,"temperature":0}`, "invalid value for field cloud_cover"},
	}

	srv, _ := newTestServer(t, defaultSource(), []string{"*"})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/predict", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("Expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			if got := decodeError(t, rec); got != tt.wantError {
				t.Errorf("Expected error %q, got %q", tt.wantError, got)
			}
		})
	}
}

func TestHistory(t *testing.T) {
	srv, _ := newTestServer(t, defaultSource(), []string{"*"})

	for _, city := range []string{"Pune", "Leh", "Kochi"} {
		rec := do(t, srv, http.MethodPost, "/weather", fmt.Sprintf(`{"city":%q}`, city))
		if rec.Code != http.StatusOK {
			t.Fatalf("Weather for %s failed: %d", city, rec.Code)
		}
	}

	rec := do(t, srv, http.MethodGet, "/history?limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var reports []models.Report
	if err := json.NewDecoder(rec.Body).Decode(&reports); err != nil {
		t.Fatalf("Failed to decode history: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("Expected 2 reports, got %d", len(reports))
	}

	rec = do(t, srv, http.MethodGet, "/history?limit=zero", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad limit, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, defaultSource(), []string{"*"})

	rec := do(t, srv, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var resp healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode health: %v", err)
	}
	if resp.Status != "ok" || resp.WeatherAPI != "closed" || resp.Storage != "ok" {
		t.Errorf("Unexpected health: %+v", resp)
	}
}

func TestCORS(t *testing.T) {
	srv, _ := newTestServer(t, defaultSource(), []string{"https://farm.example.com"})

	req := httptest.NewRequest(http.MethodOptions, "/weather", nil)
	req.Header.Set("Origin", "https://farm.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204 for preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://farm.example.com" {
		t.Errorf("Expected allowed origin header, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Expected no CORS header for unknown origin, got %q", got)
	}
}
