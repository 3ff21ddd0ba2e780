// Package openweather fetches current conditions from the OpenWeatherMap
// "current weather" endpoint.
//
// Calls go through a circuit breaker so a dead upstream fails fast instead of
// tying up request handlers until the HTTP timeout. There is no retry: a failed
// lookup is reported to the caller, who decides what to do next.
package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/rewired-gh/whetherai/internal/models"
)

var (
	// ErrLocationNotFound is returned when the upstream does not know the place name.
	ErrLocationNotFound = errors.New("location not found")

	// ErrUnavailable is returned when the upstream cannot be reached or misbehaves.
	ErrUnavailable = errors.New("weather service unavailable")
)

// APIError is a 4xx answer from the upstream, carrying its message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("openweathermap returned %d", e.StatusCode)
	}
	return e.Message
}

// Is lets errors.Is(err, ErrLocationNotFound) match a 404 answer.
func (e *APIError) Is(target error) bool {
	return target == ErrLocationNotFound && e.StatusCode == http.StatusNotFound
}

// Client provides access to the OpenWeatherMap API
type Client struct {
	apiBaseURL string
	apiKey     string
	units      string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
}

// ClientConfig holds circuit breaker settings
type ClientConfig struct {
	Units           string
	BreakerFailures uint32        // consecutive failures before the breaker opens
	BreakerCooldown time.Duration // how long the breaker stays open
}

// currentResponse is the subset of the current weather payload we use.
type currentResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// NewClient creates a new OpenWeatherMap client
func NewClient(apiBaseURL, apiKey string, timeout time.Duration, cfg ClientConfig) *Client {
	if cfg.Units == "" {
		cfg.Units = "metric"
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}

	failures := cfg.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "openweathermap",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	})

	return &Client{
		apiBaseURL: strings.TrimRight(apiBaseURL, "/"),
		apiKey:     apiKey,
		units:      cfg.Units,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: breaker,
	}
}

// CurrentConditions retrieves the current temperature, humidity and sky
// description for a place name.
func (c *Client) CurrentConditions(ctx context.Context, location string) (models.Conditions, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return models.Conditions{}, &APIError{StatusCode: http.StatusBadRequest, Message: "location must not be empty"}
	}

	query := url.Values{}
	query.Set("q", location)
	query.Set("appid", c.apiKey)
	query.Set("units", c.units)
	endpoint := fmt.Sprintf("%s/data/2.5/weather?%s", c.apiBaseURL, query.Encode())

	resp, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return models.Conditions{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Conditions{}, decodeAPIError(resp)
	}

	var payload currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.Conditions{}, fmt.Errorf("%w: failed to decode response: %v", ErrUnavailable, err)
	}
	if len(payload.Weather) == 0 {
		return models.Conditions{}, fmt.Errorf("%w: response has no weather entries", ErrUnavailable)
	}

	name := payload.Name
	if name == "" {
		name = location
	}
	conditions := models.Conditions{
		Location:     name,
		TemperatureC: payload.Main.Temp,
		HumidityPct:  payload.Main.Humidity,
		Description:  payload.Weather[0].Description,
	}
	if err := conditions.Validate(); err != nil {
		return models.Conditions{}, fmt.Errorf("%w: invalid conditions: %v", ErrUnavailable, err)
	}
	return conditions, nil
}

// doRequest performs the GET through the circuit breaker. 5xx answers count
// as failures; 4xx answers are returned to the caller untouched.
func (c *Client) doRequest(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		r, doErr := c.httpClient.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		if r.StatusCode >= 500 {
			return r, fmt.Errorf("server error: %d", r.StatusCode)
		}
		return r, nil
	})
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit breaker open", ErrUnavailable)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

// State reports the circuit breaker state, for health checks.
func (c *Client) State() string {
	return c.breaker.State().String()
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil {
		var e errorResponse
		if json.Unmarshal(body, &e) == nil {
			apiErr.Message = e.Message
		}
	}
	return apiErr
}
