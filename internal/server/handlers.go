package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rewired-gh/whetherai/internal/advice"
	"github.com/rewired-gh/whetherai/internal/inference"
)

const defaultHistoryLimit = 20

type weatherRequest struct {
	City string `json:"city" validate:"required,max=100"`
}

type weatherResponse struct {
	ID          string  `json:"id"`
	Location    string  `json:"location"`
	Temperature float64 `json:"temperature"`
	Humidity    int     `json:"humidity"`
	Description string  `json:"description"`
	RainChance  float64 `json:"rain_chance"`
	Sunlight    float64 `json:"sunlight"`
}

type predictRequest struct {
	CloudCover  *int `json:"cloud_cover" validate:"required,oneof=0 1"`
	Humidity    *int `json:"humidity" validate:"required,oneof=0 1"`
	Temperature *int `json:"temperature" validate:"required,oneof=0 1"`
}

type predictResponse struct {
	RainChance float64       `json:"rain_chance"`
	Sunlight   float64       `json:"sunlight"`
	Advice     advice.Advice `json:"advice"`
}

type healthResponse struct {
	Status     string `json:"status"`
	WeatherAPI string `json:"weather_api,omitempty"`
	Storage    string `json:"storage,omitempty"`
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	var req weatherRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	city := strings.TrimSpace(req.City)
	if city == "" {
		writeError(w, badRequest("city is required"))
		return
	}

	report, err := s.forecaster.Report(r.Context(), city)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, weatherResponse{
		ID:          report.ID,
		Location:    report.Location,
		Temperature: report.Temperature,
		Humidity:    report.Humidity,
		Description: report.Description,
		RainChance:  report.RainChance,
		Sunlight:    report.Sunlight,
	})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	prediction, err := s.forecaster.Predict(inference.Evidence{
		CloudCover:  req.CloudCover,
		Humidity:    req.Humidity,
		Temperature: req.Temperature,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, predictResponse{
		RainChance: prediction.RainChance,
		Sunlight:   prediction.Sunlight,
		Advice:     advice.For(prediction),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, badRequest("limit must be a positive integer"))
			return
		}
		limit = n
	}

	reports, err := s.history.ListReports(limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	status := http.StatusOK

	if s.upstream != nil {
		resp.WeatherAPI = s.upstream.State()
		if resp.WeatherAPI == "open" {
			resp.Status = "degraded"
		}
	}
	if s.history != nil {
		resp.Storage = "ok"
		if err := s.history.Ping(); err != nil {
			resp.Storage = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, resp)
}
