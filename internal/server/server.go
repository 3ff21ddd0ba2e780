// Package server exposes the forecaster over HTTP.
//
//	POST /weather   {"city": "..."}                       -> report
//	POST /predict   {"cloud_cover":0,"humidity":1,...}    -> prediction and advice
//	GET  /history   ?limit=N                              -> recent reports, newest first
//	GET  /health                                          -> component status
package server

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/rewired-gh/whetherai/internal/inference"
	"github.com/rewired-gh/whetherai/internal/models"
)

// Forecaster answers weather and prediction requests.
type Forecaster interface {
	Report(ctx context.Context, location string) (*models.Report, error)
	Predict(ev inference.Evidence) (inference.Prediction, error)
}

// History lists recorded reports.
type History interface {
	ListReports(limit int) ([]*models.Report, error)
	Ping() error
}

// Upstream reports the state of the weather source's circuit breaker.
type Upstream interface {
	State() string
}

// Options configures the HTTP surface.
type Options struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// Server routes HTTP requests to the forecaster.
type Server struct {
	router     chi.Router
	forecaster Forecaster
	history    History
	upstream   Upstream
	validate   *validator.Validate
}

// New creates the HTTP surface. history and upstream may be nil; /history
// is then not mounted and /health omits the missing components.
func New(forecaster Forecaster, history History, upstream Upstream, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names in validation messages.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	s := &Server{
		router:     chi.NewRouter(),
		forecaster: forecaster,
		history:    history,
		upstream:   upstream,
		validate:   validate,
	}
	s.routes(opts)
	return s
}

func (s *Server) routes(opts Options) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(corsMiddleware(opts.AllowedOrigins))
	s.router.Use(middleware.Timeout(opts.RequestTimeout))

	s.router.Post("/weather", s.handleWeather)
	s.router.Post("/predict", s.handlePredict)
	if s.history != nil {
		s.router.Get("/history", s.handleHistory)
	}
	s.router.Get("/health", s.handleHealth)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
