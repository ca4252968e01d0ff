// Package api exposes the prediction dispatcher and the prediction store over
// HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kilianp07/citypredict/core/events"
	"github.com/kilianp07/citypredict/core/prediction"
	"github.com/kilianp07/citypredict/core/store"
	"github.com/kilianp07/citypredict/infra/logger"
	"github.com/kilianp07/citypredict/internal/eventbus"
)

// Version is reported by the service banner.
const Version = "1.0.0"

// Predictor is the dispatcher surface used by the handlers.
type Predictor interface {
	PredictTraffic(req prediction.TrafficRequest) prediction.Result
	PredictEnergy(req prediction.EnergyRequest) prediction.Result
	PredictWater(ctx context.Context) prediction.Result
	PredictWaste(req prediction.WasteRequest) prediction.Result
	PredictAir(req prediction.AirRequest) prediction.Result
	Available(dom prediction.Domain) error
	WaterVariant() prediction.WaterVariant
}

// Options configure NewRouter. Bus and Metrics are optional.
type Options struct {
	Predictor      Predictor
	Store          store.Store
	Bus            *eventbus.Bus[events.Event]
	Log            logger.Logger
	AllowedOrigins []string
	Metrics        http.Handler
}

type handler struct {
	pred  Predictor
	store store.Store
	bus   *eventbus.Bus[events.Event]
	log   logger.Logger
}

// NewRouter builds the HTTP routes.
func NewRouter(opts Options) http.Handler {
	h := &handler{pred: opts.Predictor, store: opts.Store, bus: opts.Bus, log: opts.Log}
	if h.log == nil {
		h.log = logger.NopLogger{}
	}
	if h.store == nil {
		h.store = store.NewMemoryStore(store.DefaultCapacity)
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", h.home)
	r.Get("/healthz", h.health)
	r.Route("/predict", func(r chi.Router) {
		r.Post("/traffic", h.predictTraffic)
		r.Post("/energy", h.predictEnergy)
		r.Post("/water", h.predictWater)
		r.Post("/waste", h.predictWaste)
		r.Post("/air", h.predictAir)
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/predictions", h.predictions)
		r.Get("/stats", h.stats)
		r.Get("/generate-pdf", h.generatePDF)
		r.Get("/export", h.export)
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
