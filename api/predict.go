package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kilianp07/citypredict/core/events"
	"github.com/kilianp07/citypredict/core/prediction"
	"github.com/kilianp07/citypredict/core/store"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Request bodies use pointers so that a zero value is distinguishable from
// a missing field.
type trafficBody struct {
	Hour        *float64 `json:"hour" validate:"required"`
	DayOfWeek   *float64 `json:"day_of_week" validate:"required"`
	Month       *float64 `json:"month" validate:"required"`
	Temperature *float64 `json:"temperature" validate:"required"`
	Weather     *string  `json:"weather" validate:"required"`
}

type energyBody struct {
	Hour              *float64 `json:"hour" validate:"required"`
	Month             *float64 `json:"month" validate:"required"`
	Temperature       *float64 `json:"temperature" validate:"required"`
	PopulationDensity *float64 `json:"population_density" validate:"required"`
}

type wasteBody struct {
	DayOfWeek *float64 `json:"day_of_week" validate:"required"`
	Location  *string  `json:"location" validate:"required"`
	WasteType *string  `json:"waste_type" validate:"required"`
}

type airBody struct {
	Month       *float64 `json:"month" validate:"required"`
	DayOfWeek   *float64 `json:"day_of_week" validate:"required"`
	Temperature *float64 `json:"temperature" validate:"required"`
	WindSpeed   *float64 `json:"wind_speed" validate:"required"`
	PM25        *float64 `json:"pm25" validate:"required"`
	PM10        *float64 `json:"pm10" validate:"required"`
	NO2         *float64 `json:"no2" validate:"required"`
	CO          *float64 `json:"co" validate:"required"`
}

func (h *handler) predictTraffic(w http.ResponseWriter, r *http.Request) {
	var b trafficBody
	input, ok := bind(w, r, &b)
	if !ok {
		return
	}
	h.serve(w, r, prediction.Traffic, input, func() prediction.Result {
		return h.pred.PredictTraffic(prediction.TrafficRequest{
			Hour:        *b.Hour,
			DayOfWeek:   *b.DayOfWeek,
			Month:       *b.Month,
			Temperature: *b.Temperature,
			Weather:     *b.Weather,
		})
	})
}

func (h *handler) predictEnergy(w http.ResponseWriter, r *http.Request) {
	var b energyBody
	input, ok := bind(w, r, &b)
	if !ok {
		return
	}
	h.serve(w, r, prediction.Energy, input, func() prediction.Result {
		return h.pred.PredictEnergy(prediction.EnergyRequest{
			Hour:              *b.Hour,
			Month:             *b.Month,
			Temperature:       *b.Temperature,
			PopulationDensity: *b.PopulationDensity,
		})
	})
}

// predictWater ignores the request body: the model reads its own history.
func (h *handler) predictWater(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, prediction.Water, map[string]any{}, func() prediction.Result {
		return h.pred.PredictWater(r.Context())
	})
}

func (h *handler) predictWaste(w http.ResponseWriter, r *http.Request) {
	var b wasteBody
	input, ok := bind(w, r, &b)
	if !ok {
		return
	}
	h.serve(w, r, prediction.Waste, input, func() prediction.Result {
		return h.pred.PredictWaste(prediction.WasteRequest{
			DayOfWeek: *b.DayOfWeek,
			Location:  *b.Location,
			WasteType: *b.WasteType,
		})
	})
}

func (h *handler) predictAir(w http.ResponseWriter, r *http.Request) {
	var b airBody
	input, ok := bind(w, r, &b)
	if !ok {
		return
	}
	h.serve(w, r, prediction.Air, input, func() prediction.Result {
		return h.pred.PredictAir(prediction.AirRequest{
			Month:       *b.Month,
			DayOfWeek:   *b.DayOfWeek,
			Temperature: *b.Temperature,
			WindSpeed:   *b.WindSpeed,
			PM25:        *b.PM25,
			PM10:        *b.PM10,
			NO2:         *b.NO2,
			CO:          *b.CO,
		})
	})
}

// bind decodes the body twice: once as the raw input kept with the record
// and once into dst for validation. It writes the 400 response on failure.
func bind(w http.ResponseWriter, r *http.Request, dst any) (map[string]any, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("read body: %v", err))
		return nil, false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, "No data provided")
		return nil, false
	}
	input := map[string]any{}
	if err := json.Unmarshal(body, &input); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid JSON body: %v", err))
		return nil, false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid value for field: %s", typeErr.Field))
			return nil, false
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid JSON body: %v", err))
		return nil, false
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			writeError(w, http.StatusBadRequest, "Missing required field: "+verrs[0].Field())
			return nil, false
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return input, true
}

// serve runs one prediction, stores it and publishes it on the bus.
func (h *handler) serve(w http.ResponseWriter, r *http.Request, dom prediction.Domain, input map[string]any, fn func() prediction.Result) {
	if err := h.pred.Available(dom); err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	log := h.log.With("domain", dom)
	start := time.Now()
	res := fn()
	latency := time.Since(start)

	rec := store.NewRecord(dom, input, res)
	if err := h.store.Append(r.Context(), rec); err != nil {
		log.Errorf("store prediction %s: %v", rec.ID, err)
	}
	if h.bus != nil {
		h.bus.Publish(events.PredictionEvent{Record: rec, Latency: latency})
	}
	if !res.OK() {
		log.Warnf("prediction failed: %s", res.Message)
	} else {
		log.Debugw("prediction served", map[string]any{
			"latency": latency.String(),
			"summary": res.Summary(),
		})
	}
	writeJSON(w, http.StatusOK, res)
}
