package prediction

import (
	"context"
	"fmt"

	"github.com/kilianp07/citypredict/core/history"
	"github.com/kilianp07/citypredict/core/inference"
	"github.com/kilianp07/citypredict/core/monitoring"
	"github.com/kilianp07/citypredict/core/preprocess"
)

// TrafficModel pairs the traffic regressor with its weather encoder.
type TrafficModel struct {
	Model   inference.Regressor
	Weather *preprocess.LabelEncoder
}

// ScaledModel is a regressor trained on standard-scaled inputs.
type ScaledModel struct {
	Model  inference.Regressor
	Scaler *preprocess.StandardScaler
}

func (m ScaledModel) predict(x []float64) (float64, error) {
	scaled, err := m.Scaler.Transform(x)
	if err != nil {
		return 0, err
	}
	return m.Model.Predict(scaled)
}

// WasteModel pairs the waste regressor with its scaler and encoders.
type WasteModel struct {
	ScaledModel
	Location  *preprocess.LabelEncoder
	WasteType *preprocess.LabelEncoder
}

// Dispatcher routes typed requests to the loaded artifacts.
type Dispatcher struct {
	traffic *TrafficModel
	energy  *ScaledModel
	water   WaterModel
	waste   *WasteModel
	air     *ScaledModel

	history     history.Source
	unavailable map[Domain]error
}

// Components are the already loaded pieces a Dispatcher is assembled from.
// A nil component marks its domain unavailable.
type Components struct {
	Traffic *TrafficModel
	Energy  *ScaledModel
	Water   WaterModel
	Waste   *WasteModel
	Air     *ScaledModel
	History history.Source
}

// New assembles a Dispatcher. failures carries the load error of each
// missing domain and may be nil.
func New(c Components, failures map[Domain]error) *Dispatcher {
	d := &Dispatcher{
		traffic:     c.Traffic,
		energy:      c.Energy,
		water:       c.Water,
		waste:       c.Waste,
		air:         c.Air,
		history:     c.History,
		unavailable: map[Domain]error{},
	}
	present := map[Domain]bool{
		Traffic: c.Traffic != nil,
		Energy:  c.Energy != nil,
		Water:   c.Water != nil && c.History != nil,
		Waste:   c.Waste != nil,
		Air:     c.Air != nil,
	}
	for _, dom := range Domains() {
		if present[dom] {
			continue
		}
		cause := failures[dom]
		if cause == nil {
			d.unavailable[dom] = fmt.Errorf("%w for %s", ErrModelsUnavailable, dom)
		} else {
			d.unavailable[dom] = fmt.Errorf("%w for %s: %v", ErrModelsUnavailable, dom, cause)
		}
	}
	return d
}

// Unavailable returns a Dispatcher whose every operation reports that the
// models are not available.
func Unavailable() *Dispatcher {
	return New(Components{}, nil)
}

// Available returns nil when the domain can serve predictions, or the reason
// it cannot.
func (d *Dispatcher) Available(dom Domain) error {
	return d.unavailable[dom]
}

// WaterVariant reports the water model family, or "" when water is unavailable.
func (d *Dispatcher) WaterVariant() WaterVariant {
	if d.water == nil {
		return ""
	}
	return d.water.Variant()
}

// PredictTraffic estimates the vehicle count and congestion band.
func (d *Dispatcher) PredictTraffic(req TrafficRequest) Result {
	return d.run(Traffic, func() (Result, error) {
		weather, err := d.traffic.Weather.Transform(req.Weather)
		if err != nil {
			return Result{}, fmt.Errorf("encode weather: %w", err)
		}
		x := []float64{req.Hour, req.DayOfWeek, req.Month, req.Temperature, float64(weather)}
		y, err := d.traffic.Model.Predict(x)
		if err != nil {
			return Result{}, err
		}
		if err := finite(y); err != nil {
			return Result{}, err
		}
		return Result{
			Status:                StatusSuccess,
			PredictedVehicleCount: ptr(int(y)),
			CongestionLevel:       CongestionLevel(y),
		}, nil
	})
}

// PredictEnergy estimates consumption in kWh.
func (d *Dispatcher) PredictEnergy(req EnergyRequest) Result {
	return d.run(Energy, func() (Result, error) {
		y, err := d.energy.predict([]float64{req.Hour, req.Month, req.Temperature, req.PopulationDensity})
		if err != nil {
			return Result{}, err
		}
		if err := finite(y); err != nil {
			return Result{}, err
		}
		return Result{Status: StatusSuccess, PredictedConsumptionKWh: ptr(round2(y))}, nil
	})
}

// PredictWater estimates consumption in litres from the latest history window.
// The dataset is re-read on every call.
func (d *Dispatcher) PredictWater(ctx context.Context) Result {
	return d.run(Water, func() (Result, error) {
		window, err := d.history.Window(ctx, history.WindowSize)
		if err != nil {
			return Result{}, err
		}
		y, err := d.water.Predict(window)
		if err != nil {
			return Result{}, err
		}
		if err := finite(y); err != nil {
			return Result{}, err
		}
		return Result{Status: StatusSuccess, PredictedConsumptionLiters: ptr(round2(y))}, nil
	})
}

// PredictWaste estimates the bin fill level and whether collection is needed.
func (d *Dispatcher) PredictWaste(req WasteRequest) Result {
	return d.run(Waste, func() (Result, error) {
		loc, err := d.waste.Location.Transform(req.Location)
		if err != nil {
			return Result{}, fmt.Errorf("encode location: %w", err)
		}
		kind, err := d.waste.WasteType.Transform(req.WasteType)
		if err != nil {
			return Result{}, fmt.Errorf("encode waste_type: %w", err)
		}
		y, err := d.waste.predict([]float64{req.DayOfWeek, float64(loc), float64(kind)})
		if err != nil {
			return Result{}, err
		}
		if err := finite(y); err != nil {
			return Result{}, err
		}
		fill := ClampPercent(y)
		return Result{
			Status:                    StatusSuccess,
			PredictedFillLevelPercent: ptr(round2(fill)),
			CollectionNeeded:          CollectionNeeded(fill),
		}, nil
	})
}

// PredictAir classifies the air quality.
func (d *Dispatcher) PredictAir(req AirRequest) Result {
	return d.run(Air, func() (Result, error) {
		y, err := d.air.predict(req.features())
		if err != nil {
			return Result{}, err
		}
		if err := finite(y); err != nil {
			return Result{}, err
		}
		if y != 0 && y != 1 {
			return Result{}, fmt.Errorf("%w: %v", ErrNotBinary, y)
		}
		class := int(y)
		return Result{
			Status:           StatusSuccess,
			PredictedQuality: QualityLabel(class),
			QualityBinary:    ptr(class),
		}, nil
	})
}

// run is the error boundary shared by every operation.
func (d *Dispatcher) run(dom Domain, fn func() (Result, error)) (res Result) {
	if err := d.Available(dom); err != nil {
		return Failure(err)
	}
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %v", ErrInference, r)
			monitoring.CaptureException(err, map[string]string{"domain": string(dom), "kind": "panic"})
			res = Failure(err)
		}
	}()
	out, err := fn()
	if err != nil {
		return Failure(err)
	}
	return out
}
