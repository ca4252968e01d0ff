package prediction

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kilianp07/citypredict/core/history"
	"github.com/kilianp07/citypredict/core/inference"
	"github.com/kilianp07/citypredict/core/logger"
	"github.com/kilianp07/citypredict/core/preprocess"
)

// Expected input widths of each model.
const (
	trafficFeatures = 5
	energyFeatures  = 4
	wasteFeatures   = 3
	airFeatures     = 8
	waterFeatures   = 5
)

// Files names every artifact relative to the model directory.
type Files struct {
	TrafficModel   string `json:"traffic_model"`
	TrafficWeather string `json:"traffic_weather_encoder"`
	EnergyModel    string `json:"energy_model"`
	EnergyScaler   string `json:"energy_scaler"`
	WaterSequence  string `json:"water_model_seq"`
	WaterScalerX   string `json:"water_scaler_x"`
	WaterScalerY   string `json:"water_scaler_y"`
	WaterModel     string `json:"water_model"`
	WaterScaler    string `json:"water_scaler"`
	WasteModel     string `json:"waste_model"`
	WasteScaler    string `json:"waste_scaler"`
	WasteLocation  string `json:"waste_location_encoder"`
	WasteType      string `json:"waste_type_encoder"`
	AirModel       string `json:"air_quality_model"`
	AirScaler      string `json:"air_quality_scaler"`
}

// DefaultFiles returns the conventional artifact names.
func DefaultFiles() Files {
	return Files{
		TrafficModel:   "traffic_model.json",
		TrafficWeather: "traffic_weather_encoder.json",
		EnergyModel:    "energy_model.json",
		EnergyScaler:   "energy_scaler.json",
		WaterSequence:  "water_model_seq.json",
		WaterScalerX:   "water_scaler_x.json",
		WaterScalerY:   "water_scaler_y.json",
		WaterModel:     "water_model.json",
		WaterScaler:    "water_scaler.json",
		WasteModel:     "waste_model.json",
		WasteScaler:    "waste_scaler.json",
		WasteLocation:  "waste_location_encoder.json",
		WasteType:      "waste_type_encoder.json",
		AirModel:       "air_quality_model.json",
		AirScaler:      "air_quality_scaler.json",
	}
}

// SetDefaults fills empty names with the conventional ones.
func (f *Files) SetDefaults() {
	d := DefaultFiles()
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&f.TrafficModel, d.TrafficModel)
	fill(&f.TrafficWeather, d.TrafficWeather)
	fill(&f.EnergyModel, d.EnergyModel)
	fill(&f.EnergyScaler, d.EnergyScaler)
	fill(&f.WaterSequence, d.WaterSequence)
	fill(&f.WaterScalerX, d.WaterScalerX)
	fill(&f.WaterScalerY, d.WaterScalerY)
	fill(&f.WaterModel, d.WaterModel)
	fill(&f.WaterScaler, d.WaterScaler)
	fill(&f.WasteModel, d.WasteModel)
	fill(&f.WasteScaler, d.WasteScaler)
	fill(&f.WasteLocation, d.WasteLocation)
	fill(&f.WasteType, d.WasteType)
	fill(&f.AirModel, d.AirModel)
	fill(&f.AirScaler, d.AirScaler)
}

// Options configure Load.
type Options struct {
	Dir     string
	Files   Files
	History history.Source
	Log     logger.Logger
}

// Load reads every artifact from opts.Dir. Domains load independently: the
// returned Dispatcher is always usable and a *LoadError lists the domains
// that were marked unavailable.
func Load(opts Options) (*Dispatcher, error) {
	opts.Files.SetDefaults()
	l := loader{dir: opts.Dir, files: opts.Files}

	var c Components
	failures := map[Domain]error{}
	record := func(d Domain, err error) {
		if err != nil {
			failures[d] = err
			if opts.Log != nil {
				opts.Log.Warnf("domain %s unavailable: %v", d, err)
			}
		}
	}

	var err error
	c.Traffic, err = l.traffic()
	record(Traffic, err)
	c.Energy, err = l.scaled(l.files.EnergyModel, l.files.EnergyScaler, energyFeatures)
	record(Energy, err)
	c.Waste, err = l.waste()
	record(Waste, err)
	c.Air, err = l.scaled(l.files.AirModel, l.files.AirScaler, airFeatures)
	record(Air, err)
	c.Water, err = l.water()
	if err == nil && opts.History == nil {
		err = errors.New("no history source configured")
	}
	record(Water, err)
	c.History = opts.History

	d := New(c, failures)
	if opts.Log != nil && c.Water != nil {
		opts.Log.Infof("water model variant: %s", c.Water.Variant())
	}
	if len(failures) > 0 {
		return d, &LoadError{Failures: failures}
	}
	return d, nil
}

type loader struct {
	dir   string
	files Files
}

func (l loader) path(name string) string {
	return filepath.Join(l.dir, name)
}

func (l loader) regressor(name string, width int) (inference.Regressor, error) {
	m, err := inference.LoadRegressor(l.path(name))
	if err != nil {
		return nil, err
	}
	if m.Features() != width {
		return nil, fmt.Errorf("%s: %w: model expects %d features, want %d", name, inference.ErrShape, m.Features(), width)
	}
	return m, nil
}

func (l loader) scaler(name string, width int) (*preprocess.StandardScaler, error) {
	s, err := preprocess.LoadScaler(l.path(name))
	if err != nil {
		return nil, err
	}
	if s.Width() != width {
		return nil, fmt.Errorf("%s: %w: scaler width %d, want %d", name, preprocess.ErrDimension, s.Width(), width)
	}
	return s, nil
}

func (l loader) traffic() (*TrafficModel, error) {
	m, err := l.regressor(l.files.TrafficModel, trafficFeatures)
	if err != nil {
		return nil, err
	}
	enc, err := preprocess.LoadEncoder(l.path(l.files.TrafficWeather))
	if err != nil {
		return nil, err
	}
	return &TrafficModel{Model: m, Weather: enc}, nil
}

func (l loader) scaled(model, scaler string, width int) (*ScaledModel, error) {
	m, err := l.regressor(model, width)
	if err != nil {
		return nil, err
	}
	s, err := l.scaler(scaler, width)
	if err != nil {
		return nil, err
	}
	return &ScaledModel{Model: m, Scaler: s}, nil
}

func (l loader) waste() (*WasteModel, error) {
	sm, err := l.scaled(l.files.WasteModel, l.files.WasteScaler, wasteFeatures)
	if err != nil {
		return nil, err
	}
	loc, err := preprocess.LoadEncoder(l.path(l.files.WasteLocation))
	if err != nil {
		return nil, err
	}
	kind, err := preprocess.LoadEncoder(l.path(l.files.WasteType))
	if err != nil {
		return nil, err
	}
	return &WasteModel{ScaledModel: *sm, Location: loc, WasteType: kind}, nil
}

// water probes for the sequence artifact first. When it exists but cannot be
// loaded the linear variant is not tried.
func (l loader) water() (WaterModel, error) {
	seqPath := l.path(l.files.WaterSequence)
	if _, err := os.Stat(seqPath); err == nil {
		return l.sequenceWater(seqPath)
	}
	sm, err := l.scaled(l.files.WaterModel, l.files.WaterScaler, waterFeatures)
	if err != nil {
		return nil, err
	}
	return LinearWater{Model: sm.Model, Scaler: sm.Scaler}, nil
}

func (l loader) sequenceWater(path string) (WaterModel, error) {
	m, err := inference.LoadSequence(path)
	if err != nil {
		return nil, err
	}
	steps, width := m.Shape()
	if width != waterFeatures {
		return nil, fmt.Errorf("%s: %w: model expects %d features, want %d", l.files.WaterSequence, inference.ErrShape, width, waterFeatures)
	}
	if steps != 0 && steps != history.WindowSize {
		return nil, fmt.Errorf("%s: %w: model expects %d timesteps, want %d", l.files.WaterSequence, inference.ErrShape, steps, history.WindowSize)
	}
	x, err := l.scaler(l.files.WaterScalerX, waterFeatures)
	if err != nil {
		return nil, err
	}
	y, err := l.scaler(l.files.WaterScalerY, 1)
	if err != nil {
		return nil, err
	}
	return SequenceWater{Model: m, Inputs: x, Target: y}, nil
}
