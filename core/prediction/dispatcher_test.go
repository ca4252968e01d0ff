package prediction

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/citypredict/core/history"
	"github.com/kilianp07/citypredict/core/monitoring"
	"github.com/kilianp07/citypredict/core/preprocess"
	"github.com/kilianp07/citypredict/infra/logger"
)

const waterCSV = `timestamp,day_of_week,month,temperature,precipitation,population,consumption_liters
2024-01-01,0,1,21,4,100100,51000
2024-01-02,1,1,22,3,100200,52000
2024-01-03,2,1,23,2,100300,53000
2024-01-04,3,1,24,1,100400,54000
2024-01-05,4,1,25,0,100500,55000
2024-01-06,5,1,26,1,100600,56000
2024-01-07,6,1,27,2,100700,57000
2024-01-08,0,1,28,3,100800,58000
`

var baseArtifacts = map[string]string{
	// vehicle count = 100 * hour
	"traffic_model.json":           `{"kind": "linear", "params": {"coef": [100, 0, 0, 0, 0], "intercept": 0}}`,
	"traffic_weather_encoder.json": `{"classes": ["Cloudy", "Rainy", "Sunny"]}`,
	"energy_model.json":            `{"kind": "linear", "params": {"coef": [1, 1, 1, 0.001], "intercept": 0.123}}`,
	"energy_scaler.json":           `{"mean": [0, 0, 0, 0], "scale": [1, 1, 1, 1]}`,
	// fill level = 40 * day_of_week + location index
	"waste_model.json":             `{"kind": "linear", "params": {"coef": [40, 1, 0], "intercept": 0}}`,
	"waste_scaler.json":            `{"mean": [0, 0, 0], "scale": [1, 1, 1]}`,
	"waste_location_encoder.json":  `{"classes": ["Downtown", "Residential"]}`,
	"waste_type_encoder.json":      `{"classes": ["Organic", "Plastic"]}`,
	// good air iff pm25 < 50
	"air_quality_model.json":  `{"kind": "logistic", "params": {"coef": [0, 0, 0, 0, -1, 0, 0, 0], "intercept": 50}}`,
	"air_quality_scaler.json": `{"mean": [0, 0, 0, 0, 0, 0, 0, 0], "scale": [1, 1, 1, 1, 1, 1, 1, 1]}`,
}

var linearWater = map[string]string{
	"water_model.json":  `{"kind": "linear", "params": {"coef": [0, 0, 1, 0, 0], "intercept": 0}}`,
	"water_scaler.json": `{"mean": [0, 0, 0, 0, 0], "scale": [1, 1, 1, 1, 1]}`,
}

var sequenceWater = map[string]string{
	"water_model_seq.json": `{"kind": "lstm", "params": {
		"timesteps": 7,
		"layers": [{
			"units": 1,
			"kernel": [[0, 0, 0, 0], [0, 0, 0, 0], [0, 0, 0, 0], [0, 0, 0, 0], [0, 0, 0, 0]],
			"recurrent_kernel": [[0, 0, 0, 0]],
			"bias": [0, 0, 0, 0]
		}],
		"dense": {"kernel": [[1]], "bias": [0.5]}
	}}`,
	"water_scaler_x.json": `{"mean": [3, 6, 20, 5, 100000], "scale": [2, 3, 5, 2, 5000]}`,
	"water_scaler_y.json": `{"mean": [50000], "scale": [1000]}`,
}

func writeArtifacts(t *testing.T, sets ...map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for _, set := range sets {
		for name, body := range set {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
		}
	}
	return dir
}

func historySource(t *testing.T) history.Source {
	t.Helper()
	path := filepath.Join(t.TempDir(), "water.csv")
	require.NoError(t, os.WriteFile(path, []byte(waterCSV), 0o644))
	return history.NewCSVSource(path, 0)
}

func loadDispatcher(t *testing.T, sets ...map[string]string) *Dispatcher {
	t.Helper()
	d, err := Load(Options{Dir: writeArtifacts(t, sets...), History: historySource(t), Log: logger.NopLogger{}})
	require.NoError(t, err)
	return d
}

func TestTraffic_EndToEnd(t *testing.T) {
	d := loadDispatcher(t, baseArtifacts, linearWater)

	res := d.PredictTraffic(TrafficRequest{Hour: 7.5, DayOfWeek: 2, Month: 6, Temperature: 22, Weather: "Sunny"})
	require.True(t, res.OK(), res.Message)
	assert.Equal(t, 750, *res.PredictedVehicleCount)
	assert.Equal(t, "High", res.CongestionLevel)

	res = d.PredictTraffic(TrafficRequest{Hour: 7.5, Weather: "Foggy"})
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Message, "Foggy")
}

func TestTraffic_Banding(t *testing.T) {
	d := loadDispatcher(t, baseArtifacts, linearWater)
	cases := []struct {
		hour  float64
		count int
		level string
	}{
		{7.5, 750, "High"},
		{7, 700, "Medium"},
		{4.5, 450, "Medium"},
		{4, 400, "Low"},
		{0, 0, "Low"},
	}
	for _, tc := range cases {
		res := d.PredictTraffic(TrafficRequest{Hour: tc.hour, Weather: "Rainy"})
		require.True(t, res.OK(), res.Message)
		assert.Equal(t, tc.count, *res.PredictedVehicleCount, "hour %v", tc.hour)
		assert.Equal(t, tc.level, res.CongestionLevel, "hour %v", tc.hour)
	}
}

func TestCongestionLevel_RawValue(t *testing.T) {
	// 700.5 truncates to 700 but is banded on the raw value.
	assert.Equal(t, "High", CongestionLevel(700.5))
	assert.Equal(t, "Medium", CongestionLevel(700))
	assert.Equal(t, "Low", CongestionLevel(400))
	assert.Equal(t, "Low", CongestionLevel(-3))
}

func TestEnergy_Rounded(t *testing.T) {
	d := loadDispatcher(t, baseArtifacts, linearWater)
	res := d.PredictEnergy(EnergyRequest{Hour: 10, Month: 3, Temperature: 12.5, PopulationDensity: 1000})
	require.True(t, res.OK(), res.Message)
	assert.Equal(t, 26.62, *res.PredictedConsumptionKWh)
}

func TestWaste_ClampAndCollection(t *testing.T) {
	d := loadDispatcher(t, baseArtifacts, linearWater)
	cases := []struct {
		day      float64
		location string
		fill     float64
		needed   string
	}{
		{3, "Downtown", 100, "Yes"},
		{-1, "Downtown", 0, "No"},
		{2, "Downtown", 80, "No"},
		{2, "Residential", 81, "Yes"},
	}
	for _, tc := range cases {
		res := d.PredictWaste(WasteRequest{DayOfWeek: tc.day, Location: tc.location, WasteType: "Organic"})
		require.True(t, res.OK(), res.Message)
		assert.InDelta(t, tc.fill, *res.PredictedFillLevelPercent, 1e-9)
		assert.GreaterOrEqual(t, *res.PredictedFillLevelPercent, 0.0)
		assert.LessOrEqual(t, *res.PredictedFillLevelPercent, 100.0)
		assert.Equal(t, tc.needed, res.CollectionNeeded)
	}
}

func TestWaste_UnseenLocation(t *testing.T) {
	d := loadDispatcher(t, baseArtifacts, linearWater)
	res := d.PredictWaste(WasteRequest{DayOfWeek: 1, Location: "Airport", WasteType: "Organic"})
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Message, "location")
	assert.Nil(t, res.PredictedFillLevelPercent)
}

func TestAir_Classes(t *testing.T) {
	d := loadDispatcher(t, baseArtifacts, linearWater)

	res := d.PredictAir(AirRequest{PM25: 10})
	require.True(t, res.OK(), res.Message)
	assert.Equal(t, "Good/Moderate", res.PredictedQuality)
	assert.Equal(t, 1, *res.QualityBinary)

	res = d.PredictAir(AirRequest{PM25: 90})
	require.True(t, res.OK(), res.Message)
	assert.Equal(t, "Unhealthy", res.PredictedQuality)
	assert.Equal(t, 0, *res.QualityBinary)
}

func TestWater_Variants(t *testing.T) {
	lin := loadDispatcher(t, baseArtifacts, linearWater)
	assert.Equal(t, VariantLinear, lin.WaterVariant())
	res := lin.PredictWater(context.Background())
	require.True(t, res.OK(), res.Message)
	// latest row temperature
	assert.Equal(t, 28.0, *res.PredictedConsumptionLiters)

	seq := loadDispatcher(t, baseArtifacts, linearWater, sequenceWater)
	assert.Equal(t, VariantSequence, seq.WaterVariant())
	res = seq.PredictWater(context.Background())
	require.True(t, res.OK(), res.Message)
	assert.False(t, math.IsNaN(*res.PredictedConsumptionLiters))
	assert.Equal(t, 50500.0, *res.PredictedConsumptionLiters)
}

func TestWater_BrokenSequenceDoesNotFallBack(t *testing.T) {
	broken := map[string]string{"water_model_seq.json": `{"kind": "lstm", "params": {}}`}
	dir := writeArtifacts(t, baseArtifacts, linearWater, broken)
	d, err := Load(Options{Dir: dir, History: historySource(t)})

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Failures, Water)
	assert.Equal(t, WaterVariant(""), d.WaterVariant())
	assert.Equal(t, StatusError, d.PredictWater(context.Background()).Status)
}

func TestWater_ShortHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "water.csv")
	short := strings.Join(strings.Split(waterCSV, "\n")[:4], "\n")
	require.NoError(t, os.WriteFile(path, []byte(short), 0o644))

	lin, err := Load(Options{Dir: writeArtifacts(t, baseArtifacts, linearWater), History: history.NewCSVSource(path, 0)})
	require.NoError(t, err)
	res := lin.PredictWater(context.Background())
	require.True(t, res.OK(), res.Message)
	// temperature of the third row
	assert.Equal(t, 23.0, *res.PredictedConsumptionLiters)

	seq, err := Load(Options{Dir: writeArtifacts(t, baseArtifacts, linearWater, sequenceWater), History: history.NewCSVSource(path, 0)})
	require.NoError(t, err)
	res = seq.PredictWater(context.Background())
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Message, history.ErrShortHistory.Error())

	empty := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(empty, []byte(strings.Split(waterCSV, "\n")[0]+"\n"), 0o644))
	lin, err = Load(Options{Dir: writeArtifacts(t, baseArtifacts, linearWater), History: history.NewCSVSource(empty, 0)})
	require.NoError(t, err)
	assert.Equal(t, StatusError, lin.PredictWater(context.Background()).Status)
}

func TestMissingWasteArtifacts(t *testing.T) {
	dir := writeArtifacts(t, baseArtifacts, linearWater)
	require.NoError(t, os.Remove(filepath.Join(dir, "waste_model.json")))

	d, err := Load(Options{Dir: dir, History: historySource(t)})
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Len(t, le.Failures, 1)
	assert.ErrorIs(t, err, os.ErrNotExist)

	res := d.PredictWaste(WasteRequest{DayOfWeek: 1, Location: "Downtown", WasteType: "Organic"})
	assert.Equal(t, StatusError, res.Status)
	assert.True(t, strings.HasPrefix(res.Message, "models not available for waste"))
	assert.ErrorIs(t, d.Available(Waste), ErrModelsUnavailable)

	assert.True(t, d.PredictTraffic(TrafficRequest{Hour: 1, Weather: "Sunny"}).OK())
	assert.True(t, d.PredictEnergy(EnergyRequest{}).OK())
	assert.True(t, d.PredictAir(AirRequest{}).OK())
	assert.True(t, d.PredictWater(context.Background()).OK())
}

func TestLoad_WidthMismatch(t *testing.T) {
	wide := map[string]string{"energy_scaler.json": `{"mean": [0, 0, 0], "scale": [1, 1, 1]}`}
	_, err := Load(Options{Dir: writeArtifacts(t, baseArtifacts, linearWater, wide), History: historySource(t)})
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Failures, Energy)
}

func TestDeterminism(t *testing.T) {
	d := loadDispatcher(t, baseArtifacts, linearWater, sequenceWater)
	req := EnergyRequest{Hour: 18, Month: 12, Temperature: -2, PopulationDensity: 3200}
	first := d.PredictEnergy(req)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, d.PredictEnergy(req))
	}
	w := d.PredictWater(context.Background())
	assert.Equal(t, w, d.PredictWater(context.Background()))
}

func TestUnavailable(t *testing.T) {
	d := Unavailable()
	for _, dom := range Domains() {
		assert.ErrorIs(t, d.Available(dom), ErrModelsUnavailable)
	}
	res := d.PredictTraffic(TrafficRequest{Weather: "Sunny"})
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Message, "models not available")
	assert.Equal(t, StatusError, d.PredictWater(context.Background()).Status)
}

type stubRegressor struct {
	y     float64
	panic bool
}

func (s stubRegressor) Features() int { return 4 }

func (s stubRegressor) Predict([]float64) (float64, error) {
	if s.panic {
		panic("index out of range")
	}
	return s.y, nil
}

func scaledStub(t *testing.T, s stubRegressor) *ScaledModel {
	t.Helper()
	sc, err := preprocessIdentity(4)
	require.NoError(t, err)
	return &ScaledModel{Model: s, Scaler: sc}
}

func TestNonFiniteOutput(t *testing.T) {
	for _, y := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		d := New(Components{Energy: scaledStub(t, stubRegressor{y: y})}, nil)
		res := d.PredictEnergy(EnergyRequest{})
		assert.Equal(t, StatusError, res.Status)
		assert.Contains(t, res.Message, ErrNonFinite.Error())
	}
}

func TestAir_RejectsNonBinaryOutput(t *testing.T) {
	sc, err := preprocessIdentity(airFeatures)
	require.NoError(t, err)
	for _, y := range []float64{0.7, 2, -1} {
		d := New(Components{Air: &ScaledModel{Model: stubRegressor{y: y}, Scaler: sc}}, nil)
		res := d.PredictAir(AirRequest{})
		assert.Equal(t, StatusError, res.Status)
		assert.Contains(t, res.Message, ErrNotBinary.Error())
	}
}

func TestPanicRecovered(t *testing.T) {
	d := New(Components{Energy: scaledStub(t, stubRegressor{panic: true})}, nil)
	rec := &captured{}
	monitoring.Init(rec)
	defer monitoring.Init(nil)

	res := d.PredictEnergy(EnergyRequest{})
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Message, "index out of range")
	require.Len(t, rec.tags, 1)
	assert.Equal(t, "energy", rec.tags[0]["domain"])
}

type captured struct{ tags []map[string]string }

func (c *captured) CaptureException(_ error, tags map[string]string) { c.tags = append(c.tags, tags) }
func (c *captured) Flush(time.Duration) bool                         { return true }

func TestLoadError_Message(t *testing.T) {
	err := &LoadError{Failures: map[Domain]error{
		Waste:   errors.New("missing"),
		Traffic: errors.New("corrupt"),
	}}
	assert.Equal(t, "load models: traffic: corrupt; waste: missing", err.Error())
}

func preprocessIdentity(width int) (*preprocess.StandardScaler, error) {
	return preprocess.NewStandardScaler(make([]float64, width), make([]float64, width))
}
