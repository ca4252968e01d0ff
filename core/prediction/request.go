package prediction

// TrafficRequest holds the traffic model inputs.
type TrafficRequest struct {
	Hour        float64 `json:"hour"`
	DayOfWeek   float64 `json:"day_of_week"`
	Month       float64 `json:"month"`
	Temperature float64 `json:"temperature"`
	Weather     string  `json:"weather"`
}

// EnergyRequest holds the energy model inputs.
type EnergyRequest struct {
	Hour              float64 `json:"hour"`
	Month             float64 `json:"month"`
	Temperature       float64 `json:"temperature"`
	PopulationDensity float64 `json:"population_density"`
}

// WasteRequest holds the waste model inputs.
type WasteRequest struct {
	DayOfWeek float64 `json:"day_of_week"`
	Location  string  `json:"location"`
	WasteType string  `json:"waste_type"`
}

// AirRequest holds the air quality model inputs.
type AirRequest struct {
	Month       float64 `json:"month"`
	DayOfWeek   float64 `json:"day_of_week"`
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"wind_speed"`
	PM25        float64 `json:"pm25"`
	PM10        float64 `json:"pm10"`
	NO2         float64 `json:"no2"`
	CO          float64 `json:"co"`
}

func (r AirRequest) features() []float64 {
	return []float64{r.Month, r.DayOfWeek, r.Temperature, r.WindSpeed, r.PM25, r.PM10, r.NO2, r.CO}
}
