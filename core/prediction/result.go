package prediction

import "fmt"

// Status tags a Result as a success or an error.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result is the uniform outcome of a prediction. Only the fields of the
// producing domain are set; Message is set on error.
type Result struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`

	PredictedVehicleCount *int   `json:"predicted_vehicle_count,omitempty"`
	CongestionLevel       string `json:"congestion_level,omitempty"`

	PredictedConsumptionKWh *float64 `json:"predicted_consumption_kwh,omitempty"`

	PredictedConsumptionLiters *float64 `json:"predicted_consumption_liters,omitempty"`

	PredictedFillLevelPercent *float64 `json:"predicted_fill_level_percent,omitempty"`
	CollectionNeeded          string   `json:"collection_needed,omitempty"`

	PredictedQuality string `json:"predicted_quality,omitempty"`
	QualityBinary    *int   `json:"quality_binary,omitempty"`
}

// OK reports whether the prediction succeeded.
func (r Result) OK() bool { return r.Status == StatusSuccess }

// Failure wraps err into an error Result.
func Failure(err error) Result {
	return Result{Status: StatusError, Message: err.Error()}
}

// Summary renders the domain fields as "key: value" pairs for reports.
func (r Result) Summary() string {
	if !r.OK() {
		return "error: " + r.Message
	}
	out := ""
	add := func(k string, v any) {
		if out != "" {
			out += ", "
		}
		out += fmt.Sprintf("%s: %v", k, v)
	}
	if r.PredictedVehicleCount != nil {
		add("predicted_vehicle_count", *r.PredictedVehicleCount)
	}
	if r.CongestionLevel != "" {
		add("congestion_level", r.CongestionLevel)
	}
	if r.PredictedConsumptionKWh != nil {
		add("predicted_consumption_kwh", *r.PredictedConsumptionKWh)
	}
	if r.PredictedConsumptionLiters != nil {
		add("predicted_consumption_liters", *r.PredictedConsumptionLiters)
	}
	if r.PredictedFillLevelPercent != nil {
		add("predicted_fill_level_percent", *r.PredictedFillLevelPercent)
	}
	if r.CollectionNeeded != "" {
		add("collection_needed", r.CollectionNeeded)
	}
	if r.PredictedQuality != "" {
		add("predicted_quality", r.PredictedQuality)
	}
	if r.QualityBinary != nil {
		add("quality_binary", *r.QualityBinary)
	}
	return out
}
