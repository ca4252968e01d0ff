package prediction

import "math"

const (
	congestionHigh   = 700
	congestionMedium = 400
	collectionAbove  = 80
)

// CongestionLevel bands a vehicle count. Boundary values fall in the lower band.
func CongestionLevel(count float64) string {
	switch {
	case count > congestionHigh:
		return "High"
	case count > congestionMedium:
		return "Medium"
	default:
		return "Low"
	}
}

// ClampPercent bounds v to [0, 100].
func ClampPercent(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// CollectionNeeded reports "Yes" when the fill level is strictly above 80%.
func CollectionNeeded(fill float64) string {
	if fill > collectionAbove {
		return "Yes"
	}
	return "No"
}

// QualityLabel names an air quality class.
func QualityLabel(class int) string {
	if class == 1 {
		return "Good/Moderate"
	}
	return "Unhealthy"
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func ptr[T any](v T) *T { return &v }
