// Package stats aggregates stored predictions into dashboard counters.
package stats

import (
	"math"

	"github.com/samber/lo"

	"github.com/kilianp07/citypredict/core/prediction"
	"github.com/kilianp07/citypredict/core/store"
)

// Traffic counts traffic predictions and those banded High.
type Traffic struct {
	Total          int `json:"total"`
	HighCongestion int `json:"high_congestion"`
}

// Consumption is shared by energy and water.
type Consumption struct {
	Total          int     `json:"total"`
	AvgConsumption float64 `json:"avg_consumption"`
}

// Waste counts bins flagged for collection.
type Waste struct {
	Total            int `json:"total"`
	CollectionNeeded int `json:"collection_needed"`
}

// Air counts days classified Unhealthy.
type Air struct {
	Total         int `json:"total"`
	UnhealthyDays int `json:"unhealthy_days"`
}

// Stats holds the per-domain counters. Totals include error results;
// averages only consider successful ones.
type Stats struct {
	Traffic Traffic     `json:"traffic"`
	Energy  Consumption `json:"energy"`
	Water   Consumption `json:"water"`
	Waste   Waste       `json:"waste"`
	Air     Air         `json:"air"`
}

// TotalPredictions sums the totals of every domain.
func (s Stats) TotalPredictions() int {
	return s.Traffic.Total + s.Energy.Total + s.Water.Total + s.Waste.Total + s.Air.Total
}

// Compute aggregates recs.
func Compute(recs []store.Record) Stats {
	by := lo.GroupBy(recs, func(r store.Record) prediction.Domain { return r.Module })

	traffic := by[prediction.Traffic]
	waste := by[prediction.Waste]
	air := by[prediction.Air]
	return Stats{
		Traffic: Traffic{
			Total: len(traffic),
			HighCongestion: lo.CountBy(traffic, func(r store.Record) bool {
				return r.Result.CongestionLevel == "High"
			}),
		},
		Energy: consumption(by[prediction.Energy], func(r prediction.Result) *float64 { return r.PredictedConsumptionKWh }),
		Water:  consumption(by[prediction.Water], func(r prediction.Result) *float64 { return r.PredictedConsumptionLiters }),
		Waste: Waste{
			Total: len(waste),
			CollectionNeeded: lo.CountBy(waste, func(r store.Record) bool {
				return r.Result.CollectionNeeded == "Yes"
			}),
		},
		Air: Air{
			Total: len(air),
			UnhealthyDays: lo.CountBy(air, func(r store.Record) bool {
				return r.Result.QualityBinary != nil && *r.Result.QualityBinary == 0
			}),
		},
	}
}

func consumption(recs []store.Record, field func(prediction.Result) *float64) Consumption {
	values := lo.FilterMap(recs, func(r store.Record, _ int) (float64, bool) {
		v := field(r.Result)
		if !r.Result.OK() || v == nil {
			return 0, false
		}
		return *v, true
	})
	avg := 0.0
	if len(values) > 0 {
		avg = lo.Sum(values) / float64(len(values))
	}
	return Consumption{Total: len(recs), AvgConsumption: math.Round(avg*100) / 100}
}
