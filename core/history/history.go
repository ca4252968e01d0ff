// Package history reads the time-ordered water consumption dataset that feeds
// the water model's input window.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// WindowSize is the number of most recent rows the water model consumes.
const WindowSize = 7

// ErrShortHistory is returned when the dataset holds too few rows for a model.
var ErrShortHistory = errors.New("not enough history rows")

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Timestamp accepts the layouts produced by the ingestion scripts.
type Timestamp struct {
	time.Time
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Timestamp) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	for _, layout := range timestampLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			t.Time = v
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

// MarshalText implements encoding.TextMarshaler. Midnight values are written
// as plain dates.
func (t Timestamp) MarshalText() ([]byte, error) {
	if t.Time.Equal(t.Time.Truncate(24 * time.Hour)) {
		return []byte(t.Format("2006-01-02")), nil
	}
	return []byte(t.Format("2006-01-02 15:04:05")), nil
}

// Row is one day of the historical dataset.
type Row struct {
	Timestamp         Timestamp `csv:"timestamp" json:"timestamp"`
	DayOfWeek         float64   `csv:"day_of_week" json:"day_of_week"`
	Month             float64   `csv:"month" json:"month"`
	Temperature       float64   `csv:"temperature" json:"temperature"`
	Precipitation     float64   `csv:"precipitation" json:"precipitation"`
	Population        float64   `csv:"population" json:"population"`
	ConsumptionLiters float64   `csv:"consumption_liters" json:"consumption_liters"`
}

// Features returns the model inputs in training column order.
func (r Row) Features() []float64 {
	return []float64{r.DayOfWeek, r.Month, r.Temperature, r.Precipitation, r.Population}
}

// Source provides up to n of the most recent rows of the dataset, oldest first.
type Source interface {
	Window(ctx context.Context, n int) ([]Row, error)
}
