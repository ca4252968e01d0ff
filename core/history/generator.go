package history

import (
	"encoding/csv"
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/jszwec/csvutil"
)

// Generator produces synthetic daily history: weekend and summer demand
// factors on top of gaussian noise.
type Generator struct {
	rand *rand.Rand
}

// NewGenerator returns a generator seeded with seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{rand: rand.New(rand.NewSource(seed))}
}

// Generate returns one row per day starting at start.
func (g *Generator) Generate(start time.Time, days int) []Row {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	rows := make([]Row, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		// Monday is 0, matching the training data.
		dow := (int(day.Weekday()) + 6) % 7
		weekend := 1.0
		if dow >= 5 {
			weekend = 1.2
		}
		seasonal := 1.0
		switch day.Month() {
		case time.June, time.July, time.August:
			seasonal = 1.3
		}
		consumption := math.Max(0, g.normal(50000, 5000)*weekend*seasonal)
		rows = append(rows, Row{
			Timestamp:         Timestamp{Time: day},
			DayOfWeek:         float64(dow),
			Month:             float64(day.Month()),
			Temperature:       g.normal(25, 5),
			Precipitation:     g.normal(5, 2),
			Population:        g.normal(100000, 5000),
			ConsumptionLiters: math.Round(consumption*100) / 100,
		})
	}
	return rows
}

func (g *Generator) normal(mean, std float64) float64 {
	return g.rand.NormFloat64()*std + mean
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
