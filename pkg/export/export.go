// Package export writes stored predictions in downloadable formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jszwec/csvutil"

	"github.com/kilianp07/citypredict/core/store"
)

// Format names an export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates s, defaulting to JSON when empty.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType is the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/json"
}

// Write encodes recs to w in format f.
func Write(w io.Writer, f Format, recs []store.Record) error {
	if f == FormatCSV {
		return WriteCSV(w, recs)
	}
	return WriteJSON(w, recs)
}

// WriteJSON writes the records as a JSON array.
func WriteJSON(w io.Writer, recs []store.Record) error {
	if recs == nil {
		recs = []store.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(recs)
}

type csvRow struct {
	ID        string `csv:"id"`
	Module    string `csv:"module"`
	Timestamp string `csv:"timestamp"`
	Status    string `csv:"status"`
	Message   string `csv:"message,omitempty"`
	Summary   string `csv:"summary"`
	Input     string `csv:"input"`
}

// WriteCSV writes one row per record. Input is kept as inline JSON.
func WriteCSV(w io.Writer, recs []store.Record) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	if len(recs) == 0 {
		if err := enc.EncodeHeader(csvRow{}); err != nil {
			return err
		}
	}
	for _, r := range recs {
		input, err := json.Marshal(r.Input)
		if err != nil {
			return fmt.Errorf("encode input of %s: %w", r.ID, err)
		}
		row := csvRow{
			ID:        r.ID,
			Module:    string(r.Module),
			Timestamp: r.Timestamp.Format(time.RFC3339),
			Status:    string(r.Result.Status),
			Message:   r.Result.Message,
			Input:     string(input),
		}
		if r.Result.OK() {
			row.Summary = r.Result.Summary()
		}
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
