package history

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/samber/lo"
)

var requiredColumns = []string{"timestamp", "day_of_week", "month", "temperature", "precipitation", "population"}

// CSVSource reads the dataset from a CSV file. The file is opened, read and
// closed on every call so concurrent callers never share a cursor.
type CSVSource struct {
	path    string
	timeout time.Duration
}

// NewCSVSource returns a source for path. A non-positive timeout disables the
// per-read deadline.
func NewCSVSource(path string, timeout time.Duration) *CSVSource {
	return &CSVSource{path: path, timeout: timeout}
}

// Path returns the dataset location.
func (s *CSVSource) Path() string { return s.path }

// Window implements Source.
func (s *CSVSource) Window(ctx context.Context, n int) ([]Row, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	type result struct {
		rows []Row
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		rows, err := s.readAll()
		ch <- result{rows: rows, err: err}
	}()
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("read history %s: %w", s.path, ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("read history %s: %w", s.path, r.err)
		}
		return Latest(r.rows, n)
	}
}

func (s *CSVSource) readAll() ([]Row, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

// Decode parses every row of a CSV stream. Only column presence is checked.
func Decode(r io.Reader) ([]Row, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty dataset")
		}
		return nil, err
	}
	if missing, _ := lo.Difference(requiredColumns, dec.Header()); len(missing) > 0 {
		return nil, fmt.Errorf("missing columns %v", missing)
	}
	var rows []Row
	for {
		var row Row
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Latest sorts rows chronologically and returns at most the last n of them.
// Only an empty dataset is an error.
func Latest(rows []Row, n int) ([]Row, error) {
	if n <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", n)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: dataset is empty", ErrShortHistory)
	}
	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp.Time)
	})
	return sorted[max(0, len(sorted)-n):], nil
}
