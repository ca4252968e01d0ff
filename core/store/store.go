// Package store keeps the predictions served by the HTTP layer. The memory
// store backs the API; the file and SQLite stores are append-only audit logs.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/citypredict/core/prediction"
)

// Record is one served prediction.
type Record struct {
	ID        string            `json:"id"`
	Module    prediction.Domain `json:"module"`
	Timestamp time.Time         `json:"timestamp"`
	Input     map[string]any    `json:"input"`
	Result    prediction.Result `json:"result"`
}

// NewRecord stamps a record with a fresh id and the current time.
func NewRecord(module prediction.Domain, input map[string]any, res prediction.Result) Record {
	if input == nil {
		input = map[string]any{}
	}
	return Record{
		ID:        uuid.NewString(),
		Module:    module,
		Timestamp: time.Now().UTC(),
		Input:     input,
		Result:    res,
	}
}

// Query filters records. Zero values match everything; a non-positive Limit
// returns every match. Results are ordered oldest first and Limit keeps the
// most recent ones.
type Query struct {
	Module prediction.Domain
	Start  time.Time
	End    time.Time
	Limit  int
}

func (q Query) match(r Record) bool {
	if q.Module != "" && r.Module != q.Module {
		return false
	}
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	return true
}

func (q Query) tail(recs []Record) []Record {
	if q.Limit > 0 && len(recs) > q.Limit {
		return recs[len(recs)-q.Limit:]
	}
	return recs
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
