// Package mqtt defines how served predictions are forwarded to a broker.
package mqtt

import (
	"context"
	"errors"

	"github.com/kilianp07/citypredict/core/store"
)

// ErrNotConnected is returned when publishing while the broker link is down
// and every retry failed.
var ErrNotConnected = errors.New("mqtt: not connected")

// RecordPublisher sends a stored prediction to the broker.
type RecordPublisher interface {
	PublishRecord(ctx context.Context, rec store.Record) error
	Close()
}
