package events

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Indexer stores rejection events for later moderation review.
type Indexer interface {
	IndexRejection(ctx context.Context, event RejectionEvent) error
}

// IndexEmitter writes events to an Indexer in the background
type IndexEmitter struct {
	indexer Indexer
	timeout time.Duration
}

func NewIndexEmitter(indexer Indexer, timeout time.Duration) *IndexEmitter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &IndexEmitter{indexer: indexer, timeout: timeout}
}

func (e *IndexEmitter) Emit(event RejectionEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
		defer cancel()
		if err := e.indexer.IndexRejection(ctx, event); err != nil {
			log.Warn().Err(err).Str("request_id", event.RequestID).Msg("moderation index write failed")
		}
	}()
}
