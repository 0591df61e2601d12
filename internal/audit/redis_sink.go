package audit

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/formpulse/formpulse-backend/internal/config"
)

const sinkBufferSize = 1024

// RedisSink enqueues audit events onto a Redis list for the audit worker
// to persist. Emit is non-blocking: events pass through a bounded channel
// and are dropped (with a counter) when the buffer is full, so a slow or
// unreachable Redis can never stall a scoring or logic pass.
type RedisSink struct {
	rdb     *redis.Client
	log     zerolog.Logger
	ch      chan Event
	dropped atomic.Int64
}

// NewRedisSink creates a RedisSink. Call Start to launch the forwarder.
func NewRedisSink(rdb *redis.Client, log zerolog.Logger) *RedisSink {
	return &RedisSink{
		rdb: rdb,
		log: log.With().Str("component", "audit_sink").Logger(),
		ch:  make(chan Event, sinkBufferSize),
	}
}

// Emit queues the event for delivery. Never blocks.
func (s *RedisSink) Emit(event Event) {
	select {
	case s.ch <- event:
	default:
		if n := s.dropped.Add(1); n%100 == 1 {
			s.log.Warn().Int64("dropped_total", n).Msg("audit buffer full, dropping events")
		}
	}
}

// Dropped reports how many events have been discarded due to backpressure.
func (s *RedisSink) Dropped() int64 {
	return s.dropped.Load()
}

// Start runs the forwarder loop until ctx is cancelled, draining buffered
// events before returning. Delivery failures are logged and the event is
// discarded — audit loss is acceptable, blocking submissions is not.
func (s *RedisSink) Start(ctx context.Context) {
	s.log.Info().Msg("audit sink started")
	for {
		select {
		case event := <-s.ch:
			s.forward(ctx, event)
		case <-ctx.Done():
			for {
				select {
				case event := <-s.ch:
					s.forward(context.Background(), event)
				default:
					s.log.Info().Msg("audit sink stopped")
					return
				}
			}
		}
	}
}

func (s *RedisSink) forward(ctx context.Context, event Event) {
	raw, err := json.Marshal(event)
	if err != nil {
		s.log.Error().Err(err).Msg("marshal audit event")
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.AuditEventsQueue, raw).Err(); err != nil {
		s.log.Warn().Err(err).Msg("audit event delivery failed")
	}
}
