package audit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Event is one audit record: who did what to which calculation partition.
type Event struct {
	Action        string
	Property      string
	ReferenceDate time.Time
	IndexID       int
	ActingUser    string
	Detail        map[string]any
}

// Sink records audit events. Recording is fire-and-forget: a sink failure
// never fails the business operation it describes.
type Sink interface {
	Record(ctx context.Context, ev Event)
}

// ZapSink writes audit events to the structured log under a dedicated
// logger name, which downstream log shipping splits into the audit stream.
type ZapSink struct {
	logger *zap.Logger
}

// NewZapSink creates a log-backed audit sink.
func NewZapSink(logger *zap.Logger) *ZapSink {
	return &ZapSink{logger: logger.Named("audit")}
}

// Record implements Sink.
func (s *ZapSink) Record(_ context.Context, ev Event) {
	fields := []zap.Field{
		zap.String("action", ev.Action),
		zap.String("property", ev.Property),
		zap.String("acting_user", ev.ActingUser),
	}
	if !ev.ReferenceDate.IsZero() {
		fields = append(fields, zap.Time("reference_date", ev.ReferenceDate))
	}
	if ev.IndexID != 0 {
		fields = append(fields, zap.Int("index_id", ev.IndexID))
	}
	if len(ev.Detail) > 0 {
		fields = append(fields, zap.Any("detail", ev.Detail))
	}
	s.logger.Info("audit", fields...)
}

// NopSink discards events; used in tests.
type NopSink struct{}

// Record implements Sink.
func (NopSink) Record(context.Context, Event) {}
