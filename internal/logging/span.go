package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Span represents a logical unit of work tied to a trace.
type Span struct {
	name   string
	logger *slog.Logger
	start  time.Time
	err    error
}

// StartSpan derives a child span from the provided context, enriching the logger
// with tracing metadata and any extra attributes. It returns the derived context
// and the span handle.
func StartSpan(ctx context.Context, name string, attrs ...any) (context.Context, *Span) {
	if ctx == nil {
		ctx = context.Background()
	}

	logger := FromContext(ctx)

	traceID := TraceIDFromContext(ctx)
	if traceID == "" {
		traceID = uuid.NewString()
		ctx = WithTraceID(ctx, traceID)
		logger = logger.With(slog.String("trace_id", traceID))
	}

	parentSpanID := SpanIDFromContext(ctx)
	spanID := uuid.NewString()

	logger = logger.With(
		slog.String("span_id", spanID),
		slog.String("span_name", name),
	)
	if parentSpanID != "" {
		logger = logger.With(slog.String("parent_span_id", parentSpanID))
	}
	if len(attrs) > 0 {
		logger = logger.With(attrs...)
	}

	ctx = WithLogger(ctx, logger)
	ctx = WithSpanID(ctx, spanID)

	span := &Span{
		name:   name,
		logger: logger,
		start:  time.Now(),
	}

	return ctx, span
}

// Fail marks the span as failed; End reports the error.
func (s *Span) Fail(err error) {
	if s == nil {
		return
	}
	s.err = err
}

// End finalizes the span and emits a completion log entry.
func (s *Span) End() {
	if s == nil {
		return
	}
	if s.err != nil {
		s.logger.Warn("span failed", slog.Duration("duration", time.Since(s.start)), slog.Any("error", s.err))
		return
	}
	s.logger.Debug("span completed", slog.Duration("duration", time.Since(s.start)))
}
