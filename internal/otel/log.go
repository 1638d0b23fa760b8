package otel

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// TraceContextFrom extracts trace and span ids from ctx for manual log
// correlation. Both are empty when ctx carries no valid span.
func TraceContextFrom(ctx context.Context) (traceID, spanID string) {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return "", ""
	}
	return sc.TraceID().String(), sc.SpanID().String()
}

// LogTraceFields returns a zerolog hook that stamps trace_id and span_id on
// the event. Events logged outside a trace pass through untouched, so the
// fields never show up empty when telemetry is off.
//
//	log.Error().Err(err).Func(otel.LogTraceFields(ctx)).Msg("find_error")
func LogTraceFields(ctx context.Context) func(*zerolog.Event) {
	sc := trace.SpanContextFromContext(ctx)
	return func(e *zerolog.Event) {
		if !sc.IsValid() {
			return
		}
		e.Str("trace_id", sc.TraceID().String()).Str("span_id", sc.SpanID().String())
	}
}
