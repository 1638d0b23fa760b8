package server

import (
	"go.opentelemetry.io/otel/metric"

	"github.com/zafrem/data-detector/internal/otel"
)

var meter = otel.Meter("github.com/zafrem/data-detector/internal/server")

var (
	scansTotal      metric.Int64Counter
	matchesFound    metric.Int64Counter
	redactionsTotal metric.Int64Counter
	streamSessions  metric.Int64Counter
)

func init() {
	var err error
	scansTotal, err = meter.Int64Counter("scan.requests.total",
		metric.WithDescription("Total scan requests served"))
	if err != nil {
		scansTotal, _ = meter.Int64Counter("scan.requests.total.fallback")
	}

	matchesFound, err = meter.Int64Counter("scan.matches.total",
		metric.WithDescription("Total matches found across scan requests"))
	if err != nil {
		matchesFound, _ = meter.Int64Counter("scan.matches.total.fallback")
	}

	redactionsTotal, err = meter.Int64Counter("redact.requests.total",
		metric.WithDescription("Total redaction requests served"))
	if err != nil {
		redactionsTotal, _ = meter.Int64Counter("redact.requests.total.fallback")
	}

	streamSessions, err = meter.Int64Counter("stream.sessions.total",
		metric.WithDescription("Total websocket stream sessions opened"))
	if err != nil {
		streamSessions, _ = meter.Int64Counter("stream.sessions.total.fallback")
	}
}
