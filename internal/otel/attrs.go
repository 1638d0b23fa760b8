package otel

import (
	"go.opentelemetry.io/otel/attribute"
)

// Semantic attributes for scan observability. Handlers attach these to the
// request span so traces can be sliced by namespace, strategy, and volume.

const (
	// Find attributes
	ScanTextBytes  = attribute.Key("scan.text.bytes")
	ScanNamespaces = attribute.Key("scan.namespaces")
	ScanMatchCount = attribute.Key("scan.matches.found")

	// Redact attributes
	RedactStrategy = attribute.Key("redact.strategy")
	RedactCount    = attribute.Key("redact.matches.replaced")

	// Stream attributes
	StreamSessionID = attribute.Key("stream.session.id")
)

// ScanAttributes creates standard attributes for a find call.
func ScanAttributes(textBytes, matches int, namespaces []string) []attribute.KeyValue {
	return []attribute.KeyValue{
		ScanTextBytes.Int(textBytes),
		ScanMatchCount.Int(matches),
		ScanNamespaces.StringSlice(namespaces),
	}
}

// RedactAttributes creates attributes for a redact call.
func RedactAttributes(strategy string, replaced int) []attribute.KeyValue {
	return []attribute.KeyValue{
		RedactStrategy.String(strategy),
		RedactCount.Int(replaced),
	}
}

// StreamAttributes creates attributes for one websocket scan session.
func StreamAttributes(sessionID string) []attribute.KeyValue {
	return []attribute.KeyValue{
		StreamSessionID.String(sessionID),
	}
}
