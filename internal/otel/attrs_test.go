package otel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanAttributes(t *testing.T) {
	tests := []struct {
		name       string
		textBytes  int
		matches    int
		namespaces []string
	}{
		{"single namespace", 42, 3, []string{"kr"}},
		{"multiple namespaces", 1024, 0, []string{"us", "comm"}},
		{"zero values", 0, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := ScanAttributes(tt.textBytes, tt.matches, tt.namespaces)
			require.Len(t, attrs, 3)

			assert.Equal(t, "scan.text.bytes", string(attrs[0].Key))
			assert.Equal(t, int64(tt.textBytes), attrs[0].Value.AsInt64())

			assert.Equal(t, "scan.matches.found", string(attrs[1].Key))
			assert.Equal(t, int64(tt.matches), attrs[1].Value.AsInt64())

			assert.Equal(t, "scan.namespaces", string(attrs[2].Key))
			assert.ElementsMatch(t, tt.namespaces, attrs[2].Value.AsStringSlice())
		})
	}
}

func TestRedactAttributes(t *testing.T) {
	attrs := RedactAttributes("mask", 5)
	require.Len(t, attrs, 2)
	assert.Equal(t, "redact.strategy", string(attrs[0].Key))
	assert.Equal(t, "mask", attrs[0].Value.AsString())
	assert.Equal(t, "redact.matches.replaced", string(attrs[1].Key))
	assert.Equal(t, int64(5), attrs[1].Value.AsInt64())
}

func TestStreamAttributes(t *testing.T) {
	attrs := StreamAttributes("session-1")
	require.Len(t, attrs, 1)
	assert.Equal(t, "stream.session.id", string(attrs[0].Key))
	assert.Equal(t, "session-1", attrs[0].Value.AsString())
}

func TestScanAttributeKeys(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		wantName string
	}{
		{"text bytes", string(ScanTextBytes), "scan.text.bytes"},
		{"namespaces", string(ScanNamespaces), "scan.namespaces"},
		{"match count", string(ScanMatchCount), "scan.matches.found"},
		{"redact strategy", string(RedactStrategy), "redact.strategy"},
		{"redact count", string(RedactCount), "redact.matches.replaced"},
		{"stream session id", string(StreamSessionID), "stream.session.id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantName, tt.key)
		})
	}
}
