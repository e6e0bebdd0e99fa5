package context

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

const (
	contextKeyTraceID = contextKey("traceID")

	crockfordBase32Alphabet = "0123456789abcdefghjkmnpqrstvwxyz"
)

// TraceIDFromContext extracts the trace ID from the context.
// Returns the trace ID and true if present, or empty string and false if not present.
func TraceIDFromContext(ctx context.Context) (string, bool) {
	traceID, ok := ctx.Value(contextKeyTraceID).(string)

	return traceID, ok && traceID != ""
}

// WithTraceID creates a new context with the given trace ID value.
// This context can be used to track a request through different systems.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, contextKeyTraceID, traceID)
}

// NewTraceID generates a time ordered trace ID (UUIDv7, Crockford base32, lower case).
// Returns an empty string if no random source is available.
func NewTraceID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return ""
	}

	return encodeCrockfordB32LC(id[:])
}

// EnsureTraceID returns ctx unchanged if it already carries a trace ID,
// otherwise a child context with a fresh one.
func EnsureTraceID(ctx context.Context) (context.Context, string) {
	if traceID, ok := TraceIDFromContext(ctx); ok {
		return ctx, traceID
	}

	traceID := NewTraceID()

	return WithTraceID(ctx, traceID), traceID
}

// encodeCrockfordB32LC encodes input with Crockford's base32 alphabet in lower case, without padding.
//
//nolint:gosec
func encodeCrockfordB32LC(input []byte) string {
	var (
		result strings.Builder
		bits   = 0
		accum  = 0
	)

	for _, b := range input {
		accum = accum<<8 | int(b)
		bits += 8

		for bits >= 5 {
			bits -= 5
			result.WriteByte(crockfordBase32Alphabet[(accum>>bits)&0x1F])
		}
	}

	if bits > 0 {
		result.WriteByte(crockfordBase32Alphabet[(accum<<uint(5-bits))&0x1F])
	}

	return result.String()
}
