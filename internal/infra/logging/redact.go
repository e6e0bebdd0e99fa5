package logging

import (
	"log/slog"
	"strings"
	"sync"
)

// RedactedValue replaces the value of secret-bearing attributes.
const RedactedValue = "[redacted]"

//nolint:gochecknoglobals
var (
	defaultRedactedKeys = []string{
		"authorization",
		"password",
		"secret",
		"token",
		"api_key",
		"session_key",
		"target_pass",
	}

	redactedKeys     = makeRedactedKeys(nil)
	redactedKeysLock sync.RWMutex
)

func makeRedactedKeys(extra []string) map[string]struct{} {
	keys := make(map[string]struct{}, len(defaultRedactedKeys)+len(extra))

	for _, key := range append(append([]string{}, defaultRedactedKeys...), extra...) {
		if key = strings.ToLower(strings.TrimSpace(key)); key != "" {
			keys[key] = struct{}{}
		}
	}

	return keys
}

func setRedactedKeys(extra []string) {
	keys := makeRedactedKeys(extra)

	redactedKeysLock.Lock()
	defer redactedKeysLock.Unlock()

	redactedKeys = keys
}

// IsRedactedKey reports whether values logged under key are masked.
func IsRedactedKey(key string) bool {
	redactedKeysLock.RLock()
	defer redactedKeysLock.RUnlock()

	_, ok := redactedKeys[strings.ToLower(key)]

	return ok
}

// RedactAttr masks secret-bearing attributes. It has the signature of
// slog.HandlerOptions.ReplaceAttr so it can be plugged into stock handlers.
func RedactAttr(_ []string, attr slog.Attr) slog.Attr {
	if attr.Value.Kind() == slog.KindGroup {
		return attr
	}

	if IsRedactedKey(attr.Key) && !attr.Value.Equal(slog.StringValue("")) {
		return slog.String(attr.Key, RedactedValue)
	}

	return attr
}
