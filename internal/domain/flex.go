package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexString accepts a JSON string, number, boolean or null.
// The backend is not consistent about quoting numeric fields such as quotas.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return fmt.Errorf("unmarshal string: %w", err)
		}

		*s = FlexString(str)
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		*s = FlexString(data)
	default:
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return fmt.Errorf("unmarshal number: %w", err)
		}

		*s = FlexString(num.String())
	}

	return nil
}

// String returns the plain string value.
func (s FlexString) String() string {
	return string(s)
}

// Or returns fallback when s is empty.
func (s FlexString) Or(fallback string) string {
	if s == "" {
		return fallback
	}

	return string(s)
}

// Int parses the value as an integer, returning fallback when that fails.
func (s FlexString) Int(fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(string(s)))
	if err != nil {
		return fallback
	}

	return n
}

// StringList accepts a JSON array of strings, a single (comma or newline separated) string, or null.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case bytes.Equal(data, []byte("null")):
		*l = StringList{}
	case len(data) > 0 && data[0] == '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("unmarshal list: %w", err)
		}

		*l = StringList(items)
	default:
		var str FlexString
		if err := str.UnmarshalJSON(data); err != nil {
			return err
		}

		*l = SplitList(string(str))
	}

	return nil
}

// String joins the list the way the backend accepts it in forms.
func (l StringList) String() string {
	return strings.Join(l, ", ")
}

// SplitList splits a comma or newline separated list, dropping blank items.
func SplitList(value string) []string {
	items := []string{}

	for _, item := range strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == '\n' }) {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}

// SplitLines splits a newline separated text body, dropping blank lines.
func SplitLines(text string) []string {
	lines := []string{}

	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	return lines
}
