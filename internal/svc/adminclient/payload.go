package adminclient

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mkrupp/mailosaurus-admin/internal/domain"
)

// Payload is the body of a successful response.
// JSON is set when the response declared a JSON content type, Text otherwise.
type Payload struct {
	StatusCode  int
	ContentType string
	JSON        json.RawMessage
	Text        string
}

// IsJSON reports whether the body was declared as JSON.
func (p Payload) IsJSON() bool {
	return p.JSON != nil
}

// Decode unmarshals the body into v. A text body is tried as JSON as well,
// since some endpoints do not label their JSON answers.
func (p Payload) Decode(v any) error {
	data := []byte(p.JSON)
	if !p.IsJSON() {
		data = []byte(strings.TrimSpace(p.Text))
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}

	return nil
}

// String returns the text body, or the raw JSON.
func (p Payload) String() string {
	if p.IsJSON() {
		return string(p.JSON)
	}

	return p.Text
}

// Decode converts a payload envelope into a typed one.
func Decode[T any](env domain.Envelope[Payload]) domain.Envelope[T] {
	return domain.MapEnvelope(env, func(p Payload) (T, error) {
		var data T
		err := p.Decode(&data)

		return data, err
	})
}

// Text converts a payload envelope into its body text.
func Text(env domain.Envelope[Payload]) domain.Envelope[string] {
	return domain.MapEnvelope(env, func(p Payload) (string, error) {
		return p.String(), nil
	})
}

// Discard drops the payload of an envelope, keeping its outcome.
func Discard(env domain.Envelope[Payload]) domain.Envelope[struct{}] {
	return domain.MapEnvelope(env, func(Payload) (struct{}, error) {
		return struct{}{}, nil
	})
}
