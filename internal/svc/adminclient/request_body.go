package adminclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"strings"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeText = "text/plain; charset=utf-8"
)

// Form is a multipart form body. Fields keep their insertion order and
// names may repeat.
type Form struct {
	fields []formField
}

type formField struct {
	name     string
	value    string
	filename string
	data     []byte
}

// NewForm creates an empty multipart form.
func NewForm() *Form {
	return &Form{}
}

// Add appends a text field.
func (f *Form) Add(name, value string) *Form {
	f.fields = append(f.fields, formField{name: name, value: value})

	return f
}

// AddFile appends a file field.
func (f *Form) AddFile(name, filename string, data []byte) *Form {
	f.fields = append(f.fields, formField{name: name, filename: filename, data: data})

	return f
}

// Get returns the first text value of name.
func (f *Form) Get(name string) string {
	for _, field := range f.fields {
		if field.name == name && field.filename == "" {
			return field.value
		}
	}

	return ""
}

func (f *Form) encode() (io.Reader, string, error) {
	buf := new(bytes.Buffer)
	writer := multipart.NewWriter(buf)

	for _, field := range f.fields {
		if field.filename == "" {
			if err := writer.WriteField(field.name, field.value); err != nil {
				return nil, "", fmt.Errorf("write field %q: %w", field.name, err)
			}

			continue
		}

		part, err := writer.CreateFormFile(field.name, field.filename)
		if err != nil {
			return nil, "", fmt.Errorf("create file %q: %w", field.name, err)
		}

		if _, err := part.Write(field.data); err != nil {
			return nil, "", fmt.Errorf("write file %q: %w", field.name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close writer: %w", err)
	}

	return buf, writer.FormDataContentType(), nil
}

// NewRequestBody encodes body and returns it with its content type.
// An empty content type means the header is left unset.
//
//   - nil: no body
//   - *Form: multipart/form-data with the writer's boundary
//   - url.Values: application/x-www-form-urlencoded
//   - string: text/plain
//   - []byte, io.Reader: sent as is
//   - anything else: JSON
func NewRequestBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case *Form:
		if b == nil {
			return nil, "", nil
		}

		return b.encode()
	case url.Values:
		return strings.NewReader(b.Encode()), ContentTypeForm, nil
	case string:
		return strings.NewReader(b), ContentTypeText, nil
	case []byte:
		return bytes.NewReader(b), "", nil
	case io.Reader:
		return b, "", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", fmt.Errorf("marshal json: %w", err)
		}

		return bytes.NewReader(data), ContentTypeJSON, nil
	}
}
