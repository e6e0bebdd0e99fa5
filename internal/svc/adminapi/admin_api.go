// Package adminapi exposes the endpoint families of the management API as typed operations.
// Optional fields of every answer are filled with defaults before they reach the caller.
package adminapi

import (
	"net/url"
	"strings"

	"github.com/mkrupp/mailosaurus-admin/internal/domain"
	"github.com/mkrupp/mailosaurus-admin/internal/infra/logging"
	"github.com/mkrupp/mailosaurus-admin/internal/svc/adminclient"
)

// API wraps an AdminClient with the typed endpoint families.
type API struct {
	client adminclient.AdminClient
	log    logging.Logger
}

// New creates an API on top of client.
func New(client adminclient.AdminClient) *API {
	return &API{
		client: client,
		log:    logging.GetLogger("svc.adminapi"),
	}
}

// Client returns the underlying request façade.
func (a *API) Client() adminclient.AdminClient {
	return a.client
}

// endpoint joins path segments, escaping each one.
func endpoint(base string, segments ...string) string {
	var b strings.Builder

	b.WriteString(base)

	for _, segment := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(segment))
	}

	return b.String()
}

// decodeList decodes a JSON array, returning an empty slice for null.
func decodeList[T any](env domain.Envelope[adminclient.Payload]) domain.Envelope[[]T] {
	return domain.MapEnvelope(adminclient.Decode[[]T](env), func(items []T) ([]T, error) {
		if items == nil {
			items = []T{}
		}

		return items, nil
	})
}
