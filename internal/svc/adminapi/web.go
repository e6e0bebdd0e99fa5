package adminapi

import (
	"context"

	"github.com/mkrupp/mailosaurus-admin/internal/domain"
	"github.com/mkrupp/mailosaurus-admin/internal/svc/adminclient"
)

const (
	webDomainsPath = "/web/domains"
	webUpdatePath  = "/web/update"
)

// WebDomains lists the domains served by the web server.
func (a *API) WebDomains(ctx context.Context) domain.Envelope[[]domain.WebDomain] {
	return decodeList[domain.WebDomain](a.client.Get(ctx, webDomainsPath))
}

// UpdateWeb rewrites the web server configuration.
func (a *API) UpdateWeb(ctx context.Context) domain.Envelope[string] {
	return adminclient.Text(a.client.Post(ctx, webUpdatePath, nil))
}
