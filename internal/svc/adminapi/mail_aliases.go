package adminapi

import (
	"context"

	"github.com/mkrupp/mailosaurus-admin/internal/domain"
	"github.com/mkrupp/mailosaurus-admin/internal/svc/adminclient"
)

const (
	aliasesPath       = "/mail/aliases"
	aliasesListPath   = aliasesPath + "?format=json"
	aliasesAddPath    = aliasesPath + "/add"
	aliasesRemovePath = aliasesPath + "/remove"
	domainsPath       = "/mail/domains"
)

// ListAliasDomains returns the aliases grouped by domain.
func (a *API) ListAliasDomains(ctx context.Context) domain.Envelope[[]domain.MailAliasDomain] {
	return domain.MapEnvelope(
		decodeList[domain.MailAliasDomain](a.client.Get(ctx, aliasesListPath)),
		func(domains []domain.MailAliasDomain) ([]domain.MailAliasDomain, error) {
			for i := range domains {
				aliases := make([]domain.MailAlias, 0, len(domains[i].Aliases))
				for _, alias := range domains[i].Aliases {
					aliases = append(aliases, alias.Normalize())
				}

				domains[i].Aliases = aliases
			}

			return domains, nil
		},
	)
}

// ListAliases returns all aliases across domains.
func (a *API) ListAliases(ctx context.Context) domain.Envelope[[]domain.MailAlias] {
	return domain.MapEnvelope(a.ListAliasDomains(ctx), func(domains []domain.MailAliasDomain) ([]domain.MailAlias, error) {
		aliases := []domain.MailAlias{}
		for _, d := range domains {
			aliases = append(aliases, d.Aliases...)
		}

		return aliases, nil
	})
}

// AddAlias creates an alias, or updates it when UpdateIfExists is set.
func (a *API) AddAlias(ctx context.Context, alias domain.NewMailAlias) domain.Envelope[string] {
	updateIfExists := "0"
	if alias.UpdateIfExists {
		updateIfExists = "1"
	}

	form := adminclient.NewForm().
		Add("address", alias.Address).
		Add("forwards_to", alias.ForwardsTo).
		Add("permitted_senders", alias.PermittedSenders).
		Add("update_if_exists", updateIfExists)

	return adminclient.Text(a.client.Post(ctx, aliasesAddPath, form))
}

// RemoveAlias deletes the alias with the given address.
func (a *API) RemoveAlias(ctx context.Context, address string) domain.Envelope[string] {
	form := adminclient.NewForm().Add("address", address)

	return adminclient.Text(a.client.Post(ctx, aliasesRemovePath, form))
}

// ListMailDomains returns the domains the server handles mail for.
// The endpoint answers with one domain per line.
func (a *API) ListMailDomains(ctx context.Context) domain.Envelope[[]string] {
	return domain.MapEnvelope(adminclient.Text(a.client.Get(ctx, domainsPath)), func(text string) ([]string, error) {
		return domain.SplitLines(text), nil
	})
}
