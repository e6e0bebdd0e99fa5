package adminapi

import (
	"context"
	"errors"
	"sync"

	"github.com/mkrupp/mailosaurus-admin/internal/domain"
)

// DashboardStats fetches users, aliases and domains concurrently and counts them.
// A family that fails to load counts as zero, except for authentication
// failures, which fail the whole call.
func (a *API) DashboardStats(ctx context.Context) domain.Envelope[domain.DashboardStats] {
	var (
		wg      sync.WaitGroup
		users   domain.Envelope[[]domain.MailUser]
		aliases domain.Envelope[[]domain.MailAlias]
		domains domain.Envelope[[]string]
	)

	wg.Add(3)

	go func() {
		defer wg.Done()

		users = a.ListUsers(ctx)
	}()

	go func() {
		defer wg.Done()

		aliases = a.ListAliases(ctx)
	}()

	go func() {
		defer wg.Done()

		domains = a.ListMailDomains(ctx)
	}()

	wg.Wait()

	var errs []error

	for _, err := range []error{users.Err, aliases.Err, domains.Err} {
		if err == nil {
			continue
		}

		if domain.IsAuthError(err) {
			return domain.Fail[domain.DashboardStats](err)
		}

		errs = append(errs, err)
	}

	if len(errs) == 3 {
		return domain.Fail[domain.DashboardStats](errors.Join(errs...))
	}

	if len(errs) > 0 {
		a.log.WarnContext(ctx, "dashboard incomplete", "error", errors.Join(errs...))
	}

	stats := domain.DashboardStats{Domains: []string{}}

	if users.Success {
		stats.UserCount = len(users.Data)

		for _, user := range users.Data {
			if user.IsActive() {
				stats.ActiveUserCount++
			}
		}
	}

	if aliases.Success {
		stats.AliasCount = len(aliases.Data)
	}

	if domains.Success {
		stats.Domains = domains.Data
		stats.DomainCount = len(domains.Data)
	}

	return domain.Ok(stats)
}
