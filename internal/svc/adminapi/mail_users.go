package adminapi

import (
	"context"

	"github.com/mkrupp/mailosaurus-admin/internal/domain"
	"github.com/mkrupp/mailosaurus-admin/internal/svc/adminclient"
)

const (
	usersPath             = "/mail/users"
	usersListPath         = usersPath + "?format=json"
	usersAddPath          = usersPath + "/add"
	usersRemovePath       = usersPath + "/remove"
	usersPasswordPath     = usersPath + "/password"
	usersQuotaPath        = usersPath + "/quota"
	usersPrivilegeAddPath = usersPath + "/privileges/add"
	usersPrivilegeDelPath = usersPath + "/privileges/remove"
)

// ListUserDomains returns the mail users grouped by domain.
func (a *API) ListUserDomains(ctx context.Context) domain.Envelope[[]domain.MailUserDomain] {
	return domain.MapEnvelope(
		decodeList[domain.MailUserDomain](a.client.Get(ctx, usersListPath)),
		func(domains []domain.MailUserDomain) ([]domain.MailUserDomain, error) {
			for i := range domains {
				users := make([]domain.MailUser, 0, len(domains[i].Users))
				for _, user := range domains[i].Users {
					users = append(users, user.Normalize())
				}

				domains[i].Users = users
			}

			return domains, nil
		},
	)
}

// ListUsers returns all mail users across domains.
func (a *API) ListUsers(ctx context.Context) domain.Envelope[[]domain.MailUser] {
	return domain.MapEnvelope(a.ListUserDomains(ctx), func(domains []domain.MailUserDomain) ([]domain.MailUser, error) {
		users := []domain.MailUser{}
		for _, d := range domains {
			users = append(users, d.Users...)
		}

		return users, nil
	})
}

// AddUser creates a mailbox. An empty quota means unlimited.
func (a *API) AddUser(ctx context.Context, user domain.NewMailUser) domain.Envelope[string] {
	privileges := ""
	if user.Admin {
		privileges = domain.PrivilegeAdmin
	}

	form := adminclient.NewForm().
		Add("email", user.Email).
		Add("password", user.Password).
		Add("privileges", privileges).
		Add("quota", user.Quota)

	return adminclient.Text(a.client.Post(ctx, usersAddPath, form))
}

// RemoveUser deletes the mailbox of email.
func (a *API) RemoveUser(ctx context.Context, email string) domain.Envelope[string] {
	form := adminclient.NewForm().Add("email", email)

	return adminclient.Text(a.client.Post(ctx, usersRemovePath, form))
}

// SetUserPassword replaces the password of email.
func (a *API) SetUserPassword(ctx context.Context, email, password string) domain.Envelope[string] {
	form := adminclient.NewForm().
		Add("email", email).
		Add("password", password)

	return adminclient.Text(a.client.Post(ctx, usersPasswordPath, form))
}

// SetUserQuota changes the mailbox quota; an empty quota is sent as "0" (unlimited).
func (a *API) SetUserQuota(ctx context.Context, email, quota string) domain.Envelope[string] {
	form := adminclient.NewForm().
		Add("email", email).
		Add("quota", domain.FlexString(quota).Or("0"))

	return adminclient.Text(a.client.Post(ctx, usersQuotaPath, form))
}

// AddUserPrivilege grants privilege to email.
func (a *API) AddUserPrivilege(ctx context.Context, email, privilege string) domain.Envelope[string] {
	form := adminclient.NewForm().
		Add("email", email).
		Add("privilege", privilege)

	return adminclient.Text(a.client.Post(ctx, usersPrivilegeAddPath, form))
}

// RemoveUserPrivilege revokes privilege from email.
func (a *API) RemoveUserPrivilege(ctx context.Context, email, privilege string) domain.Envelope[string] {
	form := adminclient.NewForm().
		Add("email", email).
		Add("privilege", privilege)

	return adminclient.Text(a.client.Post(ctx, usersPrivilegeDelPath, form))
}
