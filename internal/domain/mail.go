package domain

import "slices"

const (
	// PrivilegeAdmin grants access to the management API.
	PrivilegeAdmin = "admin"

	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// HasPrivilege reports whether privilege is contained in privileges.
func HasPrivilege(privileges []string, privilege string) bool {
	return slices.Contains(privileges, privilege)
}

// MailUser is a mailbox account.
type MailUser struct {
	Email      string     `json:"email"`
	Status     string     `json:"status"`
	Privileges StringList `json:"privileges"`
	Quota      FlexString `json:"quota"`
	Mailbox    string     `json:"mailbox"`
}

// MailUserDomain groups users by domain as returned by the users endpoint.
type MailUserDomain struct {
	Domain string     `json:"domain"`
	Users  []MailUser `json:"users"`
}

// Normalize applies defaults for fields the backend may omit.
func (u MailUser) Normalize() MailUser {
	if u.Status == "" {
		u.Status = UserStatusActive
	}

	if u.Privileges == nil {
		u.Privileges = StringList{}
	}

	if u.Quota == "" {
		u.Quota = "0"
	}

	return u
}

// IsAdmin reports whether the user holds the admin privilege.
func (u MailUser) IsAdmin() bool {
	return HasPrivilege(u.Privileges, PrivilegeAdmin)
}

// IsActive reports whether the mailbox is active.
func (u MailUser) IsActive() bool {
	return u.Status == UserStatusActive
}

// NewMailUser holds the form fields of the add-user operation.
type NewMailUser struct {
	Email    string
	Password string
	Admin    bool
	Quota    string
}

// MailAlias is a forwarding address.
type MailAlias struct {
	Address          string     `json:"address"`
	ForwardsTo       StringList `json:"forwards_to"`
	PermittedSenders StringList `json:"permitted_senders"`
	Auto             bool       `json:"auto"`
}

// MailAliasDomain groups aliases by domain as returned by the aliases endpoint.
type MailAliasDomain struct {
	Domain  string      `json:"domain"`
	Aliases []MailAlias `json:"aliases"`
}

// Normalize applies defaults for fields the backend may omit.
func (a MailAlias) Normalize() MailAlias {
	if a.ForwardsTo == nil {
		a.ForwardsTo = StringList{}
	}

	if a.PermittedSenders == nil {
		a.PermittedSenders = StringList{}
	}

	return a
}

// NewMailAlias holds the form fields of the add-alias operation.
type NewMailAlias struct {
	Address          string
	ForwardsTo       string
	PermittedSenders string
	UpdateIfExists   bool
}

// DashboardStats summarizes the mail setup.
type DashboardStats struct {
	UserCount       int
	ActiveUserCount int
	AliasCount      int
	DomainCount     int
	Domains         []string
}
