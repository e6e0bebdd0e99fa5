package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mkrupp/mailosaurus-admin/internal/domain"
)

func (a *app) cmdDashboard(ctx context.Context, args []string) error {
	if err := parse(a.flags("dashboard"), args); err != nil {
		return err
	}

	stats, err := a.api.DashboardStats(ctx).Unwrap()
	if err != nil {
		return err
	}

	return render(a, stats, func(w io.Writer, stats domain.DashboardStats) {
		fmt.Fprintf(w, "users:\t%d (%d active)\n", stats.UserCount, stats.ActiveUserCount)
		fmt.Fprintf(w, "aliases:\t%d\n", stats.AliasCount)
		fmt.Fprintf(w, "domains:\t%d\n", stats.DomainCount)

		for _, name := range stats.Domains {
			fmt.Fprintf(w, "\t%s\n", name)
		}
	})
}

func (a *app) cmdUsers(ctx context.Context, args []string) error {
	return dispatch(ctx, "users", "list", args, subcommands{
		"list":     a.listUsers,
		"add":      a.addUser,
		"remove":   a.removeUser,
		"password": a.setUserPassword,
		"quota":    a.setUserQuota,
		"grant": func(ctx context.Context, args []string) error {
			fs := a.flags("users grant")
			if err := parse(fs, args, "email", "privilege"); err != nil {
				return err
			}

			return a.message(a.api.AddUserPrivilege(ctx, fs.Arg(0), fs.Arg(1)))
		},
		"revoke": func(ctx context.Context, args []string) error {
			fs := a.flags("users revoke")
			if err := parse(fs, args, "email", "privilege"); err != nil {
				return err
			}

			return a.message(a.api.RemoveUserPrivilege(ctx, fs.Arg(0), fs.Arg(1)))
		},
	})
}

func (a *app) listUsers(ctx context.Context, args []string) error {
	fs := a.flags("users list")
	only := fs.String("domain", "", "only list users of this domain")

	if err := parse(fs, args); err != nil {
		return err
	}

	domains, err := a.api.ListUserDomains(ctx).Unwrap()
	if err != nil {
		return err
	}

	if *only != "" {
		filtered := []domain.MailUserDomain{}

		for _, d := range domains {
			if strings.EqualFold(d.Domain, *only) {
				filtered = append(filtered, d)
			}
		}

		domains = filtered
	}

	return render(a, domains, func(w io.Writer, domains []domain.MailUserDomain) {
		fmt.Fprintln(w, "EMAIL\tSTATUS\tPRIVILEGES\tQUOTA")

		for _, d := range domains {
			for _, user := range d.Users {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", user.Email, user.Status, user.Privileges, user.Quota)
			}
		}
	})
}

func (a *app) addUser(ctx context.Context, args []string) error {
	fs := a.flags("users add")
	admin := fs.Bool("admin", false, "grant the admin privilege")
	quota := fs.String("quota", "", "mailbox quota, e.g. 500M or 2G (0 for unlimited)")

	if err := parse(fs, args, "email"); err != nil {
		return err
	}

	password, err := a.promptSecret("New password: ")
	if err != nil {
		return err
	}

	return a.message(a.api.AddUser(ctx, domain.NewMailUser{
		Email:    fs.Arg(0),
		Password: password,
		Admin:    *admin,
		Quota:    *quota,
	}))
}

func (a *app) removeUser(ctx context.Context, args []string) error {
	fs := a.flags("users remove")
	if err := parse(fs, args, "email"); err != nil {
		return err
	}

	return a.message(a.api.RemoveUser(ctx, fs.Arg(0)))
}

func (a *app) setUserPassword(ctx context.Context, args []string) error {
	fs := a.flags("users password")
	if err := parse(fs, args, "email"); err != nil {
		return err
	}

	password, err := a.promptSecret("New password: ")
	if err != nil {
		return err
	}

	return a.message(a.api.SetUserPassword(ctx, fs.Arg(0), password))
}

func (a *app) setUserQuota(ctx context.Context, args []string) error {
	fs := a.flags("users quota")
	if err := parse(fs, args, "email", "quota"); err != nil {
		return err
	}

	return a.message(a.api.SetUserQuota(ctx, fs.Arg(0), fs.Arg(1)))
}

func (a *app) cmdAliases(ctx context.Context, args []string) error {
	return dispatch(ctx, "aliases", "list", args, subcommands{
		"list": func(ctx context.Context, args []string) error {
			if err := parse(a.flags("aliases list"), args); err != nil {
				return err
			}

			domains, err := a.api.ListAliasDomains(ctx).Unwrap()
			if err != nil {
				return err
			}

			return render(a, domains, func(w io.Writer, domains []domain.MailAliasDomain) {
				fmt.Fprintln(w, "ADDRESS\tFORWARDS TO\tPERMITTED SENDERS")

				for _, d := range domains {
					for _, alias := range d.Aliases {
						senders := alias.PermittedSenders.String()
						if senders == "" {
							senders = "-"
						}

						fmt.Fprintf(w, "%s\t%s\t%s\n", alias.Address, alias.ForwardsTo, senders)
					}
				}
			})
		},
		"add": func(ctx context.Context, args []string) error {
			fs := a.flags("aliases add")
			forwardsTo := fs.String("to", "", "comma separated forwarding addresses")
			senders := fs.String("senders", "", "comma separated permitted senders")
			update := fs.Bool("update", false, "update the alias if it already exists")

			if err := parse(fs, args, "address"); err != nil {
				return err
			}

			if *forwardsTo == "" {
				return fmt.Errorf("%w: aliases add requires -to", errUsage)
			}

			return a.message(a.api.AddAlias(ctx, domain.NewMailAlias{
				Address:          fs.Arg(0),
				ForwardsTo:       *forwardsTo,
				PermittedSenders: *senders,
				UpdateIfExists:   *update,
			}))
		},
		"remove": func(ctx context.Context, args []string) error {
			fs := a.flags("aliases remove")
			if err := parse(fs, args, "address"); err != nil {
				return err
			}

			return a.message(a.api.RemoveAlias(ctx, fs.Arg(0)))
		},
	})
}

func (a *app) cmdDomains(ctx context.Context, args []string) error {
	if err := parse(a.flags("domains"), args); err != nil {
		return err
	}

	domains, err := a.api.ListMailDomains(ctx).Unwrap()
	if err != nil {
		return err
	}

	return render(a, domains, func(w io.Writer, domains []string) {
		for _, name := range domains {
			fmt.Fprintln(w, name)
		}
	})
}
