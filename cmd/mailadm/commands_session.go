package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mkrupp/mailosaurus-admin/internal/domain"
)

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "account email (prompted when empty)")
	otp := fs.String("otp", "", "one-time code for accounts with two-factor authentication")

	if err := parse(fs, args); err != nil {
		return err
	}

	var err error

	if *email == "" {
		if *email, err = a.promptLine("Email: "); err != nil {
			return err
		}
	}

	password, err := a.promptSecret("Password: ")
	if err != nil {
		return err
	}

	env := a.client.Login(ctx, *email, password, *otp)
	if errors.Is(env.Err, domain.ErrMissingTOTPToken) && *otp == "" {
		code, err := a.promptLine("One-time code: ")
		if err != nil {
			return err
		}

		env = a.client.Login(ctx, *email, password, code)
	}

	result, err := env.Unwrap()
	if err != nil {
		return err
	}

	return render(a, result, func(w io.Writer, result domain.LoginResult) {
		if result.IsAdmin() {
			fmt.Fprintf(w, "logged in as %s (admin)\n", result.Identity)
		} else {
			fmt.Fprintf(w, "logged in as %s\n", result.Identity)
		}
	})
}

func (a *app) cmdLogout(ctx context.Context, args []string) error {
	if err := parse(a.flags("logout"), args); err != nil {
		return err
	}

	if err := a.client.Logout(ctx); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "logged out")

	return nil
}

type whoami struct {
	Identity   string   `json:"email"`
	Privileges []string `json:"privileges"`
}

func (a *app) cmdWhoami(ctx context.Context, args []string) error {
	if err := parse(a.flags("whoami"), args); err != nil {
		return err
	}

	cred, ok := a.session.Current()
	if !ok {
		return domain.ErrNoCredential
	}

	me := whoami{Identity: cred.Identity, Privileges: a.privileges.Load(ctx)}
	if me.Privileges == nil {
		me.Privileges = []string{}
	}

	return render(a, me, func(w io.Writer, me whoami) {
		fmt.Fprintf(w, "email:\t%s\n", me.Identity)
		fmt.Fprintf(w, "privileges:\t%s\n", strings.Join(me.Privileges, ", "))
	})
}

func (a *app) cmdTheme(ctx context.Context, args []string) error {
	show := func(prefs domain.Preferences) error {
		return render(a, prefs, func(w io.Writer, prefs domain.Preferences) {
			fmt.Fprintf(w, "mode:\t%s\n", prefs.Mode)
			fmt.Fprintf(w, "color:\t%s\n", prefs.Color)
		})
	}

	return dispatch(ctx, "theme", "show", args, subcommands{
		"show": func(ctx context.Context, args []string) error {
			if err := parse(a.flags("theme show"), args); err != nil {
				return err
			}

			return show(a.prefs.Load(ctx))
		},
		"toggle": func(ctx context.Context, args []string) error {
			if err := parse(a.flags("theme toggle"), args); err != nil {
				return err
			}

			prefs, err := a.prefs.ToggleMode(ctx)
			if err != nil {
				return err
			}

			return show(prefs)
		},
		"color": func(ctx context.Context, args []string) error {
			fs := a.flags("theme color")
			if err := parse(fs, args, "name"); err != nil {
				return err
			}

			prefs, err := a.prefs.SetColor(ctx, domain.ThemeColor(strings.ToLower(fs.Arg(0))))
			if err != nil {
				return err
			}

			return show(prefs)
		},
	})
}
