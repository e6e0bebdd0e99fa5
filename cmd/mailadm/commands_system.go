package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mkrupp/mailosaurus-admin/internal/domain"
	"github.com/mkrupp/mailosaurus-admin/internal/util/termimage"
)

var errNoProvisioning = errors.New("no two-factor setup offered")

func (a *app) cmdDNS(ctx context.Context, args []string) error {
	return dispatch(ctx, "dns", "list", args, subcommands{
		"list": func(ctx context.Context, args []string) error {
			if err := parse(a.flags("dns list"), args); err != nil {
				return err
			}

			records, err := a.api.ListCustomRecords(ctx).Unwrap()
			if err != nil {
				return err
			}

			return render(a, records, func(w io.Writer, records []domain.DNSRecord) {
				fmt.Fprintln(w, "QNAME\tTYPE\tVALUE")

				for _, r := range records {
					fmt.Fprintf(w, "%s\t%s\t%s\n", r.QName, r.RType, r.Value)
				}
			})
		},
		"zones": func(ctx context.Context, args []string) error {
			if err := parse(a.flags("dns zones"), args); err != nil {
				return err
			}

			zones, err := a.api.ListZones(ctx).Unwrap()
			if err != nil {
				return err
			}

			return render(a, zones, func(w io.Writer, zones []string) {
				for _, zone := range zones {
					fmt.Fprintln(w, zone)
				}
			})
		},
		"add": func(ctx context.Context, args []string) error {
			fs := a.flags("dns add")
			if err := parse(fs, args, "qname", "rtype", "value"); err != nil {
				return err
			}

			return a.message(a.api.AddCustomRecord(ctx, fs.Arg(0), fs.Arg(1), fs.Arg(2)))
		},
		"remove": func(ctx context.Context, args []string) error {
			fs := a.flags("dns remove")
			if err := parse(fs, args, "qname", "rtype", "value"); err != nil {
				return err
			}

			return a.message(a.api.RemoveCustomRecord(ctx, fs.Arg(0), fs.Arg(1), fs.Arg(2)))
		},
		"update": func(ctx context.Context, args []string) error {
			fs := a.flags("dns update")
			force := fs.Bool("force", false, "rewrite zones even when nothing changed")

			if err := parse(fs, args); err != nil {
				return err
			}

			return a.message(a.api.UpdateDNS(ctx, *force))
		},
		"secondary": a.secondaryNameservers,
		"dump": func(ctx context.Context, args []string) error {
			if err := parse(a.flags("dns dump"), args); err != nil {
				return err
			}

			recs, err := a.api.DumpDNS(ctx).Unwrap()
			if err != nil {
				return err
			}

			return render(a, recs, func(w io.Writer, recs domain.DNSRecommendations) {
				fmt.Fprintln(w, "DOMAIN\tTYPE\tVALUE")

				for _, name := range sortedKeys(recs) {
					for _, rtype := range sortedKeys(recs[name]) {
						for _, value := range recs[name][rtype] {
							fmt.Fprintf(w, "%s\t%s\t%s\n", name, rtype, value)
						}
					}
				}
			})
		},
		"zonefile": func(ctx context.Context, args []string) error {
			fs := a.flags("dns zonefile")
			if err := parse(fs, args, "zone"); err != nil {
				return err
			}

			text, err := a.api.ZoneFile(ctx, fs.Arg(0)).Unwrap()
			if err != nil {
				return err
			}

			fmt.Fprint(a.out, text)

			return nil
		},
	})
}

// secondaryNameservers shows the list, or replaces it when -set or -clear is given.
func (a *app) secondaryNameservers(ctx context.Context, args []string) error {
	fs := a.flags("dns secondary")
	set := fs.String("set", "", "comma separated hostnames to allow")
	reset := fs.Bool("clear", false, "remove all secondary nameservers")

	if err := parse(fs, args); err != nil {
		return err
	}

	switch {
	case *set != "" && *reset:
		return fmt.Errorf("%w: -set and -clear are exclusive", errUsage)
	case *set != "":
		return a.message(a.api.SetSecondaryNameservers(ctx, domain.SplitList(*set)))
	case *reset:
		return a.message(a.api.SetSecondaryNameservers(ctx, nil))
	}

	ns, err := a.api.SecondaryNameservers(ctx).Unwrap()
	if err != nil {
		return err
	}

	return render(a, ns, func(w io.Writer, ns domain.SecondaryNameservers) {
		for _, host := range ns.Hostnames {
			fmt.Fprintln(w, host)
		}
	})
}

func (a *app) cmdSSL(ctx context.Context, args []string) error {
	return dispatch(ctx, "ssl", "status", args, subcommands{
		"status": func(ctx context.Context, args []string) error {
			if err := parse(a.flags("ssl status"), args); err != nil {
				return err
			}

			status, err := a.api.SSLStatus(ctx).Unwrap()
			if err != nil {
				return err
			}

			return render(a, status, func(w io.Writer, status domain.SSLStatus) {
				fmt.Fprintln(w, "DOMAIN\tSTATUS\tDETAILS")

				for _, d := range status.Status {
					fmt.Fprintf(w, "%s\t%s\t%s\n", d.Domain, d.Status, d.Text)
				}

				if len(status.CanProvision) > 0 {
					fmt.Fprintf(w, "\ncan provision:\t%s\n", status.CanProvision)
				}
			})
		},
		"provision": func(ctx context.Context, args []string) error {
			if err := parse(a.flags("ssl provision"), args); err != nil {
				return err
			}

			return a.message(a.api.ProvisionSSL(ctx))
		},
		"install": func(ctx context.Context, args []string) error {
			fs := a.flags("ssl install")
			certFile := fs.String("cert", "", "PEM certificate file")
			chainFile := fs.String("chain", "", "PEM intermediate chain file")

			if err := parse(fs, args, "domain"); err != nil {
				return err
			}

			if *certFile == "" {
				return fmt.Errorf("%w: ssl install requires -cert", errUsage)
			}

			cert, err := os.ReadFile(*certFile)
			if err != nil {
				return fmt.Errorf("read certificate: %w", err)
			}

			var chain []byte
			if *chainFile != "" {
				if chain, err = os.ReadFile(*chainFile); err != nil {
					return fmt.Errorf("read chain: %w", err)
				}
			}

			return a.message(a.api.InstallCertificate(ctx, domain.CertificateInstall{
				Domain: fs.Arg(0),
				Cert:   string(cert),
				Chain:  string(chain),
			}))
		},
		"csr": func(ctx context.Context, args []string) error {
			fs := a.flags("ssl csr")
			country := fs.String("country", "", "two letter country code")

			if err := parse(fs, args, "domain"); err != nil {
				return err
			}

			text, err := a.api.GenerateCSR(ctx, fs.Arg(0), strings.ToUpper(*country)).Unwrap()
			if err != nil {
				return err
			}

			fmt.Fprint(a.out, text)

			return nil
		},
	})
}

func (a *app) cmdStatus(ctx context.Context, args []string) error {
	if err := parse(a.flags("status"), args); err != nil {
		return err
	}

	items, err := a.api.SystemStatus(ctx).Unwrap()
	if err != nil {
		return err
	}

	return render(a, items, func(w io.Writer, items []domain.StatusItem) {
		for _, item := range items {
			switch item.Type {
			case "heading":
				fmt.Fprintf(w, "\n%s\n", item.Text)
			case "ok":
				fmt.Fprintf(w, "  ok\t%s\n", item.Text)
			case "error":
				fmt.Fprintf(w, "  ERROR\t%s\n", item.Text)
			default:
				fmt.Fprintf(w, "  %s\t%s\n", item.Type, item.Text)
			}

			for _, extra := range item.Extra {
				fmt.Fprintf(w, "\t  %s\n", extra.Text)
			}
		}
	})
}

func (a *app) cmdBackup(ctx context.Context, args []string) error {
	return dispatch(ctx, "backup", "status", args, subcommands{
		"status": func(ctx context.Context, args []string) error {
			if err := parse(a.flags("backup status"), args); err != nil {
				return err
			}

			status, err := a.api.BackupStatus(ctx).Unwrap()
			if err != nil {
				return err
			}

			return render(a, status, func(w io.Writer, status domain.BackupStatus) {
				if status.Error != "" {
					fmt.Fprintf(w, "error:\t%s\n", status.Error)
				}

				if status.NextBackup != "" {
					fmt.Fprintf(w, "next backup:\t%s\n", status.NextBackup)
				}

				fmt.Fprintln(w, "DATE\tTYPE\tSIZE")

				for _, b := range status.Backups {
					fmt.Fprintf(w, "%s\t%s\t%s\n", b.Date, b.Type, b.Size)
				}
			})
		},
		"config": func(ctx context.Context, args []string) error {
			if err := parse(a.flags("backup config"), args); err != nil {
				return err
			}

			cfg, err := a.api.BackupConfig(ctx).Unwrap()
			if err != nil {
				return err
			}

			cfg.TargetPass = ""

			return render(a, cfg, func(w io.Writer, cfg domain.BackupConfig) {
				fmt.Fprintf(w, "target:\t%s\n", cfg.Target)
				fmt.Fprintf(w, "target user:\t%s\n", cfg.TargetUser)
				fmt.Fprintf(w, "min age (days):\t%s\n", cfg.MinAge)
			})
		},
		"set": func(ctx context.Context, args []string) error {
			fs := a.flags("backup set")
			target := fs.String("target", "", "backup target, e.g. local, s3://... or rsync://...")
			user := fs.String("user", "", "target user; the password is prompted")
			minAge := fs.String("min-age", domain.DefaultBackupMinAge, "days to keep backups")

			if err := parse(fs, args); err != nil {
				return err
			}

			if *target == "" {
				return fmt.Errorf("%w: backup set requires -target", errUsage)
			}

			cfg := domain.BackupConfig{Target: *target, TargetUser: *user, MinAge: domain.FlexString(*minAge)}

			if *user != "" {
				pass, err := a.promptSecret("Target password: ")
				if err != nil {
					return err
				}

				cfg.TargetPass = pass
			}

			return a.message(a.api.SetBackupConfig(ctx, cfg))
		},
	})
}

func (a *app) cmdMFA(ctx context.Context, args []string) error {
	return dispatch(ctx, "mfa", "status", args, subcommands{
		"status": func(ctx context.Context, args []string) error {
			if err := parse(a.flags("mfa status"), args); err != nil {
				return err
			}

			status, err := a.api.MFAStatus(ctx).Unwrap()
			if err != nil {
				return err
			}

			return render(a, status, func(w io.Writer, status domain.MFAStatus) {
				if len(status.EnabledMFA) == 0 {
					fmt.Fprintln(w, "two-factor authentication is disabled")
				}

				for _, dev := range status.EnabledMFA {
					fmt.Fprintf(w, "%s\t%s\t%s\n", dev.ID, dev.Type, dev.Label)
				}

				if totp, ok := status.Provisioning(); ok {
					fmt.Fprintf(w, "setup secret:\t%s\n", totp.Secret)
				}
			})
		},
		"qr": func(ctx context.Context, args []string) error {
			fs := a.flags("mfa qr")
			width := fs.Int("width", 0, "output width in columns (image width when 0)")
			invert := fs.Bool("invert", false, "swap dark and light for light-on-dark terminals")

			if err := parse(fs, args); err != nil {
				return err
			}

			totp, err := a.provisioning(ctx)
			if err != nil {
				return err
			}

			img, err := termimage.DecodeBase64(totp.QRCodeBase64)
			if err != nil {
				return fmt.Errorf("qr code: %w", err)
			}

			if *width == 0 {
				*width = img.Bounds().Dx()
			}

			if err := termimage.Render(a.out, img, *width, *invert); err != nil {
				return fmt.Errorf("qr code: %w", err)
			}

			fmt.Fprintf(a.out, "secret: %s\n", totp.Secret)

			return nil
		},
		"enable": func(ctx context.Context, args []string) error {
			fs := a.flags("mfa enable")
			label := fs.String("label", "", "device label")

			if err := parse(fs, args, "code"); err != nil {
				return err
			}

			totp, err := a.provisioning(ctx)
			if err != nil {
				return err
			}

			return a.message(a.api.EnableTOTP(ctx, totp.Secret, fs.Arg(0), *label))
		},
		"disable": func(ctx context.Context, args []string) error {
			fs := a.flags("mfa disable")
			if err := parse(fs, args, "id"); err != nil {
				return err
			}

			return a.message(a.api.DisableMFA(ctx, fs.Arg(0)))
		},
	})
}

func (a *app) provisioning(ctx context.Context) (domain.TOTPProvisioning, error) {
	status, err := a.api.MFAStatus(ctx).Unwrap()
	if err != nil {
		return domain.TOTPProvisioning{}, err
	}

	totp, ok := status.Provisioning()
	if !ok {
		return domain.TOTPProvisioning{}, errNoProvisioning
	}

	return totp, nil
}

func (a *app) cmdWeb(ctx context.Context, args []string) error {
	return dispatch(ctx, "web", "list", args, subcommands{
		"list": func(ctx context.Context, args []string) error {
			if err := parse(a.flags("web list"), args); err != nil {
				return err
			}

			domains, err := a.api.WebDomains(ctx).Unwrap()
			if err != nil {
				return err
			}

			return render(a, domains, func(w io.Writer, domains []domain.WebDomain) {
				fmt.Fprintln(w, "DOMAIN\tROOT\tCERTIFICATE")

				for _, d := range domains {
					fmt.Fprintf(w, "%s\t%s\t%s\n", d.Domain, d.Root, d.SSLCertificate)
				}
			})
		},
		"update": func(ctx context.Context, args []string) error {
			if err := parse(a.flags("web update"), args); err != nil {
				return err
			}

			return a.message(a.api.UpdateWeb(ctx))
		},
	})
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
