package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/mkrupp/mailosaurus-admin/internal/domain"
	"github.com/mkrupp/mailosaurus-admin/internal/repo/kv"
	"github.com/mkrupp/mailosaurus-admin/internal/svc/adminapi"
	"github.com/mkrupp/mailosaurus-admin/internal/svc/adminclient"
	"github.com/mkrupp/mailosaurus-admin/internal/svc/sessionsvc"
)

var (
	errUsage          = errors.New("invalid usage")
	errUnknownCommand = errors.New("unknown command")
)

type globalOptions struct {
	baseURL string
	verbose bool
	json    bool
}

func parseGlobalFlags(args []string) (globalOptions, []string, error) {
	var opts globalOptions

	fs := flag.NewFlagSet(svcName, flag.ContinueOnError)
	fs.StringVar(&opts.baseURL, "url", "", "management API base URL (overrides MAILOSAURUS_MAILADM_API_BASE_URL)")
	fs.BoolVar(&opts.verbose, "v", false, "log requests to stderr")
	fs.BoolVar(&opts.json, "json", false, "print results as JSON")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: %s [flags] <command> [subcommand] [flags] [args]\n\nflags:\n", svcName)
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output())
		printCommands(fs.Output())
	}

	if err := fs.Parse(args); err != nil {
		return opts, nil, fmt.Errorf("parse flags: %w", err)
	}

	return opts, fs.Args(), nil
}

// app binds the command line to the session, the client and the typed API.
type app struct {
	client     *adminclient.HTTPClient
	api        *adminapi.API
	session    *sessionsvc.SessionStore
	privileges *sessionsvc.PrivilegeCache
	prefs      *sessionsvc.PreferenceStore

	in     *bufio.Reader
	inFd   int
	out    io.Writer
	errOut io.Writer
	json   bool
}

func newApp(repo kv.Repository, cfg adminclient.HTTPClientConfig, httpClient *http.Client, opts globalOptions) *app {
	session := sessionsvc.NewSessionStore(repo)
	privileges := sessionsvc.NewPrivilegeCache(repo)
	client := adminclient.NewHTTPClient(cfg, httpClient, session, privileges)

	return &app{
		client:     client,
		api:        adminapi.New(client),
		session:    session,
		privileges: privileges,
		prefs:      sessionsvc.NewPreferenceStore(repo),
		in:         bufio.NewReader(os.Stdin),
		inFd:       int(os.Stdin.Fd()),
		out:        os.Stdout,
		errOut:     os.Stderr,
		json:       opts.json,
	}
}

func (a *app) load(ctx context.Context) {
	a.session.Load(ctx)
}

type command struct {
	usage string
	auth  bool
	run   func(ctx context.Context, args []string) error
}

//nolint:gochecknoglobals
var commandOrder = []string{
	"login", "logout", "whoami", "theme",
	"dashboard", "users", "aliases", "domains",
	"dns", "ssl", "status", "backup", "mfa", "web",
}

func (a *app) commands() map[string]command {
	return map[string]command{
		"login":     {usage: "login [-email E] [-otp CODE]", run: a.cmdLogin},
		"logout":    {usage: "logout", run: a.cmdLogout},
		"whoami":    {usage: "whoami", run: a.cmdWhoami},
		"theme":     {usage: "theme [show|toggle|color NAME]", run: a.cmdTheme},
		"dashboard": {usage: "dashboard", auth: true, run: a.cmdDashboard},
		"users":     {usage: "users [list|add|remove|password|quota|grant|revoke]", auth: true, run: a.cmdUsers},
		"aliases":   {usage: "aliases [list|add|remove]", auth: true, run: a.cmdAliases},
		"domains":   {usage: "domains", auth: true, run: a.cmdDomains},
		"dns":       {usage: "dns [list|zones|add|remove|update|secondary|dump|zonefile]", auth: true, run: a.cmdDNS},
		"ssl":       {usage: "ssl [status|provision|install|csr]", auth: true, run: a.cmdSSL},
		"status":    {usage: "status", auth: true, run: a.cmdStatus},
		"backup":    {usage: "backup [status|config|set]", auth: true, run: a.cmdBackup},
		"mfa":       {usage: "mfa [status|qr|enable|disable]", auth: true, run: a.cmdMFA},
		"web":       {usage: "web [list|update]", auth: true, run: a.cmdWeb},
	}
}

func printCommands(w io.Writer) {
	commands := (&app{}).commands()

	fmt.Fprintln(w, "commands:")

	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "help" {
		printCommands(a.out)

		return nil
	}

	cmd, ok := a.commands()[args[0]]
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownCommand, args[0])
	}

	if cmd.auth && !a.client.IsAuthenticated() {
		return domain.ErrNoCredential
	}

	return cmd.run(ctx, args[1:])
}

type subcommands map[string]func(ctx context.Context, args []string) error

// dispatch runs the subcommand named by args[0], or fallback when args is empty.
func dispatch(ctx context.Context, group, fallback string, args []string, subs subcommands) error {
	name := fallback
	if len(args) > 0 {
		name, args = args[0], args[1:]
	}

	run, ok := subs[name]
	if !ok {
		names := make([]string, 0, len(subs))
		for sub := range subs {
			names = append(names, sub)
		}

		sort.Strings(names)

		return fmt.Errorf("%w: %s %s (want one of %s)", errUnknownCommand, group, name, strings.Join(names, ", "))
	}

	return run(ctx, args)
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)

	return fs
}

// parse parses fs and checks the number of positional arguments.
func parse(fs *flag.FlagSet, args []string, positional ...string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	if fs.NArg() != len(positional) {
		return fmt.Errorf("%w: %s expects %s", errUsage, fs.Name(), describe(positional))
	}

	return nil
}

func describe(positional []string) string {
	if len(positional) == 0 {
		return "no arguments"
	}

	return strings.ToUpper(strings.Join(positional, " "))
}

func (a *app) promptLine(label string) (string, error) {
	fmt.Fprint(a.errOut, label)

	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSpace(strings.TrimSuffix(label, ": ")), err)
	}

	return strings.TrimSpace(line), nil
}

// promptSecret reads without echo when stdin is a terminal.
func (a *app) promptSecret(label string) (string, error) {
	if !term.IsTerminal(a.inFd) {
		return a.promptLine(label)
	}

	fmt.Fprint(a.errOut, label)

	secret, err := term.ReadPassword(a.inFd)

	fmt.Fprintln(a.errOut)

	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}

	return string(secret), nil
}

// render prints data as JSON or, by default, through text into a tab aligned table.
func render[T any](a *app, data T, text func(w io.Writer, data T)) error {
	if a.json {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")

		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	text(tw, data)

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	return nil
}

// message prints the text answer of a mutating call.
func (a *app) message(env domain.Envelope[string]) error {
	text, err := env.Unwrap()
	if err != nil {
		return err
	}

	if text = strings.TrimSpace(text); text == "" {
		text = "OK"
	}

	return render(a, map[string]string{"message": text}, func(w io.Writer, data map[string]string) {
		fmt.Fprintln(w, data["message"])
	})
}
