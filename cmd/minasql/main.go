package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joacominatel/minasql/internal/app"
	"github.com/joacominatel/minasql/internal/config"
	"github.com/joacominatel/minasql/internal/database/target"
	"github.com/joacominatel/minasql/internal/logger"
	"github.com/joacominatel/minasql/internal/tui"
	"github.com/joacominatel/minasql/internal/tui/theme"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
)

const version = "minasql 0.1"

const connectTimeout = 10 * time.Second

// usageError is a command line mistake; it exits with status 2.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

type options struct {
	stdin       bool
	help        bool
	version     bool
	interactive bool
	profile     string
	save        string
}

func newFlagSet(opts *options, stdout io.Writer) *pflag.FlagSet {
	flags := pflag.NewFlagSet("minasql", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)

	flags.StringP("url", "u", target.DefaultURL, "connection URL (jdbc: prefix accepted)")
	flags.StringP("login", "l", "", "database user")
	flags.StringP("password", "p", "", "database password")
	flags.Duration("timeout", 0, "per-statement timeout, 0 for none")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")

	flags.BoolVarP(&opts.stdin, "stdin", "s", false, "read statements from stdin, one per line")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "start an interactive prompt")
	flags.StringVarP(&opts.profile, "connection", "c", "", "use a saved connection, --connection=NAME (bare flag: the default one)")
	flags.Lookup("connection").NoOptDefVal = config.DefaultProfile
	flags.StringVar(&opts.save, "save", "", "save the connection under this name")
	flags.BoolVarP(&opts.help, "help", "h", false, "show this help")
	flags.BoolVarP(&opts.version, "version", "V", false, "print the version")

	flags.Usage = func() {
		fmt.Fprintf(stdout, "Usage: minasql [flags] [STATEMENT]\n\nFlags:\n%s", flags.FlagUsages())
	}
	return flags
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		os.Exit(report(os.Stderr, err))
	}
}

// report prints err and returns the exit status for it.
func report(w io.Writer, err error) int {
	style := theme.ErrorStyle(w)

	var uerr usageError
	if errors.As(err, &uerr) {
		fmt.Fprintln(w, style.Render("minasql: "+uerr.Error()))
		fmt.Fprintln(w, "Run 'minasql --help' for usage.")
		return 2
	}

	fmt.Fprintln(w, style.Render(app.Diagnose(err)))
	return 1
}

func run(args []string) error {
	var opts options
	flags := newFlagSet(&opts, os.Stdout)
	if err := flags.Parse(args); err != nil {
		return usageError{err}
	}

	if opts.help {
		flags.Usage()
		return nil
	}
	if opts.version {
		fmt.Fprintln(os.Stdout, version)
		return nil
	}
	if flags.NArg() > 1 {
		return usageError{fmt.Errorf("expected at most one statement, got %d arguments", flags.NArg())}
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return &app.ErrConfig{Cause: err}
	}

	closer, err := logger.Setup(cfg.Log, os.Stderr)
	if err != nil {
		return &app.ErrConfig{Cause: err}
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	creds, err := cfg.Resolve(opts.profile)
	if err != nil {
		return &app.ErrConfig{Cause: err}
	}

	tgt, err := target.Parse(creds.URL, creds.Login, creds.Password)
	if err != nil {
		return &app.ErrConfig{Cause: err}
	}

	driver, err := app.NewDriver(tgt.Driver)
	if err != nil {
		return &app.ErrConfig{Cause: err}
	}

	service := app.NewService(driver, os.Stdout)
	service.SetTimeout(cfg.Timeout)

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	err = service.Connect(connectCtx, tgt.Display, tgt.DSN)
	cancel()
	if err != nil {
		return err
	}
	defer service.Disconnect()

	if opts.save != "" {
		if err := saveConnection(cfg, opts.save, creds); err != nil {
			return &app.ErrConfig{Cause: err}
		}
		slog.Info("Saved connection", "name", opts.save, "target", tgt.Display)
	}

	switch {
	case opts.interactive:
		if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
			return usageError{errors.New("--interactive needs a terminal on stdin")}
		}
		return tui.Run(ctx, service)

	case opts.stdin:
		return app.NewRunner(service, flags.Usage).RunStream(ctx, os.Stdin)

	default:
		return app.NewRunner(service, flags.Usage).RunSingle(ctx, flags.Arg(0))
	}
}

// saveConnection stores the effective connection as a named profile.
func saveConnection(cfg *config.Config, name string, creds config.Credentials) error {
	conn, err := config.ParseURL(creds.URL)
	if err != nil {
		return err
	}
	conn.Name = name
	if conn.Username == "" {
		conn.Username = creds.Login
	}
	if conn.Password == "" {
		conn.Password = creds.Password
	}
	return config.SaveConnection(cfg, conn)
}
