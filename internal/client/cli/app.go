package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/dmitrijs2005/conops/internal/buildinfo"
	"github.com/dmitrijs2005/conops/internal/client/client"
	"github.com/dmitrijs2005/conops/internal/client/config"
	"github.com/dmitrijs2005/conops/internal/client/services"
	"github.com/dmitrijs2005/conops/internal/client/settings"
	"github.com/dmitrijs2005/conops/internal/client/store"
	"github.com/dmitrijs2005/conops/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// App holds everything a command needs. It is built once per process, in
// the root command's pre-run hook, after flags are parsed.
type App struct {
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer

	cfg      *config.Config
	logger   logging.Logger
	closers  []io.Closer
	registry *prometheus.Registry

	store       *store.Store
	settings    *settings.Settings
	client      client.Client
	auth        services.AuthService
	sync        services.SyncService
	conventions services.ConventionService
	attendees   services.AttendeeService
}

type Option func(*App)

func WithInput(r io.Reader) Option {
	return func(a *App) { a.in = bufio.NewReader(r) }
}

func WithOutput(out, errOut io.Writer) Option {
	return func(a *App) { a.out, a.errOut = out, errOut }
}

func newApp(opts ...Option) *App {
	a := &App{
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		errOut: os.Stderr,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// init loads configuration and opens the store and services.
func (a *App) init(cmd *cobra.Command) error {
	ctx := cmd.Context()

	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, closer, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Output:     a.errOut,
	})
	if err != nil {
		return err
	}
	a.logger = logger
	a.closers = append(a.closers, closer)

	st, err := store.Open(ctx, cfg.DBPath, logger)
	if err != nil {
		return err
	}
	a.store = st
	a.closers = append(a.closers, st)
	a.settings = settings.New(st)

	if err := a.applyServerOverrides(ctx); err != nil {
		return err
	}

	a.registry = prometheus.NewRegistry()
	a.client = client.NewHTTPClient(a.settings,
		client.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout.Duration}),
		client.WithLogger(logger),
		client.WithUserAgent("conops/"+buildinfo.BuildVersion))
	a.auth = services.NewAuthService(a.client, st, a.settings, logger)
	a.sync = services.NewSyncService(a.client, st, a.settings,
		services.WithSyncLogger(logger),
		services.WithSyncRegisterer(a.registry))
	a.conventions = services.NewConventionService(a.client, st, a.settings)
	a.attendees = services.NewAttendeeService(a.client, st, logger)

	logger.Debug(ctx, "started", "db", cfg.DBPath)
	return nil
}

// applyServerOverrides writes host/port/TLS from configuration through to
// the persisted settings.
func (a *App) applyServerOverrides(ctx context.Context) error {
	s := a.cfg.Server
	if s.Empty() {
		return nil
	}
	values := map[string]string{}
	if s.Host != nil {
		values[settings.Host] = *s.Host
	}
	if s.Port != nil {
		values[settings.Port] = strconv.Itoa(*s.Port)
	}
	if s.TLS != nil {
		values[settings.UseTLS] = strconv.FormatBool(*s.TLS)
	}
	if err := a.settings.SetMany(ctx, values); err != nil {
		return fmt.Errorf("failed to save server settings: %w", err)
	}
	return nil
}

// Close releases the store and the log file in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}
