package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/conops/internal/client/client"
	"github.com/dmitrijs2005/conops/internal/client/services"
	"github.com/dmitrijs2005/conops/internal/client/stream"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func (a *App) syncCommand() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Bring the local cache up to date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.auth.EnsureSession(cmd.Context()); err != nil {
				return err
			}
			return a.runSync(cmd, full)
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "discard the cache and fetch everything")
	return cmd
}

func (a *App) runSync(cmd *cobra.Command, full bool) error {
	res, err := a.sync.Sync(cmd.Context(), full)
	if err != nil {
		return err
	}
	a.printSyncResult(res)
	return nil
}

func (a *App) printSyncResult(res *services.SyncResult) {
	a.printf("Synced (%s): %d conventions, %d attendees", res.Mode, res.Conventions, res.Attendees)
	if res.Primary != "" {
		a.printf(" for %s", res.Primary)
		if res.CompareTo != "" {
			a.printf(" and %s", res.CompareTo)
		}
	}
	a.println()
}

func (a *App) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stay connected and sync whenever the server reports a change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.watch(cmd.Context())
		},
	}
}

// watch runs until ctx is cancelled. Stream callbacks are handed to this
// goroutine, which is the only one touching the store. While a sync is
// queued further events are dropped; the queued pass picks their changes
// up.
func (a *App) watch(ctx context.Context) error {
	if err := a.auth.EnsureSession(ctx); err != nil {
		return err
	}

	stopMetrics, err := a.serveMetrics(ctx)
	if err != nil {
		return err
	}
	defer stopMetrics()

	work := make(chan func(), 1)
	s := stream.New(a.settings,
		stream.WithLogger(a.logger),
		stream.WithRegisterer(a.registry),
		stream.WithRetryDelay(a.cfg.Stream.RetryDelay.Duration),
		stream.WithExecutor(func(f func()) {
			select {
			case work <- f:
			default:
			}
		}))
	s.OnEvent(func(ev stream.Event) {
		a.logger.Debug(ctx, "change reported", "event", ev.Name)
		a.syncOnce(ctx)
	})

	changes, unsubscribe := a.store.Subscribe()
	defer unsubscribe()

	if err := a.syncOnce(ctx); errors.Is(err, client.ErrUnauthorized) {
		return err
	}

	if err := s.Start(ctx); err != nil {
		return client.StoreError(err)
	}
	defer s.Stop()
	a.println("Watching for changes, press Ctrl-C to stop")

	for {
		select {
		case <-ctx.Done():
			return nil
		case f := <-work:
			f()
		case c := <-changes:
			a.logger.Debug(ctx, "cache changed", "scope", c.Scope.String(), "at", c.At)
		}
	}
}

// syncOnce runs an incremental pass and reports failures without stopping
// the caller.
func (a *App) syncOnce(ctx context.Context) error {
	res, err := a.sync.Sync(ctx, false)
	if err != nil {
		if ctx.Err() == nil {
			a.logger.Warn(ctx, "sync failed", "error", err)
		}
		return err
	}
	a.printSyncResult(res)
	return nil
}

// serveMetrics exposes the registry on cfg.MetricsAddr when it is set. The
// returned func shuts the server down.
func (a *App) serveMetrics(ctx context.Context) (func(), error) {
	if a.cfg.MetricsAddr == "" {
		return func() {}, nil
	}
	ln, err := net.Listen("tcp", a.cfg.MetricsAddr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(ctx, "metrics server stopped", "error", err)
		}
	}()
	a.logger.Info(ctx, "serving metrics", "addr", ln.Addr().String())

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		<-done
	}, nil
}
