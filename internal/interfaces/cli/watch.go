package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	appchem "github.com/chem4word/chem4word/internal/application/chemistry"
	"github.com/chem4word/chem4word/internal/config"
	"github.com/chem4word/chem4word/internal/infrastructure/monitoring/logging"
	"github.com/chem4word/chem4word/internal/infrastructure/monitoring/prometheus"
	"github.com/chem4word/chem4word/pkg/errors"
)

// watchDebounce collapses the burst of events an editor produces on save.
const watchDebounce = 100 * time.Millisecond

func newWatchCmd() *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-inspect a CML file every time it is saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			addr := metricsAddr
			if addr == "" && cliCtx.Config.Metrics.Enabled {
				addr = cliCtx.Config.Metrics.ListenAddr
			}
			if addr != "" {
				shutdown := serveMetrics(addr, cliCtx.Collector.Handler(), cliCtx.Logger)
				defer shutdown()
			}

			var svc atomic.Value
			svc.Store(cliCtx.LocalService())
			if cliCtx.ConfigPath != "" {
				config.Watch(cliCtx.ConfigPath, func(cfg *config.Config) {
					svc.Store(cliCtx.localServiceFor(cfg))
					cliCtx.Logger.Info("configuration reloaded", logging.String("path", cliCtx.ConfigPath))
				})
			}

			current := func() appchem.Service { return svc.Load().(appchem.Service) }
			return watchFile(ctx, cmd, current, cliCtx.Metrics, cliCtx.Logger, args[0])
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9091")
	return cmd
}

// serveMetrics exposes handler on addr/metrics and returns a function that
// stops the server.
func serveMetrics(addr string, handler http.Handler, logger logging.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("serving metrics", logging.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", logging.Err(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// watchFile prints an inspection of path now and after every change until
// ctx is done.  The parent directory is watched so that editors that save
// by renaming a temporary file are followed.  service is asked for the
// service to use before every report.
func watchFile(ctx context.Context, cmd *cobra.Command, service func() appchem.Service, metrics *prometheus.ChemistryMetrics, logger logging.Logger, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidParam, "invalid path").WithDetail(path)
	}
	if _, err := os.Stat(abs); err != nil {
		return errors.Wrap(err, errors.CodeInvalidParam, "cannot watch file").WithDetail(path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to create file watcher")
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to watch directory").WithDetail(filepath.Dir(abs))
	}

	report := func() {
		result, err := inspectFile(ctx, service(), abs)
		prometheus.RecordWatchEvent(metrics, err)
		if err != nil {
			PrintError(cmd, err)
			return
		}
		result.File = path
		if err := PrintResult(cmd, result); err != nil {
			logger.Warn("failed to print inspection", logging.Err(err))
		}
	}

	report()
	logger.Info("watching", logging.String("file", abs))

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			pending = time.After(watchDebounce)
		case <-pending:
			pending = nil
			report()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", logging.Err(err))
		}
	}
}
