package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/radovskyb/watcher"
	"github.com/spf13/cobra"

	"github.com/learnstack/pagegen/internal/api"
	"github.com/learnstack/pagegen/internal/pipeline"
	"github.com/learnstack/pagegen/internal/store"
)

var sourceFilePattern = regexp.MustCompile(`(?i)\.(xlsx|xls|csv)$`)

var serveWatch bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the cache over HTTP for local preview",
	Long: `serve runs a build so the preview reflects the current sources, then
serves the manifest, artifacts and SEO files over HTTP. With --watch the
source directory is polled and the pipeline reruns on every change.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.New(cfg.CacheDir)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		runner := pipeline.New(cfg, st, logger)
		if _, err := runner.Run(ctx); err != nil {
			return fmt.Errorf("initial build: %w", err)
		}

		if serveWatch {
			w, err := watchSources(ctx, runner)
			if err != nil {
				return err
			}
			defer w.Close()
		}

		httpServer := &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      api.NewServer(st, logger),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Graceful shutdown.
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-sigCh:
			case <-ctx.Done():
			}
			logger.Info("shutting down...")
			cancel()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			httpServer.Shutdown(shutdownCtx)
		}()

		logger.Info("starting preview server",
			"port", cfg.Port,
			"cache", st.Dir(),
			"watch", serveWatch,
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	},
}

// watchSources polls the source directory and reruns the pipeline on every
// batch of changes until ctx is cancelled.
func watchSources(ctx context.Context, runner *pipeline.Runner) (*watcher.Watcher, error) {
	w := watcher.New()
	w.SetMaxEvents(1)
	w.FilterOps(watcher.Write, watcher.Create, watcher.Remove, watcher.Rename)
	w.AddFilterHook(watcher.RegexFilterHook(sourceFilePattern, false))

	if err := w.Add(cfg.SourceDir); err != nil {
		return nil, fmt.Errorf("watch %s: %w", cfg.SourceDir, err)
	}

	go func() {
		for {
			select {
			case event := <-w.Event:
				logger.Info("source change detected", "path", event.Path, "op", event.Op.String())
				if _, err := runner.Run(ctx); err != nil {
					logger.Error("rebuild failed", "error", err)
				}
			case err := <-w.Error:
				logger.Error("watcher error", "error", err)
			case <-w.Closed:
				return
			case <-ctx.Done():
				w.Close()
				return
			}
		}
	}()

	go func() {
		if err := w.Start(250 * time.Millisecond); err != nil {
			logger.Error("watcher start failed", "error", err)
		}
	}()

	return w, nil
}

func init() {
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "rebuild when source files change")
	rootCmd.AddCommand(serveCmd)
}
