package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/icdts/itemboard"
	"github.com/icdts/itemboard/internal/api"
	"github.com/icdts/itemboard/internal/config"
	"github.com/icdts/itemboard/internal/logging"
	"github.com/icdts/itemboard/internal/store"
	"github.com/icdts/itemboard/internal/weather"
	"github.com/icdts/itemboard/internal/web"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "web",
		Short:         "Serve the item list, its JSON API and the weather page",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return err
			}
			logger := logging.New(logging.Config{
				Level:  logging.ParseLevel(cfg.Log.Level),
				Format: logging.ParseFormat(cfg.Log.Format),
			})
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := run(ctx, cfg, logger); err != nil {
				logger.Error("server stopped", "error", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringP("config", "c", "", "path to a YAML config file")
	cmd.Flags().IntP("port", "p", config.DefaultPort, "port to listen on")
	cmd.Flags().String("log-level", "", "debug, info, warn or error")
	cmd.Flags().String("log-format", "", "json or text")
	cmd.Flags().String("store", "", "memory, sqlite or postgres")

	return cmd
}

// loadConfig applies explicitly set flags over file and environment values.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Log.Format, _ = flags.GetString("log-format")
	}
	if flags.Changed("store") {
		cfg.Store.Driver, _ = flags.GetString("store")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.UI.HTMXSrc != "" {
		logger.Info("HTMX file ready", "input", cfg.UI.HTMXSrc)
	}

	items, err := store.Open(cfg.Store)
	if err != nil {
		logger.Error("failed to open store", "input", cfg.Store.Driver, "error", err)
		return err
	}
	defer items.Close()

	views, err := loadViews(ctx, cfg.UI.ViewsDir, logger)
	if err != nil {
		logger.Error("failed to load views", "input", cfg.UI.ViewsDir, "error", err)
		return err
	}

	app := &web.App{
		Store:   items,
		Weather: weather.NewClient(cfg.Weather.BaseURL, cfg.Weather.Timeout),
		Views:   views,
		Log:     logger,
		Static:  itemboard.EmbeddedStatic,
		API: api.Options{
			StrictNotFound: cfg.API.StrictNotFound,
			MaxBodyBytes:   cfg.API.MaxBodyBytes,
		},
		PageSize: cfg.UI.PageSize,
		HTMXSrc:  cfg.UI.HTMXSrc,
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      app.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Listening", "input", cfg.Port, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to listen and serve", "input", srv.Addr, "error", err)
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func loadViews(ctx context.Context, dir string, logger *slog.Logger) (*web.Views, error) {
	if dir != "" {
		logger.Info("Watching views", "input", dir)
		return web.WatchDir(ctx, dir, logger)
	}
	sub, err := fs.Sub(itemboard.EmbeddedViews, "views")
	if err != nil {
		return nil, err
	}
	return web.NewViews(sub)
}
