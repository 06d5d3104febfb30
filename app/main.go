package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DavidsonCollege/release-notes-monitor/app/api"
	"github.com/DavidsonCollege/release-notes-monitor/app/cfg"
	"github.com/DavidsonCollege/release-notes-monitor/app/database"
	"github.com/DavidsonCollege/release-notes-monitor/app/feed"
	"github.com/DavidsonCollege/release-notes-monitor/app/sources"
	"github.com/DavidsonCollege/release-notes-monitor/app/tasks"
)

const defaultBaseURL = "https://example.github.io/release-notes-monitor"

func main() {
	if err := run(); err != nil {
		slog.Error("Release notes monitor failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	c, err := cfg.Load()
	if err != nil {
		return err
	}
	if c == nil {
		// Help was shown
		return nil
	}

	logLevel := slog.LevelInfo
	if c.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting release notes monitor", "version", c.Version, "serve", c.Serve)

	configCache := feed.NewConfigCache(c.ConfigFile)
	if err := configCache.Run(); err != nil {
		return fmt.Errorf("failed to load teams configuration: %w", err)
	}
	slog.Info("Teams configuration loaded", "path", c.ConfigFile, "teams", configCache.GetTeamCount())

	store, err := database.NewBlobStore(c)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	defer store.Close()
	slog.Debug("State store ready", "driver", c.StateDriver)

	httpClient := &http.Client{Timeout: c.GetRequestTimeout()}
	fetcher := sources.NewFetcher(httpClient, c.UserAgent)
	checker := sources.NewChecker(fetcher, feed.NewFilterer())

	generator := feed.NewGenerator(feed.GeneratorOptions{
		BaseURL:           defaultBaseURL,
		BaseURLFunc:       func() string { return cmp.Or(c.BaseUrl, configCache.GetBaseURL()) },
		DescriptionFormat: c.DescriptionFormat,
		MaxItems:          c.MaxFeedItems,
		Version:           c.Version,
	})

	monitor := tasks.NewMonitor(configCache, checker, database.NewStateRepository(store), generator,
		fetcher, feed.NewContentExtractor(), tasks.MonitorOptions{
			OutputDir:        c.OutputDir,
			MaxFeedItems:     c.MaxFeedItems,
			RecentPerProduct: c.RecentPerProduct,
			RequestDelay:     c.GetRequestDelay(),
		})

	if !c.Serve {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		report, err := monitor.Run(ctx)
		if err != nil {
			return err
		}
		for _, team := range report.Teams {
			for _, title := range team.NewTitles {
				fmt.Printf("[%s] %s\n", team.TeamID, title)
			}
		}
		return nil
	}

	return serve(c, configCache, monitor, generator)
}

func serve(c *cfg.Cfg, configCache *feed.ConfigCache, monitor *tasks.Monitor, generator *feed.Generator) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := configCache.Watch(ctx); err != nil {
		slog.Warn("Teams configuration will not be reloaded", "error", err)
	}

	scheduler := tasks.NewScheduler(monitor, c.GetSchedulerInterval())
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(configCache, monitor, scheduler, generator, c.OutputDir)
	server := api.NewServer(handler, c.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + c.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", c.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case serveErr = <-serverErrChan:
		slog.Error("Server error", "error", serveErr)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	return serveErr
}
