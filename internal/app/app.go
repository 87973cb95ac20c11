package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alitto/pond/v2"

	"github.com/five82/coloringbook/internal/colorbook"
	"github.com/five82/coloringbook/internal/config"
	"github.com/five82/coloringbook/internal/prefs"
	"github.com/five82/coloringbook/internal/state"
	"github.com/five82/coloringbook/internal/ui"
)

// Options configure the coloringbook application.
type Options struct {
	ConfigPath  string
	PrefsPath   string // empty uses default ~/.config/coloringbook/prefs.toml
	ServerURL   string // overrides config and prefs when set
	HealthEvery int    // seconds; zero uses default
	Debug       bool
}

// Run boots the coloringbook TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	level := cfg.SlogLevel()
	if opts.Debug {
		level = slog.LevelDebug
	}
	logger, ring, closeLog := setupLogging(cfg.LogFile, level)
	defer closeLog()

	serverURL := resolveServerURL(cfg.ServerURL, userPrefs.ServerURL, opts.ServerURL)
	logger.Info("starting",
		"server", serverURL,
		"workers", cfg.Workers,
		"token_set", cfg.AppToken != "",
		"print_dir", cfg.PrintDir,
	)

	client := colorbook.NewClient()
	svc, stop := startServices(ctx, client, serviceOptions{
		ServerURL:   serverURL,
		AppToken:    cfg.AppToken,
		Workers:     cfg.Workers,
		HealthEvery: opts.HealthEvery,
		Logger:      logger,
	})
	defer stop()

	err = ui.Run(ui.Options{
		Context:    svc.ctx,
		Gallery:    svc.gallery,
		Generation: svc.generation,
		Health:     svc.health,
		Fetcher:    client,
		Prober:     client,
		Runner:     svc.pool,
		Logs:       ring,
		Logger:     logger,
		PrintDir:   cfg.PrintDir,
		ThemeName:  userPrefs.Theme,
		PrefsPath:  opts.PrefsPath,
	})
	logger.Info("stopped", "error", err)
	return err
}

// remoteService is everything the background services need from the server.
type remoteService interface {
	colorbook.ImageService
	colorbook.HealthChecker
}

type serviceOptions struct {
	ServerURL   string
	AppToken    string
	Workers     int
	HealthEvery int
	Logger      *slog.Logger
}

// services are the state containers and workers that outlive a single view.
type services struct {
	ctx        context.Context
	pool       pond.Pool
	gallery    *state.Gallery
	generation *state.Generation
	health     *state.Health
}

// startServices wires the state containers to a shared pool and starts the
// health monitor. All of them run under a child of ctx; the returned stop
// cancels it before draining the pool, so in-flight requests end as
// cancellations instead of running out their transport timeout.
func startServices(ctx context.Context, remote remoteService, opts serviceOptions) (*services, func()) {
	ctx, cancel := context.WithCancel(ctx)

	pool := state.NewPool(ctx, opts.Workers)
	gallery := state.NewGallery(state.GalleryOptions{
		Context:   ctx,
		Service:   remote,
		Runner:    pool,
		ServerURL: opts.ServerURL,
		Logger:    opts.Logger,
	})
	generation := state.NewGeneration(state.GenerationOptions{
		Context:     ctx,
		Service:     remote,
		Runner:      pool,
		ServerURL:   opts.ServerURL,
		AppToken:    opts.AppToken,
		Logger:      opts.Logger,
		OnGenerated: gallery.InsertImage,
	})
	health := &state.Health{}

	interval := defaultHealthInterval
	if opts.HealthEvery > 0 {
		interval = time.Duration(opts.HealthEvery) * time.Second
	}
	StartHealthMonitor(ctx, health, remote, gallery.ServerURL, interval, opts.Logger)

	stop := func() {
		generation.CancelGeneration()
		cancel()
		pool.StopAndWait()
	}
	return &services{
		ctx:        ctx,
		pool:       pool,
		gallery:    gallery,
		generation: generation,
		health:     health,
	}, stop
}

// resolveServerURL applies config < prefs < flag precedence.
func resolveServerURL(configured, preferred, flagValue string) string {
	for _, candidate := range []string{flagValue, preferred, configured} {
		if trimmed := strings.TrimRight(strings.TrimSpace(candidate), "/"); trimmed != "" {
			return trimmed
		}
	}
	return colorbook.DefaultServerURL
}
