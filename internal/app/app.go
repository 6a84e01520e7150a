package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/webprint/platen/internal/config"
	"github.com/webprint/platen/internal/prefs"
	"github.com/webprint/platen/internal/registry"
	"github.com/webprint/platen/internal/state"
	"github.com/webprint/platen/internal/ui"
	"github.com/webprint/platen/internal/webprint"
)

// Options configure the platen application.
type Options struct {
	ConfigPath   string
	PrefsPath    string // empty uses default ~/.config/platen/prefs.toml
	RegistryPath string // empty uses the config's registry_path
	PollEvery    int    // seconds; zero uses default
}

// Run boots the platen TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		return fmt.Errorf("load prefs: %w", err)
	}

	log, closeLog, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closeLog()

	client, err := webprint.NewClient(webprint.Config{
		BaseURL:       cfg.BaseURL,
		APIPrefix:     cfg.APIPrefix,
		Timeout:       cfg.Timeout,
		EnableLogging: cfg.EnableLogging,
		Logger:        log,
	})
	if err != nil {
		return fmt.Errorf("init webprint client: %w", err)
	}

	registryPath := opts.RegistryPath
	if registryPath == "" {
		registryPath = cfg.ResolvedRegistryPath()
	}
	reg := registry.Open(registryPath)
	if err := reg.CleanupOld(); err != nil {
		log.Warn().Err(err).Msg("registry cleanup failed")
	}

	store := &state.Store{}

	interval := defaultPollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	// Start background poller
	StartPoller(ctx, store, client, reg, interval, log)

	// Do initial refresh to populate store before UI starts
	refresh(ctx, store, client, reg, log)

	uiOpts := ui.Options{
		Context:   ctx,
		Client:    client,
		Store:     store,
		Registry:  reg,
		Config:    &cfg,
		PollTick:  interval,
		ThemeName: userPrefs.Theme,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
	}
	return ui.Run(uiOpts)
}

// newLogger builds the application logger. With logging disabled it
// returns a no-op logger so call sites never have to branch.
func newLogger(cfg config.Config) (zerolog.Logger, func(), error) {
	if !cfg.EnableLogging {
		return zerolog.Nop(), func() {}, nil
	}

	path := cfg.ResolvedLogFile()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}

	log := zerolog.New(file).With().Timestamp().Logger()
	return log, func() { _ = file.Close() }, nil
}
