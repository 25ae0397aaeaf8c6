// ABOUTME: CLI entry point for overlay-wizard
// ABOUTME: Parses flags, loads config, selects the host bridge, dispatches to TUI, headless or host mode

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	// termfix must be imported before any package that imports bubbletea.
	_ "github.com/mauromedda/overlay-wizard/internal/termfix"

	"golang.org/x/term"

	"github.com/mauromedda/overlay-wizard/internal/config"
	"github.com/mauromedda/overlay-wizard/internal/engine"
	"github.com/mauromedda/overlay-wizard/internal/host"
	"github.com/mauromedda/overlay-wizard/internal/keybindings"
	"github.com/mauromedda/overlay-wizard/internal/lifecycle"
	owlog "github.com/mauromedda/overlay-wizard/internal/log"
	"github.com/mauromedda/overlay-wizard/internal/settings"
	"github.com/mauromedda/overlay-wizard/internal/tui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	// Intercept subcommands before flag parsing.
	if len(os.Args) > 1 {
		if sub, ok := subcommands[os.Args[1]]; ok {
			if err := sub(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			os.Exit(0)
		}
	}

	args := parseFlags()

	if args.version {
		fmt.Printf("overlay-wizard %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	if err := run(args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var subcommands = map[string]func([]string) error{
	"host":   runHostCommand,
	"config": runConfigCommand,
}

// run loads configuration and dispatches to the selected mode.
func run(args cliArgs) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyCLIOverrides(cfg, args)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if lvl, ok := owlog.ParseLevel(cfg.LogLevel); ok {
		owlog.SetLevel(lvl)
	} else {
		owlog.Warn("unknown log level %q, using info", cfg.LogLevel)
	}
	if args.verbose {
		owlog.SetLevel(owlog.LevelDebug)
	}

	asset := engine.DefaultAsset()
	if cfg.AssetPath != "" {
		if asset, err = engine.LoadFile(cfg.AssetPath); err != nil {
			return fmt.Errorf("loading asset: %w", err)
		}
	}

	var seed settings.Record
	if args.settings != "" {
		seed = settings.FromQuery(args.settings, settings.Webcam)
	}

	policy := lifecycle.RetryPolicy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		Delay:       cfg.Retry.Delay,
		Backoff:     cfg.Retry.Backoff,
	}

	if args.headless() {
		return runHeadless(args, cfg, asset, seed, policy)
	}
	if !term.IsTerminal(int(os.Stderr.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("no terminal: use --export-mask or --render for headless output")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bridge, onReady, closeBridge, err := openBridge(ctx, cfg, args.source)
	if err != nil {
		return err
	}
	defer closeBridge()

	// The TUI owns the terminal; logs go to a file.
	if err := config.EnsureDir(config.GlobalDir()); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	closeLog, err := owlog.OpenFile(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer closeLog()

	deps := tui.Deps{
		Bridge:      bridge,
		Asset:       asset,
		Policy:      policy,
		SettleDelay: cfg.SettleDelay,
		Seed:        seed,
		ExportDir:   cfg.ExportDir,
		OnReady:     onReady,
		Keys: keybindings.New(
			config.GlobalKeybindingsFile(),
			config.LocalKeybindingsFile(cwd),
		),
	}
	if cfg.AssetPath != "" && cfg.IsWatchEnabled() {
		w, err := config.NewWatcher(cfg.AssetPath)
		if err != nil {
			owlog.Warn("watching %s: %v", cfg.AssetPath, err)
		} else {
			defer w.Close()
			deps.Watcher = w
		}
	}

	return tui.Run(deps)
}

// applyCLIOverrides layers flag values over the loaded config.
func applyCLIOverrides(cfg *config.Config, args cliArgs) {
	if args.hostMode != "" {
		cfg.Host.Mode = args.hostMode
	}
	if args.statePath != "" {
		cfg.Host.StatePath = args.statePath
	}
	if args.hostCommand != "" {
		cfg.Host.Command = args.hostCommand
		cfg.Host.Args = flag.Args()
	}
	if args.assetPath != "" {
		cfg.AssetPath = args.assetPath
	}
	if args.exportDir != "" {
		cfg.ExportDir = args.exportDir
	}
	if args.noWatch {
		off := false
		cfg.WatchAsset = &off
	}
}

// openBridge builds the configured host bridge. onReady launches the wizard
// once the host handshake succeeds.
func openBridge(ctx context.Context, cfg *config.Config, source string) (host.Bridge, func(), func(), error) {
	switch cfg.Host.Mode {
	case config.HostRPC:
		c, err := host.Spawn(ctx, cfg.Host.Command, cfg.Host.Args...)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("starting host: %w", err)
		}
		// An rpc host sends its own navigation after init.
		return c, nil, func() { _ = c.Close() }, nil
	default:
		if err := config.EnsureDir(config.AssetsDir(cfg.Host.StatePath)); err != nil {
			return nil, nil, nil, fmt.Errorf("creating host dir: %w", err)
		}
		fh := host.NewFileHost(cfg.Host.StatePath)
		return fh, func() { fh.Launch(source) }, func() {}, nil
	}
}
