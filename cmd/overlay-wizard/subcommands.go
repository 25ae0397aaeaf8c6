// ABOUTME: Subcommands dispatched before flag parsing: "host", "config explain" and "config keys"
// ABOUTME: "host" serves a file-backed host over stdio JSON lines for an rpc-mode wizard

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mauromedda/overlay-wizard/internal/config"
	"github.com/mauromedda/overlay-wizard/internal/host"
	"github.com/mauromedda/overlay-wizard/internal/keybindings"
	owlog "github.com/mauromedda/overlay-wizard/internal/log"
)

// runHostCommand serves a file host on stdin/stdout until EOF or a signal.
func runHostCommand(argv []string) error {
	fs := flag.NewFlagSet("host", flag.ContinueOnError)
	state := fs.String("state", "", "Host state file")
	launch := fs.String("launch", "", "Source id to open after init (empty for a new source)")
	verbose := fs.Bool("verbose", false, "Enable debug logging")
	if err := fs.Parse(argv); err != nil {
		return err
	}
	if *verbose {
		owlog.SetLevel(owlog.LevelDebug)
	}

	path := *state
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg, err := config.Load(cwd)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		path = cfg.Host.StatePath
	}
	if err := config.EnsureDir(config.AssetsDir(path)); err != nil {
		return fmt.Errorf("creating host dir: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fh := host.NewFileHost(path)
	srv := host.NewServer(fh, os.Stdin, os.Stdout)
	source := *launch
	srv.AfterInit = func() { fh.Launch(source) }

	owlog.Info("serving host state %s", path)
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("host: %w", err)
	}
	return nil
}

// runConfigCommand implements "config explain".
func runConfigCommand(argv []string) error {
	const usage = "usage: overlay-wizard config explain|keys"
	if len(argv) == 0 {
		return errors.New(usage)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	switch argv[0] {
	case "explain":
		cfg, err := config.Load(cwd)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		fmt.Print(config.Explain(cfg))
	case "keys":
		keys := keybindings.New(config.GlobalKeybindingsFile(), config.LocalKeybindingsFile(cwd))
		fmt.Print(keys.FormatAll())
		for _, c := range keys.Conflicts() {
			fmt.Fprintf(os.Stderr, "conflict: %s bound to %v\n", c.Key, c.Actions)
		}
	default:
		return errors.New(usage)
	}
	return nil
}
