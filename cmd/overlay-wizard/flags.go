// ABOUTME: CLI flag parsing using stdlib flag package
// ABOUTME: Supports --config-dir overrides, --settings seeding, --source launch and headless exports

package main

import "flag"

type cliArgs struct {
	hostMode    string
	statePath   string
	hostCommand string
	assetPath   string
	exportDir   string
	settings    string
	source      string
	overlayType string
	exportMask  bool
	render      string
	noWatch     bool
	verbose     bool
	version     bool
}

func parseFlags() cliArgs {
	var args cliArgs

	flag.StringVar(&args.hostMode, "host", "", "Host bridge: file or rpc")
	flag.StringVar(&args.statePath, "state", "", "Host state file (file host)")
	flag.StringVar(&args.hostCommand, "host-command", "", "Host process to spawn (rpc host)")
	flag.StringVar(&args.assetPath, "asset", "", "Engine asset YAML for the webcam frame")
	flag.StringVar(&args.exportDir, "export-dir", "", "Directory for exported mask images")
	flag.StringVar(&args.settings, "settings", "", "Seed query string, e.g. settings=%7B%22rotation%22%3A45%7D")
	flag.StringVar(&args.source, "source", "", "Open the wizard for an existing source id")
	flag.StringVar(&args.overlayType, "type", "webcam", "Overlay type for headless output: webcam or keyboard")
	flag.BoolVar(&args.exportMask, "export-mask", false, "Write the mask PNG without starting the TUI")
	flag.StringVar(&args.render, "render", "", "Render the review preview to a PNG file without starting the TUI")
	flag.BoolVar(&args.noWatch, "no-watch", false, "Do not reload the engine asset on change")
	flag.BoolVar(&args.verbose, "verbose", false, "Enable debug logging")
	flag.BoolVar(&args.version, "version", false, "Show version and exit")

	flag.Parse()
	return args
}

// headless reports whether a flag asks for output without the TUI.
func (a cliArgs) headless() bool {
	return a.exportMask || a.render != ""
}
