// =============================================================================
// main.go - tvp CLI Entry Point
// =============================================================================
//
// tvp is a command-line client for a running TVPaint Animation instance. It
// speaks George, TVPaint's scripting language, either through the George
// JSON-RPC WebSocket plugin or through a line bridge on a unix/tcp socket.
//
// Usage:
//
//	tvp                               Start the REPL (default endpoint)
//	tvp --url ws://studio-07:3000     Connect to a specific WebSocket endpoint
//	tvp --socket /tmp/tvpaint.sock    Connect to a socket bridge
//	tvp exec tv_ProjectInfo P0001     Run one command and print the reply
//	tvp tree                          Print projects, scenes, clips and layers
//	tvp journal --limit 20            Show the last journaled commands
//
// =============================================================================

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/johhnry/gotvpaint/internal/config"
)

// =============================================================================
// Version Information
// =============================================================================

const (
	version   = "0.3.0"
	appName   = "tvp"
	copyright = "Copyright (c) 2026"
)

// fullTitle returns the application name with version.
func fullTitle() string {
	return fmt.Sprintf("%s v%s", appName, version)
}

// welcomeBanner returns the banner displayed when the REPL starts.
func welcomeBanner() string {
	return fmt.Sprintf(`%s - George console for TVPaint Animation
%s

Type '.help' for available commands.
Type '.quit' to exit.
`, fullTitle(), copyright)
}

// =============================================================================
// Command-Line Options
// =============================================================================

// options holds the persistent flags shared by every subcommand. Flags left
// unset fall back to the config file and the environment.
type options struct {
	configPath  string
	url         string
	socket      string
	logLevel    string
	journal     string
	metricsAddr string
	plain       bool
}

// resolve loads the configuration and applies the flags explicitly set on
// cmd over it.
func (o *options) resolve(cmd *cobra.Command) (config.Config, error) {
	path, explicit := o.configPath, o.configPath != ""
	if !explicit {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path, explicit)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.Transport, cfg.URL = config.TransportWebSocket, o.url
	}
	if flags.Changed("socket") {
		cfg.Transport, cfg.Socket = config.TransportSocket, o.socket
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("journal") {
		cfg.Journal = o.journal
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = o.metricsAddr
	}
	return cfg, cfg.Validate()
}

// =============================================================================
// Root Command
// =============================================================================

// newRootCmd builds the command tree. Output goes to out and diagnostics to
// errOut so that tests can capture both.
func newRootCmd(out, errOut io.Writer) *cobra.Command {
	return newRootCmdWithOptions(&options{}, out, errOut)
}

func newRootCmdWithOptions(opts *options, out, errOut io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:     appName,
		Short:   "George console for TVPaint Animation",
		Long:    `tvp sends George commands to a running TVPaint Animation instance, interactively or one at a time.`,
		Version: version,
		Example: `  tvp
  tvp --socket /tmp/tvpaint-george-4242.sock
  tvp exec tv_GetWidth
  tvp tree --plain`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPLCommand(cmd, opts)
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.plain {
				color.NoColor = true
			}
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetVersionTemplate(fullTitle() + "\n")

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/tvp/config.yaml)")
	pf.StringVar(&opts.url, "url", "", "George WebSocket endpoint (default ws://localhost:3000)")
	pf.StringVar(&opts.socket, "socket", "", "socket bridge path, or tcp://host:port")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&opts.journal, "journal", "", "record every command into this sqlite file")
	pf.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	pf.BoolVar(&opts.plain, "plain", false, "disable colored output")

	root.AddCommand(
		newREPLCmd(opts),
		newExecCmd(opts),
		newTreeCmd(opts),
		newJournalCmd(opts),
	)
	return root
}

func printError(w io.Writer, message string) {
	color.New(color.FgRed).Fprintf(w, "Error: %s\n", message)
}

// =============================================================================
// Main Entry Point
// =============================================================================

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err.Error())
		stop()
		os.Exit(1)
	}
}
