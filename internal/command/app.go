// Where: cli/internal/command/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher.
package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/poruru/release-sweep/cli/internal/infra/config"
	"github.com/poruru/release-sweep/cli/internal/infra/fileops"
	"github.com/poruru/release-sweep/cli/internal/infra/interaction"
	"github.com/poruru/release-sweep/cli/internal/infra/ledger"
	"github.com/poruru/release-sweep/cli/internal/infra/logging"
	"github.com/poruru/release-sweep/cli/internal/infra/ui"
	"github.com/poruru/release-sweep/cli/internal/meta"
	"github.com/poruru/release-sweep/cli/internal/version"
)

// Dependencies holds all injected dependencies required for CLI command execution.
// Zero values fall back to the real implementations.
type Dependencies struct {
	Out       io.Writer
	ErrOut    io.Writer
	Context   context.Context
	Confirmer interaction.Confirmer
	// Interactive reports whether a person can answer prompts.
	Interactive func() bool
	Release     ReleaseDeps
	Exists      ExistsDeps
}

// CLI defines the command-line interface structure parsed by Kong.
// It contains global flags and all subcommand definitions.
type CLI struct {
	EnvFile string     `name:"env-file" help:"Path to .env file"`
	Config  string     `short:"c" name:"config" help:"Path to release-sweep.yaml (default: ./release-sweep.yaml when present)"`
	Verbose bool       `short:"v" help:"Verbose logging"`
	NoEmoji bool       `name:"no-emoji" help:"Disable emoji output"`
	Release ReleaseCmd `cmd:"" help:"Build and publish agent and Ops Manager images"`
	Trim    TrimCmd    `cmd:"" help:"Trim supported versions in the release manifest"`
	Exists  ExistsCmd  `cmd:"" help:"Check whether an image tag exists in its registry"`
	Agents  AgentsCmd  `cmd:"" help:"List agent pairings from the release manifest"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

type (
	// ReleaseCmd defines the release command flags.
	ReleaseCmd struct {
		Manifest  string `short:"m" help:"Path to the release manifest"`
		CIConfig  string `name:"ci-config" help:"Path to the CI build-matrix YAML"`
		DryRun    bool   `name:"dry-run" help:"Print what would be released without building"`
		KeepGoing bool   `name:"keep-going" help:"Continue after a failed release and report all failures"`
		Parallel  int    `default:"1" help:"Number of Ops Manager versions released concurrently"`
		LedgerOut string `name:"ledger-out" help:"Write the release ledger JSON to this path"`
		Yes       bool   `short:"y" help:"Do not ask for confirmation"`
	}

	// TrimCmd defines the trim command flags.
	TrimCmd struct {
		Manifest string   `short:"m" help:"Path to the release manifest"`
		Floor    string   `help:"Version always kept in list products"`
		Keep     int      `help:"Versions kept per major version (default from config)"`
		Product  []string `name:"product" help:"Product to trim (repeatable)"`
		Check    bool     `help:"Fail instead of writing when the manifest is not trimmed"`
	}

	// ExistsCmd checks the registry for one tag.
	ExistsCmd struct {
		Repository string `arg:"" help:"Repository including registry host"`
		Tag        string `arg:"" help:"Tag to look up"`
	}

	// AgentsCmd lists agent pairings.
	AgentsCmd struct {
		Manifest string `short:"m" help:"Path to the release manifest"`
		Base     string `help:"Only list pairings changed relative to this manifest"`
		Product  string `help:"Manifest product holding the Ops Manager mapping"`
		JSON     bool   `name:"json" help:"Print pairings as a JSON array"`
	}

	VersionCmd struct{}
)

// Run is the main entry point for CLI command execution.
// It parses the command-line arguments, identifies the requested command,
// and dispatches to the appropriate handler. Returns 0 on success, 1 on error.
func Run(args []string, deps Dependencies) int {
	deps = deps.withDefaults()
	out := deps.Out

	if len(args) == 0 {
		return runNoArgs(out)
	}

	cli := CLI{}
	parser, err := kong.New(&cli,
		kong.Name(meta.AppName),
		kong.Writers(out, deps.ErrOut),
	)
	if err != nil {
		return exitWithError(out, err)
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return exitWithError(out, err)
	}

	loadEnvFile(cli.EnvFile, consoleUI(out, false))

	command := ctx.Command()
	if exitCode, handled := dispatchCommand(command, cli, deps); handled {
		return exitCode
	}

	consoleUI(out, false).Warn("unknown command")
	return 1
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Out == nil {
		d.Out = os.Stdout
	}
	if d.ErrOut == nil {
		d.ErrOut = os.Stderr
	}
	if d.Context == nil {
		d.Context = context.Background()
	}
	if d.Interactive == nil {
		d.Interactive = func() bool { return interaction.IsTerminal(os.Stdin) }
	}
	if d.Confirmer == nil {
		d.Confirmer = interaction.TerminalConfirmer{In: os.Stdin, Out: d.ErrOut}
	}
	if d.Release.ActiveVersions == nil {
		d.Release.ActiveVersions = defaultActiveVersions
	}
	if d.Release.LedgerClients == nil {
		d.Release.LedgerClients = ledger.AWSClientFactory{}
	}
	if d.Release.NewRunID == nil {
		d.Release.NewRunID = newRunID
	}
	return d
}

// loadEnvFile loads --env-file, or .env in the current directory when present.
func loadEnvFile(path string, userInterface ui.UserInterface) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			userInterface.Warn(fmt.Sprintf("Warning: failed to load env file %s: %v", path, err))
		}
		return
	}
	if fileops.FileExists(".env") {
		if err := godotenv.Load(); err != nil {
			userInterface.Warn(fmt.Sprintf("Warning: failed to load .env: %v", err))
		}
	}
}

type commandHandler func(CLI, Dependencies) int

func dispatchCommand(command string, cli CLI, deps Dependencies) (int, bool) {
	exactHandlers := map[string]commandHandler{
		"release":                   runRelease,
		"trim":                      runTrim,
		"exists <repository> <tag>": runExists,
		"agents":                    runAgents,
		"version":                   runVersion,
	}

	if handler, ok := exactHandlers[command]; ok {
		return handler(cli, deps), true
	}
	return 1, false
}

// runVersion prints the version information of the CLI.
func runVersion(_ CLI, deps Dependencies) int {
	consoleUI(deps.Out, false).Info(version.GetVersion())
	return 0
}

// runNoArgs prints a short usage hint.
func runNoArgs(out io.Writer) int {
	userInterface := consoleUI(out, false)
	cmd := meta.AppName
	userInterface.Info("Usage:")
	userInterface.Info(fmt.Sprintf("  %s release [--dry-run] [--keep-going] [--parallel N] [flags]", cmd))
	userInterface.Info(fmt.Sprintf("  %s trim [--floor V] [--keep N] [--check]", cmd))
	userInterface.Info("")
	userInterface.Info(fmt.Sprintf("Try: %s --help", cmd))
	return 0
}

// loadConfig reads the release config. An explicit --config must exist.
func loadConfig(cli CLI) (config.ReleaseConfig, error) {
	path := strings.TrimSpace(cli.Config)
	required := path != ""
	if path == "" {
		path = meta.DefaultConfigFile
	}
	return config.LoadReleaseConfig(path, required)
}

func newLogger(cli CLI, deps Dependencies) *zap.Logger {
	return logging.New(deps.ErrOut, cli.Verbose)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
