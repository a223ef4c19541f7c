// file: cmd/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dkoosis/manifest-mcp/cmd/server"
	"github.com/dkoosis/manifest-mcp/internal/config"
	"github.com/dkoosis/manifest-mcp/internal/logging"
)

// Version information, set during build via ldflags.
var (
	Version    = "0.1.0-dev"
	commitHash = "unknown"
	buildDate  = "unknown"
)

// app carries what every subcommand shares once flags are parsed.
type app struct {
	configFile string
	envFile    string

	stdin          io.Reader
	stdout, stderr io.Writer

	cfg    *config.Config
	logger logging.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "manifest-mcp",
		Short: "Serve prompts and resources from a manifest tree over MCP",
		Long: `manifest-mcp publishes the prompt definitions and text resources found
under a manifest directory to an MCP client over stdio.

Without a subcommand it runs the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.runServe,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "Path to a YAML configuration file.")
	pf.StringVar(&a.envFile, "env-file", "", "Path to a .env file (default ./.env when present).")
	pf.String("manifest-root", "", "Directory holding prompts/ and resources/.")
	pf.String("log-level", "", "Log level: debug, info, warn or error.")
	pf.String("log-format", "", "Log format: json or console.")
	pf.String("metrics-addr", "", "Address for the Prometheus /metrics endpoint; empty disables it.")
	pf.String("server-name", "", "Server name reported during initialize.")

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		return a.load(pf)
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the MCP server on stdio",
			Args:  cobra.NoArgs,
			RunE:  a.runServe,
		},
		newPromptsCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "manifest-mcp %s (commit %s, built %s)\n", Version, commitHash, buildDate)
			},
		},
	)
	return root
}

func newPromptsCmd(a *app) *cobra.Command {
	prompts := &cobra.Command{
		Use:   "prompts",
		Short: "Inspect the prompts a manifest tree publishes",
	}
	prompts.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print the prompts/list result as JSON",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return server.ListPrompts(cmd.Context(), a.cfg, cmd.OutOrStdout(), a.logger)
			},
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Print the messages a prompt expands to as JSON",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return server.GetPrompt(cmd.Context(), a.cfg, args[0], cmd.OutOrStdout(), a.logger)
			},
		},
	)
	return prompts
}

// load resolves configuration and sets up logging on stderr. Stdout is
// reserved for protocol output.
func (a *app) load(flags *pflag.FlagSet) error {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: a.configFile,
		EnvFile:    a.envFile,
		Flags:      flags,
	})
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.SetupDefaultLogger(cfg.Log.Level, cfg.Log.Format, a.stderr)
	a.logger.Debug("Configuration loaded.", "manifestRoot", cfg.ManifestRoot)
	return nil
}

func (a *app) runServe(cmd *cobra.Command, _ []string) error {
	return server.RunServer(cmd.Context(), a.cfg, server.Streams{
		In:  a.stdin,
		Out: a.stdout,
		Err: a.stderr,
	}, a.logger.WithField("component", "main"))
}
