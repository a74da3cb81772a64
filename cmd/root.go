package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mj1618/keyword-server/internal/config"
	"github.com/mj1618/keyword-server/internal/logging"
	"github.com/mj1618/keyword-server/internal/output"
	"github.com/mj1618/keyword-server/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "keyword-server",
	Short: "Serve browser automation keywords to remote test runners",
	Long: `A remote keyword library server. Test runners connect over XML-RPC (or MCP)
to list keywords, read their arguments and documentation, and run them
against a headless browser session.`,
	SilenceUsage: true,
}

// Loaded by the root command before any subcommand runs.
var (
	cfg    = config.Default()
	logger = zap.NewNop()
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("format", "", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Indent JSON output")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides the config file)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: console, json (overrides the config file)")
	rootCmd.PersistentPreRunE = setup
}

func setup(cmd *cobra.Command, args []string) error {
	flags := rootCmd.PersistentFlags()

	format, _ := flags.GetString("format")
	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}
	output.OutputFormat = f
	output.PrettyOutput, _ = flags.GetBool("pretty")

	path, _ := flags.GetString("config")
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	if level, _ := flags.GetString("log-level"); level != "" {
		loaded.Log.Level = level
	}
	if lf, _ := flags.GetString("log-format"); lf != "" {
		loaded.Log.Format = lf
	}

	// Logs go to stderr: stdout carries command output and the MCP stdio stream.
	log, err := logging.New(loaded.Log.Level, loaded.Log.Format, os.Stderr)
	if err != nil {
		return err
	}
	cfg = loaded
	logger = log
	return nil
}
