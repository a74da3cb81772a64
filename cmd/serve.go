package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mj1618/keyword-server/internal/config"
	"github.com/mj1618/keyword-server/internal/docs"
	"github.com/mj1618/keyword-server/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the remote keyword server",
	Long: `Start the remote library server exposing every keyword through the five
remote procedures (get_keyword_names, get_keyword_arguments,
get_keyword_documentation, run_keyword, stop_remote_server).

Supported transports:
  xmlrpc            XML-RPC over HTTP on host:port (default, for remote test runners)
  stdio             MCP over standard I/O
  streamable-http   MCP over streamable HTTP on host:port

Examples:
  keyword-server serve
  keyword-server serve --port 8271 --metrics
  keyword-server serve --doc-sections "docstring:,params:Arguments"
  keyword-server serve --transport stdio`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addServeFlags(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().String("host", server.DefaultHost, "Address to listen on")
	cmd.Flags().Int("port", server.DefaultPort, "Port to listen on")
	cmd.Flags().String("transport", server.TransportXMLRPC, "Transport: xmlrpc, stdio, streamable-http")
	cmd.Flags().String("doc-file", "", "YAML documentation overlay")
	cmd.Flags().String("doc-sections", "", "Documentation sections as kind:label,kind:label (kinds: docstring, file, source, params)")
	cmd.Flags().Bool("metrics", false, "Serve Prometheus metrics on /metrics")
	cmd.Flags().String("browser", "", "Default browser name for open_browser")
}

func runServe(cmd *cobra.Command, args []string) error {
	c, err := serveConfig(cmd, cfg)
	if err != nil {
		return err
	}

	a, err := newApp(c, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.lib.Close(); err != nil {
			logger.Warn("closing browser", zap.Error(err))
		}
	}()

	srv := server.New(c.ServerConfig(), a.engine, a.catalog,
		server.WithLogger(logger),
		server.WithMetrics(a.metrics),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if c.Server.Transport == server.TransportXMLRPC {
		return srv.ListenAndServe(ctx)
	}
	return srv.ServeMCP(ctx, c.Server.Transport, cmd.InOrStdin(), cmd.OutOrStdout())
}

// serveConfig applies the flags the user set on top of the loaded config.
func serveConfig(cmd *cobra.Command, base config.Config) (config.Config, error) {
	c := base
	flags := cmd.Flags()
	if flags.Changed("host") {
		c.Server.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		c.Server.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("transport") {
		c.Server.Transport, _ = flags.GetString("transport")
	}
	if flags.Changed("metrics") {
		c.Server.Metrics, _ = flags.GetBool("metrics")
	}
	if flags.Changed("doc-file") {
		c.Docs.File, _ = flags.GetString("doc-file")
	}
	if flags.Changed("doc-sections") {
		s, _ := flags.GetString("doc-sections")
		sections, err := docs.ParseSections(s)
		if err != nil {
			return config.Config{}, fmt.Errorf("--doc-sections: %w", err)
		}
		c.Docs.Sections = sections
	}
	if flags.Changed("browser") {
		c.Browser.Default, _ = flags.GetString("browser")
	}
	if err := c.Validate(); err != nil {
		return config.Config{}, err
	}
	return c, nil
}
