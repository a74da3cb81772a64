package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/keyword-server/internal/version"
)

// MCP transports.
const (
	TransportXMLRPC         = "xmlrpc"
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

// NewMCPServer exposes the remote procedures as MCP tools with the same
// names and parameters.
func (s *Server) NewMCPServer() *mcpserver.MCPServer {
	m := mcpserver.NewMCPServer("keyword-server", version.Version)

	m.AddTool(
		mcp.NewTool(ProcGetKeywordNames,
			mcp.WithDescription("List the names of every keyword the server exposes"),
		),
		s.handleMCPCall(ProcGetKeywordNames),
	)
	m.AddTool(
		mcp.NewTool(ProcGetKeywordArguments,
			mcp.WithDescription("List a keyword's parameters as name or name=default"),
			mcp.WithString("name", mcp.Description("Keyword name"), mcp.Required()),
		),
		s.handleMCPCall(ProcGetKeywordArguments),
	)
	m.AddTool(
		mcp.NewTool(ProcGetKeywordDocumentation,
			mcp.WithDescription("Get a keyword's documentation"),
			mcp.WithString("name", mcp.Description("Keyword name"), mcp.Required()),
		),
		s.handleMCPCall(ProcGetKeywordDocumentation),
	)
	m.AddTool(
		mcp.NewTool(ProcRunKeyword,
			mcp.WithDescription("Run a keyword and return its status, return value, output, error and traceback"),
			mcp.WithString("name", mcp.Description("Keyword name"), mcp.Required()),
			mcp.WithArray("args",
				mcp.Description("Positional keyword arguments"),
				mcp.Items(map[string]any{"type": "string"}),
			),
		),
		s.handleMCPCall(ProcRunKeyword),
	)
	m.AddTool(
		mcp.NewTool(ProcStopRemoteServer,
			mcp.WithDescription("Stop the server"),
		),
		s.handleMCPCall(ProcStopRemoteServer),
	)
	return m
}

// handleMCPCall adapts a tool call to Dispatch. The result is rendered as
// YAML text; keyword failures inside run_keyword are ordinary results.
func (s *Server) handleMCPCall(procedure string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := mcpParams(procedure, request.GetArguments())
		result, err := s.Dispatch(ctx, procedure, params)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(resultToText(result)), nil
	}
}

// mcpParams maps named tool arguments to positional procedure parameters.
func mcpParams(procedure string, args map[string]any) []any {
	switch procedure {
	case ProcGetKeywordArguments, ProcGetKeywordDocumentation:
		return []any{args["name"]}
	case ProcRunKeyword:
		params := []any{args["name"]}
		if list, ok := args["args"].([]any); ok {
			params = append(params, list)
		}
		return params
	default:
		return nil
	}
}

// resultToText serializes a procedure result to YAML for an MCP response.
func resultToText(result any) string {
	b, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Sprint(result)
	}
	return string(b)
}

// ServeMCP serves the tools on the given transport until ctx is done or
// stop_remote_server is called. stdin and stdout are used by the stdio
// transport; the streamable HTTP transport listens on the configured address.
func (s *Server) ServeMCP(ctx context.Context, transport string, stdin io.Reader, stdout io.Writer) error {
	m := s.NewMCPServer()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	switch transport {
	case TransportStdio:
		s.log.Info("mcp server started", zap.String("transport", transport))
		err := mcpserver.NewStdioServer(m).Listen(ctx, stdin, stdout)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	case TransportStreamableHTTP:
		httpSrv := mcpserver.NewStreamableHTTPServer(m)
		errc := make(chan error, 1)
		go func() { errc <- httpSrv.Start(s.cfg.Addr()) }()
		s.log.Info("mcp server started", zap.String("transport", transport), zap.String("addr", s.cfg.Addr()))

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}
		if err := httpSrv.Shutdown(context.Background()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("unsupported transport: %s (use %s, %s or %s)", transport, TransportXMLRPC, TransportStdio, TransportStreamableHTTP)
	}
}
