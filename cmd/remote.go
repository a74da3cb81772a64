package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mj1618/keyword-server/internal/output"
	"github.com/mj1618/keyword-server/internal/server"
	"github.com/mj1618/keyword-server/internal/xmlrpc"
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Call a running keyword server",
	Long: `Call the remote procedures of a running server over XML-RPC.

Examples:
  keyword-server remote names
  keyword-server remote args get_list_items
  keyword-server remote run go_to http://localhost:8000/
  keyword-server remote --url http://10.0.0.5:8270/ stop`,
}

func init() {
	rootCmd.AddCommand(remoteCmd)
	remoteCmd.PersistentFlags().String("url", fmt.Sprintf("http://%s:%d/", server.DefaultHost, server.DefaultPort), "Server URL")

	remoteCmd.AddCommand(
		&cobra.Command{
			Use:   "names",
			Short: "List keyword names",
			Args:  cobra.NoArgs,
			RunE:  remoteCall(server.ProcGetKeywordNames),
		},
		&cobra.Command{
			Use:   "args NAME",
			Short: "Show a keyword's arguments",
			Args:  cobra.ExactArgs(1),
			RunE:  remoteCall(server.ProcGetKeywordArguments),
		},
		&cobra.Command{
			Use:   "doc NAME",
			Short: "Show a keyword's documentation",
			Args:  cobra.ExactArgs(1),
			RunE:  remoteCall(server.ProcGetKeywordDocumentation),
		},
		&cobra.Command{
			Use:   "run NAME [ARGS...]",
			Short: "Run a keyword and print its result",
			Args:  cobra.MinimumNArgs(1),
			RunE:  runRemoteKeyword,
		},
		&cobra.Command{
			Use:   "stop",
			Short: "Stop the server",
			Args:  cobra.NoArgs,
			RunE:  remoteCall(server.ProcStopRemoteServer),
		},
	)
}

func remoteClient(cmd *cobra.Command) *xmlrpc.Client {
	url, _ := cmd.Flags().GetString("url")
	return xmlrpc.NewClient(url)
}

// remoteCall calls procedure with the command's arguments as string params.
func remoteCall(procedure string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		params := make([]any, len(args))
		for i, a := range args {
			params[i] = a
		}
		result, err := remoteClient(cmd).Call(cmd.Context(), procedure, params...)
		if err != nil {
			return err
		}
		return output.Print(result)
	}
}

func runRemoteKeyword(cmd *cobra.Command, args []string) error {
	result, err := remoteClient(cmd).Call(cmd.Context(), server.ProcRunKeyword, args[0], args[1:])
	if err != nil {
		return err
	}
	if err := output.Print(result); err != nil {
		return err
	}
	if m, ok := result.(map[string]any); ok && m["status"] != "PASS" {
		return fmt.Errorf("keyword %s failed: %v", args[0], m["error"])
	}
	return nil
}
