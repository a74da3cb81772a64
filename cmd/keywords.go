package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/keyword-server/internal/output"
)

// KeywordInfo is the output of `keywords NAME`.
type KeywordInfo struct {
	Name          string   `yaml:"name"                    json:"name"`
	Arguments     []string `yaml:"arguments"               json:"arguments"`
	Documentation string   `yaml:"documentation,omitempty" json:"documentation,omitempty"`
}

var keywordsCmd = &cobra.Command{
	Use:   "keywords [name]",
	Short: "List keywords or describe one",
	Long: `Without a name, list every keyword the server exposes. With a name, print its
arguments and documentation as the server would return them.

Examples:
  keyword-server keywords
  keyword-server keywords "Click Link"
  keyword-server keywords get_list_items --args`,
	Args: cobra.MaximumNArgs(1),
	RunE: runKeywords,
}

func init() {
	rootCmd.AddCommand(keywordsCmd)
	keywordsCmd.Flags().Bool("args", false, "Print only the arguments")
	keywordsCmd.Flags().Bool("doc", false, "Print only the documentation")
}

func runKeywords(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return output.Print(a.catalog.Names())
	}

	name := args[0]
	onlyArgs, _ := cmd.Flags().GetBool("args")
	onlyDoc, _ := cmd.Flags().GetBool("doc")

	var info KeywordInfo
	info.Name = name
	if !onlyDoc {
		if info.Arguments, err = a.catalog.Arguments(name); err != nil {
			return err
		}
		if onlyArgs {
			return output.Print(info.Arguments)
		}
	}
	if info.Documentation, err = a.catalog.Documentation(name); err != nil {
		return err
	}
	if onlyDoc {
		return output.Print(info.Documentation)
	}
	return output.Print(info)
}
