package cmd

import (
	"bytes"
	"testing"

	"github.com/mj1618/keyword-server/internal/output"
)

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	old := output.Stdout
	output.Stdout = &buf
	defer func() { output.Stdout = old }()

	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	expected := []string{"serve", "keywords", "do", "remote"}
	commands := rootCmd.Commands()

	found := make(map[string]bool)
	for _, c := range commands {
		found[c.Name()] = true
	}

	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	if rootCmd.Version == "" {
		t.Error("root command version should be set")
	}
}

func TestRootCommand_RejectsUnknownFormat(t *testing.T) {
	if _, err := execute(t, "keywords", "--format", "xml"); err == nil {
		t.Error("expected error for unsupported format")
	}
	defer rootCmd.PersistentFlags().Set("log-level", "")
	if _, err := execute(t, "keywords", "--format", "yaml", "--log-level", "chatty"); err == nil {
		t.Error("expected error for unknown log level")
	}
}
