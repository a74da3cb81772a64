package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/keyword-server/internal/keyword"
	"github.com/mj1618/keyword-server/internal/output"
)

// Step is one keyword call of a batch.
type Step struct {
	Keyword string
	Args    []string
}

// DoResult is the output of a batch do command.
type DoResult struct {
	OK        bool         `yaml:"ok"              json:"ok"`
	Steps     int          `yaml:"steps"           json:"steps"`
	Completed int          `yaml:"completed"       json:"completed"`
	Error     string       `yaml:"error,omitempty" json:"error,omitempty"`
	Results   []StepResult `yaml:"results"         json:"results"`
}

// StepResult is the envelope of a single step within a batch.
type StepResult struct {
	Step    int            `yaml:"step"           json:"step"`
	Keyword string         `yaml:"keyword"        json:"keyword"`
	Args    []string       `yaml:"args,omitempty" json:"args,omitempty"`
	Result  keyword.Result `yaml:"result"         json:"result"`
}

var doCmd = &cobra.Command{
	Use:   "do",
	Short: "Run a batch of keywords locally",
	Long: `Run a sequence of keywords from a YAML list on stdin, in one library
session, and print every result envelope.

Each step maps a keyword name to its positional arguments: a list, a single
scalar, or nothing. By default execution stops at the first failing step.

Example:
  keyword-server do <<'EOF'
  - open_browser
  - go_to: http://localhost:8000/login
  - input_text: [user, ada]
  - click_button: login
  - title_should_be: Welcome
  EOF`,
	RunE: runDo,
}

func init() {
	rootCmd.AddCommand(doCmd)
	doCmd.Flags().Bool("stop-on-error", true, "Stop execution on first failing step")
}

func runDo(cmd *cobra.Command, args []string) error {
	stopOnError, _ := cmd.Flags().GetBool("stop-on-error")

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	steps, err := parseSteps(data)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.lib.Close(); err != nil {
			logger.Warn("closing browser", zap.Error(err))
		}
	}()

	result := runSteps(cmd.Context(), a.engine, steps, stopOnError)
	if err := output.Print(result); err != nil {
		return err
	}
	if !result.OK {
		return fmt.Errorf("%s", result.Error)
	}
	return nil
}

// parseSteps decodes a YAML list of steps. A step is either a bare keyword
// name or a single-key map from keyword name to its arguments.
func parseSteps(data []byte) ([]Step, error) {
	var raw []interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML steps: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("no steps provided: expected a YAML list of keywords")
	}

	steps := make([]Step, 0, len(raw))
	for i, item := range raw {
		n := i + 1
		switch v := item.(type) {
		case string:
			steps = append(steps, Step{Keyword: v})
		case map[string]interface{}:
			if len(v) != 1 {
				keys := make([]string, 0, len(v))
				for k := range v {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				return nil, fmt.Errorf("step %d: expected exactly one keyword, got %v", n, keys)
			}
			for name, params := range v {
				args, err := stepArgs(params)
				if err != nil {
					return nil, fmt.Errorf("step %d (%s): %w", n, name, err)
				}
				steps = append(steps, Step{Keyword: name, Args: args})
			}
		default:
			return nil, fmt.Errorf("step %d: expected a keyword name or a map, got %T", n, item)
		}
	}
	return steps, nil
}

func stepArgs(params interface{}) ([]string, error) {
	switch v := params.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		args := make([]string, len(v))
		for i, a := range v {
			s, err := scalar(a)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i+1, err)
			}
			args[i] = s
		}
		return args, nil
	default:
		s, err := scalar(v)
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	}
}

func scalar(v interface{}) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(x), nil
	default:
		return "", fmt.Errorf("arguments must be scalars, got %T", v)
	}
}

// runSteps invokes each step in order through engine.
func runSteps(ctx context.Context, engine *keyword.Engine, steps []Step, stopOnError bool) DoResult {
	out := DoResult{Steps: len(steps), Results: make([]StepResult, 0, len(steps))}
	failed := false
	for i, step := range steps {
		res := engine.Invoke(ctx, step.Keyword, step.Args)
		out.Results = append(out.Results, StepResult{Step: i + 1, Keyword: step.Keyword, Args: step.Args, Result: res})
		if res.Passed() {
			out.Completed++
			continue
		}
		if !failed {
			failed = true
			out.Error = fmt.Sprintf("step %d (%s): %s", i+1, step.Keyword, res.Error)
		}
		if stopOnError {
			break
		}
	}
	out.OK = !failed
	return out
}
