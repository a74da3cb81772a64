package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mj1618/keyword-server/internal/docs"
	"github.com/mj1618/keyword-server/internal/keyword"
)

func TestParseSteps(t *testing.T) {
	steps, err := parseSteps([]byte(`
- open_browser
- go_to: http://localhost/
- input_text: [user, ada]
- get_table_cell: [grid, 1, 2]
- select_checkbox:
`))
	if err != nil {
		t.Fatal(err)
	}
	want := []Step{
		{Keyword: "open_browser"},
		{Keyword: "go_to", Args: []string{"http://localhost/"}},
		{Keyword: "input_text", Args: []string{"user", "ada"}},
		{Keyword: "get_table_cell", Args: []string{"grid", "1", "2"}},
		{Keyword: "select_checkbox"},
	}
	if len(steps) != len(want) {
		t.Fatalf("got %d steps, want %d", len(steps), len(want))
	}
	for i := range want {
		if steps[i].Keyword != want[i].Keyword || strings.Join(steps[i].Args, "|") != strings.Join(want[i].Args, "|") {
			t.Errorf("step %d: got %+v, want %+v", i+1, steps[i], want[i])
		}
	}
}

func TestParseSteps_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"not a list", "open_browser: firefox"},
		{"two keys", "- {go_to: a, refresh: b}"},
		{"nested args", "- input_text: [user, {x: 1}]"},
		{"number step", "- 42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseSteps([]byte(tt.doc)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func testEngine(t *testing.T) *keyword.Engine {
	t.Helper()
	reg := keyword.NewRegistry()
	reg.MustRegister(
		keyword.Keyword{
			Name: "ok", Owner: "test",
			Params: []docs.Param{docs.Optional("a", ""), docs.Optional("b", "")},
			Handler: func(c *keyword.Call) (any, error) {
				return strings.Join(c.Args, ","), nil
			},
		},
		keyword.Keyword{Name: "boom", Owner: "test", Handler: func(c *keyword.Call) (any, error) {
			return nil, errors.New("boom")
		}},
		keyword.Keyword{Name: "silent", Owner: "test", Handler: func(c *keyword.Call) (any, error) {
			return nil, errors.New("")
		}},
	)
	return keyword.NewEngine(reg)
}

func TestRunSteps(t *testing.T) {
	steps := []Step{{Keyword: "ok"}, {Keyword: "boom"}, {Keyword: "ok"}}

	res := runSteps(context.Background(), testEngine(t), steps, true)
	if res.OK {
		t.Error("batch with a failing step should not be ok")
	}
	if res.Completed != 1 || len(res.Results) != 2 {
		t.Errorf("stop on error: completed %d, results %d; want 1, 2", res.Completed, len(res.Results))
	}
	if res.Error != "step 2 (boom): boom" {
		t.Errorf("error: got %q", res.Error)
	}

	res = runSteps(context.Background(), testEngine(t), steps, false)
	if res.Completed != 2 || len(res.Results) != 3 {
		t.Errorf("continue on error: completed %d, results %d; want 2, 3", res.Completed, len(res.Results))
	}

	res = runSteps(context.Background(), testEngine(t), []Step{{Keyword: "ok"}, {Keyword: "silent"}}, false)
	if res.OK {
		t.Error("a step failing with an empty message should still fail the batch")
	}
	if res.Error == "" {
		t.Error("batch error should describe the failing step")
	}

	res = runSteps(context.Background(), testEngine(t), []Step{{Keyword: "ok"}, {Keyword: "missing"}}, true)
	if res.Results[1].Result.Error != "No keyword with name 'missing' found." {
		t.Errorf("unknown keyword: got %q", res.Results[1].Result.Error)
	}
}

func TestDoCommand_HeadlessSession(t *testing.T) {
	rootCmd.SetIn(strings.NewReader(`
- open_browser
- url_should_be: about:blank
- get_window_count
- page_should_contain_element: missing
- get_title
`))
	defer rootCmd.SetIn(nil)

	out, err := execute(t, "do", "--format", "json")
	if err == nil {
		t.Fatal("expected the failing step to fail the command")
	}

	var res map[string]interface{}
	if jerr := json.Unmarshal([]byte(out), &res); jerr != nil {
		t.Fatalf("output is not JSON: %v\n%s", jerr, out)
	}
	if res["completed"] != float64(3) {
		t.Errorf("completed: got %v, want 3", res["completed"])
	}
	results := res["results"].([]interface{})
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}
	last := results[3].(map[string]interface{})["result"].(map[string]interface{})
	if last["status"] != "FAIL" || last["kind"] != "VerificationFailure" {
		t.Errorf("last result: got %v", last)
	}
	if !strings.Contains(err.Error(), "step 4 (page_should_contain_element)") {
		t.Errorf("error: got %q", err)
	}
}
