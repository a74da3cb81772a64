package keyword

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mj1618/keyword-server/internal/failure"
)

// Status is the outcome of one keyword invocation.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

// Result is the envelope returned for every invocation.
type Result struct {
	Status    Status       `yaml:"status" json:"status"`
	Return    any          `yaml:"return" json:"return"`
	Output    string       `yaml:"output" json:"output"`
	Error     string       `yaml:"error" json:"error"`
	Traceback string       `yaml:"traceback" json:"traceback"`
	Kind      failure.Kind `yaml:"kind,omitempty" json:"kind,omitempty"`
}

// Passed reports whether the invocation succeeded.
func (r Result) Passed() bool {
	return r.Status == StatusPass
}

// Wire returns the five-field struct sent to remote clients.
func (r Result) Wire() map[string]any {
	ret := r.Return
	if ret == nil {
		ret = ""
	}
	return map[string]any{
		"status":    string(r.Status),
		"return":    ret,
		"output":    r.Output,
		"error":     r.Error,
		"traceback": r.Traceback,
	}
}

// Observer is notified after every invocation.
type Observer func(name string, res Result, elapsed time.Duration)

// Engine invokes keywords from a Registry. It does not serialize calls;
// callers that share an Engine across goroutines must do that themselves.
type Engine struct {
	reg      *Registry
	log      *zap.Logger
	observer Observer
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithObserver registers a callback run after each invocation.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// NewEngine creates an engine over reg.
func NewEngine(reg *Registry, opts ...Option) *Engine {
	e := &Engine{reg: reg, log: zap.NewNop()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Registry returns the keyword table the engine runs.
func (e *Engine) Registry() *Registry {
	return e.reg
}

// Invoke runs a keyword with positional arguments. It never panics and never
// returns an error: every failure, including an unknown name, is reported in
// the Result. Output written by the keyword is captured in Result.Output.
func (e *Engine) Invoke(ctx context.Context, name string, args []string) (res Result) {
	start := time.Now()
	var out bytes.Buffer
	defer func() {
		res.Output = out.String()
		if res.Status == StatusFail {
			e.log.Info("keyword failed",
				zap.String("keyword", name),
				zap.Stringer("kind", res.Kind),
				zap.String("error", res.Error))
		}
		if e.observer != nil {
			e.observer(name, res, time.Since(start))
		}
	}()

	k, ok := e.reg.Lookup(name)
	if !ok {
		return failed(failure.Lookupf("No keyword with name '%s' found.", name))
	}
	bound, err := k.bind(args)
	if err != nil {
		return failed(err)
	}

	ret, err := e.call(ctx, k, bound, &out)
	if err != nil {
		return failed(err)
	}
	return Result{Status: StatusPass, Return: Marshal(ret)}
}

func (e *Engine) call(ctx context.Context, k *Keyword, args []string, out *bytes.Buffer) (ret any, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = failure.Recovered(v)
		}
	}()
	if ctx == nil {
		ctx = context.Background()
	}
	return k.Handler(&Call{Ctx: ctx, Name: k.Name, Args: args, Out: out, engine: e})
}

// bind checks arity and fills in defaults for omitted optional parameters.
func (k *Keyword) bind(args []string) ([]string, error) {
	req, most := k.required(), len(k.Params)
	if len(args) < req || len(args) > most {
		return nil, failure.Usagef("Keyword '%s' expected %s, got %d.", k.Name, arity(req, most), len(args))
	}
	bound := make([]string, most)
	copy(bound, args)
	for i := len(args); i < most; i++ {
		bound[i] = k.Params[i].Default
	}
	return bound, nil
}

func arity(req, most int) string {
	plural := func(n int) string {
		if n == 1 {
			return "1 argument"
		}
		return strconv.Itoa(n) + " arguments"
	}
	if req == most {
		return plural(most)
	}
	return strconv.Itoa(req) + " to " + plural(most)
}

// failed builds a FAIL envelope. Error is never empty, even when err's
// message is.
func failed(err error) Result {
	kind := failure.KindOf(err)
	msg := err.Error()
	if strings.TrimSpace(msg) == "" {
		msg = fmt.Sprintf("%s with no message (%T)", kind, err)
	}
	return Result{
		Status:    StatusFail,
		Return:    "",
		Error:     msg,
		Traceback: failure.Traceback(err),
		Kind:      kind,
	}
}
