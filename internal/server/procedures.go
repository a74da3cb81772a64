package server

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/mj1618/keyword-server/internal/failure"
	"github.com/mj1618/keyword-server/internal/xmlrpc"
)

// Remote procedure names.
const (
	ProcGetKeywordNames         = "get_keyword_names"
	ProcGetKeywordArguments     = "get_keyword_arguments"
	ProcGetKeywordDocumentation = "get_keyword_documentation"
	ProcRunKeyword              = "run_keyword"
	ProcStopRemoteServer        = "stop_remote_server"
)

// unknownProcedure is the metrics label for calls to names outside the
// procedure table.
const unknownProcedure = "unknown"

type procedure func(s *Server, ctx context.Context, params []any) (any, error)

var procedures = map[string]procedure{
	ProcGetKeywordNames:         (*Server).getKeywordNames,
	ProcGetKeywordArguments:     (*Server).getKeywordArguments,
	ProcGetKeywordDocumentation: (*Server).getKeywordDocumentation,
	ProcRunKeyword:              (*Server).runKeyword,
	ProcStopRemoteServer:        (*Server).stopRemoteServer,
}

// Procedures lists the exposed procedure names, sorted.
func Procedures() []string {
	names := make([]string, 0, len(procedures))
	for n := range procedures {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs one remote procedure. Failures that are not part of a
// keyword result are returned as *xmlrpc.Fault.
func (s *Server) Dispatch(ctx context.Context, method string, params []any) (any, error) {
	proc, ok := procedures[method]
	if !ok {
		s.metrics.observeProcedure(unknownProcedure, "fault")
		return nil, &xmlrpc.Fault{Code: xmlrpc.FaultUnknownProcedure, Message: fmt.Sprintf("unknown procedure %q", method)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Debug("procedure call", zap.String("procedure", method), zap.Int("params", len(params)))
	result, err := proc(s, ctx, params)
	if err != nil {
		s.metrics.observeProcedure(method, "fault")
		return nil, err
	}
	s.metrics.observeProcedure(method, "ok")
	return result, nil
}

func (s *Server) getKeywordNames(_ context.Context, params []any) (any, error) {
	if err := arity(params, 0, 0); err != nil {
		return nil, err
	}
	return s.catalog.Names(), nil
}

func (s *Server) getKeywordArguments(_ context.Context, params []any) (any, error) {
	name, err := nameParam(params)
	if err != nil {
		return nil, err
	}
	args, err := s.catalog.Arguments(name)
	if err != nil {
		return nil, introspectionFault(err)
	}
	return args, nil
}

func (s *Server) getKeywordDocumentation(_ context.Context, params []any) (any, error) {
	name, err := nameParam(params)
	if err != nil {
		return nil, err
	}
	doc, err := s.catalog.Documentation(name)
	if err != nil {
		return nil, introspectionFault(err)
	}
	return doc, nil
}

func (s *Server) runKeyword(ctx context.Context, params []any) (any, error) {
	if err := arity(params, 1, 3); err != nil {
		return nil, err
	}
	name, ok := params[0].(string)
	if !ok {
		return nil, malformed("keyword name must be a string, got %T", params[0])
	}
	var args []string
	if len(params) > 1 {
		list, ok := params[1].([]any)
		if !ok {
			return nil, malformed("keyword arguments must be an array, got %T", params[1])
		}
		args = make([]string, len(list))
		for i, a := range list {
			args[i] = argString(a)
		}
	}
	if len(params) > 2 {
		named, ok := params[2].(map[string]any)
		if !ok {
			return nil, malformed("named arguments must be a struct, got %T", params[2])
		}
		args = append(args, namedArgs(named)...)
	}
	return s.engine.Invoke(ctx, name, args).Wire(), nil
}

func (s *Server) stopRemoteServer(_ context.Context, params []any) (any, error) {
	s.log.Info("stop requested by remote client")
	s.Stop()
	return true, nil
}

// introspectionFault reports an unknown keyword during introspection as a
// fault, unlike run_keyword which reports it in the result envelope.
func introspectionFault(err error) error {
	code := xmlrpc.FaultMalformedRequest
	if failure.KindOf(err) == failure.KindLookup {
		code = xmlrpc.FaultUnknownKeyword
	}
	return &xmlrpc.Fault{Code: code, Message: err.Error()}
}

func nameParam(params []any) (string, error) {
	if err := arity(params, 1, 1); err != nil {
		return "", err
	}
	name, ok := params[0].(string)
	if !ok {
		return "", malformed("keyword name must be a string, got %T", params[0])
	}
	return name, nil
}

func arity(params []any, lo, hi int) error {
	if len(params) < lo || len(params) > hi {
		if lo == hi {
			return malformed("expected %d parameters, got %d", lo, len(params))
		}
		return malformed("expected %d to %d parameters, got %d", lo, hi, len(params))
	}
	return nil
}

func malformed(format string, args ...any) error {
	return &xmlrpc.Fault{Code: xmlrpc.FaultMalformedRequest, Message: fmt.Sprintf(format, args...)}
}

func argString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

// namedArgs renders named arguments as name=value, sorted by name.
func namedArgs(named map[string]any) []string {
	keys := make([]string, 0, len(named))
	for k := range named {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k + "=" + argString(named[k])
	}
	return out
}
