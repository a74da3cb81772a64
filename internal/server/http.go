package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/mj1618/keyword-server/internal/xmlrpc"
)

const maxRequestBytes = 16 << 20

// Router returns the HTTP handler: XML-RPC on / and /RPC2, and Prometheus
// metrics on /metrics when enabled.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/", s.handleRPC)
	r.Post("/RPC2", s.handleRPC)
	if s.metrics != nil && s.cfg.ExposeMetrics {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	return r
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	call, err := xmlrpc.DecodeCall(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		s.log.Debug("malformed request", zap.Error(err))
		s.writeFault(w, &xmlrpc.Fault{Code: xmlrpc.FaultMalformedRequest, Message: err.Error()})
		return
	}

	result, err := s.Dispatch(r.Context(), call.Method, call.Params)
	if err != nil {
		var fault *xmlrpc.Fault
		if !errors.As(err, &fault) {
			fault = &xmlrpc.Fault{Code: xmlrpc.FaultMalformedRequest, Message: err.Error()}
		}
		s.writeFault(w, fault)
		return
	}

	var buf bytes.Buffer
	if err := xmlrpc.EncodeResponse(&buf, result); err != nil {
		s.log.Error("encoding response", zap.String("procedure", call.Method), zap.Error(err))
		s.writeFault(w, &xmlrpc.Fault{Code: xmlrpc.FaultMalformedRequest, Message: err.Error()})
		return
	}
	writeXML(w, buf.Bytes())
}

func (s *Server) writeFault(w http.ResponseWriter, f *xmlrpc.Fault) {
	var buf bytes.Buffer
	if err := xmlrpc.EncodeFault(&buf, f.Code, f.Message); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeXML(w, buf.Bytes())
}

func writeXML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
