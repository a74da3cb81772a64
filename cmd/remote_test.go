package cmd

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mj1618/keyword-server/internal/keyword"
	"github.com/mj1618/keyword-server/internal/server"
)

func newRemote(t *testing.T) (*httptest.Server, *server.Server) {
	t.Helper()
	engine := testEngine(t)
	srv := server.New(server.Config{}, engine, keyword.NewCatalog(engine.Registry(), nil, nil))
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, srv
}

func TestRemote_Introspection(t *testing.T) {
	ts, _ := newRemote(t)

	out, err := execute(t, "remote", "--url", ts.URL+"/RPC2", "--format", "json", "names")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != `["boom","ok","silent"]` {
		t.Errorf("names: got %s", out)
	}

	if _, err := execute(t, "remote", "--url", ts.URL, "--format", "json", "args", "missing"); err == nil {
		t.Error("expected a fault for an unknown keyword")
	}
}

func TestRemote_Run(t *testing.T) {
	ts, _ := newRemote(t)

	out, err := execute(t, "remote", "--url", ts.URL, "--format", "json", "run", "ok", "a", "b")
	if err != nil {
		t.Fatal(err)
	}
	var res map[string]interface{}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if res["status"] != "PASS" || res["return"] != "a,b" {
		t.Errorf("result: got %v", res)
	}

	if _, err := execute(t, "remote", "--url", ts.URL, "--format", "json", "run", "boom"); err == nil {
		t.Error("a failing keyword should fail the command")
	}
}

func TestRemote_Stop(t *testing.T) {
	ts, srv := newRemote(t)
	if _, err := execute(t, "remote", "--url", ts.URL, "--format", "json", "stop"); err != nil {
		t.Fatal(err)
	}
	select {
	case <-srv.Stopped():
	default:
		t.Error("server should have been asked to stop")
	}
}
