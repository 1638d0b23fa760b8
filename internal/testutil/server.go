package testutil

import (
	"net/http/httptest"
	"testing"

	"github.com/zafrem/data-detector/batch"
	"github.com/zafrem/data-detector/detect"
	"github.com/zafrem/data-detector/internal/server"
	"github.com/zafrem/data-detector/rules"
	"github.com/zafrem/data-detector/token"
)

// StartServer wires a fully featured API server over the embedded rules and
// returns it with the backing store, so tests can drive reloads. The server
// is shut down with the test.
func StartServer(t *testing.T, paths ...string) (*httptest.Server, *rules.Store) {
	t.Helper()

	var (
		reg *rules.Registry
		err error
	)
	if len(paths) > 0 {
		reg, err = rules.Load(paths...)
	} else {
		reg, err = rules.LoadDefault()
	}
	if err != nil {
		t.Fatal(err)
	}
	store := rules.NewStore(reg, paths...)

	engine, err := detect.New(store)
	if err != nil {
		t.Fatal(err)
	}
	tk, err := token.New(engine)
	if err != nil {
		t.Fatal(err)
	}
	sc, err := batch.New(engine)
	if err != nil {
		t.Fatal(err)
	}

	srv := server.NewServer(engine,
		server.WithStore(store),
		server.WithTokenizer(tk),
		server.WithScanner(sc),
		server.WithVersion("test"),
	)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts, store
}
