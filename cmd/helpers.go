package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mj1618/keyword-server/internal/browser/headless"
	"github.com/mj1618/keyword-server/internal/config"
	"github.com/mj1618/keyword-server/internal/docs"
	"github.com/mj1618/keyword-server/internal/keyword"
	"github.com/mj1618/keyword-server/internal/library"
	"github.com/mj1618/keyword-server/internal/server"
)

// app is the keyword library wired to an engine and a catalog.
type app struct {
	lib     *library.Library
	engine  *keyword.Engine
	catalog *keyword.Catalog
	metrics *server.Metrics
}

func newApp(c config.Config, log *zap.Logger) (*app, error) {
	launcher := headless.NewLauncher(headless.Options{
		Timeout:   c.Browser.Timeout,
		UserAgent: c.Browser.UserAgent,
		Logger:    log,
	})
	lib := library.New(launcher,
		library.WithLogger(log),
		library.WithDefaultBrowser(c.Browser.Default),
	)

	reg := keyword.NewRegistry()
	if err := lib.Register(reg); err != nil {
		return nil, err
	}

	d := docs.NewRegistry(reg.Descriptors()...)
	if c.Docs.File != "" {
		if err := d.LoadFile(c.Docs.File); err != nil {
			return nil, fmt.Errorf("loading documentation: %w", err)
		}
	}

	metrics := server.NewMetrics()
	engine := keyword.NewEngine(reg,
		keyword.WithLogger(log),
		keyword.WithObserver(metrics.ObserveKeyword),
	)
	return &app{
		lib:     lib,
		engine:  engine,
		catalog: keyword.NewCatalog(reg, d, c.Docs.Sections),
		metrics: metrics,
	}, nil
}
