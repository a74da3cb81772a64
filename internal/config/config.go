// Package config loads the server's YAML configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mj1618/keyword-server/internal/docs"
	"github.com/mj1618/keyword-server/internal/library"
	"github.com/mj1618/keyword-server/internal/server"
)

// Config is the full configuration file.
type Config struct {
	Server  Server  `yaml:"server"`
	Docs    Docs    `yaml:"docs"`
	Browser Browser `yaml:"browser"`
	Log     Log     `yaml:"log"`
}

// Server configures the remote protocol listener.
type Server struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Transport string `yaml:"transport"`
	Metrics   bool   `yaml:"metrics"`
}

// Docs configures keyword documentation.
type Docs struct {
	File     string         `yaml:"file"`
	Sections []docs.Section `yaml:"sections"`
}

// Browser configures headless browser sessions.
type Browser struct {
	Default   string        `yaml:"default"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// Log configures the logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: Server{
			Host:      server.DefaultHost,
			Port:      server.DefaultPort,
			Transport: server.TransportXMLRPC,
		},
		Docs: Docs{Sections: docs.DefaultSections()},
		Browser: Browser{
			Default: library.DefaultBrowser,
			Timeout: 30 * time.Second,
		},
		Log: Log{Level: "info", Format: "console"},
	}
}

// Load reads the file at path over the defaults. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()
	cfg, err := Read(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Read decodes a configuration document over the defaults and validates it.
func Read(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parsing config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that cannot be checked by decoding alone.
func (c Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Server.Transport {
	case server.TransportXMLRPC, server.TransportStdio, server.TransportStreamableHTTP:
	default:
		return fmt.Errorf("server.transport %q: use %s, %s or %s", c.Server.Transport,
			server.TransportXMLRPC, server.TransportStdio, server.TransportStreamableHTTP)
	}
	if len(c.Docs.Sections) == 0 {
		return errors.New("docs.sections must not be empty")
	}
	if err := docs.ValidateSections(c.Docs.Sections); err != nil {
		return fmt.Errorf("docs.sections: %w", err)
	}
	if c.Browser.Timeout < 0 {
		return fmt.Errorf("browser.timeout %s must not be negative", c.Browser.Timeout)
	}
	return nil
}

// ServerConfig returns the listener settings.
func (c Config) ServerConfig() server.Config {
	return server.Config{Host: c.Server.Host, Port: c.Server.Port, ExposeMetrics: c.Server.Metrics}
}
