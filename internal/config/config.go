// Package config loads the mirror client configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by Validate errors.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Session   SessionConfig   `yaml:"session"`
	Transport TransportConfig `yaml:"transport"`
	Status    StatusConfig    `yaml:"status"`
}

// ServerConfig locates the collaboration server.
type ServerConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Path   string `yaml:"path"`
	Secure bool   `yaml:"secure"`
}

type SessionConfig struct {
	Room       string        `yaml:"room"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

type TransportConfig struct {
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	PingInterval     time.Duration `yaml:"ping_interval"`
	PongTimeout      time.Duration `yaml:"pong_timeout"`
}

// StatusConfig controls the local diagnostics endpoint. An empty Addr disables it.
type StatusConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
			Path: "/ws",
		},
		Session: SessionConfig{
			Room:       "room",
			RetryDelay: 10 * time.Second,
		},
		Transport: TransportConfig{
			HandshakeTimeout: 45 * time.Second,
			WriteTimeout:     10 * time.Second,
			PingInterval:     30 * time.Second,
			PongTimeout:      60 * time.Second,
		},
	}
}

// Load reads path and applies it over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the values can be used to connect.
func (c *Config) Validate() error {
	switch {
	case c.Server.Host == "":
		return fmt.Errorf("%w: server.host is empty", ErrInvalid)
	case c.Server.Port <= 0 || c.Server.Port > 65535:
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalid, c.Server.Port)
	case c.Session.Room == "":
		return fmt.Errorf("%w: session.room is empty", ErrInvalid)
	case c.Session.RetryDelay <= 0:
		return fmt.Errorf("%w: session.retry_delay must be positive", ErrInvalid)
	}
	return nil
}

// Endpoint returns the WebSocket URL of the server, e.g. ws://localhost:8080/ws.
func (c *Config) Endpoint() string {
	scheme := "ws"
	if c.Server.Secure {
		scheme = "wss"
	}
	path := c.Server.Path
	if path == "" {
		path = "/ws"
	}
	u := url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port)),
		Path:   path,
	}
	return u.String()
}

// SetEndpoint overrides the server fields from a ws:// or wss:// URL made of
// scheme, host, optional port and path.
func (c *Config) SetEndpoint(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: endpoint: %v", ErrInvalid, err)
	}
	// The server section has nowhere to keep these; refuse rather than drop.
	if u.User != nil || u.RawQuery != "" || u.ForceQuery || u.Fragment != "" {
		return fmt.Errorf("%w: endpoint %q must not carry credentials, a query or a fragment", ErrInvalid, raw)
	}
	switch u.Scheme {
	case "ws":
		c.Server.Secure = false
	case "wss":
		c.Server.Secure = true
	default:
		return fmt.Errorf("%w: endpoint scheme %q, want ws or wss", ErrInvalid, u.Scheme)
	}
	host, portStr := u.Hostname(), u.Port()
	if host == "" {
		return fmt.Errorf("%w: endpoint %q has no host", ErrInvalid, raw)
	}
	port := 80
	if c.Server.Secure {
		port = 443
	}
	if portStr != "" {
		if port, err = strconv.Atoi(portStr); err != nil {
			return fmt.Errorf("%w: endpoint port %q", ErrInvalid, portStr)
		}
	}
	c.Server.Host = host
	c.Server.Port = port
	c.Server.Path = u.Path
	return nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
