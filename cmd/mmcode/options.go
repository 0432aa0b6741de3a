package main

import (
	"github.com/spf13/cobra"

	"github.com/mm-code/mirror/internal/config"
)

// options are the flags shared by edit and config.
type options struct {
	configPath string
	url        string
	room       string
	statusAddr string
}

func (o *options) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.configPath, "config", "c", "", "Path to a YAML config file")
	f.StringVar(&o.url, "url", "", "WebSocket URL of the collaboration server (overrides config)")
	f.StringVar(&o.room, "room", "", "Room name sent in the join frame (overrides config)")
	f.StringVar(&o.statusAddr, "status-addr", "", "Serve /healthz, /status and /metrics on this address")
}

// load reads the config file, or the defaults when none is given, and
// applies flag overrides.
func (o *options) load() (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}
	if o.url != "" {
		if err := cfg.SetEndpoint(o.url); err != nil {
			return nil, err
		}
	}
	if o.room != "" {
		cfg.Session.Room = o.room
	}
	if o.statusAddr != "" {
		cfg.Status.Addr = o.statusAddr
	}
	return cfg, cfg.Validate()
}
