package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mm-code/mirror/internal/app"
	"github.com/mm-code/mirror/internal/editor"
	"github.com/mm-code/mirror/internal/session"
	"github.com/mm-code/mirror/internal/statusd"
	"github.com/mm-code/mirror/internal/transport"
)

// errNotUTF8 rejects files the editor would rewrite on save.
var errNotUTF8 = errors.New("file is not valid UTF-8")

func editCmd() *cobra.Command {
	var (
		opts      options
		autostart bool
	)

	cmd := &cobra.Command{
		Use:   "edit [file...]",
		Short: "Open files in the mirroring editor",
		Long: `Open files in the editor. Press ctrl+t to start mirroring to the
server and again to stop. Files that do not exist yet are created on save.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			ws := editor.NewWorkspace()
			if err := openFiles(ws, args); err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			notes := app.NewNotifier()
			mgr := session.New(session.Config{
				URL:        cfg.Endpoint(),
				Room:       cfg.Session.Room,
				RetryDelay: cfg.Session.RetryDelay,
			}, transport.NewDialer(cfg.Transport), ws, ws,
				session.WithNotifier(notes),
				session.WithMetrics(session.NewMetrics(reg)),
			)
			defer mgr.Stop()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			if cfg.Status.Addr != "" {
				go func() {
					if err := statusd.Serve(ctx, cfg.Status.Addr, statusd.NewRouter(mgr, reg)); err != nil {
						glog.Errorf("[statusd] %v", err)
					}
				}()
			}

			if autostart {
				mgr.Start()
			}

			p := tea.NewProgram(app.New(mgr, ws, notes), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("run ui: %w", err)
			}
			return nil
		},
	}
	opts.register(cmd)
	cmd.Flags().BoolVar(&autostart, "autostart", false, "Start mirroring immediately")
	return cmd
}

// openFiles loads each path into ws. Missing files open empty; files that are
// not UTF-8 are refused.
func openFiles(ws *editor.Workspace, paths []string) error {
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(abs)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("open %s: %w", p, err)
		}
		if !utf8.Valid(data) {
			return fmt.Errorf("open %s: %w", p, errNotUTF8)
		}
		ws.Open(abs, string(data))
	}
	if len(paths) > 1 {
		// Leave the first file active.
		ws.Next()
	}
	return nil
}
