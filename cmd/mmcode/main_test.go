package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/mm-code/mirror/internal/editor"
)

func TestOptionsOverrideConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mmcode.yaml")
	if err := os.WriteFile(path, []byte("session:\n  room: from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := options{configPath: path, url: "wss://collab.example.com/mirror", statusAddr: ":9090"}
	cfg, err := opts.load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assert.Equal(t, cfg.Endpoint(), "wss://collab.example.com:443/mirror")
	assert.Equal(t, cfg.Session.Room, "from-file")
	assert.Equal(t, cfg.Status.Addr, ":9090")
}

func TestOptionsRejectBadURL(t *testing.T) {
	opts := options{url: "http://localhost"}
	if _, err := opts.load(); err == nil {
		t.Error("expected error for non-websocket URL")
	}
}

func TestOpenFiles(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(existing, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "b.txt")

	ws := editor.NewWorkspace()
	if err := openFiles(ws, []string{existing, missing}); err != nil {
		t.Fatalf("openFiles: %v", err)
	}

	paths, active := ws.Files()
	assert.Equal(t, paths, []string{existing, missing})
	assert.Equal(t, active, 0)
	doc, _ := ws.ActiveDocument()
	assert.Equal(t, doc.Text, "hello")
}

func TestConfigCommandPrintsYAML(t *testing.T) {
	cmd := configCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--room", "pairing"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config: %v", err)
	}
	if !strings.Contains(out.String(), "room: pairing") {
		t.Errorf("output missing room:\n%s", out.String())
	}
}

func TestOpenFilesRefusesNonUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latin1.txt")
	if err := os.WriteFile(path, []byte("caf\xe9\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ws := editor.NewWorkspace()
	err := openFiles(ws, []string{path})
	if !errors.Is(err, errNotUTF8) {
		t.Fatalf("openFiles error = %v, want errNotUTF8", err)
	}
	if _, ok := ws.ActiveDocument(); ok {
		t.Error("non-UTF-8 file was opened")
	}

	data, _ := os.ReadFile(path)
	assert.Equal(t, string(data), "caf\xe9\n")
}
