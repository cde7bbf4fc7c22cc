// Package config tests validate config loading behavior.
package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestLoadAppliesDefaults confirms defaults are applied on load.
func TestLoadAppliesDefaults(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "biblioteca.yaml")
	if err := os.WriteFile(p, []byte("db:\n  path: ./x.db\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.HTTP.Port != 3000 {
		t.Fatalf("expected default http.port 3000, got %d", c.HTTP.Port)
	}
	if c.Log.Level != "info" {
		t.Fatalf("expected default log.level info, got %q", c.Log.Level)
	}
	if c.DB.Path != "./x.db" {
		t.Fatalf("unexpected db.path %q", c.DB.Path)
	}
}

// TestLoadRejectsBadPort confirms out-of-range ports fail validation.
func TestLoadRejectsBadPort(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "biblioteca.yaml")
	if err := os.WriteFile(p, []byte("http:\n  port: 70000\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(p); err == nil {
		t.Fatalf("expected error for invalid port")
	}
}
