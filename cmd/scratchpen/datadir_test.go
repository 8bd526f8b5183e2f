// ABOUTME: Test suite for XDG data directory resolution.
// ABOUTME: Covers the XDG_DATA_HOME override, the home fallback, and explicit overrides.

package main

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultDataDirUsesXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

	dir, err := defaultDataDir()
	if err != nil {
		t.Fatalf("defaultDataDir failed: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg-data", "scratchpen") {
		t.Errorf("expected XDG-based dir, got %q", dir)
	}
}

func TestDefaultDataDirFallsBackToHome(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", "/tmp/fake-home")

	dir, err := defaultDataDir()
	if err != nil {
		t.Fatalf("defaultDataDir failed: %v", err)
	}
	if !strings.HasSuffix(dir, filepath.Join(".local", "share", "scratchpen")) {
		t.Errorf("expected ~/.local/share/scratchpen suffix, got %q", dir)
	}
}

func TestResolveDataDirPrefersOverride(t *testing.T) {
	dir, err := resolveDataDir("/explicit/path")
	if err != nil {
		t.Fatalf("resolveDataDir failed: %v", err)
	}
	if dir != "/explicit/path" {
		t.Errorf("expected explicit override, got %q", dir)
	}
}
