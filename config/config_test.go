package config

import (
	"os"
	"path/filepath"
	"testing"

	"proofcanvas/layout"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UserName != "anonymous" || cfg.HistoryDepth != 50 {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Layout.XSpacing != layout.DefaultXSpacing {
		t.Errorf("layout default = %v", cfg.Layout.XSpacing)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rc.yaml")
	content := `
userName: ada
cursorColor: "#ff0000"
cursorHub: ws://localhost:8787/cursors
historyDepth: 10
layout:
  xSpacing: 300
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UserName != "ada" || cfg.CursorHub != "ws://localhost:8787/cursors" || cfg.HistoryDepth != 10 {
		t.Errorf("cfg = %+v", cfg)
	}
	// Unset fields keep their defaults.
	if cfg.Layout.YSpacing != layout.DefaultYSpacing {
		t.Errorf("ySpacing = %v, want default", cfg.Layout.YSpacing)
	}

	l := cfg.NewLayout()
	if l.XSpacing != 300 || l.YSpacing != layout.DefaultYSpacing {
		t.Errorf("layout engine = %+v", l)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rc.yaml")
	if err := os.WriteFile(path, []byte(":\nnot yaml ["), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed config accepted")
	}
}

func TestLoadSanitizesHistoryDepth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rc.yaml")
	if err := os.WriteFile(path, []byte("historyDepth: -3"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HistoryDepth != 50 {
		t.Errorf("historyDepth = %d, want fallback 50", cfg.HistoryDepth)
	}
}
