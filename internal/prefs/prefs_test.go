package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	tmp := t.TempDir()
	p, err := Load(filepath.Join(tmp, "prefs.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
	if p.LastPrinter != "" {
		t.Fatalf("LastPrinter = %q, want empty", p.LastPrinter)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "nested", "prefs.toml")

	saved := Prefs{Theme: "Nord", LastPrinter: "hp-laserjet-01"}
	if err := Save(path, saved); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded != saved {
		t.Fatalf("round trip mismatch: got %+v, want %+v", loaded, saved)
	}
}

func TestLoad_CorruptFileDegradesToDefaults(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "prefs.toml")
	if err := os.WriteFile(path, []byte("theme = {{{\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want default on corrupt file", p.Theme)
	}
}

func TestLoad_EmptyThemeFallsBack(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "prefs.toml")
	if err := os.WriteFile(path, []byte("theme = \"\"\nlast_printer = \"epson-2\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want default", p.Theme)
	}
	if p.LastPrinter != "epson-2" {
		t.Fatalf("LastPrinter = %q, want epson-2", p.LastPrinter)
	}
}
