package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveThenLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("EUVCORE_CONFIG_DIR", dir)

	want := State{LastScriptPath: "/tmp/a.euv", ThemePath: "/tmp/theme.json", HotkeyPath: "/tmp/hotkeys.json"}
	if err := Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestLoadReturnsZeroStateWhenFileMissing(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("EUVCORE_CONFIG_DIR", dir)

	got, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != (State{}) {
		t.Fatalf("got %+v, want zero State", got)
	}
}

func TestDirHonorsEnvOverride(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "custom")
	t.Setenv("EUVCORE_CONFIG_DIR", dir)
	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir failed: %v", err)
	}
	if got != dir {
		t.Fatalf("Dir() = %q, want %q", got, dir)
	}
}

func TestScriptPathOverrideReadsEnvVar(t *testing.T) {
	t.Setenv("EUVCORE_SCRIPT_PATH", "/tmp/override.euv")
	if got := ScriptPathOverride(); got != "/tmp/override.euv" {
		t.Fatalf("ScriptPathOverride() = %q", got)
	}
}

func TestSaveCreatesConfigDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "config")
	t.Setenv("EUVCORE_CONFIG_DIR", dir)
	if err := Save(State{LastScriptPath: "x"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, configFileName)); err != nil {
		t.Fatalf("expected config file to exist: %v", err)
	}
}
