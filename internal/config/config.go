// Package config resolves environment overrides and persists the
// host's small non-core config file: the last script path, the active
// theme path, and the hotkey config path, one per line.
//
// Environment resolution is wired through github.com/xyproto/env/v2
// (EUVCORE_SCRIPT_PATH, EUVCORE_CONFIG_DIR), the teacher's declared
// but previously unwired dependency — it covers this ambient concern
// cleanly since it's the same "string env var with a fallback" shape
// env/v2 is built for. The config package itself has no teacher file
// to adapt (the spec notes this layer is host-owned, not core), so
// the plain-text line format is new, built directly to spec.md §6.
package config

import (
	"bufio"
	"os"
	"path/filepath"

	env "github.com/xyproto/env/v2"
)

const configFileName = "euvcore.conf"

// State is the persisted config: last script path, active theme path,
// hotkey config path. Any field may be empty if never set.
type State struct {
	LastScriptPath string
	ThemePath      string
	HotkeyPath     string
}

// ScriptPathOverride returns EUVCORE_SCRIPT_PATH if set, else "".
func ScriptPathOverride() string {
	return env.Str("EUVCORE_SCRIPT_PATH")
}

// Dir resolves the config directory: EUVCORE_CONFIG_DIR if set,
// otherwise the OS user config directory joined with "euvcore".
func Dir() (string, error) {
	if dir := env.Str("EUVCORE_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "euvcore"), nil
}

func path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the config file, returning a zero State if it doesn't
// exist yet. Line order is LastScriptPath, ThemePath, HotkeyPath;
// a short file leaves trailing fields empty.
func Load() (State, error) {
	var s State
	p, err := path()
	if err != nil {
		return s, err
	}
	f, err := os.Open(p)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, err
	}
	defer f.Close()

	lines := make([]string, 0, 3)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return s, err
	}
	if len(lines) > 0 {
		s.LastScriptPath = lines[0]
	}
	if len(lines) > 1 {
		s.ThemePath = lines[1]
	}
	if len(lines) > 2 {
		s.HotkeyPath = lines[2]
	}
	return s, nil
}

// Save writes s to the config file, creating the config directory if
// needed.
func Save(s State) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	p, err := path()
	if err != nil {
		return err
	}
	content := s.LastScriptPath + "\n" + s.ThemePath + "\n" + s.HotkeyPath + "\n"
	return os.WriteFile(p, []byte(content), 0o644)
}
