package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// GlobalConfig is the user-level config persisted at ~/.goalplan/config.json.
type GlobalConfig struct {
	// ServerURL is the base URL of the workspace server the TUI talks to.
	ServerURL string `json:"serverUrl,omitempty"`

	// LastCode remembers the most recently opened workspace code so the
	// editor can resume a draft without retyping it.
	LastCode string `json:"lastCode,omitempty"`

	// AckedCodes records which workspace codes the user has confirmed
	// writing down. The acknowledge prompt is shown once per code.
	AckedCodes map[string]bool `json:"ackedCodes,omitempty"`

	// UI holds optional appearance preferences for the interactive editor.
	UI *UIConfig `json:"ui,omitempty"`
}

type UIConfig struct {
	// Theme is "light" or "dark". Empty means: follow the terminal
	// background, defaulting to light.
	Theme string `json:"theme,omitempty"`
}

func (c *GlobalConfig) Acked(code string) bool {
	return c != nil && c.AckedCodes[code]
}

func (c *GlobalConfig) SetAcked(code string) {
	if c.AckedCodes == nil {
		c.AckedCodes = map[string]bool{}
	}
	c.AckedCodes[code] = true
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.goalplan).
	if v := strings.TrimSpace(os.Getenv("GOALPLAN_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".goalplan"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func LoadConfig() (*GlobalConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &GlobalConfig{}, nil
		}
		return nil, err
	}
	var cfg GlobalConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func SaveConfig(cfg *GlobalConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	// Keep a copy of the previous config as a recovery safety net; never
	// block normal usage on it.
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, "config.json.bak.*.tmp", path+".bak", prev, 0o644)
	}

	// Unique temp name + atomic rename so concurrent goalplan processes
	// cannot clobber each other mid-write.
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}
