// ABOUTME: Test helpers for config tests
// ABOUTME: Isolates VCORE_* variables and the XDG config directory per test

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// withCleanEnv unsets every VCORE_* variable, points XDG_CONFIG_HOME at a
// temporary directory and sets extra. t.Setenv restores everything afterwards.
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    dir := withCleanEnv(t, map[string]string{"VCORE_REGION": "US"})
//	    writeConfigFile(t, dir, "output: json\n")
//	}
func withCleanEnv(t *testing.T, extra map[string]string) string {
	t.Helper()

	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, EnvPrefix+"_") {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	for key, value := range extra {
		t.Setenv(key, value)
	}
	return filepath.Join(xdg, "vcore-usage")
}

// writeConfigFile writes config.yaml into dir and returns its path
func writeConfigFile(t *testing.T, dir, content string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}
