package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/five82/coloringbook/internal/colorbook"
)

// isolate points HOME and the working directory at temp dirs and clears the
// environment overrides.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	for _, key := range []string{EnvServerURL, EnvAppToken, EnvLogFile, EnvLogLevel, EnvPrintDir, EnvWorkers} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return home
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServerURL != colorbook.DefaultServerURL {
		t.Fatalf("ServerURL = %q, want %q", cfg.ServerURL, colorbook.DefaultServerURL)
	}
	if cfg.AppToken != "" {
		t.Fatalf("AppToken = %q, want empty", cfg.AppToken)
	}
	wantLog, err := expandPath(defaultLogFile)
	if err != nil {
		t.Fatalf("expandPath(defaultLogFile) returned error: %v", err)
	}
	if cfg.LogFile != wantLog {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, wantLog)
	}
	if !strings.HasPrefix(cfg.PrintDir, home) {
		t.Fatalf("PrintDir = %q, want it under HOME %q", cfg.PrintDir, home)
	}
	if cfg.Workers != defaultWorkers {
		t.Fatalf("Workers = %d, want %d", cfg.Workers, defaultWorkers)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := isolate(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
server_url = "  http://10.0.0.5:8080/  "
app_token = " secret "
log_file = "  ~/logs/cb.log  "
log_level = "DEBUG"
print_dir = "~/prints"
workers = 8
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServerURL != "http://10.0.0.5:8080" {
		t.Fatalf("ServerURL = %q, want %q", cfg.ServerURL, "http://10.0.0.5:8080")
	}
	if cfg.AppToken != "secret" {
		t.Fatalf("AppToken = %q, want %q", cfg.AppToken, "secret")
	}
	if cfg.LogFile != filepath.Join(home, "logs", "cb.log") {
		t.Fatalf("LogFile = %q, want it under HOME %q", cfg.LogFile, home)
	}
	if cfg.PrintDir != filepath.Join(home, "prints") {
		t.Fatalf("PrintDir = %q, want %q", cfg.PrintDir, filepath.Join(home, "prints"))
	}
	if cfg.Workers != 8 {
		t.Fatalf("Workers = %d, want 8", cfg.Workers)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("SlogLevel = %v, want %v", cfg.SlogLevel(), slog.LevelDebug)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
server_url = "   "
log_level = ""
workers = 0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServerURL != colorbook.DefaultServerURL {
		t.Fatalf("ServerURL = %q, want %q", cfg.ServerURL, colorbook.DefaultServerURL)
	}
	if cfg.LogLevel != defaultLogLevel {
		t.Fatalf("LogLevel = %q, want %q", cfg.LogLevel, defaultLogLevel)
	}
	if cfg.Workers != defaultWorkers {
		t.Fatalf("Workers = %d, want %d", cfg.Workers, defaultWorkers)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `server_url = [`)

	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestLoad_DotEnvOverridesFile(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `server_url = "http://from-file"`+"\n")
	writeFile(t, DotEnvFile, EnvServerURL+"=http://from-dotenv\n"+EnvAppToken+"=dotenv-token\n"+EnvWorkers+"=2\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServerURL != "http://from-dotenv" {
		t.Fatalf("ServerURL = %q, want %q", cfg.ServerURL, "http://from-dotenv")
	}
	if cfg.AppToken != "dotenv-token" {
		t.Fatalf("AppToken = %q, want %q", cfg.AppToken, "dotenv-token")
	}
	if cfg.Workers != 2 {
		t.Fatalf("Workers = %d, want 2", cfg.Workers)
	}
	if _, ok := os.LookupEnv(EnvAppToken); ok {
		t.Fatalf("%s leaked into the process environment", EnvAppToken)
	}
}

func TestLoad_EnvironmentOverridesDotEnv(t *testing.T) {
	isolate(t)

	writeFile(t, DotEnvFile, EnvServerURL+"=http://from-dotenv\n")
	t.Setenv(EnvServerURL, "http://from-env/")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServerURL != "http://from-env" {
		t.Fatalf("ServerURL = %q, want %q", cfg.ServerURL, "http://from-env")
	}
	if cfg.SlogLevel() != slog.LevelWarn {
		t.Fatalf("SlogLevel = %v, want %v", cfg.SlogLevel(), slog.LevelWarn)
	}
}

func TestLoad_InvalidWorkersIgnored(t *testing.T) {
	isolate(t)
	t.Setenv(EnvWorkers, "many")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Workers != defaultWorkers {
		t.Fatalf("Workers = %d, want %d", cfg.Workers, defaultWorkers)
	}
}

func TestSlogLevel_UnknownDefaultsToInfo(t *testing.T) {
	cfg := Config{LogLevel: "chatty"}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Fatalf("SlogLevel = %v, want %v", cfg.SlogLevel(), slog.LevelInfo)
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
