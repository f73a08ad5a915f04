package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PROCDASH_BASE_URL", "PROCDASH_WS_PATH", "PROCDASH_INTERVAL",
		"PROCDASH_LOCAL", "PROCDASH_MUTE", "PROCDASH_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFromFlagsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := FromFlags([]string{"-config="})
	if err != nil {
		t.Fatalf("FromFlags: %v", err)
	}
	def := Default()
	if cfg.BaseURL != def.BaseURL || cfg.RefreshInterval != 2*time.Second || cfg.SearchDebounce != 200*time.Millisecond {
		t.Fatalf("got %+v, want defaults", cfg)
	}
	if cfg.Thresholds != (Thresholds{CPU: 80, Memory: 80, Disk: 90}) {
		t.Fatalf("thresholds = %+v", cfg.Thresholds)
	}
	if cfg.ConfigFile != "" {
		t.Fatalf("ConfigFile = %q, want empty", cfg.ConfigFile)
	}
}

func TestFromFlagsPrecedence(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, strings.Join([]string{
		"base_url: http://file:1",
		"refresh_interval: 5s",
		"ws_path: /stream",
		"thresholds:",
		"  cpu: 70",
		"  memory: 60",
		"  disk: 95",
	}, "\n"))
	t.Setenv("PROCDASH_BASE_URL", "http://env:3")

	cfg, err := FromFlags([]string{"-config", path, "-interval", "3s", "-base-url", "http://flag:2"})
	if err != nil {
		t.Fatalf("FromFlags: %v", err)
	}
	if cfg.BaseURL != "http://env:3" {
		t.Fatalf("BaseURL = %q, want env value", cfg.BaseURL)
	}
	if cfg.RefreshInterval != 3*time.Second {
		t.Fatalf("RefreshInterval = %s, want flag value 3s", cfg.RefreshInterval)
	}
	if cfg.WSPath != "/stream" {
		t.Fatalf("WSPath = %q, want file value", cfg.WSPath)
	}
	if cfg.Thresholds != (Thresholds{CPU: 70, Memory: 60, Disk: 95}) {
		t.Fatalf("thresholds = %+v", cfg.Thresholds)
	}
	if cfg.ConfigFile != path {
		t.Fatalf("ConfigFile = %q, want %q", cfg.ConfigFile, path)
	}
}

func TestFromFlagsEnvInterval(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROCDASH_INTERVAL", "4")
	cfg, err := FromFlags([]string{"-config="})
	if err != nil {
		t.Fatalf("FromFlags: %v", err)
	}
	if cfg.RefreshInterval != 4*time.Second {
		t.Fatalf("RefreshInterval = %s, want 4s", cfg.RefreshInterval)
	}
}

func TestFromFlagsClampsThresholds(t *testing.T) {
	clearEnv(t)
	cfg, err := FromFlags([]string{"-config=", "-cpu-threshold", "150", "-disk-threshold", "0"})
	if err != nil {
		t.Fatalf("FromFlags: %v", err)
	}
	if cfg.Thresholds.CPU != 100 || cfg.Thresholds.Disk != 1 {
		t.Fatalf("thresholds = %+v, want cpu 100 disk 1", cfg.Thresholds)
	}
}

func TestFromFlagsRejects(t *testing.T) {
	clearEnv(t)
	cases := map[string][]string{
		"scheme":    {"-config=", "-base-url", "ftp://host"},
		"relative":  {"-config=", "-base-url", "/api"},
		"interval":  {"-config=", "-interval", "0s"},
		"log level": {"-config=", "-log-level", "loud"},
		"flag":      {"-config=", "-nope"},
		"missing":   {"-config", filepath.Join(t.TempDir(), "absent.yaml")},
		"unknown":   {"-config", writeFile(t, "colour: blue\n")},
	}
	for name, args := range cases {
		if _, err := FromFlags(args); err == nil {
			t.Fatalf("%s: FromFlags(%q) succeeded, want error", name, args)
		}
	}
}

func TestLocalSkipsURLCheck(t *testing.T) {
	clearEnv(t)
	if _, err := FromFlags([]string{"-config=", "-local", "-base-url", ""}); err != nil {
		t.Fatalf("FromFlags: %v", err)
	}
}

func TestLevel(t *testing.T) {
	c := Default()
	c.LogLevel = " debug "
	lvl, err := c.Level()
	if err != nil || lvl.String() != "DEBUG" {
		t.Fatalf("Level() = %v, %v", lvl, err)
	}
}
