package config

import (
	"os"
	"testing"
)

func TestLoad_DefaultsFromSystem(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "httpdlog-config-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Log.Format != "console" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "console")
	}
	if cfg.Scan.MaxWorkers != 0 {
		t.Errorf("Scan.MaxWorkers = %d, want 0", cfg.Scan.MaxWorkers)
	}
	if cfg.Scan.AutodetectSample != 10 {
		t.Errorf("Scan.AutodetectSample = %d, want 10", cfg.Scan.AutodetectSample)
	}
	if cfg.Output.SpillToParquet {
		t.Error("Output.SpillToParquet = true, want false")
	}
	if cfg.Registry.DefaultFormatType != "" {
		t.Errorf("Registry.DefaultFormatType = %q, want empty", cfg.Registry.DefaultFormatType)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "httpdlog-config-test-env")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	os.Setenv("HTTPDLOG_LOG_LEVEL", "debug")
	os.Setenv("HTTPDLOG_SCAN_MAX_WORKERS", "4")
	defer os.Unsetenv("HTTPDLOG_LOG_LEVEL")
	defer os.Unsetenv("HTTPDLOG_SCAN_MAX_WORKERS")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Scan.MaxWorkers != 4 {
		t.Errorf("Scan.MaxWorkers = %d, want 4", cfg.Scan.MaxWorkers)
	}
}
