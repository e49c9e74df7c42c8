package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Dataset.CSVFile != "supermarket_sales.csv" {
		t.Errorf("CSVFile = %q", cfg.Dataset.CSVFile)
	}
	if cfg.Dataset.PreviewRows != 5 {
		t.Errorf("PreviewRows = %d, want 5", cfg.Dataset.PreviewRows)
	}
	if cfg.Dataset.LoadTimeout != 30*time.Second {
		t.Errorf("LoadTimeout = %v, want 30s", cfg.Dataset.LoadTimeout)
	}
	if cfg.Address() != "localhost:8084" {
		t.Errorf("Address() = %q", cfg.Address())
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CSV_FILE", "/data/sales.csv")
	t.Setenv("PREVIEW_ROWS", "12")
	t.Setenv("LOAD_TIMEOUT", "5s")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SECURITY_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Dataset.CSVFile != "/data/sales.csv" || cfg.Dataset.PreviewRows != 12 || cfg.Dataset.LoadTimeout != 5*time.Second {
		t.Errorf("unexpected dataset config: %+v", cfg.Dataset)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Server.Port)
	}
	if len(cfg.Security.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v", cfg.Security.AllowedOrigins)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		env     string
		value   string
		wantErr string
	}{
		{"SERVER_PORT", "70000", "server port"},
		{"PREVIEW_ROWS", "-1", "preview rows"},
		{"LOAD_TIMEOUT", "-3s", "load timeout"},
		{"LOG_LEVEL", "verbose", "invalid log level"},
		{"LOG_FORMAT", "xml", "invalid log format"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
