package portfolio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "Portfolio" || cfg.Addr != ":3000" || cfg.DatabaseURL != "data/portfolio.db" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.CacheTTL != 5*time.Minute || cfg.Uploads.Backend != "local" || cfg.LogLevel != "info" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yaml")
	body := `name: My Site
url: https://example.com/
session_secret: from-file
cache_ttl: 30s
uploads:
  backend: s3
  s3:
    bucket: media
    region: eu-west-1
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORTFOLIO_SESSION_SECRET", "from-env")
	t.Setenv("PORTFOLIO_UPLOADS_S3_ACCESS_KEY_ID", "AKIA")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "My Site" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.URL != "https://example.com" {
		t.Errorf("URL should lose its trailing slash, got %q", cfg.URL)
	}
	if cfg.SessionSecret != "from-env" {
		t.Errorf("env should override file, got %q", cfg.SessionSecret)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Errorf("CacheTTL = %v", cfg.CacheTTL)
	}
	if cfg.Uploads.Backend != "s3" || cfg.Uploads.S3.Bucket != "media" || cfg.Uploads.S3.AccessKeyID != "AKIA" {
		t.Errorf("Uploads = %+v", cfg.Uploads)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for a missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     SiteConfig
		wantErr string
	}{
		{"ok", SiteConfig{SessionSecret: "s"}, ""},
		{"missing secret", SiteConfig{}, "session_secret"},
		{"incomplete s3", SiteConfig{SessionSecret: "s", Uploads: UploadConfig{Backend: "s3", S3: S3Config{Bucket: "b"}}}, "incomplete s3"},
		{"unknown backend", SiteConfig{SessionSecret: "s", Uploads: UploadConfig{Backend: "ftp"}}, "unknown uploads.backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
