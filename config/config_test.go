package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/aethex")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabaseURL != "postgres://localhost/aethex" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.FormRateLimit != 5 {
		t.Errorf("FormRateLimit = %d, want 5", cfg.FormRateLimit)
	}
	if !cfg.AutoMigrate {
		t.Error("AutoMigrate should default to true")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("AUTO_MIGRATE", "false")
	t.Setenv("FORM_RATE_LIMIT", "12")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.AutoMigrate {
		t.Error("AutoMigrate should be false")
	}
	if cfg.FormRateLimit != 12 {
		t.Errorf("FormRateLimit = %d, want 12", cfg.FormRateLimit)
	}
}

func TestOrigins(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://a.dev", "http://a.dev"},
		{" http://a.dev , https://b.dev ", "http://a.dev,https://b.dev"},
		{"http://a.dev,,", "http://a.dev"},
	}
	for _, tt := range tests {
		if got := (Config{AllowedOrigins: tt.in}).Origins(); got != tt.want {
			t.Errorf("Origins(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestR2Enabled(t *testing.T) {
	cfg := Config{R2AccountID: "acc", R2AccessKeyID: "id", R2AccessKeySecret: "secret"}
	if cfg.R2Enabled() {
		t.Error("R2 should be disabled without a bucket")
	}
	cfg.R2Bucket = "avatars"
	if !cfg.R2Enabled() {
		t.Error("R2 should be enabled")
	}
}
