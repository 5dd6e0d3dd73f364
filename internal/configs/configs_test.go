package configs

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("PORT", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MODERATION_TIMEOUT_MS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Environment != "development" {
		t.Errorf("Environment = %q, want %q", cfg.Environment, "development")
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.JWTSecret == "" {
		t.Error("JWTSecret should default to a non-empty value in development")
	}
	if cfg.ModerationTimeout != 5*time.Second {
		t.Errorf("ModerationTimeout = %v, want 5s", cfg.ModerationTimeout)
	}
	if cfg.ModerationModel == "" {
		t.Error("ModerationModel should have a default")
	}
}

func TestLoadConfig_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig() with invalid PORT should return an error")
	}
}

func TestLoadConfig_PrivilegedPortRejected(t *testing.T) {
	t.Setenv("PORT", "80")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig() with privileged port should return an error")
	}
}

func TestLoadConfig_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig() in production without JWT_SECRET should return an error")
	}
}

func TestLoadConfig_Origins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", " https://a.example.com , https://b.example.com,")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	want := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.AllowedOrigins) != len(want) {
		t.Fatalf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
	for i := range want {
		if cfg.AllowedOrigins[i] != want[i] {
			t.Errorf("AllowedOrigins[%d] = %q, want %q", i, cfg.AllowedOrigins[i], want[i])
		}
	}
}
