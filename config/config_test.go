package config

import (
	"strings"
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"DATABASE_URL":   "postgres://localhost/judging",
		"JWT_SECRET_KEY": "secret",
	}))
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want 8080", cfg.ServerPort)
	}
	if cfg.StorageDriver != StorageDriverPostgres {
		t.Errorf("StorageDriver = %q, want postgres", cfg.StorageDriver)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %s, want 24h", cfg.TokenTTL)
	}
	if cfg.StandingsInterval != 30*time.Second {
		t.Errorf("StandingsInterval = %s, want 30s", cfg.StandingsInterval)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v, want [*]", cfg.CORSOrigins)
	}
	if cfg.ExportLocation != time.UTC {
		t.Errorf("ExportLocation = %v, want UTC", cfg.ExportLocation)
	}
	if cfg.ArchiveEnabled() {
		t.Error("ArchiveEnabled() = true without R2 settings")
	}
}

func TestFromEnvMemoryDriverNeedsNoDatabase(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"STORAGE_DRIVER":       "memory",
		"JWT_SECRET_KEY":       "secret",
		"SERVER_PORT":          "9090",
		"CORS_ALLOWED_ORIGINS": "https://a.example, https://b.example",
	}))
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if cfg.ServerPort != 9090 {
		t.Errorf("ServerPort = %d, want 9090", cfg.ServerPort)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestFromEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing database", map[string]string{"JWT_SECRET_KEY": "s"}, "DATABASE_URL"},
		{"missing secret", map[string]string{"DATABASE_URL": "x"}, "JWT_SECRET_KEY"},
		{"bad driver", map[string]string{"STORAGE_DRIVER": "redis", "JWT_SECRET_KEY": "s"}, "STORAGE_DRIVER"},
		{"bad port", map[string]string{"DATABASE_URL": "x", "JWT_SECRET_KEY": "s", "SERVER_PORT": "70000"}, "SERVER_PORT"},
		{"bad ttl", map[string]string{"DATABASE_URL": "x", "JWT_SECRET_KEY": "s", "TOKEN_TTL": "soon"}, "TOKEN_TTL"},
		{"bad timezone", map[string]string{"DATABASE_URL": "x", "JWT_SECRET_KEY": "s", "EXPORT_TIMEZONE": "Mars/Olympus"}, "EXPORT_TIMEZONE"},
		{"partial r2", map[string]string{"DATABASE_URL": "x", "JWT_SECRET_KEY": "s", "R2_BUCKET_NAME": "b"}, "R2 settings"},
		{"admin without password", map[string]string{"DATABASE_URL": "x", "JWT_SECRET_KEY": "s", "BOOTSTRAP_ADMIN_EMAIL": "a@b.c"}, "BOOTSTRAP_ADMIN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(envMap(tt.env))
			if err == nil {
				t.Fatal("FromEnv() error = nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
