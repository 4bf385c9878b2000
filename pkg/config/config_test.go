package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "prod" {
		t.Fatalf("expected App.Env to be prod, got %q", cfg.App.Env)
	}
	if cfg.Device.ID != "mesa-07" {
		t.Fatalf("unexpected device id %q", cfg.Device.ID)
	}
	if got := cfg.Backend.Timeout; got != 30*time.Second {
		t.Fatalf("expected default backend timeout 30s, got %v", got)
	}
	if cfg.Payment.MerchantName != "Restaurante GestFood" {
		t.Fatalf("unexpected merchant %q", cfg.Payment.MerchantName)
	}
	if cfg.Payment.PixKey != "123.456.789-09" {
		t.Fatalf("unexpected pix key %q", cfg.Payment.PixKey)
	}
	if cfg.Payment.MaxInstallments != 6 {
		t.Fatalf("expected 6 installments, got %d", cfg.Payment.MaxInstallments)
	}
	if cfg.Store.Driver != StoreDriverSQLite {
		t.Fatalf("expected sqlite store by default, got %q", cfg.Store.Driver)
	}
	if !strings.HasPrefix(cfg.DB.DSN, "file:gestfood.db") {
		t.Fatalf("unexpected sqlite dsn %q", cfg.DB.DSN)
	}
	if cfg.DB.Driver != StoreDriverSQLite {
		t.Fatalf("expected db driver to follow store driver, got %q", cfg.DB.Driver)
	}
}

func TestLoad_MissingBaseURL(t *testing.T) {
	setMinimalEnv(t)
	unsetEnv(t, EnvAPIBaseURL)

	if _, err := Load(); err == nil {
		t.Fatal("expected missing base url to return an error")
	}
}

func TestLoad_RejectsUnknownStoreDriver(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvStoreDriver, "mongo")

	if _, err := Load(); err == nil {
		t.Fatal("expected unknown store driver to fail")
	}
}

func TestLoad_PostgresRequiresConnectionFields(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvStoreDriver, "postgres")

	_, err := Load()
	if err == nil {
		t.Fatal("expected postgres without dsn to fail")
	}
	if !strings.Contains(err.Error(), EnvDBHost) {
		t.Fatalf("expected error to name %s, got %v", EnvDBHost, err)
	}

	t.Setenv(EnvDBHost, "db.local")
	t.Setenv(EnvDBUser, "menu")
	t.Setenv(EnvDBName, "gestfood")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.DB.DSN != "postgres://menu@db.local:5432/gestfood?sslmode=disable" {
		t.Fatalf("unexpected postgres dsn %q", cfg.DB.DSN)
	}
}

func TestLoad_RedisStoreNeedsAddress(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvStoreDriver, "redis")

	if _, err := Load(); err == nil {
		t.Fatal("expected redis store without address to fail")
	}

	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	if _, err := Load(); err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "prod")
	t.Setenv(EnvPort, "8081")
	t.Setenv(EnvDeviceID, "mesa-07")
	t.Setenv(EnvAPIBaseURL, "http://localhost:3000/api")
	unsetEnv(t, EnvStoreDriver, EnvDBDSN, EnvDBSQLitePath, EnvDBHost, EnvDBUser, EnvDBName, EnvRedisURL, EnvRedisAddr, EnvAPITimeout)
}

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
	if prodConfig.IsDev() {
		t.Fatalf("expected IsDev false for %q", prodConfig.Env)
	}
}
