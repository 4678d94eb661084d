package config

import (
	"os"
	"testing"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		old, had := os.LookupEnv(k)
		if err := os.Unsetenv(k); err != nil {
			t.Fatalf("Unsetenv(%q): %v", k, err)
		}
		t.Cleanup(func() {
			if had {
				os.Setenv(k, old)
			}
		})
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	unsetEnv(t, "BIND_ADDR", "PORT", "APNS_TEAM_ID", "APNS_KEY_ID", "APNS_KEY_PATH", "APNS_BUNDLE_ID")

	cfg := FromEnv()
	if cfg.BindAddr != defaultBindAddr {
		t.Errorf("BindAddr = %q, want %q", cfg.BindAddr, defaultBindAddr)
	}
	if cfg.Port != defaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, defaultPort)
	}
	if cfg.BlobTTL != MessageTTL {
		t.Errorf("BlobTTL = %v, want %v", cfg.BlobTTL, MessageTTL)
	}
	if cfg.MaxCiphertextSize != defaultMaxCiphertextSize {
		t.Errorf("MaxCiphertextSize = %d, want %d", cfg.MaxCiphertextSize, defaultMaxCiphertextSize)
	}
	if cfg.APNSConfigured() {
		t.Errorf("expected APNSConfigured() == false with no APNS env vars set")
	}
}

func TestEnvParsingFallsBackOnMissingOrBad(t *testing.T) {
	if got := envParseInt("NONEXISTENT_VAR", 42); got != 42 {
		t.Errorf("envParseInt fallback = %d, want 42", got)
	}
	if !envBool("NONEXISTENT_VAR", true) {
		t.Errorf("envBool fallback = false, want true")
	}
	if envBool("NONEXISTENT_VAR", false) {
		t.Errorf("envBool fallback = true, want false")
	}
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("BIND_ADDR", "127.0.0.1")
	t.Setenv("PORT", "9999")
	t.Setenv("MAX_CIPHERTEXT_SIZE", "4096")

	cfg := FromEnv()
	if cfg.BindAddr != "127.0.0.1" {
		t.Errorf("BindAddr = %q", cfg.BindAddr)
	}
	if cfg.Port != 9999 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if cfg.MaxCiphertextSize != 4096 {
		t.Errorf("MaxCiphertextSize = %d", cfg.MaxCiphertextSize)
	}
	// BlobTTL is fixed regardless of any env var.
	if cfg.BlobTTL != MessageTTL {
		t.Errorf("BlobTTL = %v, want fixed %v", cfg.BlobTTL, MessageTTL)
	}
}

func TestAPNSConfiguredRequiresAllFields(t *testing.T) {
	t.Setenv("APNS_TEAM_ID", "team")
	t.Setenv("APNS_KEY_ID", "key")
	t.Setenv("APNS_KEY_PATH", "/path/to/key.p8")
	t.Setenv("APNS_BUNDLE_ID", "")

	cfg := FromEnv()
	if cfg.APNSConfigured() {
		t.Errorf("expected APNSConfigured() == false with bundle ID missing")
	}

	t.Setenv("APNS_BUNDLE_ID", "com.example.app")
	cfg = FromEnv()
	if !cfg.APNSConfigured() {
		t.Errorf("expected APNSConfigured() == true with all fields set")
	}
}
