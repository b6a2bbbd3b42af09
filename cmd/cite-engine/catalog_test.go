// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"testing"
	"time"
)

func TestCatalogFetchConfigDefaults(t *testing.T) {
	cfg := catalogFetchConfig(catalogFetchCmd)

	if cfg.Timeout != defaultTimeout {
		t.Errorf("timeout = %v, want %v", cfg.Timeout, defaultTimeout)
	}
	if cfg.UserAgent != defaultUserAgent {
		t.Errorf("user agent = %q, want %q", cfg.UserAgent, defaultUserAgent)
	}
	// Zero defers to the retry helper's own default.
	if cfg.MaxRetries != 0 {
		t.Errorf("max retries = %d, want 0", cfg.MaxRetries)
	}
}

func TestCatalogFetchConfigFlags(t *testing.T) {
	flags := catalogFetchCmd.Flags()
	for name, value := range map[string]string{
		"timeout":     "5s",
		"email":       "dev@example.org",
		"max-retries": "2",
	} {
		if err := flags.Set(name, value); err != nil {
			t.Fatalf("setting --%s: %v", name, err)
		}
	}
	t.Cleanup(func() {
		flags.Set("timeout", "0")
		flags.Set("email", "")
		flags.Set("max-retries", "0")
	})

	cfg := catalogFetchConfig(catalogFetchCmd)

	if cfg.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.Email != "dev@example.org" {
		t.Errorf("email = %q, want dev@example.org", cfg.Email)
	}
	if cfg.MaxRetries != 2 {
		t.Errorf("max retries = %d, want 2", cfg.MaxRetries)
	}
}
