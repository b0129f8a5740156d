package session

import (
	"testing"

	"github.com/local1284/membership/internal/config"
)

func TestAssertCookieSecurity(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{
			"production secure lax",
			config.Config{IsProduction: true, CookieSecure: true, CookieHTTPOnly: true, CookieSameSite: "Lax"},
			false,
		},
		{
			"production secure strict",
			config.Config{IsProduction: true, CookieSecure: true, CookieHTTPOnly: true, CookieSameSite: "Strict"},
			false,
		},
		{
			"production insecure cookie",
			config.Config{IsProduction: true, CookieSecure: false, CookieHTTPOnly: true, CookieSameSite: "Lax"},
			true,
		},
		{
			"production script-readable cookie",
			config.Config{IsProduction: true, CookieSecure: true, CookieHTTPOnly: false, CookieSameSite: "Lax"},
			true,
		},
		{
			"production samesite none",
			config.Config{IsProduction: true, CookieSecure: true, CookieHTTPOnly: true, CookieSameSite: "None"},
			true,
		},
		{
			"production samesite empty",
			config.Config{IsProduction: true, CookieSecure: true, CookieHTTPOnly: true, CookieSameSite: ""},
			true,
		},
		{
			"development is exempt",
			config.Config{IsProduction: false, CookieSecure: false, CookieHTTPOnly: false, CookieSameSite: "None"},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AssertCookieSecurity(&tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewStoreUsesConfiguredCookieName(t *testing.T) {
	cfg := &config.Config{SessionCookieName: "local1284_sid", SessionTTL: 0}
	store := NewStore(cfg, nil)
	if store == nil {
		t.Fatal("store should be constructed")
	}
}
