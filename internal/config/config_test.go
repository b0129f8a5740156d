package config

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.IsProduction {
		t.Error("default env should not be production")
	}
	if cfg.SessionCookieName == "" {
		t.Error("session cookie name must have a default")
	}
	if cfg.PasswordPolicy.MinLength < 8 {
		t.Errorf("default min length = %d, want >= 8", cfg.PasswordPolicy.MinLength)
	}
	if cfg.RateLimitLogin.Max >= cfg.RateLimitGeneral.Max {
		t.Error("login ceiling should be tighter than general")
	}
	if cfg.RateLimitLogin.Window != 15*time.Minute {
		t.Errorf("login window = %v, want 15m", cfg.RateLimitLogin.Window)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PASSWORD_MIN_LENGTH", "16")
	t.Setenv("RATE_LIMIT_LOGIN_MAX", "7")
	t.Setenv("COOKIE_SAME_SITE", "Strict")

	cfg := Load()
	if !cfg.IsProduction {
		t.Error("APP_ENV=production should set IsProduction")
	}
	if !cfg.CookieSecure {
		t.Error("production should default to secure cookies")
	}
	if cfg.PasswordPolicy.MinLength != 16 {
		t.Errorf("min length = %d, want 16", cfg.PasswordPolicy.MinLength)
	}
	if cfg.RateLimitLogin.Max != 7 {
		t.Errorf("login max = %d, want 7", cfg.RateLimitLogin.Max)
	}
	if cfg.CookieSameSite != "Strict" {
		t.Errorf("samesite = %q", cfg.CookieSameSite)
	}
}

func TestValidate(t *testing.T) {
	log := zap.NewNop()

	valid := func() *Config {
		cfg := Load()
		return cfg
	}

	t.Run("development defaults pass", func(t *testing.T) {
		if err := valid().Validate(log); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("production rejects placeholder secret", func(t *testing.T) {
		cfg := valid()
		cfg.IsProduction = true
		if err := cfg.Validate(log); err == nil {
			t.Error("placeholder reset token secret must fail in production")
		}
	})

	t.Run("production with real secret passes", func(t *testing.T) {
		cfg := valid()
		cfg.IsProduction = true
		cfg.ResetTokenSecret = "an-actual-secret"
		if err := cfg.Validate(log); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("inverted policy bounds fail", func(t *testing.T) {
		cfg := valid()
		cfg.PasswordPolicy.MinLength = 20
		cfg.PasswordPolicy.MaxLength = 10
		if err := cfg.Validate(log); err == nil {
			t.Error("min > max must fail")
		}
	})

	t.Run("bcrypt cost out of range fails", func(t *testing.T) {
		cfg := valid()
		cfg.BcryptCost = 40
		if err := cfg.Validate(log); err == nil {
			t.Error("cost 40 must fail")
		}
	})

	t.Run("zero rate ceiling fails", func(t *testing.T) {
		cfg := valid()
		cfg.RateLimitLogin.Max = 0
		if err := cfg.Validate(log); err == nil {
			t.Error("zero ceiling must fail")
		}
	})
}
