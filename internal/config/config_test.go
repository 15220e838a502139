package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestSetDefaultsUnmarshal(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("unexpected driver: %s", cfg.Database.Driver)
	}
	if cfg.Security.PasswordPolicy.MinLength != 6 {
		t.Fatalf("unexpected password min length: %d", cfg.Security.PasswordPolicy.MinLength)
	}
	if cfg.WhatsApp.DefaultCountryCode != "91" {
		t.Fatalf("unexpected country code: %s", cfg.WhatsApp.DefaultCountryCode)
	}
	if cfg.Worker.CouponSweepIntervalSeconds != 300 {
		t.Fatalf("unexpected sweep interval: %d", cfg.Worker.CouponSweepIntervalSeconds)
	}
	if cfg.Queue.Queues["default"] != 10 {
		t.Fatalf("unexpected queue weights: %+v", cfg.Queue.Queues)
	}
}

func TestWeakJWTSecret(t *testing.T) {
	cases := map[string]bool{
		"":                                   true,
		"short":                              true,
		"change-me-in-production-0123456789": true,
		"A7f2kQ9mZx1Lp0Rt6Yw3Ne8Bc5Hu4Jd2Vs": false,
	}
	for secret, want := range cases {
		if got := WeakJWTSecret(secret); got != want {
			t.Fatalf("WeakJWTSecret(%q) = %v, want %v", secret, got, want)
		}
	}
}
