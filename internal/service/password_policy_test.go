package service

import (
	"errors"
	"testing"

	"github.com/elevate-affiliate/internal/config"
)

func TestValidatePassword(t *testing.T) {
	strict := config.PasswordPolicyConfig{MinLength: 8, RequireUpper: true, RequireLower: true, RequireNumber: true, RequireSpecial: true}

	cases := []struct {
		name     string
		policy   config.PasswordPolicyConfig
		password string
		key      string
	}{
		{"default length", config.PasswordPolicyConfig{}, "abc", "error.password_min_length"},
		{"default ok", config.PasswordPolicyConfig{}, "abcdef", ""},
		{"multibyte counts runes", config.PasswordPolicyConfig{MinLength: 3}, "密码好", ""},
		{"missing upper", strict, "passw0rd!", "error.password_require_upper"},
		{"missing lower", strict, "PASSW0RD!", "error.password_require_lower"},
		{"missing number", strict, "Password!", "error.password_require_number"},
		{"missing special", strict, "Passw0rdX", "error.password_require_special"},
		{"strict ok", strict, "Passw0rd!", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validatePassword(tc.policy, tc.password)
			if tc.key == "" {
				if err != nil {
					t.Fatalf("expected valid password, got %v", err)
				}
				return
			}
			var policyErr passwordPolicyError
			if !errors.As(err, &policyErr) || policyErr.Key() != tc.key {
				t.Fatalf("expected %s, got %v", tc.key, err)
			}
			if !errors.Is(err, ErrInvalidPassword) {
				t.Fatalf("policy errors should match ErrInvalidPassword")
			}
		})
	}
}
