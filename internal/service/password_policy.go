package service

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/elevate-affiliate/internal/config"
)

const defaultPasswordMinLength = 6

// passwordPolicyError 携带 i18n 文案 key 的密码策略错误
type passwordPolicyError struct {
	key  string
	args []interface{}
}

func (e passwordPolicyError) Error() string {
	return e.key
}

func (e passwordPolicyError) Is(target error) bool {
	return target == ErrInvalidPassword
}

func (e passwordPolicyError) Key() string {
	return e.key
}

func (e passwordPolicyError) Args() []interface{} {
	return e.args
}

type passwordClass struct {
	required bool
	match    func(rune) bool
	key      string
}

func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	minLength := policy.MinLength
	if minLength <= 0 {
		minLength = defaultPasswordMinLength
	}
	if utf8.RuneCountInString(password) < minLength {
		return passwordPolicyError{key: "error.password_min_length", args: []interface{}{minLength}}
	}

	isSpecial := func(r rune) bool {
		return !unicode.IsUpper(r) && !unicode.IsLower(r) && !unicode.IsDigit(r)
	}
	classes := []passwordClass{
		{policy.RequireUpper, unicode.IsUpper, "error.password_require_upper"},
		{policy.RequireLower, unicode.IsLower, "error.password_require_lower"},
		{policy.RequireNumber, unicode.IsDigit, "error.password_require_number"},
		{policy.RequireSpecial, isSpecial, "error.password_require_special"},
	}
	for _, class := range classes {
		if class.required && strings.IndexFunc(password, class.match) < 0 {
			return passwordPolicyError{key: class.key}
		}
	}
	return nil
}
