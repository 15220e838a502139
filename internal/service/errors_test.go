package service

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorKind
	}{
		{nil, ""},
		{ErrCouponNotFound, KindNotFound},
		{fmt.Errorf("%w: extra", ErrInvalidInput), KindInvalidInput},
		{ErrWithdrawalNotPending, KindInvalidState},
		{ErrWithdrawalNotApproved, KindInvalidState},
		{ErrDuplicateActiveCoupon, KindDuplicateActiveCoupon},
		{ErrDuplicateActiveClaim, KindDuplicateActiveClaim},
		{ErrInsufficientBalance, KindInsufficientBalance},
		{ErrQRCodeHasRedemptions, KindDependencyConflict},
		{fmt.Errorf("register: %w", ErrEmailExists), KindDuplicateEmail},
		{ErrPrincipalNotActive, KindUnauthorized},
		{ErrForbidden, KindForbidden},
		{passwordPolicyError{key: "error.password_min_length"}, KindInvalidInput},
		{errors.New("boom"), KindInternal},
	}
	for _, tc := range cases {
		if got := KindOf(tc.err); got != tc.want {
			t.Fatalf("KindOf(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}

func TestPrincipalCapabilities(t *testing.T) {
	var empty Principal
	if empty.IsAdmin() || empty.IsAffiliate() || empty.ID() != 0 {
		t.Fatalf("zero principal must be anonymous")
	}
	admin := AdminPrincipal(nil)
	if admin.IsAdmin() {
		t.Fatalf("nil admin must not produce a principal")
	}
}
