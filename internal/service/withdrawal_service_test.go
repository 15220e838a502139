package service

import (
	"errors"
	"testing"

	"github.com/elevate-affiliate/internal/constants"
	"github.com/elevate-affiliate/internal/repository"

	"github.com/shopspring/decimal"
)

// seedCommission 为推广方制造一笔成交，返回推广方 ID
func seedCommission(t *testing.T, env *serviceTestEnv, email, phone, amount string) uint {
	t.Helper()
	affiliate := createTestAffiliate(t, env.db, email, constants.AffiliateStatusActive)
	qr := createTestQRCode(t, env, affiliate.ID, 15, 7.5)
	claim := redeemToClaim(t, env, qr.ID, phone)
	processTestPurchase(t, env, claim.ID, amount)
	return affiliate.ID
}

func TestGetBalanceEmptyLedger(t *testing.T) {
	env := newServiceTestEnv(t, "ledger_empty")
	affiliate := createTestAffiliate(t, env.db, "empty@example.com", constants.AffiliateStatusActive)

	balance, err := env.ledger.GetBalance(affiliate.ID)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.TotalCommission.IsZero() || !balance.AvailableBalance.IsZero() || balance.PendingRequests != 0 {
		t.Fatalf("expected zero balance, got %+v", balance)
	}
	if _, err := env.ledger.GetBalance(9999); !errors.Is(err, ErrAffiliateNotFound) {
		t.Fatalf("expected affiliate not found, got %v", err)
	}
}

func TestBalanceIgnoresPendingWithdrawals(t *testing.T) {
	env := newServiceTestEnv(t, "ledger_pending")
	affiliateID := seedCommission(t, env, "ledger@example.com", "9555500001", "200")

	if _, err := env.withdrawals.RequestWithdrawal(affiliateID, RequestWithdrawalInput{Amount: decimal.NewFromInt(5)}); err != nil {
		t.Fatalf("request withdrawal failed: %v", err)
	}
	balance, err := env.ledger.GetBalance(affiliateID)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.TotalCommission.Equal(decimal.RequireFromString("12.75")) {
		t.Fatalf("unexpected total commission: %s", balance.TotalCommission)
	}
	if !balance.AvailableBalance.Equal(decimal.RequireFromString("12.75")) {
		t.Fatalf("pending withdrawals must not reduce the available balance, got %s", balance.AvailableBalance)
	}
	if !balance.PendingAmount.Equal(decimal.NewFromInt(5)) || balance.PendingRequests != 1 {
		t.Fatalf("unexpected pending summary: %s / %d", balance.PendingAmount, balance.PendingRequests)
	}
}

func TestBalanceAcrossPurchasesAndPaidWithdrawal(t *testing.T) {
	env := newServiceTestEnv(t, "ledger_two_purchases")
	affiliate := createTestAffiliate(t, env.db, "two@example.com", constants.AffiliateStatusActive)
	first := createTestQRCode(t, env, affiliate.ID, 15, 7.5)
	second := createTestQRCode(t, env, affiliate.ID, 0, 10)
	processTestPurchase(t, env, redeemToClaim(t, env, first.ID, "9555500010").ID, "200")
	processTestPurchase(t, env, redeemToClaim(t, env, second.ID, "9555500011").ID, "50")

	withdrawal, err := env.withdrawals.RequestWithdrawal(affiliate.ID, RequestWithdrawalInput{Amount: decimal.NewFromInt(10)})
	if err != nil {
		t.Fatalf("request withdrawal failed: %v", err)
	}
	if err := env.db.Model(withdrawal).Update("status", constants.WithdrawalStatusPaid).Error; err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}

	balance, err := env.ledger.GetBalance(affiliate.ID)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.TotalCommission.Equal(decimal.RequireFromString("17.75")) {
		t.Fatalf("unexpected total commission: %s", balance.TotalCommission)
	}
	if !balance.TotalWithdrawn.Equal(decimal.NewFromInt(10)) || !balance.AvailableBalance.Equal(decimal.RequireFromString("7.75")) {
		t.Fatalf("unexpected balance: %+v", balance)
	}
	if !balance.AvailableBalance.Equal(balance.TotalCommission.Sub(balance.TotalWithdrawn)) {
		t.Fatalf("available must equal commission minus withdrawn")
	}
}

func TestRequestWithdrawalValidation(t *testing.T) {
	env := newServiceTestEnv(t, "withdrawal_validation")
	affiliateID := seedCommission(t, env, "wv@example.com", "9555500002", "200")

	_, err := env.withdrawals.RequestWithdrawal(affiliateID, RequestWithdrawalInput{Amount: decimal.RequireFromString("0.001")})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	_, err = env.withdrawals.RequestWithdrawal(affiliateID, RequestWithdrawalInput{Amount: decimal.RequireFromString("1.005")})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("sub-cent withdrawal must be rejected, got %v", err)
	}
	_, err = env.withdrawals.RequestWithdrawal(affiliateID, RequestWithdrawalInput{Amount: decimal.RequireFromString("12.76")})
	if !errors.Is(err, ErrInsufficientBalance) || KindOf(err) != KindInsufficientBalance {
		t.Fatalf("expected insufficient balance, got %v", err)
	}

	withdrawal, err := env.withdrawals.RequestWithdrawal(affiliateID, RequestWithdrawalInput{Amount: decimal.RequireFromString("12.75")})
	if err != nil {
		t.Fatalf("request full balance failed: %v", err)
	}
	if withdrawal.UpiID != "affiliate@upi" || withdrawal.Status != constants.WithdrawalStatusPending {
		t.Fatalf("expected profile upi and pending status, got %+v", withdrawal)
	}

	inactive := createTestAffiliate(t, env.db, "wv-inactive@example.com", constants.AffiliateStatusInactive)
	_, err = env.withdrawals.RequestWithdrawal(inactive.ID, RequestWithdrawalInput{Amount: decimal.NewFromInt(1)})
	if !errors.Is(err, ErrAffiliateNotActive) {
		t.Fatalf("expected affiliate not active, got %v", err)
	}
	_, err = env.withdrawals.RequestWithdrawal(31337, RequestWithdrawalInput{Amount: decimal.NewFromInt(1)})
	if !errors.Is(err, ErrAffiliateNotFound) {
		t.Fatalf("expected affiliate not found, got %v", err)
	}
}

func TestRequestWithdrawalRequiresUpi(t *testing.T) {
	env := newServiceTestEnv(t, "withdrawal_upi")
	affiliateID := seedCommission(t, env, "upi@example.com", "9555500003", "200")
	if err := env.db.Table("affiliates").Where("id = ?", affiliateID).Update("upi_id", "").Error; err != nil {
		t.Fatalf("clear upi failed: %v", err)
	}

	_, err := env.withdrawals.RequestWithdrawal(affiliateID, RequestWithdrawalInput{Amount: decimal.NewFromInt(1)})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input without upi, got %v", err)
	}
	withdrawal, err := env.withdrawals.RequestWithdrawal(affiliateID, RequestWithdrawalInput{Amount: decimal.NewFromInt(1), UpiID: " payee@bank "})
	if err != nil {
		t.Fatalf("request with explicit upi failed: %v", err)
	}
	if withdrawal.UpiID != "payee@bank" {
		t.Fatalf("unexpected upi: %s", withdrawal.UpiID)
	}
}

func TestCancelWithdrawal(t *testing.T) {
	env := newServiceTestEnv(t, "withdrawal_cancel")
	affiliateID := seedCommission(t, env, "cancel@example.com", "9555500004", "200")
	other := createTestAffiliate(t, env.db, "cancel-other@example.com", constants.AffiliateStatusActive)

	withdrawal, err := env.withdrawals.RequestWithdrawal(affiliateID, RequestWithdrawalInput{Amount: decimal.NewFromInt(2)})
	if err != nil {
		t.Fatalf("request withdrawal failed: %v", err)
	}
	if err := env.withdrawals.CancelWithdrawal(other.ID, withdrawal.ID); !errors.Is(err, ErrWithdrawalNotFound) {
		t.Fatalf("other affiliates must not cancel, got %v", err)
	}
	if err := env.withdrawals.CancelWithdrawal(affiliateID, withdrawal.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if err := env.withdrawals.CancelWithdrawal(affiliateID, withdrawal.ID); !errors.Is(err, ErrWithdrawalNotFound) {
		t.Fatalf("cancelled withdrawal should be gone, got %v", err)
	}

	approved, err := env.withdrawals.RequestWithdrawal(affiliateID, RequestWithdrawalInput{Amount: decimal.NewFromInt(2)})
	if err != nil {
		t.Fatalf("request withdrawal failed: %v", err)
	}
	if _, err := env.withdrawals.ProcessWithdrawal(approved.ID, ProcessWithdrawalInput{Status: constants.WithdrawalStatusApproved}, 1); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if err := env.withdrawals.CancelWithdrawal(affiliateID, approved.ID); !errors.Is(err, ErrWithdrawalNotPending) {
		t.Fatalf("approved withdrawal must not be cancelled, got %v", err)
	}
}

func TestProcessWithdrawalTransitions(t *testing.T) {
	env := newServiceTestEnv(t, "withdrawal_process")
	affiliateID := seedCommission(t, env, "process@example.com", "9555500005", "200")

	request := func(amount int64) uint {
		withdrawal, err := env.withdrawals.RequestWithdrawal(affiliateID, RequestWithdrawalInput{Amount: decimal.NewFromInt(amount)})
		if err != nil {
			t.Fatalf("request withdrawal failed: %v", err)
		}
		return withdrawal.ID
	}

	first := request(3)
	if _, err := env.withdrawals.ProcessWithdrawal(first, ProcessWithdrawalInput{Status: "cancelled"}, 1); !errors.Is(err, ErrInvalidWithdrawalStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
	approved, err := env.withdrawals.ProcessWithdrawal(first, ProcessWithdrawalInput{Status: constants.WithdrawalStatusApproved, Notes: "ok"}, 7)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.ProcessedDate == nil || approved.ProcessedBy == nil || *approved.ProcessedBy != 7 || approved.Notes != "ok" {
		t.Fatalf("unexpected processed withdrawal: %+v", approved)
	}

	balance, err := env.ledger.GetBalance(affiliateID)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.AvailableBalance.Equal(decimal.RequireFromString("9.75")) {
		t.Fatalf("approved withdrawal must reduce the balance, got %s", balance.AvailableBalance)
	}

	if _, err := env.withdrawals.ProcessWithdrawal(first, ProcessWithdrawalInput{Status: constants.WithdrawalStatusRejected}, 7); !errors.Is(err, ErrWithdrawalNotPending) {
		t.Fatalf("approved withdrawal is terminal, got %v", err)
	}
	if _, err := env.withdrawals.ProcessWithdrawal(first, ProcessWithdrawalInput{Status: constants.WithdrawalStatusPaid}, 7); !errors.Is(err, ErrInvalidWithdrawalStatus) {
		t.Fatalf("paid is not a processing target, got %v", err)
	}

	settled, err := env.withdrawals.RecordWithdrawalPayment(first, RecordWithdrawalPaymentInput{PaymentProofRef: " utr-0001 "}, 7)
	if err != nil {
		t.Fatalf("record payment failed: %v", err)
	}
	if settled.Status != constants.WithdrawalStatusApproved || settled.PaymentProofRef != "utr-0001" || settled.Notes != "ok" {
		t.Fatalf("unexpected settled withdrawal: %+v", settled)
	}
	if _, err := env.withdrawals.RecordWithdrawalPayment(first, RecordWithdrawalPaymentInput{}, 7); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected proof required, got %v", err)
	}

	fresh := request(1)
	if _, err := env.withdrawals.ProcessWithdrawal(fresh, ProcessWithdrawalInput{Status: constants.WithdrawalStatusPaid}, 7); !errors.Is(err, ErrInvalidWithdrawalStatus) {
		t.Fatalf("pending -> paid must be rejected, got %v", err)
	}
	if _, err := env.withdrawals.RecordWithdrawalPayment(fresh, RecordWithdrawalPaymentInput{PaymentProofRef: "utr-0002"}, 7); !errors.Is(err, ErrWithdrawalNotApproved) {
		t.Fatalf("pending withdrawal cannot carry a payment proof, got %v", err)
	}
	failed, err := env.withdrawals.ProcessWithdrawal(fresh, ProcessWithdrawalInput{Status: constants.WithdrawalStatusFailed}, 7)
	if err != nil || failed.Status != constants.WithdrawalStatusFailed {
		t.Fatalf("pending -> failed failed: %v", err)
	}

	second := request(2)
	if _, err := env.withdrawals.ProcessWithdrawal(second, ProcessWithdrawalInput{Status: constants.WithdrawalStatusRejected}, 7); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if _, err := env.withdrawals.ProcessWithdrawal(second, ProcessWithdrawalInput{Status: constants.WithdrawalStatusApproved}, 7); !errors.Is(err, ErrWithdrawalNotPending) {
		t.Fatalf("rejected withdrawal is terminal, got %v", err)
	}
	if _, err := env.withdrawals.ProcessWithdrawal(424242, ProcessWithdrawalInput{Status: constants.WithdrawalStatusApproved}, 7); !errors.Is(err, ErrWithdrawalNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	balance, err = env.ledger.GetBalance(affiliateID)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.AvailableBalance.Equal(decimal.RequireFromString("9.75")) || !balance.TotalWithdrawn.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("rejected withdrawal must not count, got %+v", balance)
	}

	stats, err := env.withdrawals.WithdrawalStats()
	if err != nil {
		t.Fatalf("withdrawal stats failed: %v", err)
	}
	if len(stats) != 5 || stats[0].Status != constants.WithdrawalStatusPending {
		t.Fatalf("unexpected stats order: %+v", stats)
	}
	for _, stat := range stats {
		switch stat.Status {
		case constants.WithdrawalStatusApproved:
			if stat.Count != 1 || !stat.Amount.Equal(decimal.NewFromInt(3)) {
				t.Fatalf("unexpected approved stat: %+v", stat)
			}
		case constants.WithdrawalStatusRejected, constants.WithdrawalStatusFailed:
			if stat.Count != 1 {
				t.Fatalf("unexpected %s stat: %+v", stat.Status, stat)
			}
		case constants.WithdrawalStatusPending, constants.WithdrawalStatusPaid:
			if stat.Count != 0 {
				t.Fatalf("unexpected %s stat: %+v", stat.Status, stat)
			}
		}
	}
}

func TestWithdrawalHistory(t *testing.T) {
	env := newServiceTestEnv(t, "withdrawal_history")
	affiliateID := seedCommission(t, env, "history@example.com", "9555500006", "200")
	for _, amount := range []int64{1, 2} {
		if _, err := env.withdrawals.RequestWithdrawal(affiliateID, RequestWithdrawalInput{Amount: decimal.NewFromInt(amount)}); err != nil {
			t.Fatalf("request withdrawal failed: %v", err)
		}
	}

	rows, total, balance, err := env.withdrawals.WithdrawalHistory(affiliateID, repository.WithdrawalListFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("expected 2 withdrawals, got %d/%d", len(rows), total)
	}
	if balance.PendingRequests != 2 || !balance.PendingAmount.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("unexpected balance: %+v", balance)
	}
	if _, _, _, err := env.withdrawals.WithdrawalHistory(0, repository.WithdrawalListFilter{}); !errors.Is(err, ErrAffiliateNotFound) {
		t.Fatalf("expected affiliate not found, got %v", err)
	}
}
