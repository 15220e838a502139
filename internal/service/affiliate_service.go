package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/elevate-affiliate/internal/cache"
	"github.com/elevate-affiliate/internal/constants"
	"github.com/elevate-affiliate/internal/logger"
	"github.com/elevate-affiliate/internal/models"
	"github.com/elevate-affiliate/internal/repository"
)

var affiliateStatuses = map[string]struct{}{
	constants.AffiliateStatusActive:    {},
	constants.AffiliateStatusInactive:  {},
	constants.AffiliateStatusRejected:  {},
	constants.AffiliateStatusSuspended: {},
}

// AffiliateService 管理端推广方服务
type AffiliateService struct {
	auth          *AuthService
	affiliateRepo repository.AffiliateRepository
	qrRepo        repository.QRCodeRepository
}

// NewAffiliateService 创建推广方管理服务
func NewAffiliateService(auth *AuthService, affiliateRepo repository.AffiliateRepository, qrRepo repository.QRCodeRepository) *AffiliateService {
	return &AffiliateService{
		auth:          auth,
		affiliateRepo: affiliateRepo,
		qrRepo:        qrRepo,
	}
}

// CreateAffiliateInput 管理端创建推广方输入
type CreateAffiliateInput struct {
	Name           string
	Email          string
	PhoneNumber    string
	Password       string
	Address        string
	UpiID          string
	CommissionRate *float64
	Status         string
}

// UpdateAffiliateInput 管理端更新推广方输入
type UpdateAffiliateInput struct {
	Name           *string
	Email          *string
	PhoneNumber    *string
	Address        *string
	UpiID          *string
	CommissionRate *float64
}

// CreateAffiliate 管理端创建推广方
func (s *AffiliateService) CreateAffiliate(input CreateAffiliateInput) (*models.Affiliate, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: 名称不能为空", ErrInvalidInput)
	}
	email := normalizeEmail(input.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := s.auth.ensureEmailAvailable(email, 0); err != nil {
		return nil, err
	}

	password := input.Password
	if strings.TrimSpace(password) == "" {
		password = constants.DefaultAffiliatePassword
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	commissionRate, err := resolvePercentage(input.CommissionRate, s.auth.defaultCommissionPercentage())
	if err != nil {
		return nil, err
	}

	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = constants.AffiliateStatusInactive
	}
	if _, ok := affiliateStatuses[status]; !ok {
		return nil, fmt.Errorf("%w: 推广方状态无效", ErrInvalidInput)
	}

	affiliate := &models.Affiliate{
		Name:           name,
		Email:          email,
		PhoneNumber:    strings.TrimSpace(input.PhoneNumber),
		PasswordHash:   hash,
		Address:        strings.TrimSpace(input.Address),
		UpiID:          strings.TrimSpace(input.UpiID),
		CommissionRate: commissionRate,
		Status:         status,
	}
	if err := s.affiliateRepo.Create(affiliate); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	logger.Infow("affiliate_created", "affiliate_id", affiliate.ID, "status", affiliate.Status)
	return affiliate, nil
}

// ListAffiliates 推广方列表（不含全局兜底账号）
func (s *AffiliateService) ListAffiliates(filter repository.AffiliateListFilter) ([]models.Affiliate, int64, error) {
	filter.IncludeSystem = false
	return s.affiliateRepo.List(filter)
}

// GetAffiliate 获取推广方
func (s *AffiliateService) GetAffiliate(id uint) (*models.Affiliate, error) {
	affiliate, err := s.affiliateRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if affiliate == nil {
		return nil, ErrAffiliateNotFound
	}
	return affiliate, nil
}

// UpdateAffiliate 管理端更新推广方资料
func (s *AffiliateService) UpdateAffiliate(id uint, input UpdateAffiliateInput) (*models.Affiliate, error) {
	affiliate, err := s.GetAffiliate(id)
	if err != nil {
		return nil, err
	}
	if affiliate.IsSystem {
		return nil, fmt.Errorf("%w: 全局推广方不可修改", ErrInvalidState)
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: 名称不能为空", ErrInvalidInput)
		}
		affiliate.Name = name
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		if email != affiliate.Email {
			if err := s.auth.ensureEmailAvailable(email, affiliate.ID); err != nil {
				return nil, err
			}
			affiliate.Email = email
		}
	}
	if input.PhoneNumber != nil {
		affiliate.PhoneNumber = strings.TrimSpace(*input.PhoneNumber)
	}
	if input.Address != nil {
		affiliate.Address = strings.TrimSpace(*input.Address)
	}
	if input.UpiID != nil {
		affiliate.UpiID = strings.TrimSpace(*input.UpiID)
	}
	if input.CommissionRate != nil {
		rate, err := resolvePercentage(input.CommissionRate, 0)
		if err != nil {
			return nil, err
		}
		affiliate.CommissionRate = rate
	}
	if err := s.affiliateRepo.Update(affiliate); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	_ = cache.DelPrincipalAuthState(context.Background(), constants.PrincipalKindAffiliate, affiliate.ID)
	return affiliate, nil
}

// UpdateAffiliateStatus 审核/变更推广方状态
func (s *AffiliateService) UpdateAffiliateStatus(id uint, status, notes string, by Principal) (*models.Affiliate, error) {
	status = strings.TrimSpace(status)
	if _, ok := affiliateStatuses[status]; !ok {
		return nil, fmt.Errorf("%w: 推广方状态无效", ErrInvalidInput)
	}
	affiliate, err := s.GetAffiliate(id)
	if err != nil {
		return nil, err
	}
	if affiliate.IsSystem {
		return nil, fmt.Errorf("%w: 全局推广方状态不可变更", ErrInvalidState)
	}

	now := time.Now()
	affiliate.Status = status
	affiliate.StatusNotes = strings.TrimSpace(notes)
	affiliate.StatusUpdatedAt = &now
	if by.AdminID != 0 {
		adminID := by.AdminID
		affiliate.StatusUpdatedBy = &adminID
	}
	if err := s.affiliateRepo.Update(affiliate); err != nil {
		return nil, err
	}
	// 状态变化影响登录态校验
	_ = cache.SetPrincipalAuthState(context.Background(), cache.BuildAffiliateAuthState(affiliate))
	logger.Infow("affiliate_status_updated",
		"affiliate_id", affiliate.ID,
		"status", affiliate.Status,
		"updated_by", by.AdminID,
	)
	return affiliate, nil
}

// DeleteAffiliate 删除推广方（名下仍有二维码时拒绝）
func (s *AffiliateService) DeleteAffiliate(id uint) error {
	affiliate, err := s.GetAffiliate(id)
	if err != nil {
		return err
	}
	if affiliate.IsSystem {
		return fmt.Errorf("%w: 全局推广方不可删除", ErrInvalidState)
	}
	count, err := s.qrRepo.CountByAffiliate(affiliate.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrAffiliateHasQRCodes
	}
	if err := s.affiliateRepo.Delete(affiliate.ID); err != nil {
		return err
	}
	_ = cache.DelPrincipalAuthState(context.Background(), constants.PrincipalKindAffiliate, affiliate.ID)
	logger.Infow("affiliate_deleted", "affiliate_id", affiliate.ID)
	return nil
}
