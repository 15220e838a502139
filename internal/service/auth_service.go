package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/elevate-affiliate/internal/cache"
	"github.com/elevate-affiliate/internal/config"
	"github.com/elevate-affiliate/internal/constants"
	"github.com/elevate-affiliate/internal/logger"
	"github.com/elevate-affiliate/internal/models"
	"github.com/elevate-affiliate/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 认证服务（管理员与推广方共用同一登录入口）
type AuthService struct {
	cfg           *config.Config
	adminRepo     repository.AdminRepository
	affiliateRepo repository.AffiliateRepository
	systemConfig  *SystemConfigService
}

// NewAuthService 创建认证服务实例
func NewAuthService(
	cfg *config.Config,
	adminRepo repository.AdminRepository,
	affiliateRepo repository.AffiliateRepository,
	systemConfig *SystemConfigService,
) *AuthService {
	return &AuthService{
		cfg:           cfg,
		adminRepo:     adminRepo,
		affiliateRepo: affiliateRepo,
		systemConfig:  systemConfig,
	}
}

// PrincipalClaims JWT 声明
type PrincipalClaims struct {
	PrincipalKind string `json:"principal_kind"`
	PrincipalID   uint   `json:"principal_id"`
	Email         string `json:"email"`
	Role          string `json:"role,omitempty"`
	TokenVersion  uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// LoginResult 登录结果
type LoginResult struct {
	Principal Principal         `json:"principal"`
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	Admin     *models.Admin     `json:"admin,omitempty"`
	Affiliate *models.Affiliate `json:"affiliate,omitempty"`
}

// RegisterAffiliateInput 推广方自助注册输入
type RegisterAffiliateInput struct {
	Name        string
	Email       string
	PhoneNumber string
	Password    string
	Address     string
	UpiID       string
}

// UpdateProfileInput 推广方资料修改输入，nil 表示不修改
type UpdateProfileInput struct {
	Name        *string
	PhoneNumber *string
	Email       *string
	Address     *string
	UpiID       *string
}

// HashPassword 使用 bcrypt 加密密码
func (s *AuthService) HashPassword(password string) (string, error) {
	return hashPassword(password)
}

// ValidatePassword 校验密码是否符合策略
func (s *AuthService) ValidatePassword(password string) error {
	policy := config.PasswordPolicyConfig{}
	if s != nil && s.cfg != nil {
		policy = s.cfg.Security.PasswordPolicy
	}
	return validatePassword(policy, password)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func verifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: 邮箱不能为空", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: 邮箱格式错误", ErrInvalidInput)
	}
	return nil
}

// GenerateToken 为身份签发 JWT
func (s *AuthService) GenerateToken(principal Principal, tokenVersion uint64) (string, time.Time, error) {
	hours := s.cfg.JWT.ExpireHours
	if principal.IsAffiliate() && s.cfg.JWT.AffiliateExpireHours > 0 {
		hours = s.cfg.JWT.AffiliateExpireHours
	}
	if hours <= 0 {
		hours = 24
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(hours) * time.Hour)

	claims := PrincipalClaims{
		PrincipalKind: principal.Kind,
		PrincipalID:   principal.ID(),
		Email:         principal.Email,
		Role:          principal.Role,
		TokenVersion:  tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken 解析 JWT Token
func (s *AuthService) ParseToken(tokenString string) (*PrincipalClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &PrincipalClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*PrincipalClaims)
	if !ok || !token.Valid || claims.PrincipalID == 0 {
		return nil, ErrInvalidToken
	}
	switch claims.PrincipalKind {
	case constants.PrincipalKindAdmin, constants.PrincipalKindAffiliate:
	default:
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Login 统一登录：先匹配管理员，再匹配推广方
func (s *AuthService) Login(email, password string) (*LoginResult, error) {
	normalized := normalizeEmail(email)
	if normalized == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	admin, err := s.adminRepo.GetByEmail(normalized)
	if err != nil {
		return nil, err
	}
	if admin != nil {
		return s.loginAdmin(admin, password)
	}

	affiliate, err := s.affiliateRepo.GetByEmail(normalized)
	if err != nil {
		return nil, err
	}
	if affiliate == nil || affiliate.IsSystem {
		return nil, ErrInvalidCredentials
	}
	return s.loginAffiliate(affiliate, password)
}

func (s *AuthService) loginAdmin(admin *models.Admin, password string) (*LoginResult, error) {
	if !verifyPassword(admin.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	principal := AdminPrincipal(admin)
	token, expiresAt, err := s.GenerateToken(principal, admin.TokenVersion)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	admin.LastLoginAt = &now
	if err := s.adminRepo.TouchLastLogin(admin.ID, now); err != nil {
		return nil, err
	}
	if err := cache.SetPrincipalAuthState(context.Background(), cache.BuildAdminAuthState(admin)); err != nil {
		logger.Warnw("auth_state_cache_set_failed", "kind", principal.Kind, "id", admin.ID, "error", err)
	}
	logger.Infow("principal_login", "kind", principal.Kind, "id", admin.ID, "role", principal.Role)
	return &LoginResult{Principal: principal, Token: token, ExpiresAt: expiresAt, Admin: admin}, nil
}

func (s *AuthService) loginAffiliate(affiliate *models.Affiliate, password string) (*LoginResult, error) {
	if !verifyPassword(affiliate.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if affiliate.Status != constants.AffiliateStatusActive {
		return nil, ErrPrincipalNotActive
	}
	principal := AffiliatePrincipal(affiliate)
	token, expiresAt, err := s.GenerateToken(principal, affiliate.TokenVersion)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	affiliate.LastLoginAt = &now
	if err := s.affiliateRepo.Update(affiliate); err != nil {
		return nil, err
	}
	if err := cache.SetPrincipalAuthState(context.Background(), cache.BuildAffiliateAuthState(affiliate)); err != nil {
		logger.Warnw("auth_state_cache_set_failed", "kind", principal.Kind, "id", affiliate.ID, "error", err)
	}
	logger.Infow("principal_login", "kind", principal.Kind, "id", affiliate.ID)
	return &LoginResult{Principal: principal, Token: token, ExpiresAt: expiresAt, Affiliate: affiliate}, nil
}

// Authenticate 校验 Token 并还原身份（优先读鉴权缓存，未命中回源数据库）
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (Principal, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return Principal{}, err
	}

	state, hit, err := cache.GetPrincipalAuthState(ctx, claims.PrincipalKind, claims.PrincipalID)
	if err != nil {
		logger.Warnw("auth_state_cache_get_failed", "kind", claims.PrincipalKind, "id", claims.PrincipalID, "error", err)
		hit = false
	}
	if !hit {
		state, err = s.loadAuthState(claims.PrincipalKind, claims.PrincipalID)
		if err != nil {
			return Principal{}, err
		}
		if setErr := cache.SetPrincipalAuthState(ctx, state); setErr != nil {
			logger.Warnw("auth_state_cache_set_failed", "kind", state.Kind, "id", state.ID, "error", setErr)
		}
	}

	if state.TokenVersion != claims.TokenVersion {
		return Principal{}, ErrInvalidToken
	}
	if state.TokenInvalidBefore > 0 && claims.IssuedAt != nil && claims.IssuedAt.Unix() < state.TokenInvalidBefore {
		return Principal{}, ErrInvalidToken
	}
	if state.Kind == constants.PrincipalKindAffiliate && state.Status != constants.AffiliateStatusActive {
		return Principal{}, ErrPrincipalNotActive
	}
	return principalFromState(state), nil
}

func (s *AuthService) loadAuthState(kind string, id uint) (*cache.PrincipalAuthState, error) {
	switch kind {
	case constants.PrincipalKindAdmin:
		admin, err := s.adminRepo.GetByID(id)
		if err != nil {
			return nil, err
		}
		if admin == nil {
			return nil, ErrInvalidToken
		}
		return cache.BuildAdminAuthState(admin), nil
	case constants.PrincipalKindAffiliate:
		affiliate, err := s.affiliateRepo.GetByID(id)
		if err != nil {
			return nil, err
		}
		if affiliate == nil || affiliate.IsSystem {
			return nil, ErrInvalidToken
		}
		return cache.BuildAffiliateAuthState(affiliate), nil
	}
	return nil, ErrInvalidToken
}

func principalFromState(state *cache.PrincipalAuthState) Principal {
	if state.Kind == constants.PrincipalKindAdmin {
		return AdminPrincipal(&models.Admin{ID: state.ID, Email: state.Email, Role: state.Role})
	}
	return AffiliatePrincipal(&models.Affiliate{ID: state.ID, Email: state.Email})
}

// RegisterAffiliate 推广方自助注册，状态为待审核
func (s *AuthService) RegisterAffiliate(input RegisterAffiliateInput) (*models.Affiliate, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: 名称不能为空", ErrInvalidInput)
	}
	email := normalizeEmail(input.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := s.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	if err := s.ensureEmailAvailable(email, 0); err != nil {
		return nil, err
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	commissionRate := models.NewMoneyFromDecimal(percentageDecimal(s.defaultCommissionPercentage()))
	affiliate := &models.Affiliate{
		Name:           name,
		Email:          email,
		PhoneNumber:    strings.TrimSpace(input.PhoneNumber),
		PasswordHash:   hash,
		Address:        strings.TrimSpace(input.Address),
		UpiID:          strings.TrimSpace(input.UpiID),
		CommissionRate: commissionRate,
		Status:         constants.AffiliateStatusInactive,
	}
	if err := s.affiliateRepo.Create(affiliate); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	logger.Infow("affiliate_registered", "affiliate_id", affiliate.ID, "email", affiliate.Email)
	return affiliate, nil
}

func (s *AuthService) defaultCommissionPercentage() float64 {
	if s.systemConfig == nil {
		return SystemDefaultSetting("").DefaultCommissionPercentage
	}
	setting, err := s.systemConfig.Get()
	if err != nil {
		logger.Warnw("system_config_read_failed", "error", err)
	}
	return setting.DefaultCommissionPercentage
}

// ensureEmailAvailable 邮箱在管理员与推广方之间全局唯一
func (s *AuthService) ensureEmailAvailable(email string, selfAffiliateID uint) error {
	admin, err := s.adminRepo.GetByEmail(email)
	if err != nil {
		return err
	}
	if admin != nil {
		return ErrEmailExists
	}
	existing, err := s.affiliateRepo.GetByEmail(email)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfAffiliateID {
		return ErrEmailExists
	}
	return nil
}

// GetProfile 获取推广方资料
func (s *AuthService) GetProfile(affiliateID uint) (*models.Affiliate, error) {
	affiliate, err := s.affiliateRepo.GetByID(affiliateID)
	if err != nil {
		return nil, err
	}
	if affiliate == nil || affiliate.IsSystem {
		return nil, ErrAffiliateNotFound
	}
	return affiliate, nil
}

// UpdateProfile 推广方修改个人资料
func (s *AuthService) UpdateProfile(affiliateID uint, input UpdateProfileInput) (*models.Affiliate, error) {
	affiliate, err := s.GetProfile(affiliateID)
	if err != nil {
		return nil, err
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
			if err := s.ensureEmailAvailable(email, affiliate.ID); err != nil {
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
	if err := s.affiliateRepo.Update(affiliate); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	_ = cache.DelPrincipalAuthState(context.Background(), constants.PrincipalKindAffiliate, affiliate.ID)
	return affiliate, nil
}

// ChangePassword 修改当前身份的密码，旧 Token 全部失效
func (s *AuthService) ChangePassword(principal Principal, currentPassword, newPassword string) error {
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	switch {
	case principal.IsAdmin():
		admin, err := s.adminRepo.GetByID(principal.AdminID)
		if err != nil {
			return err
		}
		if admin == nil {
			return ErrAdminNotFound
		}
		if !verifyPassword(admin.PasswordHash, currentPassword) {
			return ErrInvalidPassword
		}
		now := time.Now()
		admin.PasswordHash = hash
		admin.TokenVersion++
		admin.TokenInvalidBefore = &now
		if err := s.adminRepo.Update(admin); err != nil {
			return err
		}
		_ = cache.SetPrincipalAuthState(context.Background(), cache.BuildAdminAuthState(admin))
	case principal.IsAffiliate():
		affiliate, err := s.GetProfile(principal.AffiliateID)
		if err != nil {
			return err
		}
		if !verifyPassword(affiliate.PasswordHash, currentPassword) {
			return ErrInvalidPassword
		}
		affiliate.PasswordHash = hash
		affiliate.TokenVersion++
		if err := s.affiliateRepo.Update(affiliate); err != nil {
			return err
		}
		_ = cache.SetPrincipalAuthState(context.Background(), cache.BuildAffiliateAuthState(affiliate))
	default:
		return ErrForbidden
	}
	logger.Infow("principal_password_changed", "kind", principal.Kind, "id", principal.ID())
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
