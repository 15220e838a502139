package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/elevate-affiliate/internal/constants"
	"github.com/elevate-affiliate/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// PrincipalAuthState 登录身份鉴权快照（管理员与推广方共用）
// token_invalid_before 为 Unix 秒时间戳，0 表示未设置
type PrincipalAuthState struct {
	Kind               string `json:"kind"`
	ID                 uint   `json:"id"`
	Email              string `json:"email"`
	Role               string `json:"role,omitempty"`
	Status             string `json:"status,omitempty"`
	TokenVersion       uint64 `json:"token_version"`
	TokenInvalidBefore int64  `json:"token_invalid_before"`
	UpdatedAt          int64  `json:"updated_at"`
}

func principalAuthStateKey(kind string, id uint) string {
	return fmt.Sprintf("auth:%s:%d", kind, id)
}

// BuildAdminAuthState 从管理员模型构建鉴权快照
func BuildAdminAuthState(admin *models.Admin) *PrincipalAuthState {
	if admin == nil {
		return nil
	}
	state := &PrincipalAuthState{
		Kind:         constants.PrincipalKindAdmin,
		ID:           admin.ID,
		Email:        admin.Email,
		Role:         admin.Role,
		TokenVersion: admin.TokenVersion,
		UpdatedAt:    time.Now().Unix(),
	}
	if admin.TokenInvalidBefore != nil {
		state.TokenInvalidBefore = admin.TokenInvalidBefore.Unix()
	}
	return state
}

// BuildAffiliateAuthState 从推广方模型构建鉴权快照
func BuildAffiliateAuthState(affiliate *models.Affiliate) *PrincipalAuthState {
	if affiliate == nil {
		return nil
	}
	return &PrincipalAuthState{
		Kind:         constants.PrincipalKindAffiliate,
		ID:           affiliate.ID,
		Email:        affiliate.Email,
		Status:       affiliate.Status,
		TokenVersion: affiliate.TokenVersion,
		UpdatedAt:    time.Now().Unix(),
	}
}

// GetPrincipalAuthState 获取鉴权快照
func GetPrincipalAuthState(ctx context.Context, kind string, id uint) (*PrincipalAuthState, bool, error) {
	if id == 0 || kind == "" {
		return nil, false, nil
	}
	var state PrincipalAuthState
	hit, err := GetJSON(ctx, principalAuthStateKey(kind, id), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetPrincipalAuthState 写入鉴权快照
func SetPrincipalAuthState(ctx context.Context, state *PrincipalAuthState) error {
	if state == nil || state.ID == 0 || state.Kind == "" {
		return nil
	}
	return SetJSON(ctx, principalAuthStateKey(state.Kind, state.ID), state, authStateCacheTTL)
}

// DelPrincipalAuthState 删除鉴权快照
func DelPrincipalAuthState(ctx context.Context, kind string, id uint) error {
	if id == 0 || kind == "" {
		return nil
	}
	return Del(ctx, principalAuthStateKey(kind, id))
}
