package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elevate-affiliate/internal/constants"
	"github.com/elevate-affiliate/internal/models"

	"gorm.io/gorm"
)

// AdminRepository 管理员数据访问接口
type AdminRepository interface {
	GetByEmail(email string) (*models.Admin, error)
	GetByID(id uint) (*models.Admin, error)
	List() ([]models.Admin, error)
	Create(admin *models.Admin) error
	Update(admin *models.Admin) error
	TouchLastLogin(id uint, at time.Time) error
}

// adminListColumns 列表不返回密码哈希与令牌版本
var adminListColumns = []string{"id", "name", "email", "role", "last_login_at", "created_at", "updated_at"}

var adminListOrder = fmt.Sprintf("CASE WHEN role = '%s' THEN 0 ELSE 1 END, id ASC", constants.AdminRoleSuperAdmin)

// GormAdminRepository GORM 实现
type GormAdminRepository struct {
	db *gorm.DB
}

// NewAdminRepository 创建管理员仓库
func NewAdminRepository(db *gorm.DB) *GormAdminRepository {
	return &GormAdminRepository{db: db}
}

// findFirst 查询单条记录，不存在时返回 nil, nil
func findFirst[T any](query *gorm.DB) (*T, error) {
	var row T
	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// GetByEmail 邮箱大小写不敏感
func (r *GormAdminRepository) GetByEmail(email string) (*models.Admin, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return nil, nil
	}
	return findFirst[models.Admin](r.db.Where("email = ?", normalized))
}

// GetByID 根据 ID 获取管理员
func (r *GormAdminRepository) GetByID(id uint) (*models.Admin, error) {
	if id == 0 {
		return nil, nil
	}
	return findFirst[models.Admin](r.db.Where("id = ?", id))
}

// List 超级管理员排在前面
func (r *GormAdminRepository) List() ([]models.Admin, error) {
	admins := make([]models.Admin, 0)
	err := r.db.Select(adminListColumns).
		Order(adminListOrder).
		Find(&admins).Error
	return admins, err
}

// Create 创建管理员
func (r *GormAdminRepository) Create(admin *models.Admin) error {
	return r.db.Create(admin).Error
}

// Update 整行保存（改密、改角色）
func (r *GormAdminRepository) Update(admin *models.Admin) error {
	return r.db.Save(admin).Error
}

// TouchLastLogin 只更新最近登录时间
func (r *GormAdminRepository) TouchLastLogin(id uint, at time.Time) error {
	return r.db.Model(&models.Admin{}).Where("id = ?", id).UpdateColumn("last_login_at", at).Error
}
