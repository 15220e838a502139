package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/elevate-affiliate/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SingletonRepository 系统单例锚点数据访问接口
type SingletonRepository interface {
	WithTx(tx *gorm.DB) SingletonRepository

	Get(key string) (*models.SystemSingleton, error)
	GetForUpdate(key string) (*models.SystemSingleton, error)
	Create(anchor *models.SystemSingleton) error
	UpdateRef(key string, refID uint) error
}

// GormSingletonRepository GORM 实现
type GormSingletonRepository struct {
	db *gorm.DB
}

// NewSingletonRepository 创建单例锚点仓储
func NewSingletonRepository(db *gorm.DB) *GormSingletonRepository {
	return &GormSingletonRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSingletonRepository) WithTx(tx *gorm.DB) SingletonRepository {
	if tx == nil {
		return r
	}
	return &GormSingletonRepository{db: tx}
}

// Get 获取锚点
func (r *GormSingletonRepository) Get(key string) (*models.SystemSingleton, error) {
	return r.get(r.db, key)
}

// GetForUpdate 获取并锁定锚点
func (r *GormSingletonRepository) GetForUpdate(key string) (*models.SystemSingleton, error) {
	return r.get(r.db.Clauses(clause.Locking{Strength: "UPDATE"}), key)
}

func (r *GormSingletonRepository) get(db *gorm.DB, key string) (*models.SystemSingleton, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}
	var anchor models.SystemSingleton
	if err := db.Where("key = ?", key).First(&anchor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &anchor, nil
}

// Create 创建锚点，键冲突时返回唯一约束错误
func (r *GormSingletonRepository) Create(anchor *models.SystemSingleton) error {
	return r.db.Create(anchor).Error
}

// UpdateRef 更新锚点指向
func (r *GormSingletonRepository) UpdateRef(key string, refID uint) error {
	return r.db.Model(&models.SystemSingleton{}).
		Where("key = ?", key).
		Updates(map[string]interface{}{
			"ref_id":     refID,
			"updated_at": time.Now(),
		}).Error
}
