package models

import (
	"strings"

	"github.com/elevate-affiliate/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

const (
	defaultAdminEmail    = "admin@elevate.local"
	defaultAdminPassword = "admin123"
)

// InitDefaultAdmin 初始化默认超级管理员账号
func InitDefaultAdmin(email, password string) error {
	var count int64
	if err := DB.Model(&Admin{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		email = defaultAdminEmail
	}
	if password == "" {
		password = defaultAdminPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := Admin{
		Name:         "Super Admin",
		Email:        email,
		PasswordHash: string(hash),
		Role:         "superadmin",
	}
	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	if password == defaultAdminPassword {
		logger.Warnw("default_admin_created_with_default_password", "email", email)
		logger.Warnw("default_admin_password_change_required", "email", email)
	} else {
		logger.Warnw("default_admin_created", "email", email, "password_hidden", true)
	}
	return nil
}
