package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Admin struct {
	AdminID           uuid.UUID `gorm:"column:admin_id;type:uuid;default:gen_random_uuid();primaryKey" json:"admin_id"`
	AdminEmail        string    `gorm:"column:admin_email;not null;uniqueIndex" json:"admin_email"`
	AdminName         string    `gorm:"column:admin_name;not null" json:"admin_name"`
	AdminPasswordHash string    `gorm:"column:admin_password_hash;not null" json:"-"`

	CreatedAt time.Time      `gorm:"column:admin_created_at;autoCreateTime" json:"admin_created_at"`
	UpdatedAt time.Time      `gorm:"column:admin_updated_at;autoUpdateTime" json:"admin_updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:admin_deleted_at;index" json:"admin_deleted_at,omitempty"`
}

func (Admin) TableName() string { return "admins" }
