package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Program struct {
	ProgramID         uuid.UUID `gorm:"column:program_id;type:uuid;default:gen_random_uuid();primaryKey" json:"program_id"`
	ProgramName       string    `gorm:"column:program_name;not null;uniqueIndex" json:"program_name"`
	ProgramDegreeType *string   `gorm:"column:program_degree_type;type:varchar(32)" json:"program_degree_type,omitempty"`
	ProgramFaculty    *string   `gorm:"column:program_faculty" json:"program_faculty,omitempty"`

	CreatedAt time.Time      `gorm:"column:program_created_at;autoCreateTime" json:"program_created_at"`
	UpdatedAt time.Time      `gorm:"column:program_updated_at;autoUpdateTime" json:"program_updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:program_deleted_at;index" json:"program_deleted_at,omitempty"`
}

func (Program) TableName() string { return "programs" }
