package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Academic levels a fee may be restricted to. LevelAll is the wildcard:
// any level in the program qualifies.
const (
	LevelAll = "ALL"
)

var KnownLevels = []string{"L100", "L200", "L300", "L400", "L500", "L600", LevelAll}

type Fee struct {
	FeeID        uuid.UUID `gorm:"column:fee_id;type:uuid;default:gen_random_uuid();primaryKey" json:"fee_id"`
	FeeProgramID uuid.UUID `gorm:"column:fee_program_id;type:uuid;not null;index" json:"fee_program_id"`

	FeeCategory string `gorm:"column:fee_category;not null" json:"fee_category"`
	FeeAmount   int64  `gorm:"column:fee_amount;not null;check:fee_amount >= 0" json:"fee_amount"` // naira

	FeeSession  *string `gorm:"column:fee_session;type:varchar(16)" json:"fee_session,omitempty"`
	FeeSemester *string `gorm:"column:fee_semester;type:varchar(16)" json:"fee_semester,omitempty"`

	// jsonb array of level codes; null/empty means unrestricted.
	FeeLevels datatypes.JSON `gorm:"column:fee_levels;type:jsonb" json:"fee_levels,omitempty"`

	CreatedAt time.Time      `gorm:"column:fee_created_at;autoCreateTime" json:"fee_created_at"`
	UpdatedAt time.Time      `gorm:"column:fee_updated_at;autoUpdateTime" json:"fee_updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:fee_deleted_at;index" json:"fee_deleted_at,omitempty"`
}

func (Fee) TableName() string { return "fees" }

func (f *Fee) Levels() []string {
	if len(f.FeeLevels) == 0 {
		return nil
	}
	var out []string
	_ = json.Unmarshal(f.FeeLevels, &out)
	return out
}

func (f *Fee) SetLevels(levels []string) error {
	if levels == nil {
		f.FeeLevels = nil
		return nil
	}
	b, err := json.Marshal(levels)
	if err != nil {
		return err
	}
	f.FeeLevels = datatypes.JSON(b)
	return nil
}

func IsKnownLevel(level string) bool {
	for _, l := range KnownLevels {
		if l == level {
			return true
		}
	}
	return false
}
