package dto

import (
	"github.com/google/uuid"
)

type CreateProgramRequest struct {
	ProgramName       string  `json:"program_name" validate:"required,min=2"`
	ProgramDegreeType *string `json:"program_degree_type,omitempty"`
	ProgramFaculty    *string `json:"program_faculty,omitempty"`
}

type UpdateProgramRequest struct {
	ProgramName       *string `json:"program_name,omitempty" validate:"omitempty,min=2"`
	ProgramDegreeType *string `json:"program_degree_type,omitempty"`
	ProgramFaculty    *string `json:"program_faculty,omitempty"`
}

type CreateFeeRequest struct {
	FeeProgramID uuid.UUID `json:"program_id" validate:"required"`
	FeeCategory  string    `json:"fee_category" validate:"required,min=2"`
	FeeAmount    int64     `json:"amount" validate:"required,gt=0"`
	FeeSession   *string   `json:"session,omitempty"`
	FeeSemester  *string   `json:"semester,omitempty"`
	FeeLevels    []string  `json:"levels,omitempty" validate:"omitempty,dive,oneof=L100 L200 L300 L400 L500 L600 ALL"`
}

type UpdateFeeRequest struct {
	FeeCategory *string  `json:"fee_category,omitempty" validate:"omitempty,min=2"`
	FeeAmount   *int64   `json:"amount,omitempty" validate:"omitempty,gt=0"`
	FeeSession  *string  `json:"session,omitempty"`
	FeeSemester *string  `json:"semester,omitempty"`
	FeeLevels   []string `json:"levels,omitempty" validate:"omitempty,dive,oneof=L100 L200 L300 L400 L500 L600 ALL"`
}
