package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"feespay_backend/internals/features/catalog/dto"
	"feespay_backend/internals/features/catalog/model"
	helper "feespay_backend/internals/helpers"
)

type ProgramController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewProgramController(db *gorm.DB, v *validator.Validate) *ProgramController {
	return &ProgramController{DB: db, Validator: v}
}

// GET /programs
func (h *ProgramController) List(c *fiber.Ctx) error {
	var programs []model.Program
	if err := h.DB.WithContext(c.Context()).
		Order("program_name ASC").
		Find(&programs).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, programs)
}

// POST /programs  (admin)
func (h *ProgramController) Create(c *fiber.Ctx) error {
	var req dto.CreateProgramRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	program := model.Program{
		ProgramName:       req.ProgramName,
		ProgramDegreeType: req.ProgramDegreeType,
		ProgramFaculty:    req.ProgramFaculty,
	}
	if err := h.DB.WithContext(c.Context()).Create(&program).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "create program failed: "+err.Error())
	}
	return helper.JsonCreated(c, program)
}

// PUT /programs/:id  (admin)
func (h *ProgramController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid program id")
	}

	var program model.Program
	if err := h.DB.WithContext(c.Context()).
		First(&program, "program_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "program not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var req dto.UpdateProgramRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	if req.ProgramName != nil {
		program.ProgramName = *req.ProgramName
	}
	if req.ProgramDegreeType != nil {
		program.ProgramDegreeType = req.ProgramDegreeType
	}
	if req.ProgramFaculty != nil {
		program.ProgramFaculty = req.ProgramFaculty
	}

	if err := h.DB.WithContext(c.Context()).Save(&program).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "save failed: "+err.Error())
	}
	return helper.JsonOK(c, program)
}

// DELETE /programs/:id  (admin)
func (h *ProgramController) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid program id")
	}
	if err := h.DB.WithContext(c.Context()).
		Delete(&model.Program{}, "program_id = ?", id).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, fiber.Map{"deleted": id})
}
