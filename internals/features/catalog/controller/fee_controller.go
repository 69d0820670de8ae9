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

type FeeController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewFeeController(db *gorm.DB, v *validator.Validate) *FeeController {
	return &FeeController{DB: db, Validator: v}
}

// GET /fees
func (h *FeeController) List(c *fiber.Ctx) error {
	var fees []model.Fee
	if err := h.DB.WithContext(c.Context()).
		Order("fee_created_at DESC").
		Find(&fees).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, fees)
}

// GET /fees/program/:programID
func (h *FeeController) ListByProgram(c *fiber.Ctx) error {
	programID, err := uuid.Parse(c.Params("programID"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid program id")
	}
	var fees []model.Fee
	if err := h.DB.WithContext(c.Context()).
		Where("fee_program_id = ?", programID).
		Order("fee_category ASC").
		Find(&fees).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, fees)
}

// POST /fees  (admin)
func (h *FeeController) Create(c *fiber.Ctx) error {
	var req dto.CreateFeeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var program model.Program
	if err := h.DB.WithContext(c.Context()).
		First(&program, "program_id = ?", req.FeeProgramID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "program not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	fee := model.Fee{
		FeeProgramID: req.FeeProgramID,
		FeeCategory:  req.FeeCategory,
		FeeAmount:    req.FeeAmount,
		FeeSession:   req.FeeSession,
		FeeSemester:  req.FeeSemester,
	}
	if err := fee.SetLevels(req.FeeLevels); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid levels")
	}

	if err := h.DB.WithContext(c.Context()).Create(&fee).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "create fee failed: "+err.Error())
	}
	return helper.JsonCreated(c, fee)
}

// PUT /fees/:id  (admin)
func (h *FeeController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid fee id")
	}

	var fee model.Fee
	if err := h.DB.WithContext(c.Context()).
		First(&fee, "fee_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "fee not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var req dto.UpdateFeeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	if req.FeeCategory != nil {
		fee.FeeCategory = *req.FeeCategory
	}
	if req.FeeAmount != nil {
		fee.FeeAmount = *req.FeeAmount
	}
	if req.FeeSession != nil {
		fee.FeeSession = req.FeeSession
	}
	if req.FeeSemester != nil {
		fee.FeeSemester = req.FeeSemester
	}
	if req.FeeLevels != nil {
		if err := fee.SetLevels(req.FeeLevels); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid levels")
		}
	}

	if err := h.DB.WithContext(c.Context()).Save(&fee).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "save failed: "+err.Error())
	}
	return helper.JsonOK(c, fee)
}

// DELETE /fees/:id  (admin)
func (h *FeeController) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid fee id")
	}
	if err := h.DB.WithContext(c.Context()).
		Delete(&model.Fee{}, "fee_id = ?", id).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, fiber.Map{"deleted": id})
}
