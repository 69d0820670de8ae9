package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"feespay_backend/internals/features/receipts/service"
	helpers "feespay_backend/internals/helpers"
)

type ReceiptController struct {
	Service   *service.ReceiptService
	Validator *validator.Validate
}

func NewReceiptController(s *service.ReceiptService, v *validator.Validate) *ReceiptController {
	return &ReceiptController{Service: s, Validator: v}
}

type generateReceiptRequest struct {
	PaymentID string `json:"payment_id" validate:"required,uuid4"`
}

// Generate issues (or returns the existing) receipt for a settled payment.
func (ctl *ReceiptController) Generate(c *fiber.Ctx) error {
	var req generateReceiptRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctl.Validator.Struct(req); err != nil {
		return helpers.JsonValidationError(c, err)
	}

	id, err := uuid.Parse(req.PaymentID)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "invalid payment id")
	}

	rec, err := ctl.Service.Generate(c.UserContext(), id)
	switch {
	case err == nil:
		return helpers.JsonCreated(c, rec)
	case errors.Is(err, service.ErrAlreadyGenerated):
		return helpers.JsonOK(c, rec)
	case errors.Is(err, service.ErrPaymentNotFound):
		return helpers.JsonError(c, fiber.StatusNotFound, "payment not found")
	case errors.Is(err, service.ErrPaymentNotPaid):
		return helpers.JsonError(c, fiber.StatusConflict, "payment has not been settled")
	default:
		return helpers.JsonError(c, fiber.StatusInternalServerError, "failed to generate receipt")
	}
}

// GetByPayment looks up the receipt issued for a payment id.
func (ctl *ReceiptController) GetByPayment(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("paymentID"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "invalid payment id")
	}

	rec, err := ctl.Service.GetByPaymentID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrReceiptNotFound) {
			return helpers.JsonError(c, fiber.StatusNotFound, "receipt not found")
		}
		return helpers.JsonError(c, fiber.StatusInternalServerError, "failed to load receipt")
	}
	return helpers.JsonOK(c, rec)
}
