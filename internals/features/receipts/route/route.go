package route

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"feespay_backend/internals/features/receipts/controller"
	"feespay_backend/internals/features/receipts/service"
)

func PublicRoutes(r fiber.Router, s *service.ReceiptService, v *validator.Validate) {
	h := controller.NewReceiptController(s, v)
	r.Post("/receipts/generate", h.Generate)
	r.Get("/receipts/:paymentID", h.GetByPayment)
}
