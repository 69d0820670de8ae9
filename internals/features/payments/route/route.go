package route

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"feespay_backend/internals/features/payments/controller"
	"feespay_backend/internals/features/payments/service"
	"feespay_backend/internals/middlewares"
)

func PublicRoutes(r fiber.Router, svc *service.PaymentService, store service.Store, v *validator.Validate) {
	h := controller.NewPaymentController(svc, store, v)

	r.Post("/payments/initiate", h.Initiate)
	r.Get("/payments/verify/:reference", middlewares.VerifyRateLimiter(), h.Verify)
	r.Get("/payments/by-ref/:reference", h.LookupByRef)

	r.Get("/payments/balance/by-ref/:reference", h.BalanceByRef)
	r.Post("/payments/balance/initiate", h.BalanceInitiate)
	// Legacy portal path for the same flow.
	r.Post("/payments/balance/process", h.BalanceInitiate)

	// Gateways call back here. GET covers redirect-style callbacks,
	// POST covers server-to-server notifications.
	r.Post("/payments/webhook/:gateway", h.Webhook)
	r.Get("/payments/webhook/:gateway", h.Webhook)
}

func AdminRoutes(r fiber.Router, svc *service.PaymentService, store service.Store, v *validator.Validate) {
	h := controller.NewPaymentController(svc, store, v)
	r.Get("/payments", h.List)
}
