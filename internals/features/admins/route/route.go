package route

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"feespay_backend/internals/features/admins/controller"
	"feespay_backend/internals/middlewares"
)

func PublicRoutes(r fiber.Router, db *gorm.DB, v *validator.Validate) {
	h := controller.NewAuthController(db, v)
	r.Post("/admin/login", middlewares.LoginRateLimiter(), h.Login)
}

func AdminRoutes(r fiber.Router, db *gorm.DB, v *validator.Validate) {
	h := controller.NewAuthController(db, v)
	r.Post("/admin/admins", h.CreateAdmin)
}
