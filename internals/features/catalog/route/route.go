package route

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"feespay_backend/internals/features/catalog/controller"
)

// PublicRoutes: read-only catalog lookups.
func PublicRoutes(r fiber.Router, db *gorm.DB, v *validator.Validate) {
	fees := controller.NewFeeController(db, v)
	programs := controller.NewProgramController(db, v)

	r.Get("/fees", fees.List)
	r.Get("/fees/program/:programID", fees.ListByProgram)
	r.Get("/programs", programs.List)
}

// AdminRoutes: catalog mutation, mounted behind the admin guard.
func AdminRoutes(r fiber.Router, db *gorm.DB, v *validator.Validate) {
	fees := controller.NewFeeController(db, v)
	programs := controller.NewProgramController(db, v)

	r.Post("/fees", fees.Create)
	r.Put("/fees/:id", fees.Update)
	r.Delete("/fees/:id", fees.Delete)

	r.Post("/programs", programs.Create)
	r.Put("/programs/:id", programs.Update)
	r.Delete("/programs/:id", programs.Delete)
}
