package routes

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"feespay_backend/internals/configs"
	adminRoute "feespay_backend/internals/features/admins/route"
	catalogRoute "feespay_backend/internals/features/catalog/route"
	catalogService "feespay_backend/internals/features/catalog/service"
	paymentGateway "feespay_backend/internals/features/payments/gateway"
	paymentRoute "feespay_backend/internals/features/payments/route"
	paymentService "feespay_backend/internals/features/payments/service"
	receiptRoute "feespay_backend/internals/features/receipts/route"
	receiptService "feespay_backend/internals/features/receipts/service"
	"feespay_backend/internals/middlewares"
)

// SetupRoutes wires the feature services together and mounts every route
// group. Public routes live under /api, admin routes under /api/admin
// behind the JWT guard.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	v := validator.New()

	registry := buildGatewayRegistry()
	store := paymentService.NewGormStore(db)
	fees := catalogService.NewFeeLookup(db)
	receipts := receiptService.NewReceiptService(db)

	payments := paymentService.NewPaymentService(store, fees, registry,
		paymentService.WithReceiptNotifier(receipts),
		paymentService.WithReferencePrefix(configs.PaymentRefPrefix),
	)

	log.Println("[INFO] Mounting PUBLIC routes...")
	public := app.Group("/api")
	paymentRoute.PublicRoutes(public, payments, store, v)
	catalogRoute.PublicRoutes(public, db, v)
	receiptRoute.PublicRoutes(public, receipts, v)
	adminRoute.PublicRoutes(public, db, v)

	log.Println("[INFO] Mounting ADMIN routes...")
	admin := app.Group("/api/admin", middlewares.AdminGuard())
	paymentRoute.AdminRoutes(admin, payments, store, v)
	catalogRoute.AdminRoutes(admin, db, v)
	adminRoute.AdminRoutes(admin, db, v)
}

func buildGatewayRegistry() *paymentGateway.Registry {
	adapters := []paymentGateway.Adapter{}

	if configs.PaystackSecretKey != "" {
		adapters = append(adapters, paymentGateway.NewPaystack(configs.PaystackSecretKey))
	}
	if configs.FlutterwaveSecretKey != "" {
		adapters = append(adapters, paymentGateway.NewFlutterwave(configs.FlutterwaveSecretKey, configs.FlutterwaveRedirectURL))
	}
	if configs.GlobalPayMerchantID != "" {
		adapters = append(adapters, paymentGateway.NewGlobalPay(configs.GlobalPayMerchantID, configs.GlobalPayAPIKey, configs.GlobalPayBaseURL))
	}
	if configs.MidtransServerKey != "" {
		adapters = append(adapters, paymentGateway.NewMidtrans(configs.MidtransServerKey, configs.MidtransUseProd))
	}

	reg := paymentGateway.NewRegistry(adapters...)
	log.Printf("[INFO] Gateways enabled: %v", reg.Names())
	return reg
}
