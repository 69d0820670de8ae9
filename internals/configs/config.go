package configs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	JWTSecret string

	PaystackSecretKey    string
	FlutterwaveSecretKey string
	FlutterwaveRedirectURL  string
	GlobalPayMerchantID  string
	GlobalPayAPIKey      string
	GlobalPayBaseURL     string
	MidtransServerKey    string
	MidtransUseProd      bool

	PaymentRefPrefix string
	ReceiptBaseURL   string
)

// LoadEnv pulls configuration from .env (local) or the process
// environment (deployed).
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("no .env file found, using system ENV")
		}
	}

	JWTSecret = GetEnv("JWT_SECRET")
	if JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET is not set; admin routes will reject every token")
	}

	PaystackSecretKey = GetEnv("PAYSTACK_SECRET_KEY")
	FlutterwaveSecretKey = GetEnv("FLUTTERWAVE_SECRET_KEY")
	FlutterwaveRedirectURL = GetEnv("FLUTTERWAVE_REDIRECT_URL", GetEnv("PAYMENT_CALLBACK_URL"))
	GlobalPayMerchantID = GetEnv("GLOBALPAY_MERCHANT_ID")
	GlobalPayAPIKey = GetEnv("GLOBALPAY_API_KEY")
	GlobalPayBaseURL = GetEnv("GLOBALPAY_BASE_URL", "https://api.globalpay.com.ng")
	MidtransServerKey = GetEnv("MIDTRANS_SERVER_KEY")
	MidtransUseProd = GetEnvBool("MIDTRANS_USE_PROD", false)

	PaymentRefPrefix = GetEnv("PAYMENT_REF_PREFIX", "PAY")
	ReceiptBaseURL = GetEnv("RECEIPT_BASE_URL", "https://receipts.feespay.local")
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func GetEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
