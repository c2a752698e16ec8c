package config

import (
	"crypto/rsa"
	"encoding/base64"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"

	"github.com/estia/marketplace-service/internal/utils"
)

const OrganizationName = "Estia"

type Config struct {
	AppName string
	AppPort string
	AppUrl  string

	DBUrl string

	RedisAddr     string
	RedisPassword string

	NatsURL string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	SendgridAPIKey    string
	SendgridFromEmail string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromPhone  string
	OnCallPhone      string

	StripeSecretKey  string
	StripeSuccessURL string
	StripeCancelURL  string
	// StripePriceIDs maps "<plan_id>:<billing_cycle>" to a Stripe price ID,
	// parsed from STRIPE_PRICE_IDS ("basic:MONTHLY=price_123,...").
	StripePriceIDs map[string]string

	RSAPublicKey *rsa.PublicKey

	CORSAllowedOrigins []string
}

// LoadConfig reads the environment, with a best-effort .env overlay for
// local development. Missing required values are fatal.
func LoadConfig(appName string) *Config {
	if err := godotenv.Load(); err != nil {
		utils.Logger.Debug("No .env file found; using process environment")
	}

	utils.Logger.Info("Loading config for app: ", appName)

	cfg := &Config{
		AppName: appName,
		AppPort: mustEnv("APP_PORT"),
		AppUrl:  mustEnv("APP_URL"),

		DBUrl: mustEnv("DB_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		NatsURL: os.Getenv("NATS_URL"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    envOr("MINIO_BUCKET", "listing-images"),
		MinioUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",

		SendgridAPIKey:    os.Getenv("SENDGRID_API_KEY"),
		SendgridFromEmail: envOr("SENDGRID_FROM_EMAIL", "no-reply@estia.example"),

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromPhone:  os.Getenv("TWILIO_FROM_PHONE"),
		OnCallPhone:      os.Getenv("ON_CALL_PHONE"),

		StripeSecretKey:  os.Getenv("STRIPE_SECRET_KEY"),
		StripeSuccessURL: os.Getenv("STRIPE_SUCCESS_URL"),
		StripeCancelURL:  os.Getenv("STRIPE_CANCEL_URL"),
		StripePriceIDs:   parsePriceIDs(os.Getenv("STRIPE_PRICE_IDS")),
	}

	pubPEM, err := base64.StdEncoding.DecodeString(mustEnv("RSA_PUBLIC_KEY_BASE64"))
	if err != nil {
		utils.Logger.WithError(err).Fatal("RSA_PUBLIC_KEY_BASE64 is not valid base64")
	}
	cfg.RSAPublicKey, err = jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse RSA public key")
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.CORSAllowedOrigins = strings.Split(origins, ",")
	} else {
		cfg.CORSAllowedOrigins = []string{cfg.AppUrl}
	}

	return cfg
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		utils.Logger.Fatalf("%s env var is missing", key)
	}
	return v
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parsePriceIDs(raw string) map[string]string {
	out := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		kv := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(kv) == 2 && kv[0] != "" && kv[1] != "" {
			out[kv[0]] = kv[1]
		}
	}
	return out
}
