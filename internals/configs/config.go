package configs

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// CustomDataValidation policy values (see AppConfig.CustomDataValidation).
const (
	ValidationOff    = "off"
	ValidationStrict = "strict"
)

// AppConfig holds everything main() needs to wire the app.
// Constructed once at startup and passed down explicitly.
type AppConfig struct {
	Port string

	// Postgres (canonical store)
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string
	DBSSLMode  string

	// MongoDB (flexible-attribute store)
	MongoURI  string
	MongoName string

	// Redis (live attendance store)
	RedisURL string

	// "off" (accept any custom data, matches the legacy behavior) or
	// "strict" (validate values against the event type's declared fields)
	CustomDataValidation string
}

// =======================
// ENV LOADER
// =======================
func LoadEnv() *AppConfig {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ No .env file found, using system ENV")
		} else {
			log.Println("✅ .env file loaded!")
		}
	} else {
		log.Println("🚀 Running in Railway, using system ENV")
	}

	cfg := &AppConfig{
		Port:                 GetEnv("PORT", "3000"),
		DBUser:               GetEnv("DB_USER", "postgres"),
		DBPassword:           GetEnv("DB_PASSWORD"),
		DBHost:               GetEnv("DB_HOST", "127.0.0.1"),
		DBPort:               GetEnv("DB_PORT", "5432"),
		DBName:               GetEnv("DB_NAME", "youth_group_program"),
		DBSSLMode:            GetEnv("DB_SSLMODE", "require"),
		MongoURI:             GetEnv("MONGODB_URI"),
		MongoName:            GetEnv("MONGODB_NAME", "youthgroup"),
		RedisURL:             GetEnv("REDIS_URL"),
		CustomDataValidation: GetEnv("CUSTOM_DATA_VALIDATION", ValidationOff),
	}

	if cfg.DBPassword == "" {
		log.Println("❌ DB_PASSWORD is not set!")
	}
	if cfg.MongoURI == "" {
		log.Println("⚠️ MONGODB_URI is not set. Custom field features will degrade.")
	}
	if cfg.RedisURL == "" {
		log.Println("⚠️ REDIS_URL is not set. Live attendance features will degrade.")
	}

	return cfg
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}
