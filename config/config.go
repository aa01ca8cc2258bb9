package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port           string
	RequestTimeout int // seconds

	DBDriver   string // postgres, mysql, sqlite
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBDSN      string // overrides the individual DB_* values when set

	JWTKey             string
	JWTTTLHours        int
	JWTRefreshTTLHours int
	ResetTTLMinutes    int
	SaltRound          int

	SendGridAPIKey  string
	EmailSender     string
	EmailSenderName string
	FrontendURL     string

	StorageAPIURL string
	StorageAPIKey string

	CertificateRendererURL string

	UploadDir string

	ReleaseCron string

	AdminEmail    string
	AdminPassword string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:           getEnv("PORT", "3000"),
		RequestTimeout: getEnvInt("REQUEST_TIMEOUT_SECONDS", 10),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "nextlevel"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBDSN:      getEnv("DB_DSN", ""),

		JWTKey:             getEnv("JWT_SECRET_KEY", "defaultSecret"),
		JWTTTLHours:        getEnvInt("JWT_TTL_HOURS", 24),
		JWTRefreshTTLHours: getEnvInt("JWT_REFRESH_TTL_HOURS", 168),
		ResetTTLMinutes:    getEnvInt("PASSWORD_RESET_TTL_MINUTES", 60),
		SaltRound:          getEnvInt("SALT_ROUND", 10),

		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		EmailSender:     getEnv("EMAIL_SENDER", "no-reply@nextlevel.local"),
		EmailSenderName: getEnv("EMAIL_SENDER_NAME", "Next Level"),
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:5173"),

		StorageAPIURL: getEnv("STORAGE_API_URL", ""),
		StorageAPIKey: getEnv("STORAGE_API_KEY", ""),

		CertificateRendererURL: getEnv("CERTIFICATE_RENDERER_URL", "http://localhost:8090/render/certificate"),

		UploadDir: getEnv("UPLOAD_DIR", "./uploads"),

		ReleaseCron: getEnv("RELEASE_CRON", "*/5 * * * *"),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.SendGridAPIKey == "" {
		log.Println("Warning: SENDGRID_API_KEY is empty. Emails will be logged but not delivered.")
	}
	if AppConfig.StorageAPIURL == "" {
		log.Println("Warning: STORAGE_API_URL is empty. Stored media will not be cleaned up on delete.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
