package Config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port     string
	DBDriver string
	DBDSN    string
	LogLevel string

	RequestLogFile string

	// Empty disables token verification.
	JWTSecret string

	BalanceCacheTTL   time.Duration
	IntegritySchedule string
	RunIntegrityCheck bool

	CORSOrigins string

	// Integrity alerts. Each target is off while its settings are empty.
	SlackToken   string
	SlackChannel string
	SMTPServer   string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPTLS      bool
	AlertFrom    string
	AlertTo      []string
	WhatsappURL  string
	AlertPhones  []string
}

// LoadConfig reads .env (if any) and the environment.
func LoadConfig() *AppConfig {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: no .env file loaded, relying on environment variables and defaults:", err)
	} else {
		log.Println(".env file loaded successfully.")
	}

	cfg := &AppConfig{
		Port:              getEnv("PORT", "3001"),
		DBDriver:          strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBDSN:             getEnv("DB_DSN", "database.db"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		RequestLogFile:    getEnv("REQUEST_LOG_FILE", "logs/requests.log"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		BalanceCacheTTL:   getEnvAsDuration("BALANCE_CACHE_TTL", 5*time.Minute),
		IntegritySchedule: getEnv("INTEGRITY_SCHEDULE", "0 0 2 * * *"),
		RunIntegrityCheck: getEnvAsBool("INTEGRITY_CHECK_ON_START", false),
		CORSOrigins:       getEnv("CORS_ORIGINS", "*"),
		SlackToken:        getEnv("SLACK_TOKEN", ""),
		SlackChannel:      getEnv("SLACK_CHANNEL", ""),
		SMTPServer:        getEnv("SMTP_SERVER", ""),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		SMTPTLS:           getEnvAsBool("SMTP_TLS", false),
		AlertFrom:         getEnv("ALERT_EMAIL_FROM", ""),
		AlertTo:           getEnvAsList("ALERT_EMAIL_TO"),
		WhatsappURL:       getEnv("WHATSAPP_SERVICE_URL", ""),
		AlertPhones:       getEnvAsList("ALERT_WHATSAPP_TO"),
	}

	// SMTP_TLS means implicit TLS (submissions, 465). Plain 587 still upgrades with STARTTLS when offered.
	smtpPort := 587
	if cfg.SMTPTLS {
		smtpPort = 465
	}
	cfg.SMTPPort = getEnvAsInt("SMTP_PORT", smtpPort)

	if cfg.JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET is not set, API routes are not protected.")
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBDriver=%s", cfg.Port, cfg.LogLevel, cfg.DBDriver)
	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
		return fallback
	}
	return value
}

// getEnvAsList splits a comma-separated value, dropping blanks.
func getEnvAsList(key string) []string {
	var values []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s ('%s'), using default: %t", key, valueStr, fallback)
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil || value <= 0 {
		log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback)
		return fallback
	}
	return value
}
