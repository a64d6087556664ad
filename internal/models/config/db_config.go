package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DatabaseConfig конфигурация БД
type DatabaseConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Name     string
	SSLMode  string
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.Username, d.Password, d.Name, d.SSLMode,
	)
}

// Load reads .env (when present) and the process environment into AppConfig.
func Load() error {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found, using process environment")
	}

	env := getEnv("ENVIRONMENT", "development")
	tz := getEnv("TZ", "Europe/Brussels")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("TZ %q: %w", tz, err)
	}

	AppConfig = &Config{
		Environment: env,
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		BaseURL:     strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
		TimeZone:    tz,
		Location:    loc,
		Locale:      getEnv("LOCALE", "nl"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		Bot: BotConfig{
			Token:    getEnv("BOT_TOKEN", ""),
			Debug:    getEnvAsBool("BOT_DEBUG", env != "production"),
			AdminIDs: parseAdminIDs(getEnv("ADMIN_IDS", "")),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			Username: getEnv("DB_USER", ""),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "opengym"),
			SSLMode:  getSSLMode(env),
		},
		Mail: MailConfig{
			BrevoAPIKey: getEnv("BREVO_API_KEY", ""),
			SenderEmail: getEnv("EMAIL_SENDER", ""),
			SenderName:  getEnv("EMAIL_SENDER_NAME", "Open Gym"),
		},
		Cloudinary: CloudinaryConfig{
			URL:    getEnv("CLOUDINARY_URL", ""),
			Folder: getEnv("CLOUDINARY_FOLDER", "opengym"),
		},
		Jobs: JobsConfig{
			ReminderSpec: getEnv("REMINDER_CRON", "0 18 * * *"),
		},
	}

	return validate()
}

func validate() error {
	var errors []string

	if AppConfig.Database.Username == "" {
		errors = append(errors, "DB_USER is required")
	}

	if AppConfig.Database.Password == "" && AppConfig.IsProduction() {
		errors = append(errors, "DB_PASSWORD is required in production")
	}

	if AppConfig.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET is required")
	}

	if AppConfig.Locale != "nl" && AppConfig.Locale != "en" {
		errors = append(errors, "LOCALE must be nl or en")
	}

	if len(errors) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errors, ", "))
	}

	return nil
}

func getSSLMode(env string) string {
	if v := os.Getenv("DB_SSLMODE"); v != "" {
		return v
	}
	if env == "production" {
		return "require"
	}
	return "disable"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func getEnvAsBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

// parseAdminIDs парсит список ID администраторов
func parseAdminIDs(ids string) []int64 {
	if ids == "" {
		return []int64{}
	}

	var result []int64
	for _, idStr := range strings.Split(ids, ",") {
		if id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64); err == nil {
			result = append(result, id)
		}
	}
	return result
}
