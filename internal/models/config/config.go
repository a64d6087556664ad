package config

import "time"

// AppConfig глобальная конфигурация приложения
var AppConfig *Config

// Config is the application configuration, loaded once at startup.
type Config struct {
	Environment string
	HTTPPort    string
	BaseURL     string
	TimeZone    string
	Location    *time.Location
	Locale      string
	LogLevel    string
	SentryDSN   string
	JWTSecret   string

	Bot        BotConfig
	Database   DatabaseConfig
	Mail       MailConfig
	Cloudinary CloudinaryConfig
	Jobs       JobsConfig
}

// BotConfig configures the optional Telegram notifier. An empty token
// disables it.
type BotConfig struct {
	Token    string
	Debug    bool
	AdminIDs []int64 // chats notified when a course or session fills up
}

type MailConfig struct {
	BrevoAPIKey string
	SenderEmail string
	SenderName  string
}

type CloudinaryConfig struct {
	URL    string
	Folder string
}

type JobsConfig struct {
	ReminderSpec string
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
