package config

import (
	"os"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost     string
	RedisPort     string
	SessionSecret string

	GinMode string

	// AuthMode selects the credential verifier: "db" (bcrypt against the
	// users table) or "static" (fixture credentials, development only).
	AuthMode            string
	FixtureAuthEmail    string
	FixtureAuthPassword string

	// ProvisionKey guards the backend-privileged provisioning endpoints.
	ProvisionKey string

	BrevoAPIKey      string
	BrevoSenderEmail string
	BrevoSenderName  string

	// AppBaseURL is used to build links embedded in outgoing email.
	AppBaseURL string

	// AdminAlertEmail receives admin-alert notifications.
	AdminAlertEmail string
}

func Load() *Config {
	return &Config{
		DBDriver:   getEnv("DB_DRIVER", "mysql"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "taskboard"),
		DBPassword: getEnv("DB_PASSWORD", "taskboard"),
		DBName:     getEnv("DB_NAME", "taskboard"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		SessionSecret: getEnv("SESSION_SECRET", "default-secret-key-change-me"),

		GinMode: getEnv("GIN_MODE", "debug"),

		AuthMode:            getEnv("AUTH_MODE", "db"),
		FixtureAuthEmail:    getEnv("FIXTURE_AUTH_EMAIL", ""),
		FixtureAuthPassword: getEnv("FIXTURE_AUTH_PASSWORD", ""),

		ProvisionKey: getEnv("PROVISION_KEY", ""),

		BrevoAPIKey:      getEnv("BREVO_API_KEY", ""),
		BrevoSenderEmail: getEnv("BREVO_SENDER_EMAIL", "no-reply@taskboard.local"),
		BrevoSenderName:  getEnv("BREVO_SENDER_NAME", "Task Management System"),

		AppBaseURL: getEnv("APP_BASE_URL", "http://localhost:3000"),

		AdminAlertEmail: getEnv("ADMIN_ALERT_EMAIL", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
