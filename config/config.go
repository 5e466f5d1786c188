package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// MongoDB configuration.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DatabaseDB  string `mapstructure:"DATABASE_DB"`

	// Redis configuration.
	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisContextDB       int    `mapstructure:"REDIS_CONTEXT_DB"`
	RedisReminderQueueDB int    `mapstructure:"REDIS_REMINDER_QUEUE_DB"`

	// Session context TTL in minutes.
	ContextTTLMinutes int `mapstructure:"CONTEXT_TTL_MINUTES"`

	// Gemini models for the small-talk fallback.
	GeminiAPIKey        string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel         string `mapstructure:"GEMINI_MODEL"`
	GeminiFallbackModel string `mapstructure:"GEMINI_FALLBACK_MODEL"`

	// Minutes before an appointment to fire the reminder.
	ReminderLeadMinutes int `mapstructure:"REMINDER_LEAD_MINUTES"`
}

var AppConfig Config

// LoadConfig initializes Viper to load config values from env, file, or defaults.
func LoadConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_DB", "medichat")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CONTEXT_DB", 0)
	viper.SetDefault("REDIS_REMINDER_QUEUE_DB", 1)
	viper.SetDefault("CONTEXT_TTL_MINUTES", 30)
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEMINI_MODEL", "models/gemini-1.5-pro")
	viper.SetDefault("GEMINI_FALLBACK_MODEL", "models/gemini-1.5-flash")
	viper.SetDefault("REMINDER_LEAD_MINUTES", 60)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
