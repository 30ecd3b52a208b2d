package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const githubRawURL = "https://raw.githubusercontent.com/elsisiem/muthaker-bot/master"

type Config struct {
	TelegramToken string
	ChatID        int64
	AdminID       int64
	DatabaseURI   string

	City      string
	Country   string
	Method    int
	Latitude  float64
	Longitude float64
	Timezone  string

	MorningOffset time.Duration // after Fajr
	EveningOffset time.Duration // after Asr
	QuranOffset   time.Duration // after the evening athkar

	QuranPagesURL string
	AthkarURL     string

	HTTPPort string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional in production
	}

	return &Config{
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		ChatID:        getEnvInt64("TELEGRAM_CHAT_ID", 0),
		AdminID:       getEnvInt64("TELEGRAM_ADMIN_ID", 0),
		DatabaseURI:   os.Getenv("DATABASE_URI"),

		City:      getEnvOrDefault("PRAYER_CITY", "Cairo"),
		Country:   getEnvOrDefault("PRAYER_COUNTRY", "Egypt"),
		Method:    getEnvInt("PRAYER_METHOD", 3), // Muslim World League
		Latitude:  getEnvFloat("PRAYER_LATITUDE", 30.0444),
		Longitude: getEnvFloat("PRAYER_LONGITUDE", 31.2357),
		Timezone:  getEnvOrDefault("BOT_TIMEZONE", "Africa/Cairo"),

		MorningOffset: getEnvDuration("MORNING_ATHKAR_OFFSET", 35*time.Minute),
		EveningOffset: getEnvDuration("EVENING_ATHKAR_OFFSET", 30*time.Minute),
		QuranOffset:   getEnvDuration("QURAN_PAGES_OFFSET", 10*time.Minute),

		QuranPagesURL: getEnvOrDefault("QURAN_PAGES_URL", githubRawURL+"/%D8%A7%D9%84%D9%85%D8%B5%D8%AD%D9%81"),
		AthkarURL:     getEnvOrDefault("ATHKAR_URL", githubRawURL+"/%D8%A7%D9%84%D8%A3%D8%B0%D9%83%D8%A7%D8%B1"),

		HTTPPort: getEnvOrDefault("PORT", "8080"),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
