package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	TelegramBotToken string
	ProviderToken    string
	AdminIDs         []int64
	Currency         string
	ReferralPercent  int
	RedisAddr        string
	DatabaseFile     string
	SecretKey        string
	APIAddr          string
	MessagesFile     string
	Location         *time.Location
)

func init() {
	// .env is optional, for local development only.
	_ = godotenv.Load()

	TelegramBotToken = mustGetEnv("TELEGRAM_BOT_TOKEN")
	ProviderToken = mustGetEnv("PROVIDER_TOKEN")
	AdminIDs = mustGetEnvInt64List("ADMIN_IDS")
	Currency = getEnvDefault("CURRENCY", "BYN")
	ReferralPercent = getEnvIntDefault("REFERRAL_PERCENT", 10)
	RedisAddr = mustGetEnv("REDIS_HOST")
	DatabaseFile = getEnvDefault("DATABASE_FILE", "studygate.db")
	SecretKey = mustGetEnv("SECRET_KEY")
	APIAddr = os.Getenv("API_ADDR") // optional, API disabled when empty
	MessagesFile = getEnvDefault("MESSAGES_FILE", "messages.yaml")

	tz := getEnvDefault("TIMEZONE", "Europe/Minsk")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Fatalf("Invalid TIMEZONE %q: %v", tz, err)
	}
	Location = loc
}

func IsAdmin(userID int64) bool {
	for _, id := range AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func mustGetEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("Environment variable %s is required", key)
	}
	return v
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("Environment variable %s must be an integer: %v", key, err)
	}
	return n
}

func mustGetEnvInt64List(key string) []int64 {
	raw := mustGetEnv(key)
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Fatalf("Environment variable %s must be a comma-separated list of integers: %v", key, err)
		}
		ids = append(ids, n)
	}
	if len(ids) == 0 {
		log.Fatalf("Environment variable %s is required", key)
	}
	return ids
}
