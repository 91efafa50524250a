package config

import (
	"os"
	"strconv"
	"strings"

	"earnhub/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort          string
	DatabaseURL      string
	BotToken         string
	BotUsername      string
	JWTSecret        string
	AdminTelegramIDs []int64
	AdminBotEnabled  bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Platform policy. Amounts are integer coins.
	MinWithdrawal            int64
	WithdrawalFeeRate        float64 // fraction, e.g. 0.10
	FirstWithdrawalSurcharge int64
	ReferralBonus            int64
	RequiredChannels         []string // channel usernames, e.g. @earnhub_news
}

// Загрузка конфига из env
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		logger.Fatal("BOT_TOKEN is not set")
	}

	botUsername := os.Getenv("BOT_USERNAME")
	if botUsername == "" {
		botUsername = "EarnHubBot"
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	// Тг id админов через запятую в env
	var adminIDs []int64
	if s := os.Getenv("ADMIN_TELEGRAM_IDS"); s != "" {
		for _, idStr := range strings.Split(s, ",") {
			idStr = strings.TrimSpace(idStr)
			if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
				adminIDs = append(adminIDs, id)
			}
		}
	}

	var channels []string
	if s := os.Getenv("REQUIRED_CHANNELS"); s != "" {
		for _, ch := range strings.Split(s, ",") {
			ch = strings.TrimSpace(ch)
			if ch == "" {
				continue
			}
			if !strings.HasPrefix(ch, "@") {
				ch = "@" + ch
			}
			channels = append(channels, ch)
		}
	}

	minWithdrawal := int64(100)
	if v := os.Getenv("MIN_WITHDRAWAL"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			minWithdrawal = n
		}
	}

	feeRate := 0.10
	if v := os.Getenv("WITHDRAWAL_FEE_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f < 1 {
			feeRate = f
		}
	}

	firstSurcharge := int64(10)
	if v := os.Getenv("FIRST_WITHDRAWAL_SURCHARGE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			firstSurcharge = n
		}
	}

	referralBonus := int64(50)
	if v := os.Getenv("REFERRAL_BONUS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			referralBonus = n
		}
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	return &Config{
		AppPort:                  port,
		DatabaseURL:              dbURL,
		BotToken:                 botToken,
		BotUsername:              botUsername,
		JWTSecret:                jwtSecret,
		AdminTelegramIDs:         adminIDs,
		AdminBotEnabled:          os.Getenv("ADMIN_BOT_ENABLED") == "true",
		RedisAddr:                os.Getenv("REDIS_ADDR"),
		RedisPassword:            os.Getenv("REDIS_PASSWORD"),
		RedisDB:                  redisDB,
		MinWithdrawal:            minWithdrawal,
		WithdrawalFeeRate:        feeRate,
		FirstWithdrawalSurcharge: firstSurcharge,
		ReferralBonus:            referralBonus,
		RequiredChannels:         channels,
	}
}

// IsAdmin reports whether the given Telegram user id is configured as
// an admin. The core trusts this verbatim.
func (c *Config) IsAdmin(tgID int64) bool {
	for _, id := range c.AdminTelegramIDs {
		if id == tgID {
			return true
		}
	}
	return false
}
