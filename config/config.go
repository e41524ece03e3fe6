package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"bot-afiliados/internal/affiliate"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config contém as configurações da aplicação
type Config struct {
	TelegramBotToken string
	AdminIDs         []int64

	DatabaseURL    string
	DatabaseDriver string // vazio = escolhido pela URL

	LogLevel string
	AppEnv   string

	HTTPAddr      string
	PublicBaseURL string // usado nos links rastreados /go/{id}

	RedisAddr     string
	RedisPassword string

	StoresFile string
	Affiliate  affiliate.Credentials

	PriceSource        string // simulated | scraper
	AutoScrape         bool
	UserAgent          string
	RequestDelay       time.Duration
	NotifyDelay        time.Duration
	DigestCron         string
	Intervals          Intervals
	Refresh            Refresh
	ClickRetentionDays int
}

// Intervals define de quanto em quanto tempo cada rodada do monitor roda
type Intervals struct {
	Prices  time.Duration
	Deals   time.Duration
	Cleanup time.Duration
	Scrape  time.Duration
}

// Refresh agrupa os parâmetros das rodadas de preço e de ofertas
type Refresh struct {
	StaleAfter      time.Duration
	BatchSize       int
	MinPrice        float64
	DropThreshold   float64 // em %
	DealMinDiscount float64
	DealMinRating   float64
	DealCandidates  int
	DealsMin        int
	DealsMax        int
}

// Load carrega as configurações das variáveis de ambiente
func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN não configurado")
	}

	cfg := &Config{
		TelegramBotToken: token,
		AdminIDs:         parseIDs(getEnv("TELEGRAM_ADMIN_IDS", os.Getenv("TELEGRAM_ADMIN_ID"))),
		DatabaseURL:      strings.TrimPrefix(getEnv("DATABASE_URL", "./affiliate_bot.db"), "sqlite:///"),
		DatabaseDriver:   os.Getenv("DATABASE_DRIVER"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		AppEnv:           getEnv("APP_ENV", "production"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		PublicBaseURL:    strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		StoresFile:       os.Getenv("STORES_FILE"),
		Affiliate: affiliate.Credentials{
			AmazonTag:            os.Getenv("AMAZON_ASSOCIATE_TAG"),
			EbayCampaignID:       os.Getenv("EBAY_CAMPAIGN_ID"),
			AliExpressTrackingID: os.Getenv("ALIEXPRESS_TRACKING_ID"),
			WalmartPublisherID:   os.Getenv("WALMART_PUBLISHER_ID"),
			TargetPublisherID:    os.Getenv("TARGET_PUBLISHER_ID"),
			BestBuyPublisherID:   os.Getenv("BESTBUY_PUBLISHER_ID"),
		},
		PriceSource:  strings.ToLower(getEnv("PRICE_SOURCE", "simulated")),
		AutoScrape:   getEnvBool("AUTO_SCRAPE", false),
		UserAgent:    getEnv("USER_AGENT", defaultUserAgent),
		RequestDelay: getEnvDuration("REQUEST_DELAY", time.Second),
		NotifyDelay:  getEnvDuration("NOTIFY_DELAY", 100*time.Millisecond),
		DigestCron:   getEnvSchedule("DAILY_DIGEST_CRON", "0 9 * * *"),
		Intervals: Intervals{
			Prices:  getEnvInterval("PRICE_UPDATE_INTERVAL", 30*time.Minute),
			Deals:   getEnvInterval("DEALS_REFRESH_INTERVAL", 6*time.Hour),
			Cleanup: getEnvInterval("CLEANUP_INTERVAL", 24*time.Hour),
			Scrape:  getEnvInterval("SCRAPE_INTERVAL", 6*time.Hour),
		},
		Refresh: Refresh{
			StaleAfter:      getEnvDuration("PRICE_STALE_AFTER", 2*time.Hour),
			BatchSize:       getEnvInt("PRICE_BATCH_SIZE", 50),
			MinPrice:        getEnvFloat("MIN_PRICE", 0.99),
			DropThreshold:   getEnvFloat("PRICE_DROP_THRESHOLD", 10),
			DealMinDiscount: getEnvFloat("DEAL_MIN_DISCOUNT", 15),
			DealMinRating:   getEnvFloat("DEAL_MIN_RATING", 4.0),
			DealCandidates:  getEnvInt("DEAL_CANDIDATES", 20),
			DealsMin:        getEnvInt("DEALS_MIN", 8),
			DealsMax:        getEnvInt("DEALS_MAX", 12),
		},
		ClickRetentionDays: getEnvInt("CLICK_RETENTION_DAYS", 90),
	}

	if cfg.Refresh.DealsMax < cfg.Refresh.DealsMin {
		cfg.Refresh.DealsMax = cfg.Refresh.DealsMin
	}

	return cfg, nil
}

// IsAdmin indica se o ID do Telegram está na lista de administradores
func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// getEnvDuration aceita durações do Go ("30m", "6h") ou minutos inteiros
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
		return time.Duration(minutes) * time.Minute
	}
	return fallback
}

// disabled reconhece os valores que desligam uma rodada agendada
func disabled(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "0", "off", "false", "desligado":
		return true
	}
	return false
}

// getEnvInterval é como getEnvDuration, mas "0" ou "off" devolvem 0 e
// desligam a rodada
func getEnvInterval(key string, fallback time.Duration) time.Duration {
	if disabled(os.Getenv(key)) {
		return 0
	}
	return getEnvDuration(key, fallback)
}

// getEnvSchedule devolve a expressão cron; "off" devolve vazio
func getEnvSchedule(key, fallback string) string {
	v := os.Getenv(key)
	if disabled(v) {
		return ""
	}
	if v == "" {
		return fallback
	}
	return v
}

func parseIDs(s string) []int64 {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
