package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	applog "kingdavid/internal/log"
)

const (
	DriverSQLite = "sqlite"
	DriverParse  = "parse"
)

type Shop struct {
	Name     string
	Phone    string
	WhatsApp string
	Email    string
	Address  string
}

type Parse struct {
	ServerURL string
	AppID     string
	RESTKey   string
	Timeout   time.Duration
}

// Media is the S3-compatible bucket normalized images are published to.
// An empty Bucket keeps images inline as data URIs.
type Media struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	PublicURL string
}

type Config struct {
	Port          string
	StoreDriver   string
	DBDSN         string
	Parse         Parse
	Media         Media
	SeedFile      string
	Shop          Shop
	AdminUser     string
	AdminPassword string
	LogFile       string
	RateLimit     int
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	n, err := strconv.Atoi(env(key, ""))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(env(key, ""))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// Load reads the environment, after merging an optional .env file from the
// working directory. Variables already set win over the file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:        env("PORT", "8080"),
		StoreDriver: strings.ToLower(env("STORE_DRIVER", DriverSQLite)),
		DBDSN:       env("DB_DSN", "kingdavid.db"),
		Parse: Parse{
			ServerURL: env("PARSE_SERVER_URL", "https://parseapi.back4app.com"),
			AppID:     env("PARSE_APP_ID", ""),
			RESTKey:   env("PARSE_REST_KEY", ""),
			Timeout:   envDuration("PARSE_TIMEOUT", 15*time.Second),
		},
		Media: Media{
			Bucket:    env("MEDIA_BUCKET", ""),
			Endpoint:  env("MEDIA_ENDPOINT", ""),
			Region:    env("MEDIA_REGION", "us-east-1"),
			AccessKey: env("MEDIA_ACCESS_KEY", ""),
			SecretKey: env("MEDIA_SECRET_KEY", ""),
			PublicURL: env("MEDIA_PUBLIC_URL", ""),
		},
		SeedFile: env("SEED_FILE", "./seed/catalog.yaml"),
		Shop: Shop{
			Name:     env("SHOP_NAME", "King David & Sons Appliances"),
			Phone:    env("SHOP_PHONE", "+27 65 724 4664"),
			WhatsApp: env("SHOP_WHATSAPP", "+27657244664"),
			Email:    env("SHOP_EMAIL", "info@appliancespecialist.com"),
			Address:  env("SHOP_ADDRESS", "Johannesburg, South Africa"),
		},
		AdminUser:     env("ADMIN_USER", "admin"),
		AdminPassword: env("ADMIN_PASSWORD", ""),
		LogFile:       env("LOG_FILE", "./kingdavid.log"),
		RateLimit:     envInt("RATE_LIMIT", 120),
	}
	if cfg.StoreDriver != DriverParse {
		cfg.StoreDriver = DriverSQLite
	}

	applog.Info(nil, "config.load", map[string]any{
		"port":         cfg.Port,
		"store_driver": cfg.StoreDriver,
		"db_dsn":       cfg.DBDSN,
		"parse_url":    cfg.Parse.ServerURL,
		"media_bucket": cfg.Media.Bucket,
		"seed_file":    cfg.SeedFile,
		"shop":         cfg.Shop.Name,
		"admin_gate":   cfg.AdminPassword != "",
		"log_file":     cfg.LogFile,
		"rate_limit":   cfg.RateLimit,
	})
	return cfg
}
