package config

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server-side settings
	DBDriver    string `env:"DB_DRIVER"`
	DatabaseDSN string `env:"DATABASE_URI"`
	AuthSecret  string `env:"AUTH_SECRET"`
	LogLevel    string `env:"LOG_LEVEL"`

	// Claim protocol
	HandoverCodeTTL     time.Duration `env:"HANDOVER_CODE_TTL"`
	HandoverMaxAttempts int           `env:"HANDOVER_MAX_ATTEMPTS"`
	MinVerificationText int           `env:"MIN_VERIFICATION_TEXT"`
	RequireProof        bool          `env:"REQUIRE_PROOF"`

	// Redis: лимит попыток ввода кода. Пустой адрес: лимитер выключен.
	RedisAddr          string        `env:"REDIS_ADDR"`
	RedisPassword      string        `env:"REDIS_PASSWORD"`
	RedisDB            int           `env:"REDIS_DB"`
	VerifyRateCapacity int           `env:"VERIFY_RATE_CAPACITY"`
	VerifyRateRefill   time.Duration `env:"VERIFY_RATE_REFILL"`

	// RabbitMQ: события заявок. Пустой URL: события не публикуются.
	RabbitMQURL string `env:"RABBITMQ_URL"`

	// Shared settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`

	// Client-side settings
	ServerURL    string `env:"-"`
	ClientDBPath string `env:"CLIENT_DB_PATH"`
	TokenFile    string `env:"TOKEN_FILE"`
	Version      bool   `env:"-"` // show client version and exit (flag only)
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	// Server flags
	flag.StringVar(&cfg.DBDriver, "db-driver", cfg.DBDriver, "драйвер БД: sqlite, postgres или mysql")
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "уровень логирования: debug, info, warn, error")
	flag.DurationVar(&cfg.HandoverCodeTTL, "code-ttl", cfg.HandoverCodeTTL, "время жизни кода передачи")
	flag.IntVar(&cfg.HandoverMaxAttempts, "code-attempts", cfg.HandoverMaxAttempts, "число неверных попыток ввода кода")
	flag.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "адрес Redis для лимита попыток (host:port)")
	flag.StringVar(&cfg.RabbitMQURL, "amqp", cfg.RabbitMQURL, "URL RabbitMQ для событий заявок")
	// Shared/client flags
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "base URL of the FindIt server (host:port)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS (client: prefer https scheme for BaseURL)")
	// Client flags
	flag.StringVar(&cfg.ClientDBPath, "client-db", cfg.ClientDBPath, "каталог локальных копий лент (по базе на логин)")
	flag.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "path to auth token file (client)")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	if cfg.DBDriver == "" {
		cfg.DBDriver = "sqlite"
	}
	if cfg.DatabaseDSN == "" && cfg.DBDriver == "sqlite" {
		cfg.DatabaseDSN = "findit.db"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.HandoverCodeTTL <= 0 {
		cfg.HandoverCodeTTL = 15 * time.Minute
	}
	if cfg.HandoverMaxAttempts <= 0 {
		cfg.HandoverMaxAttempts = 5
	}
	if cfg.MinVerificationText <= 0 {
		cfg.MinVerificationText = 20
	}
	if cfg.VerifyRateCapacity <= 0 {
		cfg.VerifyRateCapacity = 10
	}
	if cfg.VerifyRateRefill <= 0 {
		cfg.VerifyRateRefill = time.Minute
	}

	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}

	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	// Fill client defaults if empty
	home, _ := os.UserHomeDir()
	if cfg.ClientDBPath == "" {
		cfg.ClientDBPath = filepath.Join(home, ".ficli", "users")
	}
	if cfg.TokenFile == "" {
		cfg.TokenFile = filepath.Join(home, ".ficli", "auth_token")
	}
}
