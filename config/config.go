package config

import (
	"flag"
	"os"
	"sync"
	"time"
)

const (
	defaultServerAddress   = ":8080"
	defaultDatabaseDSN     = ""
	defaultRazorpayAPIURL  = "https://api.razorpay.com"
	defaultLogLevel        = "debug"
	defaultPendingOrderTTL = 30 * time.Minute
)

type Config struct {
	ServerAddr        string
	DatabaseDSN       string
	LogLevel          string
	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayAPIURL    string
	AuthTokenKey      string
	// PendingOrderTTL is the age after which an unpaid order is failed.
	// Zero disables the expirer.
	PendingOrderTTL time.Duration
}

var (
	once      sync.Once
	singleton *Config
)

// New returns new Config. It parses command line and environment variables only once.
func New() (*Config, error) {
	once.Do(func() {
		cfg := Config{}

		// initialize flags
		flag.StringVar(&cfg.ServerAddr, "a", defaultServerAddress, "server address")
		flag.StringVar(&cfg.DatabaseDSN, "d", defaultDatabaseDSN, "database DSN")
		flag.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level")
		flag.StringVar(&cfg.RazorpayKeyID, "k", "", "razorpay key id")
		flag.StringVar(&cfg.RazorpayKeySecret, "s", "", "razorpay key secret")
		flag.StringVar(&cfg.RazorpayAPIURL, "r", defaultRazorpayAPIURL, "razorpay api url")
		flag.StringVar(&cfg.AuthTokenKey, "t", "", "auth token key (hex)")
		flag.DurationVar(&cfg.PendingOrderTTL, "e", defaultPendingOrderTTL, "pending order ttl, 0 disables expiry")

		flag.Parse()

		// if environment variable is set, then using it
		if runAddrEnv := os.Getenv("RUN_ADDRESS"); runAddrEnv != "" {
			cfg.ServerAddr = runAddrEnv
		}
		if dataBaseURIEnv := os.Getenv("DATABASE_URI"); dataBaseURIEnv != "" {
			cfg.DatabaseDSN = dataBaseURIEnv
		}
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			cfg.LogLevel = logLevelEnv
		}
		if keyIDEnv := os.Getenv("RAZORPAY_KEY_ID"); keyIDEnv != "" {
			cfg.RazorpayKeyID = keyIDEnv
		}
		if keySecretEnv := os.Getenv("RAZORPAY_KEY_SECRET"); keySecretEnv != "" {
			cfg.RazorpayKeySecret = keySecretEnv
		}
		if apiURLEnv := os.Getenv("RAZORPAY_API_URL"); apiURLEnv != "" {
			cfg.RazorpayAPIURL = apiURLEnv
		}
		if tokenKeyEnv := os.Getenv("AUTH_TOKEN_KEY"); tokenKeyEnv != "" {
			cfg.AuthTokenKey = tokenKeyEnv
		}
		if ttlEnv := os.Getenv("PENDING_ORDER_TTL"); ttlEnv != "" {
			if d, err := time.ParseDuration(ttlEnv); err == nil {
				cfg.PendingOrderTTL = d
			}
		}

		singleton = &cfg
	})

	return singleton, nil
}
