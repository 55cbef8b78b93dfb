package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Mongo   MongoConfig
	Auth    AuthConfig
	Cart    CartConfig
	Redis   RedisConfig
	NATS    NATSConfig
	Pricing PricingConfig
	Admin   AdminConfig
}

type AppConfig struct {
	Port               string
	Env                string
	CORSAllowedOrigins []string
}

type MongoConfig struct {
	URI string
	DB  string
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmails   []string
	RatePerMinute int
}

type CartConfig struct {
	Backend string
	TTL     time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type NATSConfig struct {
	URL string
}

type PricingConfig struct {
	TaxRate               float64
	FreeShippingThreshold float64
	FlatShippingFee       float64
}

type AdminConfig struct {
	RevenueIncludeCancelled bool
}

const (
	CartBackendMongo  = "mongo"
	CartBackendRedis  = "redis"
	CartBackendMemory = "memory"
)

// LoadEnv reads a .env file into the process environment if one exists.
func LoadEnv() {
	_ = godotenv.Load()
}

func Load() (*Config, error) {
	LoadEnv()

	var errs []string
	dur := func(key, def string) time.Duration {
		v := GetEnv(key, def)
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
		return d
	}
	num := func(key, def string) float64 {
		v := GetEnv(key, def)
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
		return f
	}
	integer := func(key, def string) int {
		v := GetEnv(key, def)
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
		return n
	}
	boolean := func(key, def string) bool {
		v := GetEnv(key, def)
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
		return b
	}

	cfg := &Config{
		App: AppConfig{
			Port:               GetEnv("PORT", "8080"),
			Env:                GetEnv("APP_ENV", "production"),
			CORSAllowedOrigins: splitList(GetEnv("CORS_ALLOWED_ORIGINS", "*")),
		},
		Mongo: MongoConfig{
			URI: GetEnv("MONGO_URI", "mongodb://localhost:27017"),
			DB:  GetEnv("DB_NAME", "edpharma"),
		},
		Auth: AuthConfig{
			JWTSecret:     GetEnv("JWT_SECRET", ""),
			TokenTTL:      dur("JWT_TTL", "168h"),
			AdminEmails:   splitList(GetEnv("ADMIN_EMAILS", "")),
			RatePerMinute: integer("AUTH_RATE_PER_MINUTE", "10"),
		},
		Cart: CartConfig{
			Backend: strings.ToLower(GetEnv("CART_BACKEND", CartBackendMongo)),
			TTL:     dur("CART_TTL", "720h"),
		},
		Redis: RedisConfig{
			Addr:     GetEnv("REDIS_ADDR", "localhost:6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       integer("REDIS_DB", "0"),
		},
		NATS: NATSConfig{
			URL: GetEnv("NATS_URL", ""),
		},
		Pricing: PricingConfig{
			TaxRate:               num("TAX_RATE", "0.08"),
			FreeShippingThreshold: num("FREE_SHIPPING_THRESHOLD", "50"),
			FlatShippingFee:       num("FLAT_SHIPPING_FEE", "9.99"),
		},
		Admin: AdminConfig{
			RevenueIncludeCancelled: boolean("REVENUE_INCLUDE_CANCELLED", "false"),
		},
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.App.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Mongo.URI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.Mongo.DB == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if c.Auth.RatePerMinute <= 0 {
		return fmt.Errorf("AUTH_RATE_PER_MINUTE must be positive")
	}
	switch c.Cart.Backend {
	case CartBackendMongo, CartBackendRedis, CartBackendMemory:
	default:
		return fmt.Errorf("unknown CART_BACKEND %q", c.Cart.Backend)
	}
	if c.Pricing.TaxRate < 0 || c.Pricing.FreeShippingThreshold < 0 || c.Pricing.FlatShippingFee < 0 {
		return fmt.Errorf("pricing values must not be negative")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
