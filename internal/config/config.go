package config // package config loads application configuration from environment variables

import (
    "fmt"
    "log"
    "os"
    "strconv"
    "strings"

    "github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    JWTSecret      string // secret used to sign access tokens
    AccessTTLMin   int    // access token time-to-live in minutes
    RefreshTTLDays int    // refresh token time-to-live in days
    BcryptCost     int    // bcrypt cost for password hashing

    StripeSecretKey     string // gateway API key
    StripeWebhookSecret string // signing secret of the webhook endpoint
    ClientURL           string // front-end base URL used for checkout redirects
    PaymentCurrency     string // ISO currency of joining fees

    AdminEmail    string // seeded when no ADMIN exists (optional)
    AdminPassword string

    RabbitURL   string // empty disables publishing
    ActivityDir string // where the consumer writes activity.log
}

// Load reads an optional .env file and then the environment.  Missing
// required variables halt the program.
func Load() Config {
    if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
        log.Printf("config: .env not loaded: %v", err)
    }
    cfg, err := Parse()
    if err != nil {
        log.Fatal(err)
    }
    return cfg
}

// Parse builds a Config from the current environment.
func Parse() (Config, error) {
    var missing []string
    must := func(key string) string {
        v, ok := os.LookupEnv(key)
        if !ok || v == "" {
            missing = append(missing, key)
        }
        return v
    }
    cfg := Config{
        Env:                 must("APP_ENV"),
        Port:                must("APP_PORT"),
        DBUser:              must("DB_USER"),
        DBPass:              os.Getenv("DB_PASS"),
        DBHost:              must("DB_HOST"),
        DBPort:              must("DB_PORT"),
        DBName:              must("DB_NAME"),
        JWTSecret:           must("JWT_SECRET"),
        StripeSecretKey:     must("STRIPE_SECRET_KEY"),
        StripeWebhookSecret: must("STRIPE_WEBHOOK_SECRET"),
        ClientURL:           strings.TrimRight(must("CLIENT_URL"), "/"),
        PaymentCurrency:     strings.ToLower(envStr("PAYMENT_CURRENCY", "usd")),
        AdminEmail:          os.Getenv("ADMIN_EMAIL"),
        AdminPassword:       os.Getenv("ADMIN_PASSWORD"),
        RabbitURL:           os.Getenv("RABBITMQ_URL"),
        ActivityDir:         envStr("ACTIVITY_LOG_DIR", "logs"),
    }
    if len(missing) > 0 {
        return Config{}, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
    }

    var err error
    if cfg.AccessTTLMin, err = intVar("ACCESS_TOKEN_TTL_MIN", 15); err != nil {
        return Config{}, err
    }
    if cfg.RefreshTTLDays, err = intVar("REFRESH_TOKEN_TTL_DAYS", 7); err != nil {
        return Config{}, err
    }
    if cfg.BcryptCost, err = intVar("BCRYPT_COST", 12); err != nil {
        return Config{}, err
    }
    return cfg, nil
}

// intVar reads an optional positive integer.
func intVar(key string, def int) (int, error) {
    s := os.Getenv(key)
    if s == "" {
        return def, nil
    }
    n, err := strconv.Atoi(s)
    if err != nil || n <= 0 {
        return 0, fmt.Errorf("invalid int for %s: %q", key, s)
    }
    return n, nil
}
