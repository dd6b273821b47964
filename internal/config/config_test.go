package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
    t.Helper()
    for k, v := range map[string]string{
        "APP_ENV":               "test",
        "APP_PORT":              "8080",
        "DB_USER":               "app",
        "DB_HOST":               "localhost",
        "DB_PORT":               "3306",
        "DB_NAME":               "eventmate",
        "JWT_SECRET":            "secret",
        "STRIPE_SECRET_KEY":     "sk_test_x",
        "STRIPE_WEBHOOK_SECRET": "whsec_x",
        "CLIENT_URL":            "http://localhost:3000/",
    } {
        t.Setenv(k, v)
    }
}

func TestParseDefaults(t *testing.T) {
    setRequired(t)
    cfg, err := Parse()
    require.NoError(t, err)
    assert.Equal(t, 15, cfg.AccessTTLMin)
    assert.Equal(t, 7, cfg.RefreshTTLDays)
    assert.Equal(t, 12, cfg.BcryptCost)
    assert.Equal(t, "usd", cfg.PaymentCurrency)
    assert.Equal(t, "http://localhost:3000", cfg.ClientURL)
    assert.Equal(t, "logs", cfg.ActivityDir)
}

func TestParseOptionalOverrides(t *testing.T) {
    setRequired(t)
    t.Setenv("PAYMENT_CURRENCY", "EUR")
    t.Setenv("ACTIVITY_LOG_DIR", "/var/log/eventmate")
    cfg, err := Parse()
    require.NoError(t, err)
    assert.Equal(t, "eur", cfg.PaymentCurrency)
    assert.Equal(t, "/var/log/eventmate", cfg.ActivityDir)
}

func TestParseMissing(t *testing.T) {
    setRequired(t)
    t.Setenv("JWT_SECRET", "")
    t.Setenv("STRIPE_SECRET_KEY", "")
    _, err := Parse()
    require.Error(t, err)
    assert.Contains(t, err.Error(), "JWT_SECRET")
    assert.Contains(t, err.Error(), "STRIPE_SECRET_KEY")
}

func TestParseBadInt(t *testing.T) {
    setRequired(t)
    t.Setenv("BCRYPT_COST", "lots")
    _, err := Parse()
    assert.ErrorContains(t, err, "BCRYPT_COST")
}

func TestRateLimitConfigClamps(t *testing.T) {
    t.Setenv("RATE_LIMIT_CAPACITY", "0")
    t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
    t.Setenv("RATE_LIMIT_TTL", "1s")
    rl := LoadRateLimitConfig()
    assert.Equal(t, 1, rl.Capacity)
    assert.Equal(t, 2*time.Second, rl.RefillInterval)
    assert.Equal(t, 10*time.Second, rl.TTL)
}

func TestCacheConfig(t *testing.T) {
    t.Setenv("CACHE_METHODS", "get, head")
    t.Setenv("CACHE_TTL", "bogus")
    c := LoadCacheConfig()
    assert.True(t, c.Methods["GET"])
    assert.True(t, c.Methods["HEAD"])
    assert.Equal(t, 30*time.Second, c.TTL)
    // event reads are not cached by default
    assert.Equal(t, []string{"/api/event-types", "/api/reviews"}, c.Paths)
}
