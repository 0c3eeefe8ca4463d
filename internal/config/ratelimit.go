package config

import (
    "os"
    "strconv"
    "time"
)

// RateLimitConfig tunes the token bucket guarding write routes.  Each
// key holds Capacity tokens and regains RefillTokens every
// RefillInterval.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration // bucket expiry after the last request
    KeyStrategy    string        // user, ip, user_route or ip_route
    Prefix         string
}

// LoadRateLimitConfig reads the RATE_LIMIT_* variables.  Bookings are
// bursty around releases, so the default bucket is 20 writes refilled
// at one per 3s per caller and route.
func LoadRateLimitConfig() RateLimitConfig {
    rl := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       envInt("RATE_LIMIT_CAPACITY", 20),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", 3*time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    getenv("RATE_LIMIT_KEY_STRATEGY", "user_route"),
        Prefix:         getenv("RATE_LIMIT_PREFIX", "hotel:rl"),
    }
    if rl.Capacity < 1 {
        rl.Capacity = 1
    }
    if rl.RefillTokens < 1 {
        rl.RefillTokens = 1
    }
    if rl.RefillInterval <= 0 {
        rl.RefillInterval = time.Second
    }
    // A bucket must outlive a full refill or it resets to Capacity early.
    if minTTL := 5 * rl.RefillInterval; rl.TTL < minTTL {
        rl.TTL = minTTL
    }
    return rl
}

func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if b, err := strconv.ParseBool(v); err == nil {
        return b
    }
    switch v {
    case "yes", "YES", "on", "ON":
        return true
    case "no", "NO", "off", "OFF":
        return false
    }
    return d
}

func envInt(k string, d int) int {
    if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
        return n
    }
    return d
}

func envDur(k string, d time.Duration) time.Duration {
    if dur, err := time.ParseDuration(os.Getenv(k)); err == nil {
        return dur
    }
    return d
}
