package config

import (
    "context"
    "crypto/tls"
    "fmt"
    "os"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisConfig describes the Redis instance backing rate limiting and
// the public preview cache.
type RedisConfig struct {
    Addr     string
    Password string
    DB       int
    TLS      bool
}

// LoadRedisConfig reads REDIS_ADDR (or REDIS_HOST + REDIS_PORT),
// REDIS_PASSWORD, REDIS_DB and REDIS_TLS.  Host and port take precedence
// over the address shorthand.
func LoadRedisConfig() RedisConfig {
    addr := getenv("REDIS_ADDR", "localhost:6379")
    if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
        addr = host + ":" + port
    }
    t := os.Getenv("REDIS_TLS")
    return RedisConfig{
        Addr:     addr,
        Password: os.Getenv("REDIS_PASSWORD"),
        DB:       envInt("REDIS_DB", 0),
        TLS:      strings.EqualFold(t, "true") || t == "1",
    }
}

// NewRedisClient connects and pings within two seconds.  On failure the
// client is closed and an error returned; callers run without caching
// and rate limiting.
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
    opts := &redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
    if cfg.TLS {
        opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    client := redis.NewClient(opts)
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        _ = client.Close()
        return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
    }
    return client, nil
}
