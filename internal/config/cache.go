package config

import (
    "os"
    "strings"
    "time"
)

// CacheConfig configures the Redis cache in front of the public
// availability and rate preview endpoints.  Entries are namespaced per
// hotel so a rate change can drop that hotel's entries.
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool
    TTL          time.Duration
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads the CACHE_* variables.  Previews go stale the
// moment another guest books, so the default TTL is short.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        Methods:      parseMethods(getenv("CACHE_METHODS", "GET")),
        TTL:          parseDur(getenv("CACHE_TTL", "15s")),
        Prefix:       getenv("CACHE_PREFIX", "hotel:cache"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 256<<10),
    }
}

func parseMethods(s string) map[string]bool {
    m := map[string]bool{}
    for _, p := range strings.Split(s, ",") {
        p = strings.TrimSpace(strings.ToUpper(p))
        if p != "" {
            m[p] = true
        }
    }
    return m
}

func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func parseDur(s string) time.Duration {
    d, err := time.ParseDuration(s)
    if err != nil {
        return time.Second
    }
    return d
}
