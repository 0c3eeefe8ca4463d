package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/json"
    "fmt"
    "log/slog"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/hotel-booking-engine/internal/config"
)

// captureWriter tees the response body, up to limit bytes, while
// forwarding it to the client.
type captureWriter struct {
    http.ResponseWriter
    status    int
    buf       bytes.Buffer
    limit     int
    truncated bool
}

func (cw *captureWriter) WriteHeader(code int) {
    cw.status = code
    cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
    if !cw.truncated {
        if cw.limit > 0 && cw.buf.Len()+len(b) > cw.limit {
            cw.truncated = true
            cw.buf.Reset()
        } else {
            cw.buf.Write(b)
        }
    }
    return cw.ResponseWriter.Write(b)
}

type cachedResponse struct {
    Status      int    `json:"status"`
    ContentType string `json:"content_type"`
    Body        []byte `json:"body"`
}

// PreviewCache caches public hotel previews in Redis under
// <prefix>:hotel:<id>:<hash> so writes affecting a hotel can drop its
// entries.  A nil client disables it.
type PreviewCache struct {
    cfg config.CacheConfig
    rdb *redis.Client
    log *slog.Logger
}

func NewPreviewCache(cfg config.CacheConfig, rdb *redis.Client, log *slog.Logger) *PreviewCache {
    if !cfg.Enabled {
        rdb = nil
    }
    return &PreviewCache{cfg: cfg, rdb: rdb, log: log}
}

func (p *PreviewCache) hotelPrefix(hotelID string) string {
    return p.cfg.Prefix + ":hotel:" + hotelID + ":"
}

// cacheKey hashes method, route and query under the hotel namespace.
// The route must carry an :id parameter naming the hotel.
func (p *PreviewCache) cacheKey(c echo.Context) string {
    r := c.Request()
    sum := sha1.Sum([]byte(r.Method + " " + c.Path() + "?" + r.URL.RawQuery))
    return fmt.Sprintf("%s%x", p.hotelPrefix(c.Param("id")), sum[:])
}

// Middleware serves 200 responses from cache and stores misses.
func (p *PreviewCache) Middleware() echo.MiddlewareFunc {
    if p == nil || p.rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !p.cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }
            ctx := c.Request().Context()
            key := p.cacheKey(c)

            if bs, err := p.rdb.Get(ctx, key).Bytes(); err == nil {
                var cached cachedResponse
                if json.Unmarshal(bs, &cached) == nil {
                    c.Response().Header().Set("X-Cache", "HIT")
                    return c.Blob(cached.Status, cached.ContentType, cached.Body)
                }
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: p.cfg.MaxBodyBytes}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }
            if cw.status != http.StatusOK || cw.truncated {
                return nil
            }
            payload, err := json.Marshal(cachedResponse{
                Status:      cw.status,
                ContentType: c.Response().Header().Get(echo.HeaderContentType),
                Body:        cw.buf.Bytes(),
            })
            if err == nil {
                if err := p.rdb.Set(context.WithoutCancel(ctx), key, payload, p.cfg.TTL).Err(); err != nil {
                    p.log.Warn("cache: store failed", "key", key, "err", err)
                }
            }
            return nil
        }
    }
}

// InvalidateHotel drops every cached preview of hotelID.
func (p *PreviewCache) InvalidateHotel(ctx context.Context, hotelID uint64) error {
    if p == nil || p.rdb == nil {
        return nil
    }
    match := p.hotelPrefix(fmt.Sprint(hotelID)) + "*"
    iter := p.rdb.Scan(ctx, 0, match, 100).Iterator()
    var keys []string
    for iter.Next(ctx) {
        keys = append(keys, iter.Val())
    }
    if err := iter.Err(); err != nil {
        return fmt.Errorf("scan %s: %w", match, err)
    }
    if len(keys) == 0 {
        return nil
    }
    return p.rdb.Del(ctx, keys...).Err()
}
