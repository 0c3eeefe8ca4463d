package middleware

import (
    "context"
    "io"
    "log/slog"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-booking-engine/internal/config"
    "github.com/iliyamo/hotel-booking-engine/internal/model"
    "github.com/iliyamo/hotel-booking-engine/internal/obs"
    "github.com/iliyamo/hotel-booking-engine/internal/utils"
)

const secret = "test-secret"

func bearer(t *testing.T, uid uint64, role, email string, ttl time.Duration) string {
    t.Helper()
    tok, err := utils.NewAccessToken(secret, uid, role, email, ttl)
    if err != nil {
        t.Fatalf("sign token: %v", err)
    }
    return "Bearer " + tok.Token
}

func protected(mw ...echo.MiddlewareFunc) *echo.Echo {
    e := echo.New()
    h := func(c echo.Context) error {
        who, _ := RequesterFrom(c)
        return c.JSON(http.StatusOK, echo.Map{"user_id": who.UserID, "role": who.Role, "email": who.Email})
    }
    e.GET("/me", h, mw...)
    return e
}

func do(e *echo.Echo, auth string) *httptest.ResponseRecorder {
    req := httptest.NewRequest(http.MethodGet, "/me", nil)
    if auth != "" {
        req.Header.Set("Authorization", auth)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func TestJWTAuthSetsRequester(t *testing.T) {
    e := protected(JWTAuth(secret))
    rec := do(e, bearer(t, 7, "client", "guest@example.com", time.Hour))
    if rec.Code != http.StatusOK {
        t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
    }
    body := rec.Body.String()
    if !strings.Contains(body, `"user_id":7`) || !strings.Contains(body, `"role":"CLIENT"`) || !strings.Contains(body, "guest@example.com") {
        t.Fatalf("unexpected body %s", body)
    }
}

func TestJWTAuthRejects(t *testing.T) {
    e := protected(JWTAuth(secret))
    other, _ := utils.NewAccessToken("other-secret", 7, "CLIENT", "", time.Hour)
    cases := map[string]string{
        "missing":      "",
        "not bearer":   "Basic abc",
        "expired":      bearer(t, 7, "CLIENT", "", -time.Minute),
        "wrong secret": "Bearer " + other.Token,
        "unknown role": bearer(t, 7, "OWNER", "", time.Hour),
        "zero subject": bearer(t, 0, "CLIENT", "", time.Hour),
    }
    for name, auth := range cases {
        if rec := do(e, auth); rec.Code != http.StatusUnauthorized {
            t.Fatalf("%s: status = %d, want 401", name, rec.Code)
        }
    }
}

func TestRequireStaff(t *testing.T) {
    e := protected(JWTAuth(secret), RequireStaff())
    if rec := do(e, bearer(t, 1, "CLIENT", "", time.Hour)); rec.Code != http.StatusForbidden {
        t.Fatalf("client status = %d, want 403", rec.Code)
    }
    for _, role := range []string{"RECEPTION", "ADMIN"} {
        if rec := do(e, bearer(t, 2, role, "", time.Hour)); rec.Code != http.StatusOK {
            t.Fatalf("%s status = %d, want 200", role, rec.Code)
        }
    }
}

func TestRequestIDPropagates(t *testing.T) {
    e := echo.New()
    var seen string
    e.Use(RequestID())
    e.GET("/x", func(c echo.Context) error {
        seen = obs.RequestIDFromContext(c.Request().Context())
        return c.NoContent(http.StatusNoContent)
    })

    req := httptest.NewRequest(http.MethodGet, "/x", nil)
    req.Header.Set(HeaderRequestID, "abc-123")
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    if seen != "abc-123" || rec.Header().Get(HeaderRequestID) != "abc-123" {
        t.Fatalf("request id not propagated: ctx=%q header=%q", seen, rec.Header().Get(HeaderRequestID))
    }

    rec = httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
    if len(rec.Header().Get(HeaderRequestID)) != 36 {
        t.Fatalf("expected generated uuid, got %q", rec.Header().Get(HeaderRequestID))
    }
}

func TestDisabledLimiterAndCachePassThrough(t *testing.T) {
    log := slog.New(slog.NewTextHandler(io.Discard, nil))
    rl := NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, log)
    pc := NewPreviewCache(config.CacheConfig{Enabled: true}, nil, log)
    e := protected(rl, pc.Middleware())
    if rec := do(e, ""); rec.Code != http.StatusOK {
        t.Fatalf("status = %d", rec.Code)
    }
    if err := pc.InvalidateHotel(context.Background(), 1); err != nil {
        t.Fatalf("invalidate on disabled cache: %v", err)
    }
}

func TestParseBucketResult(t *testing.T) {
    allowed, remaining, retry, ok := parseBucketResult([]any{int64(0), int64(0), int64(2500)})
    if !ok || allowed || remaining != 0 || retry != 2500 {
        t.Fatalf("unexpected parse: %v %d %d %v", allowed, remaining, retry, ok)
    }
    if _, _, _, ok := parseBucketResult("nope"); ok {
        t.Fatalf("expected malformed result to be rejected")
    }
}

func TestBuildRateKey(t *testing.T) {
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/v1/reservations", nil)
    c := e.NewContext(req, httptest.NewRecorder())
    c.SetPath("/v1/reservations")
    cfg := config.RateLimitConfig{Prefix: "hotel:rl", KeyStrategy: "user_route"}

    if got := buildRateKey(cfg, c); got != "hotel:rl:user:anon:route:POST /v1/reservations" {
        t.Fatalf("anon key = %q", got)
    }
    SetRequester(c, model.Requester{UserID: 9, Role: model.RoleClient})
    if got := buildRateKey(cfg, c); got != "hotel:rl:user:9:route:POST /v1/reservations" {
        t.Fatalf("user key = %q", got)
    }
}

func TestCacheKeyIsHotelScoped(t *testing.T) {
    pc := NewPreviewCache(config.CacheConfig{Enabled: true, Prefix: "hotel:cache"}, nil, slog.Default())
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/v1/hotels/3/availability?room_type_id=1", nil)
    c := e.NewContext(req, httptest.NewRecorder())
    c.SetPath("/v1/hotels/:id/availability")
    c.SetParamNames("id")
    c.SetParamValues("3")

    key := pc.cacheKey(c)
    if !strings.HasPrefix(key, "hotel:cache:hotel:3:") || len(key) != len("hotel:cache:hotel:3:")+40 {
        t.Fatalf("unexpected key %q", key)
    }
}

func TestCaptureWriterDropsOversizedBodies(t *testing.T) {
    rec := httptest.NewRecorder()
    cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
    _, _ = cw.Write([]byte("abc"))
    _, _ = cw.Write([]byte("def"))
    if !cw.truncated || cw.buf.Len() != 0 {
        t.Fatalf("expected truncation, buf=%q", cw.buf.String())
    }
    if rec.Body.String() != "abcdef" {
        t.Fatalf("client body = %q", rec.Body.String())
    }
}
