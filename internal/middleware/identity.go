package middleware

import (
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-booking-engine/internal/model"
)

// Context keys set by JWTAuth.
const (
    ctxUserID    = "user_id"
    ctxRole      = "role"
    ctxRequester = "requester"
)

// RequesterFrom returns the caller identity stored by JWTAuth.
func RequesterFrom(c echo.Context) (model.Requester, bool) {
    r, ok := c.Get(ctxRequester).(model.Requester)
    return r, ok
}

// SetRequester stores r the way JWTAuth does.  Handy for tests and
// trusted internal callers.
func SetRequester(c echo.Context, r model.Requester) {
    c.Set(ctxRequester, r)
    c.Set(ctxUserID, r.UserID)
    c.Set(ctxRole, string(r.Role))
}

// userKey identifies the caller for rate limiting; "anon" when unauthenticated.
func userKey(c echo.Context) string {
    if r, ok := RequesterFrom(c); ok {
        return strconv.FormatUint(r.UserID, 10)
    }
    return "anon"
}

// subjectID accepts the numeric or string forms a sub claim arrives in.
func subjectID(v any) (uint64, bool) {
    switch t := v.(type) {
    case float64:
        if t <= 0 || t != float64(uint64(t)) {
            return 0, false
        }
        return uint64(t), true
    case string:
        n, err := strconv.ParseUint(t, 10, 64)
        return n, err == nil && n > 0
    }
    return 0, false
}
