package middleware // middleware provides shared request processing for handlers

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-booking-engine/internal/model"
)

// RequireRole aborts with 403 unless the authenticated caller holds one
// of roles.  It must run after JWTAuth.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
    allowed := make(map[model.Role]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            who, ok := RequesterFrom(c)
            if !ok || !allowed[who.Role] {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden", "message": "role not permitted"})
            }
            return next(c)
        }
    }
}

// RequireStaff admits RECEPTION and ADMIN.
func RequireStaff() echo.MiddlewareFunc {
    return RequireRole(model.RoleReception, model.RoleAdmin)
}
