package handler // declare the package name; contains HTTP handlers

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// Health reports liveness.  When ping is non-nil the storage backend is
// probed with a 2s budget and a failure answers 503.
func Health(ping func(ctx context.Context) error) echo.HandlerFunc {
    return func(c echo.Context) error {
        if ping != nil {
            ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
            defer cancel()
            if err := ping(ctx); err != nil {
                return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "error": "storage unreachable"})
            }
        }
        return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
    }
}
