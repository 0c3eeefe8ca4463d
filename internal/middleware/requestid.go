package middleware

import (
    "log/slog"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-booking-engine/internal/obs"
)

const HeaderRequestID = "X-Request-ID"

// RequestID propagates the inbound X-Request-ID or mints a UUID, echoes it
// on the response and stores it on the request context for obs.Logger.
func RequestID() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            id := c.Request().Header.Get(HeaderRequestID)
            if id == "" || len(id) > 128 {
                id = uuid.NewString()
            }
            req := c.Request()
            c.SetRequest(req.WithContext(obs.WithRequestID(req.Context(), id)))
            c.Response().Header().Set(HeaderRequestID, id)
            c.Set("request_id", id)
            return next(c)
        }
    }
}

// AccessLog logs one line per request once the handler has finished.
func AccessLog(log *slog.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                c.Error(err)
            }
            obs.Logger(c.Request().Context(), log).Info("http",
                "method", c.Request().Method,
                "path", c.Path(),
                "status", c.Response().Status,
                "duration", time.Since(start),
            )
            return nil
        }
    }
}
