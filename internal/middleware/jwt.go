package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
    "github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/hotel-booking-engine/internal/model"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the caller identity into the request context.  Tokens are issued
// elsewhere; the engine only verifies them.  The sub claim carries the user
// id, role one of CLIENT, RECEPTION or ADMIN and email is optional.
// Handlers read the identity with RequesterFrom.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return unauthorized(c, "missing bearer token")
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                return []byte(secret), nil
            }, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
            if err != nil || !tok.Valid {
                return unauthorized(c, "invalid token")
            }
            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return unauthorized(c, "invalid claims")
            }

            uid, ok := subjectID(claims["sub"])
            if !ok {
                return unauthorized(c, "invalid subject")
            }
            roleClaim, _ := claims["role"].(string)
            role := model.ParseRole(roleClaim)
            if role == "" {
                return unauthorized(c, "invalid role")
            }
            email, _ := claims["email"].(string)

            SetRequester(c, model.Requester{UserID: uid, Role: role, Email: email})
            return next(c)
        }
    }
}

func unauthorized(c echo.Context, msg string) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": msg})
}
