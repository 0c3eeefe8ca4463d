package handler // handler defines http handlers

import (
    "context"
    "strconv"

    "github.com/labstack/echo/v4"
    "github.com/shopspring/decimal"

    "github.com/iliyamo/hotel-booking-engine/internal/domain"
    "github.com/iliyamo/hotel-booking-engine/internal/middleware"
    "github.com/iliyamo/hotel-booking-engine/internal/model"
)

// HotelCache drops cached public previews of a hotel after a write that
// changes its availability or prices.
type HotelCache interface {
    InvalidateHotel(ctx context.Context, hotelID uint64) error
}

type noCache struct{}

func (noCache) InvalidateHotel(context.Context, uint64) error { return nil }

// requester returns the authenticated caller.  Routes behind JWTAuth
// always have one; the error covers misrouted handlers.
func requester(c echo.Context) (model.Requester, error) {
    who, ok := middleware.RequesterFrom(c)
    if !ok {
        return model.Requester{}, domain.ForbiddenError{Msg: "authentication required"}
    }
    return who, nil
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, domain.ValidationError{Field: name, Msg: "must be a positive integer"}
    }
    return id, nil
}

// queryID parses an optional positive numeric query parameter; 0 when absent.
func queryID(c echo.Context, name string) (uint64, error) {
    raw := c.QueryParam(name)
    if raw == "" {
        return 0, nil
    }
    id, err := strconv.ParseUint(raw, 10, 64)
    if err != nil || id == 0 {
        return 0, domain.ValidationError{Field: name, Msg: "must be a positive integer"}
    }
    return id, nil
}

func queryInt(c echo.Context, name string) (int, error) {
    raw := c.QueryParam(name)
    if raw == "" {
        return 0, nil
    }
    n, err := strconv.Atoi(raw)
    if err != nil || n < 0 {
        return 0, domain.ValidationError{Field: name, Msg: "must be a non-negative integer"}
    }
    return n, nil
}

// bindAndValidate decodes the JSON body into dst and runs the registered
// validator over it.
func bindAndValidate(c echo.Context, dst any) error {
    if err := c.Bind(dst); err != nil {
        return domain.ValidationError{Field: "body", Msg: "invalid JSON body"}
    }
    return c.Validate(dst)
}

// money checks a decimal arriving in a request as a price.
func money(field string, d decimal.Decimal) (decimal.Decimal, error) {
    return domain.ParseMoney(field, d.String())
}

func moneyPtr(field string, d *decimal.Decimal) (*decimal.Decimal, error) {
    if d == nil {
        return nil, nil
    }
    v, err := money(field, *d)
    if err != nil {
        return nil, err
    }
    return &v, nil
}
