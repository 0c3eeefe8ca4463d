package domain

import "github.com/shopspring/decimal"

// TaxRate applies to room and consumption subtotals alike.
var TaxRate = decimal.RequireFromString("0.10")

// RoundMoney rounds half away from zero to two decimal places.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
    return d.Round(2)
}

// Tax returns round((rooms + consumptions) × TaxRate).
func Tax(rooms, consumptions decimal.Decimal) decimal.Decimal {
    return RoundMoney(rooms.Add(consumptions).Mul(TaxRate))
}

// StayAmount is rate × quantity × nights, rounded.
func StayAmount(rate decimal.Decimal, quantity, nights int) decimal.Decimal {
    return RoundMoney(rate.Mul(decimal.NewFromInt(int64(quantity))).Mul(decimal.NewFromInt(int64(nights))))
}

// ParseMoney parses a non-negative amount with at most two decimals.
func ParseMoney(field, s string) (decimal.Decimal, error) {
    d, err := decimal.NewFromString(s)
    if err != nil {
        return decimal.Zero, ValidationError{Field: field, Msg: "must be a decimal amount", Err: err}
    }
    if d.IsNegative() {
        return decimal.Zero, ValidationError{Field: field, Msg: "must not be negative"}
    }
    if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
        return decimal.Zero, ValidationError{Field: field, Msg: "must have at most 2 decimal places"}
    }
    return RoundMoney(d), nil
}
