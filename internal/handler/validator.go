package handler

import (
    "errors"
    "reflect"
    "strings"

    "github.com/go-playground/validator/v10"

    "github.com/iliyamo/hotel-booking-engine/internal/domain"
)

// RequestValidator adapts go-playground/validator to echo.Validator.
// Failures come back as domain.ValidationError naming the first failing
// field by its JSON name.
type RequestValidator struct {
    v *validator.Validate
}

func NewRequestValidator() *RequestValidator {
    v := validator.New(validator.WithRequiredStructEnabled())
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
        if name == "-" {
            return ""
        }
        return name
    })
    return &RequestValidator{v: v}
}

func (rv *RequestValidator) Validate(i any) error {
    err := rv.v.Struct(i)
    if err == nil {
        return nil
    }
    var fields validator.ValidationErrors
    if !errors.As(err, &fields) || len(fields) == 0 {
        return domain.ValidationError{Field: "body", Msg: err.Error()}
    }
    fe := fields[0]
    return domain.ValidationError{Field: fieldPath(fe), Msg: describe(fe), Err: err}
}

// fieldPath drops the root struct name: "createReservationRequest.rooms[0].quantity" → "rooms[0].quantity".
func fieldPath(fe validator.FieldError) string {
    ns := fe.Namespace()
    if i := strings.IndexByte(ns, '.'); i >= 0 {
        return ns[i+1:]
    }
    return fe.Field()
}

func describe(fe validator.FieldError) string {
    switch fe.Tag() {
    case "required":
        return "is required"
    case "min":
        switch fe.Kind() {
        case reflect.Slice:
            return "must have at least " + fe.Param() + " item(s)"
        case reflect.String:
            return "must be at least " + fe.Param() + " characters"
        }
        return "must be at least " + fe.Param()
    case "max":
        if fe.Kind() == reflect.String {
            return "must be at most " + fe.Param() + " characters"
        }
        return "must be at most " + fe.Param()
    case "datetime":
        return "must be a date formatted YYYY-MM-DD"
    case "oneof":
        return "must be one of " + fe.Param()
    case "email":
        return "must be a valid email address"
    }
    return "failed " + fe.Tag() + " validation"
}
