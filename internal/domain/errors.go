// Package domain holds the business error taxonomy and the small value
// types shared by the booking components.
package domain

import (
    "errors"
    "fmt"
)

// Storage level sentinels.  Repositories translate driver errors into
// these so services never look at driver types.
var (
    ErrRecordNotFound = errors.New("record not found")
    ErrDuplicateKey   = errors.New("duplicate key")
)

type ValidationError struct {
    Field string
    Msg   string
    Err   error
}

func (e ValidationError) Error() string {
    if e.Msg != "" && e.Field != "" {
        return fmt.Sprintf("%s: %s", e.Field, e.Msg)
    }
    if e.Msg != "" {
        return e.Msg
    }
    if e.Field != "" {
        return fmt.Sprintf("invalid %s", e.Field)
    }
    return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type NotFoundError struct {
    Resource string
    ID       uint64
    Err      error
}

func (e NotFoundError) Error() string {
    if e.Resource == "" {
        return "not found"
    }
    if e.ID != 0 {
        return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
    }
    return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

// InsufficientInventoryError reports the first room type that could not
// be fully allocated.
type InsufficientInventoryError struct {
    RoomTypeID uint64
    Requested  int
    Available  int
}

func (e InsufficientInventoryError) Error() string {
    return fmt.Sprintf("room type %d: requested %d rooms, only %d available", e.RoomTypeID, e.Requested, e.Available)
}

// InvalidStateError reports a lifecycle operation attempted from a state
// that does not allow it.
type InvalidStateError struct {
    Operation string
    Current   string
    Required  []string
}

func (e InvalidStateError) Error() string {
    if e.Operation == "" {
        return fmt.Sprintf("reservation is %s, required one of %v", e.Current, e.Required)
    }
    return fmt.Sprintf("cannot %s: reservation is %s, required one of %v", e.Operation, e.Current, e.Required)
}

type TypeMismatchError struct {
    ExpectedRoomTypeID uint64
    ActualRoomTypeID   uint64
}

func (e TypeMismatchError) Error() string {
    return fmt.Sprintf("room type mismatch: expected %d, got %d", e.ExpectedRoomTypeID, e.ActualRoomTypeID)
}

type RoomUnavailableError struct {
    RoomID uint64
}

func (e RoomUnavailableError) Error() string {
    return fmt.Sprintf("room %d is not available for the reservation dates", e.RoomID)
}

type NotSupportedError struct {
    Msg string
}

func (e NotSupportedError) Error() string {
    if e.Msg == "" {
        return "operation not supported"
    }
    return e.Msg
}

type ForbiddenError struct {
    Msg string
}

func (e ForbiddenError) Error() string {
    if e.Msg == "" {
        return "forbidden"
    }
    return e.Msg
}

type InternalError struct {
    Msg string
    Err error
}

func (e InternalError) Error() string {
    if e.Msg != "" {
        return e.Msg
    }
    return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

// Internal wraps a storage failure.  Errors that are already part of the
// taxonomy pass through untouched.
func Internal(msg string, err error) error {
    if err == nil {
        return nil
    }
    if IsBusiness(err) || IsInternal(err) {
        return err
    }
    return InternalError{Msg: msg, Err: err}
}

func IsValidation(err error) bool {
    var target ValidationError
    return errors.As(err, &target)
}

func IsNotFound(err error) bool {
    var target NotFoundError
    return errors.As(err, &target)
}

func IsInsufficientInventory(err error) bool {
    var target InsufficientInventoryError
    return errors.As(err, &target)
}

func IsInvalidState(err error) bool {
    var target InvalidStateError
    return errors.As(err, &target)
}

func IsTypeMismatch(err error) bool {
    var target TypeMismatchError
    return errors.As(err, &target)
}

func IsRoomUnavailable(err error) bool {
    var target RoomUnavailableError
    return errors.As(err, &target)
}

func IsNotSupported(err error) bool {
    var target NotSupportedError
    return errors.As(err, &target)
}

func IsForbidden(err error) bool {
    var target ForbiddenError
    return errors.As(err, &target)
}

func IsInternal(err error) bool {
    var target InternalError
    return errors.As(err, &target)
}

// IsBusiness reports whether err is an expected outcome of a request
// rather than a fault.  Business errors are not logged as errors.
func IsBusiness(err error) bool {
    return IsValidation(err) || IsNotFound(err) || IsInsufficientInventory(err) ||
        IsInvalidState(err) || IsTypeMismatch(err) || IsRoomUnavailable(err) ||
        IsNotSupported(err) || IsForbidden(err)
}
