package handler

import (
    "errors"
    "log/slog"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-booking-engine/internal/domain"
    "github.com/iliyamo/hotel-booking-engine/internal/obs"
)

// errorBody is the JSON envelope of every failed request.
type errorBody struct {
    Error   string         `json:"error"`
    Message string         `json:"message"`
    Details map[string]any `json:"details,omitempty"`
}

// respondError maps domain errors onto HTTP statuses.  Anything that is
// not a business error is logged with op and the request id and
// answered with an opaque 500.
func respondError(c echo.Context, log *slog.Logger, op string, err error) error {
    status, body := classify(err)
    if status == http.StatusInternalServerError {
        obs.Logger(c.Request().Context(), log).Error("request failed", "op", op, "err", err)
    }
    return c.JSON(status, body)
}

func classify(err error) (int, errorBody) {
    var (
        validation  domain.ValidationError
        notFound    domain.NotFoundError
        inventory   domain.InsufficientInventoryError
        state       domain.InvalidStateError
        mismatch    domain.TypeMismatchError
        unavailable domain.RoomUnavailableError
        unsupported domain.NotSupportedError
        forbidden   domain.ForbiddenError
    )
    switch {
    case errors.As(err, &validation):
        return http.StatusBadRequest, errorBody{Error: "validation_error", Message: validation.Error(),
            Details: map[string]any{"field": validation.Field}}
    case errors.As(err, &notFound):
        d := map[string]any{"resource": notFound.Resource}
        if notFound.ID != 0 {
            d["id"] = notFound.ID
        }
        return http.StatusNotFound, errorBody{Error: "not_found", Message: notFound.Error(), Details: d}
    case errors.As(err, &inventory):
        return http.StatusConflict, errorBody{Error: "insufficient_inventory", Message: inventory.Error(),
            Details: map[string]any{"room_type_id": inventory.RoomTypeID, "requested": inventory.Requested, "available": inventory.Available}}
    case errors.As(err, &state):
        return http.StatusConflict, errorBody{Error: "invalid_state", Message: state.Error(),
            Details: map[string]any{"current": state.Current, "required": state.Required}}
    case errors.As(err, &mismatch):
        return http.StatusUnprocessableEntity, errorBody{Error: "type_mismatch", Message: mismatch.Error(),
            Details: map[string]any{"expected_room_type_id": mismatch.ExpectedRoomTypeID, "actual_room_type_id": mismatch.ActualRoomTypeID}}
    case errors.As(err, &unavailable):
        return http.StatusConflict, errorBody{Error: "room_unavailable", Message: unavailable.Error(),
            Details: map[string]any{"room_id": unavailable.RoomID}}
    case errors.As(err, &unsupported):
        return http.StatusUnprocessableEntity, errorBody{Error: "not_supported", Message: unsupported.Error()}
    case errors.As(err, &forbidden):
        return http.StatusForbidden, errorBody{Error: "forbidden", Message: forbidden.Error()}
    }
    return http.StatusInternalServerError, errorBody{Error: "internal_error", Message: "internal server error"}
}
