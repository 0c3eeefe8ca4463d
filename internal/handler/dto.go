package handler

import (
    "time"

    "github.com/shopspring/decimal"

    "github.com/iliyamo/hotel-booking-engine/internal/domain"
    "github.com/iliyamo/hotel-booking-engine/internal/model"
    "github.com/iliyamo/hotel-booking-engine/internal/service"
)

// Monetary amounts leave the API as decimal strings with two places and
// dates as YYYY-MM-DD.

type reservationRoomResponse struct {
    ID           uint64 `json:"id"`
    RoomID       uint64 `json:"room_id"`
    RoomNumber   string `json:"room_number"`
    RoomTypeID   uint64 `json:"room_type_id"`
    RoomTypeName string `json:"room_type_name"`
    RatePerNight string `json:"rate_per_night"`
}

type reservationResponse struct {
    ID                 uint64                    `json:"id"`
    ReferenceNumber    string                    `json:"reference_number"`
    ClientID           uint64                    `json:"client_id"`
    HotelID            uint64                    `json:"hotel_id"`
    CheckIn            string                    `json:"check_in"`
    CheckOut           string                    `json:"check_out"`
    Nights             int                       `json:"nights"`
    TotalAmount        string                    `json:"total_amount"`
    Status             model.ReservationStatus   `json:"status"`
    ActualCheckInTime  *time.Time                `json:"actual_check_in_time"`
    ActualCheckOutTime *time.Time                `json:"actual_check_out_time"`
    CancelledAt        *time.Time                `json:"cancelled_at"`
    Rooms              []reservationRoomResponse `json:"rooms"`
    SpecialRequests    []string                  `json:"special_requests"`
    CreatedAt          time.Time                 `json:"created_at"`
    UpdatedAt          time.Time                 `json:"updated_at"`
}

func toReservationResponse(v service.ReservationView) reservationResponse {
    out := reservationResponse{
        ID:                 v.ID,
        ReferenceNumber:    v.ReferenceNumber,
        ClientID:           v.ClientID,
        HotelID:            v.HotelID,
        CheckIn:            domain.FormatDate(v.CheckInDate),
        CheckOut:           domain.FormatDate(v.CheckOutDate),
        Nights:             domain.DateRange{CheckIn: v.CheckInDate, CheckOut: v.CheckOutDate}.Nights(),
        TotalAmount:        v.TotalAmount.StringFixed(2),
        Status:             v.Status,
        ActualCheckInTime:  v.ActualCheckInTime,
        ActualCheckOutTime: v.ActualCheckOutTime,
        CancelledAt:        v.CancelledAt,
        Rooms:              make([]reservationRoomResponse, 0, len(v.Rooms)),
        SpecialRequests:    make([]string, 0, len(v.SpecialRequests)),
        CreatedAt:          v.CreatedAt,
        UpdatedAt:          v.UpdatedAt,
    }
    for _, rr := range v.Rooms {
        out.Rooms = append(out.Rooms, reservationRoomResponse{
            ID:           rr.ID,
            RoomID:       rr.RoomID,
            RoomNumber:   rr.RoomNumber,
            RoomTypeID:   rr.RoomTypeID,
            RoomTypeName: rr.RoomTypeName,
            RatePerNight: rr.RatePerNight.StringFixed(2),
        })
    }
    for _, s := range v.SpecialRequests {
        out.SpecialRequests = append(out.SpecialRequests, s.Text)
    }
    return out
}

type consumptionResponse struct {
    ID            uint64    `json:"id"`
    ReservationID uint64    `json:"reservation_id"`
    ItemName      string    `json:"item_name"`
    Description   *string   `json:"description"`
    Quantity      uint32    `json:"quantity"`
    UnitPrice     string    `json:"unit_price"`
    TotalPrice    string    `json:"total_price"`
    ConsumedAt    time.Time `json:"consumed_at"`
}

func toConsumptionResponse(it model.ConsumptionItem) consumptionResponse {
    return consumptionResponse{
        ID:            it.ID,
        ReservationID: it.ReservationID,
        ItemName:      it.ItemName,
        Description:   it.Description,
        Quantity:      it.Quantity,
        UnitPrice:     it.UnitPrice.StringFixed(2),
        TotalPrice:    it.TotalPrice.StringFixed(2),
        ConsumedAt:    it.ConsumedAt,
    }
}

type invoiceItemResponse struct {
    Position    uint32                `json:"position"`
    ItemType    model.InvoiceItemType `json:"item_type"`
    Description string                `json:"description"`
    Quantity    uint32                `json:"quantity"`
    UnitPrice   string                `json:"unit_price"`
    TotalPrice  string                `json:"total_price"`
}

type invoiceResponse struct {
    ID                         uint64                `json:"id"`
    ReservationID              uint64                `json:"reservation_id"`
    ClientID                   uint64                `json:"client_id"`
    ReferenceNumber            string                `json:"reference_number"`
    SubtotalRoomCharges        string                `json:"subtotal_room_charges"`
    SubtotalConsumptionCharges string                `json:"subtotal_consumption_charges"`
    TaxesAmount                string                `json:"taxes_amount"`
    TotalAmountDue             string                `json:"total_amount_due"`
    Status                     model.InvoiceStatus   `json:"status"`
    IssuedAt                   time.Time             `json:"issued_at"`
    Items                      []invoiceItemResponse `json:"items,omitempty"`
}

func toInvoiceResponse(inv model.Invoice) invoiceResponse {
    out := invoiceResponse{
        ID:                         inv.ID,
        ReservationID:              inv.ReservationID,
        ClientID:                   inv.ClientID,
        ReferenceNumber:            inv.ReferenceNumber,
        SubtotalRoomCharges:        inv.SubtotalRoomCharges.StringFixed(2),
        SubtotalConsumptionCharges: inv.SubtotalConsumptionCharges.StringFixed(2),
        TaxesAmount:                inv.TaxesAmount.StringFixed(2),
        TotalAmountDue:             inv.TotalAmountDue.StringFixed(2),
        Status:                     inv.Status,
        IssuedAt:                   inv.IssuedAt,
    }
    for _, it := range inv.Items {
        out.Items = append(out.Items, invoiceItemResponse{
            Position:    it.Position,
            ItemType:    it.ItemType,
            Description: it.Description,
            Quantity:    it.Quantity,
            UnitPrice:   it.UnitPrice.StringFixed(2),
            TotalPrice:  it.TotalPrice.StringFixed(2),
        })
    }
    return out
}

type rateResponse struct {
    ID           uint64  `json:"id"`
    HotelID      uint64  `json:"hotel_id"`
    RoomTypeID   uint64  `json:"room_type_id"`
    BasePrice    string  `json:"base_price"`
    WeekendPrice *string `json:"weekend_price"`
    HolidayPrice *string `json:"holiday_price"`
}

func fixedPtr(d *decimal.Decimal) *string {
    if d == nil {
        return nil
    }
    s := d.StringFixed(2)
    return &s
}
