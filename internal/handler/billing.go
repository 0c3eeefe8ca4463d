package handler

import (
    "log/slog"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/shopspring/decimal"

    "github.com/iliyamo/hotel-booking-engine/internal/domain"
    "github.com/iliyamo/hotel-booking-engine/internal/model"
    "github.com/iliyamo/hotel-booking-engine/internal/service"
)

// BillingHandler serves consumption and invoice endpoints.
type BillingHandler struct {
    Ledger   *service.ConsumptionLedger
    Invoices *service.InvoiceAggregator
    Log      *slog.Logger
}

func NewBillingHandler(ledger *service.ConsumptionLedger, invoices *service.InvoiceAggregator, log *slog.Logger) *BillingHandler {
    if ledger == nil || invoices == nil {
        panic("nil service passed to NewBillingHandler")
    }
    return &BillingHandler{Ledger: ledger, Invoices: invoices, Log: log}
}

type addConsumptionRequest struct {
    ItemName    string          `json:"item_name" validate:"required,max=255"`
    Description *string         `json:"description" validate:"omitempty,max=1000"`
    Quantity    int             `json:"quantity" validate:"required,min=1,max=10000"`
    UnitPrice   decimal.Decimal `json:"unit_price"`
}

// AddConsumption handles POST /v1/reservations/:id/consumptions (staff).
func (h *BillingHandler) AddConsumption(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return respondError(c, h.Log, "add consumption", err)
    }
    var body addConsumptionRequest
    if err := bindAndValidate(c, &body); err != nil {
        return respondError(c, h.Log, "add consumption", err)
    }
    price, err := money("unit_price", body.UnitPrice)
    if err != nil {
        return respondError(c, h.Log, "add consumption", err)
    }
    item, err := h.Ledger.AddConsumption(c.Request().Context(), id, service.ConsumptionInput{
        ItemName:    body.ItemName,
        Description: body.Description,
        Quantity:    body.Quantity,
        UnitPrice:   price,
    })
    if err != nil {
        return respondError(c, h.Log, "add consumption", err)
    }
    return c.JSON(http.StatusCreated, toConsumptionResponse(item))
}

// ListConsumptions handles GET /v1/reservations/:id/consumptions.
func (h *BillingHandler) ListConsumptions(c echo.Context) error {
    who, err := requester(c)
    if err != nil {
        return respondError(c, h.Log, "list consumptions", err)
    }
    id, err := pathID(c, "id")
    if err != nil {
        return respondError(c, h.Log, "list consumptions", err)
    }
    items, err := h.Ledger.ListConsumptions(c.Request().Context(), id, who)
    if err != nil {
        return respondError(c, h.Log, "list consumptions", err)
    }
    out := make([]consumptionResponse, 0, len(items))
    total := decimal.Zero
    for _, it := range items {
        out = append(out, toConsumptionResponse(it))
        total = total.Add(it.TotalPrice)
    }
    return c.JSON(http.StatusOK, echo.Map{"reservation_id": id, "items": out, "total": total.StringFixed(2)})
}

// GenerateInvoice handles POST /v1/reservations/:id/invoice.  A new
// invoice answers 201, an existing one 200 with the stored content.
func (h *BillingHandler) GenerateInvoice(c echo.Context) error {
    who, err := requester(c)
    if err != nil {
        return respondError(c, h.Log, "generate invoice", err)
    }
    id, err := pathID(c, "id")
    if err != nil {
        return respondError(c, h.Log, "generate invoice", err)
    }
    inv, created, err := h.Invoices.GenerateOrGetInvoice(c.Request().Context(), id, who)
    if err != nil {
        return respondError(c, h.Log, "generate invoice", err)
    }
    status := http.StatusOK
    if created {
        status = http.StatusCreated
    }
    return c.JSON(status, toInvoiceResponse(inv))
}

// ListInvoices handles GET /v1/invoices.  Filters: client_id, status,
// date_from, date_to (inclusive, on issue date), page, page_size.
func (h *BillingHandler) ListInvoices(c echo.Context) error {
    who, err := requester(c)
    if err != nil {
        return respondError(c, h.Log, "list invoices", err)
    }
    f, err := invoiceFilterFrom(c)
    if err != nil {
        return respondError(c, h.Log, "list invoices", err)
    }
    page, err := h.Invoices.ListInvoices(c.Request().Context(), f, who)
    if err != nil {
        return respondError(c, h.Log, "list invoices", err)
    }
    out := make([]invoiceResponse, 0, len(page.Invoices))
    for _, inv := range page.Invoices {
        r := toInvoiceResponse(inv)
        r.Items = nil
        out = append(out, r)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "invoices":  out,
        "total":     page.Total,
        "page":      page.Page,
        "page_size": page.PageSize,
    })
}

func invoiceFilterFrom(c echo.Context) (service.InvoiceFilter, error) {
    var (
        f   service.InvoiceFilter
        err error
    )
    if f.ClientID, err = queryID(c, "client_id"); err != nil {
        return f, err
    }
    f.Status = model.InvoiceStatus(c.QueryParam("status"))
    for _, p := range []struct {
        name string
        dst  **time.Time
    }{{"date_from", &f.DateFrom}, {"date_to", &f.DateTo}} {
        raw := c.QueryParam(p.name)
        if raw == "" {
            continue
        }
        d, err := domain.ParseDate(p.name, raw)
        if err != nil {
            return f, err
        }
        *p.dst = &d
    }
    if f.Page, err = queryInt(c, "page"); err != nil {
        return f, err
    }
    if f.PageSize, err = queryInt(c, "page_size"); err != nil {
        return f, err
    }
    return f, nil
}

// GetInvoice handles GET /v1/invoices/:id.
func (h *BillingHandler) GetInvoice(c echo.Context) error {
    who, err := requester(c)
    if err != nil {
        return respondError(c, h.Log, "get invoice", err)
    }
    id, err := pathID(c, "id")
    if err != nil {
        return respondError(c, h.Log, "get invoice", err)
    }
    inv, err := h.Invoices.GetInvoice(c.Request().Context(), id, who)
    if err != nil {
        return respondError(c, h.Log, "get invoice", err)
    }
    return c.JSON(http.StatusOK, toInvoiceResponse(inv))
}

type invoiceStatusRequest struct {
    Status string `json:"status" validate:"required,oneof=issued paid"`
}

// UpdateInvoiceStatus handles PATCH /v1/invoices/:id/status (staff).
func (h *BillingHandler) UpdateInvoiceStatus(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return respondError(c, h.Log, "update invoice status", err)
    }
    var body invoiceStatusRequest
    if err := bindAndValidate(c, &body); err != nil {
        return respondError(c, h.Log, "update invoice status", err)
    }
    inv, err := h.Invoices.UpdateInvoiceStatus(c.Request().Context(), id, model.InvoiceStatus(body.Status))
    if err != nil {
        return respondError(c, h.Log, "update invoice status", err)
    }
    return c.JSON(http.StatusOK, toInvoiceResponse(inv))
}
