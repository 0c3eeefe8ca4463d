package router // package router defines how HTTP routes are registered for the API

import (
    "context"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-booking-engine/internal/handler"
    "github.com/iliyamo/hotel-booking-engine/internal/middleware"
    "github.com/iliyamo/hotel-booking-engine/internal/model"
)

// Deps carries what the routes need.  Cache and RateLimit may be
// pass-through middleware when Redis is unavailable.
type Deps struct {
    JWTSecret    string
    Reservations *handler.ReservationHandler
    Billing      *handler.BillingHandler
    Inventory    *handler.InventoryHandler
    Cache        echo.MiddlewareFunc
    RateLimit    echo.MiddlewareFunc
    Ping         func(ctx context.Context) error
}

// RegisterRoutes registers the health check on the provided Echo instance.
func RegisterRoutes(e *echo.Echo, ping func(ctx context.Context) error) {
    e.GET("/healthz", handler.Health(ping))
}

// RegisterPublic registers the unauthenticated previews.  Responses are
// cached briefly per hotel.
func RegisterPublic(e *echo.Echo, d Deps) {
    g := e.Group("/v1/hotels", d.Cache)
    g.GET("/:id/availability", d.Inventory.Availability)
    g.GET("/:id/room-types/:typeId/rate", d.Inventory.Rate)
}

// RegisterProtected registers every route that needs a verified JWT.
// Writes are rate limited per caller and route.
func RegisterProtected(e *echo.Echo, d Deps) {
    v1 := e.Group("/v1", middleware.JWTAuth(d.JWTSecret))
    staff := middleware.RequireStaff()
    admin := middleware.RequireRole(model.RoleAdmin)
    limit := d.RateLimit

    r := d.Reservations
    v1.POST("/reservations", r.Create, limit)
    v1.GET("/reservations/:id", r.Get)
    v1.PATCH("/reservations/:id", r.Update, staff, limit)
    v1.POST("/reservations/:id/cancel", r.Cancel, limit)
    v1.POST("/reservations/:id/check-in", r.CheckIn, staff, limit)
    v1.POST("/reservations/:id/check-out", r.CheckOut, staff, limit)
    v1.POST("/reservations/:id/rooms/reassign", r.Reassign, staff, limit)

    b := d.Billing
    v1.POST("/reservations/:id/consumptions", b.AddConsumption, staff, limit)
    v1.GET("/reservations/:id/consumptions", b.ListConsumptions)
    v1.POST("/reservations/:id/invoice", b.GenerateInvoice, limit)
    v1.GET("/invoices", b.ListInvoices)
    v1.GET("/invoices/:id", b.GetInvoice)
    v1.PATCH("/invoices/:id/status", b.UpdateInvoiceStatus, staff, limit)

    v1.PUT("/hotels/:id/room-types/:typeId/rates", d.Inventory.UpsertRate, admin, limit)
}

// Register wires all route groups.
func Register(e *echo.Echo, d Deps) {
    pass := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    if d.Cache == nil {
        d.Cache = pass
    }
    if d.RateLimit == nil {
        d.RateLimit = pass
    }
    RegisterRoutes(e, d.Ping)
    RegisterPublic(e, d)
    RegisterProtected(e, d)
}
