package main // Entry point package

import (
    "context"
    "errors"
    "log/slog"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/hotel-booking-engine/internal/config"
    "github.com/iliyamo/hotel-booking-engine/internal/database"
    "github.com/iliyamo/hotel-booking-engine/internal/handler"
    "github.com/iliyamo/hotel-booking-engine/internal/middleware"
    "github.com/iliyamo/hotel-booking-engine/internal/notify"
    "github.com/iliyamo/hotel-booking-engine/internal/obs"
    "github.com/iliyamo/hotel-booking-engine/internal/queue"
    "github.com/iliyamo/hotel-booking-engine/internal/repository"
    "github.com/iliyamo/hotel-booking-engine/internal/router"
    "github.com/iliyamo/hotel-booking-engine/internal/service"
    "github.com/iliyamo/hotel-booking-engine/internal/storage/memory"
)

func main() {
    cfg := config.Load()
    log := obs.NewLogger(cfg.Env)
    slog.SetDefault(log)

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    tx, ping, closeStore, err := openStorage(cfg, log)
    if err != nil {
        log.Error("storage unavailable", "driver", cfg.StorageDriver, "err", err)
        os.Exit(1)
    }
    defer closeStore()

    var rdb *redis.Client
    if c, err := config.NewRedisClient(config.LoadRedisConfig()); err != nil {
        log.Warn("redis unavailable; rate limiting and preview cache disabled", "err", err)
    } else {
        rdb = c
        defer func() { _ = rdb.Close() }()
    }

    notifier := service.Notifier(service.LogNotifier{Log: log})
    if cfg.NotifyDriver == config.NotifyRabbitMQ {
        notifier = queue.NewPublisher(cfg.RabbitMQURL, log)
        if cfg.SMTP.Host != "" {
            sender := notify.NewEmailSender(notify.SMTPConfig{
                Host: cfg.SMTP.Host, Port: cfg.SMTP.Port, User: cfg.SMTP.User, Pass: cfg.SMTP.Pass, From: cfg.SMTP.From,
            })
            go func() {
                if err := queue.NewConsumer(cfg.RabbitMQURL, sender, log).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
                    log.Error("confirmation consumer stopped", "err", err)
                }
            }()
        }
    }

    rates := service.NewRateResolver(tx, cfg.DefaultRoomPrice)
    availability := service.NewAvailabilityChecker(tx, rates)
    booking := service.NewBookingAllocator(tx, rates, notifier, log)
    lifecycle := service.NewLifecycleManager(tx, log)
    lifecycle.CheckInHour = cfg.CheckInHour
    ledger := service.NewConsumptionLedger(tx, log)
    invoices := service.NewInvoiceAggregator(tx, log)

    cache := middleware.NewPreviewCache(config.LoadCacheConfig(), rdb, log)

    e := echo.New()
    e.HideBanner = true
    e.Validator = handler.NewRequestValidator()
    e.Use(middleware.RequestID(), middleware.AccessLog(log), echomw.Recover())
    router.Register(e, router.Deps{
        JWTSecret:    cfg.JWTSecret,
        Reservations: handler.NewReservationHandler(booking, lifecycle, cache, log),
        Billing:      handler.NewBillingHandler(ledger, invoices, log),
        Inventory:    handler.NewInventoryHandler(availability, rates, cache, log),
        Cache:        cache.Middleware(),
        RateLimit:    middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
        Ping:         ping,
    })

    addr := ":" + cfg.Port
    go func() {
        log.Info("listening", "addr", addr, "env", cfg.Env, "storage", cfg.StorageDriver, "notify", cfg.NotifyDriver)
        if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
            log.Error("http server failed", "err", err)
            stop()
        }
    }()

    <-ctx.Done()
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := e.Shutdown(shutdownCtx); err != nil {
        log.Error("graceful shutdown failed", "err", err)
    }
    log.Info("stopped")
}

// openStorage returns the transaction manager for the configured driver,
// a health probe and a close function.
func openStorage(cfg config.Config, log *slog.Logger) (service.TxManager, func(context.Context) error, func(), error) {
    if cfg.StorageDriver == config.StorageMemory {
        s := memory.New()
        memory.SeedDemo(s)
        log.Warn("using in-memory storage with demo data; nothing is persisted")
        return s, nil, func() {}, nil
    }
    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        return nil, nil, nil, err
    }
    return repository.NewTxManager(db), db.PingContext, func() { _ = db.Close() }, nil
}
