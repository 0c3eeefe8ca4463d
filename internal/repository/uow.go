package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/hotel-booking-engine/internal/service"
)

// queryer is satisfied by both *sql.DB and *sql.Tx so every repository
// can run inside or outside a transaction.
type queryer interface {
    ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
    QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
    QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// unitOfWork binds the repositories to one queryer.  inTx enables the
// locking reads, which are meaningless without a transaction.
type unitOfWork struct {
    q    queryer
    inTx bool
}

func (u unitOfWork) Rooms() service.RoomRepository { return &RoomRepo{q: u.q, inTx: u.inTx} }
func (u unitOfWork) Rates() service.RateRepository { return &RateRepo{q: u.q} }
func (u unitOfWork) Reservations() service.ReservationRepository {
    return &ReservationRepo{q: u.q, inTx: u.inTx}
}
func (u unitOfWork) Consumptions() service.ConsumptionRepository { return &ConsumptionRepo{q: u.q} }
func (u unitOfWork) Invoices() service.InvoiceRepository         { return &InvoiceRepo{q: u.q} }

// TxManager opens READ COMMITTED transactions on db.  Serialisation of
// competing allocations comes from the FOR UPDATE locks the services
// take on room rows, not from the isolation level.
type TxManager struct {
    db *sql.DB
}

var _ service.TxManager = (*TxManager)(nil)

func NewTxManager(db *sql.DB) *TxManager { return &TxManager{db: db} }

// DB exposes the pool for health checks.
func (m *TxManager) DB() *sql.DB { return m.db }

func (m *TxManager) Reader() service.UnitOfWork { return unitOfWork{q: m.db} }

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, uow service.UnitOfWork) error) error {
    tx, err := m.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
    if err != nil {
        return translate("begin transaction", err)
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if err := fn(ctx, unitOfWork{q: tx, inTx: true}); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return translate("commit transaction", err)
    }
    committed = true
    return nil
}
