// Package memory is an in-process implementation of the service ports.
// A transaction holds the store's write lock and works on a private copy
// of the state that replaces the shared state on commit, so a rolled
// back transaction leaves no trace.  It backs the service tests and the
// "memory" storage driver.
package memory

import (
    "context"
    "sort"
    "sync"
    "time"

    "github.com/iliyamo/hotel-booking-engine/internal/domain"
    "github.com/iliyamo/hotel-booking-engine/internal/model"
    "github.com/iliyamo/hotel-booking-engine/internal/service"
)

type holidayKey struct {
    hotelID uint64
    date    string
}

type state struct {
    hotels       map[uint64]model.Hotel
    roomTypes    map[uint64]model.RoomType
    rooms        map[uint64]model.Room
    rates        map[uint64]model.RoomRate
    holidays     map[holidayKey]bool
    reservations map[uint64]model.Reservation
    resRooms     map[uint64]model.ReservationRoom
    specials     map[uint64][]model.SpecialRequest
    consumptions map[uint64]model.ConsumptionItem
    invoices     map[uint64]model.Invoice

    nextID uint64
}

func newState() *state {
    return &state{
        hotels:       map[uint64]model.Hotel{},
        roomTypes:    map[uint64]model.RoomType{},
        rooms:        map[uint64]model.Room{},
        rates:        map[uint64]model.RoomRate{},
        holidays:     map[holidayKey]bool{},
        reservations: map[uint64]model.Reservation{},
        resRooms:     map[uint64]model.ReservationRoom{},
        specials:     map[uint64][]model.SpecialRequest{},
        consumptions: map[uint64]model.ConsumptionItem{},
        invoices:     map[uint64]model.Invoice{},
    }
}

func (s *state) clone() *state {
    c := &state{
        hotels:       make(map[uint64]model.Hotel, len(s.hotels)),
        roomTypes:    make(map[uint64]model.RoomType, len(s.roomTypes)),
        rooms:        make(map[uint64]model.Room, len(s.rooms)),
        rates:        make(map[uint64]model.RoomRate, len(s.rates)),
        holidays:     make(map[holidayKey]bool, len(s.holidays)),
        reservations: make(map[uint64]model.Reservation, len(s.reservations)),
        resRooms:     make(map[uint64]model.ReservationRoom, len(s.resRooms)),
        specials:     make(map[uint64][]model.SpecialRequest, len(s.specials)),
        consumptions: make(map[uint64]model.ConsumptionItem, len(s.consumptions)),
        invoices:     make(map[uint64]model.Invoice, len(s.invoices)),
        nextID:       s.nextID,
    }
    for k, v := range s.hotels {
        c.hotels[k] = v
    }
    for k, v := range s.roomTypes {
        c.roomTypes[k] = v
    }
    for k, v := range s.rooms {
        c.rooms[k] = v
    }
    for k, v := range s.rates {
        c.rates[k] = v
    }
    for k, v := range s.holidays {
        c.holidays[k] = v
    }
    for k, v := range s.reservations {
        c.reservations[k] = v
    }
    for k, v := range s.resRooms {
        c.resRooms[k] = v
    }
    for k, v := range s.specials {
        c.specials[k] = append([]model.SpecialRequest(nil), v...)
    }
    for k, v := range s.consumptions {
        c.consumptions[k] = v
    }
    for k, v := range s.invoices {
        v.Items = append([]model.InvoiceItem(nil), v.Items...)
        c.invoices[k] = v
    }
    return c
}

func (s *state) id() uint64 {
    s.nextID++
    return s.nextID
}

// Store implements service.TxManager.
type Store struct {
    mu sync.RWMutex
    st *state
}

var _ service.TxManager = (*Store)(nil)

func New() *Store {
    return &Store{st: newState()}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, uow service.UnitOfWork) error) error {
    if err := ctx.Err(); err != nil {
        return err
    }
    s.mu.Lock()
    defer s.mu.Unlock()
    work := s.st.clone()
    if err := fn(ctx, &uow{st: work}); err != nil {
        return err
    }
    s.st = work
    return nil
}

func (s *Store) Reader() service.UnitOfWork {
    return &uow{store: s}
}

// uow is bound either to a transaction's private state or, for readers,
// to the store, taking the read lock per call.
type uow struct {
    st    *state
    store *Store
}

func (u *uow) view() (*state, func()) {
    if u.store == nil {
        return u.st, func() {}
    }
    u.store.mu.RLock()
    return u.store.st, u.store.mu.RUnlock
}

func (u *uow) Rooms() service.RoomRepository               { return roomRepo{u} }
func (u *uow) Rates() service.RateRepository               { return rateRepo{u} }
func (u *uow) Reservations() service.ReservationRepository { return reservationRepo{u} }
func (u *uow) Consumptions() service.ConsumptionRepository { return consumptionRepo{u} }
func (u *uow) Invoices() service.InvoiceRepository         { return invoiceRepo{u} }

type roomRepo struct{ u *uow }

func (r roomRepo) GetHotel(_ context.Context, id uint64) (model.Hotel, error) {
    st, done := r.u.view()
    defer done()
    h, ok := st.hotels[id]
    if !ok {
        return model.Hotel{}, domain.ErrRecordNotFound
    }
    return h, nil
}

func (r roomRepo) GetRoomType(_ context.Context, id uint64) (model.RoomType, error) {
    st, done := r.u.view()
    defer done()
    rt, ok := st.roomTypes[id]
    if !ok {
        return model.RoomType{}, domain.ErrRecordNotFound
    }
    return rt, nil
}

func (r roomRepo) GetRoom(_ context.Context, id uint64) (model.Room, error) {
    st, done := r.u.view()
    defer done()
    room, ok := st.rooms[id]
    if !ok {
        return model.Room{}, domain.ErrRecordNotFound
    }
    return room, nil
}

// Row locks are implied by the transaction's exclusive lock.
func (roomRepo) LockRoomsByType(context.Context, uint64, uint64) error { return nil }
func (roomRepo) LockRooms(context.Context, []uint64) error            { return nil }

func (r roomRepo) FindAvailable(_ context.Context, q service.AvailabilityQuery) ([]model.Room, error) {
    st, done := r.u.view()
    defer done()
    busy := map[uint64]bool{}
    for _, rr := range st.resRooms {
        if rr.ReservationID == q.ExcludeReservationID && q.ExcludeReservationID != 0 {
            continue
        }
        res := st.reservations[rr.ReservationID]
        if !res.Status.IsActive() {
            continue
        }
        if q.Range.Overlaps(domain.DateRange{CheckIn: res.CheckInDate, CheckOut: res.CheckOutDate}) {
            busy[rr.RoomID] = true
        }
    }
    var out []model.Room
    for _, room := range st.rooms {
        if room.HotelID != q.HotelID || room.RoomTypeID != q.RoomTypeID || room.Status != model.RoomAvailable {
            continue
        }
        if q.RoomID != 0 && room.ID != q.RoomID {
            continue
        }
        if busy[room.ID] {
            continue
        }
        out = append(out, room)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
    if q.Limit > 0 && len(out) > q.Limit {
        out = out[:q.Limit]
    }
    return out, nil
}

type rateRepo struct{ u *uow }

func (r rateRepo) ListRates(_ context.Context, hotelID, roomTypeID uint64) ([]model.RoomRate, error) {
    st, done := r.u.view()
    defer done()
    var out []model.RoomRate
    for _, rt := range st.rates {
        if rt.HotelID == hotelID && rt.RoomTypeID == roomTypeID {
            out = append(out, rt)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
    return out, nil
}

func (r rateRepo) IsHoliday(_ context.Context, hotelID uint64, date time.Time) (bool, error) {
    st, done := r.u.view()
    defer done()
    return st.holidays[holidayKey{hotelID, domain.FormatDate(date)}], nil
}

func (r rateRepo) UpsertGeneralRate(_ context.Context, rate *model.RoomRate) error {
    st, done := r.u.view()
    defer done()
    for id, existing := range st.rates {
        if existing.HotelID == rate.HotelID && existing.RoomTypeID == rate.RoomTypeID && existing.IsGeneral() {
            rate.ID = id
            st.rates[id] = *rate
            return nil
        }
    }
    rate.ID = st.id()
    st.rates[rate.ID] = *rate
    return nil
}

type reservationRepo struct{ u *uow }

func (r reservationRepo) Create(_ context.Context, res *model.Reservation) error {
    st, done := r.u.view()
    defer done()
    for _, other := range st.reservations {
        if other.ReferenceNumber == res.ReferenceNumber {
            return domain.ErrDuplicateKey
        }
    }
    res.ID = st.id()
    st.reservations[res.ID] = *res
    return nil
}

func (r reservationRepo) AddRooms(_ context.Context, rooms []model.ReservationRoom) error {
    st, done := r.u.view()
    defer done()
    for i := range rooms {
        rooms[i].ID = st.id()
        st.resRooms[rooms[i].ID] = rooms[i]
    }
    return nil
}

func (r reservationRepo) Get(_ context.Context, id uint64) (model.Reservation, error) {
    st, done := r.u.view()
    defer done()
    res, ok := st.reservations[id]
    if !ok {
        return model.Reservation{}, domain.ErrRecordNotFound
    }
    return res, nil
}

func (r reservationRepo) GetForUpdate(ctx context.Context, id uint64) (model.Reservation, error) {
    return r.Get(ctx, id)
}

func (r reservationRepo) ListRooms(_ context.Context, reservationID uint64) ([]model.ReservationRoom, error) {
    st, done := r.u.view()
    defer done()
    var out []model.ReservationRoom
    for _, rr := range st.resRooms {
        if rr.ReservationID != reservationID {
            continue
        }
        rr.RoomNumber = st.rooms[rr.RoomID].RoomNumber
        rr.RoomTypeName = st.roomTypes[rr.RoomTypeID].Name
        out = append(out, rr)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
    return out, nil
}

func (r reservationRepo) Update(_ context.Context, res *model.Reservation) error {
    st, done := r.u.view()
    defer done()
    if _, ok := st.reservations[res.ID]; !ok {
        return domain.ErrRecordNotFound
    }
    st.reservations[res.ID] = *res
    return nil
}

func (r reservationRepo) UpdateRoomAssignment(_ context.Context, reservationRoomID, roomID uint64) error {
    st, done := r.u.view()
    defer done()
    rr, ok := st.resRooms[reservationRoomID]
    if !ok {
        return domain.ErrRecordNotFound
    }
    rr.RoomID = roomID
    st.resRooms[reservationRoomID] = rr
    return nil
}

func (r reservationRepo) ReplaceSpecialRequests(_ context.Context, reservationID uint64, texts []string) error {
    st, done := r.u.view()
    defer done()
    out := make([]model.SpecialRequest, 0, len(texts))
    for _, t := range texts {
        out = append(out, model.SpecialRequest{ID: st.id(), ReservationID: reservationID, Text: t})
    }
    st.specials[reservationID] = out
    return nil
}

func (r reservationRepo) ListSpecialRequests(_ context.Context, reservationID uint64) ([]model.SpecialRequest, error) {
    st, done := r.u.view()
    defer done()
    return append([]model.SpecialRequest(nil), st.specials[reservationID]...), nil
}

type consumptionRepo struct{ u *uow }

func (r consumptionRepo) Add(_ context.Context, item *model.ConsumptionItem) error {
    st, done := r.u.view()
    defer done()
    item.ID = st.id()
    st.consumptions[item.ID] = *item
    return nil
}

func (r consumptionRepo) ListByReservation(_ context.Context, reservationID uint64) ([]model.ConsumptionItem, error) {
    st, done := r.u.view()
    defer done()
    var out []model.ConsumptionItem
    for _, c := range st.consumptions {
        if c.ReservationID == reservationID {
            out = append(out, c)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
    return out, nil
}

type invoiceRepo struct{ u *uow }

func (r invoiceRepo) Create(_ context.Context, inv *model.Invoice) error {
    st, done := r.u.view()
    defer done()
    for _, other := range st.invoices {
        if other.ReservationID == inv.ReservationID || other.ReferenceNumber == inv.ReferenceNumber {
            return domain.ErrDuplicateKey
        }
    }
    inv.ID = st.id()
    for i := range inv.Items {
        inv.Items[i].ID = st.id()
        inv.Items[i].InvoiceID = inv.ID
    }
    stored := *inv
    stored.Items = append([]model.InvoiceItem(nil), inv.Items...)
    st.invoices[inv.ID] = stored
    return nil
}

func (r invoiceRepo) Get(_ context.Context, id uint64) (model.Invoice, error) {
    st, done := r.u.view()
    defer done()
    inv, ok := st.invoices[id]
    if !ok {
        return model.Invoice{}, domain.ErrRecordNotFound
    }
    inv.Items = append([]model.InvoiceItem(nil), inv.Items...)
    return inv, nil
}

func (r invoiceRepo) GetByReservation(_ context.Context, reservationID uint64) (model.Invoice, error) {
    st, done := r.u.view()
    defer done()
    for _, inv := range st.invoices {
        if inv.ReservationID == reservationID {
            inv.Items = append([]model.InvoiceItem(nil), inv.Items...)
            return inv, nil
        }
    }
    return model.Invoice{}, domain.ErrRecordNotFound
}

func (r invoiceRepo) List(_ context.Context, f service.InvoiceFilter) ([]model.Invoice, int, error) {
    st, done := r.u.view()
    defer done()
    var all []model.Invoice
    for _, inv := range st.invoices {
        if f.ClientID != 0 && inv.ClientID != f.ClientID {
            continue
        }
        if f.Status != "" && inv.Status != f.Status {
            continue
        }
        issued := domain.TruncateDate(inv.IssuedAt)
        if f.DateFrom != nil && issued.Before(domain.TruncateDate(*f.DateFrom)) {
            continue
        }
        if f.DateTo != nil && issued.After(domain.TruncateDate(*f.DateTo)) {
            continue
        }
        inv.Items = nil
        all = append(all, inv)
    }
    sort.Slice(all, func(i, j int) bool {
        if !all[i].IssuedAt.Equal(all[j].IssuedAt) {
            return all[i].IssuedAt.After(all[j].IssuedAt)
        }
        return all[i].ID > all[j].ID
    })
    total := len(all)
    start := f.Offset()
    if start > total {
        start = total
    }
    end := total
    if f.PageSize > 0 && start+f.PageSize < total {
        end = start + f.PageSize
    }
    return all[start:end], total, nil
}

func (r invoiceRepo) UpdateStatus(_ context.Context, id uint64, from, to model.InvoiceStatus) error {
    st, done := r.u.view()
    defer done()
    inv, ok := st.invoices[id]
    if !ok || inv.Status != from {
        return domain.ErrRecordNotFound
    }
    inv.Status = to
    st.invoices[id] = inv
    return nil
}
