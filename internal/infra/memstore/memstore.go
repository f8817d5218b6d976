// Package memstore is an in-memory store.Database used by tests. Transactions
// are serialized and roll back by restoring a snapshot.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BruksfildServices01/salon-reserve/internal/domain/points"
	"github.com/BruksfildServices01/salon-reserve/internal/domain/reservation"
	"github.com/BruksfildServices01/salon-reserve/internal/models"
	"github.com/BruksfildServices01/salon-reserve/internal/store"
)

type state struct {
	nextID uint

	salons          map[uint]models.Salon
	scheduleConfigs map[uint]models.SalonScheduleConfig
	weeks           map[uint]models.WeekSchedule
	exceptions      map[uint]models.ScheduleException
	staff           map[uint]models.Staff
	staffConfigs    map[uint]models.StaffConfig
	exclusions      map[uint]models.MenuExclusionStaff
	menus           map[uint]models.Menu
	options         map[uint]models.SalonOption
	customers       map[uint]models.Customer
	customerPoints  map[uint]models.CustomerPoints
	reservations    map[uint]models.Reservation
	pointConfigs    map[uint]models.PointConfig
	pointExclusions map[uint]models.PointExclusionMenu
	tasks           map[uint]models.PointCreditTask
	auths           map[uint]models.PointRedemptionAuth
	transactions    map[uint]models.PointTransaction
}

func newState() *state {
	return &state{
		salons:          map[uint]models.Salon{},
		scheduleConfigs: map[uint]models.SalonScheduleConfig{},
		weeks:           map[uint]models.WeekSchedule{},
		exceptions:      map[uint]models.ScheduleException{},
		staff:           map[uint]models.Staff{},
		staffConfigs:    map[uint]models.StaffConfig{},
		exclusions:      map[uint]models.MenuExclusionStaff{},
		menus:           map[uint]models.Menu{},
		options:         map[uint]models.SalonOption{},
		customers:       map[uint]models.Customer{},
		customerPoints:  map[uint]models.CustomerPoints{},
		reservations:    map[uint]models.Reservation{},
		pointConfigs:    map[uint]models.PointConfig{},
		pointExclusions: map[uint]models.PointExclusionMenu{},
		tasks:           map[uint]models.PointCreditTask{},
		auths:           map[uint]models.PointRedemptionAuth{},
		transactions:    map[uint]models.PointTransaction{},
	}
}

func cloneMap[V any](m map[uint]V) map[uint]V {
	out := make(map[uint]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *state) clone() *state {
	return &state{
		nextID:          s.nextID,
		salons:          cloneMap(s.salons),
		scheduleConfigs: cloneMap(s.scheduleConfigs),
		weeks:           cloneMap(s.weeks),
		exceptions:      cloneMap(s.exceptions),
		staff:           cloneMap(s.staff),
		staffConfigs:    cloneMap(s.staffConfigs),
		exclusions:      cloneMap(s.exclusions),
		menus:           cloneMap(s.menus),
		options:         cloneMap(s.options),
		customers:       cloneMap(s.customers),
		customerPoints:  cloneMap(s.customerPoints),
		reservations:    cloneMap(s.reservations),
		pointConfigs:    cloneMap(s.pointConfigs),
		pointExclusions: cloneMap(s.pointExclusions),
		tasks:           cloneMap(s.tasks),
		auths:           cloneMap(s.auths),
		transactions:    cloneMap(s.transactions),
	}
}

// Store implements store.Database.
type Store struct {
	txMu   *sync.Mutex
	dataMu *sync.RWMutex
	st     **state
	faults *faults
}

type faults struct {
	mu  sync.Mutex
	ops map[string]error
}

func New() *Store {
	st := newState()
	return &Store{
		txMu:   &sync.Mutex{},
		dataMu: &sync.RWMutex{},
		st:     &st,
		faults: &faults{ops: map[string]error{}},
	}
}

// FailOn makes the named method return err until cleared with a nil err.
func (s *Store) FailOn(op string, err error) {
	s.faults.mu.Lock()
	defer s.faults.mu.Unlock()
	if err == nil {
		delete(s.faults.ops, op)
		return
	}
	s.faults.ops[op] = err
}

func (s *Store) fault(op string) error {
	s.faults.mu.Lock()
	defer s.faults.mu.Unlock()
	return s.faults.ops[op]
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.dataMu.RLock()
	snapshot := (*s.st).clone()
	s.dataMu.RUnlock()

	if err := fn(ctx, s); err != nil {
		s.dataMu.Lock()
		*s.st = snapshot
		s.dataMu.Unlock()
		return err
	}
	return ctx.Err()
}

func (s *Store) read(fn func(st *state)) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	fn(*s.st)
}

func (s *Store) write(fn func(st *state)) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	fn(*s.st)
}

func (st *state) id() uint {
	st.nextID++
	return st.nextID
}

func sameStaff(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func contains(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func occupies(status string) bool {
	return reservation.Status(status).Occupies()
}

func sortReservations(rs []models.Reservation) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].StartTime.Equal(rs[j].StartTime) {
			return rs[i].ID < rs[j].ID
		}
		return rs[i].StartTime.Before(rs[j].StartTime)
	})
}

// ======================================================
// Reservation side
// ======================================================

func (s *Store) GetSalon(ctx context.Context, salonID uint) (*models.Salon, error) {
	if err := s.fault("GetSalon"); err != nil {
		return nil, err
	}
	var out *models.Salon
	s.read(func(st *state) {
		if v, ok := st.salons[salonID]; ok && !v.IsArchive {
			out = &v
		}
	})
	if out == nil {
		return nil, reservation.ErrSalonNotFound
	}
	return out, nil
}

func (s *Store) GetScheduleConfig(ctx context.Context, salonID uint) (*models.SalonScheduleConfig, error) {
	out := &models.SalonScheduleConfig{SalonID: salonID}
	s.read(func(st *state) {
		if v, ok := st.scheduleConfigs[salonID]; ok && !v.IsArchive {
			out = &v
		}
	})
	return out, nil
}

func (s *Store) FindWeekSchedule(ctx context.Context, salonID uint, staffID *uint, dayOfWeek string) (*models.WeekSchedule, error) {
	var out *models.WeekSchedule
	s.read(func(st *state) {
		for _, w := range st.weeks {
			if w.SalonID == salonID && sameStaff(w.StaffID, staffID) && w.DayOfWeek == dayOfWeek && !w.IsArchive {
				w := w
				out = &w
				return
			}
		}
	})
	return out, nil
}

func (s *Store) ListWeekSchedules(ctx context.Context, salonID, staffID uint) ([]models.WeekSchedule, error) {
	out := []models.WeekSchedule{}
	s.read(func(st *state) {
		for _, w := range st.weeks {
			if w.SalonID == salonID && w.StaffID != nil && *w.StaffID == staffID && !w.IsArchive {
				out = append(out, w)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SaveWeekSchedules(ctx context.Context, rows []models.WeekSchedule) error {
	if err := s.fault("SaveWeekSchedules"); err != nil {
		return err
	}
	s.write(func(st *state) {
		for i := range rows {
			row := &rows[i]
			for id, w := range st.weeks {
				if w.SalonID == row.SalonID && sameStaff(w.StaffID, row.StaffID) && w.DayOfWeek == row.DayOfWeek {
					row.ID = id
					row.CreatedAt = w.CreatedAt
				}
			}
			if row.ID == 0 {
				row.ID = st.id()
				row.CreatedAt = time.Now()
			}
			row.UpdatedAt = time.Now()
			st.weeks[row.ID] = *row
		}
	})
	return nil
}

func (s *Store) ListScheduleExceptions(ctx context.Context, salonID uint, staffID *uint, date string) ([]models.ScheduleException, error) {
	out := []models.ScheduleException{}
	s.read(func(st *state) {
		for _, ex := range st.exceptions {
			if ex.SalonID == salonID && sameStaff(ex.StaffID, staffID) && ex.Date == date && !ex.IsArchive {
				out = append(out, ex)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateScheduleException(ctx context.Context, ex *models.ScheduleException) error {
	if err := s.fault("CreateScheduleException"); err != nil {
		return err
	}
	s.write(func(st *state) {
		ex.ID = st.id()
		ex.CreatedAt = time.Now()
		st.exceptions[ex.ID] = *ex
	})
	return nil
}

func (s *Store) GetStaff(ctx context.Context, salonID, staffID uint) (*models.Staff, error) {
	var out *models.Staff
	s.read(func(st *state) {
		if v, ok := st.staff[staffID]; ok && v.SalonID == salonID && !v.IsArchive {
			out = &v
		}
	})
	if out == nil {
		return nil, reservation.ErrStaffNotFound
	}
	return out, nil
}

func (s *Store) ListActiveStaff(ctx context.Context, salonID uint) ([]models.Staff, error) {
	out := []models.Staff{}
	s.read(func(st *state) {
		for _, v := range st.staff {
			if v.SalonID == salonID && v.IsActive && !v.IsArchive {
				out = append(out, v)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListStaffConfigs(ctx context.Context, salonID uint) ([]models.StaffConfig, error) {
	out := []models.StaffConfig{}
	s.read(func(st *state) {
		for _, v := range st.staffConfigs {
			if v.SalonID == salonID && !v.IsArchive {
				out = append(out, v)
			}
		}
	})
	return out, nil
}

func (s *Store) ListMenuExclusions(ctx context.Context, salonID uint, menuIDs []uint) ([]models.MenuExclusionStaff, error) {
	out := []models.MenuExclusionStaff{}
	s.read(func(st *state) {
		for _, v := range st.exclusions {
			if v.SalonID == salonID && contains(menuIDs, v.MenuID) && !v.IsArchive {
				out = append(out, v)
			}
		}
	})
	return out, nil
}

func (s *Store) ListMenus(ctx context.Context, salonID uint, ids []uint) ([]models.Menu, error) {
	out := []models.Menu{}
	s.read(func(st *state) {
		for _, v := range st.menus {
			if v.SalonID == salonID && contains(ids, v.ID) && v.IsActive && !v.IsArchive {
				out = append(out, v)
			}
		}
	})
	return out, nil
}

func (s *Store) ListOptions(ctx context.Context, salonID uint, ids []uint) ([]models.SalonOption, error) {
	out := []models.SalonOption{}
	s.read(func(st *state) {
		for _, v := range st.options {
			if v.SalonID == salonID && contains(ids, v.ID) && v.IsActive && !v.IsArchive {
				out = append(out, v)
			}
		}
	})
	return out, nil
}

func (s *Store) GetCustomer(ctx context.Context, salonID, customerID uint) (*models.Customer, error) {
	var out *models.Customer
	s.read(func(st *state) {
		if v, ok := st.customers[customerID]; ok && v.SalonID == salonID && !v.IsArchive {
			out = &v
		}
	})
	if out == nil {
		return nil, reservation.ErrCustomerNotFound
	}
	return out, nil
}

func (s *Store) ListStaffReservations(ctx context.Context, staffID uint, from, to time.Time) ([]models.Reservation, error) {
	out := []models.Reservation{}
	s.read(func(st *state) {
		for _, r := range st.reservations {
			if r.StaffID == staffID && !r.IsArchive && occupies(r.Status) &&
				r.StartTime.Before(to) && r.EndTime.After(from) {
				out = append(out, r)
			}
		}
	})
	sortReservations(out)
	return out, nil
}

func (s *Store) ListSalonReservations(ctx context.Context, salonID uint, from, to time.Time) ([]models.Reservation, error) {
	out := []models.Reservation{}
	s.read(func(st *state) {
		for _, r := range st.reservations {
			if r.SalonID == salonID && !r.IsArchive && occupies(r.Status) &&
				r.StartTime.Before(to) && r.EndTime.After(from) {
				out = append(out, r)
			}
		}
	})
	sortReservations(out)
	return out, nil
}

func (s *Store) ListStaffDay(ctx context.Context, salonID, staffID uint, from, to time.Time) ([]models.Reservation, error) {
	out := []models.Reservation{}
	s.read(func(st *state) {
		for _, r := range st.reservations {
			if r.SalonID == salonID && r.StaffID == staffID && !r.IsArchive &&
				!r.StartTime.Before(from) && r.StartTime.Before(to) {
				out = append(out, r)
			}
		}
	})
	sortReservations(out)
	return out, nil
}

// LockForBooking is a no-op: transactions are already serialized.
func (s *Store) LockForBooking(ctx context.Context, salonID, staffID uint) error {
	return s.fault("LockForBooking")
}

func (s *Store) CreateReservation(ctx context.Context, r *models.Reservation) error {
	if err := s.fault("CreateReservation"); err != nil {
		return err
	}
	s.write(func(st *state) {
		r.ID = st.id()
		r.CreatedAt = time.Now()
		r.UpdatedAt = r.CreatedAt
		st.reservations[r.ID] = *r
	})
	return nil
}

func (s *Store) GetReservation(ctx context.Context, salonID, reservationID uint) (*models.Reservation, error) {
	var out *models.Reservation
	s.read(func(st *state) {
		if v, ok := st.reservations[reservationID]; ok && v.SalonID == salonID && !v.IsArchive {
			out = &v
		}
	})
	if out == nil {
		return nil, reservation.ErrReservationNotFound
	}
	return out, nil
}

func (s *Store) GetReservationForUpdate(ctx context.Context, salonID, reservationID uint) (*models.Reservation, error) {
	return s.GetReservation(ctx, salonID, reservationID)
}

func (s *Store) UpdateReservation(ctx context.Context, r *models.Reservation) error {
	if err := s.fault("UpdateReservation"); err != nil {
		return err
	}
	s.write(func(st *state) {
		r.UpdatedAt = time.Now()
		st.reservations[r.ID] = *r
	})
	return nil
}

// ======================================================
// Ledger side
// ======================================================

func (s *Store) GetPointConfig(ctx context.Context, salonID uint) (*models.PointConfig, error) {
	var out *models.PointConfig
	s.read(func(st *state) {
		if v, ok := st.pointConfigs[salonID]; ok && !v.IsArchive {
			out = &v
		}
	})
	return out, nil
}

func (s *Store) ListPointExclusionMenuIDs(ctx context.Context, salonID uint) ([]uint, error) {
	out := []uint{}
	s.read(func(st *state) {
		for _, v := range st.pointExclusions {
			if v.SalonID == salonID && !v.IsArchive {
				out = append(out, v.MenuID)
			}
		}
	})
	return out, nil
}

func (s *Store) ListExpiringPointConfigs(ctx context.Context) ([]models.PointConfig, error) {
	out := []models.PointConfig{}
	s.read(func(st *state) {
		for _, v := range st.pointConfigs {
			if v.PointExpirationDays > 0 && !v.IsArchive {
				out = append(out, v)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].SalonID < out[j].SalonID })
	return out, nil
}

func (s *Store) GetCustomerPoints(ctx context.Context, salonID, customerID uint) (*models.CustomerPoints, error) {
	out := &models.CustomerPoints{SalonID: salonID, CustomerID: customerID}
	s.read(func(st *state) {
		for _, v := range st.customerPoints {
			if v.SalonID == salonID && v.CustomerID == customerID && !v.IsArchive {
				v := v
				out = &v
				return
			}
		}
	})
	return out, nil
}

func (s *Store) SaveCustomerPoints(ctx context.Context, cp *models.CustomerPoints) error {
	if err := s.fault("SaveCustomerPoints"); err != nil {
		return err
	}
	s.write(func(st *state) {
		if cp.ID == 0 {
			cp.ID = st.id()
			cp.CreatedAt = time.Now()
		}
		cp.UpdatedAt = time.Now()
		st.customerPoints[cp.ID] = *cp
	})
	return nil
}

func (s *Store) ListIdleBalances(ctx context.Context, salonID uint, idleSince time.Time) ([]models.CustomerPoints, error) {
	out := []models.CustomerPoints{}
	s.read(func(st *state) {
		for _, v := range st.customerPoints {
			if v.SalonID == salonID && v.TotalPoints > 0 && !v.IsArchive &&
				v.LastTransactionDate != nil && v.LastTransactionDate.Before(idleSince) {
				out = append(out, v)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) AppendTransaction(ctx context.Context, tx *models.PointTransaction) error {
	if err := s.fault("AppendTransaction"); err != nil {
		return err
	}
	s.write(func(st *state) {
		tx.ID = st.id()
		tx.CreatedAt = time.Now()
		st.transactions[tx.ID] = *tx
	})
	return nil
}

func (s *Store) ListReservationTransactions(ctx context.Context, reservationID uint) ([]models.PointTransaction, error) {
	out := []models.PointTransaction{}
	s.read(func(st *state) {
		for _, v := range st.transactions {
			if v.ReservationID != nil && *v.ReservationID == reservationID && !v.IsArchive {
				out = append(out, v)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateCreditTask(ctx context.Context, task *models.PointCreditTask) error {
	if err := s.fault("CreateCreditTask"); err != nil {
		return err
	}
	var err error
	s.write(func(st *state) {
		for _, v := range st.tasks {
			if v.ReservationID == task.ReservationID {
				err = points.ErrDuplicateTask
				return
			}
		}
		task.ID = st.id()
		task.CreatedAt = time.Now()
		st.tasks[task.ID] = *task
	})
	return err
}

func (s *Store) ListDueCreditTasks(ctx context.Context, now time.Time, afterID uint, limit int) ([]models.PointCreditTask, error) {
	if err := s.fault("ListDueCreditTasks"); err != nil {
		return nil, err
	}
	out := []models.PointCreditTask{}
	s.read(func(st *state) {
		for _, v := range st.tasks {
			if !v.ScheduledFor.After(now) && v.ID > afterID {
				out = append(out, v)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) LockCreditTask(ctx context.Context, id uint) (*models.PointCreditTask, error) {
	var out *models.PointCreditTask
	s.read(func(st *state) {
		if v, ok := st.tasks[id]; ok {
			out = &v
		}
	})
	return out, nil
}

func (s *Store) DeleteCreditTask(ctx context.Context, id uint) error {
	if err := s.fault("DeleteCreditTask"); err != nil {
		return err
	}
	s.write(func(st *state) { delete(st.tasks, id) })
	return nil
}

func (s *Store) DeleteCreditTasksForReservation(ctx context.Context, reservationID uint) error {
	if err := s.fault("DeleteCreditTasksForReservation"); err != nil {
		return err
	}
	s.write(func(st *state) {
		for id, v := range st.tasks {
			if v.ReservationID == reservationID {
				delete(st.tasks, id)
			}
		}
	})
	return nil
}

func (s *Store) CreateRedemptionAuth(ctx context.Context, auth *models.PointRedemptionAuth) error {
	if err := s.fault("CreateRedemptionAuth"); err != nil {
		return err
	}
	s.write(func(st *state) {
		auth.ID = st.id()
		auth.CreatedAt = time.Now()
		auth.UpdatedAt = auth.CreatedAt
		st.auths[auth.ID] = *auth
	})
	return nil
}

func (s *Store) FindRedemptionAuth(ctx context.Context, reservationID uint) (*models.PointRedemptionAuth, error) {
	var out *models.PointRedemptionAuth
	s.read(func(st *state) {
		for _, v := range st.auths {
			if v.ReservationID == reservationID {
				v := v
				out = &v
				return
			}
		}
	})
	return out, nil
}

func (s *Store) FindRedemptionAuthByDigest(ctx context.Context, salonID uint, digest string) (*models.PointRedemptionAuth, error) {
	var out *models.PointRedemptionAuth
	s.read(func(st *state) {
		for _, v := range st.auths {
			if v.SalonID == salonID && v.CodeDigest == digest {
				if out == nil || v.ExpiresAt.After(out.ExpiresAt) {
					v := v
					out = &v
				}
			}
		}
	})
	return out, nil
}

func (s *Store) ActiveDigestExists(ctx context.Context, salonID uint, digest string, now time.Time) (bool, error) {
	found := false
	s.read(func(st *state) {
		for _, v := range st.auths {
			if v.SalonID == salonID && v.CodeDigest == digest && v.ExpiresAt.After(now) {
				found = true
				return
			}
		}
	})
	return found, nil
}

func (s *Store) SumHeldPoints(ctx context.Context, salonID, customerID, exceptReservationID uint, now time.Time) (int, error) {
	total := 0
	s.read(func(st *state) {
		for _, v := range st.auths {
			if v.SalonID == salonID && v.CustomerID == customerID &&
				v.ReservationID != exceptReservationID && v.ExpiresAt.After(now) {
				total += v.Points
			}
		}
	})
	return total, nil
}

func (s *Store) UpdateRedemptionAuth(ctx context.Context, auth *models.PointRedemptionAuth) error {
	if err := s.fault("UpdateRedemptionAuth"); err != nil {
		return err
	}
	s.write(func(st *state) {
		auth.UpdatedAt = time.Now()
		st.auths[auth.ID] = *auth
	})
	return nil
}

func (s *Store) DeleteRedemptionAuth(ctx context.Context, id uint) error {
	if err := s.fault("DeleteRedemptionAuth"); err != nil {
		return err
	}
	s.write(func(st *state) { delete(st.auths, id) })
	return nil
}

func (s *Store) DeleteRedemptionAuthsForReservation(ctx context.Context, reservationID uint) error {
	if err := s.fault("DeleteRedemptionAuthsForReservation"); err != nil {
		return err
	}
	s.write(func(st *state) {
		for id, v := range st.auths {
			if v.ReservationID == reservationID {
				delete(st.auths, id)
			}
		}
	})
	return nil
}

var _ store.Database = (*Store)(nil)
