package memstore

import (
	"sort"
	"time"

	"github.com/BruksfildServices01/salon-reserve/internal/models"
)

// Seed helpers assign ids the same way the write methods do and return the
// stored copy.

func (s *Store) AddSalon(name, tz string) models.Salon {
	var out models.Salon
	s.write(func(st *state) {
		out = models.Salon{ID: st.id(), Name: name, Timezone: tz, CreatedAt: time.Now()}
		st.salons[out.ID] = out
	})
	return out
}

func (s *Store) SetScheduleConfig(cfg models.SalonScheduleConfig) {
	s.write(func(st *state) {
		if cfg.ID == 0 {
			cfg.ID = st.id()
		}
		st.scheduleConfigs[cfg.SalonID] = cfg
	})
}

// AddWeekSchedule adds a weekly row. A nil staffID makes it the salon row.
func (s *Store) AddWeekSchedule(salonID uint, staffID *uint, day string, open bool, start, end string) models.WeekSchedule {
	var out models.WeekSchedule
	s.write(func(st *state) {
		out = models.WeekSchedule{
			ID:        st.id(),
			SalonID:   salonID,
			StaffID:   staffID,
			DayOfWeek: day,
			IsOpen:    open,
			StartHour: start,
			EndHour:   end,
		}
		st.weeks[out.ID] = out
	})
	return out
}

func (s *Store) AddException(ex models.ScheduleException) models.ScheduleException {
	s.write(func(st *state) {
		ex.ID = st.id()
		st.exceptions[ex.ID] = ex
	})
	return ex
}

// AddStaff adds an active staff member with its config row.
func (s *Store) AddStaff(salonID uint, name string, priority, extraCharge int) models.Staff {
	var out models.Staff
	s.write(func(st *state) {
		out = models.Staff{ID: st.id(), SalonID: salonID, Name: name, IsActive: true}
		st.staff[out.ID] = out
		cfgID := st.id()
		st.staffConfigs[cfgID] = models.StaffConfig{
			ID:          cfgID,
			StaffID:     out.ID,
			SalonID:     salonID,
			Priority:    priority,
			ExtraCharge: extraCharge,
		}
	})
	return out
}

func (s *Store) AddExclusion(salonID, menuID, staffID uint) {
	s.write(func(st *state) {
		id := st.id()
		st.exclusions[id] = models.MenuExclusionStaff{ID: id, SalonID: salonID, MenuID: menuID, StaffID: staffID}
	})
}

func (s *Store) AddMenu(m models.Menu) models.Menu {
	s.write(func(st *state) {
		m.ID = st.id()
		m.IsActive = true
		st.menus[m.ID] = m
	})
	return m
}

func (s *Store) AddOption(o models.SalonOption) models.SalonOption {
	s.write(func(st *state) {
		o.ID = st.id()
		o.IsActive = true
		st.options[o.ID] = o
	})
	return o
}

func (s *Store) AddCustomer(salonID uint, name, phone string) models.Customer {
	var out models.Customer
	s.write(func(st *state) {
		out = models.Customer{ID: st.id(), SalonID: salonID, Name: name, Phone: phone}
		st.customers[out.ID] = out
	})
	return out
}

// SetPoints records a balance and an "adjusted" entry so the cache and the
// ledger agree.
func (s *Store) SetPoints(salonID, customerID uint, total int, last time.Time) {
	s.write(func(st *state) {
		cp := models.CustomerPoints{
			ID:                  st.id(),
			SalonID:             salonID,
			CustomerID:          customerID,
			TotalPoints:         total,
			LastTransactionDate: &last,
		}
		for id, v := range st.customerPoints {
			if v.SalonID == salonID && v.CustomerID == customerID {
				delete(st.customerPoints, id)
			}
		}
		st.customerPoints[cp.ID] = cp

		txID := st.id()
		st.transactions[txID] = models.PointTransaction{
			ID:              txID,
			SalonID:         salonID,
			CustomerID:      customerID,
			Points:          total,
			TransactionType: models.TransactionAdjusted,
			TransactionDate: last,
		}
	})
}

func (s *Store) SetPointConfig(cfg models.PointConfig) models.PointConfig {
	s.write(func(st *state) {
		if cfg.ID == 0 {
			cfg.ID = st.id()
		}
		st.pointConfigs[cfg.SalonID] = cfg
	})
	return cfg
}

func (s *Store) AddPointExclusion(salonID, menuID uint) {
	s.write(func(st *state) {
		id := st.id()
		var cfgID uint
		if cfg, ok := st.pointConfigs[salonID]; ok {
			cfgID = cfg.ID
		}
		st.pointExclusions[id] = models.PointExclusionMenu{ID: id, SalonID: salonID, PointConfigID: cfgID, MenuID: menuID}
	})
}

func (s *Store) AddReservation(r models.Reservation) models.Reservation {
	s.write(func(st *state) {
		r.ID = st.id()
		st.reservations[r.ID] = r
	})
	return r
}

func (s *Store) AddCreditTask(t models.PointCreditTask) models.PointCreditTask {
	s.write(func(st *state) {
		t.ID = st.id()
		st.tasks[t.ID] = t
	})
	return t
}

// ======================================================
// Inspectors
// ======================================================

func (s *Store) Transactions(salonID, customerID uint) []models.PointTransaction {
	out := []models.PointTransaction{}
	s.read(func(st *state) {
		for _, v := range st.transactions {
			if v.SalonID == salonID && v.CustomerID == customerID {
				out = append(out, v)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LedgerSum adds up the live ledger entries of one customer.
func (s *Store) LedgerSum(salonID, customerID uint) int {
	total := 0
	s.read(func(st *state) {
		for _, v := range st.transactions {
			if v.SalonID == salonID && v.CustomerID == customerID && !v.IsArchive {
				total += v.Points
			}
		}
	})
	return total
}

func (s *Store) CreditTasks() []models.PointCreditTask {
	out := []models.PointCreditTask{}
	s.read(func(st *state) {
		for _, v := range st.tasks {
			out = append(out, v)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) RedemptionAuths() []models.PointRedemptionAuth {
	out := []models.PointRedemptionAuth{}
	s.read(func(st *state) {
		for _, v := range st.auths {
			out = append(out, v)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) Reservation(id uint) (models.Reservation, bool) {
	var out models.Reservation
	var ok bool
	s.read(func(st *state) { out, ok = st.reservations[id] })
	return out, ok
}

func (s *Store) Balance(salonID, customerID uint) int {
	total := 0
	s.read(func(st *state) {
		for _, v := range st.customerPoints {
			if v.SalonID == salonID && v.CustomerID == customerID {
				total = v.TotalPoints
			}
		}
	})
	return total
}

func (s *Store) Reservations() []models.Reservation {
	out := []models.Reservation{}
	s.read(func(st *state) {
		for _, v := range st.reservations {
			out = append(out, v)
		}
	})
	sortReservations(out)
	return out
}
