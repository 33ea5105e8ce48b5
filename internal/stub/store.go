package stub

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"meterbill-dashboard/internal/domain"
)

// userRecord pairs the public user with its bcrypt password hash.
type userRecord struct {
	domain.User
	passwordHash []byte
}

// readingRecord keeps the entity references the public projection drops.
type readingRecord struct {
	domain.MeterReading
	meterID      string
	technicianID string
}

// billRecord keeps the entity references the public projection drops.
type billRecord struct {
	domain.Bill
	meterID    string
	landlordID string
	readingID  string
}

// store is the in-memory state behind the reference backend. All access
// goes through the mutex; the handlers hold it only long enough to copy
// what they respond with.
type store struct {
	mu sync.Mutex

	users    map[string]*userRecord
	byPhone  map[string]string
	meters   map[string]*domain.Meter
	readings []*readingRecord
	bills    []*billRecord

	kwhRate    float64
	billSerial int
}

func newStore(defaultRate float64) *store {
	return &store{
		users:   make(map[string]*userRecord),
		byPhone: make(map[string]string),
		meters:  make(map[string]*domain.Meter),
		kwhRate: defaultRate,
	}
}

func (st *store) addUser(phone, name string, role domain.Role, hash []byte, now time.Time) (*domain.User, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, exists := st.byPhone[phone]; exists {
		return nil, fmt.Errorf("user with phone number %s already exists", phone)
	}
	rec := &userRecord{
		User: domain.User{
			ID:          uuid.NewString(),
			PhoneNumber: phone,
			Role:        role,
			Name:        name,
			CreatedAt:   now,
		},
		passwordHash: hash,
	}
	st.users[rec.ID] = rec
	st.byPhone[phone] = rec.ID
	user := rec.User
	return &user, nil
}

func (st *store) userByPhone(phone string) *userRecord {
	st.mu.Lock()
	defer st.mu.Unlock()
	id, ok := st.byPhone[phone]
	if !ok {
		return nil
	}
	rec := *st.users[id]
	return &rec
}

func (st *store) userByID(id string) *userRecord {
	st.mu.Lock()
	defer st.mu.Unlock()
	rec, ok := st.users[id]
	if !ok {
		return nil
	}
	copied := *rec
	return &copied
}

func (st *store) listUsers() []domain.User {
	st.mu.Lock()
	defer st.mu.Unlock()
	users := make([]domain.User, 0, len(st.users))
	for _, rec := range st.users {
		users = append(users, rec.User)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users
}

func (st *store) updateUser(id, name string, role domain.Role) (*domain.User, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	rec, ok := st.users[id]
	if !ok {
		return nil, false
	}
	if name != "" {
		rec.Name = name
	}
	if role != "" {
		rec.Role = role
	}
	user := rec.User
	return &user, true
}

func (st *store) deleteUser(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	rec, ok := st.users[id]
	if !ok {
		return false
	}
	delete(st.byPhone, rec.PhoneNumber)
	delete(st.users, id)
	// Cascade: meters owned by the user and their dependent records go too.
	for meterID, meter := range st.meters {
		if meter.Landlord.ID == id {
			delete(st.meters, meterID)
		}
	}
	return true
}

func (st *store) setPassword(id string, hash []byte) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	rec, ok := st.users[id]
	if !ok {
		return false
	}
	rec.passwordHash = hash
	return true
}

func (st *store) addMeter(meter *domain.Meter) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, existing := range st.meters {
		if existing.MeterNumber == meter.MeterNumber {
			return fmt.Errorf("meter number %s already exists", meter.MeterNumber)
		}
	}
	st.meters[meter.ID] = meter
	return nil
}

func (st *store) meterByID(id string) *domain.Meter {
	st.mu.Lock()
	defer st.mu.Unlock()
	meter, ok := st.meters[id]
	if !ok {
		return nil
	}
	copied := *meter
	return &copied
}

func (st *store) listMeters(landlordID string) []domain.Meter {
	st.mu.Lock()
	defer st.mu.Unlock()
	meters := make([]domain.Meter, 0, len(st.meters))
	for _, meter := range st.meters {
		if landlordID != "" && meter.Landlord.ID != landlordID {
			continue
		}
		copied := *meter
		copied.Counts = &domain.MeterCounts{}
		for _, r := range st.readings {
			if r.meterID == meter.ID {
				copied.Counts.Readings++
			}
		}
		for _, b := range st.bills {
			if b.meterID == meter.ID {
				copied.Counts.Bills++
			}
		}
		meters = append(meters, copied)
	}
	sort.Slice(meters, func(i, j int) bool { return meters[i].MeterNumber < meters[j].MeterNumber })
	return meters
}

// lastReading returns the most recent reading for the meter, nil if none.
func (st *store) lastReading(meterID string) *readingRecord {
	st.mu.Lock()
	defer st.mu.Unlock()
	var last *readingRecord
	for _, r := range st.readings {
		if r.meterID != meterID {
			continue
		}
		if last == nil || r.ReadingDate.After(last.ReadingDate) {
			last = r
		}
	}
	if last == nil {
		return nil
	}
	copied := *last
	return &copied
}

func (st *store) addReading(rec *readingRecord) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.readings = append(st.readings, rec)
}

func (st *store) listReadings(meterID string) []domain.MeterReading {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]domain.MeterReading, 0, len(st.readings))
	for _, r := range st.readings {
		if meterID != "" && r.meterID != meterID {
			continue
		}
		out = append(out, r.MeterReading)
	}
	// Newest first, matching the backend's listing order.
	sort.Slice(out, func(i, j int) bool { return out[i].ReadingDate.After(out[j].ReadingDate) })
	return out
}

func (st *store) readingByID(id string) *domain.MeterReading {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, r := range st.readings {
		if r.MeterReading.ID == id {
			copied := r.MeterReading
			return &copied
		}
	}
	return nil
}

func (st *store) nextBillNumber() string {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.billSerial++
	return fmt.Sprintf("BILL-%06d", st.billSerial)
}

func (st *store) addBill(rec *billRecord) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.bills = append(st.bills, rec)
}

func (st *store) listBills(status domain.BillStatus, landlordID string) []domain.Bill {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]domain.Bill, 0, len(st.bills))
	for _, b := range st.bills {
		if status != "" && b.Status != status {
			continue
		}
		if landlordID != "" && b.landlordID != landlordID {
			continue
		}
		out = append(out, b.Bill)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BillDate.After(out[j].BillDate) })
	return out
}

func (st *store) billByID(id string) *domain.Bill {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, b := range st.bills {
		if b.Bill.ID == id {
			copied := b.Bill
			return &copied
		}
	}
	return nil
}

// payBill transitions a bill to PAID. Returns the updated bill, or an
// error string when the transition is not allowed.
func (st *store) payBill(id string, paidAt time.Time) (*domain.Bill, string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, b := range st.bills {
		if b.Bill.ID != id {
			continue
		}
		if !b.Status.CanTransitionTo(domain.BillStatusPaid) {
			return nil, fmt.Sprintf("bill %s is already %s", b.BillNumber, strings.ToLower(string(b.Status)))
		}
		b.Status = domain.BillStatusPaid
		b.PaidDate = &paidAt
		copied := b.Bill
		return &copied, ""
	}
	return nil, ""
}

// markOverdue reclassifies past-due PENDING bills, returning the count.
func (st *store) markOverdue(now time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	updated := 0
	for _, b := range st.bills {
		if domain.IsOverdueAt(b.DueDate, b.Status, now) {
			b.Status = domain.BillStatusOverdue
			updated++
		}
	}
	return updated
}

// summary computes the billing aggregate, optionally scoped to one
// landlord.
func (st *store) summary(landlordID string) domain.BillingSummary {
	st.mu.Lock()
	defer st.mu.Unlock()
	var s domain.BillingSummary
	for _, b := range st.bills {
		if landlordID != "" && b.landlordID != landlordID {
			continue
		}
		s.TotalBills++
		s.TotalAmount += b.TotalAmount
		switch b.Status {
		case domain.BillStatusPaid:
			s.PaidBills++
			s.PaidAmount += b.TotalAmount
		case domain.BillStatusPending:
			s.PendingBills++
			s.PendingAmount += b.TotalAmount
		case domain.BillStatusOverdue:
			s.OverdueBills++
			s.PendingAmount += b.TotalAmount
		}
	}
	return s
}

func (st *store) getKwhRate() float64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.kwhRate
}

func (st *store) setKwhRate(rate float64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.kwhRate = rate
}
