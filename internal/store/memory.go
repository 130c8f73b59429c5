package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"reservation-agent/internal/fault"
	"reservation-agent/internal/model"
)

// Memory is the fallback store used when no DATABASE_URL is configured,
// and the store the unit tests run against. One coarse mutex is enough:
// each call session issues at most one tool call at a time, so contention
// is only ever between sessions.
type Memory struct {
	mu           sync.Mutex
	users        map[string]*model.User
	appointments map[string]*model.Appointment
	summaries    map[string]*model.Summary
	now          func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		users:        make(map[string]*model.User),
		appointments: make(map[string]*model.Appointment),
		summaries:    make(map[string]*model.Summary),
		now:          time.Now,
	}
}

// SetClock overrides the timestamp source. Test hook.
func (m *Memory) SetClock(now func() time.Time) { m.now = now }

func (m *Memory) Ping(ctx context.Context) error { return nil }
func (m *Memory) Close()                         {}

func (m *Memory) UserByContact(ctx context.Context, contactNumber string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ContactNumber == contactNumber {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fault.ErrNotFound
}

func (m *Memory) CreateUser(ctx context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.CreatedAt = m.now()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *Memory) UpdateUserName(ctx context.Context, id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return fault.ErrNotFound
	}
	u.Name = name
	return nil
}

func (m *Memory) overlapLocked(userID string, start, end time.Time, excludeID string) bool {
	for _, a := range m.appointments {
		if a.UserID != userID || a.Status != model.StatusBooked || a.ID == excludeID {
			continue
		}
		if a.StartTime.Before(end) && a.EndTime.After(start) {
			return true
		}
	}
	return false
}

func (m *Memory) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.overlapLocked(a.UserID, a.StartTime, a.EndTime, "") {
		return &fault.ConflictError{Requested: a.StartTime}
	}
	a.CreatedAt = m.now()
	cp := *a
	m.appointments[a.ID] = &cp
	return nil
}

func (m *Memory) HasOverlap(ctx context.Context, userID string, start, end time.Time, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overlapLocked(userID, start, end, excludeID), nil
}

func (m *Memory) AppointmentsByUser(ctx context.Context, userID string) ([]model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Appointment
	for _, a := range m.appointments {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (m *Memory) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return nil, fault.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *Memory) CancelAppointment(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return fault.ErrNotFound
	}
	if a.Status != model.StatusBooked {
		return fault.ErrInvalidState
	}
	a.Status = model.StatusCancelled
	return nil
}

func (m *Memory) RescheduleAppointment(ctx context.Context, id string, start, end time.Time, details string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return fault.ErrNotFound
	}
	if m.overlapLocked(a.UserID, start, end, id) {
		return &fault.ConflictError{Requested: start}
	}
	a.StartTime = start
	a.EndTime = end
	a.Details = details
	return nil
}

func (m *Memory) UpdateDetails(ctx context.Context, id, details string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return fault.ErrNotFound
	}
	a.Details = details
	return nil
}

func (m *Memory) CompletePast(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, a := range m.appointments {
		if a.Status == model.StatusBooked && a.EndTime.Before(before) {
			a.Status = model.StatusCompleted
			n++
		}
	}
	return n, nil
}

func (m *Memory) CreateSummary(ctx context.Context, sum *model.Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum.CreatedAt = m.now()
	if sum.Bookings == nil {
		sum.Bookings = []model.Appointment{}
	}
	cp := *sum
	m.summaries[sum.ID] = &cp
	return nil
}

func (m *Memory) ListSummaries(ctx context.Context) ([]model.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Summary
	for _, s := range m.summaries {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
