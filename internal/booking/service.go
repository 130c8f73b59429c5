// Package booking implements the reservation operations behind the
// voice agent's tools: identify, book, retrieve, cancel, modify and the
// end-of-call summary write.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"reservation-agent/internal/events"
	"reservation-agent/internal/fault"
	"reservation-agent/internal/model"
	"reservation-agent/internal/phone"
	"reservation-agent/internal/slots"
	"reservation-agent/internal/store"
)

const defaultDetails = "General Reservation"

type Service struct {
	store store.Store
	cal   *slots.Calendar
	pub   *events.Publisher
	log   *zap.Logger
}

func New(st store.Store, cal *slots.Calendar, pub *events.Publisher, log *zap.Logger) *Service {
	if cal == nil {
		cal = &slots.Calendar{}
	}
	return &Service{store: st, cal: cal, pub: pub, log: log}
}

// Identify looks up a caller by normalized contact number, creating the
// user on first contact. A name supplied on a later call replaces the
// stored one. Users are never deleted.
func (s *Service) Identify(ctx context.Context, contactNumber, name string) (*model.User, error) {
	normalized, err := phone.Normalize(contactNumber)
	if err != nil {
		return nil, err
	}

	u, err := s.store.UserByContact(ctx, normalized)
	switch {
	case err == nil:
		if name != "" && name != u.Name {
			if err := s.store.UpdateUserName(ctx, u.ID, name); err != nil {
				return nil, fault.Unavailable(err)
			}
			u.Name = name
		}
		return u, nil
	case errors.Is(err, fault.ErrNotFound):
		if name == "" {
			name = "Unknown"
		}
		u = &model.User{
			ID:            uuid.New().String(),
			ContactNumber: normalized,
			Name:          name,
		}
		if err := s.store.CreateUser(ctx, u); err != nil {
			return nil, fault.Unavailable(err)
		}
		s.log.Info("user created",
			zap.String("user_id", u.ID), zap.String("contact", normalized))
		return u, nil
	default:
		return nil, fault.Unavailable(err)
	}
}

// Slots returns the candidate start-time grid for today and tomorrow.
func (s *Service) Slots() []model.Slot {
	return s.cal.Candidates()
}

// Now exposes the service clock so callers present only future slots.
func (s *Service) Now() time.Time {
	return s.cal.Time()
}

// Book validates the requested start time and inserts the appointment.
// When the caller already has a booking overlapping the slot, no row is
// written: the returned *fault.ConflictError carries the next free slot
// and the caller must re-invoke with an accepted time.
func (s *Service) Book(ctx context.Context, userID string, start time.Time, numPeople int, details string) (*model.Appointment, error) {
	if userID == "" {
		return nil, fault.ErrNotIdentified
	}
	if numPeople < 1 {
		return nil, fault.Validationf("party size must be at least 1")
	}
	if err := s.validateStart(start); err != nil {
		return nil, err
	}

	end := start.Add(model.AppointmentDuration)
	if busy, err := s.store.HasOverlap(ctx, userID, start, end, ""); err != nil {
		return nil, fault.Unavailable(err)
	} else if busy {
		return nil, s.conflict(ctx, userID, start, "")
	}

	a := &model.Appointment{
		ID:        uuid.New().String(),
		UserID:    userID,
		StartTime: start,
		EndTime:   end,
		Status:    model.StatusBooked,
		Details:   formatDetails(numPeople, details),
	}
	if err := s.store.CreateAppointment(ctx, a); err != nil {
		var ce *fault.ConflictError
		if errors.As(err, &ce) {
			// raced with a concurrent session
			return nil, s.conflict(ctx, userID, start, "")
		}
		return nil, fault.Unavailable(err)
	}

	s.log.Info("appointment booked",
		zap.String("appointment_id", a.ID),
		zap.String("user_id", userID),
		zap.Time("start", start))
	s.pub.Publish(ctx, events.KeyBooked, a)
	return a, nil
}

// Retrieve returns every appointment of the user, ordered by start time.
func (s *Service) Retrieve(ctx context.Context, userID string) ([]model.Appointment, error) {
	if userID == "" {
		return nil, fault.ErrNotIdentified
	}
	apts, err := s.store.AppointmentsByUser(ctx, userID)
	if err != nil {
		return nil, fault.Unavailable(err)
	}
	return apts, nil
}

// Cancel moves a booked appointment to cancelled. Cancelled and completed
// are terminal states.
func (s *Service) Cancel(ctx context.Context, id string) error {
	if err := s.store.CancelAppointment(ctx, id); err != nil {
		if errors.Is(err, fault.ErrNotFound) || errors.Is(err, fault.ErrInvalidState) {
			return err
		}
		return fault.Unavailable(err)
	}
	s.log.Info("appointment cancelled", zap.String("appointment_id", id))
	s.pub.Publish(ctx, events.KeyCancelled, map[string]string{"id": id})
	return nil
}

// Modify updates the supplied fields of an appointment in place. At least
// one field is required. A new start time goes through the same future
// and conflict checks as Book, excluding the appointment itself.
func (s *Service) Modify(ctx context.Context, userID, id string, newStart *time.Time, newPeople *int, newDetails *string) (*model.Appointment, error) {
	if newStart == nil && newPeople == nil && newDetails == nil {
		return nil, fault.Validationf("nothing to change: supply a new time, party size or details")
	}
	if userID == "" {
		return nil, fault.ErrNotIdentified
	}

	a, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, fault.ErrNotFound) {
			return nil, fault.ErrNotFound
		}
		return nil, fault.Unavailable(err)
	}
	// appointments of other callers are reported as missing
	if a.UserID != userID {
		return nil, fault.ErrNotFound
	}
	if a.Status != model.StatusBooked {
		return nil, fault.ErrInvalidState
	}

	start := a.StartTime
	if newStart != nil {
		if err := s.validateStart(*newStart); err != nil {
			return nil, err
		}
		start = *newStart
	}

	people, rest := parseDetails(a.Details)
	if newPeople != nil {
		if *newPeople < 1 {
			return nil, fault.Validationf("party size must be at least 1")
		}
		people = *newPeople
	}
	if newDetails != nil {
		rest = *newDetails
	}

	end := start.Add(model.AppointmentDuration)
	details := formatDetails(people, rest)
	if err := s.store.RescheduleAppointment(ctx, id, start, end, details); err != nil {
		var ce *fault.ConflictError
		if errors.As(err, &ce) {
			return nil, s.conflict(ctx, userID, start, id)
		}
		if errors.Is(err, fault.ErrNotFound) {
			return nil, fault.ErrNotFound
		}
		return nil, fault.Unavailable(err)
	}

	a.StartTime = start
	a.EndTime = end
	a.Details = details
	s.log.Info("appointment modified",
		zap.String("appointment_id", id), zap.Time("start", start))
	s.pub.Publish(ctx, events.KeyModified, a)
	return a, nil
}

// UpdateDetails overwrites the free-text details of an appointment.
// Status and times are untouched.
func (s *Service) UpdateDetails(ctx context.Context, id, details string) error {
	if strings.TrimSpace(details) == "" {
		return fault.Validationf("details must not be empty")
	}
	if err := s.store.UpdateDetails(ctx, id, details); err != nil {
		if errors.Is(err, fault.ErrNotFound) {
			return fault.ErrNotFound
		}
		return fault.Unavailable(err)
	}
	s.pub.Publish(ctx, events.KeyModified, map[string]string{"id": id, "details": details})
	return nil
}

// EndConversation persists the closing record of a call: the summary text
// under the caller-supplied id, plus a snapshot of the user's bookings at
// this moment. userID is nil when the call ended before identification.
func (s *Service) EndConversation(ctx context.Context, summaryID string, userID *string, content, timestamp string) (*model.Summary, error) {
	if summaryID == "" {
		return nil, fault.Validationf("summary id required")
	}

	snapshot := []model.Appointment{}
	if userID != nil && *userID != "" {
		apts, err := s.Retrieve(ctx, *userID)
		if err != nil {
			return nil, err
		}
		snapshot = apts
	}

	sum := &model.Summary{
		ID:        summaryID,
		UserID:    userID,
		Content:   content,
		Bookings:  snapshot,
		Timestamp: timestamp,
	}
	if err := s.store.CreateSummary(ctx, sum); err != nil {
		return nil, fault.Unavailable(err)
	}
	s.log.Info("conversation summary saved", zap.String("summary_id", summaryID))
	s.pub.Publish(ctx, events.KeySummary, sum)
	return sum, nil
}

// CompletePast is the operator-facing sweep that closes out elapsed
// bookings. No tool reaches it.
func (s *Service) CompletePast(ctx context.Context) (int64, error) {
	return s.store.CompletePast(ctx, s.cal.Time())
}

func (s *Service) validateStart(start time.Time) error {
	if !start.After(s.cal.Time()) {
		return fault.Validationf("cannot book a past time")
	}
	if !slots.WithinHours(start) {
		return fault.Validationf("outside opening hours (10:00 to 22:00)")
	}
	return nil
}

// conflict builds the ConflictError for a taken slot, searching for the
// next slot after `start` that is free for this user. excludeID keeps a
// modified appointment from conflicting with itself.
func (s *Service) conflict(ctx context.Context, userID string, start time.Time, excludeID string) error {
	taken := func(ctx context.Context, t time.Time) (bool, error) {
		return s.store.HasOverlap(ctx, userID, t, t.Add(model.AppointmentDuration), excludeID)
	}
	next, ok, err := s.cal.NextAvailable(ctx, start, taken)
	if err != nil {
		s.log.Warn("next-slot search failed", zap.Error(err))
		return &fault.ConflictError{Requested: start}
	}
	if !ok {
		return &fault.ConflictError{Requested: start}
	}
	return &fault.ConflictError{Requested: start, Suggestion: &next}
}

func formatDetails(people int, rest string) string {
	if strings.TrimSpace(rest) == "" {
		rest = defaultDetails
	}
	return fmt.Sprintf("Guests: %d. %s", people, rest)
}

// parseDetails recovers the party size folded into the details text.
// Details written by other paths fall back to a party of 2.
func parseDetails(details string) (people int, rest string) {
	people = 2
	rest = details
	var n int
	if _, err := fmt.Sscanf(details, "Guests: %d.", &n); err == nil && n > 0 {
		people = n
		if i := strings.Index(details, ". "); i >= 0 {
			rest = details[i+2:]
		} else {
			rest = ""
		}
	}
	return people, rest
}
