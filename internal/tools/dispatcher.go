package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"reservation-agent/internal/booking"
	"reservation-agent/internal/fault"
	"reservation-agent/internal/model"
)

// Dispatcher executes tool calls on behalf of the LLM turn loop. It only
// unmarshals arguments and turns service results (or faults) into text
// the model can relay; all reservation logic lives in the booking
// service, all per-call state in the Session.
type Dispatcher struct {
	svc *booking.Service
	log *zap.Logger
}

func NewDispatcher(svc *booking.Service, log *zap.Logger) *Dispatcher {
	return &Dispatcher{svc: svc, log: log}
}

// Dispatch runs the named tool with raw JSON arguments and returns the
// text handed back to the model. Errors are never propagated: every
// failure becomes an explanation the model can speak.
func (d *Dispatcher) Dispatch(ctx context.Context, sess *Session, name, rawArgs string) string {
	d.log.Info("tool call", zap.String("tool", name), zap.String("args", rawArgs))

	switch name {
	case "identify_user":
		return d.identifyUser(ctx, sess, rawArgs)
	case "fetch_slots":
		return d.fetchSlots(sess)
	case "book_appointment":
		return d.bookAppointment(ctx, sess, rawArgs)
	case "retrieve_appointments":
		return d.retrieveAppointments(ctx, sess)
	case "cancel_appointment":
		return d.cancelAppointment(ctx, sess, rawArgs)
	case "modify_appointment":
		return d.modifyAppointment(ctx, sess, rawArgs)
	case "update_booking_details":
		return d.updateBookingDetails(ctx, sess, rawArgs)
	case "end_conversation":
		return d.endConversation(sess, rawArgs)
	default:
		d.log.Warn("unknown tool", zap.String("tool", name))
		return fmt.Sprintf("Error: unknown tool %q.", name)
	}
}

func (d *Dispatcher) identifyUser(ctx context.Context, sess *Session, rawArgs string) string {
	var args struct {
		ContactNumber string `json:"contact_number"`
		Name          string `json:"name"`
	}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return badArgs(err)
	}

	u, err := d.svc.Identify(ctx, args.ContactNumber, args.Name)
	if err != nil {
		return explain(err)
	}
	sess.User = u
	return fmt.Sprintf("User identified: %s.", u.Name)
}

func (d *Dispatcher) fetchSlots(sess *Session) string {
	now := d.svc.Now()
	var upcoming []model.Slot
	for _, s := range d.svc.Slots() {
		if s.Start.After(now) {
			upcoming = append(upcoming, s)
		}
	}
	if len(upcoming) == 0 {
		return "No slots remain for today or tomorrow."
	}
	if len(upcoming) > 8 {
		upcoming = upcoming[:8]
	}

	parts := make([]string, len(upcoming))
	for i, s := range upcoming {
		parts[i] = fmt.Sprintf("%s (%s)", s.Display, s.Start.Format("2006-01-02T15:04:05"))
	}
	return "Availability for the next 24 hours: " + strings.Join(parts, ", ") +
		". When booking, use the ISO format in parentheses."
}

func (d *Dispatcher) bookAppointment(ctx context.Context, sess *Session, rawArgs string) string {
	var args struct {
		StartTime     string `json:"start_time"`
		NumPeople     int    `json:"num_people"`
		Name          string `json:"name"`
		ContactNumber string `json:"contact_number"`
		Details       string `json:"details"`
	}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return badArgs(err)
	}

	// implicit identification when contact details came with the booking
	if sess.User == nil {
		if args.ContactNumber == "" {
			return "Error: I need the caller's name and phone number before booking. Please ask for them."
		}
		u, err := d.svc.Identify(ctx, args.ContactNumber, args.Name)
		if err != nil {
			return explain(err)
		}
		sess.User = u
	}

	start, err := parseTime(args.StartTime)
	if err != nil {
		return explain(err)
	}

	apt, err := d.svc.Book(ctx, sess.UserID(), start, args.NumPeople, args.Details)
	if err != nil {
		return explain(err)
	}
	sess.Bookings = append(sess.Bookings, *apt)
	return fmt.Sprintf(
		"Wonderful! The table is booked, %s. The reservation is confirmed for %s for %d guests (ID: %s).",
		sess.UserName(), humanTime(apt.StartTime), args.NumPeople, apt.ID)
}

func (d *Dispatcher) retrieveAppointments(ctx context.Context, sess *Session) string {
	apts, err := d.svc.Retrieve(ctx, sess.UserID())
	if err != nil {
		return explain(err)
	}
	if len(apts) == 0 {
		return "No existing reservations found."
	}

	lines := make([]string, len(apts))
	for i, a := range apts {
		lines[i] = fmt.Sprintf("- %s (Status: %s, ID: %s)", humanTime(a.StartTime), a.Status, a.ID)
	}
	return "I found the following reservations. Which one would you like to manage?\n" +
		strings.Join(lines, "\n")
}

func (d *Dispatcher) cancelAppointment(ctx context.Context, sess *Session, rawArgs string) string {
	var args struct {
		AppointmentID string `json:"appointment_id"`
	}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return badArgs(err)
	}
	if args.AppointmentID == "" {
		return "Error: appointment_id is required."
	}

	if err := d.svc.Cancel(ctx, args.AppointmentID); err != nil {
		return explain(err)
	}
	return fmt.Sprintf("The reservation %s has been cancelled.", args.AppointmentID)
}

func (d *Dispatcher) modifyAppointment(ctx context.Context, sess *Session, rawArgs string) string {
	var args struct {
		AppointmentID string  `json:"appointment_id"`
		NewStartTime  *string `json:"new_start_time"`
		NewNumPeople  *int    `json:"new_num_people"`
		NewDetails    *string `json:"new_details"`
	}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return badArgs(err)
	}
	if args.AppointmentID == "" {
		return "Error: appointment_id is required."
	}

	var newStart *time.Time
	if args.NewStartTime != nil {
		t, err := parseTime(*args.NewStartTime)
		if err != nil {
			return explain(err)
		}
		newStart = &t
	}

	apt, err := d.svc.Modify(ctx, sess.UserID(), args.AppointmentID, newStart, args.NewNumPeople, args.NewDetails)
	if err != nil {
		return explain(err)
	}
	return fmt.Sprintf(
		"Certainly, %s. The reservation is updated: now set for %s (ID: %s). Anything else?",
		sess.UserName(), humanTime(apt.StartTime), apt.ID)
}

func (d *Dispatcher) updateBookingDetails(ctx context.Context, sess *Session, rawArgs string) string {
	var args struct {
		AppointmentID string `json:"appointment_id"`
		Details       string `json:"details"`
	}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return badArgs(err)
	}

	if err := d.svc.UpdateDetails(ctx, args.AppointmentID, args.Details); err != nil {
		return explain(err)
	}
	return fmt.Sprintf(
		"Thank you for sharing. I've added the following to the reservation: %q. The team will be prepared.",
		args.Details)
}

func (d *Dispatcher) endConversation(sess *Session, rawArgs string) string {
	var args struct {
		Summary string `json:"summary"`
	}
	_ = json.Unmarshal([]byte(rawArgs), &args)
	sess.ClosingNote = args.Summary
	sess.End()
	return "The conversation is now ending. Goodbye!"
}

// explain converts a fault into the sentence handed back to the model.
// Nothing here is fatal to the call session.
func explain(err error) string {
	var ve *fault.ValidationError
	if errors.As(err, &ve) {
		return "I'm sorry, that request is not valid: " + ve.Reason + "."
	}

	var ce *fault.ConflictError
	if errors.As(err, &ce) {
		if ce.Suggestion != nil {
			return fmt.Sprintf(
				"I'm sorry, that time slot is already booked. The next available slot is %s. Would you like that instead?",
				humanTime(*ce.Suggestion))
		}
		return "I'm sorry, that time slot is already booked and nothing else is free in the coming week. Please try a different date."
	}

	switch {
	case errors.Is(err, fault.ErrNotIdentified):
		return "Error: please identify the caller first using identify_user."
	case errors.Is(err, fault.ErrNotFound):
		return "I could not find that reservation. Would you like me to list the current bookings?"
	case errors.Is(err, fault.ErrInvalidState):
		return "That reservation was already cancelled or completed, so it cannot be changed."
	case errors.Is(err, fault.ErrUnavailable):
		return "The reservation system is temporarily unreachable. Please try again in a moment."
	default:
		return "Something went wrong handling that request. Please try again."
	}
}

func badArgs(err error) string {
	return "Error: could not parse the tool arguments: " + err.Error()
}

// parseTime accepts the ISO shapes the model produces, with or without
// an offset, interpreting offset-less times as restaurant-local.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fault.Validationf("%q is not a valid ISO time", s)
}

func humanTime(t time.Time) string {
	return t.Format("Monday, January 02 at 03:04 PM")
}
