package model

import "time"

// Appointment status values. The set is closed: the store rejects anything else.
const (
	StatusBooked    = "booked"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// AppointmentDuration is the fixed reservation length; end_time is always
// start_time plus this.
const AppointmentDuration = time.Hour

type User struct {
	ID            string    `json:"id"`
	ContactNumber string    `json:"contact_number"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"created_at"`
}

type Appointment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary records one finished call. The id is supplied by the caller,
// not generated by the store, and the row is immutable once written.
type Summary struct {
	ID        string        `json:"id"`
	UserID    *string       `json:"user_id"`
	Content   string        `json:"content"`
	Bookings  []Appointment `json:"bookings_snapshot"`
	Timestamp string        `json:"timestamp"`
	CreatedAt time.Time     `json:"created_at"`
}

// Slot is a candidate appointment start time from the fixed hourly schedule.
type Slot struct {
	Start   time.Time `json:"iso"`
	Display string    `json:"display"`
}
