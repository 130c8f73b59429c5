// Package summary produces and persists the closing record of a call.
package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"reservation-agent/internal/booking"
	"reservation-agent/internal/llm"
	"reservation-agent/internal/model"
	"reservation-agent/internal/tools"
)

type Service struct {
	llm llm.Client
	svc *booking.Service
	log *zap.Logger
}

func New(client llm.Client, svc *booking.Service, log *zap.Logger) *Service {
	return &Service{llm: client, svc: svc, log: log}
}

// Finalize writes the summary row for a finished session. The content is
// the model's closing note when it supplied one via end_conversation,
// otherwise a summary generated from the transcript. Returns nil when the
// call carried nothing worth recording.
func (s *Service) Finalize(ctx context.Context, sess *tools.Session) (*model.Summary, error) {
	if len(sess.Transcript) == 0 && len(sess.Bookings) == 0 && sess.ClosingNote == "" {
		s.log.Info("nothing to summarize, skipping")
		return nil, nil
	}

	now := time.Now()
	timestamp := now.Format("2006-01-02 15:04:05")

	content := sess.ClosingNote
	if content == "" && s.llm != nil {
		generated, err := s.llm.Complete(ctx, s.prompt(sess, timestamp))
		if err != nil {
			s.log.Warn("summary generation failed, storing plain record", zap.Error(err))
		} else {
			content = generated
		}
	}
	if content == "" {
		content = fallbackContent(sess)
	}

	var userID *string
	if sess.User != nil {
		id := sess.User.ID
		userID = &id
	}

	summaryID := "summary_" + now.Format("20060102150405")
	return s.svc.EndConversation(ctx, summaryID, userID, content, timestamp)
}

func (s *Service) prompt(sess *tools.Session, timestamp string) string {
	name, contact := "Unknown", "Unknown"
	if sess.User != nil {
		name, contact = sess.User.Name, sess.User.ContactNumber
	}

	bookingInfo := "No bookings made during this call."
	if len(sess.Bookings) > 0 {
		var lines []string
		for _, b := range sess.Bookings {
			lines = append(lines, fmt.Sprintf("- Time: %s, Status: %s",
				b.StartTime.Format(time.RFC3339), b.Status))
		}
		bookingInfo = strings.Join(lines, "\n")
	}

	var transcript strings.Builder
	for _, l := range sess.Transcript {
		fmt.Fprintf(&transcript, "%s: %s\n", l.Role, l.Text)
	}

	return fmt.Sprintf(
		"Generate a concise, professional summary of this restaurant reservation call.\n\n"+
			"Call timestamp: %s\nCustomer name: %s\nContact number: %s\n\n"+
			"Bookings made:\n%s\n\nConversation transcript:\n%s\n\n"+
			"Include: a brief summary of the discussion, all bookings with date and time, "+
			"any special requests mentioned, and next steps if any. Format as clean markdown.",
		timestamp, name, contact, bookingInfo, transcript.String())
}

func fallbackContent(sess *tools.Session) string {
	if len(sess.Bookings) == 0 {
		return "Call ended without bookings."
	}
	return fmt.Sprintf("Call ended with %d booking(s); see snapshot.", len(sess.Bookings))
}
