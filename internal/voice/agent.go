package voice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v3"
	"go.uber.org/zap"

	"reservation-agent/internal/auth"
	"reservation-agent/internal/summary"
	"reservation-agent/internal/tools"
)

const (
	greeting = "Hello! This is the reservation helpline. How can I assist you today?"

	joinTokenTTL = 2 * time.Hour
)

// Agent runs voice call sessions. Each session gets its own context
// object and Realtime connection; nothing is shared between concurrent
// calls except the store behind the dispatcher.
type Agent struct {
	rtCfg     RealtimeConfig
	disp      *tools.Dispatcher
	sum       *summary.Service
	jwtSecret string
	log       *zap.Logger
}

func NewAgent(rtCfg RealtimeConfig, disp *tools.Dispatcher, sum *summary.Service, jwtSecret string, log *zap.Logger) *Agent {
	return &Agent{rtCfg: rtCfg, disp: disp, sum: sum, jwtSecret: jwtSecret, log: log}
}

// NewJoinToken mints the credential a caller's client presents to the
// transport to join a fresh session room.
func (a *Agent) NewJoinToken(identity string) (room, token string, err error) {
	room = "call-" + uuid.New().String()
	token, err = auth.MakeJoinToken(room, identity, a.jwtSecret, joinTokenTTL)
	return room, token, err
}

// Run drives one call to completion: connect the Realtime leg, greet,
// wait for the end signal (or the call dropping via ctx), then write the
// closing summary. Errors past connection setup never abort the call.
func (a *Agent) Run(ctx context.Context) error {
	sess := tools.NewSession()
	cfg := a.rtCfg
	cfg.Instructions = Instructions(time.Now())

	rt := NewRealtime(cfg, a.disp, sess, a.log)
	if err := rt.Connect(ctx, webrtc.NewAPI()); err != nil {
		return fmt.Errorf("connect realtime: %w", err)
	}
	defer rt.Close()

	// data channel open races connection setup; give it a moment before
	// greeting
	go func() {
		time.Sleep(time.Second)
		rt.Say(greeting)
	}()

	select {
	case <-sess.Done():
		a.log.Info("conversation end signal received")
	case <-ctx.Done():
		a.log.Info("call context closed", zap.Error(ctx.Err()))
	}

	// the session context is gone; finalize on a fresh deadline
	finalizeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := a.sum.Finalize(finalizeCtx, sess); err != nil {
		a.log.Error("summary finalize failed", zap.Error(err))
	}
	return nil
}

// Instructions builds the persona prompt handed to the realtime model.
func Instructions(now time.Time) string {
	return "You are the guest service assistant for the restaurant reservation helpline. " +
		"The current date and time is " + now.Format("Monday, January 2, 2006 at 3:04 PM") + ". " +
		"Your persona is warm, professional and concise. " +
		"Always ask for the guest's name and phone number early and use identify_user. " +
		"Address the guest by name once identified. " +
		"When booking, ask for the date, time and party size; restaurant hours are 10:00 AM to 10:00 PM. " +
		"Only future reservations are accepted; if a past date is requested, apologize and suggest an alternative. " +
		"After a successful booking, ask about special occasions or dietary requirements and record them with update_booking_details. " +
		"For changes or cancellations, look the guest up first with retrieve_appointments and confirm details before acting, using the ids the tool returns. " +
		"When the guest is done, call end_conversation and wish them a wonderful day."
}
