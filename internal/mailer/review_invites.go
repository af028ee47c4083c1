package mailer

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mahmoud7895/loisirtt-portal/internal/model"
)

// InviteSource supplies the sweeper with the events that elapsed during a
// window and the addresses of the agents registered to each.
type InviteSource interface {
	ElapsedEvents(ctx context.Context, from, to time.Time) ([]model.Event, error)
	RegistrantEmails(ctx context.Context, eventID uint64) ([]string, error)
}

// InviteSender is the slice of Mailer the sweeper needs.
type InviteSender interface {
	Enabled() bool
	Send(to []string, subject, body string) error
}

// InviteSweeper periodically finds events that finished since its previous
// pass and mails each registered agent an invitation to review them. Windows
// are half-open (lastRun, now], so an event is invited exactly once even
// when passes overlap its start instant.
type InviteSweeper struct {
	source    InviteSource
	sender    InviteSender
	portalURL string
	interval  time.Duration

	lastRun time.Time
	now     func() time.Time
}

// NewInviteSweeper builds a sweeper. The first pass looks back 24 hours so
// events that elapsed while the server was down still get their invites.
func NewInviteSweeper(source InviteSource, sender InviteSender, portalURL string, interval time.Duration) *InviteSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	s := &InviteSweeper{
		source:    source,
		sender:    sender,
		portalURL: portalURL,
		interval:  interval,
		now:       time.Now,
	}
	s.lastRun = s.now().Add(-24 * time.Hour)
	return s
}

// Run sweeps immediately, then on every tick until the context ends.
func (s *InviteSweeper) Run(ctx context.Context) {
	s.Sweep(ctx)
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep processes the window since the previous pass. Mail failures are
// logged per event and never stop the pass; a failed event lookup leaves
// lastRun untouched so the window is retried on the next tick.
func (s *InviteSweeper) Sweep(ctx context.Context) {
	if s.sender == nil || !s.sender.Enabled() {
		return
	}
	to := s.now()
	events, err := s.source.ElapsedEvents(ctx, s.lastRun, to)
	if err != nil {
		log.Printf("review-invites: list elapsed events failed: %v", err)
		return
	}
	for _, ev := range events {
		s.invite(ctx, ev)
	}
	s.lastRun = to
}

func (s *InviteSweeper) invite(ctx context.Context, ev model.Event) {
	to, err := s.source.RegistrantEmails(ctx, ev.ID)
	if err != nil {
		log.Printf("review-invites: event %d: list registrants failed: %v", ev.ID, err)
		return
	}
	if len(to) == 0 {
		return
	}
	subject := fmt.Sprintf("Votre avis sur: %s", ev.Name)
	body := fmt.Sprintf("L'evenement %q du %s est termine.\n\n"+
		"Partagez votre avis avec vos collegues:\n%s/events/%d/reviews\n",
		ev.Name, ev.Date, s.portalURL, ev.ID)
	if err := s.sender.Send(to, subject, body); err != nil {
		log.Printf("review-invites: event %d: send failed: %v", ev.ID, err)
	}
}
