package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mahmoud7895/loisirtt-portal/internal/model"
)

type fakeInviteSource struct {
	events     map[int64][]model.Event // keyed by window end, unix seconds
	registrant map[uint64][]string
	listErr    error
	windows    [][2]time.Time
}

func (f *fakeInviteSource) ElapsedEvents(_ context.Context, from, to time.Time) ([]model.Event, error) {
	f.windows = append(f.windows, [2]time.Time{from, to})
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.events[to.Unix()], nil
}

func (f *fakeInviteSource) RegistrantEmails(_ context.Context, eventID uint64) ([]string, error) {
	return f.registrant[eventID], nil
}

type sentMail struct {
	to      []string
	subject string
	body    string
}

type fakeSender struct {
	disabled bool
	sent     []sentMail
}

func (f *fakeSender) Enabled() bool { return !f.disabled }

func (f *fakeSender) Send(to []string, subject, body string) error {
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

// clock hands out a fixed sequence of instants.
type clock struct {
	times []time.Time
	i     int
}

func (c *clock) now() time.Time {
	t := c.times[c.i]
	if c.i+1 < len(c.times) {
		c.i++
	}
	return t
}

func TestSweepInvitesRegistrantsOfElapsedEvents(t *testing.T) {
	t0 := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	src := &fakeInviteSource{
		events: map[int64][]model.Event{
			t0.Unix(): {
				{ID: 7, Name: "Tournoi de tennis", Date: "2026-09-01"},
				{ID: 8, Name: "Sortie Hammamet", Date: "2026-09-01"},
			},
		},
		registrant: map[uint64][]string{
			7: {"a@tt.tn", "b@tt.tn"},
			// event 8 has no registrants with an email
		},
	}
	sender := &fakeSender{}
	s := NewInviteSweeper(src, sender, "https://portal.tt.tn", time.Hour)
	s.now = (&clock{times: []time.Time{t0}}).now
	s.lastRun = t0.Add(-time.Hour)

	s.Sweep(context.Background())

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(sender.sent))
	}
	m := sender.sent[0]
	if len(m.to) != 2 || m.to[0] != "a@tt.tn" {
		t.Errorf("recipients = %v", m.to)
	}
	if !strings.Contains(m.subject, "Tournoi de tennis") {
		t.Errorf("subject = %q", m.subject)
	}
	if !strings.Contains(m.body, "https://portal.tt.tn/events/7/reviews") {
		t.Errorf("body lacks review link: %q", m.body)
	}
}

func TestSweepWindowsAreContiguous(t *testing.T) {
	t0 := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)
	src := &fakeInviteSource{}
	s := NewInviteSweeper(src, &fakeSender{}, "http://localhost:3000", time.Hour)
	s.now = (&clock{times: []time.Time{t0, t1}}).now
	s.lastRun = t0.Add(-time.Hour)

	s.Sweep(context.Background())
	s.Sweep(context.Background())

	if len(src.windows) != 2 {
		t.Fatalf("queried %d windows, want 2", len(src.windows))
	}
	if !src.windows[0][1].Equal(t0) || !src.windows[1][0].Equal(t0) || !src.windows[1][1].Equal(t1) {
		t.Errorf("windows = %v, want back-to-back ending at t0 then t1", src.windows)
	}
}

func TestSweepRetriesWindowAfterListFailure(t *testing.T) {
	t0 := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	start := t0.Add(-time.Hour)
	src := &fakeInviteSource{listErr: errors.New("db down")}
	s := NewInviteSweeper(src, &fakeSender{}, "http://localhost:3000", time.Hour)
	s.now = (&clock{times: []time.Time{t0, t0.Add(time.Hour)}}).now
	s.lastRun = start

	s.Sweep(context.Background())
	src.listErr = nil
	s.Sweep(context.Background())

	if len(src.windows) != 2 {
		t.Fatalf("queried %d windows, want 2", len(src.windows))
	}
	if !src.windows[1][0].Equal(start) {
		t.Errorf("second window starts at %v, want %v (failed window must be retried)", src.windows[1][0], start)
	}
}

func TestSweepDisabledSenderQueriesNothing(t *testing.T) {
	src := &fakeInviteSource{}
	s := NewInviteSweeper(src, &fakeSender{disabled: true}, "http://localhost:3000", time.Hour)

	s.Sweep(context.Background())

	if len(src.windows) != 0 {
		t.Errorf("queried %d windows with mail disabled, want 0", len(src.windows))
	}
}
