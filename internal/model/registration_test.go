package model

import (
	"testing"
	"time"
)

func TestDeriveEventStatus(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	past := &Event{Date: "2026-08-31", StartTime: "18:00"}
	if got := DeriveEventStatus(past, now); got != StatusExpired {
		t.Errorf("past event: status = %s, want %s", got, StatusExpired)
	}

	future := &Event{Date: "2026-09-02", StartTime: "09:00"}
	if got := DeriveEventStatus(future, now); got != StatusActive {
		t.Errorf("future event: status = %s, want %s", got, StatusActive)
	}

	// Same day, started an hour ago.
	started := &Event{Date: "2026-09-01", StartTime: "11:00"}
	if got := DeriveEventStatus(started, now); got != StatusExpired {
		t.Errorf("started event: status = %s, want %s", got, StatusExpired)
	}

	// Malformed schedule never reads as expired.
	broken := &Event{Date: "soon", StartTime: "later"}
	if got := DeriveEventStatus(broken, now); got != StatusActive {
		t.Errorf("malformed event: status = %s, want %s", got, StatusActive)
	}
}

func TestDeriveTypeStatus(t *testing.T) {
	if got := DeriveTypeStatus(false); got != StatusActive {
		t.Errorf("live type: status = %s, want %s", got, StatusActive)
	}
	if got := DeriveTypeStatus(true); got != StatusExpired {
		t.Errorf("archived type: status = %s, want %s", got, StatusExpired)
	}
}

func TestEventStartsAt(t *testing.T) {
	ev := &Event{Date: "2026-09-01", StartTime: "18:30"}
	want := time.Date(2026, 9, 1, 18, 30, 0, 0, time.UTC)
	if got := ev.StartsAt(); !got.Equal(want) {
		t.Errorf("StartsAt = %v, want %v", got, want)
	}
	if !ev.Elapsed(want.Add(time.Minute)) {
		t.Error("event not elapsed one minute after start")
	}
	if ev.Elapsed(want.Add(-time.Minute)) {
		t.Error("event elapsed one minute before start")
	}
}
