package main

import (
	"context"
	"time"

	"github.com/mahmoud7895/loisirtt-portal/internal/config"
	"github.com/mahmoud7895/loisirtt-portal/internal/model"
	"github.com/mahmoud7895/loisirtt-portal/internal/repository"
	"github.com/mahmoud7895/loisirtt-portal/internal/sentiment"
)

// agentEmails adapts the user repository to the consumer's RecipientSource.
type agentEmails struct {
	users *repository.UserRepo
}

func (a agentEmails) AgentEmails(ctx context.Context) ([]string, error) {
	agents, err := a.users.ListAgents(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(agents))
	for _, u := range agents {
		if u.Email != "" {
			out = append(out, u.Email)
		}
	}
	return out, nil
}

// inviteSource adapts the event and registration repositories to the
// review-invite sweeper.
type inviteSource struct {
	events    *repository.EventRepo
	eventRegs *repository.EventRegistrationRepo
}

func (s inviteSource) ElapsedEvents(ctx context.Context, from, to time.Time) ([]model.Event, error) {
	return s.events.ListElapsedBetween(ctx, from, to)
}

func (s inviteSource) RegistrantEmails(ctx context.Context, eventID uint64) ([]string, error) {
	return s.eventRegs.RegistrantEmails(ctx, eventID)
}

func sentimentClient(cfg config.Config) *sentiment.Client {
	return sentiment.NewClient(cfg.SentimentURL)
}
