// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stemquest/stemquest/internal/database"
	"github.com/stemquest/stemquest/internal/models"
)

type fakeStore struct {
	mu      sync.Mutex
	due     []models.EmailCampaign
	dueErr  error
	sendErr error
	sent    []string
}

func (f *fakeStore) DueScheduledCampaigns(ctx context.Context, now time.Time) ([]models.EmailCampaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.due, f.dueErr
}

func (f *fakeStore) SendCampaign(ctx context.Context, id string, send database.SendFunc) (*models.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, id)
	return &models.SendResult{CampaignID: id, RecipientCount: 1, SentCount: 1}, nil
}

func (f *fakeStore) sentIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

type fakeSender struct{}

func (fakeSender) Send(ctx context.Context, to models.Recipient, subject, body string) error {
	return nil
}

func TestCampaignSchedulerDispatchesDue(t *testing.T) {
	store := &fakeStore{due: []models.EmailCampaign{{ID: "c1"}, {ID: "c2"}}}
	s := NewCampaignScheduler(store, fakeSender{}, time.Minute, time.Minute)

	s.RunOnce(context.Background())

	sent := store.sentIDs()
	if len(sent) != 2 || sent[0] != "c1" || sent[1] != "c2" {
		t.Fatalf("sent = %v, want [c1 c2]", sent)
	}
}

func TestCampaignSchedulerSurvivesSendFailure(t *testing.T) {
	store := &fakeStore{
		due:     []models.EmailCampaign{{ID: "c1"}},
		sendErr: errors.New("smtp down"),
	}
	s := NewCampaignScheduler(store, fakeSender{}, time.Minute, time.Minute)

	// Must not panic and must not dispatch anything.
	s.RunOnce(context.Background())
	if len(store.sentIDs()) != 0 {
		t.Fatal("campaign recorded as sent despite failure")
	}
}

func TestCampaignSchedulerStopsOnCancel(t *testing.T) {
	store := &fakeStore{}
	s := NewCampaignScheduler(store, fakeSender{}, 10*time.Millisecond, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not stop")
	}
}
