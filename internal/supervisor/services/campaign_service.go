// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package services

import (
	"context"
	"time"

	"github.com/stemquest/stemquest/internal/database"
	"github.com/stemquest/stemquest/internal/logging"
	"github.com/stemquest/stemquest/internal/mailer"
	"github.com/stemquest/stemquest/internal/metrics"
	"github.com/stemquest/stemquest/internal/models"
)

// CampaignStore is the slice of the database the scheduler needs.
type CampaignStore interface {
	DueScheduledCampaigns(ctx context.Context, now time.Time) ([]models.EmailCampaign, error)
	SendCampaign(ctx context.Context, id string, send database.SendFunc) (*models.SendResult, error)
}

// CampaignScheduler periodically dispatches email campaigns whose
// scheduled send time has arrived. The claim inside SendCampaign keeps
// multiple instances from double-sending the same campaign.
type CampaignScheduler struct {
	store       CampaignStore
	sender      mailer.Sender
	interval    time.Duration
	sendTimeout time.Duration
}

// NewCampaignScheduler creates the scheduler service.
func NewCampaignScheduler(store CampaignStore, sender mailer.Sender, interval, sendTimeout time.Duration) *CampaignScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Minute
	}
	return &CampaignScheduler{
		store:       store,
		sender:      sender,
		interval:    interval,
		sendTimeout: sendTimeout,
	}
}

// Serve implements suture.Service: tick, dispatch, repeat until the
// context ends.
func (s *CampaignScheduler) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce dispatches every campaign currently due. Failures are logged
// and do not stop the sweep; the next tick retries nothing, because a
// failed campaign has already moved out of the scheduled state.
func (s *CampaignScheduler) RunOnce(ctx context.Context) {
	due, err := s.store.DueScheduledCampaigns(ctx, time.Now().UTC())
	if err != nil {
		logging.Error().Err(err).Msg("Failed to query due campaigns")
		return
	}

	for _, campaign := range due {
		sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
		result, err := s.store.SendCampaign(sendCtx, campaign.ID, s.deliver)
		cancel()
		if err != nil {
			logging.Error().Err(err).
				Str("campaign_id", campaign.ID).
				Msg("Scheduled campaign send failed")
			continue
		}
		logging.Info().
			Str("campaign_id", campaign.ID).
			Int("recipients", result.RecipientCount).
			Int("sent", result.SentCount).
			Int("failed", result.FailedCount).
			Msg("Scheduled campaign sent")
	}
}

func (s *CampaignScheduler) deliver(ctx context.Context, to models.Recipient, subject, body string) error {
	err := s.sender.Send(ctx, to, subject, body)
	if err != nil {
		metrics.CampaignEmailsSent.WithLabelValues("failed").Inc()
	} else {
		metrics.CampaignEmailsSent.WithLabelValues("sent").Inc()
	}
	return err
}

func (s *CampaignScheduler) String() string { return "campaign-scheduler" }
