// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stemquest/stemquest/internal/models"
)

func seedTemplate(t *testing.T, db *DB) *models.EmailTemplate {
	t.Helper()
	tmpl, err := db.CreateEmailTemplate(context.Background(), models.CreateEmailTemplateRequest{
		Name:    "Welcome",
		Subject: "Welcome to StemQuest",
		Body:    "Hi there, glad you joined.",
	})
	if err != nil {
		t.Fatalf("seed template: %v", err)
	}
	return tmpl
}

func TestQueryRecipientsFilterPrecedence(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	ca1 := seedStudent(t, db, 1) // grade 9, CA
	ca2 := seedStudent(t, db, 2)
	tx := seedStudent(t, db, 3)
	state := "TX"
	if _, err := db.UpdateUser(ctx, tx.ID, models.UpdateUserRequest{State: &state}); err != nil {
		t.Fatalf("move student to TX: %v", err)
	}

	admin := &models.User{
		Email: "admin@example.com", Username: "adminuser",
		Password: "hash", FirstName: "Ada", LastName: "Admin",
		Role: models.RoleAdmin, IsAdmin: true,
	}
	if err := db.CreateUser(ctx, admin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	all, err := db.QueryRecipients(ctx, models.RecipientFilters{})
	if err != nil {
		t.Fatalf("QueryRecipients: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("unfiltered = %d recipients, want 3 (admins excluded)", len(all))
	}

	caOnly, err := db.QueryRecipients(ctx, models.RecipientFilters{State: "CA"})
	if err != nil {
		t.Fatalf("QueryRecipients CA: %v", err)
	}
	if len(caOnly) != 2 {
		t.Errorf("CA filter = %d recipients, want 2", len(caOnly))
	}

	// An explicit selection wins over attribute filters.
	selected, err := db.QueryRecipients(ctx, models.RecipientFilters{
		State:           "CA",
		SelectedUserIDs: []string{tx.ID, ca1.ID},
	})
	if err != nil {
		t.Fatalf("QueryRecipients selected: %v", err)
	}
	if len(selected) != 2 {
		t.Fatalf("selection = %d recipients, want 2", len(selected))
	}
	ids := map[string]bool{selected[0].ID: true, selected[1].ID: true}
	if !ids[tx.ID] || !ids[ca1.ID] {
		t.Errorf("selection ignored SelectedUserIDs: got %v", ids)
	}
	_ = ca2
}

func TestSendCampaign(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedStudent(t, db, 1)
	seedStudent(t, db, 2)
	tmpl := seedTemplate(t, db)
	campaign, err := db.CreateEmailCampaign(ctx, models.CreateEmailCampaignRequest{
		Name:       "Spring Kickoff",
		TemplateID: tmpl.ID,
	})
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	if campaign.Status != models.CampaignStatusDraft {
		t.Fatalf("new campaign status = %q, want draft", campaign.Status)
	}

	var delivered []string
	send := func(_ context.Context, to models.Recipient, subject, _ string) error {
		if subject != tmpl.Subject {
			t.Errorf("subject = %q, want %q", subject, tmpl.Subject)
		}
		if to.Email == "student2@example.com" {
			return errors.New("mailbox full")
		}
		delivered = append(delivered, to.Email)
		return nil
	}

	result, err := db.SendCampaign(ctx, campaign.ID, send)
	if err != nil {
		t.Fatalf("SendCampaign: %v", err)
	}
	if result.RecipientCount != 2 || result.SentCount != 1 || result.FailedCount != 1 {
		t.Errorf("result = %+v, want 2 recipients, 1 sent, 1 failed", result)
	}
	if len(delivered) != 1 || delivered[0] != "student1@example.com" {
		t.Errorf("delivered = %v", delivered)
	}

	after, err := db.GetEmailCampaignByID(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("reload campaign: %v", err)
	}
	if after.Status != models.CampaignStatusSent {
		t.Errorf("status = %q, want sent", after.Status)
	}
	if after.RecipientCount != 2 || after.SentCount != 1 {
		t.Errorf("counts = %d/%d, want 2/1", after.RecipientCount, after.SentCount)
	}
	if after.SentAt == nil {
		t.Error("sentAt not recorded")
	}

	logs, err := db.ListEmailLogs(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("ListEmailLogs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("logs = %d, want 2", len(logs))
	}
	byStatus := map[string]int{}
	for _, l := range logs {
		byStatus[l.Status]++
	}
	if byStatus[models.EmailLogStatusSent] != 1 || byStatus[models.EmailLogStatusFailed] != 1 {
		t.Errorf("log statuses = %v", byStatus)
	}

	// A sent campaign cannot be sent again.
	if _, err := db.SendCampaign(ctx, campaign.ID, send); !errors.Is(err, ErrInvalidState) {
		t.Errorf("resend: got %v, want ErrInvalidState", err)
	}
}

func TestSendCampaignNoRecipients(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tmpl := seedTemplate(t, db)
	campaign, err := db.CreateEmailCampaign(ctx, models.CreateEmailCampaignRequest{
		Name:       "Empty Audience",
		TemplateID: tmpl.ID,
	})
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}

	_, err = db.SendCampaign(ctx, campaign.ID, func(context.Context, models.Recipient, string, string) error {
		t.Error("send should not be called")
		return nil
	})
	if !errors.Is(err, ErrNoRecipients) {
		t.Fatalf("got %v, want ErrNoRecipients", err)
	}

	after, err := db.GetEmailCampaignByID(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("reload campaign: %v", err)
	}
	if after.Status != models.CampaignStatusFailed {
		t.Errorf("status = %q, want failed", after.Status)
	}
}

func TestUpdateCampaignStateRules(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedStudent(t, db, 1)
	tmpl := seedTemplate(t, db)
	campaign, err := db.CreateEmailCampaign(ctx, models.CreateEmailCampaignRequest{
		Name:       "Renamable",
		TemplateID: tmpl.ID,
	})
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}

	name := "Renamed"
	updated, err := db.UpdateEmailCampaign(ctx, campaign.ID, models.UpdateEmailCampaignRequest{Name: &name})
	if err != nil {
		t.Fatalf("update draft: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Errorf("name = %q, want Renamed", updated.Name)
	}

	if _, err := db.SendCampaign(ctx, campaign.ID, func(context.Context, models.Recipient, string, string) error {
		return nil
	}); err != nil {
		t.Fatalf("send: %v", err)
	}

	if _, err := db.UpdateEmailCampaign(ctx, campaign.ID, models.UpdateEmailCampaignRequest{Name: &name}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("update sent campaign: got %v, want ErrInvalidState", err)
	}
}

func TestDeleteTemplateInUse(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tmpl := seedTemplate(t, db)
	if _, err := db.CreateEmailCampaign(ctx, models.CreateEmailCampaignRequest{
		Name:       "Holder",
		TemplateID: tmpl.ID,
	}); err != nil {
		t.Fatalf("create campaign: %v", err)
	}

	if err := db.DeleteEmailTemplate(ctx, tmpl.ID); !errors.Is(err, ErrInUse) {
		t.Errorf("delete referenced template: got %v, want ErrInUse", err)
	}

	free := seedTemplate(t, db)
	if err := db.DeleteEmailTemplate(ctx, free.ID); err != nil {
		t.Errorf("delete free template: %v", err)
	}
}

func TestCreateCampaignUnknownTemplate(t *testing.T) {
	db := newTestDB(t)

	_, err := db.CreateEmailCampaign(context.Background(), models.CreateEmailCampaignRequest{
		Name:       "Orphan",
		TemplateID: fmt.Sprintf("%036d", 0),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
