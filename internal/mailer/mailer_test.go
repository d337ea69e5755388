// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stemquest/stemquest/internal/config"
	"github.com/stemquest/stemquest/internal/models"
)

func TestDisabledSenderRejectsEverything(t *testing.T) {
	s := New(&config.MailConfig{Enabled: false})

	err := s.Send(context.Background(), models.Recipient{Email: "a@example.com"}, "hi", "body")
	if !errors.Is(err, ErrDisabled) {
		t.Fatalf("got %v, want ErrDisabled", err)
	}
}

func TestNewPicksSMTPWhenEnabled(t *testing.T) {
	s := New(&config.MailConfig{Enabled: true, Host: "localhost", Port: 2525})
	if _, ok := s.(*SMTPSender); !ok {
		t.Fatalf("got %T, want *SMTPSender", s)
	}
}

func TestBuildMessageHeaders(t *testing.T) {
	s := NewSMTPSender(&config.MailConfig{
		Host: "localhost", Port: 2525,
		From:    "noreply@stemquest.org",
		Timeout: time.Second,
	})

	msg := s.buildMessage(models.Recipient{Email: "kid@example.com"}, "Welcome", "<p>Hi</p>")

	for _, want := range []string{
		"From: noreply@stemquest.org\r\n",
		"To: kid@example.com\r\n",
		"Subject: Welcome\r\n",
		"Content-Type: text/html; charset=UTF-8\r\n",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
	if !strings.HasSuffix(msg, "<p>Hi</p>\r\n") {
		t.Errorf("body not terminated: %q", msg)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	// Nothing listens on the target port, so every delivery fails and the
	// breaker opens after five attempts.
	s := NewSMTPSender(&config.MailConfig{
		Host: "127.0.0.1", Port: 1, From: "noreply@stemquest.org",
		Timeout:           50 * time.Millisecond,
		SendRatePerSecond: 0,
	})

	ctx := context.Background()
	to := models.Recipient{Email: "kid@example.com"}
	for i := 0; i < 5; i++ {
		if err := s.Send(ctx, to, "x", "y"); err == nil {
			t.Fatalf("send %d unexpectedly succeeded", i)
		}
	}

	err := s.Send(ctx, to, "x", "y")
	if err == nil || !strings.Contains(err.Error(), "circuit breaker is open") {
		t.Fatalf("got %v, want open circuit breaker", err)
	}
}
