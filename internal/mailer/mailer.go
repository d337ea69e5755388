// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

// Package mailer delivers campaign email over SMTP. Delivery is paced
// with a token-bucket limiter and guarded by a circuit breaker so a
// misbehaving provider fails fast instead of stalling a whole campaign.
package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/stemquest/stemquest/internal/config"
	"github.com/stemquest/stemquest/internal/logging"
	"github.com/stemquest/stemquest/internal/models"
)

// ErrDisabled is returned by the disabled sender for every message.
var ErrDisabled = errors.New("mail delivery is disabled")

// Sender delivers one message to one recipient.
type Sender interface {
	Send(ctx context.Context, to models.Recipient, subject, body string) error
}

// New returns an SMTP-backed sender, or a sender that rejects
// everything when mail is disabled. Campaign sends against the disabled
// sender still record per-recipient failure logs, which keeps staging
// environments honest without leaking mail.
func New(cfg *config.MailConfig) Sender {
	if !cfg.Enabled {
		return disabledSender{}
	}
	return NewSMTPSender(cfg)
}

type disabledSender struct{}

func (disabledSender) Send(context.Context, models.Recipient, string, string) error {
	return ErrDisabled
}

// SMTPSender sends mail through a single SMTP endpoint.
type SMTPSender struct {
	cfg     *config.MailConfig
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewSMTPSender builds a sender from config. The circuit opens after
// five consecutive delivery failures and probes again after 30 seconds.
func NewSMTPSender(cfg *config.MailConfig) *SMTPSender {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.SendRatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.SendRatePerSecond), 1)
	}

	settings := gobreaker.Settings{
		Name:    "smtp",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("SMTP circuit breaker state changed")
		},
	}

	return &SMTPSender{
		cfg:     cfg,
		limiter: limiter,
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

// Send paces, then pushes one message through the breaker.
func (s *SMTPSender) Send(ctx context.Context, to models.Recipient, subject, body string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	_, err := s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.deliver(ctx, to, subject, body)
	})
	return err
}

func (s *SMTPSender) buildMessage(to models.Recipient, subject, body string) string {
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", s.cfg.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to.Email))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)
	msg.WriteString("\r\n")
	return msg.String()
}

func (s *SMTPSender) deliver(ctx context.Context, to models.Recipient, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	dialer := &net.Dialer{Timeout: s.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }() //nolint:errcheck // Best effort cleanup

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }() //nolint:errcheck // Best effort cleanup

	if s.cfg.UseTLS {
		tlsConfig := &tls.Config{
			ServerName: s.cfg.Host,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("start TLS: %w", err)
		}
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := client.Rcpt(to.Email); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("start message: %w", err)
	}
	if _, err := writer.Write([]byte(s.buildMessage(to, subject, body))); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}

	// A failed QUIT after a successful DATA is not a delivery failure.
	_ = client.Quit()
	return nil
}
