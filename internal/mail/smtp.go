// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/waypoint/internal/breaker"
	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
)

// SMTPSender sends mail through an SMTP relay.
type SMTPSender struct {
	cfg     config.MailConfig
	breaker *breaker.Breaker
}

// NewSMTPSender creates a sender guarded by the "smtp" circuit breaker.
func NewSMTPSender(cfg *config.MailConfig) *SMTPSender {
	return &SMTPSender{
		cfg:     *cfg,
		breaker: breaker.New("smtp", breaker.DefaultSettings()),
	}
}

// SendPasswordReset implements Sender.
func (s *SMTPSender) SendPasswordReset(ctx context.Context, to, username, token string, ttl time.Duration) error {
	msg := buildResetMessage(s.cfg.From, s.cfg.FromName, to, username, token, ttl)

	err := s.breaker.Execute(func() error {
		return s.send(ctx, to, msg)
	})
	if err != nil {
		metrics.MailSent.WithLabelValues("error").Inc()
		return err
	}

	metrics.MailSent.WithLabelValues("success").Inc()
	logging.Ctx(ctx).Info().Str("to", logging.SanitizeEmail(to)).Msg("Password reset e-mail sent")
	return nil
}

func (s *SMTPSender) send(ctx context.Context, to, msg string) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	dialer := &net.Dialer{Timeout: s.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if s.cfg.Timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(s.cfg.Timeout))
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }()

	if s.cfg.UseTLS {
		tlsConfig := &tls.Config{
			ServerName: s.cfg.Host,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start message: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close message: %w", err)
	}

	// The message is accepted once DATA completes.
	_ = client.Quit()
	return nil
}

func buildResetMessage(from, fromName, to, username, token string, ttl time.Duration) string {
	if fromName == "" {
		fromName = "Waypoint"
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", fromName, from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	msg.WriteString("Subject: Reset your Waypoint password\r\n")
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	fmt.Fprintf(&msg, "Hello %s,\r\n\r\n", username)
	msg.WriteString("A password reset was requested for your account. Use this token to choose a new password:\r\n\r\n")
	fmt.Fprintf(&msg, "    %s\r\n\r\n", token)
	fmt.Fprintf(&msg, "The token expires in %s and can be used once.\r\n", ttl.Round(time.Minute))
	msg.WriteString("If you did not request a reset you can ignore this message.\r\n")
	return msg.String()
}
