// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package mail

import (
	"context"
	"time"

	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
)

// Sender delivers password reset tokens.
type Sender interface {
	SendPasswordReset(ctx context.Context, to, username, token string, ttl time.Duration) error
}

// New returns an SMTPSender when mail is enabled and a LogSender otherwise.
func New(cfg *config.MailConfig) Sender {
	if cfg.Enabled {
		return NewSMTPSender(cfg)
	}
	return LogSender{}
}

// LogSender records reset requests without delivering anything.
type LogSender struct{}

// SendPasswordReset implements Sender.
func (LogSender) SendPasswordReset(ctx context.Context, to, _, _ string, ttl time.Duration) error {
	logging.Ctx(ctx).Info().
		Str("to", logging.SanitizeEmail(to)).
		Dur("ttl", ttl).
		Msg("SMTP disabled; password reset e-mail not sent")
	metrics.MailSent.WithLabelValues("skipped").Inc()
	return nil
}
