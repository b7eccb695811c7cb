/*-------------------------------------------------------------------------
 *
 * email.go
 *    Email notification sink
 *
 * Provides SMTP-based delivery for queued notifications.
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/notify/email.go
 *
 *-------------------------------------------------------------------------
 */

package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

/* EmailSink delivers notifications over SMTP */
type EmailSink struct {
	smtpHost     string
	smtpPort     int
	smtpUser     string
	smtpPassword string
	smtpFrom     string
	enabled      bool
}

/* NewEmailSink creates an email sink. Missing host or port disables it. */
func NewEmailSink(smtpHost string, smtpPort int, smtpUser, smtpPassword, smtpFrom string) *EmailSink {
	return &EmailSink{
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUser:     smtpUser,
		smtpPassword: smtpPassword,
		smtpFrom:     smtpFrom,
		enabled:      smtpHost != "" && smtpPort > 0,
	}
}

/* Enabled reports whether the sink is configured */
func (e *EmailSink) Enabled() bool {
	return e.enabled
}

/* Send sends one notification email */
func (e *EmailSink) Send(ctx context.Context, to, subject, body string) error {
	if !e.enabled {
		return fmt.Errorf("email sink not configured")
	}

	if !strings.Contains(to, "@") {
		return fmt.Errorf("invalid email address: %s", to)
	}

	msg := fmt.Sprintf("From: %s\r\n", e.smtpFrom)
	msg += fmt.Sprintf("To: %s\r\n", to)
	msg += fmt.Sprintf("Subject: %s\r\n", subject)
	msg += "\r\n"
	msg += body

	auth := smtp.PlainAuth("", e.smtpUser, e.smtpPassword, e.smtpHost)

	addr := fmt.Sprintf("%s:%d", e.smtpHost, e.smtpPort)
	err := smtp.SendMail(addr, auth, e.smtpFrom, []string{to}, []byte(msg))
	if err != nil {
		return fmt.Errorf("email send failed: to='%s', subject='%s', error=%w", to, subject, err)
	}

	return nil
}
