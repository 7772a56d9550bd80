package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/prevanet/prevention-server/internal/database"
	"github.com/prevanet/prevention-server/internal/protocol"
	"github.com/prevanet/prevention-server/pkg/config"
)

// EmailNotifier sends email notifications
type EmailNotifier struct {
	config *config.SMTPConfig
}

// NewEmailNotifier creates a new email notifier
func NewEmailNotifier(cfg *config.SMTPConfig) *EmailNotifier {
	return &EmailNotifier{config: cfg}
}

// SendInsightNotification sends an email for an insight notification.
// Low and Moderate insight events are skipped; baseline activations and
// Elevated risk insights go out.
func (e *EmailNotifier) SendInsightNotification(n *protocol.InsightNotification) error {
	var subject string
	var body string
	var err error

	switch n.Type {
	case protocol.NotificationTypeInsight:
		if n.RiskLevel != database.RiskLevelElevated {
			return nil
		}
		subject = fmt.Sprintf("Elevated risk detected - user %s", n.UserID)
		body, err = e.renderInsightTemplate(n)
	case protocol.NotificationTypeBaselineActivated:
		subject = fmt.Sprintf("Baseline activated - user %s", n.UserID)
		body, err = e.renderActivatedTemplate(n)
	default:
		return fmt.Errorf("unknown notification type: %s", n.Type)
	}

	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return e.sendEmail(subject, body)
}

func (e *EmailNotifier) renderInsightTemplate(n *protocol.InsightNotification) (string, error) {
	tmpl := `
Elevated Risk Insight
=====================

User: {{.UserID}}
Risk Score: {{.RiskScore}} ({{.RiskLevel}})
Deviated Signals: {{.Deviations}}
Insight ID: {{.InsightID}}
Date: {{.Date}}

{{.SummaryMessage}}

---
Prevention Server Notification System
`

	t, err := template.New("insight").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, n); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (e *EmailNotifier) renderActivatedTemplate(n *protocol.InsightNotification) (string, error) {
	tmpl := `
Baseline Activated
==================

User: {{.UserID}}
Date: {{.Date}}

The user's behavioral baseline has finished its learning window and is now
active. Daily evaluations begin with the next sample.

---
Prevention Server Notification System
`

	t, err := template.New("activated").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, n); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (e *EmailNotifier) sendEmail(subject, body string) error {
	// Skip sending if SMTP is not configured
	if e.config.Username == "" || e.config.Password == "" {
		log.Info().Str("subject", subject).Msg("SMTP not configured, skipping email")
		return nil
	}

	message := fmt.Sprintf("From: %s\r\n", e.config.From)
	message += fmt.Sprintf("To: %s\r\n", e.config.To)
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	message += "\r\n"
	message += body

	auth := smtp.PlainAuth("", e.config.Username, e.config.Password, e.config.Host)

	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)
	if err := smtp.SendMail(addr, auth, e.config.From, []string{e.config.To}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Info().Str("subject", subject).Msg("Email sent")
	return nil
}

// TestConnection tests the SMTP connection
func (e *EmailNotifier) TestConnection() error {
	if e.config.Username == "" {
		return fmt.Errorf("SMTP not configured")
	}

	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	return nil
}
