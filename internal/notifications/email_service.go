package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"opengym/internal/models"
	"opengym/internal/models/config"
	"opengym/internal/service"

	"go.uber.org/zap"
)

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

// BrevoService sends transactional mail through the Brevo HTTP API.
type BrevoService struct {
	APIKey      string
	SenderEmail string
	SenderName  string
	Endpoint    string
	client      *http.Client
	log         *zap.Logger
}

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
	TextContent string              `json:"textContent"`
}

// NewMailer falls back to logging the mail when Brevo is not configured.
func NewMailer(cfg config.MailConfig, log *zap.Logger) service.Mailer {
	if cfg.BrevoAPIKey == "" || cfg.SenderEmail == "" {
		log.Warn("email service not configured, mails are only logged")
		return &logMailer{log: log}
	}
	return &BrevoService{
		APIKey:      cfg.BrevoAPIKey,
		SenderEmail: cfg.SenderEmail,
		SenderName:  cfg.SenderName,
		Endpoint:    brevoEndpoint,
		client:      &http.Client{Timeout: 10 * time.Second},
		log:         log,
	}
}

func (s *BrevoService) EmailUser(ctx context.Context, user *models.User, subject, body string) error {
	if user.Email == "" || !strings.Contains(user.Email, "@") {
		return fmt.Errorf("invalid recipient email: %q", user.Email)
	}
	name := strings.TrimSpace(user.FullName())
	if name == "" {
		name = user.Email[:strings.Index(user.Email, "@")]
	}

	payload := brevoPayload{
		Sender:      map[string]string{"name": s.SenderName, "email": s.SenderEmail},
		To:          []map[string]string{{"email": user.Email, "name": name}},
		Subject:     subject,
		HTMLContent: textToHTML(body),
		TextContent: body,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.APIKey)
	req.Header.Set("content-type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("brevo returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	s.log.Info("email sent", zap.Int64("user_id", user.ID), zap.String("subject", subject))
	return nil
}

func textToHTML(body string) string {
	return "<p>" + strings.ReplaceAll(html.EscapeString(body), "\n", "<br>") + "</p>"
}

type logMailer struct {
	log *zap.Logger
}

func (m *logMailer) EmailUser(_ context.Context, user *models.User, subject, body string) error {
	m.log.Info("email (not sent)", zap.String("to", user.Email), zap.String("subject", subject), zap.String("body", body))
	return nil
}
