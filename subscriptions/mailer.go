package subscriptions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/burrowblog/burrow/config"
)

// ResendEmailRequest represents the request payload for the Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// ResendEmailResponse represents the response from the Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from the Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

// Mailer sends transactional mail through the Resend API.
//
// Requires environment variables:
//   - RESEND_API_KEY: the Resend API key
//   - RESEND_FROM_EMAIL: the sender address (e.g. "Burrow <mail@burrow.blog>")
type Mailer struct {
	apiKey  string
	from    string
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

func NewMailer(c map[string]string) *Mailer {
	return &Mailer{
		apiKey:  config.GetString(c, "RESEND_API_KEY", ""),
		from:    config.GetString(c, "RESEND_FROM_EMAIL", "Burrow <mail@burrow.blog>"),
		baseURL: config.GetString(c, "RESEND_BASE_URL", "https://api.resend.com"),
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  log.With().Str("component", "mailer").Logger(),
	}
}

// Send delivers an email to every recipient.
func (m *Mailer) Send(subject, htmlBody, textBody string, recipients []string) error {
	if len(recipients) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	if m.apiKey == "" {
		return fmt.Errorf("RESEND_API_KEY is not configured")
	}

	payload, err := json.Marshal(ResendEmailRequest{
		From:    m.from,
		To:      recipients,
		Subject: subject,
		Html:    htmlBody,
		Text:    textBody,
	})
	if err != nil {
		return fmt.Errorf("marshaling email request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, m.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		var apiErr ResendErrorResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("resend API error (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("resend API returned status %d", resp.StatusCode)
	}

	var sent ResendEmailResponse
	if err := json.Unmarshal(body, &sent); err == nil {
		m.logger.Info().Str("emailID", sent.ID).Int("recipients", len(recipients)).Msg("email sent")
	}
	return nil
}
