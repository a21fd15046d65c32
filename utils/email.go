package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/phillip/evently-go/config"
)

// email request payload for ZeptoMail API
type emailRequest struct {
	From     emailAddress  `json:"from"`
	To       []toRecipient `json:"to"`
	Subject  string        `json:"subject"`
	HtmlBody string        `json:"htmlbody"`
}

type emailAddress struct {
	Address string `json:"address"`
}

type toRecipient struct {
	Email emailWithName `json:"email_address"`
}

type emailWithName struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// Mailer sends HTML email through the ZeptoMail HTTP API.
type Mailer struct {
	apiURL string
	apiKey string
	from   string
	client *http.Client
	logger zerolog.Logger
}

// NewMailer returns nil when the email settings are incomplete.
func NewMailer(cfg config.EmailConfig, logger zerolog.Logger) *Mailer {
	if !cfg.Enabled() {
		return nil
	}
	return &Mailer{
		apiURL: cfg.APIURL,
		apiKey: cfg.APIKey,
		from:   cfg.From,
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

func (m *Mailer) SendEmail(ctx context.Context, to, name, subject, body string) error {
	payload := emailRequest{
		From: emailAddress{Address: m.from},
		To: []toRecipient{
			{Email: emailWithName{Address: to, Name: name}},
		},
		Subject:  subject,
		HtmlBody: body,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("zeptomail API error: %s", resp.Status)
	}

	m.logger.Info().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}
