package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const brevoAPIURL = "https://api.brevo.com/v3/smtp/email"

// Recipient is an email address with an optional display name.
type Recipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Email is the generic send contract of the transactional provider.
type Email struct {
	Sender      *Recipient  `json:"sender,omitempty"`
	To          []Recipient `json:"to"`
	Subject     string      `json:"subject"`
	HTMLContent string      `json:"htmlContent"`
	Tags        []string    `json:"tags,omitempty"`
}

// Mailer sends a single email. Implementations must be safe for use from
// the dispatcher goroutine.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// BrevoMailer sends email through the Brevo transactional HTTP API.
type BrevoMailer struct {
	apiKey      string
	senderEmail string
	senderName  string
	baseURL     string
	client      *http.Client
}

// NewBrevoMailer creates a BrevoMailer with the default endpoint.
func NewBrevoMailer(apiKey, senderEmail, senderName string) *BrevoMailer {
	return &BrevoMailer{
		apiKey:      apiKey,
		senderEmail: senderEmail,
		senderName:  senderName,
		baseURL:     brevoAPIURL,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts the email to the Brevo API, filling in the default sender when
// the caller did not set one.
func (m *BrevoMailer) Send(ctx context.Context, email Email) error {
	if m.apiKey == "" {
		return fmt.Errorf("brevo: api key not configured")
	}
	if email.Sender == nil {
		email.Sender = &Recipient{Email: m.senderEmail, Name: m.senderName}
	}

	body, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("brevo: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("brevo: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("brevo: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("brevo: status %d: %s", resp.StatusCode, detail)
	}

	return nil
}

// LogMailer writes outgoing email to the process log instead of sending it.
// Used when no API key is configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, email Email) error {
	to := ""
	if len(email.To) > 0 {
		to = email.To[0].Email
	}
	log.Printf("mail (not sent, no provider configured): to=%s subject=%q", to, email.Subject)
	return nil
}
