// Package mailer sends transactional email.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Address is a mailbox with an optional display name.
type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Message is a single email.
type Message struct {
	From    Address   `json:"from"`
	To      []Address `json:"to"`
	Subject string    `json:"subject"`
	HTML    string    `json:"html,omitempty"`
	Text    string    `json:"text,omitempty"`
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// MailtrapMailer delivers through the Mailtrap send API.
type MailtrapMailer struct {
	httpClient *http.Client
	apiURL     string
	token      string
}

// NewMailtrap creates a Mailtrap mailer.
func NewMailtrap(httpClient *http.Client, apiURL, token string) *MailtrapMailer {
	return &MailtrapMailer{httpClient: httpClient, apiURL: apiURL, token: token}
}

// Send posts msg to the API. Any non-2xx answer is an error.
func (m *MailtrapMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return errors.New("mailtrap: message has no recipients")
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build mailtrap request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.token)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mailtrap returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}

// LogMailer writes messages to the application log instead of sending them.
// Used when no mail provider is configured.
type LogMailer struct {
	logger echo.Logger
}

// NewLogMailer creates a mailer that only logs.
func NewLogMailer(logger echo.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Infof("mail not sent (no provider configured): to=%v subject=%q\n%s", msg.To, msg.Subject, msg.Text)
	return nil
}
