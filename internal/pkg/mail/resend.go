package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const resendEndpoint = "https://api.resend.com/emails"

var (
	// ErrResendAPIKeyRequired is returned when the API key is missing.
	ErrResendAPIKeyRequired = errors.New("resend api key is required")
	// ErrResendNoRecipients is returned when To is empty.
	ErrResendNoRecipients = errors.New("no recipients provided")
	// ErrResendNoSender is returned when both Message.From and the configured default From are empty.
	ErrResendNoSender = errors.New("no sender provided")
)

// Resend is a Mail implementation backed by the Resend HTTP API.
type Resend struct {
	apiKey      string
	defaultFrom string
	client      *http.Client
}

// ResendConfig configures the Resend implementation.
type ResendConfig struct {
	// APIKey authenticates against the Resend API.
	APIKey string
	// From is the default sender when Message.From is empty.
	From string
	// Timeout bounds each API call; defaults to 10s when zero.
	Timeout time.Duration
}

// NewResend constructs a Resend mail sender.
func NewResend(cfg ResendConfig) (*Resend, error) {
	if cfg.APIKey == "" {
		return nil, ErrResendAPIKeyRequired
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Resend{
		apiKey:      cfg.APIKey,
		defaultFrom: cfg.From,
		client:      &http.Client{Timeout: timeout},
	}, nil
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Cc      []string `json:"cc,omitempty"`
	Bcc     []string `json:"bcc,omitempty"`
	Subject string   `json:"subject"`
	Text    string   `json:"text,omitempty"`
	HTML    string   `json:"html,omitempty"`
}

// Send delivers a message through the Resend API.
func (r *Resend) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrResendNoRecipients
	}

	from := msg.From
	if from == "" {
		from = r.defaultFrom
	}
	if from == "" {
		return ErrResendNoSender
	}

	body, err := json.Marshal(resendRequest{
		From:    from,
		To:      msg.To,
		Cc:      msg.Cc,
		Bcc:     msg.Bcc,
		Subject: msg.Subject,
		Text:    msg.TextBody,
		HTML:    msg.HTMLBody,
	})
	if err != nil {
		return fmt.Errorf("marshal resend request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendEndpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build resend request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("call resend api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("resend api status %d: %s", resp.StatusCode, detail)
	}

	return nil
}

// Close implements io.Closer for interface compatibility.
func (r *Resend) Close() error {
	return nil
}
