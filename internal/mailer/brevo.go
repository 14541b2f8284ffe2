// Package mailer sends transactional email through the Brevo API.
// Sends are best-effort side effects: callers decide whether a failure
// aborts the request or is only logged.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

const brevoAPIURL = "https://api.brevo.com/v3/smtp/email"

// Mailer is what the services consume; the zero-value Noop stands in
// when email is not configured or under test.
type Mailer interface {
	SendWelcome(ctx context.Context, toEmail, name string) error
	SendPasswordReset(ctx context.Context, toEmail, name, token string) error
	SendPasswordChanged(ctx context.Context, toEmail, name string) error
}

type Client struct {
	apiKey     string
	fromEmail  string
	fromName   string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	configured bool
}

func NewClient(apiKey, fromEmail, fromName string) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "brevo",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
	if apiKey != "" && fromEmail != "" && fromName != "" {
		c.apiKey = apiKey
		c.fromEmail = fromEmail
		c.fromName = fromName
		c.configured = true
	}
	return c
}

func (c *Client) IsConfigured() bool {
	return c.configured
}

type sendEmailReq struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HtmlContent string              `json:"htmlContent"`
}

func (c *Client) send(ctx context.Context, toEmail, subject, html string) error {
	if !c.configured {
		return fmt.Errorf("brevo client not configured, email to %s skipped", toEmail)
	}
	if toEmail == "" || subject == "" || html == "" {
		return errors.New("toEmail, subject, and html content cannot be empty")
	}

	_, err := c.breaker.Execute(func() (any, error) {
		reqBody := sendEmailReq{
			Sender:      map[string]string{"email": c.fromEmail, "name": c.fromName},
			To:          []map[string]string{{"email": toEmail}},
			Subject:     subject,
			HtmlContent: html,
		}
		jsonBody, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal email request body: %w", err)
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoAPIURL, bytes.NewReader(jsonBody))
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP request for Brevo: %w", err)
		}
		httpReq.Header.Set("api-key", c.apiKey)
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("brevo send email request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			var errorBody map[string]interface{}
			if decodeErr := json.NewDecoder(resp.Body).Decode(&errorBody); decodeErr != nil {
				return nil, fmt.Errorf("brevo API error: status %d", resp.StatusCode)
			}
			return nil, fmt.Errorf("brevo API error: status %d, body: %v", resp.StatusCode, errorBody)
		}
		return nil, nil
	})
	return err
}

func (c *Client) SendWelcome(ctx context.Context, toEmail, name string) error {
	html := fmt.Sprintf(`<h2>Welcome to Fixly, %s!</h2><p>Your account is ready. Post a job or start fixing today.</p>`, name)
	return c.send(ctx, toEmail, "Welcome to Fixly", html)
}

func (c *Client) SendPasswordReset(ctx context.Context, toEmail, name, token string) error {
	html := fmt.Sprintf(`<p>Hi %s,</p><p>Use this code to reset your Fixly password. It expires in 15 minutes.</p><p><b>%s</b></p><p>If you did not request this, you can ignore this email.</p>`, name, token)
	return c.send(ctx, toEmail, "Reset your Fixly password", html)
}

func (c *Client) SendPasswordChanged(ctx context.Context, toEmail, name string) error {
	html := fmt.Sprintf(`<p>Hi %s,</p><p>Your Fixly password was just changed. If this wasn't you, contact support immediately.</p>`, name)
	return c.send(ctx, toEmail, "Your Fixly password was changed", html)
}

// Noop satisfies Mailer when email is disabled.
type Noop struct{}

func (Noop) SendWelcome(context.Context, string, string) error         { return nil }
func (Noop) SendPasswordReset(context.Context, string, string, string) error {
	return nil
}
func (Noop) SendPasswordChanged(context.Context, string, string) error { return nil }
