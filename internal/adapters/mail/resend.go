package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"herald/pkg/errors"
	"herald/pkg/logger"
)

const resendAPIURL = "https://api.resend.com/emails"

// Client sends digests through the Resend email API.
type Client struct {
	apiKey  string
	from    string
	to      string
	baseURL string
	http    *http.Client
	log     *logger.Logger
}

// NewClient creates a Resend mail client.
func NewClient(apiKey, from, to string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		from:    from,
		to:      to,
		baseURL: resendAPIURL,
		http:    &http.Client{Timeout: timeout},
		log:     logger.Get().With("component", "resend_mail"),
	}
}

// Name identifies the delivery channel in logs and errors.
func (c *Client) Name() string { return "email" }

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

// Deliver sends the digest body as a plain-text email.
func (c *Client) Deliver(ctx context.Context, subject, body string) error {
	payload, err := json.Marshal(sendRequest{
		From:    c.from,
		To:      []string{c.to},
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		return errors.Wrap(err, "marshal resend request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "create resend request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "send resend request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errors.Wrapf(errors.ErrDeliveryFailed, "resend returned %d: %s", resp.StatusCode, string(respBody))
	}

	c.log.Infow("Digest email sent", "to", c.to)
	return nil
}
