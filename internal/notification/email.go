package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Email is the payload accepted by the email delivery API.
type Email struct {
	To      string `json:"to" binding:"required,email"`
	Subject string `json:"subject" binding:"required"`
	HTML    string `json:"html" binding:"required"`
}

// EmailSender delivers one email and returns the provider's response body.
type EmailSender interface {
	Send(ctx context.Context, e Email) (json.RawMessage, error)
}

// EmailError is returned when the provider cannot be reached or rejects the
// message. StatusCode is zero for transport failures.
type EmailError struct {
	StatusCode int
	Err        error
}

func (e *EmailError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("email API responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("error while calling the email API: %v", e.Err)
}

func (e *EmailError) Unwrap() error { return e.Err }

// EmailClient posts emails as JSON to an HTTP endpoint.
type EmailClient struct {
	url  string
	http *http.Client
}

// NewEmailClient creates a client for the email API at url.
func NewEmailClient(url string, timeout time.Duration) *EmailClient {
	return &EmailClient{url: url, http: &http.Client{Timeout: timeout}}
}

// Send posts e. A non-JSON response is wrapped as {"message": body}.
func (c *EmailClient) Send(ctx context.Context, e Email) (json.RawMessage, error) {
	if c.url == "" {
		return nil, &EmailError{Err: fmt.Errorf("email API url is not configured")}
	}
	body, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, &EmailError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &EmailError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &EmailError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &EmailError{StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", strings.TrimSpace(string(raw)))}
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") && json.Valid(raw) {
		return raw, nil
	}
	return json.Marshal(map[string]string{"message": string(raw)})
}
