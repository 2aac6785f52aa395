// internal/client/client.go

package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Options configures the backend client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
}

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: backend returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Client talks to the controller backend. Every request of one client
// carries the same X-Request-ID so backend logs can be tied to a session.
type Client struct {
	http      *resty.Client
	sessionID string
}

func New(opts Options) *Client {
	sessionID := uuid.NewString()
	http := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("X-Request-ID", sessionID)

	return &Client{http: http, sessionID: sessionID}
}

// SessionID is the request id sent with every call.
func (c *Client) SessionID() string {
	return c.sessionID
}

// FetchComponentForms returns the raw Components page descriptors.
func (c *Client) FetchComponentForms(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "/components/")
}

// FetchEventForms returns the raw Events page descriptors.
func (c *Client) FetchEventForms(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "/events/")
}

// PutComponents stores the component registry.
func (c *Client) PutComponents(ctx context.Context, body interface{}) error {
	return c.put(ctx, "/dataComponents", body)
}

// PutEvents stores the full definitions document under id.
func (c *Client) PutEvents(ctx context.Context, id string, body interface{}) error {
	return c.put(ctx, "/dataEvents/"+id, body)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	log.Debug().Str("path", path).Str("session", c.sessionID).Msg("Fetching form descriptors")
	resp, err := c.http.R().SetContext(ctx).Get(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Backend request failed")
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	if resp.IsError() {
		return nil, &StatusError{Method: "GET", Path: path, StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return resp.Body(), nil
}

func (c *Client) put(ctx context.Context, path string, body interface{}) error {
	log.Info().Str("path", path).Str("session", c.sessionID).Msg("Submitting to backend")
	resp, err := c.http.R().SetContext(ctx).SetBody(body).Put(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Backend request failed")
		return fmt.Errorf("PUT %s: %w", path, err)
	}
	if resp.IsError() {
		log.Error().Int("status", resp.StatusCode()).Str("path", path).Msg("Backend rejected submission")
		return &StatusError{Method: "PUT", Path: path, StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	log.Info().Int("status", resp.StatusCode()).Str("path", path).Msg("Submission accepted")
	return nil
}
