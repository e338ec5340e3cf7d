package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

const (
	addressScheme  = "whatsapp:"
	defaultTimeout = 10 * time.Second
	maxResponse    = 64 << 10
)

// ProviderError is returned when the provider answered with a non-success status.
type ProviderError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// Message is an outbound WhatsApp message addressed to a canonical phone.
// A non-empty ContentSID sends a template with positional ContentVariables;
// otherwise Body is sent as session text.
type Message struct {
	To               string
	Body             string
	ContentSID       string
	ContentVariables map[string]string
}

// SendResult carries the provider-assigned identifier of an accepted message.
type SendResult struct {
	SID    string
	Status string
}

// Client sends messages through the messaging provider.
type Client interface {
	Send(ctx context.Context, msg Message) (*SendResult, error)
}

// Options configure HTTPClient.
type Options struct {
	BaseURL    string
	AccountSID string
	AuthToken  string
	From       string
	Timeout    time.Duration
}

// HTTPClient implements Client against the Twilio Messages API.
type HTTPClient struct {
	endpoint   *url.URL
	accountSID string
	authToken  string
	from       string
	httpClient *http.Client
	logger     *slog.Logger
}

type sendResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

type errorResponse struct {
	Code    json.RawMessage `json:"code"`
	Message string          `json:"message"`
}

// code renders the provider code whether it was sent as a number or a string.
func (r errorResponse) code() string {
	var s string
	if json.Unmarshal(r.Code, &s) == nil {
		return s
	}
	if raw := strings.TrimSpace(string(r.Code)); raw != "null" {
		return raw
	}
	return ""
}

// NewHTTPClient creates a provider client authenticated with HTTP basic auth.
func NewHTTPClient(opts Options, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse provider url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("provider url must be absolute")
	}
	if opts.AccountSID == "" || opts.AuthToken == "" {
		return nil, fmt.Errorf("provider credentials must be provided")
	}
	if opts.From == "" {
		return nil, fmt.Errorf("sender number must be provided")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	endpoint := *parsed
	endpoint.Path = path.Join(endpoint.Path, "/2010-04-01/Accounts", opts.AccountSID, "Messages.json")

	return &HTTPClient{
		endpoint:   &endpoint,
		accountSID: opts.AccountSID,
		authToken:  opts.AuthToken,
		from:       opts.From,
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Send posts a message and returns the provider message SID.
func (c *HTTPClient) Send(ctx context.Context, msg Message) (*SendResult, error) {
	form := url.Values{}
	form.Set("To", Address(msg.To))
	form.Set("From", Address(c.from))
	if msg.ContentSID != "" {
		vars, err := json.Marshal(msg.ContentVariables)
		if err != nil {
			return nil, fmt.Errorf("encode content variables: %w", err)
		}
		form.Set("ContentSid", msg.ContentSID)
		form.Set("ContentVariables", string(vars))
	} else {
		form.Set("Body", msg.Body)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		perr := &ProviderError{StatusCode: resp.StatusCode, Message: resp.Status}
		var data errorResponse
		if json.Unmarshal(body, &data) == nil {
			perr.Code = data.code()
			if data.Message != "" {
				perr.Message = data.Message
			}
		}
		c.logger.Error("provider rejected message",
			slog.Int("status", resp.StatusCode),
			slog.String("code", perr.Code),
			slog.String("message", perr.Message),
		)
		return nil, perr
	}

	var data sendResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}
	if data.SID == "" {
		return nil, fmt.Errorf("provider response carries no message sid")
	}
	return &SendResult{SID: data.SID, Status: data.Status}, nil
}

// Address renders a phone number in the channel's addressing form, "whatsapp:+<digits>".
func Address(number string) string {
	number = strings.TrimPrefix(number, addressScheme)
	if !strings.HasPrefix(number, "+") {
		number = "+" + number
	}
	return addressScheme + number
}
