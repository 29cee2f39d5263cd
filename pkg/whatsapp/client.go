package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
)

const (
	sendPath            = "api/send"
	sendGroupPath       = "api/sendGroup"
	responseReadLimit   = 4096
	defaultTimeout      = 10 * time.Second
	gatewayStatusFailed = "error"
)

var (
	errBaseURLRequired  = errors.New("whatsapp gateway base url is required")
	errDeviceIDRequired = errors.New("whatsapp device id is required")
)

// Message is a single outbound text. Group messages address a group JID instead of a phone number.
type Message struct {
	To      string
	Text    string
	IsGroup bool
}

// Client posts form-encoded messages to the WhatsApp gateway.
type Client struct {
	httpClient *http.Client
	baseURL    string
	deviceID   string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient builds a gateway client bound to one sending device.
func NewClient(baseURL, deviceID string, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errBaseURLRequired
	}
	device := strings.TrimSpace(deviceID)
	if device == "" {
		return nil, errDeviceIDRequired
	}

	client := &Client{
		baseURL:    base,
		deviceID:   device,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Send delivers msg. Any non-2xx response or a body reporting status "error" is a GATEWAY_ERROR.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "whatsapp client not configured")
	}
	to := strings.TrimSpace(msg.To)
	if to == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient is required")
	}
	if strings.TrimSpace(msg.Text) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "message text is required")
	}

	form := url.Values{}
	form.Set("device_id", c.deviceID)
	form.Set("message", msg.Text)
	path := sendPath
	if msg.IsGroup {
		path = sendGroupPath
		form.Set("group", to)
	} else {
		form.Set("number", to)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+path, strings.NewReader(form.Encode()))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeGateway, err, "build gateway request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeGateway, err, "execute gateway request")
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, responseReadLimit))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return pkgerrors.Wrap(pkgerrors.CodeGateway,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			"gateway rejected message")
	}

	var result struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if len(body) > 0 && json.Unmarshal(body, &result) == nil && strings.EqualFold(result.Status, gatewayStatusFailed) {
		return pkgerrors.Wrap(pkgerrors.CodeGateway, errors.New(result.Message), "gateway reported error status")
	}
	return nil
}
