package notify

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
)

const defaultTwilioBaseURL = "https://api.twilio.com"

// TwilioConfig holds the Twilio account used for WhatsApp delivery.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	// BaseURL overrides the API host, mainly for tests.
	BaseURL string
	Timeout time.Duration
}

// TwilioTransport sends WhatsApp messages through the Twilio Messages API.
type TwilioTransport struct {
	cfg    TwilioConfig
	client *http.Client
}

func NewTwilioTransport(cfg TwilioConfig) *TwilioTransport {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultTwilioBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &TwilioTransport{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

func (t *TwilioTransport) Name() string { return ProviderTwilio }

// TwilioError is a non-2xx answer from the API.
type TwilioError struct {
	Status  int
	Code    int
	Message string
}

func (e *TwilioError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("twilio: http %d", e.Status)
	}
	return fmt.Sprintf("twilio: http %d: code %d: %s", e.Status, e.Code, e.Message)
}

var errTwilioConfig = errors.New("twilio: account sid, auth token, from and to are required")

func (t *TwilioTransport) Send(ctx context.Context, text, from, to string) (string, error) {
	if t.cfg.AccountSID == "" || t.cfg.AuthToken == "" || from == "" || to == "" {
		return "", errTwilioConfig
	}

	form := url.Values{}
	form.Set("From", whatsappAddress(from))
	form.Set("To", whatsappAddress(to))
	form.Set("Body", text)

	endpoint := strings.TrimRight(t.cfg.BaseURL, "/") + "/2010-04-01/Accounts/" + url.PathEscape(t.cfg.AccountSID) + "/Messages.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(t.cfg.AccountSID, t.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	res, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", err
	}

	if res.StatusCode >= 300 {
		apiErr := &TwilioError{Status: res.StatusCode}
		var payload struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &payload) == nil {
			apiErr.Code, apiErr.Message = payload.Code, payload.Message
		}
		return "", apiErr
	}

	var msg struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(body, &msg); err != nil {
		return "", fmt.Errorf("twilio: decode response: %w", err)
	}
	if msg.SID == "" {
		return "", errors.New("twilio: response without sid")
	}
	return msg.SID, nil
}

// whatsappAddress adds the channel prefix Twilio expects on WhatsApp
// numbers.
func whatsappAddress(s string) string {
	if strings.HasPrefix(s, "whatsapp:") {
		return s
	}
	return "whatsapp:" + s
}
