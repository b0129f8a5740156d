package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/local1284/membership/internal/config"
	"go.uber.org/zap"
)

// ErrSMSDisabled is returned when no provider is configured.
var ErrSMSDisabled = errors.New("sms provider is not configured")

// SMSClient sends a single text message and returns the provider's
// message identifier.
type SMSClient interface {
	Send(ctx context.Context, to, body string) (string, error)
}

// HTTPSMSClient talks to a Twilio-compatible messaging endpoint.
type HTTPSMSClient struct {
	baseURL    string
	accountSID string
	authToken  string
	from       string
	httpClient *http.Client
	log        *zap.Logger
}

func NewHTTPSMSClient(cfg *config.Config, log *zap.Logger) *HTTPSMSClient {
	return &HTTPSMSClient{
		baseURL:    strings.TrimRight(cfg.SMSProviderURL, "/"),
		accountSID: cfg.SMSAccountSID,
		authToken:  cfg.SMSAuthToken,
		from:       cfg.SMSFromNumber,
		httpClient: &http.Client{
			Timeout: cfg.SMSSendTimeout,
		},
		log: log,
	}
}

type providerResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

func (c *HTTPSMSClient) Send(ctx context.Context, to, body string) (string, error) {
	if c.baseURL == "" {
		return "", ErrSMSDisabled
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.from)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sms provider unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("sms provider returned %d: %s", resp.StatusCode, string(b))
	}

	var result providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.ErrorMessage != "" {
		return result.SID, fmt.Errorf("sms provider rejected message: %s", result.ErrorMessage)
	}
	return result.SID, nil
}
