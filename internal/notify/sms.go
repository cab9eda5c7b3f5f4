package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SMSSender delivers a code by text message.
type SMSSender interface {
	SendCode(ctx context.Context, phone, code string) error
}

// TwoFactorSMS uses the 2Factor.in OTP endpoint.
type TwoFactorSMS struct {
	apiKey      string
	baseURL     string
	countryCode string
	httpClient  *http.Client
}

func NewTwoFactorSMS(apiKey, baseURL string) (*TwoFactorSMS, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("missing SMS_API_KEY")
	}
	if baseURL == "" {
		baseURL = "https://2factor.in"
	}
	return &TwoFactorSMS{
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		countryCode: "+90",
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (s *TwoFactorSMS) SendCode(ctx context.Context, phone, code string) error {
	endpoint := fmt.Sprintf("%s/API/V1/%s/SMS/%s/%s/%s",
		s.baseURL,
		url.PathEscape(s.apiKey),
		url.PathEscape(s.countryCode+phone),
		url.PathEscape(code),
		url.PathEscape("Verification code"),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return doRequest(s.httpClient, req, "2factor")
}
