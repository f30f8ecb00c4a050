package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sakthiish12/TodayAtSG/internal/config"
)

// Intent is the provider's view of one payment attempt.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret,omitempty"`
	AmountCents  int    `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

// Provider abstracts the external payment API so tests can stub it.
type Provider interface {
	CreateIntent(ctx context.Context, amountCents int, currency, description string) (Intent, error)
	GetIntent(ctx context.Context, intentID string) (Intent, error)
}

// HTTPProvider talks to the configured payment API over JSON.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPProvider(cfg config.Config) *HTTPProvider {
	return &HTTPProvider{
		baseURL: cfg.PaymentAPIURL,
		apiKey:  cfg.PaymentAPIKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *HTTPProvider) CreateIntent(ctx context.Context, amountCents int, currency, description string) (Intent, error) {
	payload := map[string]any{
		"amount":      amountCents,
		"currency":    currency,
		"description": description,
	}
	return p.do(ctx, http.MethodPost, "/v1/payment_intents", payload)
}

func (p *HTTPProvider) GetIntent(ctx context.Context, intentID string) (Intent, error) {
	return p.do(ctx, http.MethodGet, "/v1/payment_intents/"+intentID, nil)
}

func (p *HTTPProvider) do(ctx context.Context, method, path string, payload any) (Intent, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Intent{}, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return Intent{}, err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Intent{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Intent{}, fmt.Errorf("payment api: status %d", resp.StatusCode)
	}

	var intent Intent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return Intent{}, err
	}
	return intent, nil
}
