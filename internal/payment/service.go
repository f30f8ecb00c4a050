package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/sakthiish12/TodayAtSG/internal/config"
	"github.com/sakthiish12/TodayAtSG/internal/db"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("payment not found")

type Payment struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	EventID          *string   `json:"event_id,omitempty"`
	ProviderIntentID string    `json:"provider_intent_id"`
	AmountCents      int       `json:"amount_cents"`
	Currency         string    `json:"currency"`
	Status           string    `json:"status"`
	ClientSecret     string    `json:"client_secret,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type Service struct {
	db            db.Querier
	provider      Provider
	feeSGD        int
	webhookSecret []byte
}

func NewService(cfg config.Config, q db.Querier, provider Provider) *Service {
	return &Service{
		db:            q,
		provider:      provider,
		feeSGD:        cfg.EventSubmissionFeeSGD,
		webhookSecret: []byte(cfg.PaymentWebhookSecret),
	}
}

// FeeSGD is the listing fee for user-submitted events.
func (s *Service) FeeSGD() int { return s.feeSGD }

// CreateSubmissionIntent charges the listing fee for one submitted
// event. Verified event organizers list for free; their payment row is
// recorded as waived so the approval flow stays uniform.
func (s *Service) CreateSubmissionIntent(ctx context.Context, userID, eventID string) (Payment, error) {
	var isOrganizer bool
	row := s.db.QueryRow(ctx, `SELECT is_event_organizer FROM users WHERE id = $1 AND is_active`, userID)
	if err := row.Scan(&isOrganizer); err != nil {
		return Payment{}, err
	}

	p := Payment{
		ID:       uuid.NewString(),
		UserID:   userID,
		EventID:  &eventID,
		Currency: "SGD",
	}

	if isOrganizer {
		p.Status = "waived"
		p.ProviderIntentID = "waived-" + p.ID
	} else {
		intent, err := s.provider.CreateIntent(ctx, s.feeSGD*100, "sgd", "TodayAtSG event listing fee")
		if err != nil {
			return Payment{}, err
		}
		p.ProviderIntentID = intent.ID
		p.AmountCents = intent.AmountCents
		p.Status = "pending"
		p.ClientSecret = intent.ClientSecret
	}

	row = s.db.QueryRow(ctx, `
		INSERT INTO payments (id, user_id, event_id, provider_intent_id, amount_cents, currency, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at
	`, p.ID, p.UserID, p.EventID, p.ProviderIntentID, p.AmountCents, p.Currency, p.Status)
	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return Payment{}, err
	}
	return p, nil
}

// Confirm re-checks the provider and stores the final status.
func (s *Service) Confirm(ctx context.Context, intentID string) (Payment, error) {
	intent, err := s.provider.GetIntent(ctx, intentID)
	if err != nil {
		return Payment{}, err
	}

	status := "pending"
	switch intent.Status {
	case "succeeded":
		status = "succeeded"
	case "canceled", "failed":
		status = "failed"
	}
	return s.setStatus(ctx, intentID, status)
}

// VerifyWebhook checks the HMAC signature the provider sends.
func (s *Service) VerifyWebhook(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, s.webhookSecret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ApplyWebhook records the status change pushed by the provider.
func (s *Service) ApplyWebhook(ctx context.Context, intentID, eventType string) (Payment, error) {
	switch eventType {
	case "payment_intent.succeeded":
		return s.setStatus(ctx, intentID, "succeeded")
	case "payment_intent.payment_failed", "payment_intent.canceled":
		return s.setStatus(ctx, intentID, "failed")
	}
	return Payment{}, errors.New("unhandled event type: " + eventType)
}

func (s *Service) setStatus(ctx context.Context, intentID, status string) (Payment, error) {
	var p Payment
	row := s.db.QueryRow(ctx, `
		UPDATE payments SET status = $2, updated_at = now()
		WHERE provider_intent_id = $1
		RETURNING id, user_id, event_id, provider_intent_id, amount_cents, currency, status, created_at, updated_at
	`, intentID, status)
	err := row.Scan(&p.ID, &p.UserID, &p.EventID, &p.ProviderIntentID,
		&p.AmountCents, &p.Currency, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Payment{}, ErrNotFound
	}
	return p, nil
}
