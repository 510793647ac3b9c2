package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"realnobroker/internal/adapters/observability"
	"realnobroker/internal/domain"
)

const DefaultBase = "https://api.razorpay.com/v1"

// Client creates orders for the browser checkout widget. It never captures
// or verifies payments: the widget's success callback is taken as proof.
type Client struct {
	base      string
	hc        *http.Client
	keyID     string
	keySecret string
	rl        *rate.Limiter
}

func New(base, keyID, keySecret string) *Client {
	if base == "" {
		base = DefaultBase
	}
	return &Client{
		base:      strings.TrimRight(base, "/"),
		hc:        &http.Client{Timeout: 15 * time.Second},
		keyID:     keyID,
		keySecret: keySecret,
		rl:        rate.NewLimiter(rate.Limit(10), 10),
	}
}

func (c *Client) Available() bool { return c.keyID != "" && c.keySecret != "" }

type orderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// Open creates an order for req and returns the widget configuration.
func (c *Client) Open(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutSession, error) {
	if !c.Available() {
		return domain.CheckoutSession{}, fmt.Errorf("%w: razorpay keys are missing", domain.ErrIntegrationUnavailable)
	}
	if err := c.rl.Wait(ctx); err != nil {
		return domain.CheckoutSession{}, err
	}

	payload, err := json.Marshal(orderRequest{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  receipt(req.ListingID),
		Notes:    map[string]string{"listing_id": req.ListingID, "purpose": req.Description},
	})
	if err != nil {
		return domain.CheckoutSession{}, err
	}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/orders", bytes.NewReader(payload))
	if err != nil {
		return domain.CheckoutSession{}, err
	}
	hreq.SetBasicAuth(c.keyID, c.keySecret)
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(hreq)
	if err != nil {
		observability.ObserveExternal("razorpay", "orders", 0, time.Since(start))
		return domain.CheckoutSession{}, fmt.Errorf("%w: %v", domain.ErrIntegrationUnavailable, err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("razorpay", "orders", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.CheckoutSession{}, fmt.Errorf("%w: razorpay status %d: %s",
			domain.ErrIntegrationUnavailable, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var out orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.CheckoutSession{}, fmt.Errorf("%w: decode order: %v", domain.ErrIntegrationUnavailable, err)
	}

	return domain.CheckoutSession{
		OrderID:     out.ID,
		KeyID:       c.keyID,
		Amount:      out.Amount,
		Currency:    out.Currency,
		Name:        req.Name,
		Description: req.Description,
	}, nil
}

// receipt is capped at the provider's 40 character limit.
func receipt(listingID string) string {
	r := "unlock-" + listingID
	if len(r) > 40 {
		r = r[:40]
	}
	return r
}
