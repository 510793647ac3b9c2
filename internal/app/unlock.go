package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"realnobroker/internal/adapters/observability"
	"realnobroker/internal/domain"
)

// UnlockPrice is what one contact unlock costs.
type UnlockPrice struct {
	Amount   int64 // minor units
	Currency string
}

var DefaultUnlockPrice = UnlockPrice{Amount: 1000, Currency: "INR"}

const (
	checkoutName        = "RealNoBroker"
	checkoutDescription = "Unlock Owner Contact Details"
)

// UnlockGate tracks, per listing, whether the contact number has been paid
// for. Unlocked is terminal; Pending is held by exactly one checkout.
type UnlockGate struct {
	checkout domain.Checkout
	notifier domain.Notifier
	price    UnlockPrice

	mu     sync.Mutex
	states map[string]domain.UnlockState
}

func NewUnlockGate(c domain.Checkout, n domain.Notifier, price UnlockPrice) *UnlockGate {
	return &UnlockGate{checkout: c, notifier: n, price: price, states: map[string]domain.UnlockState{}}
}

func (g *UnlockGate) State(listingID string) domain.UnlockState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.states[listingID]
}

// Begin moves a Locked listing to Pending and opens a checkout for it.
// If the provider cannot be reached the listing goes straight back to
// Locked and the user is told.
func (g *UnlockGate) Begin(ctx context.Context, listingID string) (domain.CheckoutSession, error) {
	g.mu.Lock()
	switch g.states[listingID] {
	case domain.Pending:
		g.mu.Unlock()
		return domain.CheckoutSession{}, domain.ErrUnlockPending
	case domain.Unlocked:
		g.mu.Unlock()
		return domain.CheckoutSession{}, domain.ErrAlreadyUnlocked
	}
	g.states[listingID] = domain.Pending
	g.mu.Unlock()

	if g.checkout == nil {
		return domain.CheckoutSession{}, g.abort(listingID, domain.ErrIntegrationUnavailable)
	}
	sess, err := g.checkout.Open(ctx, domain.CheckoutRequest{
		ListingID:   listingID,
		Amount:      g.price.Amount,
		Currency:    g.price.Currency,
		Name:        checkoutName,
		Description: checkoutDescription,
	})
	if err != nil {
		return domain.CheckoutSession{}, g.abort(listingID, err)
	}
	log.Info().Str("listing_id", listingID).Str("order_id", sess.OrderID).Msg("unlock checkout opened")
	return sess, nil
}

func (g *UnlockGate) abort(listingID string, cause error) error {
	g.mu.Lock()
	g.states[listingID] = domain.Locked
	g.mu.Unlock()

	log.Warn().Err(cause).Str("listing_id", listingID).Msg("unlock checkout unavailable")
	observability.ObserveUnlock("unavailable")
	g.notify(domain.Notice{
		Level:     domain.NoticeError,
		ListingID: listingID,
		Message:   "Payment provider failed to load. Please check your internet connection.",
	})
	return fmt.Errorf("%w: %v", domain.ErrIntegrationUnavailable, cause)
}

// Resolve applies the provider's verdict to a Pending listing. Outcomes for
// listings that are not Pending are rejected and change nothing.
func (g *UnlockGate) Resolve(listingID string, o domain.PaymentOutcome) (domain.UnlockState, error) {
	g.mu.Lock()
	cur := g.states[listingID]
	if cur != domain.Pending {
		g.mu.Unlock()
		return cur, domain.ErrNoPendingUnlock
	}
	next := domain.Locked
	if o.Kind == domain.PaymentSucceeded {
		next = domain.Unlocked
	}
	g.states[listingID] = next
	g.mu.Unlock()

	observability.ObserveUnlock(o.Kind.String())
	switch o.Kind {
	case domain.PaymentSucceeded:
		log.Info().Str("listing_id", listingID).Str("payment_ref", o.PaymentRef).Msg("contact unlocked")
	case domain.PaymentFailed:
		log.Warn().Str("listing_id", listingID).Str("reason", o.Reason).Msg("unlock payment failed")
		g.notify(domain.Notice{
			Level:     domain.NoticeError,
			ListingID: listingID,
			Message:   "Payment Failed: " + o.Reason,
		})
	default:
		log.Info().Str("listing_id", listingID).Msg("unlock checkout dismissed")
	}
	return next, nil
}

// ContactNumber reveals l's contact number once it is unlocked.
func (g *UnlockGate) ContactNumber(l domain.Listing) (string, error) {
	if g.State(l.ID) != domain.Unlocked {
		return "", domain.ErrContactLocked
	}
	return l.ContactNumber, nil
}

func (g *UnlockGate) notify(n domain.Notice) {
	if g.notifier != nil {
		g.notifier.Notify(n)
	}
}
