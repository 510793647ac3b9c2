package domain

type UnlockState int

const (
	Locked UnlockState = iota
	Pending
	Unlocked
)

func (s UnlockState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Unlocked:
		return "unlocked"
	default:
		return "locked"
	}
}

type OutcomeKind int

const (
	PaymentSucceeded OutcomeKind = iota + 1
	PaymentFailed
	PaymentDismissed
)

func (k OutcomeKind) String() string {
	switch k {
	case PaymentSucceeded:
		return "succeeded"
	case PaymentFailed:
		return "failed"
	case PaymentDismissed:
		return "dismissed"
	default:
		return "unknown"
	}
}

// ParseOutcomeKind maps the callback wire value to an OutcomeKind; ok is
// false for anything unrecognised.
func ParseOutcomeKind(s string) (OutcomeKind, bool) {
	switch s {
	case "succeeded", "success":
		return PaymentSucceeded, true
	case "failed", "failure":
		return PaymentFailed, true
	case "dismissed", "cancelled":
		return PaymentDismissed, true
	}
	return 0, false
}

// PaymentOutcome is what the checkout widget reports back. PaymentRef is
// set only on success, Reason only on failure.
type PaymentOutcome struct {
	Kind       OutcomeKind
	PaymentRef string
	Reason     string
}

func Succeeded(ref string) PaymentOutcome {
	return PaymentOutcome{Kind: PaymentSucceeded, PaymentRef: ref}
}
func Failed(reason string) PaymentOutcome { return PaymentOutcome{Kind: PaymentFailed, Reason: reason} }
func Dismissed() PaymentOutcome           { return PaymentOutcome{Kind: PaymentDismissed} }

type CheckoutRequest struct {
	ListingID   string
	Amount      int64 // minor units
	Currency    string
	Name        string
	Description string
}

// CheckoutSession is everything the browser needs to open the payment widget.
type CheckoutSession struct {
	OrderID     string `json:"order_id"`
	KeyID       string `json:"key"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice is a user-visible message, the server-side stand-in for an alert().
type Notice struct {
	Level     NoticeLevel `json:"level"`
	ListingID string      `json:"listing_id,omitempty"`
	Message   string      `json:"message"`
}
