package domain

import "context"

// Checkout opens a payment for a contact unlock. The outcome arrives later
// through the provider's callback, not from Open.
type Checkout interface {
	Open(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
}

// Synthesizer turns text into base64-encoded 16-bit PCM at SpeechSampleRate.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) (string, error)
	Available() bool
}

// AudioSink plays a clip and returns once playback has finished.
type AudioSink interface {
	Play(ctx context.Context, c Clip) error
}

type Notifier interface {
	Notify(n Notice)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
