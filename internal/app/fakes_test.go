package app_test

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"sync"

	"realnobroker/internal/domain"
)

// ---- fakes ----

type fakeCheckout struct {
	mu    sync.Mutex
	err   error
	calls []domain.CheckoutRequest
	// block, when set, holds Open until it is closed.
	block chan struct{}
}

func (f *fakeCheckout) Open(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutSession, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.err != nil {
		return domain.CheckoutSession{}, f.err
	}
	return domain.CheckoutSession{
		OrderID:     "order_" + req.ListingID,
		KeyID:       "rzp_test",
		Amount:      req.Amount,
		Currency:    req.Currency,
		Name:        req.Name,
		Description: req.Description,
	}, nil
}

func (f *fakeCheckout) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []domain.Notice
}

func (n *recordingNotifier) Notify(x domain.Notice) {
	n.mu.Lock()
	n.notices = append(n.notices, x)
	n.mu.Unlock()
}

func (n *recordingNotifier) All() []domain.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Notice(nil), n.notices...)
}

type fakeSynth struct {
	mu        sync.Mutex
	key       string
	payload   string
	err       error
	requests  int
	lastVoice string
	// gate, when set, holds Synthesize until it is closed.
	gate chan struct{}
}

func (f *fakeSynth) Available() bool { return f.key != "" }

func (f *fakeSynth) Synthesize(ctx context.Context, text, voice string) (string, error) {
	f.mu.Lock()
	f.requests++
	f.lastVoice = voice
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return f.payload, f.err
}

func (f *fakeSynth) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

type fakeSink struct {
	mu    sync.Mutex
	clips []domain.Clip
	err   error
	// onPlay, when set, runs after the clip is recorded.
	onPlay func()
}

func (s *fakeSink) Play(ctx context.Context, c domain.Clip) error {
	s.mu.Lock()
	s.clips = append(s.clips, c)
	err, hook := s.err, s.onPlay
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return err
}

func (s *fakeSink) Plays() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clips)
}

type fakeCache struct {
	mu    sync.Mutex
	store map[string]string
	dels  int
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	*(dst.(*string)) = v
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string]string{}
	}
	c.store[key] = v.(string)
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	c.dels++
	return nil
}

func (c *fakeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.store)
}

// pcmPayload encodes samples as base64 16-bit little-endian PCM.
func pcmPayload(samples ...int16) string {
	b := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(b[2*i:], uint16(s))
	}
	return base64.StdEncoding.EncodeToString(b)
}
