package app

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"realnobroker/internal/domain"
)

// Session is one visitor's view of the site: their filter, which contacts
// they have paid for, their listen buttons and the notices waiting for them.
type Session struct {
	*FilterState
	ID   string
	Gate *UnlockGate

	narrator *Narrator

	mu       sync.Mutex
	speakers map[string]*Speaker
	notices  []domain.Notice
	lastSeen time.Time
}

// Speaker returns the speaker behind the named button, creating it on first use.
func (s *Session) Speaker(button string) *Speaker {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.speakers[button]
	if !ok {
		sp = NewSpeaker(s.narrator)
		s.speakers[button] = sp
	}
	return sp
}

func (s *Session) Notify(n domain.Notice) {
	s.mu.Lock()
	s.notices = append(s.notices, n)
	s.mu.Unlock()
}

// DrainNotices returns pending notices oldest first and forgets them.
func (s *Session) DrainNotices() []domain.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notices
	s.notices = nil
	if out == nil {
		out = []domain.Notice{}
	}
	return out
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

type Sessions struct {
	checkout domain.Checkout
	narrator *Narrator
	price    UnlockPrice
	now      func() time.Time

	mu   sync.Mutex
	byID map[string]*Session
}

func NewSessions(c domain.Checkout, n *Narrator, price UnlockPrice) *Sessions {
	return &Sessions{checkout: c, narrator: n, price: price, now: time.Now, byID: map[string]*Session{}}
}

// WithClock swaps the time source used for idle tracking.
func (r *Sessions) WithClock(now func() time.Time) *Sessions {
	r.now = now
	return r
}

// Get returns the session for id. Unknown or empty ids never name a session:
// a fresh one is started under a server-minted id, which callers echo back.
func (r *Sessions) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if s, ok := r.byID[id]; ok {
		s.touch(now)
		return s
	}
	id = uuid.NewString()
	s := &Session{
		FilterState: NewFilterState(),
		ID:          id,
		narrator:    r.narrator,
		speakers:    map[string]*Speaker{},
		lastSeen:    now,
	}
	s.Gate = NewUnlockGate(r.checkout, s, r.price)
	r.byID[id] = s
	return s
}

// Sweep drops sessions idle for longer than maxIdle and reports how many went.
func (r *Sessions) Sweep(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	n := 0
	for id, s := range r.byID {
		if s.idleSince(now) > maxIdle {
			delete(r.byID, id)
			n++
		}
	}
	return n
}

func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}
