// Package wavsink plays speech by streaming it to an HTTP client as WAV.
package wavsink

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"realnobroker/internal/audio"
	"realnobroker/internal/domain"
)

type Sink struct {
	w http.ResponseWriter

	mu      sync.Mutex
	written bool
}

func New(w http.ResponseWriter) *Sink { return &Sink{w: w} }

func (s *Sink) Play(ctx context.Context, c domain.Clip) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.w.Header().Set("Content-Type", "audio/wav")
	s.w.Header().Set("Content-Length", strconv.Itoa(44+c.Frames()*len(c.Channels)*2))
	s.w.WriteHeader(http.StatusOK)
	s.written = true
	if err := audio.WriteWAV(s.w, c); err != nil {
		return err
	}
	if f, ok := s.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

// Written reports whether any part of the response has been sent.
func (s *Sink) Written() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}
