package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"realnobroker/internal/adapters/observability"
	"realnobroker/internal/audio"
	"realnobroker/internal/domain"
)

// Narrator fetches synthesized speech, going through the cache first.
type Narrator struct {
	synth    domain.Synthesizer
	cache    domain.Cache
	voice    string
	cacheTTL time.Duration
}

func NewNarrator(s domain.Synthesizer, c domain.Cache, voice string, ttl time.Duration) *Narrator {
	return &Narrator{synth: s, cache: c, voice: voice, cacheTTL: ttl}
}

func (n *Narrator) Available() bool { return n.synth != nil && n.synth.Available() }

func (n *Narrator) cacheKey(text string) string {
	sum := sha1.Sum([]byte(text))
	return fmt.Sprintf("speech:%s:%s", n.voice, hex.EncodeToString(sum[:]))
}

// Audio returns the base64 PCM payload for text.
func (n *Narrator) Audio(ctx context.Context, text string) (string, error) {
	if !n.Available() {
		return "", fmt.Errorf("%w: speech credentials missing", domain.ErrIntegrationUnavailable)
	}
	key := n.cacheKey(text)
	if n.cache != nil {
		var cached string
		if ok, _ := n.cache.Get(ctx, key, &cached); ok && cached != "" {
			return cached, nil
		}
	}
	payload, err := n.synth.Synthesize(ctx, text, n.voice)
	if err != nil {
		return "", err
	}
	if payload == "" {
		return "", domain.ErrNoAudio
	}
	if n.cache != nil {
		_ = n.cache.Set(ctx, key, payload, int(n.cacheTTL.Seconds()))
	}
	return payload, nil
}

// Clip returns text as decoded audio. A payload that fails to decode is
// evicted from the cache so the next call synthesizes it again.
func (n *Narrator) Clip(ctx context.Context, text string) (domain.Clip, error) {
	payload, err := n.Audio(ctx, text)
	if err != nil {
		return domain.Clip{}, err
	}
	clip, err := audio.DecodeBase64PCM16(payload, domain.SpeechSampleRate, domain.SpeechChannels)
	if err != nil && n.cache != nil {
		key := n.cacheKey(text)
		if derr := n.cache.Del(ctx, key); derr != nil {
			log.Warn().Err(derr).Str("key", key).Msg("evict corrupt speech payload")
		} else {
			log.Warn().Err(err).Str("key", key).Msg("corrupt speech payload evicted")
		}
	}
	return clip, err
}

// Warm makes sure text is in the cache, synthesizing it if needed.
func (n *Narrator) Warm(ctx context.Context, text string) error {
	_, err := n.Audio(ctx, text)
	return err
}

// Speaker is one listen button: at most one playback in flight at a time.
type Speaker struct {
	narrator *Narrator

	mu      sync.Mutex
	playing bool
}

func NewSpeaker(n *Narrator) *Speaker { return &Speaker{narrator: n} }

func (s *Speaker) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Speak reads text aloud into sink. If this speaker is already playing it
// does nothing and returns false. Otherwise the returned channel yields
// Started (unless credentials are missing), then exactly one Ended, and is
// closed. Failures never escape: they are logged and reported on Ended.
func (s *Speaker) Speak(ctx context.Context, text string, sink domain.AudioSink) (<-chan domain.SpeechEvent, bool) {
	s.mu.Lock()
	if s.playing {
		s.mu.Unlock()
		return nil, false
	}
	s.playing = true
	s.mu.Unlock()

	events := make(chan domain.SpeechEvent, 2)
	go func() {
		defer close(events)
		err := s.play(ctx, text, sink, events)
		if err != nil {
			log.Error().Err(err).Msg("error generating speech")
			observability.ObserveSpeech("error")
		} else {
			observability.ObserveSpeech("ok")
		}
		// Ended is queued before the speaker reads as idle.
		s.mu.Lock()
		events <- domain.SpeechEvent{Kind: domain.SpeechEnded, Err: err}
		s.playing = false
		s.mu.Unlock()
	}()
	return events, true
}

func (s *Speaker) play(ctx context.Context, text string, sink domain.AudioSink, events chan<- domain.SpeechEvent) (err error) {
	if !s.narrator.Available() {
		return fmt.Errorf("%w: API key is missing", domain.ErrIntegrationUnavailable)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("speech playback panicked: %v", r)
		}
	}()
	events <- domain.SpeechEvent{Kind: domain.SpeechStarted}

	clip, err := s.narrator.Clip(ctx, text)
	if err != nil {
		return err
	}
	return sink.Play(ctx, clip)
}
