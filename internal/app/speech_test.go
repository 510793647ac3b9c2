package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"realnobroker/internal/app"
	"realnobroker/internal/domain"
)

func collect(t *testing.T, events <-chan domain.SpeechEvent) []domain.SpeechEvent {
	t.Helper()
	var out []domain.SpeechEvent
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatalf("speech events did not finish")
		}
	}
}

func TestSpeak_PlaysDecodedAudio(t *testing.T) {
	synth := &fakeSynth{key: "k", payload: pcmPayload(0, 16384, -32768)}
	sink := &fakeSink{}
	sp := app.NewSpeaker(app.NewNarrator(synth, nil, "Kore", time.Minute))

	events, ok := sp.Speak(context.Background(), "hello", sink)
	if !ok {
		t.Fatalf("first speak must start")
	}
	evs := collect(t, events)
	if len(evs) != 2 || evs[0].Kind != domain.SpeechStarted || evs[1].Kind != domain.SpeechEnded || evs[1].Err != nil {
		t.Fatalf("unexpected lifecycle %+v", evs)
	}
	if sink.Plays() != 1 {
		t.Fatalf("expected one playback")
	}
	clip := sink.clips[0]
	if clip.SampleRate != 24000 || len(clip.Channels) != 1 || clip.Channels[0][1] != 0.5 || clip.Channels[0][2] != -1 {
		t.Fatalf("unexpected clip %+v", clip)
	}
	if synth.lastVoice != "Kore" {
		t.Fatalf("voice not forwarded: %q", synth.lastVoice)
	}
	if sp.Playing() {
		t.Fatalf("speaker should be idle after ended")
	}
}

func TestSpeak_SecondCallWhilePlayingIsNoop(t *testing.T) {
	synth := &fakeSynth{key: "k", payload: pcmPayload(1, 2), gate: make(chan struct{})}
	sp := app.NewSpeaker(app.NewNarrator(synth, nil, "Kore", time.Minute))

	events, ok := sp.Speak(context.Background(), "first", &fakeSink{})
	if !ok {
		t.Fatalf("first speak must start")
	}
	if ev := <-events; ev.Kind != domain.SpeechStarted {
		t.Fatalf("expected started, got %+v", ev)
	}

	again, ok := sp.Speak(context.Background(), "second", &fakeSink{})
	if ok || again != nil {
		t.Fatalf("second speak must be a no-op")
	}
	if !sp.Playing() {
		t.Fatalf("speaker should still be playing")
	}

	close(synth.gate)
	collect(t, events)
	if synth.Requests() != 1 {
		t.Fatalf("expected exactly one synthesis request, got %d", synth.Requests())
	}
	if _, ok := sp.Speak(context.Background(), "third", &fakeSink{}); !ok {
		t.Fatalf("speaker should accept again after ended")
	}
}

func TestSpeak_IdleOnlyAfterEndedIsQueued(t *testing.T) {
	synth := &fakeSynth{key: "k", payload: pcmPayload(1, 2)}
	sp := app.NewSpeaker(app.NewNarrator(synth, nil, "Kore", time.Minute))
	played := make(chan struct{})
	var once sync.Once
	sink := &fakeSink{onPlay: func() { once.Do(func() { close(played) }) }}

	events, ok := sp.Speak(context.Background(), "first", sink)
	if !ok {
		t.Fatalf("first speak must start")
	}
	if ev := <-events; ev.Kind != domain.SpeechStarted {
		t.Fatalf("expected started, got %+v", ev)
	}
	<-played

	// the first Speak that is accepted again must find Ended already queued
	deadline := time.Now().Add(2 * time.Second)
	var second <-chan domain.SpeechEvent
	for second == nil {
		if time.Now().After(deadline) {
			t.Fatalf("speaker never went idle")
		}
		second, _ = sp.Speak(context.Background(), "second", sink)
	}
	select {
	case ev := <-events:
		if ev.Kind != domain.SpeechEnded {
			t.Fatalf("expected ended, got %+v", ev)
		}
	default:
		t.Fatalf("speaker accepted a new call before Ended was sent")
	}
	collect(t, second)
	if synth.Requests() != 2 {
		t.Fatalf("expected two synthesis requests, got %d", synth.Requests())
	}
}

func TestSpeak_FailuresEndQuietly(t *testing.T) {
	cases := map[string]struct {
		synth *fakeSynth
		sink  *fakeSink
		want  error
	}{
		"api error":    {&fakeSynth{key: "k", err: domain.ErrExternalCall}, &fakeSink{}, domain.ErrExternalCall},
		"empty audio":  {&fakeSynth{key: "k"}, &fakeSink{}, domain.ErrNoAudio},
		"decode error": {&fakeSynth{key: "k", payload: "!!not-base64"}, &fakeSink{}, nil},
		"sink error":   {&fakeSynth{key: "k", payload: pcmPayload(1)}, &fakeSink{err: errors.New("device gone")}, nil},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			sp := app.NewSpeaker(app.NewNarrator(tc.synth, nil, "Kore", time.Minute))
			events, ok := sp.Speak(context.Background(), "hello", tc.sink)
			if !ok {
				t.Fatalf("speak must start")
			}
			evs := collect(t, events)
			last := evs[len(evs)-1]
			if last.Kind != domain.SpeechEnded || last.Err == nil {
				t.Fatalf("expected ended with error, got %+v", evs)
			}
			if tc.want != nil && !errors.Is(last.Err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, last.Err)
			}
			if sp.Playing() {
				t.Fatalf("speaker stuck in playing state")
			}
		})
	}
}

func TestSpeak_MissingCredentialSkips(t *testing.T) {
	synth := &fakeSynth{payload: pcmPayload(1)}
	sink := &fakeSink{}
	sp := app.NewSpeaker(app.NewNarrator(synth, nil, "Kore", time.Minute))

	events, ok := sp.Speak(context.Background(), "hello", sink)
	if !ok {
		t.Fatalf("speak must accept the call")
	}
	evs := collect(t, events)
	if len(evs) != 1 || evs[0].Kind != domain.SpeechEnded || !errors.Is(evs[0].Err, domain.ErrIntegrationUnavailable) {
		t.Fatalf("expected a lone ended event, got %+v", evs)
	}
	if synth.Requests() != 0 || sink.Plays() != 0 {
		t.Fatalf("nothing should be requested or played")
	}
}

func TestNarrator_EvictsCorruptCachedPayload(t *testing.T) {
	synth := &fakeSynth{key: "k", payload: "!!not-base64"}
	cache := &fakeCache{}
	n := app.NewNarrator(synth, cache, "Kore", time.Hour)
	if err := n.Warm(context.Background(), "hello"); err != nil {
		t.Fatalf("warm: %v", err)
	}

	if _, err := n.Clip(context.Background(), "hello"); err == nil {
		t.Fatalf("expected decode error")
	}
	if cache.Len() != 0 || cache.dels != 1 {
		t.Fatalf("corrupt payload not evicted: len=%d dels=%d", cache.Len(), cache.dels)
	}

	synth.mu.Lock()
	synth.payload = pcmPayload(5)
	synth.mu.Unlock()
	clip, err := n.Clip(context.Background(), "hello")
	if err != nil || clip.Frames() != 1 {
		t.Fatalf("expected fresh clip, got %+v %v", clip, err)
	}
	if synth.Requests() != 2 || cache.Len() != 1 {
		t.Fatalf("expected resynthesis and recache: requests=%d len=%d", synth.Requests(), cache.Len())
	}
}

func TestNarrator_FreshCorruptPayloadIsNotKept(t *testing.T) {
	synth := &fakeSynth{key: "k", payload: "!!not-base64"}
	cache := &fakeCache{}
	n := app.NewNarrator(synth, cache, "Kore", time.Hour)

	if _, err := n.Clip(context.Background(), "hello"); err == nil {
		t.Fatalf("expected decode error")
	}
	if cache.Len() != 0 {
		t.Fatalf("corrupt payload left in cache")
	}
}

func TestNarrator_CachesPayload(t *testing.T) {
	synth := &fakeSynth{key: "k", payload: pcmPayload(7)}
	cache := &fakeCache{}
	n := app.NewNarrator(synth, cache, "Kore", time.Hour)

	for i := 0; i < 3; i++ {
		got, err := n.Audio(context.Background(), "same text")
		if err != nil || got != synth.payload {
			t.Fatalf("audio: %q %v", got, err)
		}
	}
	if synth.Requests() != 1 {
		t.Fatalf("expected one synthesis with cache, got %d", synth.Requests())
	}
	if err := n.Warm(context.Background(), "other text"); err != nil {
		t.Fatalf("warm: %v", err)
	}
	if len(cache.store) != 2 {
		t.Fatalf("expected two cached payloads, got %d", len(cache.store))
	}
}
