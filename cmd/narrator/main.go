package main

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"realnobroker/internal/adapters/gemini"
	"realnobroker/internal/adapters/observability"
	redisad "realnobroker/internal/adapters/redis"
	"realnobroker/internal/app"
	"realnobroker/internal/domain"
	"realnobroker/internal/shared"
)

// narrator synthesizes the welcome message and every seed listing's
// narration into the speech cache, so first listens are instant.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Str("model", cfg.GeminiModel).
		Str("voice", cfg.GeminiVoice).
		Int("workers", cfg.NarratorWorkers).
		Msg("narrator starting")

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("redis ping failed")
	}
	log.Info().Msg("redis ping ok")

	tts := gemini.New(cfg.GeminiBase, cfg.GeminiKey, cfg.GeminiModel, cfg.GeminiRPS)
	if !tts.Available() {
		log.Fatal().Msg("GEMINI_API_KEY is required to warm the speech cache")
	}
	narrator := app.NewNarrator(tts, cache, cfg.GeminiVoice, cfg.SpeechCacheTTL)

	texts := []string{domain.WelcomeMessage, domain.FormAssistantMessage}
	for _, l := range domain.SeedListings() {
		texts = append(texts, l.SpeechText())
	}

	workers := cfg.NarratorWorkers
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	var failed int32

	for i, text := range texts {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(n int, text string) {
			defer wg.Done()
			defer sem.Release(int64(1))

			if err := narrator.Warm(ctx, text); err != nil {
				atomic.AddInt32(&failed, 1)
				log.Warn().Int("item", n).Err(err).Msg("narration failed")
				return
			}
			log.Info().Int("item", n).Msg("narration cached")
		}(i, text)
	}

	wg.Wait()
	log.Info().Int("total", len(texts)).Int32("failed", atomic.LoadInt32(&failed)).Msg("narration completed")
}
