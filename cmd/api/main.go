package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"realnobroker/internal/adapters/gemini"
	server "realnobroker/internal/adapters/http_server"
	"realnobroker/internal/adapters/observability"
	"realnobroker/internal/adapters/razorpay"
	redisad "realnobroker/internal/adapters/redis"
	"realnobroker/internal/app"
	"realnobroker/internal/domain"
	"realnobroker/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// speech audio cache is an optimization; run without it if redis is down
	var cache domain.Cache
	rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := rc.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable; speech cache disabled")
		_ = rc.Close()
	} else {
		defer rc.Close()
		cache = rc
		log.Info().Msg("redis connection ok")
	}
	cancel()

	// deps
	store := app.NewListingStore(domain.SeedListings())
	listings := app.NewListingService(store)
	tts := gemini.New(cfg.GeminiBase, cfg.GeminiKey, cfg.GeminiModel, cfg.GeminiRPS)
	narrator := app.NewNarrator(tts, cache, cfg.GeminiVoice, cfg.SpeechCacheTTL)
	pay := razorpay.New(cfg.RazorpayBase, cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	sessions := app.NewSessions(pay, narrator, app.UnlockPrice{Amount: cfg.UnlockAmount, Currency: cfg.UnlockCurrency})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SessionIdle > 0 {
		go func() {
			t := time.NewTicker(cfg.SessionIdle / 4)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C:
					if n := sessions.Sweep(cfg.SessionIdle); n > 0 {
						log.Debug().Int("dropped", n).Msg("idle sessions swept")
					}
				}
			}
		}()
	}

	// http
	srv := server.New(cfg.HTTPTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Store: store, Listings: listings, Sessions: sessions})

	log.Info().Str("addr", cfg.HTTPAddr).Int("listings", store.Len()).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 10 * time.Second}

	if err := serve(ctx, httpSrv, 10*time.Second); err != nil {
		log.Error().Err(err).Msg("http server failed")
	}
}

// serve runs srv until it fails or ctx ends, then drains in-flight requests
// for at most grace.
func serve(ctx context.Context, srv *http.Server, grace time.Duration) error {
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
