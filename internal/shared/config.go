package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string
	HTTPTimeout time.Duration
	SessionIdle time.Duration

	RedisAddr      string
	RedisDB        int
	RedisPass      string
	SpeechCacheTTL time.Duration

	GeminiBase  string
	GeminiKey   string
	GeminiModel string
	GeminiVoice string
	GeminiRPS   int

	RazorpayBase      string
	RazorpayKeyID     string
	RazorpayKeySecret string
	UnlockAmount      int64
	UnlockCurrency    string

	NarratorWorkers int
}

// Load reads the environment, after merging any .env file found in the
// working directory. Missing credentials only warn: the features they
// back degrade instead of stopping the process.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),
		HTTPTimeout: time.Duration(atoi("HTTP_TIMEOUT_SECONDS", 15)) * time.Second,
		SessionIdle: time.Duration(atoi("SESSION_IDLE_MINUTES", 120)) * time.Minute,

		RedisAddr:      env("REDIS_ADDR", "localhost:6379"),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		SpeechCacheTTL: time.Duration(atoi("SPEECH_CACHE_TTL_SECONDS", 86400)) * time.Second,

		GeminiBase:  env("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiKey:   env("GEMINI_API_KEY", os.Getenv("API_KEY")),
		GeminiModel: env("GEMINI_TTS_MODEL", "gemini-2.5-flash-preview-tts"),
		GeminiVoice: env("GEMINI_VOICE", "Kore"),
		GeminiRPS:   atoi("GEMINI_RPS", 5),

		RazorpayBase:      env("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1"),
		RazorpayKeyID:     env("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret: env("RAZORPAY_KEY_SECRET", ""),
		UnlockAmount:      int64(atoi("UNLOCK_AMOUNT_PAISE", 1000)),
		UnlockCurrency:    env("UNLOCK_CURRENCY", "INR"),

		NarratorWorkers: atoi("NARRATOR_WORKERS", 4),
	}
	if c.GeminiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is empty; speech playback disabled")
	}
	if c.RazorpayKeyID == "" || c.RazorpayKeySecret == "" {
		log.Warn().Msg("RAZORPAY_KEY_ID/RAZORPAY_KEY_SECRET empty; contact unlock disabled")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
