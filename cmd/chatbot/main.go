package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hammaddar1993/restaurant-chatbot/internal/config"
	"github.com/hammaddar1993/restaurant-chatbot/internal/engine"
	"github.com/hammaddar1993/restaurant-chatbot/internal/llm"
	"github.com/hammaddar1993/restaurant-chatbot/internal/prompt"
	"github.com/hammaddar1993/restaurant-chatbot/internal/session"
	"github.com/hammaddar1993/restaurant-chatbot/internal/store"
	memstore "github.com/hammaddar1993/restaurant-chatbot/internal/store/memory"
	supastore "github.com/hammaddar1993/restaurant-chatbot/internal/store/supabase"
	"github.com/hammaddar1993/restaurant-chatbot/internal/telemetry"
	"github.com/hammaddar1993/restaurant-chatbot/internal/usage"
	"github.com/hammaddar1993/restaurant-chatbot/internal/whatsapp"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	logger := telemetry.NewLogger(os.Stdout, slog.LevelInfo)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	sessionTTL := time.Duration(cfg.SessionTimeoutMinutes) * time.Minute
	pricing := usage.Pricing{
		InputPer1M:   cfg.Pricing.InputPer1M,
		OutputPer1M:  cfg.Pricing.OutputPer1M,
		ExchangeRate: cfg.Pricing.ExchangeRate,
	}

	var (
		sessions session.Store
		recorder usage.Recorder
	)
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid redis URL", "error", err)
			os.Exit(1)
		}
		sessions, err = session.NewStore(session.StoreTypeRedis,
			session.WithRedisClient(redis.NewClient(redisOpts)),
			session.WithTTL(sessionTTL),
		)
		if err != nil {
			logger.Error("failed to create session store", "error", err)
			os.Exit(1)
		}
		// Separate client: the session store owns and closes its own.
		recorder, err = usage.NewRecorder(usage.RecorderTypeRedis,
			usage.WithRedisClient(redis.NewClient(redisOpts)),
			usage.WithPricing(pricing),
		)
		if err != nil {
			logger.Error("failed to create usage recorder", "error", err)
			os.Exit(1)
		}
		logger.Info("using redis session store and usage recorder")
	} else {
		sessions, _ = session.NewStore(session.StoreTypeMemory, session.WithTTL(sessionTTL))
		recorder, _ = usage.NewRecorder(usage.RecorderTypeMemory, usage.WithPricing(pricing))
		logger.Info("REDIS_URL not set, using in-memory session store and usage recorder")
	}
	defer sessions.Close()
	defer recorder.Close()

	var persistent store.Store
	if cfg.Supabase.URL != "" {
		persistent, err = supastore.New(supastore.Config{
			URL:    cfg.Supabase.URL,
			APIKey: cfg.Supabase.APIKey,
		})
		if err != nil {
			logger.Error("failed to create supabase store", "error", err)
			os.Exit(1)
		}
		logger.Info("using supabase persistent store")
	} else {
		persistent = memstore.NewStore()
		logger.Info("SUPABASE_URL not set, using in-memory persistent store")
	}
	defer persistent.Close()

	var backend llm.Client
	if cfg.LLM.UseMock {
		logger.Info("using mock generative backend")
		backend = llm.NewMockClient(llm.Reply{Text: "Hi! What can I get you today?"})
	} else {
		backend = llm.NewAnthropicClient(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.MaxTokens)
		logger.Info("using anthropic generative backend", "model", cfg.LLM.Model)
	}

	eng := engine.New(sessions, persistent, backend, recorder, logger,
		engine.WithSystemPrompt(prompt.LoadSystemPrompt(cfg.SystemPromptPath)),
		engine.WithFeedbackDelay(time.Duration(cfg.FeedbackDelayMinutes)*time.Minute),
	)

	sender := whatsapp.NewClient(cfg.WhatsApp.APIURL, cfg.WhatsApp.PhoneNumberID, cfg.WhatsApp.AccessToken)
	webhook := whatsapp.NewHandler(eng, sender, cfg.WhatsApp.VerifyToken, logger)

	mux := http.NewServeMux()
	mux.Handle("/webhook", webhook)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/stats/daily", statsHandler(recorder, usage.ScopeDaily, logger))
	mux.HandleFunc("/stats/monthly", statsHandler(recorder, usage.ScopeMonthly, logger))
	registerAdminRoutes(mux, persistent, logger)

	addr := ":" + cfg.Port
	logger.Info("restaurant chatbot listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
