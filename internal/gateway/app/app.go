package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"askdata/internal/gateway/config"
	"askdata/internal/gateway/handler"
	"askdata/internal/gateway/logger"
	"askdata/internal/gateway/server"
	"askdata/internal/llm"
	"askdata/internal/pipeline"
	"askdata/internal/session"
)

type App struct {
	server *server.Server
	client llm.Client
	stores *gatewayStores
	log    zerolog.Logger
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewWithConfig(ctx, cfg)
}

func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Env)

	// Dependencies
	client, err := NewLLMClient(ctx, cfg.LLM, log.With().Str("component", "llm").Logger())
	if err != nil {
		return nil, err
	}
	sessions, err := session.NewRegistry(cfg.Session.Policy, cfg.Session.MaxTracked)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to init session registry: %w", err)
	}
	stores, err := initStores(ctx, cfg, log)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	p := pipeline.New(client, pipeline.WithLogger(log.With().Str("component", "pipeline").Logger()))
	h := handler.New(p, sessions, stores.archive, log)

	// Routing & Server
	mux := server.NewMux(h, log.With().Str("component", "http").Logger())
	srv := server.New(cfg.Port, mux, log)

	return &App{server: srv, client: client, stores: stores, log: log}, nil
}

// NewLLMClient builds the configured provider wrapped with logging, retry,
// rate limiting and the response cache, outermost first.
func NewLLMClient(ctx context.Context, cfg config.LLMConfig, log zerolog.Logger) (llm.Client, error) {
	var base llm.Client
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "fake":
		base = llm.NewFakeClient()
	case "", "gemini":
		g, err := llm.NewGeminiClient(ctx, cfg.APIKey, cfg.Model, geminiOptions(cfg)...)
		if err != nil {
			return nil, fmt.Errorf("failed to init gemini client: %w", err)
		}
		base = g
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	return llm.Wrap(base,
		llm.WithLogging(log),
		llm.WithCache(cfg.CacheSize, cfg.CacheTTL),
		llm.Retry(cfg.Retries, 0),
		llm.RateLimit(cfg.RPS, cfg.Burst),
	), nil
}

func geminiOptions(cfg config.LLMConfig) []llm.GeminiOption {
	var opts []llm.GeminiOption
	if cfg.Temperature > 0 {
		opts = append(opts, llm.WithTemperature(float32(cfg.Temperature)))
	}
	if cfg.MaxTokens > 0 {
		opts = append(opts, llm.WithMaxOutputTokens(int32(cfg.MaxTokens)))
	}
	return opts
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	return errors.Join(err, a.client.Close(), a.stores.Close())
}

func (a *App) Logger() zerolog.Logger { return a.log }
