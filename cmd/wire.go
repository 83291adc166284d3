package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"solana-terminal/handler"
	"solana-terminal/internal/config"
	"solana-terminal/internal/integrations/backend"
	"solana-terminal/internal/integrations/openai"
	"solana-terminal/internal/integrations/paramstore"
	"solana-terminal/internal/logger"
	"solana-terminal/internal/metrics"
	"solana-terminal/internal/usecase"
)

// app holds the process-wide dependencies shared by every command.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	metrics *metrics.Metrics
	llm     *openai.Client
	backend *backend.Client
}

func build(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.FromStrings(cfg.LogLevel, cfg.LogFormat), os.Stderr)
	slog.SetDefault(log)

	var params *paramstore.Client
	if cfg.ParamPrefix != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		if params, err = paramstore.New(awsssm.NewFromConfig(awsCfg)); err != nil {
			return nil, err
		}
	}

	keys, err := llmKeySource(cfg, params)
	if err != nil {
		return nil, err
	}
	llm, err := openai.NewClient(keys,
		openai.WithBaseURL(cfg.OpenAIBaseURL),
		openai.WithModel(cfg.OpenAIModel),
		openai.WithMaxTokens(cfg.OpenAIMaxTokens),
		openai.WithTemperature(cfg.OpenAITemperature),
	)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	backendKey := resolveBackendKey(ctx, cfg, params)
	if !cfg.BackendConfigured() {
		slog.Warn("BACKEND_API_URL not set, market data is unavailable")
	}

	return &app{
		cfg:     cfg,
		log:     log,
		metrics: m,
		llm:     llm,
		backend: backend.New(cfg.BackendURL, backendKey, backend.WithMetrics(m)),
	}, nil
}

// llmKeySource prefers the environment and falls back to the parameter store.
func llmKeySource(cfg *config.Config, params *paramstore.Client) (openai.KeySource, error) {
	if cfg.OpenAIAPIKey != "" || params == nil {
		return openai.StaticKey(cfg.OpenAIAPIKey), nil
	}
	return paramstore.NewSecret(params, paramstore.ParameterName(cfg.ParamPrefix, paramstore.OpenAITokenParam))
}

func resolveBackendKey(ctx context.Context, cfg *config.Config, params *paramstore.Client) string {
	if cfg.BackendAPIKey != "" || params == nil || !cfg.BackendConfigured() {
		return cfg.BackendAPIKey
	}
	secret, err := paramstore.NewSecret(params, paramstore.ParameterName(cfg.ParamPrefix, paramstore.BackendKeyParam))
	if err != nil {
		slog.Warn("backend api key lookup skipped", "err", err)
		return ""
	}
	key, err := secret.Value(ctx)
	if err != nil {
		slog.Warn("backend api key unavailable, continuing without it", "param", secret.Name(), "err", err)
		return ""
	}
	return key
}

func (a *app) chatService() (*usecase.ChatService, error) {
	persona := usecase.Persona{
		Name:         a.cfg.AssistantName,
		NativeSymbol: a.cfg.NativeSymbol,
		NativeMint:   a.cfg.NativeMint.String(),
	}
	return usecase.NewChatService(a.llm, a.backend, persona, usecase.WithChatMetrics(a.metrics))
}

func (a *app) routes() (http.Handler, error) {
	chat, err := a.chatService()
	if err != nil {
		return nil, err
	}
	market, err := usecase.NewMarketService(a.backend, a.cfg.WrappedSOLMint().String(), a.cfg.NativeMint.String())
	if err != nil {
		return nil, err
	}
	h, err := handler.NewHandler(chat, market,
		handler.WithMetrics(a.metrics),
		handler.WithLogger(a.log),
		handler.WithCORSOrigins(a.cfg.CORSAllowedOrigins),
	)
	if err != nil {
		return nil, err
	}
	return h.Routes(), nil
}
