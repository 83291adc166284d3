// Package config loads process configuration from the environment, after
// an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
)

const (
	DefaultPort          = "8080"
	DefaultAssistantName = "Xell"
	DefaultNativeSymbol  = "XELL"
	DefaultNativeMint    = "HSFDVkfbiTdYNrvo6oLxx76AvR1USAi6ivjEz3rrpump"
	DefaultModel         = "gpt-4o"
	DefaultMaxTokens     = 2000
	DefaultTemperature   = 0.7
)

// Config is read once at startup and treated as read-only afterwards.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	BackendURL    string
	BackendAPIKey string

	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIModel       string
	OpenAIMaxTokens   int
	OpenAITemperature float64

	// ParamPrefix enables SSM lookups for keys missing from the environment.
	ParamPrefix string

	AssistantName string
	NativeSymbol  string
	NativeMint    solana.PublicKey

	CORSAllowedOrigins []string
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	e := env(getenv)
	cfg := &Config{
		Port:      e.or("PORT", DefaultPort),
		LogLevel:  e.or("LOG_LEVEL", "info"),
		LogFormat: e.or("LOG_FORMAT", "text"),

		BackendURL:    strings.TrimRight(e.str("BACKEND_API_URL"), "/"),
		BackendAPIKey: e.str("BACKEND_API_KEY"),

		OpenAIAPIKey:  e.str("OPENAI_API_KEY"),
		OpenAIBaseURL: e.str("OPENAI_BASE_URL"),
		OpenAIModel:   e.or("OPENAI_MODEL", DefaultModel),
		ParamPrefix:   strings.TrimRight(e.str("PARAM_PREFIX"), "/"),

		AssistantName: e.or("ASSISTANT_NAME", DefaultAssistantName),
		NativeSymbol:  e.or("NATIVE_TOKEN_SYMBOL", DefaultNativeSymbol),

		CORSAllowedOrigins: e.list("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}

	var errs []error
	var err error
	if cfg.OpenAIMaxTokens, err = e.intOr("OPENAI_MAX_TOKENS", DefaultMaxTokens); err != nil {
		errs = append(errs, err)
	} else if cfg.OpenAIMaxTokens <= 0 {
		errs = append(errs, errors.New("config: OPENAI_MAX_TOKENS must be positive"))
	}
	if cfg.OpenAITemperature, err = e.floatOr("OPENAI_TEMPERATURE", DefaultTemperature); err != nil {
		errs = append(errs, err)
	} else if cfg.OpenAITemperature < 0 || cfg.OpenAITemperature > 2 {
		errs = append(errs, errors.New("config: OPENAI_TEMPERATURE must be between 0 and 2"))
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		errs = append(errs, fmt.Errorf("config: PORT %q is not a number", cfg.Port))
	}
	mint := e.or("NATIVE_TOKEN_MINT", DefaultNativeMint)
	if cfg.NativeMint, err = solana.PublicKeyFromBase58(mint); err != nil {
		errs = append(errs, fmt.Errorf("config: NATIVE_TOKEN_MINT %q: %w", mint, err))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BackendConfigured reports whether market data can be fetched.
func (c *Config) BackendConfigured() bool {
	return c.BackendURL != ""
}

// WrappedSOLMint is the mint queried by the SOL price endpoint.
func (c *Config) WrappedSOLMint() solana.PublicKey {
	return solana.WrappedSol
}

type env func(string) string

func (e env) str(key string) string {
	return strings.TrimSpace(e(key))
}

func (e env) or(key, def string) string {
	if v := e.str(key); v != "" {
		return v
	}
	return def
}

func (e env) intOr(key string, def int) (int, error) {
	v := e.str(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func (e env) floatOr(key string, def float64) (float64, error) {
	v := e.str(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return f, nil
}

func (e env) list(key string, def []string) []string {
	v := e.str(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
