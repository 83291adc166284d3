package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"solana-terminal/internal/integrations/backend"
	"solana-terminal/internal/intent"
)

// DefaultTrendingTimeframe is used when the caller omits a timeframe.
const DefaultTrendingTimeframe = "24h"

var timeframePattern = regexp.MustCompile(`^[0-9]{1,3}[mhd]$`)

// MarketReader is the pass-through subset of the backend client.
type MarketReader interface {
	Configured() bool
	Price(ctx context.Context, mint string) (json.RawMessage, error)
	Stats(ctx context.Context, mint string) (json.RawMessage, error)
	Trending(ctx context.Context, timeframe string) (json.RawMessage, error)
}

// MarketService proxies single backend reads for the terminal's side panels.
type MarketService struct {
	data       MarketReader
	solMint    string
	nativeMint string
}

func NewMarketService(data MarketReader, solMint, nativeMint string) (*MarketService, error) {
	if data == nil {
		return nil, errors.New("usecase: market reader must not be nil")
	}
	solMint, nativeMint = strings.TrimSpace(solMint), strings.TrimSpace(nativeMint)
	if solMint == "" || nativeMint == "" {
		return nil, errors.New("usecase: price mints must not be empty")
	}
	return &MarketService{data: data, solMint: solMint, nativeMint: nativeMint}, nil
}

func (s *MarketService) SolPrice(ctx context.Context) (json.RawMessage, error) {
	return s.read("price_error", func() (json.RawMessage, error) {
		return s.data.Price(ctx, s.solMint)
	})
}

func (s *MarketService) NativePrice(ctx context.Context) (json.RawMessage, error) {
	return s.read("price_error", func() (json.RawMessage, error) {
		return s.data.Price(ctx, s.nativeMint)
	})
}

// Stats requires mint to be a single base58 address.
func (s *MarketService) Stats(ctx context.Context, mint string) (json.RawMessage, error) {
	mint = strings.TrimSpace(mint)
	if found, ok := intent.ExtractAddress(mint); !ok || found != mint {
		return nil, newError(ErrorInvalidInput, "invalid_token", nil)
	}
	return s.read("stats_error", func() (json.RawMessage, error) {
		return s.data.Stats(ctx, mint)
	})
}

// Trending defaults to DefaultTrendingTimeframe when timeframe is blank.
func (s *MarketService) Trending(ctx context.Context, timeframe string) (json.RawMessage, error) {
	timeframe = strings.TrimSpace(timeframe)
	if timeframe == "" {
		timeframe = DefaultTrendingTimeframe
	}
	if !timeframePattern.MatchString(timeframe) {
		return nil, newError(ErrorInvalidInput, "invalid_timeframe", nil)
	}
	return s.read("trending_error", func() (json.RawMessage, error) {
		return s.data.Trending(ctx, timeframe)
	})
}

func (s *MarketService) read(reason string, fn func() (json.RawMessage, error)) (json.RawMessage, error) {
	if !s.data.Configured() {
		return nil, newError(ErrorBackendNotConfigured, "backend_not_configured", backend.ErrNotConfigured)
	}
	body, err := fn()
	if err != nil {
		if errors.Is(err, backend.ErrNotConfigured) {
			return nil, newError(ErrorBackendNotConfigured, "backend_not_configured", err)
		}
		return nil, newError(ErrorUpstream, reason, err)
	}
	return body, nil
}
