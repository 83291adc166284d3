package backend

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-resty/resty/v2"
)

// Price fetches GET /price?token={mint}&priceChanges=true and returns the raw
// JSON for pass-through.
func (c *Client) Price(ctx context.Context, mint string) (json.RawMessage, error) {
	return c.raw(ctx, ResourcePrice, "/price", func(r *resty.Request) {
		r.SetQueryParam("token", mint)
		r.SetQueryParam("priceChanges", "true")
	})
}

// Stats fetches GET /stats/{mint}.
func (c *Client) Stats(ctx context.Context, mint string) (json.RawMessage, error) {
	return c.raw(ctx, ResourceStats, "/stats/{mint}", func(r *resty.Request) {
		r.SetPathParam("mint", mint)
	})
}

// Trending fetches GET /tokens/trending/{timeframe}.
func (c *Client) Trending(ctx context.Context, timeframe string) (json.RawMessage, error) {
	return c.raw(ctx, ResourceTrending, "/tokens/trending/{timeframe}", func(r *resty.Request) {
		r.SetPathParam("timeframe", timeframe)
	})
}

func (c *Client) raw(ctx context.Context, resource, path string, prepare func(*resty.Request)) (json.RawMessage, error) {
	body, err := c.get(ctx, path, prepare)
	if err == nil && !json.Valid(body) {
		err = &DecodeError{Path: path, Err: errors.New("invalid JSON payload")}
	}
	c.observe(ctx, resource, err)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}
