package battlenet

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/Checker-Finance/battlenet/internal/apierr"
	"github.com/Checker-Finance/battlenet/internal/metrics"
)

const (
	petIndexPath   = "/data/wow/pet/index?namespace=static-%s&locale=%s"
	tokenIndexPath = "/data/wow/token/index?namespace=dynamic-%s&locale=%s"
)

// copperPerGold is the number of copper coins in one gold coin.
var copperPerGold = decimal.NewFromInt(10000)

// GetPetIndex returns the battle pet index.
// The body must be a JSON object; any other 200 body is a *ProtocolError (use Get for other shapes).
// GET /data/wow/pet/index?namespace=static-{region}&locale={locale}
func (c *Client) GetPetIndex(ctx context.Context, locale string) (map[string]any, error) {
	var out map[string]any
	if err := c.getJSON(ctx, "pet_index", c.path(petIndexPath, locale), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTokenIndex returns the WoW Token index (current price in copper and its timestamp).
// Like GetPetIndex it only accepts a JSON object body.
// GET /data/wow/token/index?namespace=dynamic-{region}&locale={locale}
func (c *Client) GetTokenIndex(ctx context.Context, locale string) (map[string]any, error) {
	var out map[string]any
	if err := c.getJSON(ctx, "token_index", c.path(tokenIndexPath, locale), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get performs an authenticated GET of path (relative to the API host, query included)
// and decodes the JSON body into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.getJSON(ctx, "custom", path, out)
}

// GoldFromCopper converts a copper amount, as reported by the token index price, to gold.
func GoldFromCopper(copper int64) decimal.Decimal {
	return decimal.NewFromInt(copper).Div(copperPerGold)
}

func (c *Client) path(format, locale string) string {
	if locale == "" {
		locale = DefaultLocale
	}
	return fmt.Sprintf(format, url.QueryEscape(c.region), url.QueryEscape(locale))
}

// getJSON performs an authenticated GET request and decodes the JSON response,
// going through the response cache when one is configured.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, out any) error {
	if err := c.ready(); err != nil {
		return err
	}

	if body, ok := c.cached(ctx, endpoint, path); ok {
		return c.exec.Decode(endpoint, body, out)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+path, nil)
	if err != nil {
		c.logger.Error("bnet.build_request_failed", zap.String("path", path), zap.Error(err))
		return &apierr.UnexpectedError{Err: err}
	}
	setHeaders(req, c.token)

	body, err := c.exec.Do(ctx, req, endpoint, c.clientID)
	if err != nil {
		return err
	}
	if err := c.exec.Decode(endpoint, body, out); err != nil {
		return err
	}

	c.store(ctx, endpoint, path, body)
	return nil
}

func (c *Client) cached(ctx context.Context, endpoint, path string) ([]byte, bool) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return nil, false
	}
	body, ok, err := c.cache.Get(ctx, c.cacheKey(path))
	switch {
	case err != nil:
		metrics.IncCacheLookup(endpoint, "error")
		c.logger.Warn("bnet.cache.get_failed", zap.String("path", path), zap.Error(err))
		return nil, false
	case !ok:
		metrics.IncCacheLookup(endpoint, "miss")
		return nil, false
	default:
		metrics.IncCacheLookup(endpoint, "hit")
		return body, true
	}
}

func (c *Client) store(ctx context.Context, endpoint, path string, body []byte) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return
	}
	if err := c.cache.Set(ctx, c.cacheKey(path), body, c.cacheTTL); err != nil {
		c.logger.Warn("bnet.cache.set_failed",
			zap.String("endpoint", endpoint),
			zap.String("path", path),
			zap.Error(err))
	}
}

func (c *Client) cacheKey(path string) string {
	return c.apiBase + path
}

// setHeaders sets required headers for data API requests.
func setHeaders(req *http.Request, tok *oauth2.Token) {
	tok.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")
}
