// Package battlenet is a client for the Battle.net game-data API.
//
// New resolves the OAuth2 client credentials (passed values, then the CLIENTID
// and BLSECRET environment variables, then the JSON secrets file), exchanges
// them once for a bearer token and returns a ready Client. The token is never
// refreshed; build a new Client when it expires.
package battlenet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/Checker-Finance/battlenet/internal/apierr"
	"github.com/Checker-Finance/battlenet/internal/httpclient"
	"github.com/Checker-Finance/battlenet/internal/rate"
	intsecrets "github.com/Checker-Finance/battlenet/internal/secrets"
	"github.com/Checker-Finance/battlenet/pkg/cache"
	"github.com/Checker-Finance/battlenet/pkg/logger"
	"github.com/Checker-Finance/battlenet/pkg/secrets"
)

// Credentials is the resolved client id/secret pair.
type Credentials = secrets.Credentials

// State is the construction stage of a Client.
type State int

const (
	StateUninitialized State = iota
	StateResolvingCredentials
	StateAcquiringToken
	StateReady
)

func (s State) String() string {
	switch s {
	case StateResolvingCredentials:
		return "resolving_credentials"
	case StateAcquiringToken:
		return "acquiring_token"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Client issues bearer-authenticated GETs against one region's data API.
// A Client returned by New is safe for concurrent use.
type Client struct {
	logger   *zap.Logger
	region   string
	apiBase  string
	clientID string
	exec     *httpclient.Executor
	token    *oauth2.Token
	state    State
	cache    cache.Cache
	cacheTTL time.Duration
}

// New resolves credentials, acquires a token and returns a Client in StateReady.
// Any failure aborts construction and is returned as one of the typed errors.
func New(ctx context.Context, region string, opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	log := o.logger
	if log == nil {
		log = logger.L()
	}
	log = log.With(zap.String("region", region))

	c := &Client{
		logger:   log,
		region:   region,
		cache:    o.cache,
		cacheTTL: o.cacheTTL,
		state:    StateUninitialized,
	}

	if strings.TrimSpace(region) == "" {
		err := &apierr.ConfigurationError{Msg: "region is required"}
		log.Error("bnet.client.invalid_region", zap.Error(err))
		return nil, err
	}

	c.apiBase = o.apiBaseURL
	if c.apiBase == "" {
		c.apiBase = fmt.Sprintf(apiURLFormat, region)
	}
	c.apiBase = strings.TrimSuffix(c.apiBase, "/")

	// --- Credentials ---
	c.state = StateResolvingCredentials
	creds, err := c.resolveCredentials(ctx, o)
	if err != nil {
		return nil, err
	}
	c.clientID = creds.ClientID

	// --- Token ---
	c.state = StateAcquiringToken
	var rateMgr *rate.Manager
	if o.rateLimit != nil {
		rateMgr = rate.NewManager(*o.rateLimit)
	}
	c.exec = httpclient.New(log, rateMgr, o.buildHTTPClient(), "bnet", nil)

	tokens := NewTokenManager(log, c.exec, o.tokenURL, o.userAgent)
	tok, err := tokens.Acquire(ctx, creds)
	if err != nil {
		return nil, err
	}
	c.token = tok

	c.state = StateReady
	log.Debug("bnet.client.ready", zap.String("api_base", c.apiBase))
	return c, nil
}

func (c *Client) resolveCredentials(ctx context.Context, o *options) (Credentials, error) {
	file := secrets.NewFileProvider(o.fs, o.secretsFile, o.home)

	providers := []secrets.Provider{
		secrets.Static{ClientID: o.clientID, Secret: o.secret},
		secrets.NewEnvProvider(o.envLookup),
		file,
	}
	providers = append(providers, o.extra...)

	resolver := intsecrets.NewResolver(c.logger, file.Path(), providers...)
	c.logger.Debug("bnet.credentials.resolving", zap.String("sources", resolver.Sources()))
	return resolver.Resolve(ctx)
}

// Region returns the region the client was built for.
func (c *Client) Region() string { return c.region }

// State returns the construction stage; only StateReady accepts endpoint calls.
func (c *Client) State() State { return c.state }

// AccessToken returns the bearer token acquired at construction.
func (c *Client) AccessToken() string {
	if c.token == nil {
		return ""
	}
	return c.token.AccessToken
}

// Token returns a copy of the acquired token, including server-sent extras.
func (c *Client) Token() *oauth2.Token {
	if c.token == nil {
		return nil
	}
	tok := *c.token
	return &tok
}

func (c *Client) ready() error {
	if c == nil || c.state != StateReady || c.token == nil {
		return ErrNotReady
	}
	return nil
}
