package battlenet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/Checker-Finance/battlenet/internal/apierr"
	"github.com/Checker-Finance/battlenet/internal/httpclient"
	"github.com/Checker-Finance/battlenet/pkg/secrets"
	"github.com/Checker-Finance/battlenet/pkg/utils"
)

// DefaultUserAgent is sent with the token request.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_10_1) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/39.0.2171.95 Safari/537.36"

const tokenEndpointLabel = "oauth_token"

// tokenResponse is the body of a successful client-credentials exchange.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// TokenManager performs the OAuth2 client-credentials exchange.
type TokenManager struct {
	logger    *zap.Logger
	exec      *httpclient.Executor
	tokenURL  string
	userAgent string
}

// NewTokenManager creates a TokenManager posting to tokenURL through exec.
func NewTokenManager(logger *zap.Logger, exec *httpclient.Executor, tokenURL, userAgent string) *TokenManager {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &TokenManager{
		logger:    logger,
		exec:      exec,
		tokenURL:  tokenURL,
		userAgent: userAgent,
	}
}

// Acquire exchanges creds for an access token. It is not retried and the token is never refreshed.
func (m *TokenManager) Acquire(ctx context.Context, creds secrets.Credentials) (*oauth2.Token, error) {
	form := url.Values{"grant_type": {"client_credentials"}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		m.logger.Error("bnet.auth.build_request_failed", zap.Error(err))
		return nil, &apierr.UnexpectedError{Err: err}
	}
	req.SetBasicAuth(creds.ClientID, creds.Secret)
	req.Header.Set("User-Agent", m.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	body, err := m.exec.Do(ctx, req, tokenEndpointLabel, "")
	if err != nil {
		return nil, err
	}

	tok, err := m.parse(body)
	if err != nil {
		m.logger.Error("bnet.auth.invalid_token_response",
			zap.String("client_id", utils.MaskSecret(creds.ClientID)),
			zap.Error(err))
		return nil, err
	}

	m.logger.Info("bnet.auth.token_acquired",
		zap.String("client_id", utils.MaskSecret(creds.ClientID)),
		zap.Time("expiry", tok.Expiry))
	return tok, nil
}

// parse turns the token response body into an oauth2.Token.
// The token type is always Bearer; the server's value is kept as an extra.
func (m *TokenManager) parse(body []byte) (*oauth2.Token, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &apierr.ProtocolError{Err: err}
	}

	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &apierr.ProtocolError{Err: err}
	}
	if resp.AccessToken == "" {
		return nil, &apierr.ProtocolError{Field: "access_token"}
	}

	tok := &oauth2.Token{
		AccessToken: resp.AccessToken,
		TokenType:   "Bearer",
	}
	if resp.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return tok.WithExtra(raw), nil
}
