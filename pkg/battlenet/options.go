package battlenet

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/Checker-Finance/battlenet/internal/rate"
	"github.com/Checker-Finance/battlenet/pkg/cache"
	"github.com/Checker-Finance/battlenet/pkg/secrets"
)

const (
	// DefaultTokenURL is the OAuth token endpoint used by every region except China.
	DefaultTokenURL = "https://oauth.battle.net/token"
	// DefaultLocale is used when an endpoint method is called with an empty locale.
	DefaultLocale = "en_US"
	// DefaultTimeout bounds each HTTP call when no http.Client is supplied.
	DefaultTimeout = 10 * time.Second

	apiURLFormat = "https://%s.api.blizzard.com"
)

// Option configures a Client at construction.
type Option func(*options)

type options struct {
	logger      *zap.Logger
	httpClient  *http.Client
	timeout     time.Duration
	insecure    bool
	tokenURL    string
	apiBaseURL  string
	userAgent   string
	clientID    string
	secret      string
	secretsFile string
	fs          afero.Fs
	home        func() (string, error)
	envLookup   secrets.LookupFunc
	extra       []secrets.Provider
	rateLimit   *rate.Config
	cache       cache.Cache
	cacheTTL    time.Duration
}

func defaultOptions() *options {
	return &options{
		timeout:     DefaultTimeout,
		tokenURL:    DefaultTokenURL,
		userAgent:   DefaultUserAgent,
		secretsFile: secrets.DefaultSecretsFile,
	}
}

// WithLogger sets the zap logger every failure is written to before it is returned.
// Without it the process-wide logger from pkg/logger is used.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithCredentials passes the client id and secret explicitly. Either may be empty,
// in which case that field falls back to the environment and then the secrets file.
func WithCredentials(clientID, secret string) Option {
	return func(o *options) {
		o.clientID = clientID
		o.secret = secret
	}
}

// WithHTTPClient replaces the HTTP client used for the token and data calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTimeout sets the per-call timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithInsecureSkipVerify disables TLS certificate validation on the default HTTP client.
// It has no effect when WithHTTPClient is used. Meant for test proxies only.
func WithInsecureSkipVerify() Option {
	return func(o *options) { o.insecure = true }
}

// WithTokenURL overrides the OAuth token endpoint.
func WithTokenURL(u string) Option {
	return func(o *options) { o.tokenURL = u }
}

// WithAPIBaseURL overrides https://{region}.api.blizzard.com.
func WithAPIBaseURL(u string) Option {
	return func(o *options) { o.apiBaseURL = u }
}

// WithUserAgent overrides the User-Agent sent to the token endpoint.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithSecretsFile sets the JSON secrets file path. A leading "~" is expanded.
func WithSecretsFile(path string) Option {
	return func(o *options) { o.secretsFile = path }
}

// WithFS sets the filesystem the secrets file is read from.
func WithFS(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// WithHomeDir fixes the directory "~" expands to.
func WithHomeDir(dir string) Option {
	return func(o *options) {
		o.home = func() (string, error) { return dir, nil }
	}
}

// WithEnvLookup replaces os.LookupEnv for the CLIENTID/BLSECRET tier.
func WithEnvLookup(fn secrets.LookupFunc) Option {
	return func(o *options) { o.envLookup = fn }
}

// WithSecretProvider appends a credential source consulted after the secrets file.
func WithSecretProvider(p secrets.Provider) Option {
	return func(o *options) { o.extra = append(o.extra, p) }
}

// WithRateLimit throttles data calls per client id. A non-positive rate disables limiting.
func WithRateLimit(requestsPerSecond, burst int) Option {
	return func(o *options) {
		o.rateLimit = &rate.Config{RequestsPerSecond: requestsPerSecond, Burst: burst}
	}
}

// WithCache serves repeated endpoint calls from c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(o *options) {
		o.cache = c
		o.cacheTTL = ttl
	}
}

func (o *options) buildHTTPClient() *http.Client {
	if o.httpClient != nil {
		return o.httpClient
	}
	c := &http.Client{Timeout: o.timeout}
	if o.insecure {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // explicit opt-out
		c.Transport = tr
	}
	return c
}
