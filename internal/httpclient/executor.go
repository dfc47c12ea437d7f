package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Checker-Finance/battlenet/internal/apierr"
	"github.com/Checker-Finance/battlenet/internal/metrics"
	"github.com/Checker-Finance/battlenet/internal/rate"
)

// Executor sends one HTTP request per call and classifies the outcome into the
// apierr taxonomy. Requests are never retried.
type Executor struct {
	logger       *zap.Logger
	rateMgr      *rate.Manager
	http         *http.Client
	tag          string
	errorHandler func(status int, reason string, body []byte) error
}

// New creates an Executor. errorHandler is called on error responses (status >= 300)
// to produce a service-specific error. If nil, an *apierr.HTTPRequestError is returned.
func New(
	logger *zap.Logger,
	rateMgr *rate.Manager,
	httpClient *http.Client,
	tag string,
	errorHandler func(status int, reason string, body []byte) error,
) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Executor{
		logger:       logger,
		rateMgr:      rateMgr,
		http:         httpClient,
		tag:          tag,
		errorHandler: errorHandler,
	}
}

// Do executes req and returns the body of a 200 response.
// endpoint labels metrics; rateLimitKey scopes the rate limiter and may be empty to skip it.
//
//	200                      -> body
//	other 1xx/2xx            -> *apierr.UnexpectedStatusError
//	>= 300                   -> *apierr.HTTPRequestError (or errorHandler's result)
//	transport failure        -> *apierr.NetworkError
//	anything else            -> *apierr.UnexpectedError
func (e *Executor) Do(ctx context.Context, req *http.Request, endpoint, rateLimitKey string) ([]byte, error) {
	requestID := uuid.NewString()
	log := e.logger.With(
		zap.String("request_id", requestID),
		zap.String("endpoint", endpoint),
		zap.String("url", redactURL(req.URL)))

	if e.rateMgr != nil && rateLimitKey != "" {
		if err := e.rateMgr.Wait(ctx, rateLimitKey); err != nil {
			log.Error(e.tag+".rate_limit_wait_failed", zap.Error(err))
			return nil, &apierr.UnexpectedError{Err: err}
		}
	}

	start := time.Now()
	resp, err := e.http.Do(req.WithContext(ctx))
	metrics.ObserveDuration(metrics.RequestDuration, start, endpoint, req.Method)
	if err != nil {
		metrics.IncRequest(endpoint, req.Method, "error")
		classified := classifyTransportError(err)
		log.Error(e.tag+".http_failed", zap.Error(err))
		return nil, classified
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.IncRequest(endpoint, req.Method, strconv.Itoa(resp.StatusCode))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error(e.tag+".read_failed", zap.Int("status", resp.StatusCode), zap.Error(err))
		return nil, &apierr.UnexpectedError{Err: err}
	}
	elapsed := time.Since(start)

	switch {
	case resp.StatusCode == http.StatusOK:
		log.Debug(e.tag+".http_success",
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", elapsed))
		return body, nil

	case resp.StatusCode >= 300:
		reason := statusReason(resp)
		log.Error(e.tag+".http_error",
			zap.Int("status", resp.StatusCode),
			zap.String("reason", reason),
			zap.Duration("latency", elapsed),
			zap.String("body", truncate(body, 512)))
		if e.errorHandler != nil {
			return nil, e.errorHandler(resp.StatusCode, reason, body)
		}
		return nil, &apierr.HTTPRequestError{Code: resp.StatusCode, Reason: reason}

	default:
		log.Error(e.tag+".unexpected_status",
			zap.Int("status", resp.StatusCode),
			zap.Duration("latency", elapsed))
		return nil, &apierr.UnexpectedStatusError{Status: resp.StatusCode}
	}
}

// DoJSON executes req via Do and JSON-decodes the 200 body into out.
func (e *Executor) DoJSON(ctx context.Context, req *http.Request, endpoint, rateLimitKey string, out any) error {
	body, err := e.Do(ctx, req, endpoint, rateLimitKey)
	if err != nil {
		return err
	}
	return e.Decode(endpoint, body, out)
}

// Decode unmarshals a 200 body; failure is a *apierr.ProtocolError.
func (e *Executor) Decode(endpoint string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		e.logger.Error(e.tag+".decode_failed",
			zap.String("endpoint", endpoint),
			zap.Error(err),
			zap.String("body", truncate(body, 512)))
		return &apierr.ProtocolError{Err: err}
	}
	return nil
}

// classifyTransportError maps an error returned by http.Client.Do.
func classifyTransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return &apierr.UnexpectedError{Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &apierr.NetworkError{Reason: urlErr.Err.Error(), Err: err}
	}
	return &apierr.UnexpectedError{Err: err}
}

// statusReason returns the reason phrase sent by the server, or the canonical one.
func statusReason(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}

// redactURL strips the query string and userinfo for logging.
func redactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	c := *u
	c.RawQuery = ""
	c.User = nil
	return c.String()
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
