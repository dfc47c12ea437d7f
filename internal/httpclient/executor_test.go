package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Checker-Finance/battlenet/internal/apierr"
	"github.com/Checker-Finance/battlenet/internal/rate"
)

func newExec(client *http.Client) *Executor {
	return New(zap.NewNop(), nil, client, "test", nil)
}

// mockTransport is an http.RoundTripper that delegates to a handler function.
type mockTransport struct {
	fn func(*http.Request) (*http.Response, error)
}

func (m *mockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.fn(req)
}

// failingReader errors on the first Read.
type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset mid-body") }

// ─── Basic success ────────────────────────────────────────────────────────────

func TestDo_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"result": "ok"})
	}))
	defer srv.Close()

	exec := newExec(srv.Client())
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)

	body, err := exec.Do(context.Background(), req, "test", "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":"ok"}`, string(body))
}

func TestDoJSON_Decodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"petInfo":"Bob"}`))
	}))
	defer srv.Close()

	exec := newExec(srv.Client())
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)

	var out map[string]any
	require.NoError(t, exec.DoJSON(context.Background(), req, "test", "", &out))
	assert.Equal(t, map[string]any{"petInfo": "Bob"}, out)
}

// ─── Non-200 success status ──────────────────────────────────────────────────

func TestDo_Non200SuccessIsUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusMultiStatus)
	}))
	defer srv.Close()

	exec := newExec(srv.Client())
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)

	_, err := exec.Do(context.Background(), req, "test", "")
	var statusErr *apierr.UnexpectedStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusMultiStatus, statusErr.Status)
}

// ─── 4xx / 5xx: no retry ─────────────────────────────────────────────────────

func TestDo_ErrorStatusNotRetried(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusNotFound, http.StatusServiceUnavailable} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			var count atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				count.Add(1)
				w.WriteHeader(status)
			}))
			defer srv.Close()

			exec := newExec(srv.Client())
			req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)

			_, err := exec.Do(context.Background(), req, "test", "")
			var httpErr *apierr.HTTPRequestError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, status, httpErr.Code)
			assert.Equal(t, http.StatusText(status), httpErr.Reason)
			assert.EqualValues(t, 1, count.Load(), "error responses must not be retried")
		})
	}
}

func TestDo_ReasonFromStatusLine(t *testing.T) {
	exec := newExec(&http.Client{Transport: &mockTransport{fn: func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusUnauthorized,
			Status:     "401 Invalid Client",
			Body:       io.NopCloser(http.NoBody),
		}, nil
	}}})
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodPost, "https://oauth.example/token", nil)

	_, err := exec.Do(context.Background(), req, "token", "")
	var httpErr *apierr.HTTPRequestError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "Invalid Client", httpErr.Reason)
	assert.Equal(t, "http error: 401 - Invalid Client", err.Error())
}

// ─── Custom error handler receives body ──────────────────────────────────────

func TestDo_CustomErrorHandlerCalled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":404,"type":"BLZWEBAPI00000404","detail":"Not Found"}`))
	}))
	defer srv.Close()

	exec := New(zap.NewNop(), nil, srv.Client(), "test", func(status int, reason string, body []byte) error {
		return fmt.Errorf("bnet %d %s: %s", status, reason, body)
	})
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)

	_, err := exec.Do(context.Background(), req, "test", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "BLZWEBAPI00000404")
}

// ─── Transport failures ──────────────────────────────────────────────────────

func TestDo_ConnectionRefusedIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	exec := newExec(&http.Client{})
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)

	_, err := exec.Do(context.Background(), req, "test", "")
	var netErr *apierr.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.NotEmpty(t, netErr.Reason)
}

func TestDo_TransportErrorIsNetworkError(t *testing.T) {
	exec := newExec(&http.Client{Transport: &mockTransport{fn: func(*http.Request) (*http.Response, error) {
		return nil, errors.New("no such host")
	}}})
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "https://us.api.example", nil)

	_, err := exec.Do(context.Background(), req, "test", "")
	var netErr *apierr.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "no such host", netErr.Reason)
}

func TestDo_CanceledContextIsUnexpected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := newExec(srv.Client())
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)

	_, err := exec.Do(ctx, req, "test", "")
	var unexpected *apierr.UnexpectedError
	require.ErrorAs(t, err, &unexpected)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDo_BodyReadFailureIsUnexpected(t *testing.T) {
	exec := newExec(&http.Client{Transport: &mockTransport{fn: func(*http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(failingReader{})}, nil
	}}})
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "https://us.api.example", nil)

	_, err := exec.Do(context.Background(), req, "test", "")
	var unexpected *apierr.UnexpectedError
	require.ErrorAs(t, err, &unexpected)
	assert.Contains(t, err.Error(), "connection reset mid-body")
}

// ─── JSON decode error ────────────────────────────────────────────────────────

func TestDoJSON_DecodeErrorIsProtocolError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("not-json"))
	}))
	defer srv.Close()

	exec := newExec(srv.Client())
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)

	var out map[string]string
	err := exec.DoJSON(context.Background(), req, "test", "", &out)
	var protoErr *apierr.ProtocolError
	require.ErrorAs(t, err, &protoErr)
}

// ─── Rate limiting ────────────────────────────────────────────────────────────

func TestDo_RateLimitWaitFailure(t *testing.T) {
	var count atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		count.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	mgr := rate.NewManager(rate.Config{RequestsPerSecond: 1, Burst: 1})
	mgr.GetLimiter("client-a").Allow() // drain

	exec := New(zap.NewNop(), mgr, srv.Client(), "test", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)

	_, err := exec.Do(ctx, req, "test", "client-a")
	var unexpected *apierr.UnexpectedError
	require.ErrorAs(t, err, &unexpected)
	assert.EqualValues(t, 0, count.Load(), "request must not be sent when the limiter refuses")
}
