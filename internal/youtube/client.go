package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/yt-analytics/yt-analytics-go/internal/metrics"
)

const (
	DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

	// DefaultTimeout applies per attempt; LookupTimeout is for single-item lookups.
	DefaultTimeout = 20 * time.Second
	LookupTimeout  = 10 * time.Second

	maxErrorBody = 512
	maxBody      = 8 << 20
)

// RetryConfig controls the backoff applied to transient upstream failures.
type RetryConfig struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryConfig gives 4 attempts with exponential waits from 0.5s capped at 8s.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:     4,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     8 * time.Second,
}

// BreakerConfig trips the circuit after Threshold consecutive upstream failures
// and keeps it open for Cooldown. Threshold 0 disables the breaker.
type BreakerConfig struct {
	Threshold uint32
	Cooldown  time.Duration
}

var DefaultBreakerConfig = BreakerConfig{
	Threshold: 5,
	Cooldown:  30 * time.Second,
}

// Options configures a Client. Zero values fall back to defaults, except Gate:
// a nil Gate means no rate ceiling.
type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Gate       *RateGate
	Retry      RetryConfig
	Breaker    BreakerConfig
	Logger     zerolog.Logger
}

// Client issues rate-limited, retried GETs against the YouTube Data API. It holds
// no per-call state; the only shared mutable resources are the gate and breaker.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	gate    *RateGate
	retry   RetryConfig
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

// NewClient builds a Client from opts.
func NewClient(opts Options) *Client {
	c := &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		http:    opts.HTTPClient,
		gate:    opts.Gate,
		retry:   opts.Retry,
		log:     opts.Logger.With().Str("component", "youtube").Logger(),
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.http == nil {
		c.http = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}
	if c.retry.MaxAttempts == 0 {
		c.retry = DefaultRetryConfig
	}
	if opts.Breaker.Threshold > 0 {
		c.breaker = newBreaker(opts.Breaker, c.log)
	}
	return c
}

func newBreaker(cfg BreakerConfig, log zerolog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "youtube",
		MaxRequests: 1,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Threshold
		},
		// Caller mistakes and abandoned requests are not upstream outages.
		IsSuccessful: func(err error) bool {
			return err == nil || isClientError(err) ||
				errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})
}

// BreakerState reports the circuit breaker state: "closed", "half-open",
// "open", or "disabled" when no breaker is configured.
func (c *Client) BreakerState() string {
	if c.breaker == nil {
		return "disabled"
	}
	return c.breaker.State().String()
}

// Fetch performs GET {base}/{endpoint}?{params}&key=... and decodes the JSON body
// into out. timeout applies to each attempt. Every failure is a *FetchError.
func (c *Client) Fetch(ctx context.Context, endpoint string, params url.Values, timeout time.Duration, out any) error {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("key", c.apiKey)
	target := c.baseURL + "/" + endpoint + "?" + q.Encode()

	var (
		attempts   int
		lastStatus int
	)
	run := func() ([]byte, error) {
		return c.retryLoop(ctx, endpoint, target, timeout, &attempts, &lastStatus)
	}

	var (
		body []byte
		err  error
	)
	if c.breaker != nil {
		var res interface{}
		res, err = c.breaker.Execute(func() (interface{}, error) { return run() })
		if err == nil {
			body = res.([]byte)
		}
	} else {
		body, err = run()
	}

	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(endpoint, "error").Inc()
		return &FetchError{Endpoint: endpoint, StatusCode: lastStatus, Attempts: attempts, Err: err}
	}
	metrics.UpstreamRequests.WithLabelValues(endpoint, "ok").Inc()

	if err := json.Unmarshal(body, out); err != nil {
		return &FetchError{Endpoint: endpoint, StatusCode: lastStatus, Attempts: attempts, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) retryLoop(ctx context.Context, endpoint, target string, timeout time.Duration, attempts, lastStatus *int) ([]byte, error) {
	operation := func() ([]byte, error) {
		*attempts++
		body, status, err := c.attempt(ctx, target, timeout)
		*lastStatus = status
		return body, err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retry.InitialInterval
	bo.MaxInterval = c.retry.MaxInterval

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(c.retry.MaxAttempts),
		backoff.WithNotify(func(err error, wait time.Duration) {
			metrics.UpstreamRetries.WithLabelValues(endpoint).Inc()
			c.log.Debug().Str("endpoint", endpoint).Dur("wait", wait).Err(err).Msg("retrying upstream call")
		}),
	)
}

// attempt runs one gated request. Non-retryable failures are marked permanent.
func (c *Client) attempt(ctx context.Context, target string, timeout time.Duration) ([]byte, int, error) {
	if err := c.gate.Wait(ctx); err != nil {
		return nil, 0, backoff.Permanent(err)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, backoff.Permanent(ctx.Err())
		}
		// network errors and per-attempt timeouts are transient
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		se := &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
		if isRetryableStatus(resp.StatusCode) {
			return nil, resp.StatusCode, se
		}
		return nil, resp.StatusCode, backoff.Permanent(se)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}
