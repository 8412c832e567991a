// Package recommendapi talks to the remote recommendation endpoint.
package recommendapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"smarttour/internal/adapters/observability"
	"smarttour/internal/domain"
)

var (
	ErrBadResponse = fmt.Errorf("recommend: %w", domain.ErrBadResponse)
	ErrCircuitOpen = fmt.Errorf("recommend: circuit open: %w", domain.ErrUnavailable)
	ErrRateLimited = fmt.Errorf("recommend: rate limited: %w", domain.ErrUnavailable)
	ErrTimeout     = fmt.Errorf("recommend: upstream timed out: %w", context.DeadlineExceeded)
)

// StatusError is returned for any non-2xx reply.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("recommend: upstream status %d", e.Code)
	}
	return fmt.Sprintf("recommend: upstream status %d: %s", e.Code, e.Body)
}

func (e *StatusError) Unwrap() error { return domain.ErrUpstreamStatus }

const maxBody = 1 << 20

type Client struct {
	endpoint string
	path     string // metrics label
	hc       *http.Client
	rl       *rate.Limiter
	cb       *gobreaker.CircuitBreaker[domain.Recommendations]
}

type Options struct {
	RPS     int
	Timeout time.Duration
}

func New(endpoint string, opt Options) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("recommend endpoint %q is not an absolute URL", endpoint)
	}
	if opt.RPS <= 0 {
		opt.RPS = 20
	}
	if opt.Timeout <= 0 {
		opt.Timeout = 10 * time.Second
	}
	name := "recommend-api"
	observability.ObserveBreaker(name, 0)
	return &Client{
		endpoint: endpoint,
		path:     u.Path,
		hc:       &http.Client{Timeout: opt.Timeout},
		rl:       rate.NewLimiter(rate.Limit(opt.RPS), opt.RPS),
		cb: gobreaker.NewCircuitBreaker[domain.Recommendations](gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			// Opens after 5 straight failures.
			ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 5 },
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
				observability.ObserveBreaker(name, stateValue(to))
			},
			// a caller going away says nothing about upstream health
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
		}),
	}, nil
}

// Recommend sends one POST with the preferences as JSON. There are no retries.
func (c *Client) Recommend(ctx context.Context, p domain.Preferences) (domain.Recommendations, error) {
	if err := c.rl.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return domain.Recommendations{}, ctx.Err()
		}
		// no token before the caller's deadline
		return domain.Recommendations{}, fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	out, err := c.cb.Execute(func() (domain.Recommendations, error) { return c.post(ctx, p) })
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.Recommendations{}, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	return out, err
}

func (c *Client) post(ctx context.Context, p domain.Preferences) (domain.Recommendations, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return domain.Recommendations{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Recommendations{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "smarttour-web/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("recommend", c.path, 0, time.Since(start))
		if ctx.Err() != nil {
			return domain.Recommendations{}, ctx.Err()
		}
		if isTimeout(err) {
			return domain.Recommendations{}, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return domain.Recommendations{}, fmt.Errorf("recommend: %w: %v", domain.ErrUnreachable, err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("recommend", c.path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// read a small error body for diagnostics
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.Recommendations{}, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	var raw struct {
		Recommendations *[]string `json:"recommendations"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&raw); err != nil {
		return domain.Recommendations{}, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if raw.Recommendations == nil {
		return domain.Recommendations{}, fmt.Errorf("%w: missing recommendations field", ErrBadResponse)
	}
	return domain.Recommendations{Recommendations: *raw.Recommendations}, nil
}

// isTimeout covers http.Client.Timeout, which fires while the caller's
// context is still live.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
