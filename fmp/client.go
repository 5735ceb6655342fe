// Copyright 2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fmp implements a rate-limited client for the Financial Modeling
// Prep style market-data API. One HTTP GET is issued per call; a shared
// limiter enforces minimum spacing between requests across the whole batch
// and a client-wide cooldown absorbs upstream rate-limit responses.
package fmp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://financialmodelingprep.com/api/v3"

var (
	ErrNoData            = errors.New("no data for symbol")
	ErrInvalidStatusCode = errors.New("invalid status code received")
	ErrRateLimited       = errors.New("rate limited by upstream")
)

// SymbolError is the terminal per-symbol failure returned after a 404, an
// empty payload, or exhausted retries. Callers record it as "no data for
// this symbol" and move on; it never aborts a batch.
type SymbolError struct {
	Symbol   string
	Resource string
	Err      error
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Resource, e.Symbol, e.Err)
}

func (e *SymbolError) Unwrap() error {
	return e.Err
}

type Client struct {
	http        *resty.Client
	limiter     *rate.Limiter
	maxAttempts int
	backoffBase time.Duration
	backoffCap  time.Duration

	// cooldownUntil is shared across all in-flight requests: a 429 on any
	// symbol delays every subsequent request until the deadline passes.
	// Guarded by mu since batches may run with concurrency > 1.
	mu            sync.Mutex
	cooldownUntil time.Time
}

type Option func(*Client)

// WithBaseURL overrides the API endpoint, used in tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.http.SetBaseURL(baseURL)
	}
}

// WithRequestInterval sets the minimum spacing between consecutive requests.
func WithRequestInterval(interval time.Duration) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// WithMaxAttempts sets the retry ceiling for transient failures.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		c.maxAttempts = n
	}
}

// WithBackoff sets the exponential backoff base delay and its ceiling.
func WithBackoff(base, ceiling time.Duration) Option {
	return func(c *Client) {
		c.backoffBase = base
		c.backoffCap = ceiling
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

func New(apiKey string, opts ...Option) *Client {
	client := &Client{
		http: resty.New().
			SetBaseURL(defaultBaseURL).
			SetQueryParam("apikey", apiKey).
			SetTimeout(15 * time.Second),
		limiter:     rate.NewLimiter(rate.Every(750*time.Millisecond), 1),
		maxAttempts: 5,
		backoffBase: 2 * time.Second,
		backoffCap:  2 * time.Minute,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// getJSON issues a GET against path, decoding a 2xx response body into
// result. 429 responses arm the client-wide cooldown and retry; 5xx and
// transient network errors retry with exponential backoff; 404 maps to
// ErrNoData immediately.
func (c *Client) getJSON(ctx context.Context, path string, params map[string]string, result any) error {
	logger := zerolog.Ctx(ctx)

	var lastErr error

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if err := c.awaitCooldown(ctx); err != nil {
			return err
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(params).
			SetResult(result).
			Get(path)

		switch {
		case err != nil:
			if !isTransient(err) {
				return err
			}

			logger.Warn().Err(err).Str("Path", path).Int("Attempt", attempt+1).Msg("transient network error, retrying")
			lastErr = err

			if err := c.sleepBackoff(ctx, attempt); err != nil {
				return err
			}

		case resp.StatusCode() == http.StatusNotFound:
			return ErrNoData

		case resp.StatusCode() == http.StatusTooManyRequests:
			until := c.startCooldown(attempt)
			logger.Warn().Str("Path", path).Time("CooldownUntil", until).Msg("upstream rate limit hit")
			lastErr = ErrRateLimited

		case resp.StatusCode() >= 500:
			logger.Warn().Int("StatusCode", resp.StatusCode()).Str("Path", path).Int("Attempt", attempt+1).Msg("server error, retrying")
			lastErr = fmt.Errorf("%w (%d)", ErrInvalidStatusCode, resp.StatusCode())

			if err := c.sleepBackoff(ctx, attempt); err != nil {
				return err
			}

		case resp.StatusCode() >= 300:
			return fmt.Errorf("%w (%d): %s", ErrInvalidStatusCode, resp.StatusCode(), string(resp.Body()))

		default:
			return nil
		}
	}

	return fmt.Errorf("giving up after %d attempts: %w", c.maxAttempts, lastErr)
}

// awaitCooldown blocks until any active rate-limit cooldown has passed.
func (c *Client) awaitCooldown(ctx context.Context) error {
	c.mu.Lock()
	wait := time.Until(c.cooldownUntil)
	c.mu.Unlock()

	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) startCooldown(attempt int) time.Time {
	until := time.Now().Add(c.backoff(attempt))

	c.mu.Lock()
	if until.After(c.cooldownUntil) {
		c.cooldownUntil = until
	}
	until = c.cooldownUntil
	c.mu.Unlock()

	return until
}

func (c *Client) backoff(attempt int) time.Duration {
	delay := c.backoffBase << uint(attempt)
	if delay > c.backoffCap || delay <= 0 {
		delay = c.backoffCap
	}

	return delay
}

func (c *Client) sleepBackoff(ctx context.Context, attempt int) error {
	timer := time.NewTimer(c.backoff(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isTransient reports whether a request error is worth retrying.
func isTransient(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF)
}
