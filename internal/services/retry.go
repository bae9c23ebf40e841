package services

import (
	"bytes"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

// RetryTransport wraps http.RoundTripper with retry logic for rate-limited
// responses. On 429 (Too Many Requests) or 503 (the Gemini API's overload
// status) it sleeps and retries the request up to MaxRetries times using
// exponential backoff with jitter.
type RetryTransport struct {
	Base       http.RoundTripper
	MaxRetries int
	BaseDelay  time.Duration
	Logger     *slog.Logger
}

// RoundTrip executes the HTTP request, retrying on 429 and 503 responses.
// The request body is buffered before the first attempt so retries can
// re-send the original payload. Between retries the retry-after header is
// respected when present, otherwise exponential backoff with 0-25% jitter
// applies. The request context is checked between retries to allow early
// cancellation.
func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	logger := t.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	}

	var resp *http.Response
	var err error

	for attempt := 0; attempt <= t.MaxRetries; attempt++ {
		if attempt > 0 && bodyBytes != nil {
			req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}

		resp, err = base.RoundTrip(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode != http.StatusServiceUnavailable {
			return resp, nil
		}

		if attempt == t.MaxRetries {
			return resp, nil
		}

		delay := parseRetryAfter(resp.Header)
		if delay <= 0 {
			// Exponential backoff: baseDelay * 2^attempt
			delay = t.BaseDelay * (1 << uint(attempt))
		}

		// 0-25% jitter to avoid synchronized retries.
		jitter := time.Duration(rand.Int63n(int64(delay)/4 + 1))
		delay += jitter

		logger.Warn("rate limited, retrying",
			"attempt", attempt+1,
			"max_retries", t.MaxRetries,
			"status", resp.StatusCode,
			"delay", delay,
		)

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(delay):
		}
	}

	return resp, err
}

// parseRetryAfter reads a retry-after header given in seconds. Zero means
// absent or unparseable.
func parseRetryAfter(header http.Header) time.Duration {
	raw := header.Get("Retry-After")
	if raw == "" {
		return 0
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
