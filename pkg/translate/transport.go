package translate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultTimeout bounds a single provider request.
	DefaultTimeout = 10 * time.Second

	// maxResponseBytes caps how much of a provider response is read.
	maxResponseBytes = 1 << 20
)

// newHTTPClient returns the client used when none is configured.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// newFormRequest builds a urlencoded POST request.
func newFormRequest(ctx context.Context, endpoint string, params url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req, nil
}

// do executes req and returns the response body. Transport failures and
// non-200 statuses are errors; the body of a non-200 response is included in
// the error text.
func do(hc *http.Client, logger *logrus.Logger, p Provider, req *http.Request) ([]byte, error) {
	startTime := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"provider": p,
			"host":     req.URL.Host,
		}).Error("Translation request failed")
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	duration := time.Since(startTime)
	if err != nil {
		logger.WithError(err).WithField("provider", p).Error("Failed to read translation response")
		return nil, fmt.Errorf("read response: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"provider":    p,
		"status_code": resp.StatusCode,
		"duration_ms": duration.Milliseconds(),
	}).Debug("Translation request completed")

	if resp.StatusCode != http.StatusOK {
		logger.WithFields(logrus.Fields{
			"provider":    p,
			"status_code": resp.StatusCode,
			"response":    string(body),
		}).Error("Translation request returned non-OK status")
		return body, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
