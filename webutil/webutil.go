// Package webutil contains the http plumbing shared by the price sources.
package webutil

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"time"

	"github.com/fega/portfolio"
	"github.com/rs/zerolog"
)

// diskCache implements a simple disk cache for HTTP responses.
//
// Keys include the current day, so entries expire every day.
type diskCache struct {
	base  http.RoundTripper
	dir   string
	log   zerolog.Logger
	today func() portfolio.Date
}

func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	key := fmt.Sprintf("%s %s %s", c.today(), req.Method, req.URL.String())
	key = fmt.Sprintf("%x", sha1.Sum([]byte(key)))

	if cached, err := c.get(key, req); err == nil {
		c.log.Debug().Str("host", req.URL.Host).Str("path", req.URL.Path).Msg("cache hit")
		return cached, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	c.log.Debug().Str("method", req.Method).Str("host", req.URL.Host).Str("path", req.URL.Path).Str("status", resp.Status).Msg("http")
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if err := c.put(key, resp); err != nil {
		c.log.Warn().Err(err).Msg("cache write failed (ignored)")
	}
	return resp, nil
}

// get retrieves a cached response from disk.
func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(c.dir, key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// put stores a response to disk. DumpResponse restores resp.Body for the caller.
func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, key), content, 0o644)
}

// UserAgent is sent with every request, some providers reject the Go default.
const UserAgent = "Mozilla/5.0 (compatible; pcs/1.0)"

// NewClient returns an http client caching successful responses in dir for the day.
// An empty dir disables the cache.
func NewClient(dir string, log zerolog.Logger) *http.Client {
	client := &http.Client{Timeout: 30 * time.Second}
	if dir == "" {
		return client
	}
	client.Transport = &diskCache{
		base:  http.DefaultTransport,
		dir:   dir,
		log:   log.With().Str("component", "http").Logger(),
		today: portfolio.Today,
	}
	return client
}

// GetJSON performs an HTTP GET request and unmarshals the JSON response into v.
//
// Network failures and non 2xx statuses are reported as portfolio.ErrUnavailable.
func GetJSON(ctx context.Context, client *http.Client, addr string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", portfolio.ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: cannot http GET %v%v: %v", portfolio.ErrUnavailable, req.URL.Host, req.URL.Path, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading %v%v: %w", portfolio.ErrUnavailable, req.URL.Host, req.URL.Path, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("invalid json from %v%v: %w", req.URL.Host, req.URL.Path, err)
	}
	return nil
}
