package ics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pthm/hxwidget/lib/logging"
)

// FetchResult is the outcome of one fetch.
type FetchResult struct {
	URL       string
	Body      []byte
	FromCache bool // the body was reused after a 304 or a failed request
}

type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
	body         []byte
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithCacheDir keeps fetched bodies and validators on disk under dir so
// they survive restarts. Without it the cache lives in memory.
func WithCacheDir(dir string) FetcherOption {
	return func(f *Fetcher) {
		f.cacheDir = dir
	}
}

// WithRetries sets how often a failing request is retried and the first
// wait between attempts.
func WithRetries(n uint64, initial time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.maxRetries = n
		f.initialInterval = initial
	}
}

// Fetcher downloads ICS feeds with conditional requests (ETag and
// Last-Modified) and exponential backoff. When every attempt fails a
// previously fetched body is served instead.
type Fetcher struct {
	client          *http.Client
	cacheDir        string
	maxRetries      uint64
	initialInterval time.Duration

	mu  sync.Mutex
	mem map[string]cacheEntry
}

// NewFetcher creates a fetcher.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:          &http.Client{Timeout: 15 * time.Second},
		maxRetries:      3,
		initialInterval: 500 * time.Millisecond,
		mem:             make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// statusError is a non-success HTTP status.
type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return "ics: unexpected status " + e.status
}

func (f *Fetcher) backoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.initialInterval
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 2 * time.Minute
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, f.maxRetries), ctx)
}

// Fetch downloads rawURL. Network failures, 429 and 5xx answers are
// retried; other 4xx answers are not.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (FetchResult, error) {
	if rawURL == "" {
		return FetchResult{}, errors.New("ics: empty feed URL")
	}
	cached, _ := f.load(rawURL)
	log := logging.Logger.With().Str("url", redactURL(rawURL)).Logger()

	var result FetchResult
	op := func() error {
		r, err := f.fetchOnce(ctx, rawURL, cached)
		if err != nil {
			var se *statusError
			if errors.As(err, &se) && se.code < 500 && se.code != http.StatusTooManyRequests {
				return backoff.Permanent(err)
			}
			return err
		}
		result = r
		return nil
	}
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Dur("retry_in", wait).Msg("ics: fetch failed")
	}

	if err := backoff.RetryNotify(op, f.backoff(ctx), notify); err != nil {
		if len(cached.body) > 0 {
			log.Warn().Err(err).Msg("ics: using cached body")
			return FetchResult{URL: rawURL, Body: cached.body, FromCache: true}, nil
		}
		return FetchResult{}, err
	}
	log.Debug().Bool("from_cache", result.FromCache).Int("bytes", len(result.Body)).Msg("ics: fetched")
	return result, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string, cached cacheEntry) (FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return FetchResult{}, backoff.Permanent(err)
	}
	if len(cached.body) > 0 {
		if cached.ETag != "" {
			req.Header.Set("If-None-Match", cached.ETag)
		}
		if cached.LastModified != "" {
			req.Header.Set("If-Modified-Since", cached.LastModified)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return FetchResult{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return FetchResult{}, err
		}
		entry := cacheEntry{
			URL:          rawURL,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			UpdatedAt:    time.Now().UTC(),
			body:         body,
		}
		if err := f.save(entry); err != nil {
			logging.Warn().Err(err).Str("url", redactURL(rawURL)).Msg("ics: cache save failed")
		}
		return FetchResult{URL: rawURL, Body: body}, nil

	case http.StatusNotModified:
		if len(cached.body) == 0 {
			return FetchResult{}, backoff.Permanent(errors.New("ics: 304 without a cached body"))
		}
		return FetchResult{URL: rawURL, Body: cached.body, FromCache: true}, nil

	default:
		return FetchResult{}, &statusError{code: resp.StatusCode, status: resp.Status}
	}
}

func (f *Fetcher) load(rawURL string) (cacheEntry, error) {
	f.mu.Lock()
	entry, ok := f.mem[rawURL]
	f.mu.Unlock()
	if ok || f.cacheDir == "" {
		return entry, nil
	}

	dir := f.cachePath(rawURL)
	data, err := os.ReadFile(filepath.Join(dir, "meta.json"))
	if err != nil {
		return cacheEntry{}, err
	}
	if err := json.Unmarshal(data, &entry); err != nil {
		return cacheEntry{}, err
	}
	if entry.body, err = os.ReadFile(filepath.Join(dir, "body.ics")); err != nil {
		return cacheEntry{}, err
	}
	return entry, nil
}

func (f *Fetcher) save(entry cacheEntry) error {
	f.mu.Lock()
	f.mem[entry.URL] = entry
	f.mu.Unlock()
	if f.cacheDir == "" {
		return nil
	}

	dir := f.cachePath(entry.URL)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	// Body first so the metadata never points at a missing body.
	if err := os.WriteFile(filepath.Join(dir, "body.ics"), entry.body, 0o600); err != nil {
		return err
	}
	data, err := json.MarshalIndent(&entry, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "meta.json"), data, 0o600)
}

func (f *Fetcher) cachePath(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return filepath.Join(f.cacheDir, hex.EncodeToString(sum[:8]))
}

// redactURL keeps only the scheme and host of a feed URL for logging;
// private feed URLs carry secrets in the path or query.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "ics://(redacted)"
	}
	return fmt.Sprintf("%s://%s/...", u.Scheme, u.Host)
}
