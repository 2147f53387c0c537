package crawler

import (
	"bufio"
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/andybalholm/brotli"

	"github.com/nao1215/recipescout/internal/model"
)

// Fetcher retrieves a single page over plain HTTP.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*model.Page, error)
}

// challengeMarkers identify bot challenge pages served with a 2xx status.
var challengeMarkers = []string{
	"cf-browser-verification",
	"cf_chl_opt",
	"checking your browser before accessing",
}

// denialMarkers additionally identify block pages served with an error status.
var denialMarkers = []string{
	"access denied",
	"captcha",
	"request blocked",
}

// HTTPFetcher implements Fetcher with a browser-like request profile.
type HTTPFetcher struct {
	client      *http.Client
	userAgents  []string
	next        atomic.Uint64
	headers     map[string]string
	maxBodySize int64
	logger      *slog.Logger
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithUserAgents sets the User-Agent values. Several values are used round robin.
func WithUserAgents(uas ...string) FetcherOption {
	return func(f *HTTPFetcher) {
		filtered := make([]string, 0, len(uas))
		for _, ua := range uas {
			if strings.TrimSpace(ua) != "" {
				filtered = append(filtered, ua)
			}
		}
		if len(filtered) > 0 {
			f.userAgents = filtered
		}
	}
}

// WithFetcherHeaders sets extra request headers. They override the defaults.
func WithFetcherHeaders(headers map[string]string) FetcherOption {
	return func(f *HTTPFetcher) {
		for k, v := range headers {
			f.headers[k] = v
		}
	}
}

// WithFetcherMaxBodySize sets the maximum number of decoded body bytes kept.
func WithFetcherMaxBodySize(size int64) FetcherOption {
	return func(f *HTTPFetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithFetcherLogger sets the logger.
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *HTTPFetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewHTTPFetcher creates a fetcher using client, which is usually built by NewHTTPClient.
func NewHTTPFetcher(client *http.Client, opts ...FetcherOption) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	f := &HTTPFetcher{
		client:      client,
		userAgents:  []string{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"},
		headers:     make(map[string]string),
		maxBodySize: model.MaxPageSize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Client returns the underlying HTTP client, for reuse by the robots agent.
func (f *HTTPFetcher) Client() *http.Client {
	return f.client
}

// Fetch downloads rawURL. Error statuses, bot pages and transport failures
// are returned as *FetchError; successful responses as a Page whose links
// have been extracted when the body is HTML.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*model.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Kind: FetchTransport, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Referer", "https://www.google.com/")
	req.Header.Set("DNT", "1")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Kind: transportKind(err), Err: err}
	}
	defer resp.Body.Close()

	body, err := f.readBody(resp)
	if err != nil {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Kind: transportKind(err), Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		kind := statusKind(resp.StatusCode)
		if kind != FetchBlocked && containsMarker(body, denialMarkers) {
			kind = FetchBlocked
		}
		f.logger.Debug("fetch returned error status", "url", rawURL, "status", resp.StatusCode, "kind", kind.String())
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Kind: kind}
	}
	if containsMarker(body, challengeMarkers) {
		f.logger.Debug("fetch returned a bot challenge", "url", rawURL)
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Kind: FetchBlocked, Err: errors.New("bot challenge page")}
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	page := &model.Page{
		URL:         rawURL,
		FinalURL:    finalURL,
		StatusCode:  resp.StatusCode,
		Headers:     resp.Header.Clone(),
		ContentType: resp.Header.Get("Content-Type"),
		Raw:         body,
	}
	page.ComputeHash()

	if page.IsHTML() {
		ParseLinks(finalURL, body).Apply(page)
	}

	return page, nil
}

func (f *HTTPFetcher) userAgent() string {
	n := f.next.Add(1) - 1
	return f.userAgents[n%uint64(len(f.userAgents))]
}

// readBody decodes the body according to Content-Encoding and caps it at maxBodySize.
func (f *HTTPFetcher) readBody(resp *http.Response) ([]byte, error) {
	reader := io.Reader(resp.Body)

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		rc, err := deflateReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("deflate decode: %w", err)
		}
		defer rc.Close()
		reader = rc
	}

	body, err := io.ReadAll(io.LimitReader(reader, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// deflateReader decodes the deflate content-coding, which is zlib-wrapped.
// Some servers send raw DEFLATE instead; a body without a valid zlib header
// is read that way.
func deflateReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(2)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if len(header) == 2 && header[0]&0x0f == 8 && (uint16(header[0])<<8|uint16(header[1]))%31 == 0 {
		return zlib.NewReader(br)
	}
	return flate.NewReader(br), nil
}

func containsMarker(body []byte, markers []string) bool {
	if len(body) == 0 {
		return false
	}
	lower := bytes.ToLower(body)
	for _, m := range markers {
		if bytes.Contains(lower, []byte(m)) {
			return true
		}
	}
	return false
}
