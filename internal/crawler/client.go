package crawler

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// maxRedirects is the redirect limit for crawler HTTP clients.
const maxRedirects = 10

// ClientOptions configures NewHTTPClient.
type ClientOptions struct {
	// Timeout is the overall request timeout.
	Timeout time.Duration

	// ProxyURL routes requests through a proxy. socks5:// and socks5h://
	// use a SOCKS5 dialer; http:// and https:// use a forward proxy.
	ProxyURL string

	// Cookie is a raw cookie string sent with every request.
	Cookie string

	// Headers are set on every request.
	Headers map[string]string

	// InsecureSkipVerify disables TLS verification. It is only enabled for
	// domains listed as having broken certificates.
	InsecureSkipVerify bool
}

// NewHTTPClient creates an HTTP client for crawling.
//
// The client keeps cookies across requests, follows at most 10 redirects
// and injects the configured cookie and headers into every request,
// redirects included.
func NewHTTPClient(opts ClientOptions) (*http.Client, error) {
	transport := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		// Compression is negotiated and decoded by the fetcher so that br works too.
		DisableCompression: true,
	}
	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // only for domains with known certificate problems
		}
	}

	if strings.TrimSpace(opts.ProxyURL) != "" {
		if err := configureProxy(transport, opts.ProxyURL); err != nil {
			return nil, err
		}
	}

	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	client := &http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
		Jar:       jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	if opts.Cookie != "" || len(opts.Headers) > 0 {
		headers := make(map[string]string, len(opts.Headers))
		for k, v := range opts.Headers {
			headers[k] = v
		}
		client.Transport = &headerInjectingTransport{
			base:    transport,
			cookie:  opts.Cookie,
			headers: headers,
		}
	}

	return client, nil
}

func configureProxy(transport *http.Transport, rawProxy string) error {
	u, err := url.Parse(strings.TrimSpace(rawProxy))
	if err != nil || u.Host == "" {
		return ErrInvalidProxyURL
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		transport.Proxy = http.ProxyURL(u)
		return nil
	case "socks5", "socks5h":
		dialer, err := proxy.FromURL(u, proxy.Direct)
		if err != nil {
			return fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
		} else {
			transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
		return nil
	default:
		return ErrInvalidProxyURL
	}
}

// headerInjectingTransport wraps an http.RoundTripper to inject
// custom headers and cookies into every request.
type headerInjectingTransport struct {
	base    http.RoundTripper
	cookie  string
	headers map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	if t.cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+t.cookie)
		} else {
			clone.Header.Set("Cookie", t.cookie)
		}
	}

	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}

	return t.base.RoundTrip(clone)
}
