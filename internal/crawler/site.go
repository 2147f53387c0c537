package crawler

import (
	"net"
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// SameSite reports whether two URLs belong to the same site.
//
// Hosts are compared by registrable domain (eTLD+1), so www.example.com and
// cooking.example.com are the same site. IP addresses and hosts without a
// registrable domain (localhost) compare by host and port.
func SameSite(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil || ua.Host == "" {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil || ub.Host == "" {
		return false
	}

	ka, okA := siteKey(ua.Hostname())
	kb, okB := siteKey(ub.Hostname())
	if !okA || !okB {
		return strings.EqualFold(ua.Host, ub.Host)
	}
	return ka == kb
}

// siteKey returns the registrable domain of host.
func siteKey(host string) (string, bool) {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" || net.ParseIP(host) != nil {
		return "", false
	}
	key, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return "", false
	}
	return key, true
}

// SiteRoot returns scheme://host of rawURL. A missing scheme defaults to https.
func SiteRoot(rawURL string) (string, error) {
	u, err := ParseTarget(rawURL)
	if err != nil {
		return "", err
	}
	return u.Scheme + "://" + u.Host, nil
}

// ParseTarget parses a user-supplied site or URL, defaulting the scheme to https.
func ParseTarget(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Host == "" {
		return nil, &url.Error{Op: "parse", URL: raw, Err: errMissingHost}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		u.Scheme = "https"
	}
	return u, nil
}

// NormalizeURL normalizes a URL for deduplication: the fragment is dropped,
// scheme and host are lower-cased, and an empty path becomes "/".
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return rawURL
	}

	u.Fragment = ""
	u.RawFragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}

// JoinPath resolves path against the site root of base.
func JoinPath(base, path string) string {
	root, err := SiteRoot(base)
	if err != nil {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return root + path
}

// Ignored reports whether the path of rawURL matches one of the glob patterns.
// Patterns use glob syntax (e.g., "/shop/*", "*.pdf").
func Ignored(patterns []string, rawURL string) bool {
	if len(patterns) == 0 {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	for _, pattern := range patterns {
		if matchPattern(pattern, path) {
			return true
		}
	}
	return false
}

// matchPattern checks if a path matches a glob pattern.
//
// Examples:
//   - "/shop/*" matches "/shop/knives", "/shop/pans"
//   - "*.pdf" matches "/docs/file.pdf"
//   - "/page/?" matches "/page/2"
func matchPattern(pattern, path string) bool {
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	if strings.HasPrefix(pattern, "*.") && strings.HasSuffix(path, strings.TrimPrefix(pattern, "*")) {
		return true
	}

	if matched, err := filepath.Match(pattern, path); err == nil && matched {
		return true
	}

	// Bare patterns like "*.pdf" also match against the last segment.
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		if matched, err := filepath.Match(pattern, filepath.Base(path)); err == nil && matched {
			return true
		}
	}

	return false
}
