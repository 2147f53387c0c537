package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Page represents a fetched or rendered web page.
// Both the HTTP fetcher and the headless renderer produce a Page so that
// strategies can treat the two collaborators the same way.
type Page struct {
	// URL is the URL that was requested.
	URL string `json:"url"`

	// FinalURL is the URL after redirects (HTTP) or navigation (browser).
	// Equal to URL when no redirect happened.
	FinalURL string `json:"final_url"`

	// StatusCode is the HTTP response status code.
	// Rendered pages report 200 when navigation succeeded.
	StatusCode int `json:"status_code"`

	// Headers contains the HTTP response headers in canonical form.
	Headers map[string][]string `json:"headers,omitempty"`

	// ContentType is the MIME type of the response.
	ContentType string `json:"content_type,omitempty"`

	// Title is the text of the <title> element.
	Title string `json:"title,omitempty"`

	// Links contains the absolute same-site anchors in document order.
	Links []string `json:"links,omitempty"`

	// ArticleLinks contains the first same-site link of each <article> element.
	ArticleLinks []string `json:"article_links,omitempty"`

	// Canonical is the resolved href of <link rel="canonical">, if any.
	Canonical string `json:"canonical,omitempty"`

	// Meta holds the name and property meta tags (description, og:image, ...).
	Meta map[string]string `json:"meta,omitempty"`

	// Raw contains the (decoded) response body.
	Raw []byte `json:"-"`

	// Hash is the SHA-256 hash of Raw.
	Hash string `json:"hash,omitempty"`

	// Rendered is true when the page came from the headless browser.
	Rendered bool `json:"rendered"`
}

// MaxPageSize is the maximum size of raw page content to keep.
const MaxPageSize = 5 * 1024 * 1024 // 5 MB

// ComputeHash calculates and sets the SHA-256 hash of the page's raw content.
func (p *Page) ComputeHash() {
	if len(p.Raw) == 0 {
		p.Hash = ""
		return
	}

	hash := sha256.Sum256(p.Raw)
	p.Hash = hex.EncodeToString(hash[:])
}

// HTML returns the raw body as a string.
func (p *Page) HTML() string {
	return string(p.Raw)
}

// GetHeader returns the first value of the specified header.
// Returns empty string if the header is not present.
func (p *Page) GetHeader(name string) string {
	if values, ok := p.Headers[name]; ok && len(values) > 0 {
		return values[0]
	}
	return ""
}

// IsHTML returns true if the page content type indicates HTML.
// Rendered pages and pages without a content type are assumed to be HTML.
func (p *Page) IsHTML() bool {
	if p.Rendered || p.ContentType == "" {
		return true
	}
	ct := strings.ToLower(p.ContentType)
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}

// TruncateRaw ensures the raw content doesn't exceed MaxPageSize.
func (p *Page) TruncateRaw() {
	if len(p.Raw) > MaxPageSize {
		p.Raw = p.Raw[:MaxPageSize]
	}
}
