package crawler

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/recipescout/internal/model"
)

// Parser extracts links and page metadata from HTML content.
type Parser struct {
	// baseURL is the URL of the page being parsed, used for resolving relative URLs.
	baseURL *url.URL
}

// ParseResult contains the information extracted from an HTML page.
type ParseResult struct {
	// Title is the page title from the <title> tag.
	Title string

	// InternalLinks are the resolved anchors on the same site as the base
	// URL, in document order and deduplicated.
	InternalLinks []string

	// ArticleLinks holds the first same-site link of each <article> element.
	// Blogs wrap each post teaser in an article, so these are strong recipe candidates.
	ArticleLinks []string

	// Canonical is the href of <link rel="canonical">, resolved.
	Canonical string

	// MetaTags contains name/property meta tags.
	MetaTags map[string]string
}

// NewParser creates a new HTML parser with the given base URL.
// The base URL is used to resolve relative links.
func NewParser(baseURL string) (*Parser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Parser{baseURL: u}, nil
}

// Parse parses HTML content and extracts links and metadata.
func (p *Parser) Parse(content io.Reader) (*ParseResult, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		InternalLinks: make([]string, 0),
		ArticleLinks:  make([]string, 0),
		MetaTags:      make(map[string]string),
	}
	seen := make(map[string]struct{})

	var walk func(n *html.Node, article *articleState)
	walk = func(n *html.Node, article *articleState) {
		if n.Type == html.ElementNode {
			if n.Data == "article" {
				article = &articleState{}
			}
			p.processElement(n, result, seen, article)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, article)
		}
	}
	walk(doc, nil)

	return result, nil
}

// articleState tracks whether the enclosing <article> already contributed a link.
type articleState struct {
	done bool
}

// processElement handles HTML element nodes.
func (p *Parser) processElement(n *html.Node, result *ParseResult, seen map[string]struct{}, article *articleState) {
	switch n.Data {
	case "title":
		if result.Title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			result.Title = strings.TrimSpace(n.FirstChild.Data)
		}

	case "a":
		resolved := p.resolveURL(getAttr(n, "href"))
		if resolved == "" {
			return
		}
		internal := SameSite(p.baseURL.String(), resolved)
		if article != nil && !article.done && internal {
			article.done = true
			result.ArticleLinks = append(result.ArticleLinks, resolved)
		}
		if _, ok := seen[resolved]; ok || !internal {
			return
		}
		seen[resolved] = struct{}{}
		result.InternalLinks = append(result.InternalLinks, resolved)

	case "link":
		if strings.EqualFold(getAttr(n, "rel"), "canonical") {
			result.Canonical = p.resolveURL(getAttr(n, "href"))
		}

	case "meta":
		name := getAttr(n, "name")
		if name == "" {
			name = getAttr(n, "property") // OpenGraph uses property
		}
		if content := getAttr(n, "content"); name != "" && content != "" {
			result.MetaTags[name] = content
		}
	}
}

// resolveURL resolves href against the base URL.
// Non-http(s) targets and bare fragments resolve to "". Fragments are dropped.
func (p *Parser) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := p.baseURL.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""
	return resolved.String()
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// Apply copies the parse result onto page.
func (r *ParseResult) Apply(page *model.Page) {
	if page.Title == "" {
		page.Title = r.Title
	}
	page.Links = r.InternalLinks
	page.ArticleLinks = r.ArticleLinks
	page.Canonical = r.Canonical
	page.Meta = r.MetaTags
}

// ParseLinks is a convenience wrapper that parses body relative to baseURL.
// Parse failures yield an empty result rather than an error, since link
// discovery is best effort.
func ParseLinks(baseURL string, body []byte) *ParseResult {
	empty := &ParseResult{MetaTags: map[string]string{}}
	parser, err := NewParser(baseURL)
	if err != nil {
		return empty
	}
	result, err := parser.Parse(strings.NewReader(string(body)))
	if err != nil {
		return empty
	}
	return result
}
