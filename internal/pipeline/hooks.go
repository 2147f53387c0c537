package pipeline

import (
	"net/url"
	"strings"

	"github.com/nao1215/recipescout/internal/classify"
	"github.com/nao1215/recipescout/internal/crawler"
	"github.com/nao1215/recipescout/internal/model"
)

// SiteHook customizes crawling for one site. All fields are optional.
type SiteHook struct {
	// Domain is matched against the host by substring, e.g. "theloopywhisk.com".
	Domain string

	// SeedPaths are tried before the configured category paths.
	SeedPaths []string

	// SelectLinks orders the links of a page for offering to the frontier.
	// Nil means the page's links in document order.
	SelectLinks func(page *model.Page) []string

	// Override accepts pages as recipes without the weighted score.
	Override classify.Override
}

// HookRegistry looks up site hooks by host.
type HookRegistry struct {
	hooks []SiteHook
}

// NewHookRegistry creates a registry from hooks.
func NewHookRegistry(hooks ...SiteHook) *HookRegistry {
	r := &HookRegistry{}
	for _, h := range hooks {
		r.Register(h)
	}
	return r
}

// DefaultHooks returns the registry with the built-in site hooks.
func DefaultHooks() *HookRegistry {
	return NewHookRegistry(LoopyWhiskHook())
}

// Register adds a hook. A hook with an empty domain is ignored.
func (r *HookRegistry) Register(h SiteHook) {
	h.Domain = strings.ToLower(strings.TrimSpace(h.Domain))
	if h.Domain == "" {
		return
	}
	r.hooks = append(r.hooks, h)
}

// Lookup returns the hook for the host of rawURL.
func (r *HookRegistry) Lookup(rawURL string) (SiteHook, bool) {
	if r == nil {
		return SiteHook{}, false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return SiteHook{}, false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return SiteHook{}, false
	}
	for _, h := range r.hooks {
		if strings.Contains(host, h.Domain) {
			return h, true
		}
	}
	return SiteHook{}, false
}

// ContentOptions returns classifier options registering every hook override.
func (r *HookRegistry) ContentOptions() []classify.ContentOption {
	if r == nil {
		return nil
	}
	var opts []classify.ContentOption
	for _, h := range r.hooks {
		if h.Override != nil {
			opts = append(opts, classify.WithSiteOverride(h.Domain, h.Override))
		}
	}
	return opts
}

// LoopyWhiskHook handles theloopywhisk.com. Its recipes live under
// /YYYY/MM/DD/slug/ and its listing pages are diet and cake categories.
func LoopyWhiskHook() SiteHook {
	return SiteHook{
		Domain: "theloopywhisk.com",
		SeedPaths: []string{
			"/diet/gluten-free",
			"/diet/dairy-free",
			"/diet/vegan",
			"/diet/refined-sugar-free",
			"/category/cakes-mini-cakes",
		},
		SelectLinks: preferDateAndArticleLinks,
		Override:    classify.DateOrSchemaOverride{},
	}
}

// preferDateAndArticleLinks returns date-patterned links first, then links
// found inside <article> elements, then everything else.
func preferDateAndArticleLinks(page *model.Page) []string {
	out := make([]string, 0, len(page.Links))
	seen := make(map[string]struct{}, len(page.Links))
	add := func(link string) {
		if _, ok := seen[link]; ok {
			return
		}
		seen[link] = struct{}{}
		out = append(out, link)
	}

	for _, link := range page.Links {
		if classify.IsDatePath(link) {
			add(link)
		}
	}
	for _, link := range page.ArticleLinks {
		add(link)
	}
	for _, link := range page.Links {
		add(link)
	}
	return out
}

// seedURLs builds the de-duplicated seed list: hook paths, request paths,
// global category paths and finally the start URL itself.
func seedURLs(startURL string, hook SiteHook, reqPaths, categoryPaths []string) []string {
	var seeds []string
	seen := make(map[string]struct{})
	add := func(u string) {
		if u == "" {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		seeds = append(seeds, u)
	}

	for _, group := range [][]string{hook.SeedPaths, reqPaths, categoryPaths} {
		for _, p := range group {
			add(joinSeed(startURL, p))
		}
	}
	add(startURL)
	return seeds
}

func joinSeed(startURL, path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	return crawler.JoinPath(startURL, path)
}
