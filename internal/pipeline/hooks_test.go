package pipeline

import (
	"slices"
	"testing"

	"github.com/nao1215/recipescout/internal/classify"
	"github.com/nao1215/recipescout/internal/model"
)

// TestHookRegistry tests hook lookup and classifier wiring.
func TestHookRegistry(t *testing.T) {
	t.Parallel()

	t.Run("finds the built-in hook by host", func(t *testing.T) {
		t.Parallel()

		r := DefaultHooks()
		hook, ok := r.Lookup("https://www.theloopywhisk.com/diet/vegan/")
		if !ok {
			t.Fatal("expected a hook")
		}
		if len(hook.SeedPaths) != 5 || hook.SeedPaths[0] != "/diet/gluten-free" {
			t.Errorf("unexpected seed paths %v", hook.SeedPaths)
		}
		if _, ok := r.Lookup("https://example.com/"); ok {
			t.Error("expected no hook for other hosts")
		}
		if _, ok := r.Lookup("not a url"); ok {
			t.Error("expected no hook without a host")
		}
	})

	t.Run("ignores hooks without a domain", func(t *testing.T) {
		t.Parallel()

		r := NewHookRegistry(SiteHook{SeedPaths: []string{"/x"}})
		if _, ok := r.Lookup("https://example.com/"); ok {
			t.Error("expected empty-domain hook to be ignored")
		}
	})

	t.Run("nil registry finds nothing", func(t *testing.T) {
		t.Parallel()

		var r *HookRegistry
		if _, ok := r.Lookup("https://theloopywhisk.com/"); ok {
			t.Error("expected no hook")
		}
		if opts := r.ContentOptions(); opts != nil {
			t.Error("expected no options")
		}
	})

	t.Run("registers overrides with the content classifier", func(t *testing.T) {
		t.Parallel()

		c := classify.NewContentClassifier(DefaultHooks().ContentOptions()...)
		if !c.HasOverride("https://theloopywhisk.com/2024/01/02/bread/") {
			t.Error("expected override for the hooked site")
		}
		ok, _ := c.IsRecipePage("<html></html>", "https://theloopywhisk.com/2024/01/02/bread/")
		if !ok {
			t.Error("expected the date override to accept the page")
		}
	})
}

// TestPreferDateAndArticleLinks tests the link ordering of the date hook.
func TestPreferDateAndArticleLinks(t *testing.T) {
	t.Parallel()

	page := &model.Page{
		Links: []string{
			"https://s.com/about/",
			"https://s.com/cakes/",
			"https://s.com/2024/01/02/bread/",
			"https://s.com/featured-tart/",
		},
		ArticleLinks: []string{"https://s.com/featured-tart/"},
	}

	got := preferDateAndArticleLinks(page)
	want := []string{
		"https://s.com/2024/01/02/bread/",
		"https://s.com/featured-tart/",
		"https://s.com/about/",
		"https://s.com/cakes/",
	}
	if !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

// TestSeedURLs tests seed ordering and de-duplication.
func TestSeedURLs(t *testing.T) {
	t.Parallel()

	hook := SiteHook{SeedPaths: []string{"/diet/vegan"}}
	got := seedURLs("https://s.com/", hook, []string{"/favorites", "/diet/vegan"}, []string{"/recipes", "https://s.com/favorites"})
	want := []string{
		"https://s.com/diet/vegan",
		"https://s.com/favorites",
		"https://s.com/recipes",
		"https://s.com/",
	}
	if !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
