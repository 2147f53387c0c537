package crawler

import (
	"fmt"
	"testing"

	"github.com/nao1215/recipescout/internal/classify"
	"github.com/nao1215/recipescout/internal/model"
)

// TestFrontierOffer tests admission rules for offered links.
func TestFrontierOffer(t *testing.T) {
	t.Parallel()

	t.Run("excluded links are dropped", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier(classify.NewURLClassifier(), 5, 3)
		if f.Offer("https://example.com/wp-admin/edit.php", 0) {
			t.Error("excluded link was queued")
		}
		if f.Offer("https://example.com/tag/chicken-recipes/", 0) {
			t.Error("tag page was queued")
		}
		if f.Stats().Queued != 0 {
			t.Errorf("expected empty queue, got %d", f.Stats().Queued)
		}
	})

	t.Run("duplicates are rejected after normalization", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier(nil, 5, 3)
		if !f.Offer("https://example.com/recipe/cake/", 0) {
			t.Fatal("first offer rejected")
		}
		if f.Offer("https://EXAMPLE.com/recipe/cake/#comments", 1) {
			t.Error("duplicate offer accepted")
		}
	})

	t.Run("visited and failed links are rejected", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier(nil, 5, 3)
		f.Offer("https://example.com/recipe/cake/", 0)
		if len(f.NextBatch(1)) != 1 {
			t.Fatal("expected a candidate")
		}
		if f.Offer("https://example.com/recipe/cake/", 1) {
			t.Error("visited link was queued again")
		}

		f.RecordFailure("https://example.com/recipe/pie/")
		if f.Offer("https://example.com/recipe/pie/", 0) {
			t.Error("failed link was queued")
		}
	})

	t.Run("links deeper than max depth are dropped", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier(nil, 5, 1)
		if !f.Offer("https://example.com/recipe/cake/", 1) {
			t.Error("link at max depth was rejected")
		}
		if f.Offer("https://example.com/recipe/pie/", 2) {
			t.Error("link beyond max depth was queued")
		}
		if f.Stats().DepthDropped != 1 {
			t.Errorf("expected 1 depth drop, got %d", f.Stats().DepthDropped)
		}
	})
}

// TestFrontierPriority tests tiered FIFO dequeue order.
func TestFrontierPriority(t *testing.T) {
	t.Parallel()

	f := NewFrontier(nil, 10, 3)
	offers := []string{
		"https://example.com/hello",                    // unknown
		"https://example.com/category/desserts/",       // category
		"https://example.com/recipe/12345/best-cake/",  // recipe
		"https://example.com/world",                    // unknown
		"https://example.com/cuisine/italian/",         // category
		"https://example.com/2023/05/15/plain-title/",  // recipe
	}
	for _, u := range offers {
		if !f.Offer(u, 1) {
			t.Fatalf("offer rejected: %s", u)
		}
	}

	expected := []string{
		"https://example.com/recipe/12345/best-cake/",
		"https://example.com/2023/05/15/plain-title/",
		"https://example.com/category/desserts/",
		"https://example.com/cuisine/italian/",
		"https://example.com/hello",
		"https://example.com/world",
	}
	batch := f.NextBatch(100)
	if len(batch) != len(expected) {
		t.Fatalf("expected %d candidates, got %d", len(expected), len(batch))
	}
	for i, c := range batch {
		if c.URL != expected[i] {
			t.Errorf("position %d: got %s, expected %s", i, c.URL, expected[i])
		}
	}
	if batch[0].Type != model.URLTypeRecipe || batch[2].Type != model.URLTypeCategory || batch[4].Type != model.URLTypeUnknown {
		t.Errorf("unexpected candidate types %+v", batch)
	}
}

// TestFrontierBudgets tests the result budget and the satisfied state.
func TestFrontierBudgets(t *testing.T) {
	t.Parallel()

	f := NewFrontier(nil, 2, 3)
	for i := range 5 {
		f.Offer(fmt.Sprintf("https://example.com/recipe/dish-%d/", i), 0)
	}
	if f.State() != FrontierIdle {
		t.Errorf("expected idle, got %v", f.State())
	}

	c := f.NextBatch(1)[0]
	if f.State() != FrontierExpanding {
		t.Errorf("expected expanding, got %v", f.State())
	}
	if !f.RecordResult(c.URL, model.ContentClassification{IsRecipe: true, Confidence: 80}) {
		t.Fatal("recipe result was not accepted")
	}
	if f.RecordResult(c.URL, model.ContentClassification{IsRecipe: true, Confidence: 80}) {
		t.Error("the same recipe was accepted twice")
	}

	c = f.NextBatch(1)[0]
	if f.RecordResult(c.URL, model.ContentClassification{IsRecipe: false, Confidence: 10}) {
		t.Error("non-recipe result was accepted")
	}
	if f.IsSatisfied() {
		t.Fatal("satisfied too early")
	}

	c = f.NextBatch(1)[0]
	if !f.RecordResult(c.URL, model.ContentClassification{IsRecipe: true, Confidence: 65}) {
		t.Fatal("recipe result was not accepted")
	}
	if !f.IsSatisfied() || f.State() != FrontierSatisfied {
		t.Fatalf("expected satisfied, got %v", f.State())
	}

	if f.RecordResult("https://example.com/recipe/extra/", model.ContentClassification{IsRecipe: true}) {
		t.Error("accepted beyond max results")
	}
	if len(f.NextBatch(10)) != 0 {
		t.Error("satisfied frontier handed out candidates")
	}
	if f.Offer("https://example.com/recipe/late/", 0) {
		t.Error("satisfied frontier accepted an offer")
	}
	if got := f.Found(); len(got) != 2 {
		t.Errorf("expected 2 found, got %v", got)
	}
}

// TestFrontierTerminalStates tests exhaustion with and without depth drops.
func TestFrontierTerminalStates(t *testing.T) {
	t.Parallel()

	t.Run("exhausted", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier(nil, 5, 3)
		f.Offer("https://example.com/hello", 0)
		f.NextBatch(5)
		if f.State() != FrontierExhausted {
			t.Errorf("expected exhausted, got %v", f.State())
		}
	})

	t.Run("depth exceeded", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier(nil, 5, 0)
		f.Offer("https://example.com/hello", 0)
		f.NextBatch(5)
		f.Offer("https://example.com/recipe/deep/", 1)
		if f.State() != FrontierDepthExceeded {
			t.Errorf("expected depth_exceeded, got %v", f.State())
		}
	})
}

// TestFrontierNeverRevisits tests that every dequeued URL is distinct.
func TestFrontierNeverRevisits(t *testing.T) {
	t.Parallel()

	f := NewFrontier(nil, 100, 3)
	seen := make(map[string]bool)
	for round := range 3 {
		for i := range 20 {
			f.Offer(fmt.Sprintf("https://example.com/recipe/dish-%d/", i%7), round)
			f.Offer(fmt.Sprintf("https://example.com/category/c-%d/", i%3), round)
		}
		for _, c := range f.NextBatch(4) {
			if seen[c.URL] {
				t.Fatalf("URL dequeued twice: %s", c.URL)
			}
			seen[c.URL] = true
		}
	}
	for {
		batch := f.NextBatch(3)
		if len(batch) == 0 {
			break
		}
		for _, c := range batch {
			if seen[c.URL] {
				t.Fatalf("URL dequeued twice: %s", c.URL)
			}
			seen[c.URL] = true
		}
	}

	stats := f.Stats()
	if stats.Visited != len(seen) || stats.Dequeued != len(seen) {
		t.Errorf("visited %d, dequeued %d, distinct %d", stats.Visited, stats.Dequeued, len(seen))
	}
	if len(seen) != 10 {
		t.Errorf("expected 10 distinct URLs, got %d", len(seen))
	}
}
