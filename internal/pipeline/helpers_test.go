package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/nao1215/recipescout/internal/crawler"
	"github.com/nao1215/recipescout/internal/model"
)

const recipeHTML = `<html><head><title>Fudgy Brownies</title>
<script type="application/ld+json">{"@type":"Recipe","name":"Fudgy Brownies","recipeIngredient":["1 cup sugar"],"recipeInstructions":["Bake."],"recipeYield":"9","cookTime":"PT30M","prepTime":"PT10M","totalTime":"PT40M","nutrition":{}}</script>
</head><body>
<h1>Fudgy Brownies Recipe</h1>
<p>Prep time: 10 min. Cook time: 30 min. Servings: 9.</p>
<div class="recipe-ingredients"><h2>Ingredients</h2>
<ul><li>1 cup sugar</li><li>2 tbsp cocoa</li></ul></div>
<section id="instructions"><h2>Instructions</h2><ol><li>Bake.</li></ol></section>
</body></html>`

const homeHTML = `<html><head><title>Home</title></head><body>
<a href="/category/desserts/">Desserts</a>
<a href="/about/">About</a>
</body></html>`

const dessertsHTML = `<html><head><title>Desserts</title></head><body>
<a href="/2023/05/15/fudgy-brownies/">Fudgy brownies</a>
<a href="/2023/06/01/lemon-bars/">Lemon bars</a>
<a href="/tag/chocolate/">Chocolate</a>
<a href="https://elsewhere.example.org/2023/01/01/other-site/">Elsewhere</a>
</body></html>`

const cakesHTML = `<html><head><title>Cakes</title></head><body>
<a href="/2023/07/04/carrot-cake/">Carrot cake</a>
</body></html>`

// newRecipeSite starts a small recipe site and counts requests per path.
func newRecipeSite(t *testing.T) (*httptest.Server, *sync.Map) {
	t.Helper()

	hits := &sync.Map{}
	serve := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			n, _ := hits.LoadOrStore(r.URL.Path, new(atomic.Int32))
			n.(*atomic.Int32).Add(1) //nolint:forcetypeassert
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(body)) //nolint:errcheck
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", serve(homeHTML))
	mux.HandleFunc("/category/desserts/", serve(dessertsHTML))
	mux.HandleFunc("/category/cakes/", serve(cakesHTML))
	mux.HandleFunc("/2023/05/15/fudgy-brownies/", serve(recipeHTML))
	mux.HandleFunc("/2023/06/01/lemon-bars/", serve(recipeHTML))
	mux.HandleFunc("/2023/07/04/carrot-cake/", serve(recipeHTML))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, hits
}

func hitCount(hits *sync.Map, path string) int32 {
	n, ok := hits.Load(path)
	if !ok {
		return 0
	}
	return n.(*atomic.Int32).Load() //nolint:forcetypeassert
}

// fakeRenderer serves pre-built pages.
type fakeRenderer struct {
	pages map[string]*model.Page
	err   error
	calls atomic.Int32
}

func (r *fakeRenderer) Render(_ context.Context, rawURL string) (*model.Page, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	page, ok := r.pages[rawURL]
	if !ok {
		return nil, fmt.Errorf("%w: %s", crawler.ErrRenderTimeout, rawURL)
	}
	return page, nil
}

// fakeFetcher serves pre-built pages and errors.
type fakeFetcher struct {
	mu     sync.Mutex
	pages  map[string]*model.Page
	errs   map[string]error
	called []string
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) (*model.Page, error) {
	f.mu.Lock()
	f.called = append(f.called, rawURL)
	f.mu.Unlock()

	if err, ok := f.errs[rawURL]; ok {
		return nil, err
	}
	if page, ok := f.pages[rawURL]; ok {
		return page, nil
	}
	return &model.Page{URL: rawURL, FinalURL: rawURL, StatusCode: http.StatusOK, Raw: []byte(recipeHTML)}, nil
}

func (f *fakeFetcher) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.called...)
}

// stubStrategy returns a fixed result or delegates to find.
type stubStrategy struct {
	name   string
	result Result
	find   func(ctx context.Context, req Request) Result
	panics bool
	calls  atomic.Int32
}

func (s *stubStrategy) Name() string {
	return s.name
}

func (s *stubStrategy) Find(ctx context.Context, req Request) Result {
	s.calls.Add(1)
	if s.panics {
		panic("boom")
	}
	if s.find != nil {
		return s.find(ctx, req)
	}
	return s.result
}

func okResult(urls ...string) Result {
	return Result{URLs: urls, Outcome: OutcomeOK}
}

// memStore is an in-memory RecipeStore.
type memStore struct {
	mu      sync.Mutex
	recipes []*model.Recipe
	failURL string
	closed  atomic.Int32
}

var errStoreWrite = errors.New("disk full")

func (s *memStore) Add(_ context.Context, r *model.Recipe) (int64, error) {
	if r.URL == s.failURL {
		return 0, errStoreWrite
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipes = append(s.recipes, r)
	return int64(len(s.recipes)), nil
}

func (s *memStore) Close() error {
	s.closed.Add(1)
	return nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recipes)
}

func titleExtractor(page *model.Page) (*model.Recipe, error) {
	return &model.Recipe{URL: page.URL, Title: "Recipe", Host: model.HostFromURL(page.URL)}, nil
}
