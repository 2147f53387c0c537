package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// syncBuffer is a bytes.Buffer that tolerates concurrent log writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// execute runs the root command with args and returns what it wrote to
// stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr syncBuffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// testConfig limits category probing to the paths the test site serves.
const testConfig = `category_paths:
  - /category/desserts/
`

// writeFile writes content into a fresh temporary directory and returns the path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func recipePage(title string) string {
	return fmt.Sprintf(`<html lang="en"><head><title>%[1]s</title>
<script type="application/ld+json">{"@context":"https://schema.org","@type":"Recipe","name":"%[1]s",
"recipeIngredient":["500 ml milk","2 eggs","1 cup sugar"],
"recipeInstructions":[{"@type":"HowToStep","text":"Whisk the milk and eggs."},{"@type":"HowToStep","text":"Bake for an hour."}],
"recipeYield":"4","totalTime":"PT1H15M"}</script>
</head><body>
<h1>%[1]s Recipe</h1>
<div class="recipe-ingredients"><h2>Ingredients</h2>
<ul><li>500 ml milk</li><li>2 eggs</li><li>1 cup sugar</li></ul></div>
<section id="instructions"><h2>Instructions</h2><ol><li>Whisk the milk and eggs.</li><li>Bake for an hour.</li></ol></section>
</body></html>`, title)
}

// newRecipeSite starts a small recipe blog: a home page, one category page
// and two dated recipe posts.
func newRecipeSite(t *testing.T) *httptest.Server {
	t.Helper()

	serve := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(body)) //nolint:errcheck
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", serve(`<html><body><a href="/category/desserts/">Desserts</a></body></html>`))
	mux.HandleFunc("/category/desserts/", serve(`<html><body>
<a href="/2023/05/15/custard-pie/">Custard pie</a>
<a href="/2023/06/01/bread-pudding/">Bread pudding</a>
<a href="/about/">About</a>
</body></html>`))
	mux.HandleFunc("/2023/05/15/custard-pie/", serve(recipePage("Custard Pie")))
	mux.HandleFunc("/2023/06/01/bread-pudding/", serve(recipePage("Bread Pudding")))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// closedServerURL returns the URL of a server that no longer accepts connections.
func closedServerURL(t *testing.T) string {
	t.Helper()

	server := httptest.NewServer(http.NotFoundHandler())
	u := server.URL
	server.Close()
	return u
}
