package crawler

import (
	"sync"

	"github.com/nao1215/recipescout/internal/classify"
	"github.com/nao1215/recipescout/internal/model"
)

// FrontierState is the lifecycle state of a crawl session.
type FrontierState int

const (
	// FrontierIdle means nothing has been dequeued yet.
	FrontierIdle FrontierState = iota

	// FrontierExpanding means candidates are being fetched.
	FrontierExpanding

	// FrontierSatisfied means maxResults recipes were found. No further
	// candidates are handed out.
	FrontierSatisfied

	// FrontierExhausted means the queue ran dry within the depth budget.
	FrontierExhausted

	// FrontierDepthExceeded means the queue ran dry and at least one
	// candidate was dropped for exceeding maxDepth.
	FrontierDepthExceeded
)

// String returns the lower-case state name.
func (s FrontierState) String() string {
	switch s {
	case FrontierIdle:
		return "idle"
	case FrontierExpanding:
		return "expanding"
	case FrontierSatisfied:
		return "satisfied"
	case FrontierExhausted:
		return "exhausted"
	case FrontierDepthExceeded:
		return "depth_exceeded"
	default:
		return "unknown"
	}
}

// Candidate is a queued URL.
type Candidate struct {
	URL   string
	Depth int
	Type  model.URLType
}

// priority tiers, highest first.
const (
	tierRecipe = iota
	tierCategory
	tierUnknown
	tierCount
)

// Frontier is the per-session crawl frontier. It owns the visited, queued,
// failed and found sets of one strategy run and is never shared across sites.
//
// Offered links are classified by URL. Excluded links are dropped; the rest
// are queued in three tiers (recipe, category, unknown) and dequeued tier by
// tier in FIFO order.
type Frontier struct {
	classifier *classify.URLClassifier
	maxDepth   int
	maxResults int

	mu           sync.Mutex
	tiers        [tierCount][]Candidate
	queued       map[string]struct{}
	visited      map[string]struct{}
	failed       map[string]struct{}
	found        []string
	foundSet     map[string]struct{}
	dequeued     int
	depthDropped int
}

// NewFrontier creates a frontier. maxResults below 1 is treated as 1 and a
// negative maxDepth as 0.
func NewFrontier(classifier *classify.URLClassifier, maxResults, maxDepth int) *Frontier {
	if classifier == nil {
		classifier = classify.NewURLClassifier()
	}
	return &Frontier{
		classifier: classifier,
		maxDepth:   max(maxDepth, 0),
		maxResults: max(maxResults, 1),
		queued:     make(map[string]struct{}),
		visited:    make(map[string]struct{}),
		failed:     make(map[string]struct{}),
		foundSet:   make(map[string]struct{}),
	}
}

// Offer classifies link and queues it at depth. It reports whether the link
// was queued. Links already visited, failed, queued, found, excluded or
// deeper than maxDepth are rejected, as is everything once the session is
// satisfied.
func (f *Frontier) Offer(link string, depth int) bool {
	key := NormalizeURL(link)

	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.found) >= f.maxResults {
		return false
	}
	if depth > f.maxDepth {
		f.depthDropped++
		return false
	}
	if f.known(key) {
		return false
	}

	c := f.classifier.Classify(key)
	var tier int
	switch c.Type {
	case model.URLTypeExclude:
		return false
	case model.URLTypeRecipe:
		tier = tierRecipe
	case model.URLTypeCategory:
		tier = tierCategory
	default:
		tier = tierUnknown
	}

	f.tiers[tier] = append(f.tiers[tier], Candidate{URL: key, Depth: depth, Type: c.Type})
	f.queued[key] = struct{}{}
	return true
}

func (f *Frontier) known(key string) bool {
	if _, ok := f.visited[key]; ok {
		return true
	}
	if _, ok := f.failed[key]; ok {
		return true
	}
	if _, ok := f.queued[key]; ok {
		return true
	}
	_, ok := f.foundSet[key]
	return ok
}

// NextBatch dequeues up to n candidates (at least one) in priority order
// and marks them visited. It returns nothing once the session is satisfied
// or the queue is empty.
func (f *Frontier) NextBatch(n int) []Candidate {
	n = max(n, 1)

	f.mu.Lock()
	defer f.mu.Unlock()

	batch := make([]Candidate, 0, n)
	for len(batch) < n {
		c, ok := f.nextLocked()
		if !ok {
			break
		}
		batch = append(batch, c)
	}
	return batch
}

func (f *Frontier) nextLocked() (Candidate, bool) {
	if len(f.found) >= f.maxResults {
		return Candidate{}, false
	}
	for tier := range f.tiers {
		if len(f.tiers[tier]) == 0 {
			continue
		}
		c := f.tiers[tier][0]
		f.tiers[tier][0] = Candidate{}
		f.tiers[tier] = f.tiers[tier][1:]
		delete(f.queued, c.URL)
		f.visited[c.URL] = struct{}{}
		f.dequeued++
		return c, true
	}
	return Candidate{}, false
}

// RecordResult records the content classification of a fetched page and
// adds rawURL to found when it is a recipe. It reports whether the URL was
// newly accepted; a URL already found or a satisfied session yields false.
func (f *Frontier) RecordResult(rawURL string, c model.ContentClassification) bool {
	if !c.IsRecipe {
		return false
	}
	key := NormalizeURL(rawURL)

	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.found) >= f.maxResults {
		return false
	}
	if _, ok := f.foundSet[key]; ok {
		return false
	}
	f.found = append(f.found, key)
	f.foundSet[key] = struct{}{}
	return true
}

// RecordFailure marks rawURL as failed. Failed URLs are never offered again.
func (f *Frontier) RecordFailure(rawURL string) {
	key := NormalizeURL(rawURL)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed[key] = struct{}{}
}

// IsSatisfied reports whether maxResults recipes were found.
func (f *Frontier) IsSatisfied() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.found) >= f.maxResults
}

// State returns the current lifecycle state.
func (f *Frontier) State() FrontierState {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case len(f.found) >= f.maxResults:
		return FrontierSatisfied
	case f.queuedLocked() > 0 && f.dequeued == 0:
		return FrontierIdle
	case f.queuedLocked() > 0:
		return FrontierExpanding
	case f.dequeued == 0 && f.depthDropped == 0:
		return FrontierIdle
	case f.depthDropped > 0:
		return FrontierDepthExceeded
	default:
		return FrontierExhausted
	}
}

func (f *Frontier) queuedLocked() int {
	n := 0
	for _, t := range f.tiers {
		n += len(t)
	}
	return n
}

// Found returns a copy of the accepted URLs in acceptance order.
func (f *Frontier) Found() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.found))
	copy(out, f.found)
	return out
}

// Stats returns a snapshot of the session counters.
func (f *Frontier) Stats() FrontierStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FrontierStats{
		Visited:      len(f.visited),
		Queued:       f.queuedLocked(),
		Failed:       len(f.failed),
		Found:        len(f.found),
		Dequeued:     f.dequeued,
		DepthDropped: f.depthDropped,
	}
}

// FrontierStats contains crawl session counters.
type FrontierStats struct {
	// Visited is the number of distinct URLs handed out for fetching.
	Visited int

	// Queued is the number of candidates waiting.
	Queued int

	// Failed is the number of URLs whose fetch failed.
	Failed int

	// Found is the number of accepted recipe URLs.
	Found int

	// Dequeued is the number of candidates handed out by NextBatch.
	// It always equals Visited.
	Dequeued int

	// DepthDropped is the number of offers rejected for exceeding maxDepth.
	DepthDropped int
}
