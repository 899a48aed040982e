package catalog

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Mohamedmnem11/ivita/internal/metrics"
)

const defaultDebounce = 300 * time.Millisecond

// SearchResult is delivered to the Searcher's callback once a debounced
// query completes. Query echoes the text the results belong to.
type SearchResult struct {
	Query    string
	Products []Product
	Err      error
}

// Searcher debounces free-text queries to bound request volume. A new query
// supersedes a scheduled one, and a response that comes back after the
// query text has moved on is discarded instead of overwriting newer
// results. Requests are additionally rate limited.
type Searcher struct {
	svc      *Service
	delay    time.Duration
	limiter  *rate.Limiter
	onResult func(SearchResult)

	mu     sync.Mutex
	timer  *time.Timer
	latest string
	wg     sync.WaitGroup
}

// NewSearcher creates a debounced search front over the catalog service.
// delay <= 0 uses the default debounce interval.
func NewSearcher(svc *Service, delay time.Duration, onResult func(SearchResult)) *Searcher {
	if delay <= 0 {
		delay = defaultDebounce
	}
	return &Searcher{
		svc:      svc,
		delay:    delay,
		limiter:  rate.NewLimiter(rate.Every(200*time.Millisecond), 3),
		onResult: onResult,
	}
}

// Query schedules a search for text, replacing any not-yet-fired query.
func (s *Searcher) Query(ctx context.Context, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest = text
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		s.dispatch(ctx, text)
	})
}

// Close cancels any scheduled query and waits for in-flight ones.
func (s *Searcher) Close() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Searcher) dispatch(ctx context.Context, text string) {
	s.mu.Lock()
	if text != s.latest {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		if err := s.limiter.Wait(ctx); err != nil {
			return
		}
		metrics.RecordSearch()

		products, err := s.svc.Search(ctx, text)

		// The query may have moved on while the request was in flight.
		s.mu.Lock()
		stale := text != s.latest
		s.mu.Unlock()
		if stale || s.onResult == nil {
			return
		}
		s.onResult(SearchResult{Query: text, Products: products, Err: err})
	}()
}
