// internal/scrape/pool.go
package scrape

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/quote-harvest/termquote/internal/normalize"
	"github.com/quote-harvest/termquote/pkg/models"
)

// Processor extracts one record per URL. Seed provides the fallback
// identity record the pool uses for items it never got to run.
type Processor interface {
	Process(ctx context.Context, url string) models.Record
	Seed(url string) models.Record
}

// Pool runs one Processor invocation per input URL under a fixed
// concurrency limit. The result collection is indexed by input order
// regardless of completion order, always holds exactly one record per
// URL, and one worker's fault never touches its siblings.
type Pool struct {
	proc     Processor
	size     int
	mu       sync.Mutex
	onResult func(models.Result)
}

// NewPool creates a pool with the given concurrency limit.
func NewPool(proc Processor, size int) *Pool {
	if size <= 0 {
		size = 3
	}
	return &Pool{proc: proc, size: size}
}

// OnResult registers a hook invoked once per finished item (any
// goroutine, serialized). Used for progress reporting.
func (p *Pool) OnResult(fn func(models.Result)) {
	p.onResult = fn
}

// RunAll processes every URL and returns the records in input order.
// Cancelling ctx stops admitting new items; in-flight items run to
// their own terminal state. Unstarted items still yield normalized
// identity-only records so no input silently disappears.
func (p *Pool) RunAll(ctx context.Context, urls []string) []models.Record {
	results := make([]models.Record, len(urls))

	sem := make(chan struct{}, p.size)
	var wg sync.WaitGroup

	admitted := 0
admission:
	for i, url := range urls {
		// Admission control: acquire a slot before spawning, stop
		// admitting once shutdown is requested.
		select {
		case <-ctx.Done():
			log.Warn().
				Int("admitted", admitted).
				Int("total", len(urls)).
				Msg("Shutdown requested, no longer admitting items")
			break admission
		case sem <- struct{}{}:
		}

		admitted++
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			defer func() { <-sem }() // release slot exactly once, on every path
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Str("url", url).
						Interface("panic", r).
						Msg("Worker fault isolated")
					p.deliver(results, models.Result{
						Index:  i,
						URL:    url,
						Record: normalize.Normalize(p.proc.Seed(url)),
					})
				}
			}()

			rec := p.proc.Process(ctx, url)
			p.deliver(results, models.Result{Index: i, URL: url, Record: rec})
		}(i, url)
	}

	wg.Wait()

	// Fill in anything that was never admitted or delivered.
	for i, url := range urls {
		if results[i] == nil {
			p.deliver(results, models.Result{
				Index:  i,
				URL:    url,
				Record: normalize.Normalize(p.proc.Seed(url)),
			})
		}
	}

	return results
}

func (p *Pool) deliver(results []models.Record, res models.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if results[res.Index] != nil {
		return
	}
	results[res.Index] = res.Record
	if p.onResult != nil {
		p.onResult(res)
	}
}
