// Package rank maintains a running bottom-K selection over fetch results.
package rank

import (
	"container/heap"
	"sort"

	"github.com/sells-group/edhtail/internal/model"
)

// missingSentinel is the rank key substituted for results without a definite
// deck count when errored/unknown items are excluded from output. It pushes
// them to the worst end of the heap so they are evicted first under pressure.
const missingSentinel = int64(1e12)

// Options configures a Selector.
type Options struct {
	// K is the number of least-popular results to retain.
	K int
	// OnlyPositive skips results whose definite count is <= 0 before they
	// ever reach the heap.
	OnlyPositive bool
	// IncludeErrors flips the sentinel mapping for results without a count:
	// instead of the worst possible key they get the best one (zero), so a
	// missing count alone never evicts them.
	IncludeErrors bool
}

type entry struct {
	key int64
	seq int
	res model.FetchResult
}

// maxHeap keeps the current worst (largest key) entry at the root so it can
// be evicted in O(log K) when the selector overflows. Equal keys order by
// ascending sequence number, evicting the earlier arrival first, which makes
// the retained set deterministic for any admission order.
type maxHeap []entry

func (h maxHeap) Len() int { return len(h) }

func (h maxHeap) Less(i, j int) bool {
	if h[i].key != h[j].key {
		return h[i].key > h[j].key
	}
	return h[i].seq < h[j].seq
}

func (h maxHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *maxHeap) Push(x any) { *h = append(*h, x.(entry)) }

func (h *maxHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// Selector consumes fetch results one at a time, in arbitrary completion
// order, and retains the K results with the smallest rank key. It is fed by a
// single consumer; it is not safe for concurrent use.
type Selector struct {
	opts Options
	h    maxHeap
	seq  int
}

// New creates a Selector. K <= 0 yields an always-empty selection.
func New(opts Options) *Selector {
	s := &Selector{opts: opts}
	if opts.K > 0 {
		s.h = make(maxHeap, 0, opts.K+1)
	}
	heap.Init(&s.h)
	return s
}

// Add admits one result. Cost is O(log K); the full stream costs N log K with
// no full sort of the result set.
func (s *Selector) Add(res model.FetchResult) {
	if s.opts.OnlyPositive && res.HasDecks() && *res.Decks <= 0 {
		return
	}

	heap.Push(&s.h, entry{key: s.rankKey(res), seq: s.seq, res: res})
	s.seq++
	if s.h.Len() > s.opts.K {
		heap.Pop(&s.h)
	}
}

// rankKey maps a result to its heap ordering key. Results with a definite
// count rank by the count. Results without one depend on the run mode: when
// errored items are excluded from output they get the worst key and fall out
// first; when included they get the best key so they are never evicted merely
// for lacking data. The asymmetry is deliberate.
func (s *Selector) rankKey(res model.FetchResult) int64 {
	if res.HasDecks() {
		return int64(*res.Decks)
	}
	if s.opts.IncludeErrors {
		return 0
	}
	return missingSentinel
}

// Len returns the number of currently retained results.
func (s *Selector) Len() int { return s.h.Len() }

// Results drains the selector and returns the retained results sorted
// ascending by (deck count with missing counts last, name) for deterministic
// presentation.
func (s *Selector) Results() []model.FetchResult {
	out := make([]model.FetchResult, 0, s.h.Len())
	for s.h.Len() > 0 {
		out = append(out, heap.Pop(&s.h).(entry).res)
	}
	sort.Slice(out, func(i, j int) bool {
		ki, kj := displayKey(out[i]), displayKey(out[j])
		if ki != kj {
			return ki < kj
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// displayKey sorts missing counts to the end regardless of the admission
// sentinel used for them.
func displayKey(res model.FetchResult) int64 {
	if res.HasDecks() {
		return int64(*res.Decks)
	}
	return missingSentinel
}
