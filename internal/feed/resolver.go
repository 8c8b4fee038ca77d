package feed

import (
	"context"
	"log"
	"sync"
)

// Resolve fetches every distinct key concurrently and collects the successes
// into a map. A key whose fetch fails is logged and omitted; it neither
// aborts the other fetches nor surfaces as an error to the caller, so one
// bad employer id cannot blank the whole feed.
//
// The ids slice is deduplicated before fan-out, so each key is fetched at
// most once per call. The accumulation map is written under a mutex; each
// key is written by exactly one goroutine.
func Resolve[K comparable, V any](ctx context.Context, logger *log.Logger, ids []K, fetch func(context.Context, K) (V, error)) map[K]V {
	distinct := dedup(ids)
	out := make(map[K]V, len(distinct))
	if len(distinct) == 0 {
		return out
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, id := range distinct {
		wg.Add(1)
		go func(id K) {
			defer wg.Done()
			v, err := fetch(ctx, id)
			if err != nil {
				logger.Printf("Error resolving %v: %v", id, err)
				return
			}
			mu.Lock()
			out[id] = v
			mu.Unlock()
		}(id)
	}
	wg.Wait()
	return out
}

// dedup returns the distinct keys of ids in first-seen order.
func dedup[K comparable](ids []K) []K {
	seen := make(map[K]struct{}, len(ids))
	out := make([]K, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
