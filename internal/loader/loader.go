package loader

import (
	"context"
	"sync"
)

// BatchFunc fetches all values for a batch of keys in one round trip. Keys
// missing from the returned map are treated as absent, not as failures.
type BatchFunc[K comparable, V any] func(ctx context.Context, keys []K) (map[K]V, error)

type result[V any] struct {
	value V
	err   error
}

// Loader coalesces individual key lookups into bulk fetches. Load enqueues a
// key and hands back a thunk; resolving any thunk flushes every key enqueued
// so far in one BatchFunc call. Resolved results are cached for the lifetime
// of the Loader, which is one inbound request — a Loader must never be
// shared across requests.
type Loader[K comparable, V any] struct {
	mu      sync.Mutex
	batch   BatchFunc[K, V]
	pending []K
	queued  map[K]bool
	cache   map[K]result[V]
}

// New creates a new loader around a batch fetch function.
func New[K comparable, V any](batch BatchFunc[K, V]) *Loader[K, V] {
	return &Loader[K, V]{
		batch:  batch,
		queued: make(map[K]bool),
		cache:  make(map[K]result[V]),
	}
}

// Thunk is a deferred lookup result. Value blocks until the loader has
// flushed the batch containing the key.
type Thunk[K comparable, V any] struct {
	loader *Loader[K, V]
	key    K
}

// Load enqueues key for the next flush and returns its thunk. A key already
// queued or already resolved is not enqueued again.
func (l *Loader[K, V]) Load(key K) *Thunk[K, V] {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, done := l.cache[key]; !done && !l.queued[key] {
		l.pending = append(l.pending, key)
		l.queued[key] = true
	}
	return &Thunk[K, V]{loader: l, key: key}
}

// Value resolves the thunk, flushing the loader's pending batch if the key
// has not been fetched yet. Absent keys yield the zero value and no error.
func (t *Thunk[K, V]) Value(ctx context.Context) (V, error) {
	return t.loader.resolve(ctx, t.key)
}

// LoadValue is Load followed by an immediate Value: a convenience for call
// sites that cannot defer resolution.
func (l *Loader[K, V]) LoadValue(ctx context.Context, key K) (V, error) {
	return l.Load(key).Value(ctx)
}

func (l *Loader[K, V]) resolve(ctx context.Context, key K) (V, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if r, done := l.cache[key]; done {
		return r.value, r.err
	}

	l.flushLocked(ctx)

	r := l.cache[key]
	return r.value, r.err
}

// flushLocked issues one batch fetch for every pending key, in enqueue
// order. A batch failure fails every key in the batch with the same error.
func (l *Loader[K, V]) flushLocked(ctx context.Context) {
	keys := l.pending
	l.pending = nil
	l.queued = make(map[K]bool)
	if len(keys) == 0 {
		return
	}

	values, err := l.batch(ctx, keys)
	if err != nil {
		for _, k := range keys {
			l.cache[k] = result[V]{err: err}
		}
		return
	}
	for _, k := range keys {
		l.cache[k] = result[V]{value: values[k]}
	}
}
