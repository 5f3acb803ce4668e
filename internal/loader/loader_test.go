package loader

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
)

type user struct {
	id   int64
	name string
}

// countingBatch records every batch it is asked for and serves from a fixed
// table.
type countingBatch struct {
	table   map[int64]*user
	batches [][]int64
	err     error
}

func (b *countingBatch) fetch(_ context.Context, keys []int64) (map[int64]*user, error) {
	copied := make([]int64, len(keys))
	copy(copied, keys)
	b.batches = append(b.batches, copied)
	if b.err != nil {
		return nil, b.err
	}
	out := make(map[int64]*user, len(keys))
	for _, k := range keys {
		if u, ok := b.table[k]; ok {
			out[k] = u
		}
	}
	return out, nil
}

func table() map[int64]*user {
	return map[int64]*user{
		1: {id: 1, name: "ada"},
		2: {id: 2, name: "ben"},
		3: {id: 3, name: "cleo"},
	}
}

func TestLoadCoalescing(t *testing.T) {
	batch := &countingBatch{table: table()}
	l := New(batch.fetch)
	ctx := context.Background()

	t1 := l.Load(1)
	t2 := l.Load(2)
	t3 := l.Load(3)

	// First resolution flushes all three keys in one fetch.
	u1, err := t1.Value(ctx)
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if u1 == nil || u1.name != "ada" {
		t.Errorf("key 1 = %+v, want ada", u1)
	}

	u2, _ := t2.Value(ctx)
	u3, _ := t3.Value(ctx)
	if u2.name != "ben" || u3.name != "cleo" {
		t.Errorf("got %v and %v, want ben and cleo", u2, u3)
	}

	if len(batch.batches) != 1 {
		t.Fatalf("expected 1 batch fetch, got %d", len(batch.batches))
	}
	if !reflect.DeepEqual(batch.batches[0], []int64{1, 2, 3}) {
		t.Errorf("batch keys = %v, want [1 2 3] in enqueue order", batch.batches[0])
	}
}

func TestLoadDeduplicatesKeys(t *testing.T) {
	batch := &countingBatch{table: table()}
	l := New(batch.fetch)
	ctx := context.Background()

	// The same key three times within one cycle.
	t1 := l.Load(1)
	t2 := l.Load(1)
	t3 := l.Load(1)

	for _, th := range []*Thunk[int64, *user]{t1, t2, t3} {
		u, err := th.Value(ctx)
		if err != nil {
			t.Fatalf("Value failed: %v", err)
		}
		if u.name != "ada" {
			t.Errorf("got %+v, want ada", u)
		}
	}

	if len(batch.batches) != 1 {
		t.Fatalf("expected 1 batch fetch, got %d", len(batch.batches))
	}
	if !reflect.DeepEqual(batch.batches[0], []int64{1}) {
		t.Errorf("batch keys = %v, want [1]", batch.batches[0])
	}
}

func TestLoadAbsentKey(t *testing.T) {
	batch := &countingBatch{table: table()}
	l := New(batch.fetch)

	u, err := l.LoadValue(context.Background(), 404)
	if err != nil {
		t.Fatalf("absent key should not error: %v", err)
	}
	if u != nil {
		t.Errorf("absent key = %+v, want nil", u)
	}
}

func TestLoadCachesAcrossFlushes(t *testing.T) {
	batch := &countingBatch{table: table()}
	l := New(batch.fetch)
	ctx := context.Background()

	if _, err := l.LoadValue(ctx, 1); err != nil {
		t.Fatalf("first load failed: %v", err)
	}
	// Second cycle: key 1 is cached, only key 2 should be fetched.
	t1 := l.Load(1)
	t2 := l.Load(2)
	if _, err := t2.Value(ctx); err != nil {
		t.Fatalf("second load failed: %v", err)
	}
	if _, err := t1.Value(ctx); err != nil {
		t.Fatalf("cached load failed: %v", err)
	}

	if len(batch.batches) != 2 {
		t.Fatalf("expected 2 batch fetches, got %d", len(batch.batches))
	}
	if !reflect.DeepEqual(batch.batches[1], []int64{2}) {
		t.Errorf("second batch = %v, want [2]", batch.batches[1])
	}
}

func TestLoadFailTogether(t *testing.T) {
	boom := errors.New("bulk fetch failed")
	batch := &countingBatch{table: table(), err: boom}
	l := New(batch.fetch)
	ctx := context.Background()

	t1 := l.Load(1)
	t2 := l.Load(2)

	if _, err := t1.Value(ctx); !errors.Is(err, boom) {
		t.Errorf("key 1 error = %v, want %v", err, boom)
	}
	if _, err := t2.Value(ctx); !errors.Is(err, boom) {
		t.Errorf("key 2 error = %v, want %v", err, boom)
	}
	if len(batch.batches) != 1 {
		t.Errorf("expected 1 batch fetch, got %d", len(batch.batches))
	}
}

func TestLoadConcurrentResolvers(t *testing.T) {
	batch := &countingBatch{table: table()}
	l := New(batch.fetch)
	ctx := context.Background()

	// Many goroutines load overlapping keys against one loader and resolve
	// immediately, the way view builders race within a single request.
	var wg sync.WaitGroup
	errs := make(chan error, 30)
	for i := 0; i < 30; i++ {
		key := int64(i%3 + 1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			u, err := l.Load(key).Value(ctx)
			if err != nil {
				errs <- err
				return
			}
			if u == nil || u.id != key {
				errs <- errors.New("resolved value does not match its key")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent load: %v", err)
	}

	// Each key resolves exactly once no matter how the goroutines interleave.
	seen := make(map[int64]int)
	for _, keys := range batch.batches {
		for _, k := range keys {
			seen[k]++
		}
	}
	for k, n := range seen {
		if n != 1 {
			t.Errorf("key %d fetched %d times, want 1", k, n)
		}
	}
	if len(seen) != 3 {
		t.Errorf("fetched %d distinct keys, want 3", len(seen))
	}
}

func TestSeparateLoadersDoNotShareCache(t *testing.T) {
	batchA := &countingBatch{table: table()}
	batchB := &countingBatch{table: table()}
	ctx := context.Background()

	// Two loaders model two inbound requests.
	la := New(batchA.fetch)
	lb := New(batchB.fetch)

	if _, err := la.LoadValue(ctx, 1); err != nil {
		t.Fatalf("loader A failed: %v", err)
	}
	if _, err := lb.LoadValue(ctx, 1); err != nil {
		t.Fatalf("loader B failed: %v", err)
	}

	if len(batchA.batches) != 1 || len(batchB.batches) != 1 {
		t.Error("each request-scoped loader must fetch independently")
	}
}
