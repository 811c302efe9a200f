package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestGetOrResolveCoalesces(t *testing.T) {
	c := NewLookupCache()

	var calls int32
	release := make(chan struct{})
	resolver := func(ctx context.Context, key string) (string, bool, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "https://cdn/" + key + ".png", true, nil
	}

	const concurrent = 8
	var wg sync.WaitGroup
	results := make([]string, concurrent)
	for i := 0; i < concurrent; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _ := c.GetOrResolve(context.Background(), "shroud", resolver)
			results[i] = v
		}(i)
	}

	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("resolver invoked %d times, want exactly 1", got)
	}
	for i, v := range results {
		if v != "https://cdn/shroud.png" {
			t.Fatalf("caller %d got %q", i, v)
		}
	}
}

func TestNegativeCaching(t *testing.T) {
	c := NewLookupCache()

	var calls int
	resolver := func(ctx context.Context, key string) (string, bool, error) {
		calls++
		return "", false, nil
	}

	if _, found := c.GetOrResolve(context.Background(), "ghost", resolver); found {
		t.Fatalf("expected negative result")
	}
	if _, found := c.GetOrResolve(context.Background(), "ghost", resolver); found {
		t.Fatalf("expected cached negative result")
	}
	if calls != 1 {
		t.Fatalf("negative result should be cached, resolver ran %d times", calls)
	}

	if _, found, ok := c.Get("ghost"); !ok || found {
		t.Fatalf("Get should report a stored negative entry")
	}
}

func TestResolverErrorBecomesMiss(t *testing.T) {
	c := NewLookupCache()

	var calls int
	resolver := func(ctx context.Context, key string) (string, bool, error) {
		calls++
		return "", false, errors.New("cdn unreachable")
	}

	v, found := c.GetOrResolve(context.Background(), "shroud", resolver)
	if found || v != "" {
		t.Fatalf("resolver error must surface as a miss, got %q/%v", v, found)
	}
	c.GetOrResolve(context.Background(), "shroud", resolver)
	if calls != 1 {
		t.Fatalf("failed resolution should be cached too, resolver ran %d times", calls)
	}
}

func TestClearForcesReResolve(t *testing.T) {
	c := NewLookupCache()

	var calls int
	resolver := func(ctx context.Context, key string) (string, bool, error) {
		calls++
		return "v", true, nil
	}

	c.GetOrResolve(context.Background(), "k", resolver)
	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("clear should empty the cache")
	}
	c.GetOrResolve(context.Background(), "k", resolver)
	if calls != 2 {
		t.Fatalf("lookup after clear should re-resolve, resolver ran %d times", calls)
	}
}

func TestKeysCaseSensitive(t *testing.T) {
	c := NewLookupCache()

	resolver := func(ctx context.Context, key string) (string, bool, error) {
		return key, true, nil
	}
	a, _ := c.GetOrResolve(context.Background(), "Shroud", resolver)
	b, _ := c.GetOrResolve(context.Background(), "shroud", resolver)
	if a == b {
		t.Fatalf("keys must be case sensitive")
	}
	if c.Len() != 2 {
		t.Fatalf("expected two distinct entries, got %d", c.Len())
	}
}
