package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testCache(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "value" {
		t.Fatalf("Get(k) = %q, %v, %v", data, hit, err)
	}
	if err := c.Set(ctx, "k", []byte("other"), 0); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if data, _, _ := c.Get(ctx, "k"); string(data) != "other" {
		t.Errorf("overwrite: got %q", data)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("hit after Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete missing: %v", err)
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	testCache(t, c)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	c.Set(ctx, "k", []byte("v"), time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("expected hit before expiry")
	}
	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expected miss after expiry")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not evicted, Len = %d", c.Len())
	}
}

func TestMemoryCacheCopies(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	buf := []byte("abc")
	c.Set(ctx, "k", buf, 0)
	buf[0] = 'x'
	got, _, _ := c.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value aliased caller slice: %q", got)
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	testCache(t, c)
}

func TestFileCacheExpiredAndCorrupt(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	c.Set(ctx, "old", []byte("v"), time.Nanosecond)
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry returned")
	}
	if _, err := os.Stat(c.path("old")); !os.IsNotExist(err) {
		t.Error("expired entry not removed")
	}

	c.Set(ctx, "bad", []byte("v"), 0)
	os.WriteFile(c.path("bad"), []byte("{not json"), 0o644)
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, _ := NewFileCache(dir)
	for _, k := range []string{"a", "b", "c"} {
		c.Set(ctx, k, []byte(k), 0)
	}
	n, err := c.Clear()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}
	if c.Dir() != dir {
		t.Errorf("Dir = %q", c.Dir())
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("root removed: %v", err)
	}
}

func TestFileCacheLayout(t *testing.T) {
	c, _ := NewFileCache("/cache")
	p := c.path("key")
	rel, _ := filepath.Rel("/cache", p)
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) != 2 || len(parts[0]) != 2 || !strings.HasSuffix(parts[1], ".json") {
		t.Errorf("unexpected entry path %q", rel)
	}
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("NullCache.Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("TOPOCHART_TEST_REDIS")
	if url == "" {
		t.Skip("TOPOCHART_TEST_REDIS not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	testCache(t, c)
	c.Set(ctx, "topochart-test:a", []byte("a"), time.Minute)
	if n, err := c.Clear(ctx, "topochart-test:*"); err != nil || n != 1 {
		t.Errorf("Clear = %d, %v", n, err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}

	a, _ := HashJSON(map[string]int{"a": 1, "b": 2})
	b, _ := HashJSON(map[string]int{"b": 2, "a": 1})
	if a != b {
		t.Error("HashJSON should not depend on map order")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	base := LayoutKeyOpts{Engine: "force", Width: 600, Height: 400, Seed: 1}
	variants := []LayoutKeyOpts{
		{Engine: "graphviz", Width: 600, Height: 400, Seed: 1},
		{Engine: "force", Width: 800, Height: 400, Seed: 1},
		{Engine: "force", Width: 600, Height: 400, Seed: 2},
		{Engine: "force", Width: 600, Height: 400, Seed: 1, Margin: [4]float64{1}},
	}
	lk := k.LayoutKey("hash", base)
	if !strings.HasPrefix(lk, "layout:") {
		t.Errorf("LayoutKey prefix: %s", lk)
	}
	if lk != k.LayoutKey("hash", base) {
		t.Error("LayoutKey not deterministic")
	}
	for _, v := range variants {
		if k.LayoutKey("hash", v) == lk {
			t.Errorf("LayoutKey ignores %+v", v)
		}
	}
	if k.LayoutKey("other", base) == lk {
		t.Error("LayoutKey ignores data hash")
	}

	svg := k.ArtifactKey("l", ArtifactKeyOpts{Format: "svg"})
	png := k.ArtifactKey("l", ArtifactKeyOpts{Format: "png"})
	png2 := k.ArtifactKey("l", ArtifactKeyOpts{Format: "png", Scale: 2})
	if svg == png || png == png2 {
		t.Error("ArtifactKey ignores options")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "user:123:")
	opts := LayoutKeyOpts{Engine: "force"}

	if got, want := scoped.LayoutKey("h", opts), "user:123:"+inner.LayoutKey("h", opts); got != want {
		t.Errorf("LayoutKey = %s, want %s", got, want)
	}
	if got := scoped.ArtifactKey("h", ArtifactKeyOpts{}); !strings.HasPrefix(got, "user:123:artifact:") {
		t.Errorf("ArtifactKey = %s", got)
	}

	nilInner := NewScopedKeyer(nil, "p:")
	if got := nilInner.LayoutKey("h", opts); got != "p:"+inner.LayoutKey("h", opts) {
		t.Errorf("nil inner: %s", got)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(ErrNetwork)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Error("wrapped error should unwrap to ErrNetwork")
	}
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("message not preserved: %s", err)
	}
	if IsRetryable(ErrNetwork) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	old := retryDelay
	retryDelay = time.Millisecond
	defer func() { retryDelay = old }()
	ctx := context.Background()
	errStop := errors.New("stop")

	tests := []struct {
		name      string
		fails     int
		retryable bool
		wantCalls int
		wantErr   bool
	}{
		{"success", 0, true, 1, false},
		{"non-retryable", 5, false, 1, true},
		{"retry once", 1, true, 2, false},
		{"exhausted", 5, true, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(ctx, func() error {
				calls++
				if calls <= tt.fails {
					if tt.retryable {
						return Retryable(ErrNetwork)
					}
					return errStop
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("should return context error: %v", err)
	}
}
