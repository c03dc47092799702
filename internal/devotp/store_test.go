package devotp

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestMemoryStore_PutGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	expiresAt := time.Now().UTC().Add(5 * time.Minute)

	store.Put(ctx, "session-1", "48213", expiresAt)

	otp, exp, ok := store.Get(ctx, "session-1")
	if !ok {
		t.Fatal("Get should return OTP after Put")
	}
	if otp != "48213" {
		t.Errorf("otp = %q, want %q", otp, "48213")
	}
	if !exp.Equal(expiresAt) {
		t.Errorf("expiresAt = %v, want %v", exp, expiresAt)
	}
}

func TestMemoryStore_PutReplaces(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	exp := time.Now().Add(time.Minute)
	store.Put(ctx, "session-1", "11111", exp)
	store.Put(ctx, "session-1", "22222", exp)
	if otp, _, _ := store.Get(ctx, "session-1"); otp != "22222" {
		t.Errorf("otp = %q, want 22222", otp)
	}
}

func TestMemoryStore_Missing(t *testing.T) {
	otp, _, ok := NewMemoryStore().Get(context.Background(), "nonexistent")
	if ok || otp != "" {
		t.Errorf("Get = %q, %v, want empty, false", otp, ok)
	}
}

func TestMemoryStore_ExpiredIsDropped(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.nowF = func() time.Time { return now }
	ctx := context.Background()

	store.Put(ctx, "session-1", "48213", now.Add(time.Minute))
	now = now.Add(time.Minute)

	if _, _, ok := store.Get(ctx, "session-1"); ok {
		t.Error("Get should return false at expiresAt")
	}
	store.mu.Lock()
	_, still := store.m["session-1"]
	store.mu.Unlock()
	if still {
		t.Error("expired entry should be removed")
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	store.Put(ctx, "session-1", "48213", time.Now().Add(time.Minute))
	store.Delete(ctx, "session-1")
	store.Delete(ctx, "session-1")
	if _, _, ok := store.Get(ctx, "session-1"); ok {
		t.Error("Get after Delete should return false")
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	expiresAt := time.Now().Add(5 * time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(3)
		id := "session-" + strconv.Itoa(i)
		go func() { defer wg.Done(); store.Put(ctx, id, "48213", expiresAt) }()
		go func() { defer wg.Done(); store.Get(ctx, id) }()
		go func() { defer wg.Done(); store.Delete(ctx, id) }()
	}
	wg.Wait()
}
