package redisstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	rs "github.com/unkn0wn-root/tagcache/remote"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(client), mr
}

func TestGetSetDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	defer s.Close(ctx)

	if _, ok, err := s.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("empty: ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, ok, err := s.Get(ctx, "k"); err != nil || !ok || string(v) != "v" {
		t.Fatalf("Get: ok=%v err=%v v=%q", ok, err, v)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("Get after delete should miss")
	}
}

func TestSetTTL(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)
	defer s.Close(ctx)

	if err := s.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("entry survived its TTL")
	}

	// ttl 0 => no expiration
	if err := s.Set(ctx, "p", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	mr.FastForward(24 * time.Hour)
	if _, ok, _ := s.Get(ctx, "p"); !ok {
		t.Fatalf("persistent entry expired")
	}
}

func TestCountersRequireExistingKey(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	defer s.Close(ctx)

	if _, err := s.Increment(ctx, "c", 1); !errors.Is(err, rs.ErrNotFound) {
		t.Fatalf("Increment absent: err=%v", err)
	}
	if _, err := s.Decrement(ctx, "c", 1); !errors.Is(err, rs.ErrNotFound) {
		t.Fatalf("Decrement absent: err=%v", err)
	}

	if err := s.Set(ctx, "c", []byte("3"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, err := s.Increment(ctx, "c", 1); err != nil || v != 4 {
		t.Fatalf("Increment: v=%d err=%v", v, err)
	}
	if v, err := s.Decrement(ctx, "c", 3); err != nil || v != 1 {
		t.Fatalf("Decrement: v=%d err=%v", v, err)
	}
	// floors at zero rather than going negative
	if v, err := s.Decrement(ctx, "c", 10); err != nil || v != 0 {
		t.Fatalf("Decrement floor: v=%d err=%v", v, err)
	}
	if v, _, _ := s.Get(ctx, "c"); string(v) != "0" {
		t.Fatalf("stored counter = %q, want 0", v)
	}
}

func TestMulti(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	defer s.Close(ctx)

	if err := s.SetMulti(ctx, map[string][]byte{
		"a": []byte("1"),
		"b": []byte("2"),
	}, time.Minute); err != nil {
		t.Fatalf("SetMulti: %v", err)
	}
	got, err := s.GetMulti(ctx, []string{"a", "b", "missing"})
	if err != nil {
		t.Fatalf("GetMulti: %v", err)
	}
	if len(got) != 2 || string(got["a"]) != "1" || string(got["b"]) != "2" {
		t.Fatalf("GetMulti = %v", got)
	}

	empty, err := s.GetMulti(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty GetMulti: %v %v", empty, err)
	}
}
