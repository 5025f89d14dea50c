package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	rs "github.com/unkn0wn-root/tagcache/remote"
)

func TestBasicRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close(ctx)

	if _, ok, err := s.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
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
	// deleting again is not an error
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete absent: %v", err)
	}
}

func TestTTLExpires(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close(ctx)

	if err := s.Set(ctx, "short", []byte("v"), 30*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "short"); !ok {
		t.Fatalf("entry expired too early")
	}
	time.Sleep(60 * time.Millisecond)
	if _, ok, _ := s.Get(ctx, "short"); ok {
		t.Fatalf("entry survived its TTL")
	}
}

func TestCounters(t *testing.T) {
	ctx := context.Background()
	s := New()
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
	if v, err := s.Increment(ctx, "c", 2); err != nil || v != 5 {
		t.Fatalf("Increment: v=%d err=%v", v, err)
	}
	if v, err := s.Decrement(ctx, "c", 4); err != nil || v != 1 {
		t.Fatalf("Decrement: v=%d err=%v", v, err)
	}
	if v, err := s.Decrement(ctx, "c", 100); err != nil || v != 0 {
		t.Fatalf("Decrement floor: v=%d err=%v", v, err)
	}
	if v, _, _ := s.Get(ctx, "c"); string(v) != "0" {
		t.Fatalf("stored counter = %q, want 0", v)
	}

	if err := s.Set(ctx, "s", []byte("not-a-number"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := s.Increment(ctx, "s", 1); err == nil {
		t.Fatalf("Increment on non-numeric should fail")
	}
}

func TestMulti(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close(ctx)

	if err := s.SetMulti(ctx, map[string][]byte{
		"a": []byte("1"),
		"b": []byte("2"),
	}, 0); err != nil {
		t.Fatalf("SetMulti: %v", err)
	}
	got, err := s.GetMulti(ctx, []string{"a", "b", "missing"})
	if err != nil {
		t.Fatalf("GetMulti: %v", err)
	}
	if len(got) != 2 || string(got["a"]) != "1" || string(got["b"]) != "2" {
		t.Fatalf("GetMulti = %v", got)
	}
	if _, ok := got["missing"]; ok {
		t.Fatalf("absent key should be omitted")
	}
}
