package local

import (
	"testing"
	"time"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemory()
	defer s.Close()

	if _, ok := s.Get("a"); ok {
		t.Fatalf("empty store reported a hit")
	}
	s.Set("a", []byte("1"))
	if v, ok := s.Get("a"); !ok || string(v) != "1" {
		t.Fatalf("get after set: ok=%v v=%q", ok, v)
	}
	s.Del("a")
	if _, ok := s.Get("a"); ok {
		t.Fatalf("get after del should miss")
	}

	s.Set("b", []byte("2"))
	s.Set("c", []byte("3"))
	s.Reset()
	if _, ok := s.Get("b"); ok {
		t.Fatalf("reset left entries behind")
	}
}

func TestBigCacheStore(t *testing.T) {
	s, err := NewBigCache(time.Minute)
	if err != nil {
		t.Fatalf("NewBigCache: %v", err)
	}
	defer s.Close()

	s.Set("k", []byte("v"))
	if v, ok := s.Get("k"); !ok || string(v) != "v" {
		t.Fatalf("get after set: ok=%v v=%q", ok, v)
	}
	s.Del("k")
	if _, ok := s.Get("k"); ok {
		t.Fatalf("get after del should miss")
	}
	// deleting an absent key is fine
	s.Del("never")

	s.Set("k2", []byte("v2"))
	s.Reset()
	if _, ok := s.Get("k2"); ok {
		t.Fatalf("reset left entries behind")
	}
}

func TestRistrettoStore(t *testing.T) {
	s, err := NewRistretto(1 << 20)
	if err != nil {
		t.Fatalf("NewRistretto: %v", err)
	}
	defer s.Close()

	s.Set("k", []byte("v"))
	s.Wait() // admission is async
	if v, ok := s.Get("k"); !ok || string(v) != "v" {
		t.Fatalf("get after set: ok=%v v=%q", ok, v)
	}
	s.Del("k")
	s.Wait()
	if _, ok := s.Get("k"); ok {
		t.Fatalf("get after del should miss")
	}
}
