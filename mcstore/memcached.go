// Package mcstore implements remote.Store over the memcached text protocol.
// It speaks to a single server; shard across servers above this layer if
// you need more than one.
//
// Counter semantics match the protocol directly: incr/decr on an absent key
// answer NOT_FOUND (surfaced as remote.ErrNotFound) and decr floors at zero
// server-side.
package mcstore

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	rs "github.com/unkn0wn-root/tagcache/remote"
)

const defaultPoolSize = 8

var dial = func(ctx context.Context, addr string) (net.Conn, error) {
	d := net.Dialer{Timeout: 3 * time.Second}
	return d.DialContext(ctx, "tcp", addr)
}

type Store struct {
	addr string
	pool chan *conn
}

type conn struct {
	c net.Conn
	r *bufio.Reader
}

var _ rs.Store = (*Store)(nil)

// New creates a memcached-backed store. addr defaults to 127.0.0.1:11211.
func New(addr string) *Store {
	if addr == "" {
		addr = "127.0.0.1:11211"
	}
	return &Store{addr: addr, pool: make(chan *conn, defaultPoolSize)}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	found, err := s.GetMulti(ctx, []string{key})
	if err != nil {
		return nil, false, err
	}
	v, ok := found[key]
	return v, ok, nil
}

func (s *Store) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	mc, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	bad := false
	defer func() { s.release(mc, bad) }()

	if _, err := fmt.Fprintf(mc.c, "get %s\r\n", strings.Join(keys, " ")); err != nil {
		bad = true
		return nil, err
	}
	// one VALUE block per present key, terminated by END
	for {
		line, err := mc.r.ReadString('\n')
		if err != nil {
			bad = true
			return nil, err
		}
		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
		if line == "END" {
			return out, nil
		}
		fields := strings.Fields(line)
		if len(fields) < 4 || fields[0] != "VALUE" {
			bad = true
			return nil, fmt.Errorf("mcstore: unexpected response %q", line)
		}
		n, err := strconv.Atoi(fields[3])
		if err != nil {
			bad = true
			return nil, fmt.Errorf("mcstore: parse length: %w", err)
		}
		value := make([]byte, n)
		if _, err := io.ReadFull(mc.r, value); err != nil {
			bad = true
			return nil, err
		}
		// trailing \r\n after the data block
		if _, err := mc.r.Discard(2); err != nil {
			bad = true
			return nil, err
		}
		out[fields[1]] = value
	}
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.SetMulti(ctx, map[string][]byte{key: value}, ttl)
}

// SetMulti pipelines one set command per entry and reads all replies
// afterwards, keeping the batch to a single round-trip.
func (s *Store) SetMulti(ctx context.Context, items map[string][]byte, ttl time.Duration) error {
	if len(items) == 0 {
		return nil
	}
	mc, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	bad := false
	defer func() { s.release(mc, bad) }()

	exp := expiration(ttl)
	w := bufio.NewWriter(mc.c)
	for k, v := range items {
		if _, err := fmt.Fprintf(w, "set %s 0 %d %d\r\n", k, exp, len(v)); err != nil {
			bad = true
			return err
		}
		if _, err := w.Write(v); err != nil {
			bad = true
			return err
		}
		if _, err := w.WriteString("\r\n"); err != nil {
			bad = true
			return err
		}
	}
	if err := w.Flush(); err != nil {
		bad = true
		return err
	}
	for range items {
		line, err := mc.r.ReadString('\n')
		if err != nil {
			bad = true
			return err
		}
		if !strings.HasPrefix(line, "STORED") {
			bad = true
			return fmt.Errorf("mcstore: set failed: %s", strings.TrimSpace(line))
		}
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	mc, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	bad := false
	defer func() { s.release(mc, bad) }()

	if _, err := fmt.Fprintf(mc.c, "delete %s\r\n", key); err != nil {
		bad = true
		return err
	}
	// DELETED and NOT_FOUND are both success; absent keys are fine
	line, err := mc.r.ReadString('\n')
	if err != nil {
		bad = true
		return err
	}
	line = strings.TrimSpace(line)
	if line != "DELETED" && line != "NOT_FOUND" {
		bad = true
		return fmt.Errorf("mcstore: delete failed: %s", line)
	}
	return nil
}

func (s *Store) Increment(ctx context.Context, key string, delta uint64) (uint64, error) {
	return s.counter(ctx, "incr", key, delta)
}

func (s *Store) Decrement(ctx context.Context, key string, delta uint64) (uint64, error) {
	return s.counter(ctx, "decr", key, delta)
}

func (s *Store) counter(ctx context.Context, verb, key string, delta uint64) (uint64, error) {
	mc, err := s.acquire(ctx)
	if err != nil {
		return 0, err
	}
	bad := false
	defer func() { s.release(mc, bad) }()

	if _, err := fmt.Fprintf(mc.c, "%s %s %d\r\n", verb, key, delta); err != nil {
		bad = true
		return 0, err
	}
	line, err := mc.r.ReadString('\n')
	if err != nil {
		bad = true
		return 0, err
	}
	line = strings.TrimSpace(line)
	if line == "NOT_FOUND" {
		return 0, rs.ErrNotFound
	}
	v, err := strconv.ParseUint(line, 10, 64)
	if err != nil {
		bad = true
		return 0, fmt.Errorf("mcstore: %s failed: %s", verb, line)
	}
	return v, nil
}

func (s *Store) Close(_ context.Context) error {
	for {
		select {
		case mc := <-s.pool:
			_ = mc.c.Close()
		default:
			return nil
		}
	}
}

// expiration converts a TTL to memcached seconds; 0 never expires.
func expiration(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	sec := int(ttl / time.Second)
	if sec < 1 {
		sec = 1
	}
	return sec
}

func (s *Store) acquire(ctx context.Context) (*conn, error) {
	select {
	case mc := <-s.pool:
		return mc, nil
	default:
	}
	c, err := dial(ctx, s.addr)
	if err != nil {
		return nil, err
	}
	return &conn{c: c, r: bufio.NewReader(c)}, nil
}

func (s *Store) release(mc *conn, bad bool) {
	if bad {
		_ = mc.c.Close()
		return
	}
	select {
	case s.pool <- mc:
	default:
		_ = mc.c.Close()
	}
}
