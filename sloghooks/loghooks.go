// Package sloghooks adapts tagcache.Hooks onto a slog.Logger with optional
// sampling for the chatty events.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/tagcache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	VersionFetchEvery uint64
	// Optional tag redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	fetchCtr atomic.Uint64
}

var _ tagcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(t string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(t)
	}
	sum := sha256.Sum256([]byte(t))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) TagVersionFetch(ns string, missed int) {
	if h.l == nil || !sample(h.opts.VersionFetchEvery, &h.fetchCtr) {
		return
	}
	h.l.Debug("tagcache.tag_version_fetch",
		"ns", ns,
		"missed", missed)
}

func (h *Hooks) TagVersionInit(ns string, tags int) {
	if h.l == nil {
		return
	}
	h.l.Info("tagcache.tag_version_init",
		"ns", ns,
		"tags", tags)
}

func (h *Hooks) TagInitFailed(ns string, tags int, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("tagcache.tag_init_failed",
		"ns", ns,
		"tags", tags,
		"err", err)
}

func (h *Hooks) TagBumpMissing(tag string) {
	if h.l == nil {
		return
	}
	h.l.Warn("tagcache.tag_bump_missing",
		"tag", h.redact(tag))
}

func (h *Hooks) BatchFailed(op string, items int, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("tagcache.batch_failed",
		"op", op,
		"items", items,
		"err", err)
}

func (h *Hooks) LocalCachesReset(ns string) {
	if h.l == nil {
		return
	}
	h.l.Info("tagcache.local_caches_reset",
		"ns", ns)
}
