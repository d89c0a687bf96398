// Package cache stores rendered views in Redis and drops them when the data
// behind them changes. Every stored view is registered under a tag (the
// dashboard path it renders) so that a mutation can invalidate all cached
// variants of that path, whatever their query string.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/invoice-dashboard/internal/service"
)

// Views reads and writes cached views. A nil *Views, or one without a
// client, is a cache that never hits.
type Views struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewViews returns a view cache backed by rdb. Keys are namespaced by prefix
// and expire after ttl.
func NewViews(rdb redis.Cmdable, prefix string, ttl time.Duration) *Views {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Views{rdb: rdb, prefix: prefix, ttl: ttl}
}

// Enabled reports whether v can store anything.
func (v *Views) Enabled() bool { return v != nil && v.rdb != nil }

// Prefix returns the key namespace.
func (v *Views) Prefix() string { return v.prefix }

// TagKey is the Redis set listing the view keys rendered for tag.
func TagKey(prefix, tag string) string {
	return fmt.Sprintf("%s:tag:%s", prefix, tag)
}

// Get returns the cached payload for key. ok is false on a miss or error.
func (v *Views) Get(ctx context.Context, key string) (payload []byte, ok bool) {
	if !v.Enabled() {
		return nil, false
	}
	bs, err := v.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("view cache read failed", "key", key, "err", err)
		}
		return nil, false
	}
	return bs, true
}

// GenKey is the counter bumped every time tag is dropped.
func GenKey(prefix, tag string) string {
	return fmt.Sprintf("%s:gen:%s", prefix, tag)
}

// Generation returns the current drop counter of tag. Read it before
// rendering a view and hand it to Put; ok is false when Redis cannot answer,
// in which case the view should not be stored.
func (v *Views) Generation(ctx context.Context, tag string) (gen int64, ok bool) {
	if !v.Enabled() {
		return 0, false
	}
	gen, err := v.rdb.Get(ctx, GenKey(v.prefix, tag)).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		return 0, true
	case err != nil:
		slog.Warn("view cache generation read failed", "tag", tag, "err", err)
		return 0, false
	}
	return gen, true
}

// putScript stores a view only while the tag generation still equals the one
// the view was rendered under.
//
//	KEYS[1] generation counter, KEYS[2] view key, KEYS[3] tag set
//	ARGV[1] expected generation, ARGV[2] payload, ARGV[3] ttl in ms
var putScript = redis.NewScript(`
	local gen = redis.call('GET', KEYS[1]) or '0'
	if gen ~= ARGV[1] then
		return 0
	end
	redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
	redis.call('SADD', KEYS[3], KEYS[2])
	redis.call('PEXPIRE', KEYS[3], ARGV[3])
	return 1
`)

// Put stores payload under key and registers key under tag, unless tag was
// dropped after gen was read. The tag set lives as long as its newest member.
func (v *Views) Put(ctx context.Context, tag, key string, gen int64, payload []byte) (stored bool, err error) {
	if !v.Enabled() {
		return false, nil
	}
	keys := []string{GenKey(v.prefix, tag), key, TagKey(v.prefix, tag)}
	n, err := putScript.Run(ctx, v.rdb, keys, strconv.FormatInt(gen, 10), payload, v.ttl.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Drop bumps the generation of tag, then deletes every view registered
// under it and the tag set itself. Views rendered before the bump can no
// longer be stored.
func (v *Views) Drop(ctx context.Context, tag string) (int64, error) {
	if !v.Enabled() {
		return 0, nil
	}
	if err := v.rdb.Incr(ctx, GenKey(v.prefix, tag)).Err(); err != nil {
		return 0, fmt.Errorf("bump generation for %s: %w", tag, err)
	}
	tk := TagKey(v.prefix, tag)
	keys, err := v.rdb.SMembers(ctx, tk).Result()
	if err != nil {
		return 0, fmt.Errorf("list views for %s: %w", tag, err)
	}
	n, err := v.rdb.Del(ctx, append(keys, tk)...).Result()
	if err != nil {
		return 0, fmt.Errorf("drop views for %s: %w", tag, err)
	}
	return n, nil
}

// Invalidate implements service.ViewInvalidator by dropping the views
// tagged with the event path.
func (v *Views) Invalidate(ctx context.Context, ev service.ViewEvent) error {
	n, err := v.Drop(ctx, ev.Path)
	if err != nil {
		return err
	}
	slog.Debug("views invalidated", "path", ev.Path, "action", ev.Action, "keys", n)
	return nil
}
