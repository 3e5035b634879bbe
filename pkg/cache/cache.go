// Package cache implements the tagged, TTL-bounded cache tier used by the
// content registry. Caching here is opportunistic: every operation degrades
// to a miss (or a direct recompute) when the backing store is unavailable,
// so correctness never depends on the tier.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// TTL defaults
const (
	TTLDefault = 5 * time.Minute
	TTLContent = 10 * time.Minute // resolved content snapshots

	lockTTL      = 5 * time.Second
	lockWaitMax  = 500 * time.Millisecond
	lockPollStep = 25 * time.Millisecond
)

// keyPrefix namespaces our hashed keys away from other cache consumers
const keyPrefix = "bb:"

// ComputeFunc produces a value on a cache miss.
type ComputeFunc func(ctx context.Context) (string, error)

// Tier is the tagged key/value cache with lock-guarded load-through.
type Tier struct {
	store   Store
	enabled map[string]struct{} // nil means every tag is enabled
}

// NewTier creates a cache tier. enabledTags limits which tag groups may be
// cached; nil enables all, an empty slice disables the tier entirely.
func NewTier(store Store, enabledTags []string) *Tier {
	t := &Tier{store: store}
	if enabledTags != nil {
		t.enabled = make(map[string]struct{}, len(enabledTags))
		for _, tag := range enabledTags {
			t.enabled[tag] = struct{}{}
		}
	}
	return t
}

// Key hashes a logical key to its stored form. Hashing bounds key length and
// keeps unrelated consumers from colliding with ours.
func Key(logical string) string {
	sum := sha256.Sum256([]byte(logical))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Encode serializes a structured value for storage; strings pass through.
func Encode(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode deserializes a stored value; *string destinations pass through.
func Decode(data string, dest any) error {
	if sp, ok := dest.(*string); ok {
		*sp = data
		return nil
	}
	return json.Unmarshal([]byte(data), dest)
}

// cacheable reports whether a call carrying the given tags may use the tier.
func (t *Tier) cacheable(tags []string) bool {
	if t == nil || t.store == nil || len(tags) == 0 {
		return false
	}
	if t.enabled == nil {
		return true
	}
	for _, tag := range tags {
		if _, ok := t.enabled[tag]; ok {
			return true
		}
	}
	return false
}

// Load returns the value stored under the logical key. Store failures are
// reported as misses.
func (t *Tier) Load(ctx context.Context, key string) (string, bool) {
	if t == nil || t.store == nil {
		return "", false
	}
	v, ok, err := t.store.Get(ctx, Key(key))
	if err != nil {
		return "", false
	}
	return v, ok
}

// Save stores a value under the logical key with the given tags and TTL.
func (t *Tier) Save(ctx context.Context, value, key string, tags []string, ttl time.Duration) error {
	if !t.cacheable(tags) {
		return nil
	}
	hashed := Key(key)
	if err := t.store.Set(ctx, hashed, value, ttl); err != nil {
		return err
	}
	return t.store.AddTags(ctx, hashed, tags)
}

// Remove deletes the entry stored under the logical key.
func (t *Tier) Remove(ctx context.Context, key string) error {
	if t == nil || t.store == nil {
		return nil
	}
	return t.store.Del(ctx, Key(key))
}

// Clean removes every entry whose tag set intersects the given tags. This is
// the only bulk-invalidation primitive; keys are never enumerated directly.
func (t *Tier) Clean(ctx context.Context, tags ...string) error {
	if t == nil || t.store == nil {
		return nil
	}
	for _, tag := range tags {
		keys, err := t.store.TaggedKeys(ctx, tag)
		if err != nil {
			return err
		}
		if err := t.store.Del(ctx, keys...); err != nil {
			return err
		}
		if err := t.store.ClearTag(ctx, tag); err != nil {
			return err
		}
	}
	return nil
}

// Resolve implements lock-guarded load-through: load, and on a miss acquire a
// short key-scoped lock, re-check, and only then compute and store. At most
// one co-located request recomputes a key at a time; lock losers poll briefly
// for the winner's value and fall back to computing themselves when the wait
// is exhausted.
func (t *Tier) Resolve(ctx context.Context, key string, tags []string, ttl time.Duration, compute ComputeFunc) (string, error) {
	if !t.cacheable(tags) {
		return compute(ctx)
	}

	if v, ok := t.Load(ctx, key); ok {
		return v, nil
	}

	lockKey := Key(key) + ":lock"
	acquired, err := t.store.SetNX(ctx, lockKey, "1", lockTTL)
	if err != nil {
		// store is unhealthy, skip coordination entirely
		return compute(ctx)
	}

	if !acquired {
		deadline := time.Now().Add(lockWaitMax)
		for time.Now().Before(deadline) {
			time.Sleep(lockPollStep)
			if v, ok := t.Load(ctx, key); ok {
				return v, nil
			}
		}
		// lock holder is slow or gone; recomputing is always safe
		return compute(ctx)
	}
	defer t.store.Del(ctx, lockKey)

	// re-check under the lock to collapse racing misses
	if v, ok := t.Load(ctx, key); ok {
		return v, nil
	}

	v, err := compute(ctx)
	if err != nil {
		return "", err
	}
	_ = t.Save(ctx, v, key, tags, ttl)
	return v, nil
}
