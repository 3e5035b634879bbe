// Package registry resolves content documents by id or identifier through an
// ordered pipeline: per-request instance table, cache tier, persistent store,
// then write-back into both upper tiers.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/elemently/builder-backend/internal/common"
	"github.com/elemently/builder-backend/internal/domain"
	"github.com/elemently/builder-backend/internal/repository"
	"github.com/elemently/builder-backend/pkg/cache"
)

// TagContent groups every cached content entry for bulk invalidation.
const TagContent = "content"

// ContentRegistry resolves contents with at most one store round-trip per
// cache lifetime. Not-found is a nil result here, not an error; it only
// becomes an error at the repository layer.
type ContentRegistry interface {
	GetByID(ctx context.Context, id uint64) (*domain.Content, error)
	GetByIdentifier(ctx context.Context, identifier string) (*domain.Content, error)
	// Invalidate clears the instance-table entry, the id-keyed cache entry,
	// and the identifier forward entry for a mutated or deleted content.
	Invalidate(ctx context.Context, content *domain.Content) error
	// InvalidateAll evicts every cached content entry by tag.
	InvalidateAll(ctx context.Context) error
}

type contentRegistry struct {
	repo repository.ContentRepository
	tier *cache.Tier
}

// NewContentRegistry creates a ContentRegistry over a repository and a cache
// tier. The tier may be nil; resolution then always reaches the store.
func NewContentRegistry(repo repository.ContentRepository, tier *cache.Tier) ContentRegistry {
	return &contentRegistry{repo: repo, tier: tier}
}

func idKey(id uint64) string {
	return fmt.Sprintf("content_%d", id)
}

func identifierKey(identifier string) string {
	return "content_identifier_" + identifier
}

// ContentTag is the per-content invalidation tag.
func ContentTag(id uint64) string {
	return fmt.Sprintf("content:%d", id)
}

func contentTags(id uint64) []string {
	return []string{TagContent, ContentTag(id)}
}

func (r *contentRegistry) GetByID(ctx context.Context, id uint64) (*domain.Content, error) {
	if c := ScopeFrom(ctx).ByID(id); c != nil {
		return c, nil
	}

	// cache and store collapse into one lock-guarded load-through; racing
	// misses across requests trigger a single store read
	payload, err := r.tier.Resolve(ctx, idKey(id), contentTags(id), cache.TTLContent,
		func(ctx context.Context) (string, error) {
			content, err := r.repo.FindByID(ctx, id)
			if err != nil {
				return "", err
			}
			return r.writeBack(ctx, content)
		})
	if errors.Is(err, common.ErrContentNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	content, err := decodeContent(payload)
	if err != nil {
		// a corrupt cache entry degrades to an authoritative read
		content, err = r.repo.FindByID(ctx, id)
		if errors.Is(err, common.ErrContentNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
	}

	ScopeFrom(ctx).Put(content)
	return content, nil
}

func (r *contentRegistry) GetByIdentifier(ctx context.Context, identifier string) (*domain.Content, error) {
	if c := ScopeFrom(ctx).ByIdentifier(identifier); c != nil {
		return c, nil
	}

	// identifier entries forward to the id-keyed snapshot
	if fwd, ok := r.tier.Load(ctx, identifierKey(identifier)); ok {
		if id, err := strconv.ParseUint(fwd, 10, 64); err == nil {
			if payload, ok := r.tier.Load(ctx, idKey(id)); ok {
				if content, err := decodeContent(payload); err == nil {
					ScopeFrom(ctx).Put(content)
					return content, nil
				}
			}
		}
	}

	content, err := r.repo.FindByIdentifier(ctx, identifier)
	if errors.Is(err, common.ErrContentNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if _, err := r.writeBack(ctx, content); err != nil {
		return nil, err
	}
	ScopeFrom(ctx).Put(content)
	return content, nil
}

// writeBack stores the resolved content under its id key and, when it has an
// identifier, a forwarding entry from identifier to id. Returns the encoded
// snapshot.
func (r *contentRegistry) writeBack(ctx context.Context, content *domain.Content) (string, error) {
	payload, err := cache.Encode(content)
	if err != nil {
		return "", err
	}
	tags := contentTags(content.ID)
	_ = r.tier.Save(ctx, payload, idKey(content.ID), tags, cache.TTLContent)
	if content.Identifier != "" {
		fwd := strconv.FormatUint(content.ID, 10)
		_ = r.tier.Save(ctx, fwd, identifierKey(content.Identifier), tags, cache.TTLContent)
	}
	return payload, nil
}

func (r *contentRegistry) Invalidate(ctx context.Context, content *domain.Content) error {
	if content == nil {
		return nil
	}
	ScopeFrom(ctx).Remove(content.ID)
	// the per-content tag covers both the id key and the identifier forward
	return r.tier.Clean(ctx, ContentTag(content.ID))
}

func (r *contentRegistry) InvalidateAll(ctx context.Context) error {
	return r.tier.Clean(ctx, TagContent)
}

func decodeContent(payload string) (*domain.Content, error) {
	var content domain.Content
	if err := cache.Decode(payload, &content); err != nil {
		return nil, err
	}
	if content.ID == 0 {
		return nil, fmt.Errorf("%w: empty content snapshot", common.ErrInvalidInput)
	}
	return &content, nil
}
