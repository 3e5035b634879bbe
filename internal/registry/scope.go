package registry

import (
	"context"

	"github.com/elemently/builder-backend/internal/domain"
)

type scopeCtxKey struct{}

// Scope is the per-request instance table: the first resolution tier.
// It lives exactly as long as the request that created it and is not safe
// for concurrent use.
type Scope struct {
	contents map[uint64]*domain.Content
}

// NewScope creates an empty instance table
func NewScope() *Scope {
	return &Scope{contents: make(map[uint64]*domain.Content)}
}

// WithScope attaches a fresh instance table to the context.
func WithScope(ctx context.Context) context.Context {
	return context.WithValue(ctx, scopeCtxKey{}, NewScope())
}

// ScopeFrom returns the instance table carried by the context, or nil.
// The registry works without one; every call then skips the first tier.
func ScopeFrom(ctx context.Context) *Scope {
	s, _ := ctx.Value(scopeCtxKey{}).(*Scope)
	return s
}

// ByID returns a previously resolved content by id.
func (s *Scope) ByID(id uint64) *domain.Content {
	if s == nil {
		return nil
	}
	return s.contents[id]
}

// ByIdentifier scans previously resolved contents for a matching identifier.
func (s *Scope) ByIdentifier(identifier string) *domain.Content {
	if s == nil {
		return nil
	}
	for _, c := range s.contents {
		if c.Identifier == identifier {
			return c
		}
	}
	return nil
}

// Put inserts a resolved content for reuse within the request.
func (s *Scope) Put(c *domain.Content) {
	if s == nil || c == nil || c.ID == 0 {
		return
	}
	s.contents[c.ID] = c
}

// Remove drops a content from the instance table.
func (s *Scope) Remove(id uint64) {
	if s == nil {
		return
	}
	delete(s.contents, id)
}
