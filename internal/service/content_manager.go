// Package service orchestrates content saves: deciding whether a save touches
// the content row, the current (draft) revision, or the last (publish-class)
// revision, and keeping the cache tier consistent afterwards.
package service

import (
	"context"
	"fmt"

	"github.com/elemently/builder-backend/internal/common"
	"github.com/elemently/builder-backend/internal/domain"
	"github.com/elemently/builder-backend/internal/registry"
	"github.com/elemently/builder-backend/internal/repository"
	"github.com/elemently/builder-backend/pkg/logger"
	"github.com/elemently/builder-backend/pkg/random"
)

// SaveOptions controls a single save call.
type SaveOptions struct {
	// Message becomes the revision label when supplied.
	Message string
	// SkipRevision opts this save out of revision reconciliation.
	SkipRevision bool
	// SuppressLabel prevents assigning a default label.
	SuppressLabel bool
}

// ContentManager is the save/delete orchestrator for buildable documents.
type ContentManager interface {
	// Save persists the content (when its status is a document status) and
	// reconciles the matching revision role.
	Save(ctx context.Context, content *domain.Content, opts SaveOptions) (*domain.Content, error)
	// SaveRevision persists a revision directly, applying the message as its
	// label. No reconciliation happens on this path.
	SaveRevision(ctx context.Context, revision *domain.Revision, message string) error
	// Delete removes the content row, all of its revisions, and every cache
	// entry addressing it.
	Delete(ctx context.Context, id uint64) error
	// ListRevisions returns the stored revisions of a content, newest first.
	ListRevisions(ctx context.Context, contentID uint64, statuses []string, limit, page int) ([]*domain.Revision, int64, error)
}

type contentManager struct {
	contents  repository.ContentRepository
	revisions repository.RevisionRepository
	registry  registry.ContentRegistry
	tokenFn   func(int) string
}

// NewContentManager creates a ContentManager
func NewContentManager(
	contents repository.ContentRepository,
	revisions repository.RevisionRepository,
	reg registry.ContentRegistry,
) ContentManager {
	return &contentManager{
		contents:  contents,
		revisions: revisions,
		registry:  reg,
		tokenFn:   random.String,
	}
}

func (m *contentManager) Save(ctx context.Context, content *domain.Content, opts SaveOptions) (*domain.Content, error) {
	if content == nil {
		return nil, common.ErrInvalidInput
	}
	if !domain.IsValidType(content.Type) {
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidType, content.Type)
	}

	// a document status makes this a publish-class save that touches the
	// row; a working status (draft/autosave) targets the current revision
	// only; anything else is rejected before any mutation
	publishClass := domain.IsValidStatus(content.Status)
	if !publishClass && !domain.IsWorkingStatus(content.Status) {
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidStatus, content.Status)
	}

	if publishClass {
		if err := m.contents.Save(ctx, content); err != nil {
			return nil, err
		}
	}

	if !opts.SkipRevision {
		if err := m.reconcileRevision(ctx, content, publishClass, opts); err != nil {
			return nil, err
		}
	}

	if err := m.registry.Invalidate(ctx, content); err != nil {
		logger.GetLogger().Warn().Err(err).Uint64("content_id", content.ID).
			Msg("cache invalidation failed after save")
	}
	return content, nil
}

// reconcileRevision resolves the revision holding the target role, copies the
// content snapshot onto it, and persists it.
func (m *contentManager) reconcileRevision(ctx context.Context, content *domain.Content, publishClass bool, opts SaveOptions) error {
	if content.ID == 0 {
		return common.ErrMissingContentID
	}

	revision, err := m.resolveRole(ctx, content, publishClass)
	if err != nil {
		return err
	}
	if revision == nil {
		revision = &domain.Revision{ContentID: content.ID}
	}
	if publishClass {
		content.SetLastRevision(revision)
	} else {
		content.SetCurrentRevision(revision)
	}

	revision.ContentID = content.ID
	revision.DirectSave = publishClass
	revision.Elements = content.Elements.Clone()
	revision.Settings = content.Settings.Clone()
	revision.SetContent(content)
	if revision.AuthorID == 0 {
		revision.AuthorID = content.LastEditorID
	}

	if revision.Status == "" {
		revision.Status = content.Status
	}
	if !domain.IsValidRevisionStatus(revision.Status) {
		revision.Status = domain.RevisionStatusRevision
	}

	if publishClass {
		// every publish-class save yields a new externally referenceable hash
		revision.RevisionHash = m.tokenFn(domain.RevisionHashLength)
		content.RevisionHash = revision.RevisionHash
	} else {
		hash, err := m.mirrorHash(ctx, content)
		if err != nil {
			return err
		}
		// a content that was never published carries no hash; keep whatever
		// the current revision already holds instead of wiping it
		if hash != "" {
			revision.RevisionHash = hash
		}
	}

	if opts.Message != "" {
		revision.Label = opts.Message
	} else if revision.Label == "" && !opts.SuppressLabel {
		if publishClass {
			revision.Label = domain.LabelSavedRevision
		} else {
			revision.Label = domain.LabelPublishedChange
		}
	}

	return m.revisions.Save(ctx, revision)
}

// mirrorHash returns the content's revision hash mirror, resolving it from
// the last revision when the instance was loaded fresh and carries none.
func (m *contentManager) mirrorHash(ctx context.Context, content *domain.Content) (string, error) {
	if content.RevisionHash != "" {
		return content.RevisionHash, nil
	}
	last := content.LastRevision()
	if last == nil {
		var err error
		last, err = m.revisions.FindLast(ctx, content.ID)
		if err != nil {
			return "", err
		}
		if last != nil {
			content.SetLastRevision(last)
		}
	}
	if last != nil {
		content.RevisionHash = last.RevisionHash
	}
	return content.RevisionHash, nil
}

// resolveRole returns the revision currently holding the requested role,
// preferring the slot cached on the content instance.
func (m *contentManager) resolveRole(ctx context.Context, content *domain.Content, publishClass bool) (*domain.Revision, error) {
	if publishClass {
		if r := content.LastRevision(); r != nil {
			return r, nil
		}
		return m.revisions.FindLast(ctx, content.ID)
	}
	if r := content.CurrentRevision(); r != nil {
		return r, nil
	}
	return m.revisions.FindCurrent(ctx, content.ID)
}

func (m *contentManager) SaveRevision(ctx context.Context, revision *domain.Revision, message string) error {
	if revision == nil {
		return common.ErrInvalidInput
	}
	if message != "" {
		revision.Label = message
	}
	return m.revisions.Save(ctx, revision)
}

func (m *contentManager) Delete(ctx context.Context, id uint64) error {
	content, err := m.registry.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if content == nil {
		return common.ErrContentNotFound
	}

	if err := m.revisions.DeleteByContentID(ctx, id); err != nil {
		return err
	}
	if err := m.contents.DeleteByID(ctx, id); err != nil {
		return err
	}
	return m.registry.Invalidate(ctx, content)
}

func (m *contentManager) ListRevisions(ctx context.Context, contentID uint64, statuses []string, limit, page int) ([]*domain.Revision, int64, error) {
	return m.revisions.ListByContentID(ctx, contentID, statuses, limit, page)
}
