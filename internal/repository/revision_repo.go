package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/elemently/builder-backend/internal/common"
	"github.com/elemently/builder-backend/internal/domain"
	"gorm.io/gorm"
)

// RevisionRepository is the durable store for revision snapshots.
type RevisionRepository interface {
	Save(ctx context.Context, revision *domain.Revision) error
	FindByID(ctx context.Context, id uint64) (*domain.Revision, error)
	// FindCurrent returns the "current" (draft) role snapshot for a content,
	// or nil when none exists. Absence is a normal outcome here.
	FindCurrent(ctx context.Context, contentID uint64) (*domain.Revision, error)
	// FindLast returns the "last" (publish-class) role snapshot for a
	// content, or nil when none exists.
	FindLast(ctx context.Context, contentID uint64) (*domain.Revision, error)
	ListByContentID(ctx context.Context, contentID uint64, statuses []string, limit, page int) ([]*domain.Revision, int64, error)
	DeleteByID(ctx context.Context, id uint64) error
	// DeleteByContentID removes every revision of a content. Used when the
	// owning content row is deleted.
	DeleteByContentID(ctx context.Context, contentID uint64) error
}

type revisionRepository struct {
	db *gorm.DB
}

// NewRevisionRepository creates a new RevisionRepository
func NewRevisionRepository(db *gorm.DB) RevisionRepository {
	return &revisionRepository{db: db}
}

func (r *revisionRepository) Save(ctx context.Context, revision *domain.Revision) error {
	if revision.ContentID == 0 {
		return fmt.Errorf("%w: %w", common.ErrCouldNotSave, common.ErrMissingContentID)
	}
	if !domain.IsValidRevisionStatus(revision.Status) {
		return fmt.Errorf("%w: %w: %q", common.ErrCouldNotSave, common.ErrInvalidStatus, revision.Status)
	}
	if err := r.db.WithContext(ctx).Save(revision).Error; err != nil {
		return fmt.Errorf("%w: %w", common.ErrCouldNotSave, err)
	}
	return nil
}

func (r *revisionRepository) FindByID(ctx context.Context, id uint64) (*domain.Revision, error) {
	var revision domain.Revision
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&revision).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrRevisionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &revision, nil
}

func (r *revisionRepository) FindCurrent(ctx context.Context, contentID uint64) (*domain.Revision, error) {
	return r.findRole(ctx, contentID, false)
}

func (r *revisionRepository) FindLast(ctx context.Context, contentID uint64) (*domain.Revision, error) {
	return r.findRole(ctx, contentID, true)
}

func (r *revisionRepository) findRole(ctx context.Context, contentID uint64, directSave bool) (*domain.Revision, error) {
	var revision domain.Revision
	err := r.db.WithContext(ctx).
		Where("content_id = ? AND direct_save = ?", contentID, directSave).
		Order("id DESC").
		First(&revision).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &revision, nil
}

func (r *revisionRepository) ListByContentID(ctx context.Context, contentID uint64, statuses []string, limit, page int) ([]*domain.Revision, int64, error) {
	criteria := ListCriteria{Page: page, Limit: limit}.Normalize()

	query := r.db.WithContext(ctx).Model(&domain.Revision{}).Where("content_id = ?", contentID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var revisions []*domain.Revision
	err := query.
		Order("id DESC").
		Offset(criteria.Offset()).
		Limit(criteria.Limit).
		Find(&revisions).Error
	if err != nil {
		return nil, 0, err
	}
	return revisions, total, nil
}

func (r *revisionRepository) DeleteByID(ctx context.Context, id uint64) error {
	if err := r.db.WithContext(ctx).Delete(&domain.Revision{}, id).Error; err != nil {
		return fmt.Errorf("%w: %w", common.ErrCouldNotDelete, err)
	}
	return nil
}

func (r *revisionRepository) DeleteByContentID(ctx context.Context, contentID uint64) error {
	err := r.db.WithContext(ctx).Where("content_id = ?", contentID).Delete(&domain.Revision{}).Error
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrCouldNotDelete, err)
	}
	return nil
}
