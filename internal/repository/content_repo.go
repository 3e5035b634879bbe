package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/elemently/builder-backend/internal/common"
	"github.com/elemently/builder-backend/internal/domain"
	"github.com/elemently/builder-backend/pkg/random"
	"gorm.io/gorm"
)

// identifierTokenLength is the suffix length of generated identifiers.
const identifierTokenLength = 7

// AuthorizationChecker gates publish-class status transitions. The caller's
// identity travels in the context.
type AuthorizationChecker interface {
	IsAllowed(ctx context.Context, resource string) bool
}

// ContentRepository is the durable store for content rows. Invariants
// (enum values, identifier uniqueness, the publish gate) are enforced here
// regardless of any caching above.
type ContentRepository interface {
	Save(ctx context.Context, content *domain.Content) error
	FindByID(ctx context.Context, id uint64) (*domain.Content, error)
	FindByIdentifier(ctx context.Context, identifier string) (*domain.Content, error)
	List(ctx context.Context, criteria ListCriteria) ([]*domain.Content, int64, error)
	Delete(ctx context.Context, content *domain.Content) error
	DeleteByID(ctx context.Context, id uint64) error
}

type contentRepository struct {
	db      *gorm.DB
	authz   AuthorizationChecker
	tokenFn func(int) string
}

// NewContentRepository creates a new ContentRepository. A nil authz allows
// every publish (for trusted process-local callers such as migrations).
func NewContentRepository(db *gorm.DB, authz AuthorizationChecker) ContentRepository {
	return &contentRepository{db: db, authz: authz, tokenFn: random.String}
}

// Save validates the content and writes the row. Every failure is wrapped
// into a single "could not save" error carrying the cause.
func (r *contentRepository) Save(ctx context.Context, content *domain.Content) error {
	if err := r.validate(ctx, content); err != nil {
		return fmt.Errorf("%w: %w", common.ErrCouldNotSave, err)
	}
	if err := r.db.WithContext(ctx).Save(content).Error; err != nil {
		return fmt.Errorf("%w: %w", common.ErrCouldNotSave, err)
	}
	return nil
}

func (r *contentRepository) validate(ctx context.Context, content *domain.Content) error {
	if !domain.IsValidStatus(content.Status) {
		return fmt.Errorf("%w: %q", common.ErrInvalidStatus, content.Status)
	}
	if !domain.IsValidType(content.Type) {
		return fmt.Errorf("%w: %q", common.ErrInvalidType, content.Type)
	}

	if content.Status == domain.StatusPublished {
		transition := true
		if content.ID != 0 {
			if prev, err := r.FindByID(ctx, content.ID); err == nil {
				transition = prev.Status != domain.StatusPublished
			}
		}
		if transition && r.authz != nil && !r.authz.IsAllowed(ctx, content.PublishResource()) {
			return fmt.Errorf("%w: %s", common.ErrPublishNotAllowed, content.PublishResource())
		}
	}

	if len(content.StoreIDs) == 0 {
		content.StoreIDs = domain.StoreIDs{domain.DefaultStoreID}
	}
	if content.Identifier == "" {
		content.Identifier = content.Type + "-" + r.tokenFn(identifierTokenLength)
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Content{}).
		Where("identifier = ? AND id <> ?", content.Identifier, content.ID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %q", common.ErrIdentifierTaken, content.Identifier)
	}
	return nil
}

func (r *contentRepository) FindByID(ctx context.Context, id uint64) (*domain.Content, error) {
	var content domain.Content
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&content).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrContentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &content, nil
}

func (r *contentRepository) FindByIdentifier(ctx context.Context, identifier string) (*domain.Content, error) {
	var content domain.Content
	err := r.db.WithContext(ctx).Where("identifier = ?", identifier).First(&content).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrContentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &content, nil
}

func (r *contentRepository) List(ctx context.Context, criteria ListCriteria) ([]*domain.Content, int64, error) {
	criteria = criteria.Normalize()

	query := applyFilters(r.db.WithContext(ctx).Model(&domain.Content{}), criteria)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var contents []*domain.Content
	err := query.
		Order(criteria.OrderClause()).
		Offset(criteria.Offset()).
		Limit(criteria.Limit).
		Find(&contents).Error
	if err != nil {
		return nil, 0, err
	}
	return contents, total, nil
}

func (r *contentRepository) Delete(ctx context.Context, content *domain.Content) error {
	return r.DeleteByID(ctx, content.ID)
}

func (r *contentRepository) DeleteByID(ctx context.Context, id uint64) error {
	if err := r.db.WithContext(ctx).Delete(&domain.Content{}, id).Error; err != nil {
		return fmt.Errorf("%w: %w", common.ErrCouldNotDelete, err)
	}
	return nil
}
