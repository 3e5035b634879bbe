package domain

import (
	"fmt"
	"time"
)

// Content types
const (
	TypePage     = "page"
	TypeTemplate = "template"
	TypeSection  = "section"
)

// Document statuses persisted on the content row
const (
	StatusPending   = "pending"
	StatusPublished = "published"
)

// Working statuses carried by draft-class saves. They are never written to
// the content row; a save arriving with one targets the current revision.
const (
	StatusDraft    = "draft"
	StatusAutosave = "autosave"
)

// IsValidType reports whether t is a recognized content type.
func IsValidType(t string) bool {
	switch t {
	case TypePage, TypeTemplate, TypeSection:
		return true
	}
	return false
}

// IsValidStatus reports whether s is a persistable document status.
func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusPublished:
		return true
	}
	return false
}

// IsWorkingStatus reports whether s marks a draft-class save.
func IsWorkingStatus(s string) bool {
	switch s {
	case StatusDraft, StatusAutosave:
		return true
	}
	return false
}

// StoreIDs is the list of store scopes a content belongs to.
type StoreIDs []uint64

// DefaultStoreID is assigned when a content is saved without a scope.
const DefaultStoreID uint64 = 0

// Content is a top-level buildable document (page/template/section).
type Content struct {
	ID           uint64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Identifier   string      `gorm:"column:identifier;type:varchar(191);uniqueIndex" json:"identifier"`
	Type         string      `gorm:"column:type;type:varchar(20)" json:"type"`
	Status       string      `gorm:"column:status;type:varchar(20)" json:"status"`
	StoreIDs     StoreIDs    `gorm:"column:store_ids;type:text;serializer:json" json:"store_ids"`
	AuthorID     uint64      `gorm:"column:author_id" json:"author_id"`
	LastEditorID uint64      `gorm:"column:last_editor_id" json:"last_editor_id"`
	Elements     ElementList `gorm:"column:elements;type:mediumtext;serializer:json" json:"elements"`
	Settings     Settings    `gorm:"column:settings;type:text;serializer:json" json:"settings"`
	CreatedAt    time.Time   `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"column:updated_at" json:"updated_at"`

	// RevisionHash mirrors the last revision's hash for the editor. It is
	// resolved lazily, never persisted on this row.
	RevisionHash string `gorm:"-" json:"revision_hash,omitempty"`

	// lazily resolved revision role slots, cached per instance
	currentRevision *Revision
	lastRevision    *Revision
}

// TableName returns the table name for Content
func (Content) TableName() string { return "contents" }

// EntityID implements Buildable.
func (c *Content) EntityID() uint64 { return c.ID }

// ElementTree implements Buildable.
func (c *Content) ElementTree() ElementList { return c.Elements }

// SettingsMap implements Buildable.
func (c *Content) SettingsMap() Settings { return c.Settings }

// StatusValue implements Buildable.
func (c *Content) StatusValue() string { return c.Status }

// UniqueIdentity implements Buildable.
func (c *Content) UniqueIdentity() string {
	return fmt.Sprintf("content-%d", c.ID)
}

// PublishResource is the type-qualified resource name gating publish-class
// status transitions for this content.
func (c *Content) PublishResource() string {
	return fmt.Sprintf("content.%s.publish", c.Type)
}

// CurrentRevision returns the cached current (draft) revision slot, if any.
func (c *Content) CurrentRevision() *Revision { return c.currentRevision }

// SetCurrentRevision caches the current revision slot on this instance.
func (c *Content) SetCurrentRevision(r *Revision) { c.currentRevision = r }

// LastRevision returns the cached last (published-snapshot) revision slot.
func (c *Content) LastRevision() *Revision { return c.lastRevision }

// SetLastRevision caches the last revision slot on this instance.
func (c *Content) SetLastRevision(r *Revision) { c.lastRevision = r }
