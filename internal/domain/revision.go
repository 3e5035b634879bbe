package domain

import (
	"fmt"
	"time"
)

// Revision statuses
const (
	RevisionStatusDraft    = "draft"
	RevisionStatusAutosave = "autosave"
	RevisionStatusRevision = "revision"
)

// RevisionHashLength is the length of the externally referenceable token
// regenerated on every publish-class save.
const RevisionHashLength = 7

// Default revision labels
const (
	LabelSavedRevision   = "Saved revision"
	LabelPublishedChange = "Published change"
)

// IsValidRevisionStatus reports whether s is a recognized revision status.
func IsValidRevisionStatus(s string) bool {
	switch s {
	case RevisionStatusDraft, RevisionStatusAutosave, RevisionStatusRevision:
		return true
	}
	return false
}

// Revision is a whole-snapshot of a content's elements and settings. Rows
// with DirectSave set hold the "last" (publish-class) role; rows without it
// hold the "current" (draft) role.
type Revision struct {
	ID           uint64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ContentID    uint64      `gorm:"column:content_id;index" json:"content_id"`
	Status       string      `gorm:"column:status;type:varchar(20)" json:"status"`
	DirectSave   bool        `gorm:"column:direct_save" json:"direct_save"`
	RevisionHash string      `gorm:"column:revision_hash;type:varchar(20)" json:"revision_hash"`
	Label        string      `gorm:"column:label;type:varchar(255)" json:"label"`
	Elements     ElementList `gorm:"column:elements;type:mediumtext;serializer:json" json:"elements"`
	Settings     Settings    `gorm:"column:settings;type:text;serializer:json" json:"settings"`
	AuthorID     uint64      `gorm:"column:author_id" json:"author_id"`
	CreatedAt    time.Time   `gorm:"column:created_at" json:"created_at"`

	// originating content back-reference, set during reconciliation
	content *Content
}

// TableName returns the table name for Revision
func (Revision) TableName() string { return "content_revisions" }

// EntityID implements Buildable.
func (r *Revision) EntityID() uint64 { return r.ID }

// ElementTree implements Buildable.
func (r *Revision) ElementTree() ElementList { return r.Elements }

// SettingsMap implements Buildable.
func (r *Revision) SettingsMap() Settings { return r.Settings }

// StatusValue implements Buildable.
func (r *Revision) StatusValue() string { return r.Status }

// UniqueIdentity implements Buildable.
func (r *Revision) UniqueIdentity() string {
	return fmt.Sprintf("revision-%d", r.ID)
}

// Content returns the originating content back-reference, if set.
func (r *Revision) Content() *Content { return r.content }

// SetContent sets the originating content back-reference.
func (r *Revision) SetContent(c *Content) { r.content = c }
