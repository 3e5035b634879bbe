package domain

// Buildable is anything carrying an element tree, a settings map, and a
// status: a Content or one of its Revisions.
type Buildable interface {
	EntityID() uint64
	ElementTree() ElementList
	SettingsMap() Settings
	StatusValue() string
	// UniqueIdentity is a process-wide fingerprint used to detect re-entrant
	// rendering of the same document.
	UniqueIdentity() string
}
