package domain

// Settings is a flat key→value settings map. Values may themselves be nested
// structures; the map is stored as JSON text at the persistence boundary.
type Settings map[string]any

// Element is a single node of the recursive layout tree
// (sections → columns → widgets).
type Element struct {
	ID         string      `json:"id"`
	ElType     string      `json:"elType"`
	WidgetType string      `json:"widgetType,omitempty"`
	Settings   Settings    `json:"settings,omitempty"`
	Elements   ElementList `json:"elements,omitempty"`
}

// ElementList is an ordered list of sibling elements.
type ElementList []Element

// IsWidget reports whether the element is a leaf widget node.
func (e Element) IsWidget() bool {
	return e.WidgetType != ""
}

// Walk visits every element depth-first in document order. Returning false
// from fn stops the walk.
func (l ElementList) Walk(fn func(Element) bool) bool {
	for _, el := range l {
		if !fn(el) {
			return false
		}
		if !el.Elements.Walk(fn) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the list. Revisions snapshot the owning
// content's tree, so they must not share slices or maps with it.
func (l ElementList) Clone() ElementList {
	if l == nil {
		return nil
	}
	out := make(ElementList, len(l))
	for i, el := range l {
		el.Settings = el.Settings.Clone()
		el.Elements = el.Elements.Clone()
		out[i] = el
	}
	return out
}

// Clone returns a shallow-value deep-map copy of the settings.
func (s Settings) Clone() Settings {
	if s == nil {
		return nil
	}
	out := make(Settings, len(s))
	for k, v := range s {
		if nested, ok := v.(map[string]any); ok {
			v = map[string]any(Settings(nested).Clone())
		}
		out[k] = v
	}
	return out
}
