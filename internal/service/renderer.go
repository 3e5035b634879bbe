package service

import (
	"context"
	"fmt"

	"github.com/elemently/builder-backend/internal/common"
	"github.com/elemently/builder-backend/internal/domain"
	"github.com/elemently/builder-backend/internal/registry"
)

// templateWidget is the widget type whose settings reference another content.
const templateWidget = "template"

// Renderer expands a document's element tree for presentation: template
// widgets are inlined by resolving the referenced content through the
// registry. A per-call guard rejects self-referential documents instead of
// recursing forever.
type Renderer struct {
	registry registry.ContentRegistry
}

// NewRenderer creates a Renderer
func NewRenderer(reg registry.ContentRegistry) *Renderer {
	return &Renderer{registry: reg}
}

// renderGuard tracks the unique identities currently being rendered in one
// call chain.
type renderGuard map[string]struct{}

func (g renderGuard) enter(identity string) error {
	if _, inFlight := g[identity]; inFlight {
		return fmt.Errorf("%w: %s", common.ErrRenderLoop, identity)
	}
	g[identity] = struct{}{}
	return nil
}

func (g renderGuard) exit(identity string) {
	delete(g, identity)
}

// Render returns the fully expanded element tree of a buildable document.
func (r *Renderer) Render(ctx context.Context, doc domain.Buildable) (domain.ElementList, error) {
	return r.render(ctx, doc, make(renderGuard))
}

func (r *Renderer) render(ctx context.Context, doc domain.Buildable, guard renderGuard) (domain.ElementList, error) {
	identity := doc.UniqueIdentity()
	if err := guard.enter(identity); err != nil {
		return nil, err
	}
	defer guard.exit(identity)

	return r.expand(ctx, doc.ElementTree(), guard)
}

func (r *Renderer) expand(ctx context.Context, list domain.ElementList, guard renderGuard) (domain.ElementList, error) {
	if list == nil {
		return nil, nil
	}
	out := make(domain.ElementList, 0, len(list))
	for _, el := range list {
		if el.WidgetType == templateWidget {
			expanded, err := r.expandTemplate(ctx, el, guard)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded)
			continue
		}
		children, err := r.expand(ctx, el.Elements, guard)
		if err != nil {
			return nil, err
		}
		el.Elements = children
		out = append(out, el)
	}
	return out, nil
}

func (r *Renderer) expandTemplate(ctx context.Context, el domain.Element, guard renderGuard) (domain.Element, error) {
	id := templateID(el.Settings)
	if id == 0 {
		return el, nil
	}

	content, err := r.registry.GetByID(ctx, id)
	if err != nil {
		return domain.Element{}, err
	}
	if content == nil {
		// a dangling template reference renders as the bare widget
		return el, nil
	}

	children, err := r.render(ctx, content, guard)
	if err != nil {
		return domain.Element{}, err
	}
	el.Elements = children
	return el, nil
}

// templateID extracts the referenced content id from widget settings. JSON
// decoding yields float64 for numbers; editors may also send strings.
func templateID(settings domain.Settings) uint64 {
	v, ok := settings["template_id"]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		if n < 0 {
			return 0
		}
		return uint64(n)
	case int:
		if n < 0 {
			return 0
		}
		return uint64(n)
	case uint64:
		return n
	case string:
		var id uint64
		if _, err := fmt.Sscanf(n, "%d", &id); err != nil {
			return 0
		}
		return id
	}
	return 0
}
