package service

import (
	"context"
	"testing"

	"github.com/elemently/builder-backend/internal/common"
	"github.com/elemently/builder-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func templateRef(id float64) domain.Element {
	return domain.Element{
		ID:         "tpl",
		ElType:     "widget",
		WidgetType: "template",
		Settings:   domain.Settings{"template_id": id},
	}
}

func TestRenderPlainTree(t *testing.T) {
	reg := new(mockRegistry)
	renderer := NewRenderer(reg)

	content := pendingPage()
	out, err := renderer.Render(context.Background(), content)
	assert.NoError(t, err)
	assert.Equal(t, content.Elements, out)
	reg.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestRenderInlinesTemplate(t *testing.T) {
	reg := new(mockRegistry)
	renderer := NewRenderer(reg)

	partial := &domain.Content{
		ID:   2,
		Type: domain.TypeSection,
		Elements: domain.ElementList{
			{ID: "inner", ElType: "section"},
		},
	}
	reg.On("GetByID", mock.Anything, uint64(2)).Return(partial, nil)

	host := pendingPage()
	host.Elements = domain.ElementList{templateRef(2)}

	out, err := renderer.Render(context.Background(), host)
	assert.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, "template", out[0].WidgetType)
	assert.Len(t, out[0].Elements, 1)
	assert.Equal(t, "inner", out[0].Elements[0].ID)
}

func TestRenderDanglingTemplate(t *testing.T) {
	reg := new(mockRegistry)
	renderer := NewRenderer(reg)

	reg.On("GetByID", mock.Anything, uint64(5)).Return(nil, nil)

	host := pendingPage()
	host.Elements = domain.ElementList{templateRef(5)}

	out, err := renderer.Render(context.Background(), host)
	assert.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Empty(t, out[0].Elements)
}

func TestRenderSelfReferenceFails(t *testing.T) {
	reg := new(mockRegistry)
	renderer := NewRenderer(reg)

	host := pendingPage()
	host.Elements = domain.ElementList{templateRef(1)}
	reg.On("GetByID", mock.Anything, uint64(1)).Return(host, nil)

	_, err := renderer.Render(context.Background(), host)
	assert.ErrorIs(t, err, common.ErrRenderLoop)
}

func TestRenderMutualReferenceFails(t *testing.T) {
	reg := new(mockRegistry)
	renderer := NewRenderer(reg)

	a := pendingPage()
	a.Elements = domain.ElementList{templateRef(2)}

	b := &domain.Content{
		ID:       2,
		Type:     domain.TypeTemplate,
		Elements: domain.ElementList{templateRef(1)},
	}

	reg.On("GetByID", mock.Anything, uint64(1)).Return(a, nil)
	reg.On("GetByID", mock.Anything, uint64(2)).Return(b, nil)

	_, err := renderer.Render(context.Background(), a)
	assert.ErrorIs(t, err, common.ErrRenderLoop)
}

func TestRenderSameTemplateTwiceIsAllowed(t *testing.T) {
	reg := new(mockRegistry)
	renderer := NewRenderer(reg)

	partial := &domain.Content{
		ID:       2,
		Type:     domain.TypeSection,
		Elements: domain.ElementList{{ID: "inner", ElType: "section"}},
	}
	reg.On("GetByID", mock.Anything, uint64(2)).Return(partial, nil)

	// sibling references are re-entrant only while in flight, so using the
	// same partial in two places must render fine
	host := pendingPage()
	host.Elements = domain.ElementList{templateRef(2), templateRef(2)}

	out, err := renderer.Render(context.Background(), host)
	assert.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestTemplateIDParsing(t *testing.T) {
	tests := []struct {
		name     string
		settings domain.Settings
		want     uint64
	}{
		{"float", domain.Settings{"template_id": float64(3)}, 3},
		{"int", domain.Settings{"template_id": 4}, 4},
		{"string", domain.Settings{"template_id": "12"}, 12},
		{"garbage string", domain.Settings{"template_id": "abc"}, 0},
		{"negative", domain.Settings{"template_id": float64(-1)}, 0},
		{"missing", domain.Settings{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, templateID(tt.settings))
		})
	}
}
