package handler

import (
	"errors"
	"strings"

	"github.com/elemently/builder-backend/internal/common"
	"github.com/elemently/builder-backend/internal/domain"
	"github.com/elemently/builder-backend/internal/middleware"
	"github.com/elemently/builder-backend/internal/registry"
	"github.com/elemently/builder-backend/internal/repository"
	"github.com/elemently/builder-backend/internal/service"
	"github.com/elemently/builder-backend/pkg/ginutil"
	"github.com/gin-gonic/gin"
)

// ContentHandler handles HTTP requests for builder contents
type ContentHandler struct {
	manager  service.ContentManager
	registry registry.ContentRegistry
	contents repository.ContentRepository
	renderer *service.Renderer
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(
	manager service.ContentManager,
	reg registry.ContentRegistry,
	contents repository.ContentRepository,
	renderer *service.Renderer,
) *ContentHandler {
	return &ContentHandler{
		manager:  manager,
		registry: reg,
		contents: contents,
		renderer: renderer,
	}
}

// SaveContentRequest is the request body for creating or updating content
type SaveContentRequest struct {
	Identifier   string             `json:"identifier"`
	Type         string             `json:"type" binding:"required"`
	Status       string             `json:"status" binding:"required"`
	StoreIDs     domain.StoreIDs    `json:"store_ids"`
	Elements     domain.ElementList `json:"elements"`
	Settings     domain.Settings    `json:"settings"`
	Message      string             `json:"message"`
	SkipRevision bool               `json:"skip_revision"`
}

// ListContents godoc
// @Summary      List contents
// @Description  Returns a paginated list of builder contents
// @Tags         contents
// @Accept       json
// @Produce      json
// @Param        type    query  string  false  "Content type (page, template, section)"
// @Param        status  query  string  false  "Content status (pending, published)"
// @Param        page    query  int     false  "Page number"
// @Param        limit   query  int     false  "Page size"
// @Success      200  {object}  common.APIResponse{data=[]domain.Content}
// @Failure      500  {object}  common.APIResponse
// @Router       /contents [get]
func (h *ContentHandler) ListContents(c *gin.Context) {
	criteria := repository.ListCriteria{
		Filters:  map[string]interface{}{},
		SortBy:   c.DefaultQuery("sort_by", "updated_at"),
		SortDesc: c.DefaultQuery("order", "desc") != "asc",
		Page:     ginutil.QueryInt(c, "page", 1),
		Limit:    ginutil.QueryInt(c, "limit", 20),
	}
	if t := c.Query("type"); t != "" {
		criteria.Filters["type"] = t
	}
	if s := c.Query("status"); s != "" {
		criteria.Filters["status"] = s
	}

	contents, total, err := h.contents.List(c.Request.Context(), criteria)
	if err != nil {
		common.ErrorResponse(c, 500, "Failed to list contents", err)
		return
	}

	common.SuccessResponse(c, contents, &common.Meta{
		Page:  criteria.Page,
		Limit: criteria.Limit,
		Total: total,
	})
}

// GetContent godoc
// @Summary      Get content by ID
// @Description  Resolves a content through the instance table and the cache
// @Tags         contents
// @Accept       json
// @Produce      json
// @Param        id  path  int  true  "Content ID"
// @Success      200  {object}  common.APIResponse{data=domain.Content}
// @Failure      400  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Router       /contents/{id} [get]
func (h *ContentHandler) GetContent(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, 400, "Invalid content ID", err)
		return
	}

	content, err := h.registry.GetByID(c.Request.Context(), id)
	if err != nil {
		common.ErrorResponse(c, 500, "Failed to resolve content", err)
		return
	}
	if content == nil {
		common.ErrorResponse(c, 404, "Content not found", common.ErrContentNotFound)
		return
	}

	common.SuccessResponse(c, content, nil)
}

// GetContentByIdentifier godoc
// @Summary      Get content by identifier
// @Description  Resolves a content by its unique identifier
// @Tags         contents
// @Accept       json
// @Produce      json
// @Param        identifier  path  string  true  "Content identifier"
// @Success      200  {object}  common.APIResponse{data=domain.Content}
// @Failure      404  {object}  common.APIResponse
// @Router       /contents/identifier/{identifier} [get]
func (h *ContentHandler) GetContentByIdentifier(c *gin.Context) {
	identifier := c.Param("identifier")

	content, err := h.registry.GetByIdentifier(c.Request.Context(), identifier)
	if err != nil {
		common.ErrorResponse(c, 500, "Failed to resolve content", err)
		return
	}
	if content == nil {
		common.ErrorResponse(c, 404, "Content not found", common.ErrContentNotFound)
		return
	}

	common.SuccessResponse(c, content, nil)
}

// CreateContent godoc
// @Summary      Create content
// @Description  Saves a new content and reconciles its revision
// @Tags         contents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body  SaveContentRequest  true  "Content payload"
// @Success      200  {object}  common.APIResponse{data=domain.Content}
// @Failure      400  {object}  common.APIResponse
// @Failure      403  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /contents [post]
func (h *ContentHandler) CreateContent(c *gin.Context) {
	var req SaveContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, 400, "Invalid request body", err)
		return
	}

	memberID := middleware.GetMemberID(c)
	content := &domain.Content{
		Identifier:   req.Identifier,
		Type:         req.Type,
		Status:       req.Status,
		StoreIDs:     req.StoreIDs,
		Elements:     req.Elements,
		Settings:     req.Settings,
		AuthorID:     memberID,
		LastEditorID: memberID,
	}

	saved, err := h.manager.Save(c.Request.Context(), content, service.SaveOptions{
		Message:      req.Message,
		SkipRevision: req.SkipRevision,
	})
	if err != nil {
		h.writeSaveError(c, err)
		return
	}

	common.SuccessResponse(c, saved, nil)
}

// UpdateContent godoc
// @Summary      Update content
// @Description  Saves an existing content and reconciles its revision
// @Tags         contents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id               path   int                 true   "Content ID"
// @Param        create_revision  query  string              false  "Set to false to skip revision reconciliation"
// @Param        request          body   SaveContentRequest  true   "Content payload"
// @Success      200  {object}  common.APIResponse{data=domain.Content}
// @Failure      400  {object}  common.APIResponse
// @Failure      403  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Router       /contents/{id} [put]
func (h *ContentHandler) UpdateContent(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, 400, "Invalid content ID", err)
		return
	}

	var req SaveContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, 400, "Invalid request body", err)
		return
	}

	existing, err := h.registry.GetByID(c.Request.Context(), id)
	if err != nil {
		common.ErrorResponse(c, 500, "Failed to resolve content", err)
		return
	}
	if existing == nil {
		common.ErrorResponse(c, 404, "Content not found", common.ErrContentNotFound)
		return
	}

	existing.Type = req.Type
	existing.Status = req.Status
	existing.Elements = req.Elements
	existing.Settings = req.Settings
	existing.LastEditorID = middleware.GetMemberID(c)
	if req.Identifier != "" {
		existing.Identifier = req.Identifier
	}
	if len(req.StoreIDs) > 0 {
		existing.StoreIDs = req.StoreIDs
	}

	skipRevision := req.SkipRevision
	if c.Query("create_revision") == "false" {
		skipRevision = true
	}

	saved, err := h.manager.Save(c.Request.Context(), existing, service.SaveOptions{
		Message:      req.Message,
		SkipRevision: skipRevision,
	})
	if err != nil {
		h.writeSaveError(c, err)
		return
	}

	common.SuccessResponse(c, saved, nil)
}

// DeleteContent godoc
// @Summary      Delete content
// @Description  Removes a content, its revisions, and its cache entries
// @Tags         contents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Content ID"
// @Success      200  {object}  common.APIResponse
// @Failure      400  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Router       /contents/{id} [delete]
func (h *ContentHandler) DeleteContent(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, 400, "Invalid content ID", err)
		return
	}

	if err := h.manager.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, common.ErrContentNotFound) {
			common.ErrorResponse(c, 404, "Content not found", err)
			return
		}
		common.ErrorResponse(c, 500, "Failed to delete content", err)
		return
	}

	common.SuccessResponse(c, gin.H{"deleted": id}, nil)
}

// ListRevisions godoc
// @Summary      List content revisions
// @Description  Returns the stored revisions of a content, newest first
// @Tags         revisions
// @Accept       json
// @Produce      json
// @Param        id      path   int     true   "Content ID"
// @Param        status  query  string  false  "Revision status filter (comma separated)"
// @Param        page    query  int     false  "Page number"
// @Param        limit   query  int     false  "Page size"
// @Success      200  {object}  common.APIResponse{data=[]domain.Revision}
// @Failure      400  {object}  common.APIResponse
// @Router       /contents/{id}/revisions [get]
func (h *ContentHandler) ListRevisions(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, 400, "Invalid content ID", err)
		return
	}

	var statuses []string
	if s := c.Query("status"); s != "" {
		statuses = splitCSV(s)
	}
	page := ginutil.QueryInt(c, "page", 1)
	limit := ginutil.QueryInt(c, "limit", 20)

	revisions, total, err := h.manager.ListRevisions(c.Request.Context(), id, statuses, limit, page)
	if err != nil {
		common.ErrorResponse(c, 500, "Failed to list revisions", err)
		return
	}

	common.SuccessResponse(c, revisions, &common.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// RenderContent godoc
// @Summary      Render content
// @Description  Returns the element tree with template widgets inlined
// @Tags         contents
// @Accept       json
// @Produce      json
// @Param        id  path  int  true  "Content ID"
// @Success      200  {object}  common.APIResponse{data=domain.ElementList}
// @Failure      400  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Failure      422  {object}  common.APIResponse
// @Router       /contents/{id}/render [get]
func (h *ContentHandler) RenderContent(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, 400, "Invalid content ID", err)
		return
	}

	content, err := h.registry.GetByID(c.Request.Context(), id)
	if err != nil {
		common.ErrorResponse(c, 500, "Failed to resolve content", err)
		return
	}
	if content == nil {
		common.ErrorResponse(c, 404, "Content not found", common.ErrContentNotFound)
		return
	}

	elements, err := h.renderer.Render(c.Request.Context(), content)
	if err != nil {
		if errors.Is(err, common.ErrRenderLoop) {
			common.ErrorResponse(c, 422, "Template reference loop detected", err)
			return
		}
		common.ErrorResponse(c, 500, "Failed to render content", err)
		return
	}

	common.SuccessResponse(c, elements, nil)
}

// writeSaveError maps manager save failures onto HTTP statuses.
func (h *ContentHandler) writeSaveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidType), errors.Is(err, common.ErrInvalidStatus), errors.Is(err, common.ErrInvalidInput):
		common.ErrorResponse(c, 400, "Invalid content payload", err)
	case errors.Is(err, common.ErrPublishNotAllowed), errors.Is(err, common.ErrForbidden):
		common.ErrorResponse(c, 403, "Publishing not allowed", err)
	case errors.Is(err, common.ErrIdentifierTaken):
		common.ErrorResponse(c, 409, "Identifier already in use", err)
	case errors.Is(err, common.ErrContentNotFound):
		common.ErrorResponse(c, 404, "Content not found", err)
	default:
		common.ErrorResponse(c, 500, "Failed to save content", err)
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
