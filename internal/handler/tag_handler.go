package handler

import (
	"github.com/gin-gonic/gin"

	"blogapi/internal/dto"
	"blogapi/internal/middleware"
	"blogapi/internal/service"
	"blogapi/pkg/response"
)

// TagHandler handles tag HTTP requests
type TagHandler struct {
	tagService service.TagService
}

// NewTagHandler creates a new TagHandler
func NewTagHandler(tagService service.TagService) *TagHandler {
	return &TagHandler{tagService: tagService}
}

// List returns a page of tags
// GET /api/v1/tags
func (h *TagHandler) List(c *gin.Context) {
	var req dto.ListTagsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	tags, total, page, err := h.tagService.List(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, dto.NewPageResponse(page, total, dto.NewTagResponses(tags)))
}

// Get returns a single tag
// GET /api/v1/tags/:id
func (h *TagHandler) Get(c *gin.Context) {
	tag, err := h.tagService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, dto.NewTagResponse(tag))
}

// Create creates a tag
// POST /api/v1/tags
func (h *TagHandler) Create(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	if principal == nil {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req dto.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	tag, err := h.tagService.Create(c.Request.Context(), *principal, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Created(c, dto.NewTagResponse(tag))
}

// Update patches a tag
// PATCH /api/v1/tags/:id
func (h *TagHandler) Update(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	if principal == nil {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req dto.UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	tag, err := h.tagService.Update(c.Request.Context(), *principal, c.Param("id"), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, dto.NewTagResponse(tag))
}

// Delete removes a tag
// DELETE /api/v1/tags/:id
func (h *TagHandler) Delete(c *gin.Context) {
	if err := h.tagService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}

	response.NoContent(c)
}
