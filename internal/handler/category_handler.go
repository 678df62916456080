package handler

import (
	"github.com/gin-gonic/gin"

	"blogapi/internal/dto"
	"blogapi/internal/middleware"
	"blogapi/internal/service"
	"blogapi/pkg/response"
)

// CategoryHandler handles category HTTP requests
type CategoryHandler struct {
	categoryService service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// List returns a page of categories
// GET /api/v1/categories
func (h *CategoryHandler) List(c *gin.Context) {
	var req dto.ListCategoriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	categories, total, page, err := h.categoryService.List(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, dto.NewPageResponse(page, total, dto.NewCategoryResponses(categories)))
}

// Get returns a single category
// GET /api/v1/categories/:id
func (h *CategoryHandler) Get(c *gin.Context) {
	category, err := h.categoryService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, dto.NewCategoryResponse(category))
}

// Create creates a category
// POST /api/v1/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	if principal == nil {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), *principal, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Created(c, dto.NewCategoryResponse(category))
}

// Update patches a category
// PATCH /api/v1/categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	if principal == nil {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	category, err := h.categoryService.Update(c.Request.Context(), *principal, c.Param("id"), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, dto.NewCategoryResponse(category))
}

// Delete removes a category with no posts attached
// DELETE /api/v1/categories/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.categoryService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}

	response.NoContent(c)
}
