package handler

import (
	"github.com/gin-gonic/gin"

	"blogapi/internal/dto"
	"blogapi/internal/middleware"
	"blogapi/internal/service"
	"blogapi/pkg/response"
)

// CommentHandler handles comment HTTP requests
type CommentHandler struct {
	commentService service.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// List returns a page of comments for a post
// GET /api/v1/posts/:id/comments
func (h *CommentHandler) List(c *gin.Context) {
	var params listParams
	if err := c.ShouldBindQuery(&params); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	comments, total, page, err := h.commentService.ListByPostID(c.Request.Context(), c.Param("id"), params.Page, params.Size, params.SortBy, params.Sort)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, dto.NewPageResponse(page, total, dto.NewCommentResponses(comments)))
}

// Get returns a single comment
// GET /api/v1/comments/:id
func (h *CommentHandler) Get(c *gin.Context) {
	comment, err := h.commentService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, dto.NewCommentResponse(comment))
}

// Create adds a comment to a post
// POST /api/v1/posts/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	if principal == nil {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), *principal, c.Param("id"), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Created(c, dto.NewCommentResponse(comment))
}

// Update patches a comment owned by the caller or any comment for admins
// PATCH /api/v1/comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	if principal == nil {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	comment, err := h.commentService.Update(c.Request.Context(), *principal, c.Param("id"), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, dto.NewCommentResponse(comment))
}

// Delete removes a comment
// DELETE /api/v1/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	if principal == nil {
		response.Unauthorized(c, "authentication required")
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), *principal, c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}

	response.NoContent(c)
}
