package handler

import (
	"github.com/gin-gonic/gin"

	"blogapi/internal/dto"
	"blogapi/internal/middleware"
	"blogapi/internal/service"
	"blogapi/pkg/response"
)

// PostHandler handles post HTTP requests
type PostHandler struct {
	postService service.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postService service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// List returns a filtered page of posts. Anonymous callers and callers
// without the admin role only see published posts unless they filter on
// their own author id.
// GET /api/v1/posts
func (h *PostHandler) List(c *gin.Context) {
	var req dto.ListPostsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	posts, total, page, err := h.postService.List(c.Request.Context(), middleware.PrincipalFrom(c), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, dto.NewPageResponse(page, total, dto.NewPostResponses(posts)))
}

// Get returns a single post
// GET /api/v1/posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.postService.GetByID(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, dto.NewPostResponse(post))
}

// Create creates a post authored by the caller
// POST /api/v1/posts
func (h *PostHandler) Create(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	if principal == nil {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	post, err := h.postService.Create(c.Request.Context(), *principal, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Created(c, dto.NewPostResponse(post))
}

// Update patches a post owned by the caller or any post for admins
// PATCH /api/v1/posts/:id
func (h *PostHandler) Update(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	if principal == nil {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req dto.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	post, err := h.postService.Update(c.Request.Context(), *principal, c.Param("id"), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, dto.NewPostResponse(post))
}

// Delete removes a post
// DELETE /api/v1/posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	if principal == nil {
		response.Unauthorized(c, "authentication required")
		return
	}

	if err := h.postService.Delete(c.Request.Context(), *principal, c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}

	response.NoContent(c)
}
