// internal/handlers/blog.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/snapstudio/marketplace-backend/internal/i18n"
	"github.com/snapstudio/marketplace-backend/internal/services"
	"github.com/snapstudio/marketplace-backend/internal/utils"
)

type BlogHandler struct {
	blogService     *services.BlogService
	homepageService *services.HomepageService
}

func NewBlogHandler(blogService *services.BlogService, homepageService *services.HomepageService) *BlogHandler {
	return &BlogHandler{
		blogService:     blogService,
		homepageService: homepageService,
	}
}

// GET /homepage
func (h *BlogHandler) GetHomepage(c *gin.Context) {
	feed, err := h.homepageService.GetHomepage(c.Request.Context())
	if err != nil {
		respondError(c, err, "")
		return
	}

	utils.SuccessResponse(c, feed)
}

// GET /posts and GET /admin/posts
func (h *BlogHandler) GetPosts(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	posts, total, err := h.blogService.ListPosts(c.Request.Context(), currentIdentity(c), params)
	if err != nil {
		respondError(c, err, i18n.KeyPostNotFound)
		return
	}

	result := utils.CreatePaginationResult(posts, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /posts/:slug
func (h *BlogHandler) GetPost(c *gin.Context) {
	post, err := h.blogService.GetPostBySlug(c.Request.Context(), currentIdentity(c), c.Param("slug"))
	if err != nil {
		respondError(c, err, i18n.KeyPostNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"post": post,
	})
}

// POST /admin/posts
func (h *BlogHandler) CreatePost(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreatePostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.blogService.CreatePost(c.Request.Context(), currentIdentity(c), &req)
	if err != nil {
		respondError(c, err, i18n.KeyPostNotFound)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyPostCreated),
		"post":    post,
	})
}

// PUT /admin/posts/:id
func (h *BlogHandler) UpdatePost(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.UpdatePostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.blogService.UpdatePost(c.Request.Context(), currentIdentity(c), postID, &req)
	if err != nil {
		respondError(c, err, i18n.KeyPostNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyPostUpdated),
		"post":    post,
	})
}

// PUT /admin/posts/:id/publish
func (h *BlogHandler) TogglePost(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}

	post, err := h.blogService.TogglePostStatus(c.Request.Context(), currentIdentity(c), postID)
	if err != nil {
		respondError(c, err, i18n.KeyPostNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyPostUpdated),
		"post":    post,
	})
}

// DELETE /admin/posts/:id
func (h *BlogHandler) DeletePost(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.blogService.DeletePost(c.Request.Context(), currentIdentity(c), postID); err != nil {
		respondError(c, err, i18n.KeyPostNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyPostDeleted),
	})
}
