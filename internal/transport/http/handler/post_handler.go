package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"go-blog-api/internal/apperror"
	"go-blog-api/internal/service"
	mdw "go-blog-api/internal/transport/http/middleware"
	resp "go-blog-api/internal/transport/http/response"
)

type PostHandler struct {
	svc *service.PostService
}

func NewPostHandler(svc *service.PostService) *PostHandler { return &PostHandler{svc: svc} }

// Create POST /api/posts（鉴权，multipart：title/description/category + thumbnail）
func (h *PostHandler) Create(c *gin.Context) {
	in := service.CreatePostInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
	}
	if fh, err := c.FormFile("thumbnail"); err == nil {
		in.Thumbnail = fh
	}
	p, err := h.svc.Create(c.GetString(mdw.KeyUserID), in)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.CreatedEnvelope(c, p)
}

// Get GET /api/posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	p, err := h.svc.Get(c.Param("id"))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, p)
}

// List GET /api/posts（按最近更新倒序）
func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.svc.ListAll()
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, posts)
}

// ByCategory GET /api/posts/categories/:category
func (h *PostHandler) ByCategory(c *gin.Context) {
	posts, err := h.svc.ListByCategory(c.Param("category"))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, posts)
}

// ByCreator GET /api/posts/users/:id
func (h *PostHandler) ByCreator(c *gin.Context) {
	posts, err := h.svc.ListByCreator(c.Param("id"))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, posts)
}

// Edit PATCH /api/posts/:id（鉴权）。multipart 可携带新缩略图，JSON 仅改文本字段
func (h *PostHandler) Edit(c *gin.Context) {
	var in service.EditPostInput
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var body struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Category    string `json:"category"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			resp.Error(c, apperror.Validation("fill in all fields"))
			return
		}
		in.Title, in.Description, in.Category = body.Title, body.Description, body.Category
	} else {
		in.Title = c.PostForm("title")
		in.Description = c.PostForm("description")
		in.Category = c.PostForm("category")
		if fh, err := c.FormFile("thumbnail"); err == nil {
			in.Thumbnail = fh
		}
	}

	p, err := h.svc.Edit(c.GetString(mdw.KeyUserID), c.Param("id"), in)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, p)
}

// Delete DELETE /api/posts/:id（鉴权）
func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.GetString(mdw.KeyUserID), c.Param("id")); err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"success": true})
}
