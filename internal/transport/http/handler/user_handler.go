package handler

import (
	"github.com/gin-gonic/gin"

	"go-blog-api/internal/apperror"
	"go-blog-api/internal/service"
	mdw "go-blog-api/internal/transport/http/middleware"
	resp "go-blog-api/internal/transport/http/response"
)

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler { return &UserHandler{svc: svc} }

// Register POST /api/users/register
func (h *UserHandler) Register(c *gin.Context) {
	var in service.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Error(c, apperror.Validation("please fill all the fields"))
		return
	}
	msg, err := h.svc.Register(in)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, msg)
}

// Login POST /api/users/login
func (h *UserHandler) Login(c *gin.Context) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Error(c, apperror.Validation("please fill all the fields"))
		return
	}
	out, err := h.svc.Login(in.Email, in.Password)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, out)
}

// Get GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.svc.Get(c.Param("id"))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, u)
}

// Authors GET /api/users/authors
func (h *UserHandler) Authors(c *gin.Context) {
	users, err := h.svc.ListAuthors()
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, users)
}

// ChangeAvatar POST /api/users/change-avatar（鉴权，multipart 字段 avatar）
func (h *UserHandler) ChangeAvatar(c *gin.Context) {
	fh, _ := c.FormFile("avatar") // 缺失交给 service 报 422
	u, err := h.svc.ChangeAvatar(c.GetString(mdw.KeyUserID), fh)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, u)
}

// Edit PATCH /api/users/edit-user（鉴权）
func (h *UserHandler) Edit(c *gin.Context) {
	var in service.EditUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Error(c, apperror.Validation("please fill all the fields"))
		return
	}
	u, err := h.svc.EditProfile(c.GetString(mdw.KeyUserID), in)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OKEnvelope(c, u)
}
