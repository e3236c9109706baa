package service

import (
	"errors"
	"mime/multipart"
	"strings"

	"go.uber.org/zap"

	"go-blog-api/internal/apperror"
	"go-blog-api/internal/core/auth"
	"go-blog-api/internal/domain"
	"go-blog-api/internal/upload"
	"go-blog-api/pkg/utils"
)

type UserService struct {
	repo           domain.UserRepository
	store          *upload.Store
	jwter          *auth.JWTer
	log            *zap.Logger
	avatarMaxBytes int64
}

func NewUserService(repo domain.UserRepository, store *upload.Store, jwter *auth.JWTer, log *zap.Logger, avatarMaxBytes int64) *UserService {
	return &UserService{repo: repo, store: store, jwter: jwter, log: log, avatarMaxBytes: avatarMaxBytes}
}

type RegisterInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Register 创建新用户，返回确认文案（不含任何口令信息）
func (s *UserService) Register(in RegisterInput) (string, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	password := strings.TrimSpace(in.Password)

	if name == "" || email == "" || in.Password == "" || in.ConfirmPassword == "" {
		return "", apperror.Validation("please fill all the fields")
	}
	if len(password) < 6 {
		return "", apperror.Validation("password must be at least 6 characters")
	}
	if in.Password != in.ConfirmPassword {
		return "", apperror.Validation("password and confirm password are not same")
	}

	existing, err := s.repo.FindByEmail(email)
	if err != nil {
		return "", apperror.Internal("error while registering user", err)
	}
	if existing != nil {
		return "", apperror.Conflict("user already exists")
	}

	u := &domain.User{
		ID:           utils.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: utils.HashPassword(password),
	}
	if err := s.repo.Create(u); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return "", apperror.Conflict("user already exists")
		}
		return "", apperror.Internal("error while registering user", err)
	}
	return "New user " + u.Email + " registered", nil
}

type LoginResult struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

// Login 校验口令并签发 token。未知邮箱与口令错误返回同一提示，避免泄露账号存在性
func (s *UserService) Login(email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperror.Validation("please fill all the fields")
	}

	u, err := s.repo.FindByEmail(email)
	if err != nil {
		return nil, apperror.Internal("login failed", err)
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return nil, apperror.Auth("email or password is incorrect")
	}

	token, err := s.jwter.Issue(u.ID, u.Name)
	if err != nil {
		return nil, apperror.Internal("issue token failed", err)
	}
	return &LoginResult{ID: u.ID, Name: u.Name, Token: token}, nil
}

func (s *UserService) Get(id string) (*domain.User, error) {
	u, err := s.repo.FindByID(id)
	if err != nil {
		return nil, apperror.Internal("failed to get user", err)
	}
	if u == nil {
		return nil, apperror.NotFound("user")
	}
	return u, nil
}

func (s *UserService) ListAuthors() ([]domain.User, error) {
	users, err := s.repo.List()
	if err != nil {
		return nil, apperror.Internal("failed to get authors", err)
	}
	return users, nil
}

// ChangeAvatar 先落盘新头像再更新记录，记录失败则删除刚写入的文件；
// 旧头像在记录更新成功后尽力删除
func (s *UserService) ChangeAvatar(userID string, avatar *multipart.FileHeader) (*domain.User, error) {
	if avatar == nil {
		return nil, apperror.Validation("please choose an image")
	}

	u, err := s.repo.FindByID(userID)
	if err != nil {
		return nil, apperror.Internal("failed to get user", err)
	}
	if u == nil {
		return nil, apperror.NotFound("user")
	}

	newName, err := s.store.Save(avatar, s.avatarMaxBytes)
	if err != nil {
		return nil, err
	}

	oldAvatar := u.Avatar
	u.Avatar = newName
	if err := s.repo.Update(u); err != nil {
		if rmErr := s.store.Remove(newName); rmErr != nil {
			s.log.Warn("orphan avatar cleanup failed", zap.String("file", newName), zap.Error(rmErr))
		}
		return nil, apperror.Internal("failed to update avatar", err)
	}

	if oldAvatar != "" {
		if err := s.store.Remove(oldAvatar); err != nil {
			s.log.Warn("old avatar delete failed", zap.String("file", oldAvatar), zap.Error(err))
		}
	}
	return u, nil
}

type EditUserInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (s *UserService) EditProfile(userID string, in EditUserInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" || in.CurrentPassword == "" || in.NewPassword == "" {
		return nil, apperror.Validation("please fill all the fields")
	}

	u, err := s.repo.FindByID(userID)
	if err != nil {
		return nil, apperror.Internal("failed to get user", err)
	}
	if u == nil {
		return nil, apperror.NotFound("user")
	}

	other, err := s.repo.FindByEmail(email)
	if err != nil {
		return nil, apperror.Internal("failed to update user", err)
	}
	if other != nil && other.ID != userID {
		return nil, apperror.Conflict("email already exists")
	}

	if !utils.CheckPassword(in.CurrentPassword, u.PasswordHash) {
		return nil, apperror.Auth("invalid current password")
	}
	if in.NewPassword != in.ConfirmPassword {
		return nil, apperror.Validation("new password did not match")
	}

	u.Name = name
	u.Email = email
	u.PasswordHash = utils.HashPassword(in.NewPassword)
	if err := s.repo.Update(u); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, apperror.Conflict("email already exists")
		}
		return nil, apperror.Internal("failed to update user", err)
	}
	return u, nil
}
