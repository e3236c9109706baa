package service

import (
	"errors"
	"mime/multipart"
	"strings"

	"go.uber.org/zap"

	"go-blog-api/internal/apperror"
	"go-blog-api/internal/domain"
	"go-blog-api/internal/upload"
	"go-blog-api/pkg/utils"
)

const minDescriptionLen = 12

type PostService struct {
	repo              domain.PostRepository
	store             *upload.Store
	log               *zap.Logger
	thumbnailMaxBytes int64
}

func NewPostService(r domain.PostRepository, store *upload.Store, log *zap.Logger, thumbnailMaxBytes int64) *PostService {
	return &PostService{repo: r, store: store, log: log, thumbnailMaxBytes: thumbnailMaxBytes}
}

type CreatePostInput struct {
	Title       string
	Description string
	Category    string
	Thumbnail   *multipart.FileHeader
}

// Create 先落盘缩略图，再在一个事务里写帖子并把作者计数 +1；
// 事务失败则删除刚写入的文件，不留孤儿
func (s *PostService) Create(creatorID string, in CreatePostInput) (*domain.Post, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" || description == "" || in.Category == "" || in.Thumbnail == nil {
		return nil, apperror.Validation("fill all the fields")
	}
	if !domain.ValidCategory(in.Category) {
		return nil, apperror.Validation("category is not supported")
	}

	fileName, err := s.store.Save(in.Thumbnail, s.thumbnailMaxBytes)
	if err != nil {
		return nil, err
	}

	p := &domain.Post{
		ID:          utils.NewID(),
		Title:       title,
		Category:    in.Category,
		Description: description,
		Thumbnail:   fileName,
		CreatorID:   creatorID,
	}
	if err := s.repo.Create(p); err != nil {
		if rmErr := s.store.Remove(fileName); rmErr != nil {
			s.log.Warn("orphan thumbnail cleanup failed", zap.String("file", fileName), zap.Error(rmErr))
		}
		if errors.Is(err, domain.ErrCreatorMissing) {
			return nil, apperror.Validation("user not found")
		}
		return nil, apperror.Internal("failed to create post", err)
	}
	return p, nil
}

func (s *PostService) Get(id string) (*domain.Post, error) {
	p, err := s.repo.FindByID(id)
	if err != nil {
		return nil, apperror.Internal("failed to get post", err)
	}
	if p == nil {
		return nil, apperror.NotFound("post")
	}
	return p, nil
}

func (s *PostService) ListAll() ([]domain.Post, error) {
	posts, err := s.repo.ListAll()
	if err != nil {
		return nil, apperror.Internal("failed to get all posts", err)
	}
	return posts, nil
}

func (s *PostService) ListByCategory(category string) ([]domain.Post, error) {
	posts, err := s.repo.ListByCategory(category)
	if err != nil {
		return nil, apperror.Internal("failed to get posts by category", err)
	}
	return posts, nil
}

func (s *PostService) ListByCreator(creatorID string) ([]domain.Post, error) {
	posts, err := s.repo.ListByCreator(creatorID)
	if err != nil {
		return nil, apperror.Internal("failed to get user posts", err)
	}
	return posts, nil
}

type EditPostInput struct {
	Title       string
	Description string
	Category    string
	Thumbnail   *multipart.FileHeader // 为空则沿用旧图
}

// Edit 仅创建者可改。换图时新图先落盘，记录更新成功后才尽力删除旧图
func (s *PostService) Edit(requesterID, postID string, in EditPostInput) (*domain.Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || in.Category == "" || len(strings.TrimSpace(in.Description)) < minDescriptionLen {
		return nil, apperror.Validation("fill in all fields, description must be at least 12 characters")
	}
	if !domain.ValidCategory(in.Category) {
		return nil, apperror.Validation("category is not supported")
	}

	p, err := s.repo.FindByID(postID)
	if err != nil {
		return nil, apperror.Internal("failed to get post", err)
	}
	if p == nil {
		return nil, apperror.NotFound("post")
	}
	if p.CreatorID != requesterID {
		return nil, apperror.Forbidden("you don't have access to edit this post")
	}

	oldThumbnail := ""
	if in.Thumbnail != nil {
		newName, err := s.store.Save(in.Thumbnail, s.thumbnailMaxBytes)
		if err != nil {
			return nil, err
		}
		oldThumbnail = p.Thumbnail
		p.Thumbnail = newName
	}

	p.Title = title
	p.Category = in.Category
	p.Description = strings.TrimSpace(in.Description)
	if err := s.repo.Update(p); err != nil {
		if in.Thumbnail != nil {
			if rmErr := s.store.Remove(p.Thumbnail); rmErr != nil {
				s.log.Warn("orphan thumbnail cleanup failed", zap.String("file", p.Thumbnail), zap.Error(rmErr))
			}
		}
		return nil, apperror.Internal("could not update the post", err)
	}

	if oldThumbnail != "" {
		if err := s.store.Remove(oldThumbnail); err != nil {
			s.log.Warn("old thumbnail delete failed", zap.String("file", oldThumbnail), zap.Error(err))
		}
	}
	return p, nil
}

// Delete 仅创建者可删。记录删除与计数 -1 先提交，缩略图随后尽力清理，
// 文件系统故障不会阻塞删除本身
func (s *PostService) Delete(requesterID, postID string) error {
	p, err := s.repo.FindByID(postID)
	if err != nil {
		return apperror.Internal("failed to delete post", err)
	}
	if p == nil {
		return apperror.NotFound("post")
	}
	if p.CreatorID != requesterID {
		return apperror.Forbidden("you don't have access to delete this post")
	}

	if err := s.repo.Delete(p); err != nil {
		return apperror.Internal("failed to delete post", err)
	}

	if err := s.store.Remove(p.Thumbnail); err != nil {
		s.log.Warn("thumbnail delete failed", zap.String("file", p.Thumbnail), zap.Error(err))
	}
	return nil
}
