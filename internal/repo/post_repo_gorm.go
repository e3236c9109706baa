package repo

import (
	"errors"

	"gorm.io/gorm"

	"go-blog-api/internal/domain"
)

type PostRepo struct{ db *gorm.DB }

func NewPostRepo(db *gorm.DB) *PostRepo { return &PostRepo{db: db} }

// Create 写入帖子并原子地把作者计数 +1，两步同一事务
func (r *PostRepo) Create(p *domain.Post) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		res := tx.Model(&domain.User{}).
			Where("id = ?", p.CreatorID).
			UpdateColumn("posts", gorm.Expr("posts + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrCreatorMissing
		}
		return nil
	})
}

func (r *PostRepo) FindByID(id string) (*domain.Post, error) {
	var p domain.Post
	err := r.db.First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *PostRepo) ListAll() ([]domain.Post, error) {
	posts := make([]domain.Post, 0)
	err := r.db.Order("updated_at desc").Find(&posts).Error
	return posts, err
}

func (r *PostRepo) ListByCategory(category string) ([]domain.Post, error) {
	posts := make([]domain.Post, 0)
	err := r.db.Where("category = ?", category).Order("created_at desc").Find(&posts).Error
	return posts, err
}

func (r *PostRepo) ListByCreator(creatorID string) ([]domain.Post, error) {
	posts := make([]domain.Post, 0)
	err := r.db.Where("creator_id = ?", creatorID).Order("created_at desc").Find(&posts).Error
	return posts, err
}

func (r *PostRepo) Update(p *domain.Post) error { return r.db.Save(p).Error }

// Delete 删除帖子并原子地把作者计数 -1，计数不会降到负数
func (r *PostRepo) Delete(p *domain.Post) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&domain.Post{}, "id = ?", p.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&domain.User{}).
			Where("id = ? AND posts > 0", p.CreatorID).
			UpdateColumn("posts", gorm.Expr("posts - 1")).Error
	})
}
