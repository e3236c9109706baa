package domain

import (
	"errors"
	"time"
)

type Post struct {
	ID          string    `gorm:"primaryKey;size:32" json:"id"`
	Title       string    `gorm:"size:191;not null" json:"title"`
	Category    string    `gorm:"size:32;index;not null" json:"category"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Thumbnail   string    `gorm:"size:191;not null" json:"thumbnail"`
	CreatorID   string    `gorm:"size:32;index;not null" json:"creator"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Post) TableName() string { return "posts" }

// ErrCreatorMissing 计数更新时未命中作者记录
var ErrCreatorMissing = errors.New("creator missing")

// Categories 与既有内容保持一致，勿改动取值
var Categories = []string{
	"Agriculture", "Business", "Education", "Entertainment",
	"Art", "Investment", "Uncategorized", "Wheather",
}

func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

type PostRepository interface {
	// Create 在同一事务内写入记录并将作者计数 +1
	Create(p *Post) error
	FindByID(id string) (*Post, error)
	ListAll() ([]Post, error)              // 按 updated_at 倒序
	ListByCategory(c string) ([]Post, error) // 按 created_at 倒序
	ListByCreator(id string) ([]Post, error) // 按 created_at 倒序
	Update(p *Post) error
	// Delete 在同一事务内删除记录并将作者计数 -1
	Delete(p *Post) error
}
