package domain

import (
	"errors"
	"time"
)

// ErrEmailTaken 唯一索引冲突，由 repo 统一翻译
var ErrEmailTaken = errors.New("email taken")

type User struct {
	ID           string    `gorm:"primaryKey;size:32" json:"id"`
	Name         string    `gorm:"size:64;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	Avatar       string    `gorm:"size:191" json:"avatar,omitempty"`
	Posts        int       `gorm:"not null;default:0" json:"posts"` // 冗余计数，与 Post.CreatorID 保持一致
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

type UserRepository interface {
	Create(u *User) error
	FindByID(id string) (*User, error)
	FindByEmail(email string) (*User, error)
	List() ([]User, error)
	Update(u *User) error
}
