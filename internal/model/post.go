package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is an entry in the community feed.
type Post struct {
	PostID    uuid.UUID `json:"postId" gorm:"type:char(36);primaryKey"`
	Title     string    `json:"title" gorm:"size:255;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	Author    string    `json:"author" gorm:"size:255;not null"`
	AuthorID  string    `json:"authorId" gorm:"size:64;not null;index"`
	Date      time.Time `json:"date"`
	Hearts    int       `json:"hearts" gorm:"not null;default:0"`
	Image     string    `json:"image,omitempty" gorm:"type:longtext"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate fills the id and publication date.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.PostID == uuid.Nil {
		p.PostID = uuid.New()
	}
	if p.Date.IsZero() {
		p.Date = time.Now()
	}
	return nil
}
