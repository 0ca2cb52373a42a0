package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"avodah/internal/rbac"
)

// User is a community member's credential record.
type User struct {
	ID             uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Username       string    `json:"username" gorm:"size:64;uniqueIndex;not null"`
	Email          string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash   string    `json:"-" gorm:"column:password;size:255;not null"` // Never expose in JSON
	Role           string    `json:"role" gorm:"size:64;not null"`
	RoleRank       rbac.Rank `json:"rolePosition" gorm:"column:role_position;not null;index"`
	ProfilePicture string    `json:"profilePicture" gorm:"type:longtext"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// SetRank updates the rank and its label together.
func (u *User) SetRank(r rbac.Rank) {
	u.RoleRank = r
	u.Role = r.Label()
}
