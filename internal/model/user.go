package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SocialMedia struct {
	Twitter   string `gorm:"size:50" json:"twitter"`
	Instagram string `gorm:"size:50" json:"instagram"`
}

type User struct {
	ID           uuid.UUID   `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
	Username     string      `gorm:"size:30;not null;uniqueIndex" json:"username"`
	Email        string      `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string      `gorm:"not null" json:"-"`
	Bio          string      `gorm:"size:500" json:"bio"`
	Location     string      `gorm:"size:100" json:"location"`
	Website      string      `gorm:"size:200" json:"website"`
	SocialMedia  SocialMedia `gorm:"embedded;embeddedPrefix:social_" json:"socialMedia"`
	Avatar       Image       `gorm:"embedded;embeddedPrefix:avatar_" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) HasAvatar() bool {
	return !u.Avatar.IsZero()
}

// Owner returns the summary shown next to a user's public recipes.
func (u *User) Owner() *Owner {
	return &Owner{ID: u.ID, Username: u.Username, HasAvatar: u.HasAvatar()}
}

func (u User) MarshalJSON() ([]byte, error) {
	type user User
	return json.Marshal(struct {
		user
		HasAvatar bool `json:"hasAvatar"`
	}{user(u), u.HasAvatar()})
}

// UserStats counts a user's recipes.
type UserStats struct {
	PublicRecipes int64 `json:"publicRecipes"`
	TotalRecipes  int64 `json:"totalRecipes"`
}

// Profile is a user together with their recipe counts.
type Profile struct {
	User  *User     `json:"user"`
	Stats UserStats `json:"stats"`
}
