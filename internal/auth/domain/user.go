package domain

import "time"

// User is an account created on first Google sign-in.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	GoogleID  string    `json:"-" gorm:"uniqueIndex;not null"` // never exposed
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"not null"`
	Picture   string    `json:"picture,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type RefreshToken struct {
	Token     string    `json:"token" gorm:"primaryKey"`
	UserID    string    `json:"userId" gorm:"index;not null"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"index"`
}

// GoogleProfile is the subset of a Google account used to create or refresh a User.
type GoogleProfile struct {
	ID            string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}
