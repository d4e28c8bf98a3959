package model

import "time"

// User is the identity record behind every session token.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Tokens cascade-delete with the user at the database level.
	Tokens []AccessToken `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}
