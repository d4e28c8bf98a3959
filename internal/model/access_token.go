package model

import "time"

// AccessToken is a persisted session token. The plaintext handed to the client
// is "<id>|<secret>"; only the SHA-256 hash of the secret is stored, so a
// leaked table cannot be replayed.
type AccessToken struct {
	ID         string     `json:"id" gorm:"primaryKey;size:64"`
	UserID     uint       `json:"user_id" gorm:"index;not null"`
	TokenHash  string     `json:"-" gorm:"size:64;not null"`
	Name       string     `json:"name" gorm:"size:255;default:'api'"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}
