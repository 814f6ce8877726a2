package entities

import "time"

// RefreshToken records an issued refresh token by its SHA-256 hash.
// Revoking a token deletes its row.
type RefreshToken struct {
	Model
	TokenHash string    `gorm:"uniqueIndex;size:64;not null"`
	UserID    string    `gorm:"index;size:36;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
}
