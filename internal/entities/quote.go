package entities

import (
	"time"

	"gorm.io/datatypes"
)

const (
	MaxQuoteTextLength   = 500
	MaxQuoteAuthorLength = 100
	MaxTagLength         = 30
)

type QuoteContentType string

const (
	QuoteContentText  QuoteContentType = "text"
	QuoteContentImage QuoteContentType = "image"
	QuoteContentVideo QuoteContentType = "video"
	QuoteContentAudio QuoteContentType = "audio"
)

func (t QuoteContentType) Valid() bool {
	switch t {
	case QuoteContentText, QuoteContentImage, QuoteContentVideo, QuoteContentAudio:
		return true
	}
	return false
}

type Quote struct {
	Model
	Text           string           `gorm:"type:text;not null" json:"text"`
	Author         string           `gorm:"size:100;not null;index" json:"author"`
	CategoryID     string           `gorm:"size:36;not null;index" json:"categoryId"`
	UserID         string           `gorm:"size:36;index" json:"userId,omitempty"`
	MediaID        string           `gorm:"size:36" json:"mediaId,omitempty"`
	ContentType    QuoteContentType `gorm:"size:10;not null" json:"contentType"`
	IsPublic       bool             `gorm:"not null;index" json:"isPublic"`
	Tags           datatypes.JSON   `json:"tags"` // JSON array of strings
	Views          int64            `gorm:"not null;default:0" json:"views"`
	FavoritesCount int64            `gorm:"not null;default:0" json:"favoritesCount"`
	LikesCount     int64            `gorm:"not null;default:0" json:"likesCount"`
	IsActive       bool             `gorm:"not null;index" json:"isActive"`

	// Populated per request, never stored
	Category   *CategorySummary `gorm:"-" json:"category,omitempty"`
	IsFavorite bool             `gorm:"-" json:"isFavorite"`
}

// QuoteLike is one user's like on a quote. Unliking deletes the row, so a
// user appears at most once per quote.
type QuoteLike struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	QuoteID   string    `gorm:"size:36;not null;uniqueIndex:idx_quote_likes_pair" json:"quoteId"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_quote_likes_pair" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
