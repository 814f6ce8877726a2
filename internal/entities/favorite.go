package entities

import "time"

type ContentType string

const (
	ContentTypeQuote    ContentType = "quote"
	ContentTypeImage    ContentType = "image"
	ContentTypeVideo    ContentType = "video"
	ContentTypeAudio    ContentType = "audio"
	ContentTypeDocument ContentType = "document"
)

func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeQuote, ContentTypeImage, ContentTypeVideo, ContentTypeAudio, ContentTypeDocument:
		return true
	}
	return false
}

// Favorite joins a user to a favorited target. Rows are never deleted:
// unfavoriting flips IsActive, and the partial unique index allows at most
// one active row per (user, target).
type Favorite struct {
	Model
	UserID      string      `gorm:"size:36;not null;uniqueIndex:idx_favorites_active_pair,where:is_active = 1;index:idx_favorites_user_time,priority:1" json:"userId"`
	TargetID    string      `gorm:"size:36;not null;uniqueIndex:idx_favorites_active_pair,where:is_active = 1;index" json:"targetId"`
	ContentType ContentType `gorm:"size:10;not null" json:"contentType"`
	IsActive    bool        `gorm:"not null;index" json:"isActive"`
	FavoritedAt time.Time   `gorm:"not null;index:idx_favorites_user_time,priority:2" json:"favoritedAt"`

	Media *Media `gorm:"-" json:"media,omitempty"`
	Quote *Quote `gorm:"-" json:"quote,omitempty"`
}
