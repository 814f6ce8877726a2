package entities

const MaxFilenameLength = 255

type MediaType string

const (
	MediaTypeImage    MediaType = "image"
	MediaTypeVideo    MediaType = "video"
	MediaTypeAudio    MediaType = "audio"
	MediaTypeDocument MediaType = "document"
)

func (t MediaType) Valid() bool {
	switch t {
	case MediaTypeImage, MediaTypeVideo, MediaTypeAudio, MediaTypeDocument:
		return true
	}
	return false
}

type Media struct {
	Model
	UserID         string    `gorm:"size:36;not null;index" json:"userId"`
	OriginalName   string    `gorm:"size:255;not null" json:"originalName"`
	Filename       string    `gorm:"size:255;not null" json:"filename"`
	Path           string    `gorm:"size:1024;not null" json:"path"`
	StorageKey     string    `gorm:"size:512;index" json:"-"`
	MimeType       string    `gorm:"size:100;not null" json:"mimeType"`
	Size           int64     `gorm:"not null" json:"size"`
	Type           MediaType `gorm:"size:10;not null;index" json:"type"`
	IsPublic       bool      `gorm:"not null;index" json:"isPublic"`
	IsActive       bool      `gorm:"not null;index" json:"isActive"`
	FavoritesCount int64     `gorm:"not null;default:0;index" json:"favoritesCount"`

	Owner *UserSummary `gorm:"-" json:"owner,omitempty"`
}

func (Media) TableName() string {
	return "media"
}
