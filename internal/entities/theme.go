package entities

type FontSize string

const (
	FontSizeSmall  FontSize = "small"
	FontSizeMedium FontSize = "medium"
	FontSizeLarge  FontSize = "large"
)

func (f FontSize) Valid() bool {
	switch f {
	case FontSizeSmall, FontSizeMedium, FontSizeLarge:
		return true
	}
	return false
}

type UserThemePreference struct {
	Model
	UserID         string              `gorm:"uniqueIndex;size:36;not null" json:"userId"`
	Theme          Theme               `gorm:"size:10;not null" json:"theme"`
	CustomSettings ThemeCustomSettings `gorm:"embedded;embeddedPrefix:custom_" json:"customSettings"`
	IsActive       bool                `gorm:"not null" json:"isActive"`
}

type ThemeCustomSettings struct {
	PrimaryColor    string   `gorm:"size:7" json:"primaryColor"`
	SecondaryColor  string   `gorm:"size:7" json:"secondaryColor"`
	BackgroundColor string   `gorm:"size:7" json:"backgroundColor"`
	TextColor       string   `gorm:"size:7" json:"textColor"`
	FontSize        FontSize `gorm:"size:10" json:"fontSize"`
}

func DefaultThemePreference(userID string) *UserThemePreference {
	return &UserThemePreference{
		UserID: userID,
		Theme:  ThemeAuto,
		CustomSettings: ThemeCustomSettings{
			PrimaryColor:    "#6366f1",
			SecondaryColor:  "#8b5cf6",
			BackgroundColor: "#ffffff",
			TextColor:       "#000000",
			FontSize:        FontSizeMedium,
		},
		IsActive: true,
	}
}
