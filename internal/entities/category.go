package entities

const (
	MaxCategoryNameLength        = 50
	MaxCategoryDescriptionLength = 200
	MaxCategoryIconLength        = 50
	DefaultCategoryColor         = "#6366f1"
)

type Category struct {
	Model
	Name        string `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Description string `gorm:"size:200" json:"description,omitempty"`
	Color       string `gorm:"size:7;not null" json:"color"`
	Icon        string `gorm:"size:50" json:"icon,omitempty"`
	IsActive    bool   `gorm:"not null;index" json:"isActive"`
	Order       int    `gorm:"column:sort_order;not null;default:0;index" json:"order"`
	QuoteCount  int64  `gorm:"not null;default:0" json:"quoteCount"`
}

// CategorySummary is embedded in quote responses.
type CategorySummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon,omitempty"`
}

func (c *Category) Summary() CategorySummary {
	return CategorySummary{ID: c.ID, Name: c.Name, Color: c.Color, Icon: c.Icon}
}
