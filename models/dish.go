package models

type Dish struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:191;not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	Price       Money     `gorm:"type:decimal(10,2);not null" json:"price"`
	ImageURL    *string   `gorm:"column:image_url;size:512" json:"imageUrl"`
	IsAvailable bool      `gorm:"not null" json:"isAvailable"`
	CategoryID  uint      `gorm:"not null;index" json:"categoryId"`
	Category    *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
