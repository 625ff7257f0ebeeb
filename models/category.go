package models

type Category struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:191;not null" json:"name"`
	Description *string `gorm:"type:text" json:"description"`
	Dishes      []Dish  `gorm:"foreignKey:CategoryID" json:"dishes,omitempty"`
}
