package models

type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Phone     string    `gorm:"size:32;uniqueIndex;not null" json:"phone"`
	Name      *string   `gorm:"size:191" json:"name"`
	Addresses []Address `gorm:"foreignKey:CustomerID" json:"-"`
	Orders    []Order   `gorm:"foreignKey:CustomerID" json:"-"`
}
