package models

type Address struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	CustomerID uint    `gorm:"not null;index" json:"customerId"`
	Label      string  `gorm:"size:191;not null" json:"label"`
	Street     string  `gorm:"size:191;not null" json:"street"`
	City       string  `gorm:"size:191;not null" json:"city"`
	Entrance   *string `gorm:"size:32" json:"entrance"`
	Floor      *string `gorm:"size:32" json:"floor"`
	Apartment  *string `gorm:"size:32" json:"apartment"`
}
