package models

// OrderItem 的 Price 為下單當下的單價，之後菜品改價不影響已成立訂單
type OrderItem struct {
	ID       uint  `gorm:"primaryKey" json:"id"`
	OrderID  uint  `gorm:"not null;index" json:"orderId"`
	DishID   uint  `gorm:"not null;index" json:"dishId"`
	Dish     *Dish `gorm:"foreignKey:DishID" json:"dish,omitempty"`
	Quantity int   `gorm:"not null" json:"quantity"`
	Price    Money `gorm:"type:decimal(10,2);not null" json:"price"`
}
