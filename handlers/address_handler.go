package handlers

import (
	"Restaurant/models"
	"Restaurant/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 查詢自己的地址
func GetAddressListHandler(c *gin.Context, db *gorm.DB) {
	id, ok := customerID(c)
	if !ok {
		return
	}

	addresses := []models.Address{}
	err := db.WithContext(c.Request.Context()).
		Where("customer_id = ?", id).
		Order("id").
		Find(&addresses).
		Error
	if err != nil {
		respondError(c, services.Store("無法獲取地址列表", err))
		return
	}

	respondOK(c, "成功獲取地址列表", addresses)
}

// 新增地址
func CreateAddressHandler(c *gin.Context, db *gorm.DB) {
	id, ok := customerID(c)
	if !ok {
		return
	}

	var req struct {
		Label     string  `json:"label" binding:"required,min=3,max=191"`
		Street    string  `json:"street" binding:"required,min=3,max=191"`
		City      string  `json:"city" binding:"required,min=2,max=191"`
		Entrance  *string `json:"entrance" binding:"omitempty,max=32"`
		Floor     *string `json:"floor" binding:"omitempty,max=32"`
		Apartment *string `json:"apartment" binding:"omitempty,max=32"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	address := models.Address{
		CustomerID: id,
		Label:      req.Label,
		Street:     req.Street,
		City:       req.City,
		Entrance:   req.Entrance,
		Floor:      req.Floor,
		Apartment:  req.Apartment,
	}
	if err := db.WithContext(c.Request.Context()).Create(&address).Error; err != nil {
		respondError(c, services.Store("新增地址失敗", err))
		return
	}

	respondOK(c, "成功新增地址", address)
}
