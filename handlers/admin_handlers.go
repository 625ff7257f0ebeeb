package handlers

import (
	"context"
	"errors"

	"Restaurant/models"
	"Restaurant/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func categoryExists(ctx context.Context, db *gorm.DB, id uint) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return services.Store("無法查詢分類", err)
	}
	if count == 0 {
		return services.ErrCategoryNotFound
	}
	return nil
}

// 新增分類
func CreateCategoryHandler(c *gin.Context, db *gorm.DB) {
	var req struct {
		Name        string  `json:"name" binding:"required,min=2,max=191"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	category := models.Category{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := db.WithContext(c.Request.Context()).Create(&category).Error; err != nil {
		respondError(c, services.Store("新增分類失敗", err))
		return
	}

	respondOK(c, "成功新增分類", category)
}

// 新增菜品
func CreateDishHandler(c *gin.Context, db *gorm.DB) {
	var req struct {
		Name        string       `json:"name" binding:"required,min=2,max=191"`
		Description string       `json:"description" binding:"required,min=2"`
		Price       models.Money `json:"price" binding:"required,gt=0"`
		CategoryID  uint         `json:"categoryId" binding:"required,gt=0"`
		ImageURL    *string      `json:"imageUrl" binding:"omitempty,url"`
		IsAvailable *bool        `json:"isAvailable"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if !req.Price.IsPositive() {
		respondError(c, services.Validation("價格必須大於0"))
		return
	}

	ctx := c.Request.Context()
	if err := categoryExists(ctx, db, req.CategoryID); err != nil {
		respondError(c, err)
		return
	}

	//未指定時預設為可供應
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	dish := models.Dish{
		Name:        req.Name,
		Description: &req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		IsAvailable: available,
		CategoryID:  req.CategoryID,
	}
	if err := db.WithContext(ctx).Create(&dish).Error; err != nil {
		respondError(c, services.Store("新增菜品失敗", err))
		return
	}

	respondOK(c, "成功新增菜品", gin.H{"id": dish.ID})
}

// 修改菜品，只更新有帶的欄位
func UpdateDishHandler(c *gin.Context, db *gorm.DB) {
	var req struct {
		ID          uint          `json:"id" binding:"required,gt=0"`
		Name        *string       `json:"name" binding:"omitempty,min=2,max=191"`
		Description *string       `json:"description" binding:"omitempty,min=2"`
		Price       *models.Money `json:"price"`
		CategoryID  *uint         `json:"categoryId" binding:"omitempty,gt=0"`
		ImageURL    *string       `json:"imageUrl" binding:"omitempty,url"`
		IsAvailable *bool         `json:"isAvailable"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.Price != nil && !req.Price.IsPositive() {
		respondError(c, services.Validation("價格必須大於0"))
		return
	}

	ctx := c.Request.Context()
	var dish models.Dish
	err := db.WithContext(ctx).Select("id").First(&dish, req.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, services.ErrDishNotFound)
		return
	}
	if err != nil {
		respondError(c, services.Store("無法查詢菜品", err))
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.CategoryID != nil {
		if err := categoryExists(ctx, db, *req.CategoryID); err != nil {
			respondError(c, err)
			return
		}
		updates["category_id"] = *req.CategoryID
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.IsAvailable != nil {
		updates["is_available"] = *req.IsAvailable
	}

	if len(updates) > 0 {
		if err := db.WithContext(ctx).Model(&dish).Updates(updates).Error; err != nil {
			respondError(c, services.Store("修改菜品失敗", err))
			return
		}
	}

	respondOK(c, "成功修改菜品", gin.H{"success": true})
}

// 查詢所有訂單
func GetAllOrdersHandler(c *gin.Context, orders *services.OrderService) {
	all, err := orders.All(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "成功查詢所有訂單", all)
}

// 修改訂單狀態
func UpdateOrderStatusHandler(c *gin.Context, orders *services.OrderService) {
	var req struct {
		OrderID uint               `json:"orderId" binding:"required,gt=0"`
		Status  models.OrderStatus `json:"status" binding:"required,orderstatus"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := orders.UpdateStatus(c.Request.Context(), req.OrderID, req.Status); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "成功修改訂單狀態", gin.H{"success": true})
}
