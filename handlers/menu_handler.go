package handlers

import (
	"Restaurant/models"
	"Restaurant/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

// 查詢菜單，每個分類附帶其菜品
func GetMenuHandler(c *gin.Context, db *gorm.DB) {
	categories := []models.Category{}
	err := db.WithContext(c.Request.Context()).
		Preload("Dishes", orderByID).
		Order("id").
		Find(&categories).
		Error
	if err != nil {
		respondError(c, services.Store("無法獲取菜單", err))
		return
	}

	respondOK(c, "成功獲取菜單", categories)
}

// 查詢單一分類的菜品
func GetDishesByCategoryHandler(c *gin.Context, db *gorm.DB) {
	var req struct {
		CategoryID uint `form:"categoryId" binding:"required,gt=0"`
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	dishes := []models.Dish{}
	err := db.WithContext(c.Request.Context()).
		Where("category_id = ?", req.CategoryID).
		Preload("Category").
		Order("id").
		Find(&dishes).
		Error
	if err != nil {
		respondError(c, services.Store("無法獲取菜品", err))
		return
	}

	respondOK(c, "成功獲取菜品", dishes)
}
