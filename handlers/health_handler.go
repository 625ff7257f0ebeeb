package handlers

import (
	"net/http"

	"Restaurant/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 檢查資料庫連線
func HealthHandler(c *gin.Context, db *gorm.DB) {
	sqlDB, err := db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		respondError(c, services.Store("資料庫無法連線", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func IndexHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "restaurant backend",
	})
}
