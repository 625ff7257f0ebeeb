package handlers

import (
	"Restaurant/services"

	"github.com/gin-gonic/gin"
)

// 估算購物車金額，找不到的菜品不計入
func CalculateTotalHandler(c *gin.Context, orders *services.OrderService) {
	var req struct {
		Items []services.ItemInput `json:"items" binding:"dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	total, err := orders.EstimateTotal(c.Request.Context(), req.Items)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "成功計算金額", gin.H{"total": total})
}
