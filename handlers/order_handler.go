package handlers

import (
	"Restaurant/services"

	"github.com/gin-gonic/gin"
)

// 送出訂單
func CreateOrderHandler(c *gin.Context, orders *services.OrderService) {
	id, ok := customerID(c)
	if !ok {
		return
	}

	var req struct {
		AddressID *uint                `json:"addressId" binding:"omitempty,gt=0"`
		Items     []services.ItemInput `json:"items" binding:"dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	placed, err := orders.PlaceOrder(c.Request.Context(), id, req.AddressID, req.Items)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "訂單已送出", placed)
}

// 查詢自己的訂單，新的在前
func GetOrderHistoryHandler(c *gin.Context, orders *services.OrderService) {
	id, ok := customerID(c)
	if !ok {
		return
	}

	history, err := orders.History(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "成功查詢訂單列表", history)
}
