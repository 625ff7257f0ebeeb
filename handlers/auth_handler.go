package handlers

import (
	"Restaurant/jwt"
	"Restaurant/services"

	"github.com/gin-gonic/gin"
)

// 發送驗證碼
func RequestCodeHandler(c *gin.Context, customers *services.CustomerService) {
	var req struct {
		Phone string `json:"phone" binding:"required,min=10,max=32"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := customers.RequestCode(c.Request.Context(), req.Phone); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "驗證碼已發送", gin.H{"success": true})
}

// 驗證手機號碼，成功後回傳顧客ID與Token
func VerifyCodeHandler(c *gin.Context, customers *services.CustomerService, signer *jwt.Signer) {
	var req struct {
		Phone string `json:"phone" binding:"required,min=10,max=32"`
		Code  string `json:"code" binding:"required,min=4"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	customer, err := customers.Verify(c.Request.Context(), req.Phone, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := signer.GenerateToken(customer.ID)
	if err != nil {
		respondError(c, services.Store("無法生成Token", err))
		return
	}

	respondOK(c, "驗證成功", gin.H{
		"customerId": customer.ID,
		"token":      token,
	})
}
