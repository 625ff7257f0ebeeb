package handlers

import (
	"errors"
	"net/http"

	"Restaurant/middleware"
	"Restaurant/services"

	"github.com/gin-gonic/gin"
)

var kindStatus = map[services.Kind]int{
	services.KindValidation:   http.StatusBadRequest,
	services.KindNotFound:     http.StatusNotFound,
	services.KindUnauthorized: http.StatusUnauthorized,
	services.KindForbidden:    http.StatusForbidden,
	services.KindStore:        http.StatusInternalServerError,
}

func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data":    data,
	})
}

// respondError 依錯誤種類決定HTTP狀態碼，非services.Error一律當作資料庫錯誤
func respondError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	message := "伺服器錯誤"
	var e *services.Error
	if errors.As(err, &e) {
		message = e.Message
	}

	_ = c.Error(err)
	c.JSON(kindStatus[kind], gin.H{
		"message": message,
		"code":    kind,
		"error":   err.Error(),
	})
}

func respondBindError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{
		"message": "綁定請求資料錯誤",
		"code":    services.KindValidation,
		"error":   err.Error(),
	})
}

// customerID 只會在通過TierCustomer檢查後呼叫
func customerID(c *gin.Context) (uint, bool) {
	id, ok := middleware.CustomerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得顧客ID",
			"code":    services.KindStore,
		})
		return 0, false
	}
	return id, true
}
