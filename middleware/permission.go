package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Tier 呼叫程序所需的最低身分
type Tier int

const (
	TierPublic Tier = iota
	TierCustomer
	TierAdmin
)

func (t Tier) String() string {
	switch t {
	case TierCustomer:
		return "customer"
	case TierAdmin:
		return "admin"
	default:
		return "public"
	}
}

// RequireTier 檢查身分是否足夠，不足則中止請求
func RequireTier(tier Tier) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch tier {
		case TierCustomer:
			if _, ok := CustomerID(c); !ok {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"message": "尚未登入",
					"code":    "unauthorized",
					"error":   "authentication required",
				})
				return
			}
		case TierAdmin:
			if !IsAdmin(c) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"message": "沒有權限",
					"code":    "forbidden",
					"error":   "admin access required",
				})
				return
			}
		}

		c.Next()
	}
}
