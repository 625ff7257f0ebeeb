package middleware

import (
	"crypto/subtle"
	"strings"

	"Restaurant/jwt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	AdminSecretHeader = "X-Admin-Secret"

	customerIDKey = "CustomerID"
	isAdminKey    = "IsAdmin"
)

// AuthMiddleware 解析顧客Token與管理者密鑰，只記錄身分不中止請求
func AuthMiddleware(signer *jwt.Signer, adminSecret string, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token != "" {
			//如Token不合法或過期則視為未登入
			customerID, err := signer.VerifyToken(token)
			if err != nil {
				log.WithError(err).WithField("request_id", RequestID(c)).Debug("無法驗證Token")
			} else {
				c.Set(customerIDKey, customerID)
			}
		}

		secret := c.GetHeader(AdminSecretHeader)
		if secret != "" && subtle.ConstantTimeCompare([]byte(secret), []byte(adminSecret)) == 1 {
			c.Set(isAdminKey, true)
		}

		c.Next()
	}
}

// CustomerID 取得已驗證的顧客ID
func CustomerID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(customerIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func IsAdmin(c *gin.Context) bool {
	return c.GetBool(isAdminKey)
}
