package routers

import (
	"net/http"

	"Restaurant/handlers"
	"Restaurant/jwt"
	"Restaurant/middleware"
	"Restaurant/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Dependencies 由main建立後注入所有程序
type Dependencies struct {
	DB          *gorm.DB
	Orders      *services.OrderService
	Customers   *services.CustomerService
	Signer      *jwt.Signer
	AdminSecret string
	UploadsDir  string
	Log         *logrus.Logger
}

// Procedure 對應一個 /rpc/<Name> 端點
type Procedure struct {
	Name    string
	Method  string
	Tier    middleware.Tier
	Handler gin.HandlerFunc
}

// Procedures 列出所有程序及其所需身分
func Procedures(deps Dependencies) []Procedure {
	db := deps.DB
	return []Procedure{
		//查詢菜單
		{"menu.list", http.MethodGet, middleware.TierPublic, func(c *gin.Context) {
			handlers.GetMenuHandler(c, db)
		}},
		//查詢分類菜品
		{"menu.byCategory", http.MethodGet, middleware.TierPublic, func(c *gin.Context) {
			handlers.GetDishesByCategoryHandler(c, db)
		}},
		//發送驗證碼
		{"auth.requestCode", http.MethodPost, middleware.TierPublic, func(c *gin.Context) {
			handlers.RequestCodeHandler(c, deps.Customers)
		}},
		//驗證並登入
		{"auth.verifyCode", http.MethodPost, middleware.TierPublic, func(c *gin.Context) {
			handlers.VerifyCodeHandler(c, deps.Customers, deps.Signer)
		}},
		//估算購物車金額
		{"cart.calculateTotal", http.MethodPost, middleware.TierPublic, func(c *gin.Context) {
			handlers.CalculateTotalHandler(c, deps.Orders)
		}},

		////需要登入
		{"addresses.list", http.MethodGet, middleware.TierCustomer, func(c *gin.Context) {
			handlers.GetAddressListHandler(c, db)
		}},
		{"addresses.create", http.MethodPost, middleware.TierCustomer, func(c *gin.Context) {
			handlers.CreateAddressHandler(c, db)
		}},
		{"orders.create", http.MethodPost, middleware.TierCustomer, func(c *gin.Context) {
			handlers.CreateOrderHandler(c, deps.Orders)
		}},
		{"orders.history", http.MethodGet, middleware.TierCustomer, func(c *gin.Context) {
			handlers.GetOrderHistoryHandler(c, deps.Orders)
		}},

		////需要admin身分
		{"admin.createCategory", http.MethodPost, middleware.TierAdmin, func(c *gin.Context) {
			handlers.CreateCategoryHandler(c, db)
		}},
		{"admin.dishes", http.MethodPost, middleware.TierAdmin, func(c *gin.Context) {
			handlers.CreateDishHandler(c, db)
		}},
		{"admin.updateDish", http.MethodPost, middleware.TierAdmin, func(c *gin.Context) {
			handlers.UpdateDishHandler(c, db)
		}},
		{"admin.uploadImage", http.MethodPost, middleware.TierAdmin, func(c *gin.Context) {
			handlers.UploadImageHandler(c, deps.UploadsDir)
		}},
		{"admin.orders", http.MethodGet, middleware.TierAdmin, func(c *gin.Context) {
			handlers.GetAllOrdersHandler(c, deps.Orders)
		}},
		{"admin.updateOrderStatus", http.MethodPost, middleware.TierAdmin, func(c *gin.Context) {
			handlers.UpdateOrderStatusHandler(c, deps.Orders)
		}},
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+middleware.AdminSecretHeader)
		c.Writer.Header().Set("Access-Control-Expose-Headers", middleware.RequestIDHeader)
		c.Next()
	}
}

func SetupRouters(deps Dependencies) (*gin.Engine, error) {
	handlers.RegisterValidators()

	//建立Gin路由器
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(deps.Log), cors())
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	//設定菜品圖片靜態資源路徑
	if deps.UploadsDir != "" {
		router.Static("/uploads", deps.UploadsDir)
	}

	router.OPTIONS("/*path", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.GET("/", handlers.IndexHandler)
	router.GET("/health", func(c *gin.Context) {
		handlers.HealthHandler(c, deps.DB)
	})

	//解析身分後，每個程序再依其Tier檢查
	rpc := router.Group("/rpc")
	rpc.Use(middleware.AuthMiddleware(deps.Signer, deps.AdminSecret, deps.Log))
	for _, p := range Procedures(deps) {
		rpc.Handle(p.Method, "/"+p.Name, middleware.RequireTier(p.Tier), p.Handler)
	}

	return router, nil
}
