package routers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"Restaurant/events"
	"Restaurant/jwt"
	"Restaurant/middleware"
	"Restaurant/models"
	"Restaurant/services"
	"Restaurant/verification"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testAdminSecret = "test-admin-secret"

type testEnv struct {
	db       *gorm.DB
	router   *gin.Engine
	signer   *jwt.Signer
	sender   *verification.MemorySender
	recorder *events.Recorder
}

type envelope struct {
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:routers_%s?mode=memory&cache=shared&_foreign_keys=1", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := models.Seed(db); err != nil {
		t.Fatalf("seed: %v", err)
	}

	log := logrus.New()
	log.Out = io.Discard

	env := &testEnv{
		db:       db,
		signer:   jwt.NewSigner("test-jwt-secret", time.Hour),
		sender:   verification.NewMemorySender(),
		recorder: &events.Recorder{},
	}
	env.router, err = SetupRouters(Dependencies{
		DB:          db,
		Orders:      services.NewOrderService(db, env.recorder, log),
		Customers:   services.NewCustomerService(db, env.sender, log),
		Signer:      env.signer,
		AdminSecret: testAdminSecret,
		UploadsDir:  t.TempDir(),
		Log:         log,
	})
	if err != nil {
		t.Fatalf("SetupRouters: %v", err)
	}
	return env
}

type call struct {
	method string
	path   string
	body   interface{}
	token  string
	admin  string
}

func (e *testEnv) do(t *testing.T, c call) (int, envelope) {
	t.Helper()
	var body io.Reader
	if c.body != nil {
		raw, err := json.Marshal(c.body)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(c.method, c.path, body)
	if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.admin != "" {
		req.Header.Set(middleware.AdminSecretHeader, c.admin)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode %q: %v", c.method, c.path, w.Body.String(), err)
	}
	return w.Code, env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

// login 走完驗證流程並回傳Token
func (e *testEnv) login(t *testing.T, phone string) (uint, string) {
	t.Helper()
	status, env := e.do(t, call{method: http.MethodPost, path: "/rpc/auth.verifyCode", body: gin.H{"phone": phone, "code": "1234"}})
	if status != http.StatusOK {
		t.Fatalf("verifyCode status = %d: %+v", status, env)
	}
	var out struct {
		CustomerID uint   `json:"customerId"`
		Token      string `json:"token"`
	}
	decodeData(t, env, &out)
	return out.CustomerID, out.Token
}

func (e *testEnv) dishID(t *testing.T, name string) uint {
	t.Helper()
	var dish models.Dish
	if err := e.db.Where("name = ?", name).First(&dish).Error; err != nil {
		t.Fatal(err)
	}
	return dish.ID
}

func TestTiers(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.login(t, "79990000001")

	tests := []struct {
		name   string
		call   call
		status int
		code   string
	}{
		{"public without identity", call{method: http.MethodGet, path: "/rpc/menu.list"}, http.StatusOK, ""},
		{"customer without token", call{method: http.MethodGet, path: "/rpc/orders.history"}, http.StatusUnauthorized, "unauthorized"},
		{"customer with garbage token", call{method: http.MethodGet, path: "/rpc/addresses.list", token: "garbage"}, http.StatusUnauthorized, "unauthorized"},
		{"customer with token", call{method: http.MethodGet, path: "/rpc/orders.history", token: token}, http.StatusOK, ""},
		{"admin without secret", call{method: http.MethodGet, path: "/rpc/admin.orders"}, http.StatusForbidden, "forbidden"},
		{"admin with wrong secret", call{method: http.MethodGet, path: "/rpc/admin.orders", admin: "nope"}, http.StatusForbidden, "forbidden"},
		{"admin with customer token only", call{method: http.MethodGet, path: "/rpc/admin.orders", token: token}, http.StatusForbidden, "forbidden"},
		{"admin with secret", call{method: http.MethodGet, path: "/rpc/admin.orders", admin: testAdminSecret}, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := e.do(t, tt.call)
			if status != tt.status {
				t.Fatalf("status = %d, want %d (%+v)", status, tt.status, env)
			}
			if env.Code != tt.code {
				t.Fatalf("code = %q, want %q", env.Code, tt.code)
			}
		})
	}
}

func TestMenu(t *testing.T) {
	e := newTestEnv(t)

	status, env := e.do(t, call{method: http.MethodGet, path: "/rpc/menu.list"})
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	var categories []models.Category
	decodeData(t, env, &categories)
	if len(categories) != 3 {
		t.Fatalf("categories = %d", len(categories))
	}
	if len(categories[0].Dishes) != 1 || categories[0].Dishes[0].Price.String() != "250.00" {
		t.Fatalf("soups = %+v", categories[0].Dishes)
	}

	status, env = e.do(t, call{method: http.MethodGet, path: fmt.Sprintf("/rpc/menu.byCategory?categoryId=%d", categories[1].ID)})
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	var dishes []models.Dish
	decodeData(t, env, &dishes)
	if len(dishes) != 1 || dishes[0].Name != "Caesar" || dishes[0].Category == nil {
		t.Fatalf("dishes = %+v", dishes)
	}

	status, env = e.do(t, call{method: http.MethodGet, path: "/rpc/menu.byCategory"})
	if status != http.StatusBadRequest || env.Code != "validation" {
		t.Fatalf("missing categoryId: status = %d code = %q", status, env.Code)
	}
}

func TestAuth(t *testing.T) {
	e := newTestEnv(t)

	status, env := e.do(t, call{method: http.MethodPost, path: "/rpc/auth.requestCode", body: gin.H{"phone": "79990000001"}})
	if status != http.StatusOK {
		t.Fatalf("requestCode status = %d", status)
	}
	if code, _ := e.sender.LastCode(context.Background(), "79990000001"); code != services.VerificationCode {
		t.Fatalf("sent code = %q", code)
	}

	status, env = e.do(t, call{method: http.MethodPost, path: "/rpc/auth.requestCode", body: gin.H{"phone": "123"}})
	if status != http.StatusBadRequest || env.Code != "validation" {
		t.Fatalf("short phone: status = %d code = %q", status, env.Code)
	}

	status, env = e.do(t, call{method: http.MethodPost, path: "/rpc/auth.verifyCode", body: gin.H{"phone": " 123456789 ", "code": "1234"}})
	if status != http.StatusBadRequest || env.Code != "validation" {
		t.Fatalf("padded short phone: status = %d code = %q", status, env.Code)
	}

	status, env = e.do(t, call{method: http.MethodPost, path: "/rpc/auth.verifyCode", body: gin.H{"phone": "79990000001", "code": "9999"}})
	if status != http.StatusUnauthorized || env.Code != "unauthorized" {
		t.Fatalf("wrong code: status = %d code = %q", status, env.Code)
	}

	first, token := e.login(t, "79990000001")
	second, _ := e.login(t, "79990000001")
	if first == 0 || first != second {
		t.Fatalf("customer ids = %d, %d", first, second)
	}
	id, err := e.signer.VerifyToken(token)
	if err != nil || id != first {
		t.Fatalf("token customer = %d, %v", id, err)
	}
}

func TestAddresses(t *testing.T) {
	e := newTestEnv(t)
	_, alice := e.login(t, "79990000001")
	_, bob := e.login(t, "79990000002")

	status, env := e.do(t, call{method: http.MethodPost, path: "/rpc/addresses.create", token: alice, body: gin.H{
		"label": "Home", "street": "Main st 1", "city": "Kazan", "floor": "3",
	}})
	if status != http.StatusOK {
		t.Fatalf("create status = %d: %+v", status, env)
	}
	var created models.Address
	decodeData(t, env, &created)
	if created.ID == 0 || created.Floor == nil || *created.Floor != "3" {
		t.Fatalf("created = %+v", created)
	}

	status, env = e.do(t, call{method: http.MethodPost, path: "/rpc/addresses.create", token: alice, body: gin.H{
		"label": "Ho", "street": "Main st 1", "city": "Kazan",
	}})
	if status != http.StatusBadRequest {
		t.Fatalf("short label status = %d", status)
	}

	var list []models.Address
	_, env = e.do(t, call{method: http.MethodGet, path: "/rpc/addresses.list", token: alice})
	decodeData(t, env, &list)
	if len(list) != 1 {
		t.Fatalf("alice addresses = %d", len(list))
	}
	_, env = e.do(t, call{method: http.MethodGet, path: "/rpc/addresses.list", token: bob})
	decodeData(t, env, &list)
	if len(list) != 0 {
		t.Fatalf("bob addresses = %d", len(list))
	}
}

func TestCalculateTotal(t *testing.T) {
	e := newTestEnv(t)

	status, env := e.do(t, call{method: http.MethodPost, path: "/rpc/cart.calculateTotal", body: gin.H{"items": []gin.H{
		{"dishId": e.dishID(t, "Borscht"), "quantity": 2},
		{"dishId": 9999, "quantity": 5},
	}}})
	if status != http.StatusOK {
		t.Fatalf("status = %d: %+v", status, env)
	}
	var out struct {
		Total string `json:"total"`
	}
	decodeData(t, env, &out)
	if out.Total != "500.00" {
		t.Fatalf("total = %s", out.Total)
	}

	status, _ = e.do(t, call{method: http.MethodPost, path: "/rpc/cart.calculateTotal", body: gin.H{"items": []gin.H{
		{"dishId": e.dishID(t, "Borscht"), "quantity": 0},
	}}})
	if status != http.StatusBadRequest {
		t.Fatalf("zero quantity status = %d", status)
	}
}

func TestOrders(t *testing.T) {
	e := newTestEnv(t)
	_, alice := e.login(t, "79990000001")
	_, bob := e.login(t, "79990000002")

	_, env := e.do(t, call{method: http.MethodPost, path: "/rpc/addresses.create", token: bob, body: gin.H{
		"label": "Work", "street": "Second st 2", "city": "Kazan",
	}})
	var bobAddress models.Address
	decodeData(t, env, &bobAddress)

	items := []gin.H{
		{"dishId": e.dishID(t, "Borscht"), "quantity": 2},
		{"dishId": e.dishID(t, "Caesar"), "quantity": 1},
	}

	status, env := e.do(t, call{method: http.MethodPost, path: "/rpc/orders.create", token: alice, body: gin.H{"items": items}})
	if status != http.StatusOK {
		t.Fatalf("create status = %d: %+v", status, env)
	}
	var placed struct {
		OrderID uint   `json:"orderId"`
		Total   string `json:"total"`
	}
	decodeData(t, env, &placed)
	if placed.OrderID == 0 || placed.Total != "820.00" {
		t.Fatalf("placed = %+v", placed)
	}

	tests := []struct {
		name   string
		body   gin.H
		status int
	}{
		{"unknown dish", gin.H{"items": []gin.H{{"dishId": 9999, "quantity": 1}}}, http.StatusNotFound},
		{"foreign address", gin.H{"addressId": bobAddress.ID, "items": items}, http.StatusNotFound},
		{"empty items", gin.H{"items": []gin.H{}}, http.StatusBadRequest},
		{"zero quantity", gin.H{"items": []gin.H{{"dishId": e.dishID(t, "Borscht"), "quantity": 0}}}, http.StatusBadRequest},
		{"quantity above limit", gin.H{"items": []gin.H{{"dishId": e.dishID(t, "Borscht"), "quantity": services.MaxQuantity + 1}}}, http.StatusBadRequest},
		{"merged quantity above limit", gin.H{"items": []gin.H{
			{"dishId": e.dishID(t, "Borscht"), "quantity": services.MaxQuantity},
			{"dishId": e.dishID(t, "Borscht"), "quantity": 1},
		}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := e.do(t, call{method: http.MethodPost, path: "/rpc/orders.create", token: alice, body: tt.body})
			if status != tt.status {
				t.Fatalf("status = %d, want %d (%+v)", status, tt.status, env)
			}
		})
	}

	var count int64
	e.db.Model(&models.Order{}).Count(&count)
	if count != 1 {
		t.Fatalf("orders = %d, want 1", count)
	}

	var history []models.Order
	_, env = e.do(t, call{method: http.MethodGet, path: "/rpc/orders.history", token: alice})
	decodeData(t, env, &history)
	if len(history) != 1 || len(history[0].Items) != 2 || history[0].Items[0].Dish == nil {
		t.Fatalf("history = %+v", history)
	}
	_, env = e.do(t, call{method: http.MethodGet, path: "/rpc/orders.history", token: bob})
	decodeData(t, env, &history)
	if len(history) != 0 {
		t.Fatalf("bob history = %d", len(history))
	}

	if got := e.recorder.Events(); len(got) != 1 || got[0].RoutingKey != events.RoutingOrderCreated {
		t.Fatalf("events = %+v", got)
	}
}

func TestAdminMenu(t *testing.T) {
	e := newTestEnv(t)

	status, env := e.do(t, call{method: http.MethodPost, path: "/rpc/admin.createCategory", admin: testAdminSecret, body: gin.H{"name": "Desserts"}})
	if status != http.StatusOK {
		t.Fatalf("createCategory status = %d: %+v", status, env)
	}
	var category models.Category
	decodeData(t, env, &category)

	status, env = e.do(t, call{method: http.MethodPost, path: "/rpc/admin.dishes", admin: testAdminSecret, body: gin.H{
		"name": "Napoleon", "description": "Layered cake", "price": "180.50", "categoryId": category.ID,
	}})
	if status != http.StatusOK {
		t.Fatalf("createDish status = %d: %+v", status, env)
	}
	var created struct {
		ID uint `json:"id"`
	}
	decodeData(t, env, &created)

	var dish models.Dish
	if err := e.db.First(&dish, created.ID).Error; err != nil {
		t.Fatal(err)
	}
	if !dish.IsAvailable || dish.Price.String() != "180.50" {
		t.Fatalf("dish = %+v", dish)
	}

	createTests := []struct {
		name   string
		body   gin.H
		status int
	}{
		{"zero price", gin.H{"name": "Tea", "description": "Black tea", "price": "0", "categoryId": category.ID}, http.StatusBadRequest},
		{"negative price", gin.H{"name": "Tea", "description": "Black tea", "price": "-1.00", "categoryId": category.ID}, http.StatusBadRequest},
		{"bad image url", gin.H{"name": "Tea", "description": "Black tea", "price": "50.00", "categoryId": category.ID, "imageUrl": "not a url"}, http.StatusBadRequest},
		{"missing category", gin.H{"name": "Tea", "description": "Black tea", "price": "50.00", "categoryId": 9999}, http.StatusNotFound},
	}
	for _, tt := range createTests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := e.do(t, call{method: http.MethodPost, path: "/rpc/admin.dishes", admin: testAdminSecret, body: tt.body})
			if status != tt.status {
				t.Fatalf("status = %d, want %d (%+v)", status, tt.status, env)
			}
		})
	}

	status, env = e.do(t, call{method: http.MethodPost, path: "/rpc/admin.updateDish", admin: testAdminSecret, body: gin.H{
		"id": created.ID, "price": "200.00", "isAvailable": false,
	}})
	if status != http.StatusOK {
		t.Fatalf("updateDish status = %d: %+v", status, env)
	}
	if err := e.db.First(&dish, created.ID).Error; err != nil {
		t.Fatal(err)
	}
	if dish.IsAvailable || dish.Price.String() != "200.00" || dish.Name != "Napoleon" {
		t.Fatalf("updated dish = %+v", dish)
	}

	status, _ = e.do(t, call{method: http.MethodPost, path: "/rpc/admin.updateDish", admin: testAdminSecret, body: gin.H{"id": 9999, "name": "Ghost"}})
	if status != http.StatusNotFound {
		t.Fatalf("missing dish status = %d", status)
	}
}

func TestAdminOrders(t *testing.T) {
	e := newTestEnv(t)
	_, alice := e.login(t, "79990000001")

	_, env := e.do(t, call{method: http.MethodPost, path: "/rpc/orders.create", token: alice, body: gin.H{"items": []gin.H{
		{"dishId": e.dishID(t, "Caesar"), "quantity": 1},
	}}})
	var placed struct {
		OrderID uint `json:"orderId"`
	}
	decodeData(t, env, &placed)

	status, env := e.do(t, call{method: http.MethodPost, path: "/rpc/admin.updateOrderStatus", admin: testAdminSecret, body: gin.H{
		"orderId": placed.OrderID, "status": "confirmed",
	}})
	if status != http.StatusOK {
		t.Fatalf("updateOrderStatus status = %d: %+v", status, env)
	}

	status, _ = e.do(t, call{method: http.MethodPost, path: "/rpc/admin.updateOrderStatus", admin: testAdminSecret, body: gin.H{
		"orderId": placed.OrderID, "status": "eaten",
	}})
	if status != http.StatusBadRequest {
		t.Fatalf("invalid status: %d", status)
	}

	status, _ = e.do(t, call{method: http.MethodPost, path: "/rpc/admin.updateOrderStatus", admin: testAdminSecret, body: gin.H{
		"orderId": 9999, "status": "delivered",
	}})
	if status != http.StatusNotFound {
		t.Fatalf("missing order: %d", status)
	}

	var orders []models.Order
	_, env = e.do(t, call{method: http.MethodGet, path: "/rpc/admin.orders", admin: testAdminSecret})
	decodeData(t, env, &orders)
	if len(orders) != 1 || orders[0].Status != models.OrderStatusConfirmed || orders[0].Customer == nil {
		t.Fatalf("orders = %+v", orders)
	}
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Fatalf("health = %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get(middleware.RequestIDHeader) == "" {
		t.Fatal("missing request id header")
	}
}

func TestProceduresUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range Procedures(Dependencies{}) {
		if seen[p.Name] {
			t.Fatalf("duplicate procedure %s", p.Name)
		}
		seen[p.Name] = true
	}
	if len(seen) != 15 {
		t.Fatalf("procedures = %d", len(seen))
	}
}
