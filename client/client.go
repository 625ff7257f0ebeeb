package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"Restaurant/models"
)

const adminSecretHeader = "X-Admin-Secret"

// APIError 伺服器回傳的失敗結果
type APIError struct {
	Status  int
	Code    string
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d %s): %s", e.Message, e.Status, e.Code, e.Detail)
}

// Client 呼叫 /rpc/<name> 程序，Token與管理者密鑰有設定時自動帶上
type Client struct {
	baseURL     string
	httpClient  *http.Client
	token       string
	adminSecret string
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// WithToken 回傳帶有顧客Token的副本
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// WithAdminSecret 回傳帶有管理者密鑰的副本
func (c *Client) WithAdminSecret(secret string) *Client {
	cp := *c
	cp.adminSecret = secret
	return &cp
}

type envelope struct {
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) query(ctx context.Context, name string, params url.Values, out interface{}) error {
	u := c.baseURL + "/rpc/" + name
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) mutate(ctx context.Context, name string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s input: %w", name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rpc/"+name, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.adminSecret != "" {
		req.Header.Set(adminSecretHeader, c.adminSecret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &APIError{Status: resp.StatusCode, Message: "無法解析回應", Detail: string(raw)}
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Message, Detail: env.Error}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}
	return nil
}

type Item struct {
	DishID   uint `json:"dishId"`
	Quantity int  `json:"quantity"`
}

type NewAddress struct {
	Label     string  `json:"label"`
	Street    string  `json:"street"`
	City      string  `json:"city"`
	Entrance  *string `json:"entrance,omitempty"`
	Floor     *string `json:"floor,omitempty"`
	Apartment *string `json:"apartment,omitempty"`
}

type NewDish struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Price       models.Money `json:"price"`
	CategoryID  uint         `json:"categoryId"`
	ImageURL    *string      `json:"imageUrl,omitempty"`
	IsAvailable *bool        `json:"isAvailable,omitempty"`
}

// DishUpdate 只送出非nil的欄位
type DishUpdate struct {
	ID          uint          `json:"id"`
	Name        *string       `json:"name,omitempty"`
	Description *string       `json:"description,omitempty"`
	Price       *models.Money `json:"price,omitempty"`
	CategoryID  *uint         `json:"categoryId,omitempty"`
	ImageURL    *string       `json:"imageUrl,omitempty"`
	IsAvailable *bool         `json:"isAvailable,omitempty"`
}

type Session struct {
	CustomerID uint   `json:"customerId"`
	Token      string `json:"token"`
}

type PlacedOrder struct {
	OrderID uint         `json:"orderId"`
	Total   models.Money `json:"total"`
}

type success struct {
	Success bool `json:"success"`
}

func (c *Client) Menu(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := c.query(ctx, "menu.list", nil, &out)
	return out, err
}

func (c *Client) DishesByCategory(ctx context.Context, categoryID uint) ([]models.Dish, error) {
	var out []models.Dish
	params := url.Values{"categoryId": {strconv.FormatUint(uint64(categoryID), 10)}}
	err := c.query(ctx, "menu.byCategory", params, &out)
	return out, err
}

func (c *Client) RequestCode(ctx context.Context, phone string) error {
	return c.mutate(ctx, "auth.requestCode", map[string]string{"phone": phone}, &success{})
}

func (c *Client) VerifyCode(ctx context.Context, phone, code string) (Session, error) {
	var out Session
	err := c.mutate(ctx, "auth.verifyCode", map[string]string{"phone": phone, "code": code}, &out)
	return out, err
}

func (c *Client) Addresses(ctx context.Context) ([]models.Address, error) {
	var out []models.Address
	err := c.query(ctx, "addresses.list", nil, &out)
	return out, err
}

func (c *Client) CreateAddress(ctx context.Context, in NewAddress) (models.Address, error) {
	var out models.Address
	err := c.mutate(ctx, "addresses.create", in, &out)
	return out, err
}

func (c *Client) CalculateTotal(ctx context.Context, items []Item) (models.Money, error) {
	var out struct {
		Total models.Money `json:"total"`
	}
	err := c.mutate(ctx, "cart.calculateTotal", map[string]interface{}{"items": items}, &out)
	return out.Total, err
}

func (c *Client) CreateOrder(ctx context.Context, addressID *uint, items []Item) (PlacedOrder, error) {
	var out PlacedOrder
	in := struct {
		AddressID *uint  `json:"addressId,omitempty"`
		Items     []Item `json:"items"`
	}{AddressID: addressID, Items: items}
	err := c.mutate(ctx, "orders.create", in, &out)
	return out, err
}

func (c *Client) OrderHistory(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	err := c.query(ctx, "orders.history", nil, &out)
	return out, err
}

func (c *Client) CreateCategory(ctx context.Context, name string, description *string) (models.Category, error) {
	var out models.Category
	in := struct {
		Name        string  `json:"name"`
		Description *string `json:"description,omitempty"`
	}{Name: name, Description: description}
	err := c.mutate(ctx, "admin.createCategory", in, &out)
	return out, err
}

func (c *Client) CreateDish(ctx context.Context, in NewDish) (uint, error) {
	var out struct {
		ID uint `json:"id"`
	}
	err := c.mutate(ctx, "admin.dishes", in, &out)
	return out.ID, err
}

func (c *Client) UpdateDish(ctx context.Context, in DishUpdate) error {
	return c.mutate(ctx, "admin.updateDish", in, &success{})
}

func (c *Client) AllOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	err := c.query(ctx, "admin.orders", nil, &out)
	return out, err
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID uint, status models.OrderStatus) error {
	in := struct {
		OrderID uint               `json:"orderId"`
		Status  models.OrderStatus `json:"status"`
	}{OrderID: orderID, Status: status}
	return c.mutate(ctx, "admin.updateOrderStatus", in, &success{})
}
