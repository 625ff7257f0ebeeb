package services

import (
	"context"
	"errors"

	"Restaurant/events"
	"Restaurant/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MaxQuantity 單一菜品合併後的最大份數
const MaxQuantity = 10000

type ItemInput struct {
	DishID   uint `json:"dishId" binding:"required,gt=0"`
	Quantity int  `json:"quantity" binding:"required,min=1,max=10000"`
}

type PlacedOrder struct {
	OrderID uint         `json:"orderId"`
	Total   models.Money `json:"total"`
}

type OrderService struct {
	db     *gorm.DB
	events events.Publisher
	log    *logrus.Logger
}

func NewOrderService(db *gorm.DB, publisher events.Publisher, log *logrus.Logger) *OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &OrderService{db: db, events: publisher, log: log}
}

// line 為合併重複菜品後的一行
type line struct {
	dishID   uint
	quantity int
}

// mergeItems 驗證數量並合併同一道菜，保留第一次出現的順序
func mergeItems(items []ItemInput) ([]line, error) {
	lines := make([]line, 0, len(items))
	index := make(map[uint]int, len(items))
	for _, item := range items {
		if item.DishID == 0 {
			return nil, ErrInvalidDishID
		}
		if item.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		if item.Quantity > MaxQuantity {
			return nil, ErrQuantityTooLarge
		}
		if i, ok := index[item.DishID]; ok {
			//兩者皆不超過MaxQuantity，相加不會溢位
			if lines[i].quantity+item.Quantity > MaxQuantity {
				return nil, ErrQuantityTooLarge
			}
			lines[i].quantity += item.Quantity
			continue
		}
		index[item.DishID] = len(lines)
		lines = append(lines, line{dishID: item.DishID, quantity: item.Quantity})
	}
	return lines, nil
}

func dishIDs(lines []line) []uint {
	ids := make([]uint, len(lines))
	for i, l := range lines {
		ids[i] = l.dishID
	}
	return ids
}

func (s *OrderService) availableDishes(ctx context.Context, ids []uint) (map[uint]models.Dish, error) {
	var dishes []models.Dish
	err := s.db.WithContext(ctx).
		Where("id IN ? AND is_available = ?", ids, true).
		Find(&dishes).
		Error
	if err != nil {
		return nil, Store("failed to load dishes", err)
	}

	byID := make(map[uint]models.Dish, len(dishes))
	for _, dish := range dishes {
		byID[dish.ID] = dish
	}
	return byID, nil
}

// EstimateTotal 以目前價格估算購物車總額，找不到的菜品直接略過
func (s *OrderService) EstimateTotal(ctx context.Context, items []ItemInput) (models.Money, error) {
	lines, err := mergeItems(items)
	if err != nil {
		return models.Money{}, err
	}
	total := models.Money{}
	if len(lines) == 0 {
		return total, nil
	}

	dishes, err := s.availableDishes(ctx, dishIDs(lines))
	if err != nil {
		return models.Money{}, err
	}
	for _, l := range lines {
		dish, ok := dishes[l.dishID]
		if !ok {
			continue
		}
		total = total.Add(dish.Price.Times(l.quantity))
	}
	return total, nil
}

// PlaceOrder 驗證菜品與地址後，在同一個交易內寫入訂單與所有明細
func (s *OrderService) PlaceOrder(ctx context.Context, customerID uint, addressID *uint, items []ItemInput) (PlacedOrder, error) {
	lines, err := mergeItems(items)
	if err != nil {
		return PlacedOrder{}, err
	}
	if len(lines) == 0 {
		return PlacedOrder{}, ErrEmptyOrder
	}

	//一次查詢所有菜品，數量不符代表有菜品不存在或已下架
	dishes, err := s.availableDishes(ctx, dishIDs(lines))
	if err != nil {
		return PlacedOrder{}, err
	}
	if len(dishes) < len(lines) {
		return PlacedOrder{}, ErrDishUnavailable
	}

	//以剛查到的價格計算總額，明細記錄同一份價格
	total := models.Money{}
	orderItems := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		price := dishes[l.dishID].Price
		total = total.Add(price.Times(l.quantity))
		orderItems = append(orderItems, models.OrderItem{
			DishID:   l.dishID,
			Quantity: l.quantity,
			Price:    price,
		})
	}

	order := models.Order{
		CustomerID: customerID,
		AddressID:  addressID,
		Status:     models.OrderStatusPending,
		Total:      total,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if addressID != nil {
			var address models.Address
			err := tx.
				Select("id").
				Where("id = ? AND customer_id = ?", *addressID, customerID).
				First(&address).
				Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAddressNotOwned
			}
			if err != nil {
				return Store("failed to check address", err)
			}
		}

		if err := tx.Omit("Items").Create(&order).Error; err != nil {
			return Store("failed to create order", err)
		}

		for i := range orderItems {
			orderItems[i].OrderID = order.ID
		}
		if err := tx.Create(&orderItems).Error; err != nil {
			return Store("failed to create order items", err)
		}
		return nil
	})
	if err != nil {
		var e *Error
		if !errors.As(err, &e) {
			err = Store("failed to commit order", err)
		}
		return PlacedOrder{}, err
	}

	s.publish(ctx, events.RoutingOrderCreated, events.OrderCreated{
		OrderID:    order.ID,
		CustomerID: customerID,
		AddressID:  addressID,
		Total:      total,
		ItemCount:  len(orderItems),
		CreatedAt:  order.CreatedAt,
	})

	return PlacedOrder{OrderID: order.ID, Total: total}, nil
}

// History 回傳顧客自己的訂單，新的在前
func (s *OrderService) History(ctx context.Context, customerID uint) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Dish").
		Preload("Address").
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).
		Error
	if err != nil {
		return nil, Store("failed to load order history", err)
	}
	return orders, nil
}

// All 給管理者查看所有訂單
func (s *OrderService) All(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Dish").
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).
		Error
	if err != nil {
		return nil, Store("failed to load orders", err)
	}
	return orders, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, status models.OrderStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	db := s.db.WithContext(ctx)
	var order models.Order
	err := db.Select("id").First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return Store("failed to load order", err)
	}

	if err := db.Model(&order).Update("status", status).Error; err != nil {
		return Store("failed to update order status", err)
	}

	s.publish(ctx, events.StatusRoutingKey(status), events.OrderStatusChanged{OrderID: orderID, Status: status})
	return nil
}

func (s *OrderService) publish(ctx context.Context, routingKey string, payload interface{}) {
	if err := s.events.Publish(ctx, routingKey, payload); err != nil {
		s.log.WithError(err).WithField("routing_key", routingKey).Warn("無法發送訂單事件")
	}
}
