package state

import (
	"Restaurant/client"
	"Restaurant/models"
)

type CartItem struct {
	DishID   uint         `json:"dishId"`
	Name     string       `json:"name"`
	Price    models.Money `json:"price"`
	Quantity int          `json:"quantity"`
}

// Cart 購物車狀態，所有操作都回傳新的Cart，不修改原值
type Cart struct {
	Items []CartItem `json:"items"`
}

// update 複製所有品項後套用fn，fn回傳false的品項會被移除
func (c Cart) update(fn func(item *CartItem) bool) Cart {
	items := make([]CartItem, 0, len(c.Items))
	for _, item := range c.Items {
		if fn(&item) {
			items = append(items, item)
		}
	}
	return Cart{Items: items}
}

func (c Cart) index(dishID uint) int {
	for i, item := range c.Items {
		if item.DishID == dishID {
			return i
		}
	}
	return -1
}

// AddItem 已在購物車的菜品數量加一，否則新增一筆數量為一的品項
func (c Cart) AddItem(dishID uint, name string, price models.Money) Cart {
	if c.index(dishID) >= 0 {
		return c.Increment(dishID)
	}
	next := c.update(func(*CartItem) bool { return true })
	next.Items = append(next.Items, CartItem{DishID: dishID, Name: name, Price: price, Quantity: 1})
	return next
}

func (c Cart) RemoveItem(dishID uint) Cart {
	return c.update(func(item *CartItem) bool {
		return item.DishID != dishID
	})
}

func (c Cart) Increment(dishID uint) Cart {
	return c.update(func(item *CartItem) bool {
		if item.DishID == dishID {
			item.Quantity++
		}
		return true
	})
}

// Decrement 數量降到0時移除該品項
func (c Cart) Decrement(dishID uint) Cart {
	return c.update(func(item *CartItem) bool {
		if item.DishID == dishID {
			item.Quantity--
		}
		return item.Quantity > 0
	})
}

func (c Cart) Clear() Cart {
	return Cart{Items: []CartItem{}}
}

// Count 購物車內的總份數
func (c Cart) Count() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// Total 以加入購物車時的價格估算，僅供顯示，實際金額以伺服器計算為準
func (c Cart) Total() models.Money {
	total := models.Money{}
	for _, item := range c.Items {
		total = total.Add(item.Price.Times(item.Quantity))
	}
	return total
}

// Lines 轉成送出訂單或估算金額所需的品項
func (c Cart) Lines() []client.Item {
	lines := make([]client.Item, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, client.Item{DishID: item.DishID, Quantity: item.Quantity})
	}
	return lines
}
