package domain

import (
	"encoding/json"
	"time"
)

// PricingMode режим ценообразования для обычных (не bundle) товаров
type PricingMode string

const (
	PricingModeDaily   PricingMode = "DAILY"
	PricingModeSpecial PricingMode = "SPECIAL"
)

func (m PricingMode) Valid() bool {
	return m == PricingModeDaily || m == PricingModeSpecial
}

// Product позиция каталога материалов
type Product struct {
	ID         string    `json:"id"`
	Name       string    `json:"name" validate:"required"`
	Brand      string    `json:"brand" validate:"required"`
	CostPrice  int64     `json:"costPrice" validate:"gte=0"`
	IsActive   bool      `json:"isActive"`
	IsFeatured bool      `json:"isFeatured"`
	Promotion  Promotion `json:"-"`
}

// Bundle возвращает условия акции, если она у товара есть
func (p Product) Bundle() (Bundle, bool) {
	b, ok := p.Promotion.(Bundle)
	return b, ok
}

type productJSON struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Brand      string         `json:"brand"`
	CostPrice  int64          `json:"costPrice"`
	IsActive   bool           `json:"isActive"`
	IsFeatured bool           `json:"isFeatured"`
	Promotion  *promotionJSON `json:"promotion,omitempty"`
}

func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(productJSON{
		ID:         p.ID,
		Name:       p.Name,
		Brand:      p.Brand,
		CostPrice:  p.CostPrice,
		IsActive:   p.IsActive,
		IsFeatured: p.IsFeatured,
		Promotion:  encodePromotion(p.Promotion),
	})
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var raw productJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	promo, err := decodePromotion(raw.Promotion)
	if err != nil {
		return err
	}
	*p = Product{
		ID:         raw.ID,
		Name:       raw.Name,
		Brand:      raw.Brand,
		CostPrice:  raw.CostPrice,
		IsActive:   raw.IsActive,
		IsFeatured: raw.IsFeatured,
		Promotion:  promo,
	}
	return nil
}

// OrderStatus общий статус для заказа и для строки заказа
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusLocked     OrderStatus = "LOCKED"
	OrderStatusPacked     OrderStatus = "PACKED"
	OrderStatusOutOfStock OrderStatus = "OUT_OF_STOCK"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
)

// OrderLineItem строка заказа. Цена и название зафиксированы на момент оформления.
type OrderLineItem struct {
	ProductID    string `json:"productId"`
	ProductName  string `json:"productName"`
	Brand        string `json:"brand"`
	Quantity     int64  `json:"quantity"`
	FreeQuantity int64  `json:"freeQuantity"`
	// BundleQuantity задан только у bundle-строк: число заказанных наборов
	BundleQuantity *int64      `json:"bundleQuantity,omitempty"`
	UnitPrice      int64       `json:"unitPrice"`
	TotalPrice     int64       `json:"totalPrice"`
	Status         OrderStatus `json:"status"`
	Note           string      `json:"note,omitempty"`
}

func (it OrderLineItem) IsBundle() bool { return it.BundleQuantity != nil }

// PhysicalUnits платные + бесплатные единицы
func (it OrderLineItem) PhysicalUnits() int64 { return it.Quantity + it.FreeQuantity }

// Order заявка на материалы; один заказ всегда в одном режиме цены
type Order struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	UserName    string          `json:"userName"`
	CreatedAt   time.Time       `json:"timestamp"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	PricingMode PricingMode     `json:"pricingMode"`
	Status      OrderStatus     `json:"status"`
	Items       []OrderLineItem `json:"items"`
	TotalAmount int64           `json:"totalAmount"`
}

// IsLocked заказ уже взят в работу администратором
func (o Order) IsLocked() bool {
	switch o.Status {
	case OrderStatusLocked, OrderStatusPacked, OrderStatusCompleted:
		return true
	}
	return false
}

// Clone глубокая копия, чтобы мутации не протекали в хранилище
func (o Order) Clone() Order {
	cp := o
	cp.Items = make([]OrderLineItem, len(o.Items))
	for i, it := range o.Items {
		if it.BundleQuantity != nil {
			n := *it.BundleQuantity
			it.BundleQuantity = &n
		}
		cp.Items[i] = it
	}
	return cp
}

// Role роль пользователя
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleDesigner Role = "DESIGNER"
)

type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Announcement единственное глобальное объявление
type Announcement struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	IsActive bool   `json:"isActive"`
}
