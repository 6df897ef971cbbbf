package repository

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"

	"requisition/internal/domain"
)

// ErrNotFound возвращается, когда сущность не найдена
var ErrNotFound = errors.New("not found")

// ProductFilter параметры фильтрации каталога
type ProductFilter struct {
	NameSubstring string
	Brand         string
	ActiveOnly    bool
}

// ProductRepository интерфейс репозитория товаров
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f ProductFilter) ([]domain.Product, error)
}

// OrderRepository интерфейс репозитория заказов. Update перезаписывает документ целиком.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	Update(ctx context.Context, o *domain.Order) error
	// UpdateBatch применяет все заказы или ни одного
	UpdateBatch(ctx context.Context, orders []domain.Order) error
	Delete(ctx context.Context, id string) error
}

// OrderFeed отдаёт полный список заказов при каждом изменении
type OrderFeed interface {
	Subscribe(ctx context.Context) (<-chan []domain.Order, error)
}

// AnnouncementRepository единственное глобальное объявление
type AnnouncementRepository interface {
	GetAnnouncement(ctx context.Context) (*domain.Announcement, error)
	SaveAnnouncement(ctx context.Context, a domain.Announcement) error
}

// TxManager абстракция транзакции: сериализует read-modify-write внутри процесса.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

func newID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// helper: case-insensitive contains
func containsIgnoreCase(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func matchProduct(p domain.Product, f ProductFilter) bool {
	if f.ActiveOnly && !p.IsActive {
		return false
	}
	if f.Brand != "" && p.Brand != f.Brand {
		return false
	}
	return containsIgnoreCase(p.Name, f.NameSubstring)
}

// sortNewestFirst новые заказы первыми
func sortNewestFirst(orders []domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
}

func sortProducts(products []domain.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].ID < products[j].ID
	})
}
