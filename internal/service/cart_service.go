package service

import (
	"context"
	"errors"
	"sync"

	"requisition/internal/cart"
	"requisition/internal/domain"
	"requisition/internal/repository"
)

// CartView снимок корзины для клиента
type CartView struct {
	Items []domain.CartItem `json:"items"`
	Total int64             `json:"total"`
}

// userCart корзина одного пользователя под своей блокировкой
type userCart struct {
	mu   sync.Mutex
	cart *cart.Cart
}

// CartService держит корзины сессий в памяти процесса, по одной на пользователя.
// mu защищает только карту; операции над корзиной сериализуются по пользователю.
type CartService struct {
	mu       sync.Mutex
	carts    map[string]*userCart
	products repository.ProductRepository
	orders   *OrderService
}

func NewCartService(products repository.ProductRepository, orders *OrderService) *CartService {
	return &CartService{carts: make(map[string]*userCart), products: products, orders: orders}
}

// lock находит корзину пользователя и захватывает её; вызывающий обязан вызвать Unlock
func (s *CartService) lock(userID string) *userCart {
	s.mu.Lock()
	uc, ok := s.carts[userID]
	if !ok {
		uc = &userCart{cart: cart.New()}
		s.carts[userID] = uc
	}
	s.mu.Unlock()
	uc.mu.Lock()
	return uc
}

func view(c *cart.Cart) CartView {
	return CartView{Items: c.Lines(), Total: c.Total()}
}

func (s *CartService) activeProduct(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, domain.NewInvalidArgument(domain.ErrMsgProductIDRequired)
	}
	p, err := s.products.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.NewNotFound(domain.ErrMsgProductNotFound)
	}
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, domain.NewFailedPrecondition(domain.ErrMsgProductInactive)
	}
	return p, nil
}

// Add кладёт в корзину одну единицу товара (для bundle один набор)
func (s *CartService) Add(ctx context.Context, user domain.User, productID string, mode domain.PricingMode) (CartView, error) {
	if !mode.Valid() {
		return CartView{}, domain.NewInvalidArgument(domain.ErrMsgInvalidMode)
	}
	p, err := s.activeProduct(ctx, productID)
	if err != nil {
		return CartView{}, err
	}
	uc := s.lock(user.ID)
	defer uc.mu.Unlock()
	if _, err := uc.cart.Add(*p, mode); err != nil {
		return CartView{}, err
	}
	return view(uc.cart), nil
}

// Adjust меняет количество строки на delta; уменьшение работает и для снятого с продажи товара
func (s *CartService) Adjust(ctx context.Context, user domain.User, productID string, mode domain.PricingMode, delta int64) (CartView, error) {
	if !mode.Valid() {
		return CartView{}, domain.NewInvalidArgument(domain.ErrMsgInvalidMode)
	}
	if delta == 0 {
		return CartView{}, domain.NewInvalidArgument(domain.ErrMsgDeltaZero)
	}
	p := &domain.Product{ID: productID}
	if delta > 0 {
		var err error
		if p, err = s.activeProduct(ctx, productID); err != nil {
			return CartView{}, err
		}
	}
	uc := s.lock(user.ID)
	defer uc.mu.Unlock()
	if _, _, err := uc.cart.Adjust(*p, mode, delta); err != nil {
		return CartView{}, err
	}
	return view(uc.cart), nil
}

func (s *CartService) View(user domain.User) CartView {
	uc := s.lock(user.ID)
	defer uc.mu.Unlock()
	return view(uc.cart)
}

func (s *CartService) Clear(user domain.User) {
	uc := s.lock(user.ID)
	defer uc.mu.Unlock()
	uc.cart.Clear()
}

// Preview заказы, которые создаст Checkout, без сохранения
func (s *CartService) Preview(ctx context.Context, user domain.User) ([]domain.Order, error) {
	uc := s.lock(user.ID)
	lines := uc.cart.Lines()
	uc.mu.Unlock()
	return s.orders.Preview(ctx, user, lines)
}

// Checkout оформляет корзину и очищает её только при успехе.
// На время оформления блокируется только корзина этого пользователя.
func (s *CartService) Checkout(ctx context.Context, user domain.User) ([]domain.Order, error) {
	uc := s.lock(user.ID)
	defer uc.mu.Unlock()
	created, err := s.orders.PlaceOrders(ctx, user, uc.cart.Lines())
	if err != nil {
		return nil, err
	}
	uc.cart.Clear()
	return created, nil
}
