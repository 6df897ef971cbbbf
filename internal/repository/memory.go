package repository

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"requisition/internal/domain"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "repository").Logger()

// MemoryStore объединённое in-memory хранилище каталога, заказов и объявления
type MemoryStore struct {
	mu           sync.RWMutex
	productsByID map[string]domain.Product
	ordersByID   map[string]domain.Order
	announcement *domain.Announcement
	feed         *Broadcaster
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		productsByID: make(map[string]domain.Product),
		ordersByID:   make(map[string]domain.Order),
		feed:         NewBroadcaster(),
	}
}

// transaction-aware locking helpers
type txKey struct{}

func isTx(ctx context.Context) bool {
	v := ctx.Value(txKey{})
	if v == nil {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RLock()
	}
}
func (m *MemoryStore) runlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RUnlock()
	}
}
func (m *MemoryStore) wlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Lock()
	}
}
func (m *MemoryStore) wunlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Unlock()
	}
}

// Ensure interfaces
var (
	_ ProductRepository      = (*MemoryStore)(nil)
	_ AnnouncementRepository = (*MemoryStore)(nil)
)

// ProductRepository implementation
func (m *MemoryStore) Create(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if p.ID == "" {
		p.ID = newID("prod")
	}
	m.productsByID[p.ID] = *p
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	p, ok := m.productsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (m *MemoryStore) Update(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.productsByID[p.ID]; !ok {
		return ErrNotFound
	}
	m.productsByID[p.ID] = *p
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.productsByID[id]; !ok {
		return ErrNotFound
	}
	delete(m.productsByID, id)
	return nil
}

func (m *MemoryStore) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make([]domain.Product, 0)
	for _, p := range m.productsByID {
		if !matchProduct(p, f) {
			continue
		}
		out = append(out, p)
	}
	sortProducts(out)
	return out, nil
}

func (m *MemoryStore) GetAnnouncement(ctx context.Context) (*domain.Announcement, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	if m.announcement == nil {
		return nil, ErrNotFound
	}
	cp := *m.announcement
	return &cp, nil
}

func (m *MemoryStore) SaveAnnouncement(ctx context.Context, a domain.Announcement) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	m.announcement = &a
	return nil
}

// OrderRepository implementation on wrapper type
type MemoryOrders struct{ store *MemoryStore }

func NewMemoryOrders(store *MemoryStore) *MemoryOrders { return &MemoryOrders{store: store} }

var (
	_ OrderRepository = (*MemoryOrders)(nil)
	_ OrderFeed       = (*MemoryOrders)(nil)
)

func (mo *MemoryOrders) Create(ctx context.Context, o *domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	if o.ID == "" {
		o.ID = newID("ord")
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	o.UpdatedAt = o.CreatedAt
	mo.store.ordersByID[o.ID] = o.Clone()
	mo.notify()
	return nil
}

func (mo *MemoryOrders) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	o, ok := mo.store.ordersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := o.Clone()
	return &cp, nil
}

func (mo *MemoryOrders) List(ctx context.Context) ([]domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	return mo.snapshot(), nil
}

func (mo *MemoryOrders) Update(ctx context.Context, o *domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	if _, ok := mo.store.ordersByID[o.ID]; !ok {
		return ErrNotFound
	}
	o.UpdatedAt = time.Now().UTC()
	mo.store.ordersByID[o.ID] = o.Clone()
	mo.notify()
	return nil
}

func (mo *MemoryOrders) UpdateBatch(ctx context.Context, orders []domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	// сначала проверяем все, чтобы не применить пачку частично
	for _, o := range orders {
		if _, ok := mo.store.ordersByID[o.ID]; !ok {
			return ErrNotFound
		}
	}
	now := time.Now().UTC()
	for _, o := range orders {
		o.UpdatedAt = now
		mo.store.ordersByID[o.ID] = o.Clone()
	}
	mo.notify()
	return nil
}

func (mo *MemoryOrders) Delete(ctx context.Context, id string) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	if _, ok := mo.store.ordersByID[id]; !ok {
		return ErrNotFound
	}
	delete(mo.store.ordersByID, id)
	mo.notify()
	return nil
}

// Subscribe сразу отдаёт текущий список, затем каждый новый после изменений
func (mo *MemoryOrders) Subscribe(ctx context.Context) (<-chan []domain.Order, error) {
	mo.store.mu.RLock()
	defer mo.store.mu.RUnlock()
	return mo.store.feed.Subscribe(ctx, mo.snapshot()), nil
}

// snapshot вызывается под блокировкой
func (mo *MemoryOrders) snapshot() []domain.Order {
	out := make([]domain.Order, 0, len(mo.store.ordersByID))
	for _, o := range mo.store.ordersByID {
		out = append(out, o.Clone())
	}
	sortNewestFirst(out)
	return out
}

func (mo *MemoryOrders) notify() {
	mo.store.feed.Publish(mo.snapshot())
}

// Tx manager using write lock to emulate transaction boundary
type MemoryTx struct{ store *MemoryStore }

func NewMemoryTx(store *MemoryStore) *MemoryTx { return &MemoryTx{store: store} }

func (tx *MemoryTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if isTx(ctx) {
		return fn(ctx)
	}
	// Для in-memory используем блокировку записи и помечаем контекст, чтобы репозитории пропускали внутренние локи
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	ctx = context.WithValue(ctx, txKey{}, true)
	return fn(ctx)
}
