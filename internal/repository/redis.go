package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"requisition/internal/domain"
)

const (
	redisProductsKey     = "requisition:products"
	redisOrdersKey       = "requisition:orders"
	redisAnnouncementKey = "requisition:announcement"
	redisOrdersChannel   = "requisition:orders:changed"
)

// RedisStore удалённое документное хранилище: документы в hash-ах в виде JSON,
// об изменениях заказов сообщает через PUBLISH, чтобы все клиенты видели последний список.
type RedisStore struct {
	rdb *redis.Client
	// mu сериализует read-modify-write в пределах процесса; между процессами last writer wins
	mu sync.Mutex
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// maxWatchRetries сколько раз повторять проверку и запись, если ключ заказов изменился под WATCH
const maxWatchRetries = 5

// RedisOrders реализация OrderRepository поверх того же клиента
type RedisOrders struct {
	store *RedisStore
	// afterCheck вызывается между проверкой наличия и MULTI/EXEC
	afterCheck func()
}

func NewRedisOrders(store *RedisStore) *RedisOrders { return &RedisOrders{store: store} }

var (
	_ ProductRepository      = (*RedisStore)(nil)
	_ AnnouncementRepository = (*RedisStore)(nil)
	_ TxManager              = (*RedisStore)(nil)
	_ OrderRepository        = (*RedisOrders)(nil)
	_ OrderFeed              = (*RedisOrders)(nil)
)

func (s *RedisStore) getJSON(ctx context.Context, key, field string, v interface{}) error {
	raw, err := s.rdb.HGet(ctx, key, field).Result()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), v)
}

func (s *RedisStore) exists(ctx context.Context, key, field string) error {
	ok, err := s.rdb.HExists(ctx, key, field).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Create(ctx context.Context, p *domain.Product) error {
	if p.ID == "" {
		p.ID = newID("prod")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.rdb.HSet(ctx, redisProductsKey, p.ID, data).Err()
}

func (s *RedisStore) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	if err := s.getJSON(ctx, redisProductsKey, id, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *RedisStore) Update(ctx context.Context, p *domain.Product) error {
	if err := s.exists(ctx, redisProductsKey, p.ID); err != nil {
		return err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.rdb.HSet(ctx, redisProductsKey, p.ID, data).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.rdb.HDel(ctx, redisProductsKey, id).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	all, err := s.rdb.HGetAll(ctx, redisProductsKey).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(all))
	for id, raw := range all {
		var p domain.Product
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("decode product %s: %w", id, err)
		}
		if matchProduct(p, f) {
			out = append(out, p)
		}
	}
	sortProducts(out)
	return out, nil
}

func (s *RedisStore) GetAnnouncement(ctx context.Context) (*domain.Announcement, error) {
	raw, err := s.rdb.Get(ctx, redisAnnouncementKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var a domain.Announcement
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *RedisStore) SaveAnnouncement(ctx context.Context, a domain.Announcement) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, redisAnnouncementKey, data, 0).Err()
}

// WithTransaction сериализует вызовы fn внутри процесса
func (s *RedisStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if isTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, true))
}

func (ro *RedisOrders) Create(ctx context.Context, o *domain.Order) error {
	if o.ID == "" {
		o.ID = newID("ord")
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	o.UpdatedAt = o.CreatedAt
	return ro.write(ctx, []domain.Order{*o})
}

func (ro *RedisOrders) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	if err := ro.store.getJSON(ctx, redisOrdersKey, id, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (ro *RedisOrders) List(ctx context.Context) ([]domain.Order, error) {
	all, err := ro.store.rdb.HGetAll(ctx, redisOrdersKey).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(all))
	for id, raw := range all {
		var o domain.Order
		if err := json.Unmarshal([]byte(raw), &o); err != nil {
			return nil, fmt.Errorf("decode order %s: %w", id, err)
		}
		out = append(out, o)
	}
	sortNewestFirst(out)
	return out, nil
}

func (ro *RedisOrders) Update(ctx context.Context, o *domain.Order) error {
	o.UpdatedAt = time.Now().UTC()
	return ro.writeExisting(ctx, []domain.Order{*o})
}

// UpdateBatch проверяет наличие всех заказов и пишет их одной MULTI/EXEC под WATCH
func (ro *RedisOrders) UpdateBatch(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	now := time.Now().UTC()
	batch := make([]domain.Order, len(orders))
	for i, o := range orders {
		o.UpdatedAt = now
		batch[i] = o
	}
	return ro.writeExisting(ctx, batch)
}

func encodeOrders(orders []domain.Order) ([]string, []interface{}, error) {
	ids := make([]string, 0, len(orders))
	values := make([]interface{}, 0, 2*len(orders))
	for _, o := range orders {
		data, err := json.Marshal(o)
		if err != nil {
			return nil, nil, err
		}
		ids = append(ids, o.ID)
		values = append(values, o.ID, data)
	}
	return ids, values, nil
}

func (ro *RedisOrders) write(ctx context.Context, orders []domain.Order) error {
	_, values, err := encodeOrders(orders)
	if err != nil {
		return err
	}
	_, err = ro.store.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, redisOrdersKey, values...)
		pipe.Publish(ctx, redisOrdersChannel, len(orders))
		return nil
	})
	return err
}

// watched выполняет fn под WATCH hash-а заказов. Если между проверкой и EXEC
// hash изменил другой клиент, EXEC отменяется и fn повторяется.
func (ro *RedisOrders) watched(ctx context.Context, fn func(tx *redis.Tx) error) error {
	for i := 0; i < maxWatchRetries; i++ {
		err := ro.store.rdb.Watch(ctx, fn, redisOrdersKey)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		logger.Debug().Int("attempt", i+1).Msg("orders changed under watch, retrying")
	}
	return fmt.Errorf("orders write: %w after %d attempts", redis.TxFailedErr, maxWatchRetries)
}

func (ro *RedisOrders) checked() {
	if ro.afterCheck != nil {
		ro.afterCheck()
	}
}

// writeExisting перезаписывает заказы, только если каждый из них ещё хранится.
// Удалённый параллельно заказ не воскрешается.
func (ro *RedisOrders) writeExisting(ctx context.Context, orders []domain.Order) error {
	ids, values, err := encodeOrders(orders)
	if err != nil {
		return err
	}
	return ro.watched(ctx, func(tx *redis.Tx) error {
		found, err := tx.HMGet(ctx, redisOrdersKey, ids...).Result()
		if err != nil {
			return err
		}
		for _, v := range found {
			if v == nil {
				return ErrNotFound
			}
		}
		ro.checked()
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, redisOrdersKey, values...)
			pipe.Publish(ctx, redisOrdersChannel, len(orders))
			return nil
		})
		return err
	})
}

// Delete удаляет заказ и оповещает подписчиков; об отсутствующем заказе не оповещает
func (ro *RedisOrders) Delete(ctx context.Context, id string) error {
	return ro.watched(ctx, func(tx *redis.Tx) error {
		ok, err := tx.HExists(ctx, redisOrdersKey, id).Result()
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		ro.checked()
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HDel(ctx, redisOrdersKey, id)
			pipe.Publish(ctx, redisOrdersChannel, 1)
			return nil
		})
		return err
	})
}

// Subscribe подписывается на канал изменений и на каждое уведомление перечитывает
// полный список. Первый снимок отдаётся сразу после подтверждения подписки.
func (ro *RedisOrders) Subscribe(ctx context.Context) (<-chan []domain.Order, error) {
	pubsub := ro.store.rdb.Subscribe(ctx, redisOrdersChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", redisOrdersChannel, err)
	}
	initial, err := ro.List(ctx)
	if err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	b := NewBroadcaster()
	out := b.Subscribe(ctx, initial)
	go func() {
		defer pubsub.Close()
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				orders, err := ro.List(ctx)
				if err != nil {
					if ctx.Err() == nil {
						logger.Error().Err(err).Msg("reload orders after notification")
					}
					continue
				}
				b.Publish(orders)
			}
		}
	}()
	return out, nil
}
