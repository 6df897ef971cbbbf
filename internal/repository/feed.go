package repository

import (
	"context"
	"reflect"
	"sync"
	"time"

	"requisition/internal/domain"
)

// Broadcaster рассылает подписчикам последний снимок списка заказов.
// Медленный подписчик получает только самый свежий снимок.
type Broadcaster struct {
	mu   sync.Mutex
	next int
	subs map[int]chan []domain.Order
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan []domain.Order)}
}

// Subscribe канал закрывается после отмены ctx. initial, если не nil, приходит первым.
func (b *Broadcaster) Subscribe(ctx context.Context, initial []domain.Order) <-chan []domain.Order {
	ch := make(chan []domain.Order, 1)
	if initial != nil {
		ch <- initial
	}
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		close(ch)
		b.mu.Unlock()
	}()
	return ch
}

func (b *Broadcaster) Publish(orders []domain.Order) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		offerLatest(ch, orders)
	}
}

func offerLatest(ch chan []domain.Order, orders []domain.Order) {
	select {
	case ch <- orders:
		return
	default:
	}
	// выбрасываем устаревший снимок
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- orders:
	default:
	}
}

// Poll запасной вариант без push-уведомлений: опрашивает репозиторий с фиксированным
// интервалом и отдаёт список, когда он изменился. Первый снимок отдаётся сразу.
func Poll(ctx context.Context, repo OrderRepository, interval time.Duration) <-chan []domain.Order {
	ch := make(chan []domain.Order, 1)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var last []domain.Order
		first := true
		for {
			orders, err := repo.List(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Error().Err(err).Msg("poll orders")
			} else if first || !reflect.DeepEqual(orders, last) {
				first = false
				last = orders
				offerLatest(ch, orders)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return ch
}

// PollFeed OrderFeed поверх Poll для хранилищ без уведомлений
type PollFeed struct {
	Repo     OrderRepository
	Interval time.Duration
}

func (p PollFeed) Subscribe(ctx context.Context) (<-chan []domain.Order, error) {
	return Poll(ctx, p.Repo, p.Interval), nil
}
