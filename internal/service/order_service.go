package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"requisition/internal/domain"
	"requisition/internal/events"
	"requisition/internal/repository"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "service").Logger()

// OrderService реализует логику заявок: оформление, отмену, правку количества и
// пакетные переходы статусов
type OrderService struct {
	products  repository.ProductRepository
	orders    repository.OrderRepository
	tx        repository.TxManager
	publisher events.Publisher
	now       func() time.Time
}

func NewOrderService(products repository.ProductRepository, orders repository.OrderRepository, tx repository.TxManager, publisher events.Publisher) *OrderService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &OrderService{
		products:  products,
		orders:    orders,
		tx:        tx,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ErrNothingToUpdate ни один заказ не содержит выбранных товаров
var ErrNothingToUpdate = errors.New("nothing to update")

// buildOrders материализует корзину: один заказ на каждый режим цены
func (s *OrderService) buildOrders(ctx context.Context, user domain.User, items []domain.CartItem) ([]domain.Order, error) {
	if len(items) == 0 {
		return nil, domain.NewInvalidArgument(domain.ErrMsgCartEmpty)
	}
	now := s.now()
	modes, groups := domain.PartitionByMode(items)
	out := make([]domain.Order, 0, len(modes))
	for _, mode := range modes {
		lines := make([]domain.OrderLineItem, 0, len(groups[mode]))
		for _, it := range groups[mode] {
			p, err := s.products.GetByID(ctx, it.ProductID)
			if errors.Is(err, repository.ErrNotFound) {
				return nil, domain.NewFailedPreconditionf("%s: %s", domain.ErrMsgProductNotFound, it.ProductID)
			}
			if err != nil {
				return nil, err
			}
			lines = append(lines, domain.MaterializeLine(it, *p))
		}
		out = append(out, domain.Order{
			UserID:      user.ID,
			UserName:    user.Name,
			CreatedAt:   now,
			PricingMode: mode,
			Status:      domain.OrderStatusPending,
			Items:       lines,
			TotalAmount: domain.RecalculateTotal(lines),
		})
	}
	return out, nil
}

// Preview заказы, которые получатся при оформлении, без сохранения
func (s *OrderService) Preview(ctx context.Context, user domain.User, items []domain.CartItem) ([]domain.Order, error) {
	return s.buildOrders(ctx, user, items)
}

// PlaceOrders сохраняет по заказу на режим цены. При ошибке уже созданные заказы удаляются.
func (s *OrderService) PlaceOrders(ctx context.Context, user domain.User, items []domain.CartItem) ([]domain.Order, error) {
	built, err := s.buildOrders(ctx, user, items)
	if err != nil {
		return nil, err
	}
	created := make([]domain.Order, 0, len(built))
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		for i := range built {
			o := built[i]
			if err := s.orders.Create(ctx, &o); err != nil {
				for _, c := range created {
					if derr := s.orders.Delete(ctx, c.ID); derr != nil {
						logger.Error().Err(derr).Str("order_id", c.ID).Msg("rollback created order")
					}
				}
				return err
			}
			created = append(created, o)
		}
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Str("user_id", user.ID).Msg("place orders")
		return nil, err
	}
	for _, o := range created {
		logger.Info().Str("order_id", o.ID).Str("user_id", user.ID).Str("mode", string(o.PricingMode)).Int64("total", o.TotalAmount).Msg("order created")
	}
	s.publish(ctx, events.OrderCreated, created...)
	return created, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	return s.orders.GetByID(ctx, id)
}

// ListAll все заказы, новые первыми
func (s *OrderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx)
}

// ListByUser заказы одного сотрудника, новые первыми
func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	all, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0)
	for _, o := range all {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func ownedBy(o *domain.Order, user domain.User) error {
	if o.UserID != user.ID {
		return domain.NewPermissionDenied(domain.ErrMsgNotOrderOwner)
	}
	return nil
}

// CancelOrder удаляет свой заказ, пока он в статусе PENDING
func (s *OrderService) CancelOrder(ctx context.Context, user domain.User, id string) error {
	if id == "" {
		return ErrInvalidInput
	}
	var deleted *domain.Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := ownedBy(o, user); err != nil {
			return err
		}
		if o.Status != domain.OrderStatusPending {
			return domain.NewFailedPrecondition(domain.ErrMsgOrderNotPending)
		}
		if err := s.orders.Delete(ctx, id); err != nil {
			return err
		}
		deleted = o
		return nil
	})
	if err != nil {
		logger.Warn().Err(err).Str("order_id", id).Str("user_id", user.ID).Msg("cancel rejected")
		return err
	}
	logger.Info().Str("order_id", id).Str("user_id", user.ID).Msg("order cancelled")
	s.publish(ctx, events.OrderDeleted, *deleted)
	return nil
}

// AdjustQuantity меняет количество строки idx; для bundle delta считается в наборах.
// Если строк не осталось, заказ удаляется и возвращается nil.
func (s *OrderService) AdjustQuantity(ctx context.Context, user domain.User, id string, idx int, delta int64) (*domain.Order, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	var (
		updated *domain.Order
		kind    events.Kind
	)
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := ownedBy(o, user); err != nil {
			return err
		}
		empty, err := domain.AdjustLineQuantity(o, idx, delta)
		if err != nil {
			return err
		}
		if empty {
			kind = events.OrderDeleted
			updated = o
			return s.orders.Delete(ctx, id)
		}
		if err := s.orders.Update(ctx, o); err != nil {
			return err
		}
		kind = events.OrderUpdated
		updated = o
		return nil
	})
	if err != nil {
		logger.Warn().Err(err).Str("order_id", id).Int("line", idx).Msg("adjust quantity rejected")
		return nil, err
	}
	s.publish(ctx, kind, *updated)
	if kind == events.OrderDeleted {
		logger.Info().Str("order_id", id).Msg("last line removed, order deleted")
		return nil, nil
	}
	logger.Info().Str("order_id", id).Int("line", idx).Int64("delta", delta).Int64("total", updated.TotalAmount).Msg("quantity adjusted")
	return updated, nil
}

// ApplyOrderAction переводит выбранные заказы целиком; статусы строк не трогаются.
// Пустой выбор ничего не делает.
func (s *OrderService) ApplyOrderAction(ctx context.Context, orderIDs []string, action domain.OrderAction) ([]domain.Order, error) {
	if _, ok := action.Target(); !ok {
		return nil, domain.NewInvalidArgument(domain.ErrMsgUnknownAction)
	}
	if len(orderIDs) == 0 {
		return nil, nil
	}
	ids := toSet(orderIDs)
	updated, err := s.batch(ctx, func(o domain.Order) (domain.Order, bool, error) {
		if _, ok := ids[o.ID]; !ok {
			return o, false, nil
		}
		out, err := domain.ApplyOrderAction(o, action)
		return out, true, err
	})
	if err != nil {
		return nil, err
	}
	logger.Info().Str("action", string(action)).Int("count", len(updated)).Msg("order action applied")
	return updated, nil
}

// ApplyBrandAction меняет статус строк выбранных товаров во всех заказах, где они есть.
// ErrNothingToUpdate, если таких заказов нет.
func (s *OrderService) ApplyBrandAction(ctx context.Context, productIDs []string, action domain.BrandAction) ([]domain.Order, error) {
	if _, ok := action.LineTarget(); !ok {
		return nil, domain.NewInvalidArgument(domain.ErrMsgUnknownAction)
	}
	if len(productIDs) == 0 {
		return nil, nil
	}
	selected := toSet(productIDs)
	updated, err := s.batch(ctx, func(o domain.Order) (domain.Order, bool, error) {
		if !domain.ContainsAnyProduct(o, selected) {
			return o, false, nil
		}
		out, err := domain.ApplyBrandAction(o, selected, action)
		return out, true, err
	})
	if err != nil {
		return nil, err
	}
	if len(updated) == 0 {
		logger.Warn().Str("action", string(action)).Strs("products", productIDs).Msg("brand action matched no orders")
		return nil, ErrNothingToUpdate
	}
	logger.Info().Str("action", string(action)).Int("count", len(updated)).Msg("brand action applied")
	return updated, nil
}

// LockAllPending принимает все заказы, которые в статусе PENDING на момент вызова
func (s *OrderService) LockAllPending(ctx context.Context) (int, error) {
	updated, err := s.batch(ctx, func(o domain.Order) (domain.Order, bool, error) {
		if o.Status != domain.OrderStatusPending {
			return o, false, nil
		}
		out, err := domain.ApplyOrderAction(o, domain.OrderActionAccepted)
		return out, true, err
	})
	if err != nil {
		return 0, err
	}
	logger.Info().Int("count", len(updated)).Msg("pending orders locked")
	return len(updated), nil
}

// batch читает все заказы, применяет fn к подходящим и пишет их одной пачкой.
// Пачка либо применяется целиком, либо ошибка возвращается без повтора.
func (s *OrderService) batch(ctx context.Context, fn func(domain.Order) (domain.Order, bool, error)) ([]domain.Order, error) {
	var updated []domain.Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		all, err := s.orders.List(ctx)
		if err != nil {
			return err
		}
		for _, o := range all {
			out, ok, err := fn(o)
			if err != nil {
				return err
			}
			if ok {
				updated = append(updated, out)
			}
		}
		if len(updated) == 0 {
			return nil
		}
		if err := s.orders.UpdateBatch(ctx, updated); err != nil {
			return fmt.Errorf("batch update of %d orders: %w", len(updated), err)
		}
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Msg("batch update failed")
		return nil, err
	}
	s.publish(ctx, events.OrderUpdated, updated...)
	return updated, nil
}

func (s *OrderService) publish(ctx context.Context, kind events.Kind, orders ...domain.Order) {
	if len(orders) == 0 {
		return
	}
	// событие вторично по отношению к записи в хранилище, ошибка только логируется
	if err := s.publisher.Publish(ctx, kind, orders...); err != nil {
		logger.Error().Err(err).Str("kind", string(kind)).Msg("publish events")
	}
}

func toSet(ids []string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}
