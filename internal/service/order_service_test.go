package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"requisition/internal/domain"
	"requisition/internal/events"
	"requisition/internal/repository"
)

type recordedEvent struct {
	kind events.Kind
	ids  []string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, kind events.Kind, orders ...domain.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	ev := recordedEvent{kind: kind}
	for _, o := range orders {
		ev.ids = append(ev.ids, o.ID)
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type fixture struct {
	products *ProductService
	orders   *OrderService
	carts    *CartService
	repo     *repository.MemoryOrders
	pub      *recordingPublisher
}

var (
	alice = domain.User{ID: "alice", Name: "Alice", Role: domain.RoleDesigner}
	bob   = domain.User{ID: "bob", Name: "Bob", Role: domain.RoleDesigner}
)

func setup(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	ordersRepo := repository.NewMemoryOrders(store)
	tx := repository.NewMemoryTx(store)
	pub := &recordingPublisher{}
	ps := NewProductService(store)
	os := NewOrderService(store, ordersRepo, tx, pub)
	return &fixture{
		products: ps,
		orders:   os,
		carts:    NewCartService(store, os),
		repo:     ordersRepo,
		pub:      pub,
	}
}

func (f *fixture) product(t *testing.T, p domain.Product) domain.Product {
	t.Helper()
	p.IsActive = true
	created, err := f.products.Create(context.Background(), p)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return *created
}

func (f *fixture) bundle(t *testing.T) domain.Product {
	return f.product(t, domain.Product{Name: "Dye", Brand: "Wella", CostPrice: 230, Promotion: domain.Bundle{Buy: 2, Get: 1}})
}

func (f *fixture) plain(t *testing.T, name string, cost int64) domain.Product {
	return f.product(t, domain.Product{Name: name, Brand: "MT", CostPrice: cost})
}

// place оформляет один заказ из qty единиц товара в режиме SPECIAL
func (f *fixture) place(t *testing.T, user domain.User, p domain.Product, qty int64) domain.Order {
	t.Helper()
	ctx := context.Background()
	if _, err := f.carts.Adjust(ctx, user, p.ID, domain.PricingModeSpecial, qty); err != nil {
		t.Fatalf("adjust cart: %v", err)
	}
	created, err := f.carts.Checkout(ctx, user)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected 1 order, got %d", len(created))
	}
	return created[0]
}

func expectCode(t *testing.T, err error, code domain.StatusCode) {
	t.Helper()
	got, ok := domain.CodeOf(err)
	if !ok || got != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestCheckout_BundleAndSpecialItemTotal700(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	dye := f.bundle(t)
	tape := f.plain(t, "Tape", 100)

	if _, err := f.carts.Add(ctx, alice, dye.ID, domain.PricingModeSpecial); err != nil {
		t.Fatalf("add bundle: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := f.carts.Add(ctx, alice, tape.ID, domain.PricingModeSpecial); err != nil {
			t.Fatalf("add tape: %v", err)
		}
	}
	if v := f.carts.View(alice); v.Total != 700 {
		t.Fatalf("cart total: %d", v.Total)
	}

	created, err := f.carts.Checkout(ctx, alice)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected one order, got %d", len(created))
	}
	o := created[0]
	if o.TotalAmount != 700 || o.Status != domain.OrderStatusPending || o.PricingMode != domain.PricingModeSpecial {
		t.Fatalf("unexpected order: %+v", o)
	}
	if o.ID == "" || o.UserID != "alice" || o.UserName != "Alice" {
		t.Fatalf("identity not assigned: %+v", o)
	}
	b := o.Items[0]
	if b.ProductName != "Dye"+domain.BundleNameSuffix || b.Quantity != 2 || b.FreeQuantity != 1 || b.TotalPrice != 460 {
		t.Fatalf("bundle line: %+v", b)
	}
	if n := o.Items[1]; n.Quantity != 3 || n.UnitPrice != 80 || n.TotalPrice != 240 {
		t.Fatalf("normal line: %+v", n)
	}
	if len(f.carts.View(alice).Items) != 0 {
		t.Fatalf("cart not cleared")
	}
	mine, _ := f.orders.ListByUser(ctx, "alice")
	if len(mine) != 1 || mine[0].ID != o.ID {
		t.Fatalf("order not visible to owner: %+v", mine)
	}
	if f.pub.count() != 1 || f.pub.events[0].kind != events.OrderCreated {
		t.Fatalf("expected created event, got %+v", f.pub.events)
	}
}

func TestCheckout_OneOrderPerPricingMode(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	tape := f.plain(t, "Tape", 100)
	_, _ = f.carts.Add(ctx, alice, tape.ID, domain.PricingModeDaily)
	_, _ = f.carts.Add(ctx, alice, tape.ID, domain.PricingModeSpecial)

	preview, err := f.carts.Preview(ctx, alice)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if len(preview) != 2 {
		t.Fatalf("expected 2 previews, got %d", len(preview))
	}
	all, _ := f.orders.ListAll(ctx)
	if len(all) != 0 {
		t.Fatalf("preview must not persist")
	}

	created, err := f.carts.Checkout(ctx, alice)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(created))
	}
	if created[0].PricingMode != domain.PricingModeDaily || created[0].TotalAmount != 50 {
		t.Fatalf("daily order: %+v", created[0])
	}
	if created[1].PricingMode != domain.PricingModeSpecial || created[1].TotalAmount != 80 {
		t.Fatalf("special order: %+v", created[1])
	}
	if created[0].ID == created[1].ID {
		t.Fatalf("ids must be unique")
	}
}

func TestCheckout_EmptyCartAndMissingProduct(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	_, err := f.carts.Checkout(ctx, alice)
	expectCode(t, err, domain.StatusInvalidArgument)

	tape := f.plain(t, "Tape", 100)
	_, _ = f.carts.Add(ctx, alice, tape.ID, domain.PricingModeDaily)
	if err := f.products.Delete(ctx, tape.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = f.carts.Checkout(ctx, alice)
	expectCode(t, err, domain.StatusFailedPrecondition)
	if len(f.carts.View(alice).Items) != 1 {
		t.Fatalf("failed checkout must keep the cart")
	}
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	tape := f.plain(t, "Tape", 100)
	o := f.place(t, alice, tape, 1)

	expectCode(t, f.orders.CancelOrder(ctx, bob, o.ID), domain.StatusPermissionDenied)

	if err := f.orders.CancelOrder(ctx, alice, o.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.repo.GetByID(ctx, o.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("order should be gone, got %v", err)
	}
}

func TestCancelOrder_LockedRefused(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	tape := f.plain(t, "Tape", 100)
	o := f.place(t, alice, tape, 1)
	if _, err := f.orders.ApplyOrderAction(ctx, []string{o.ID}, domain.OrderActionAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}
	expectCode(t, f.orders.CancelOrder(ctx, alice, o.ID), domain.StatusFailedPrecondition)
	if _, err := f.repo.GetByID(ctx, o.ID); err != nil {
		t.Fatalf("locked order must survive: %v", err)
	}
}

func TestAdjustQuantity_BundleSetsAndCascade(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	dye := f.bundle(t)
	o := f.place(t, alice, dye, 2)
	if o.Items[0].Quantity != 4 || o.Items[0].FreeQuantity != 2 {
		t.Fatalf("bundle line: %+v", o.Items[0])
	}

	updated, err := f.orders.AdjustQuantity(ctx, alice, o.ID, 0, -1)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	line := updated.Items[0]
	if line.Quantity != 2 || line.FreeQuantity != 1 || *line.BundleQuantity != 1 || updated.TotalAmount != 460 {
		t.Fatalf("after -1 set: %+v total=%d", line, updated.TotalAmount)
	}

	gone, err := f.orders.AdjustQuantity(ctx, alice, o.ID, 0, -1)
	if err != nil || gone != nil {
		t.Fatalf("expected deletion, got %+v %v", gone, err)
	}
	if _, err := f.repo.GetByID(ctx, o.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("emptied order must be deleted")
	}
	last := f.pub.events[len(f.pub.events)-1]
	if last.kind != events.OrderDeleted {
		t.Fatalf("expected deleted event, got %s", last.kind)
	}
}

func TestAdjustQuantity_Rejections(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	tape := f.plain(t, "Tape", 100)
	o := f.place(t, alice, tape, 2)

	_, err := f.orders.AdjustQuantity(ctx, bob, o.ID, 0, 1)
	expectCode(t, err, domain.StatusPermissionDenied)
	_, err = f.orders.AdjustQuantity(ctx, alice, o.ID, 5, 1)
	expectCode(t, err, domain.StatusInvalidArgument)

	if _, err := f.orders.ApplyBrandAction(ctx, []string{tape.ID}, domain.BrandActionOutOfStock); err != nil {
		t.Fatalf("oos: %v", err)
	}
	_, err = f.orders.AdjustQuantity(ctx, alice, o.ID, 0, 1)
	expectCode(t, err, domain.StatusFailedPrecondition)

	if _, err := f.orders.ApplyOrderAction(ctx, []string{o.ID}, domain.OrderActionPacked); err != nil {
		t.Fatalf("pack: %v", err)
	}
	_, err = f.orders.AdjustQuantity(ctx, alice, o.ID, 0, 1)
	expectCode(t, err, domain.StatusFailedPrecondition)
}

func TestBrandAction_PackedAcrossThreeOrders(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	tape := f.plain(t, "Tape", 100)
	pen := f.plain(t, "Pen", 250)

	var ids []string
	for _, u := range []domain.User{alice, bob, alice} {
		_, _ = f.carts.Adjust(ctx, u, tape.ID, domain.PricingModeSpecial, 1)
		_, _ = f.carts.Adjust(ctx, u, pen.ID, domain.PricingModeSpecial, 1)
		created, err := f.carts.Checkout(ctx, u)
		if err != nil {
			t.Fatalf("checkout: %v", err)
		}
		ids = append(ids, created[0].ID)
	}

	updated, err := f.orders.ApplyBrandAction(ctx, []string{tape.ID}, domain.BrandActionPacked)
	if err != nil {
		t.Fatalf("brand action: %v", err)
	}
	if len(updated) != 3 {
		t.Fatalf("expected 3 orders updated, got %d", len(updated))
	}
	for _, id := range ids {
		o, _ := f.repo.GetByID(ctx, id)
		if o.Status != domain.OrderStatusPacked {
			t.Fatalf("order %s status %s", id, o.Status)
		}
		if o.Items[0].Status != domain.OrderStatusPacked {
			t.Fatalf("tape line status %s", o.Items[0].Status)
		}
		if o.Items[1].Status != domain.OrderStatusPending || o.Items[1].TotalPrice != 200 {
			t.Fatalf("pen line changed: %+v", o.Items[1])
		}
	}
}

func TestBrandAction_OutOfStockRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	tape := f.plain(t, "Tape", 100)
	pen := f.plain(t, "Pen", 250)
	_, _ = f.carts.Adjust(ctx, alice, tape.ID, domain.PricingModeDaily, 2)
	_, _ = f.carts.Adjust(ctx, alice, pen.ID, domain.PricingModeDaily, 1)
	created, err := f.carts.Checkout(ctx, alice)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	before := created[0].TotalAmount

	if _, err := f.orders.ApplyBrandAction(ctx, []string{pen.ID}, domain.BrandActionOutOfStock); err != nil {
		t.Fatalf("oos: %v", err)
	}
	o, _ := f.repo.GetByID(ctx, created[0].ID)
	if o.Status != domain.OrderStatusPending {
		t.Fatalf("oos must not touch order status, got %s", o.Status)
	}
	if o.TotalAmount != before-125 {
		t.Fatalf("oos total: %d", o.TotalAmount)
	}

	if _, err := f.orders.ApplyBrandAction(ctx, []string{pen.ID}, domain.BrandActionRestore); err != nil {
		t.Fatalf("restore: %v", err)
	}
	o, _ = f.repo.GetByID(ctx, created[0].ID)
	if o.TotalAmount != before || o.Items[1].Status != domain.OrderStatusPending {
		t.Fatalf("restore: %+v", o)
	}
}

func TestBrandAction_NothingToUpdate(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	tape := f.plain(t, "Tape", 100)
	pen := f.plain(t, "Pen", 250)
	f.place(t, alice, tape, 1)
	published := f.pub.count()

	_, err := f.orders.ApplyBrandAction(ctx, []string{pen.ID}, domain.BrandActionAccepted)
	if !errors.Is(err, ErrNothingToUpdate) {
		t.Fatalf("expected nothing to update, got %v", err)
	}
	if f.pub.count() != published {
		t.Fatalf("no events expected")
	}
}

func TestOrderAction_EmptySelectionIsNoop(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	tape := f.plain(t, "Tape", 100)
	o := f.place(t, alice, tape, 1)

	updated, err := f.orders.ApplyOrderAction(ctx, nil, domain.OrderActionPacked)
	if err != nil || len(updated) != 0 {
		t.Fatalf("expected no-op, got %v %v", updated, err)
	}
	got, _ := f.repo.GetByID(ctx, o.ID)
	if got.Status != domain.OrderStatusPending {
		t.Fatalf("status changed: %s", got.Status)
	}

	_, err = f.orders.ApplyOrderAction(ctx, []string{o.ID}, domain.OrderAction("SHIP"))
	expectCode(t, err, domain.StatusInvalidArgument)
}

func TestOrderAction_LeavesLineStatuses(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	tape := f.plain(t, "Tape", 100)
	o := f.place(t, alice, tape, 1)
	if _, err := f.orders.ApplyOrderAction(ctx, []string{o.ID}, domain.OrderActionAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}
	got, _ := f.repo.GetByID(ctx, o.ID)
	if got.Status != domain.OrderStatusLocked || got.Items[0].Status != domain.OrderStatusPending {
		t.Fatalf("unexpected: %+v", got)
	}
}

func TestLockAllPending(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	tape := f.plain(t, "Tape", 100)
	o1 := f.place(t, alice, tape, 1)
	o2 := f.place(t, bob, tape, 1)
	if _, err := f.orders.ApplyOrderAction(ctx, []string{o2.ID}, domain.OrderActionPacked); err != nil {
		t.Fatalf("pack: %v", err)
	}
	n, err := f.orders.LockAllPending(ctx)
	if err != nil || n != 1 {
		t.Fatalf("lock all: %d %v", n, err)
	}
	got1, _ := f.repo.GetByID(ctx, o1.ID)
	got2, _ := f.repo.GetByID(ctx, o2.ID)
	if got1.Status != domain.OrderStatusLocked || got2.Status != domain.OrderStatusPacked {
		t.Fatalf("statuses: %s %s", got1.Status, got2.Status)
	}
}

type failingBatch struct {
	*repository.MemoryOrders
}

func (failingBatch) UpdateBatch(context.Context, []domain.Order) error {
	return errors.New("store unavailable")
}

func TestBatchFailure_SurfacesErrorWithoutEvents(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	mem := repository.NewMemoryOrders(store)
	pub := &recordingPublisher{}
	svc := NewOrderService(store, failingBatch{mem}, repository.NewMemoryTx(store), pub)
	o := &domain.Order{UserID: "alice", Status: domain.OrderStatusPending,
		Items: []domain.OrderLineItem{{ProductID: "p", Quantity: 1, UnitPrice: 10, Status: domain.OrderStatusPending}}}
	if err := mem.Create(ctx, o); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.LockAllPending(ctx); err == nil {
		t.Fatalf("expected error")
	}
	if pub.count() != 0 {
		t.Fatalf("failed batch must not publish")
	}
	got, _ := mem.GetByID(ctx, o.ID)
	if got.Status != domain.OrderStatusPending {
		t.Fatalf("nothing should be written, got %s", got.Status)
	}
}
