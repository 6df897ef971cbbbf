package domain

const (
	// BundleNameSuffix добавляется к названию bundle-строки заказа
	BundleNameSuffix = " (Bundle Pack)"
	// DefaultBundleNote если у акции нет собственной заметки
	DefaultBundleNote = "Bundle promotion"
)

// CartItem строка корзины. Для bundle Quantity считает наборы, а не единицы.
type CartItem struct {
	ProductID     string      `json:"productId"`
	Quantity      int64       `json:"quantity"`
	PricingMode   PricingMode `json:"pricingMode"`
	SnapshotPrice int64       `json:"snapshotPrice"`
	// Bundle условия акции на момент добавления; nil для обычного товара
	Bundle *Bundle `json:"bundle,omitempty"`
}

func (c CartItem) IsBundle() bool { return c.Bundle != nil }

// Clone копия строки со своей копией условий акции
func (c CartItem) Clone() CartItem {
	if c.Bundle != nil {
		b := *c.Bundle
		c.Bundle = &b
	}
	return c
}

// LineTotal стоимость строки корзины; бесплатные единицы не входят
func (c CartItem) LineTotal() int64 {
	if c.Bundle != nil {
		return BundleSetPrice(c.SnapshotPrice, *c.Bundle) * c.Quantity
	}
	return c.SnapshotPrice * c.Quantity
}

// MaterializeLine превращает строку корзины в неизменяемую строку заказа.
// Название и бренд берутся из текущего каталога, цена и условия акции из корзины.
func MaterializeLine(item CartItem, p Product) OrderLineItem {
	if item.Bundle != nil {
		b := *item.Bundle
		sets := item.Quantity
		paid := sets * b.Buy
		note := b.Note
		if note == "" {
			note = DefaultBundleNote
		}
		return OrderLineItem{
			ProductID:      p.ID,
			ProductName:    p.Name + BundleNameSuffix,
			Brand:          p.Brand,
			Quantity:       paid,
			FreeQuantity:   sets * b.Get,
			BundleQuantity: &sets,
			UnitPrice:      item.SnapshotPrice,
			TotalPrice:     item.SnapshotPrice * paid,
			Status:         OrderStatusPending,
			Note:           note,
		}
	}
	return OrderLineItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		Brand:       p.Brand,
		Quantity:    item.Quantity,
		UnitPrice:   item.SnapshotPrice,
		TotalPrice:  item.SnapshotPrice * item.Quantity,
		Status:      OrderStatusPending,
		Note:        PromotionNote(p.Promotion),
	}
}

// PartitionByMode группирует строки корзины по режиму цены в порядке первого появления
func PartitionByMode(items []CartItem) ([]PricingMode, map[PricingMode][]CartItem) {
	var modes []PricingMode
	groups := make(map[PricingMode][]CartItem)
	for _, it := range items {
		if _, ok := groups[it.PricingMode]; !ok {
			modes = append(modes, it.PricingMode)
		}
		groups[it.PricingMode] = append(groups[it.PricingMode], it)
	}
	return modes, groups
}

// AdjustLineQuantity меняет количество строки idx на delta (для bundle в наборах).
// Возвращает true, если строк в заказе не осталось и заказ нужно удалить.
func AdjustLineQuantity(o *Order, idx int, delta int64) (bool, error) {
	if o.IsLocked() {
		return false, NewFailedPrecondition(ErrMsgOrderLocked)
	}
	if idx < 0 || idx >= len(o.Items) {
		return false, NewInvalidArgument(ErrMsgLineIndexRange)
	}
	if delta == 0 {
		return false, NewInvalidArgument(ErrMsgDeltaZero)
	}
	it := o.Items[idx]
	if it.Status == OrderStatusOutOfStock {
		return false, NewFailedPrecondition(ErrMsgLineOutOfStock)
	}

	remove := false
	if it.BundleQuantity != nil {
		oldSets := *it.BundleQuantity
		newSets := oldSets + delta
		if newSets <= 0 || oldSets <= 0 {
			remove = true
		} else {
			paidPerSet := it.Quantity / oldSets
			freePerSet := it.FreeQuantity / oldSets
			it.BundleQuantity = &newSets
			it.Quantity = newSets * paidPerSet
			it.FreeQuantity = newSets * freePerSet
			it.TotalPrice = it.UnitPrice * it.Quantity
		}
	} else {
		it.Quantity += delta
		if it.Quantity <= 0 {
			remove = true
		} else {
			it.TotalPrice = it.UnitPrice * it.Quantity
		}
	}

	items := make([]OrderLineItem, 0, len(o.Items))
	items = append(items, o.Items[:idx]...)
	if !remove {
		items = append(items, it)
	}
	items = append(items, o.Items[idx+1:]...)
	o.Items = items
	if len(items) == 0 {
		return true, nil
	}
	o.TotalAmount = RecalculateTotal(o.Items)
	return false, nil
}
