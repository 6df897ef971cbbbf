package domain

// OrderAction действие над заказом целиком (просмотр по сотрудникам)
type OrderAction string

const (
	OrderActionAccepted OrderAction = "ACCEPTED"
	OrderActionPacked   OrderAction = "PACKED"
)

// Target статус заказа, в который переводит действие
func (a OrderAction) Target() (OrderStatus, bool) {
	switch a {
	case OrderActionAccepted:
		return OrderStatusLocked, true
	case OrderActionPacked:
		return OrderStatusPacked, true
	}
	return "", false
}

// BrandAction действие над строками выбранных товаров (просмотр по брендам)
type BrandAction string

const (
	BrandActionAccepted   BrandAction = "ACCEPTED"
	BrandActionPacked     BrandAction = "PACKED"
	BrandActionOutOfStock BrandAction = "OUT_OF_STOCK"
	BrandActionRestore    BrandAction = "RESTORE"
)

// LineTarget статус строки после действия
func (a BrandAction) LineTarget() (OrderStatus, bool) {
	switch a {
	case BrandActionAccepted:
		return OrderStatusLocked, true
	case BrandActionPacked:
		return OrderStatusPacked, true
	case BrandActionOutOfStock:
		return OrderStatusOutOfStock, true
	case BrandActionRestore:
		return OrderStatusPending, true
	}
	return "", false
}

// OrderTarget статус, который получает весь заказ. OUT_OF_STOCK и RESTORE заказ не трогают.
func (a BrandAction) OrderTarget() (OrderStatus, bool) {
	switch a {
	case BrandActionAccepted:
		return OrderStatusLocked, true
	case BrandActionPacked:
		return OrderStatusPacked, true
	}
	return "", false
}

// ApplyOrderAction выставляет статус заказа; статусы строк не меняются
func ApplyOrderAction(o Order, a OrderAction) (Order, error) {
	target, ok := a.Target()
	if !ok {
		return o, NewInvalidArgument(ErrMsgUnknownAction)
	}
	out := o.Clone()
	out.Status = target
	return out, nil
}

// ContainsAnyProduct есть ли в заказе строка с одним из товаров
func ContainsAnyProduct(o Order, productIDs map[string]struct{}) bool {
	for _, it := range o.Items {
		if _, ok := productIDs[it.ProductID]; ok {
			return true
		}
	}
	return false
}

// ApplyBrandAction меняет статус строк выбранных товаров, при ACCEPTED/PACKED поднимает
// статус всего заказа и пересчитывает итог.
func ApplyBrandAction(o Order, productIDs map[string]struct{}, a BrandAction) (Order, error) {
	lineTarget, ok := a.LineTarget()
	if !ok {
		return o, NewInvalidArgument(ErrMsgUnknownAction)
	}
	out := o.Clone()
	for i := range out.Items {
		if _, sel := productIDs[out.Items[i].ProductID]; sel {
			out.Items[i].Status = lineTarget
		}
	}
	if orderTarget, ok := a.OrderTarget(); ok {
		out.Status = orderTarget
	}
	out.TotalAmount = RecalculateTotal(out.Items)
	return out, nil
}
