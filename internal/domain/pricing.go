package domain

// Скидки режимов в виде дроби num/den, чтобы floor считался в целых числах.
var modeFactor = map[PricingMode][2]int64{
	PricingModeDaily:   {1, 2}, // 50%
	PricingModeSpecial: {4, 5}, // 80%
}

// Price цена обычного товара в режиме mode: floor(cost * factor).
// Для режима вне DAILY/SPECIAL возвращает InvalidArgument, а не цену по умолчанию.
func Price(costPrice int64, mode PricingMode) (int64, error) {
	f, ok := modeFactor[mode]
	if !ok {
		return 0, NewInvalidArgument(ErrMsgInvalidMode)
	}
	return costPrice * f[0] / f[1], nil
}

// UnitPrice цена за платную единицу с учётом акции.
// Для bundle берётся себестоимость, но режим всё равно должен быть допустимым.
func UnitPrice(p Product, mode PricingMode) (int64, error) {
	if !mode.Valid() {
		return 0, NewInvalidArgument(ErrMsgInvalidMode)
	}
	switch p.Promotion.(type) {
	case Bundle:
		return p.CostPrice, nil
	default:
		return Price(p.CostPrice, mode)
	}
}

// BundleSetPrice цена одного набора: цена единицы * buy
func BundleSetPrice(unitPrice int64, b Bundle) int64 {
	return unitPrice * b.Buy
}

// BundleAverageUnitPrice средняя цена физической единицы набора, только для отображения
func BundleAverageUnitPrice(unitPrice int64, b Bundle) int64 {
	n := b.SetSize()
	if n <= 0 {
		return 0
	}
	total := BundleSetPrice(unitPrice, b)
	return (2*total + n) / (2 * n)
}

// RecalculateTotal итог заказа: платное количество * цена, строки OUT_OF_STOCK не учитываются
func RecalculateTotal(items []OrderLineItem) int64 {
	var sum int64
	for _, it := range items {
		if it.Status == OrderStatusOutOfStock {
			continue
		}
		sum += it.UnitPrice * it.Quantity
	}
	return sum
}
