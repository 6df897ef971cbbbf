// Package cart держит корзину одной сессии: строки по ключу (товар, режим цены).
package cart

import (
	"requisition/internal/domain"
)

type key struct {
	productID string
	mode      domain.PricingMode
}

// Cart корзина сессии. Не потокобезопасна, владелец сериализует доступ.
type Cart struct {
	order []key
	lines map[key]*domain.CartItem
}

func New() *Cart {
	return &Cart{lines: make(map[key]*domain.CartItem)}
}

// Add добавляет одну единицу (или один набор). Цена фиксируется при первом добавлении.
// Недопустимый режим отклоняется до изменения корзины.
func (c *Cart) Add(p domain.Product, mode domain.PricingMode) (domain.CartItem, error) {
	k := key{p.ID, mode}
	if it, ok := c.lines[k]; ok {
		it.Quantity++
		return it.Clone(), nil
	}
	price, err := domain.UnitPrice(p, mode)
	if err != nil {
		return domain.CartItem{}, err
	}
	it := &domain.CartItem{
		ProductID:     p.ID,
		Quantity:      1,
		PricingMode:   mode,
		SnapshotPrice: price,
	}
	if b, ok := p.Bundle(); ok {
		it.Bundle = &b
	}
	c.lines[k] = it
	c.order = append(c.order, k)
	return it.Clone(), nil
}

// Adjust меняет количество на delta. При количестве <= 0 строка удаляется.
// Положительный delta для отсутствующей строки создаёт её через Add.
func (c *Cart) Adjust(p domain.Product, mode domain.PricingMode, delta int64) (domain.CartItem, bool, error) {
	k := key{p.ID, mode}
	it, ok := c.lines[k]
	if !ok {
		if delta <= 0 {
			return domain.CartItem{}, false, nil
		}
		if _, err := c.Add(p, mode); err != nil {
			return domain.CartItem{}, false, err
		}
		it = c.lines[k]
		it.Quantity = delta
		return it.Clone(), true, nil
	}
	it.Quantity += delta
	if it.Quantity <= 0 {
		c.remove(k)
		return domain.CartItem{}, false, nil
	}
	return it.Clone(), true, nil
}

func (c *Cart) remove(k key) {
	delete(c.lines, k)
	for i, o := range c.order {
		if o == k {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Quantity текущее количество строки, 0 если её нет
func (c *Cart) Quantity(productID string, mode domain.PricingMode) int64 {
	if it, ok := c.lines[key{productID, mode}]; ok {
		return it.Quantity
	}
	return 0
}

// Lines копии строк в порядке добавления; правка копий корзину не меняет
func (c *Cart) Lines() []domain.CartItem {
	out := make([]domain.CartItem, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.lines[k].Clone())
	}
	return out
}

func (c *Cart) Len() int { return len(c.order) }

// Total сумма по строкам; бесплатные единицы не входят
func (c *Cart) Total() int64 {
	var sum int64
	for _, k := range c.order {
		sum += c.lines[k].LineTotal()
	}
	return sum
}

func (c *Cart) Clear() {
	c.order = nil
	c.lines = make(map[key]*domain.CartItem)
}
