package domain

import "fmt"

// Promotion закрытый набор вариантов акции: NoPromotion или Bundle.
// Реализовать интерфейс вне пакета нельзя.
type Promotion interface {
	promotion()
}

// NoPromotion товар без акции
type NoPromotion struct{}

// Bundle акция "купи buy, получи get бесплатно"
type Bundle struct {
	Buy             int64  `json:"buy" validate:"gte=1"`
	Get             int64  `json:"get" validate:"gte=0"`
	AvgPriceDisplay int64  `json:"avgPriceDisplay,omitempty"`
	Note            string `json:"note,omitempty"`
}

func (NoPromotion) promotion() {}
func (Bundle) promotion()      {}

// SetSize число физических единиц в одном наборе
func (b Bundle) SetSize() int64 { return b.Buy + b.Get }

const promotionTypeBundle = "BUNDLE"

type promotionJSON struct {
	Type            string `json:"type"`
	Buy             int64  `json:"buy,omitempty"`
	Get             int64  `json:"get,omitempty"`
	AvgPriceDisplay int64  `json:"avgPriceDisplay,omitempty"`
	Note            string `json:"note,omitempty"`
}

func encodePromotion(p Promotion) *promotionJSON {
	switch v := p.(type) {
	case Bundle:
		return &promotionJSON{
			Type:            promotionTypeBundle,
			Buy:             v.Buy,
			Get:             v.Get,
			AvgPriceDisplay: v.AvgPriceDisplay,
			Note:            v.Note,
		}
	case NoPromotion, nil:
		return nil
	default:
		panic(fmt.Sprintf("unknown promotion %T", p))
	}
}

func decodePromotion(raw *promotionJSON) (Promotion, error) {
	if raw == nil || raw.Type == "" || raw.Type == "NONE" {
		return NoPromotion{}, nil
	}
	switch raw.Type {
	case promotionTypeBundle:
		return Bundle{Buy: raw.Buy, Get: raw.Get, AvgPriceDisplay: raw.AvgPriceDisplay, Note: raw.Note}, nil
	default:
		return nil, fmt.Errorf("unknown promotion type %q", raw.Type)
	}
}

// PromotionNote заметка акции для строки заказа
func PromotionNote(p Promotion) string {
	switch v := p.(type) {
	case Bundle:
		return v.Note
	default:
		return ""
	}
}
