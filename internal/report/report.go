// Package report строит административные сводки по списку заказов:
// показатели, рейтинг товаров, разрезы по сотрудникам и брендам, месячную выгрузку.
package report

import (
	"sort"
	"strings"

	"requisition/internal/domain"
)

type Stats struct {
	TotalOrders  int   `json:"totalOrders"`
	TotalUnits   int64 `json:"totalUnits"`
	TotalRevenue int64 `json:"totalRevenue"`
}

// Summarize единицы считаются физически (оплаченные и бесплатные), выручка как сумма итогов заказов
func Summarize(orders []domain.Order) Stats {
	st := Stats{TotalOrders: len(orders)}
	for _, o := range orders {
		st.TotalRevenue += o.TotalAmount
		for _, it := range o.Items {
			st.TotalUnits += it.PhysicalUnits()
		}
	}
	return st
}

type RankingEntry struct {
	ProductID   string `json:"productId"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Brand       string `json:"brand"`
	Units       int64  `json:"units"`
}

// Ranking товары по числу физических единиц; desc=false сортирует по возрастанию
func Ranking(orders []domain.Order, desc bool) []RankingEntry {
	idx := make(map[string]int)
	out := make([]RankingEntry, 0)
	for _, o := range orders {
		for _, it := range o.Items {
			i, ok := idx[it.ProductID]
			if !ok {
				i = len(out)
				idx[it.ProductID] = i
				out = append(out, RankingEntry{
					ProductID:   it.ProductID,
					Name:        it.ProductName,
					DisplayName: strings.TrimSuffix(it.ProductName, domain.BundleNameSuffix),
					Brand:       it.Brand,
				})
			}
			out[i].Units += it.PhysicalUnits()
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return out[i].Units > out[j].Units
		}
		return out[i].Units < out[j].Units
	})
	return out
}

// PersonGroup заказы одного сотрудника
type PersonGroup struct {
	UserName string         `json:"userName"`
	Orders   []domain.Order `json:"orders"`
}

// ByPerson группирует по имени сотрудника в порядке первого появления
func ByPerson(orders []domain.Order) []PersonGroup {
	idx := make(map[string]int)
	out := make([]PersonGroup, 0)
	for _, o := range orders {
		i, ok := idx[o.UserName]
		if !ok {
			i = len(out)
			idx[o.UserName] = i
			out = append(out, PersonGroup{UserName: o.UserName})
		}
		out[i].Orders = append(out[i].Orders, o)
	}
	return out
}

type BrandEntry struct {
	OrderID      string             `json:"orderId"`
	UserName     string             `json:"userName"`
	Quantity     int64              `json:"qty"`
	FreeQuantity int64              `json:"freeQty"`
	OrderStatus  domain.OrderStatus `json:"status"`
	LineStatus   domain.OrderStatus `json:"itemStatus"`
}

type BrandProduct struct {
	ProductID  string       `json:"id"`
	Name       string       `json:"name"`
	TotalUnits int64        `json:"totalQty"`
	Orders     []BrandEntry `json:"orders"`
}

type BrandGroup struct {
	Brand    string         `json:"brand"`
	Products []BrandProduct `json:"products"`
}

// ByBrand бренд → товар → строки заказов; порядок первого появления
func ByBrand(orders []domain.Order) []BrandGroup {
	brandIdx := make(map[string]int)
	productIdx := make(map[string]map[string]int)
	out := make([]BrandGroup, 0)
	for _, o := range orders {
		for _, it := range o.Items {
			bi, ok := brandIdx[it.Brand]
			if !ok {
				bi = len(out)
				brandIdx[it.Brand] = bi
				productIdx[it.Brand] = make(map[string]int)
				out = append(out, BrandGroup{Brand: it.Brand})
			}
			g := &out[bi]
			pi, ok := productIdx[it.Brand][it.ProductID]
			if !ok {
				pi = len(g.Products)
				productIdx[it.Brand][it.ProductID] = pi
				g.Products = append(g.Products, BrandProduct{ProductID: it.ProductID, Name: it.ProductName})
			}
			p := &g.Products[pi]
			p.TotalUnits += it.PhysicalUnits()
			p.Orders = append(p.Orders, BrandEntry{
				OrderID:      o.ID,
				UserName:     o.UserName,
				Quantity:     it.Quantity,
				FreeQuantity: it.FreeQuantity,
				OrderStatus:  o.Status,
				LineStatus:   it.Status,
			})
		}
	}
	return out
}
