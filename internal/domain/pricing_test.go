package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrice(t *testing.T) {
	cases := []struct {
		cost  int64
		mode  PricingMode
		price int64
	}{
		{0, PricingModeDaily, 0},
		{0, PricingModeSpecial, 0},
		{1, PricingModeDaily, 0},
		{1, PricingModeSpecial, 0},
		{3, PricingModeDaily, 1},
		{3, PricingModeSpecial, 2},
		{100, PricingModeDaily, 50},
		{100, PricingModeSpecial, 80},
		{125, PricingModeSpecial, 100},
		{129, PricingModeSpecial, 103},
		{999, PricingModeDaily, 499},
	}
	for _, c := range cases {
		got, err := Price(c.cost, c.mode)
		require.NoError(t, err)
		assert.Equal(t, c.price, got, "cost=%d mode=%s", c.cost, c.mode)
	}
}

func TestPrice_UnknownModeRejected(t *testing.T) {
	for _, mode := range []PricingMode{"", "WEEKLY", "daily"} {
		_, err := Price(100, mode)
		require.Error(t, err, "mode=%q", mode)
		code, ok := CodeOf(err)
		require.True(t, ok)
		assert.Equal(t, StatusInvalidArgument, code)

		_, err = UnitPrice(Product{ID: "p4", CostPrice: 230, Promotion: Bundle{Buy: 2, Get: 1}}, mode)
		code, _ = CodeOf(err)
		assert.Equal(t, StatusInvalidArgument, code, "bundle mode=%q", mode)
	}
}

func TestPrice_Monotonic(t *testing.T) {
	for _, mode := range []PricingMode{PricingModeDaily, PricingModeSpecial} {
		prev, _ := Price(0, mode)
		for c := int64(1); c <= 2000; c++ {
			p, _ := Price(c, mode)
			if p < prev {
				t.Fatalf("price decreased at cost=%d mode=%s", c, mode)
			}
			prev = p
		}
	}
}

func TestUnitPrice_BundleIgnoresMode(t *testing.T) {
	unit := func(p Product, mode PricingMode) int64 {
		v, err := UnitPrice(p, mode)
		require.NoError(t, err)
		return v
	}
	p := Product{ID: "p4", CostPrice: 230, Promotion: Bundle{Buy: 2, Get: 1}}
	assert.Equal(t, int64(230), unit(p, PricingModeDaily))
	assert.Equal(t, int64(230), unit(p, PricingModeSpecial))

	plain := Product{ID: "p1", CostPrice: 230}
	assert.Equal(t, int64(115), unit(plain, PricingModeDaily))
	assert.Equal(t, int64(184), unit(plain, PricingModeSpecial))
}

func TestBundleAverageUnitPrice(t *testing.T) {
	b := Bundle{Buy: 2, Get: 1}
	assert.Equal(t, int64(460), BundleSetPrice(230, b))
	// 460 / 3 = 153.33
	assert.Equal(t, int64(153), BundleAverageUnitPrice(230, b))
	// 5 / 2 = 2.5 rounds up
	assert.Equal(t, int64(3), BundleAverageUnitPrice(5, Bundle{Buy: 1, Get: 1}))
	assert.Equal(t, int64(0), BundleAverageUnitPrice(5, Bundle{}))
}

func TestRecalculateTotal_ExcludesOutOfStock(t *testing.T) {
	items := []OrderLineItem{
		{Quantity: 2, UnitPrice: 100, Status: OrderStatusPending},
		{Quantity: 1, UnitPrice: 50, Status: OrderStatusOutOfStock},
	}
	assert.Equal(t, int64(200), RecalculateTotal(items))
}

func TestRecalculateTotal_IgnoresFreeUnits(t *testing.T) {
	sets := int64(1)
	items := []OrderLineItem{
		{Quantity: 2, FreeQuantity: 1, BundleQuantity: &sets, UnitPrice: 230, Status: OrderStatusPacked},
	}
	assert.Equal(t, int64(460), RecalculateTotal(items))
}

func TestProductJSON_PromotionRoundTrip(t *testing.T) {
	raw := `{"id":"p4","name":"Dye","brand":"Wella","costPrice":230,"isActive":true,"isFeatured":true,
		"promotion":{"type":"BUNDLE","buy":2,"get":1,"avgPriceDisplay":153,"note":"buy 2 get 1"}}`
	var p Product
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	b, ok := p.Bundle()
	require.True(t, ok)
	assert.Equal(t, Bundle{Buy: 2, Get: 1, AvgPriceDisplay: 153, Note: "buy 2 get 1"}, b)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"type":"BUNDLE"`)

	var plain Product
	require.NoError(t, json.Unmarshal([]byte(`{"id":"p1","name":"Tape","costPrice":100}`), &plain))
	_, ok = plain.Bundle()
	assert.False(t, ok)
	assert.Equal(t, NoPromotion{}, plain.Promotion)

	out, err = json.Marshal(plain)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "promotion")

	err = json.Unmarshal([]byte(`{"id":"x","promotion":{"type":"COUPON"}}`), &plain)
	assert.Error(t, err)
}
