package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"requisition/internal/domain"
	"requisition/internal/repository"
)

func TestProductService_Validation(t *testing.T) {
	ctx := context.Background()
	ps := NewProductService(repository.NewMemoryStore())

	_, err := ps.Create(ctx, domain.Product{Brand: "MT", CostPrice: 10})
	assert.True(t, errors.Is(err, ErrInvalidInput), "missing name")

	_, err = ps.Create(ctx, domain.Product{Name: "Tape", Brand: "MT", CostPrice: -1})
	assert.True(t, errors.Is(err, ErrInvalidInput), "negative cost")

	_, err = ps.Create(ctx, domain.Product{Name: "Dye", Brand: "Wella", CostPrice: 230, Promotion: domain.Bundle{Buy: 0, Get: 1}})
	assert.True(t, errors.Is(err, ErrInvalidInput), "bundle buy below 1")

	p, err := ps.Create(ctx, domain.Product{Name: "Tape", Brand: "MT", CostPrice: 100})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, domain.NoPromotion{}, p.Promotion)
}

func TestProductService_UpdateDoesNotTouchPlacedOrders(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	tape := f.plain(t, "Tape", 100)
	o := f.place(t, alice, tape, 1)

	tape.CostPrice = 500
	tape.Name = "Premium Tape"
	_, err := f.products.Update(ctx, tape)
	require.NoError(t, err)

	got, err := f.orders.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tape", got.Items[0].ProductName)
	assert.Equal(t, int64(80), got.Items[0].UnitPrice)

	_, err = f.products.Update(ctx, domain.Product{ID: "missing", Name: "X", Brand: "Y"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProductService_CatalogOrderAndBrands(t *testing.T) {
	ctx := context.Background()
	ps := NewProductService(repository.NewMemoryStore())
	mk := func(p domain.Product) {
		_, err := ps.Create(ctx, p)
		require.NoError(t, err)
	}
	mk(domain.Product{Name: "Zeta", Brand: "MT", CostPrice: 1, IsActive: true})
	mk(domain.Product{Name: "Alpha", Brand: "MT", CostPrice: 1, IsActive: true})
	mk(domain.Product{Name: "Featured", Brand: "Pentel", CostPrice: 1, IsActive: true, IsFeatured: true})
	mk(domain.Product{Name: "Deal", Brand: "Wella", CostPrice: 1, IsActive: true, Promotion: domain.Bundle{Buy: 2, Get: 1}})
	mk(domain.Product{Name: "Hidden", Brand: "Copic", CostPrice: 1})

	list, err := ps.Catalog(ctx, "", "")
	require.NoError(t, err)
	names := make([]string, 0, len(list))
	for _, p := range list {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Deal", "Featured", "Alpha", "Zeta"}, names)

	list, err = ps.Catalog(ctx, "MT", "alp")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Alpha", list[0].Name)

	brands, err := ps.Brands(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"MT", "Pentel", "Wella"}, brands)

	all, err := ps.List(ctx, repository.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 5)
}
