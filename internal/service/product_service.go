package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"

	"requisition/internal/domain"
	"requisition/internal/repository"
)

// ProductService инкапсулирует бизнес-логику вокруг каталога
type ProductService struct {
	repo     repository.ProductRepository
	validate *validator.Validate
}

func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo, validate: validator.New()}
}

var ErrInvalidInput = errors.New("invalid input")

func (s *ProductService) check(p domain.Product) error {
	if err := s.validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if b, ok := p.Bundle(); ok {
		if err := s.validate.Struct(b); err != nil {
			return fmt.Errorf("%w: bundle: %v", ErrInvalidInput, err)
		}
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if err := s.check(p); err != nil {
		return nil, err
	}
	cp := p
	if cp.Promotion == nil {
		cp.Promotion = domain.NoPromotion{}
	}
	if err := s.repo.Create(ctx, &cp); err != nil {
		return nil, err
	}
	logger.Info().Str("product_id", cp.ID).Msg("product created")
	return &cp, nil
}

func (s *ProductService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

// Update правка товара не меняет уже оформленные заказы: они хранят снимок цены и названия
func (s *ProductService) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if p.ID == "" {
		return nil, ErrInvalidInput
	}
	if err := s.check(p); err != nil {
		return nil, err
	}
	cp := p
	if cp.Promotion == nil {
		cp.Promotion = domain.NoPromotion{}
	}
	if err := s.repo.Update(ctx, &cp); err != nil {
		return nil, err
	}
	logger.Info().Str("product_id", cp.ID).Msg("product updated")
	return &cp, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

func (s *ProductService) List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, error) {
	return s.repo.List(ctx, f)
}

// Catalog активные товары для сотрудников: сначала акции, потом избранное, потом по имени
func (s *ProductService) Catalog(ctx context.Context, brand, query string) ([]domain.Product, error) {
	list, err := s.repo.List(ctx, repository.ProductFilter{Brand: brand, NameSubstring: query, ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		_, bi := list[i].Bundle()
		_, bj := list[j].Bundle()
		if bi != bj {
			return bi
		}
		if list[i].IsFeatured != list[j].IsFeatured {
			return list[i].IsFeatured
		}
		return list[i].Name < list[j].Name
	})
	return list, nil
}

// Brands бренды активных товаров по алфавиту
func (s *ProductService) Brands(ctx context.Context) ([]string, error) {
	list, err := s.repo.List(ctx, repository.ProductFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range list {
		if _, ok := seen[p.Brand]; ok {
			continue
		}
		seen[p.Brand] = struct{}{}
		out = append(out, p.Brand)
	}
	sort.Strings(out)
	return out, nil
}
