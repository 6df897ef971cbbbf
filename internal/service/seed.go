package service

import (
	"context"
	"errors"

	"requisition/internal/domain"
	"requisition/internal/repository"
)

func seedProducts() []domain.Product {
	return []domain.Product{
		{ID: "p1", Name: "高級和紙膠帶", Brand: "MT", CostPrice: 100, IsActive: true, IsFeatured: true, Promotion: domain.NoPromotion{}},
		{ID: "p2", Name: "製圖自動鉛筆", Brand: "Pentel", CostPrice: 250, IsActive: true, Promotion: domain.NoPromotion{}},
		{ID: "p3", Name: "素描本 A4", Brand: "Maruman", CostPrice: 180, IsActive: true, IsFeatured: true, Promotion: domain.NoPromotion{}},
		{ID: "p4", Name: "威傑士染膏 (紅色系)", Brand: "Wella", CostPrice: 230, IsActive: true, IsFeatured: true,
			Promotion: domain.Bundle{Buy: 2, Get: 1, AvgPriceDisplay: 153, Note: "買二送一優惠中"}},
		{ID: "p5", Name: "Copic 麥克筆", Brand: "Copic", CostPrice: 120, IsActive: true, Promotion: domain.NoPromotion{}},
		{ID: "p6", Name: "歌薇燙髮一劑", Brand: "Goldwell", CostPrice: 400, IsActive: true, Promotion: domain.NoPromotion{}},
	}
}

func seedAnnouncement() domain.Announcement {
	return domain.Announcement{
		Title:    "2025 新春囤貨節 - 買二送一特別企劃",
		Content:  "本次活動可分兩期付款，於一月及二月薪資扣除。\n請提前準備，務必於一月領料日完成安排。\n特別注意：二月無開放領料日！",
		IsActive: true,
	}
}

// Seed заполняет пустое хранилище стартовым каталогом и объявлением.
// Непустое хранилище не трогается.
func Seed(ctx context.Context, products repository.ProductRepository, announcements repository.AnnouncementRepository) error {
	existing, err := products.List(ctx, repository.ProductFilter{})
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		for _, p := range seedProducts() {
			p := p
			if err := products.Create(ctx, &p); err != nil {
				return err
			}
		}
		logger.Info().Int("products", len(seedProducts())).Msg("catalog seeded")
	}
	if _, err := announcements.GetAnnouncement(ctx); errors.Is(err, repository.ErrNotFound) {
		if err := announcements.SaveAnnouncement(ctx, seedAnnouncement()); err != nil {
			return err
		}
		logger.Info().Msg("announcement seeded")
	} else if err != nil {
		return err
	}
	return nil
}
