package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tcg_sync_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// PriceRepository 价格快照仓储接口
type PriceRepository interface {
	// UpsertBatch 批量插入快照，(card_id, foil, created) 已存在的行跳过
	// 同一天重复同步靠唯一索引化解为 no-op，历史快照永不覆盖
	UpsertBatch(ctx context.Context, prices []model.Price) error

	// ListByCard 按卡牌查价格时间序列，foil 传 nil 表示两种报价都要
	ListByCard(ctx context.Context, cardID int64, foil *bool) ([]model.Price, error)

	CountOn(ctx context.Context, day time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// ==================== 仓储实现 ====================

type priceRepo struct {
	db *gorm.DB
}

// NewPriceRepository 创建价格快照仓储
func NewPriceRepository(db *gorm.DB) PriceRepository {
	return &priceRepo{db: db}
}

func (r *priceRepo) UpsertBatch(ctx context.Context, prices []model.Price) error {
	if len(prices) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "card_id"}, {Name: "foil"}, {Name: "created"}},
		DoNothing: true,
	}).CreateInBatches(&prices, 500).Error
}

func (r *priceRepo) ListByCard(ctx context.Context, cardID int64, foil *bool) ([]model.Price, error) {
	query := r.db.WithContext(ctx).Where("card_id = ?", cardID)
	if foil != nil {
		query = query.Where("foil = ?", *foil)
	}

	var prices []model.Price
	err := query.
		Order("created ASC").
		Find(&prices).Error
	return prices, err
}

func (r *priceRepo) CountOn(ctx context.Context, day time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Price{}).
		Where("created = ?", day).
		Count(&count).Error
	return count, err
}

func (r *priceRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Price{}).Count(&count).Error
	return count, err
}
