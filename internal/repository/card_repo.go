package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tcg_sync_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// CardPriceRef 待刷新价格的卡牌引用（本地主键 + TCGplayer ID）
type CardPriceRef struct {
	ID          int64
	TcgplayerID int64
}

// CardFilter 卡牌列表过滤条件（游标分页）
type CardFilter struct {
	SetID   int64  // 按系列过滤，0 表示不过滤
	Rarity  string // 按稀有度过滤
	Keyword string // 按名称模糊搜索
	LastID  int64  // 游标：上一页最后一行的主键
	Limit   int
}

// CardRepository 卡牌仓储接口
type CardRepository interface {
	// UpsertBatch 批量插入卡牌，tcgplayer_id 已存在的行跳过
	// 调用方需先解析好 CardSetID；并发重叠同步靠唯一索引化解为 no-op
	UpsertBatch(ctx context.Context, cards []model.Card) error

	// MapTcgplayerIDs 把 TCGplayer ID 批量换成本地主键
	MapTcgplayerIDs(ctx context.Context, tcgIDs []int64) (map[int64]int64, error)

	// FindWithoutPriceOn 查出指定快照日还没有任何价格记录的卡牌
	FindWithoutPriceOn(ctx context.Context, day time.Time) ([]CardPriceRef, error)

	GetByID(ctx context.Context, id int64) (*model.Card, error)
	List(ctx context.Context, filter CardFilter) ([]model.Card, error)
	Count(ctx context.Context) (int64, error)
}

// ==================== 仓储实现 ====================

const defaultCardPageSize = 250

type cardRepo struct {
	db *gorm.DB
}

// NewCardRepository 创建卡牌仓储
func NewCardRepository(db *gorm.DB) CardRepository {
	return &cardRepo{db: db}
}

func (r *cardRepo) UpsertBatch(ctx context.Context, cards []model.Card) error {
	if len(cards) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tcgplayer_id"}},
		DoNothing: true,
	}).CreateInBatches(&cards, 500).Error
}

func (r *cardRepo) MapTcgplayerIDs(ctx context.Context, tcgIDs []int64) (map[int64]int64, error) {
	if len(tcgIDs) == 0 {
		return map[int64]int64{}, nil
	}

	var rows []struct {
		ID          int64
		TcgplayerID int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Card{}).
		Select("id", "tcgplayer_id").
		Where("tcgplayer_id IN ?", tcgIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	ids := make(map[int64]int64, len(rows))
	for _, row := range rows {
		ids[row.TcgplayerID] = row.ID
	}
	return ids, nil
}

func (r *cardRepo) FindWithoutPriceOn(ctx context.Context, day time.Time) ([]CardPriceRef, error) {
	var refs []CardPriceRef
	err := r.db.WithContext(ctx).
		Model(&model.Card{}).
		Select("cards.id", "cards.tcgplayer_id").
		Where("NOT EXISTS (SELECT 1 FROM prices WHERE prices.card_id = cards.id AND prices.created = ?)", day).
		Order("cards.id ASC").
		Scan(&refs).Error
	return refs, err
}

func (r *cardRepo) GetByID(ctx context.Context, id int64) (*model.Card, error) {
	var card model.Card
	err := r.db.WithContext(ctx).
		Preload("CardSet").
		First(&card, id).Error
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *cardRepo) List(ctx context.Context, filter CardFilter) ([]model.Card, error) {
	if filter.Limit <= 0 || filter.Limit > defaultCardPageSize {
		filter.Limit = defaultCardPageSize
	}

	query := r.db.WithContext(ctx).Model(&model.Card{}).Preload("CardSet")

	// 游标分页：靠主键单调递增翻页，深分页不退化
	if filter.LastID > 0 {
		query = query.Where("cards.id > ?", filter.LastID)
	}
	if filter.SetID > 0 {
		query = query.Where("card_set_id = ?", filter.SetID)
	}
	if filter.Rarity != "" {
		query = query.Where("rarity = ?", filter.Rarity)
	}
	if filter.Keyword != "" {
		query = query.Where("cards.name LIKE ?", "%"+filter.Keyword+"%")
	}

	var cards []model.Card
	err := query.
		Order("cards.id ASC").
		Limit(filter.Limit).
		Find(&cards).Error
	return cards, err
}

func (r *cardRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Card{}).Count(&count).Error
	return count, err
}
