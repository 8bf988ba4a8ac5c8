package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tcg_sync_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// CardSetRepository 卡牌系列仓储接口
type CardSetRepository interface {
	// UpsertBatch 批量插入系列，tcgplayer_id 已存在的行跳过
	// 重复调用、输入集合重叠都安全（幂等是硬性要求，同步可能被重跑）
	UpsertBatch(ctx context.Context, sets []model.CardSet) error

	// MapTcgplayerIDs 把 TCGplayer ID 批量换成本地主键，查不到的不在结果里
	MapTcgplayerIDs(ctx context.Context, tcgIDs []int64) (map[int64]int64, error)

	GetByTcgplayerID(ctx context.Context, tcgID int64) (*model.CardSet, error)
	List(ctx context.Context) ([]model.CardSet, error)
	Count(ctx context.Context) (int64, error)
}

// ==================== 仓储实现 ====================

type cardSetRepo struct {
	db *gorm.DB
}

// NewCardSetRepository 创建卡牌系列仓储
func NewCardSetRepository(db *gorm.DB) CardSetRepository {
	return &cardSetRepo{db: db}
}

func (r *cardSetRepo) UpsertBatch(ctx context.Context, sets []model.CardSet) error {
	if len(sets) == 0 {
		return nil
	}
	// 幂等靠 tcgplayer_id 唯一索引兜底，冲突即跳过，不走先查后插
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tcgplayer_id"}},
		DoNothing: true,
	}).CreateInBatches(&sets, 500).Error
}

func (r *cardSetRepo) MapTcgplayerIDs(ctx context.Context, tcgIDs []int64) (map[int64]int64, error) {
	if len(tcgIDs) == 0 {
		return map[int64]int64{}, nil
	}

	var rows []struct {
		ID          int64
		TcgplayerID int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.CardSet{}).
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

func (r *cardSetRepo) GetByTcgplayerID(ctx context.Context, tcgID int64) (*model.CardSet, error) {
	var set model.CardSet
	err := r.db.WithContext(ctx).
		Where("tcgplayer_id = ?", tcgID).
		First(&set).Error
	if err != nil {
		return nil, err
	}
	return &set, nil
}

func (r *cardSetRepo) List(ctx context.Context) ([]model.CardSet, error) {
	var sets []model.CardSet
	err := r.db.WithContext(ctx).
		Order("released DESC, name ASC").
		Find(&sets).Error
	return sets, err
}

func (r *cardSetRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CardSet{}).Count(&count).Error
	return count, err
}
