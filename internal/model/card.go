package model

import "gorm.io/datatypes"

// Card 单张卡牌（TCGplayer 侧的 Product）
// 同步只做插入：tcgplayer_id 上的唯一索引保证重复同步不会产生重复行
// 可空文本字段统一用 *string，空串在映射阶段已转为 nil
type Card struct {
	BaseModel

	// --- TCGplayer 身份标识 ---
	TcgplayerID int64 `gorm:"uniqueIndex;not null" json:"tcgplayer_id"`

	// --- 所属系列 ---
	CardSetID int64    `gorm:"index;not null" json:"card_set_id"`
	CardSet   *CardSet `gorm:"foreignKey:CardSetID" json:"card_set,omitempty"`

	// --- 卡牌信息 ---
	Name            string  `gorm:"size:255;not null;index" json:"name"`
	CollectorNumber *string `gorm:"size:20" json:"collector_number"`
	Rarity          *string `gorm:"size:10;index" json:"rarity"`
	Type            *string `gorm:"size:100" json:"type"`
	Power           *string `gorm:"size:10" json:"power"`     // 允许 "*" 之类的非数字取值
	Toughness       *string `gorm:"size:10" json:"toughness"` // 同上
	OracleText      *string `gorm:"type:text" json:"oracle_text"`
	FlavorText      *string `gorm:"type:text" json:"flavor_text"`

	// --- 资源地址 ---
	URL      *string `gorm:"size:512" json:"url"`
	ImageURL *string `gorm:"size:512" json:"image_url"`

	// --- 原始扩展属性（摊平后的 extendedData，留档备查）---
	ExtendedRaw datatypes.JSON `gorm:"type:jsonb" json:"-"`

	// --- 关联关系 ---
	Prices []Price `gorm:"foreignKey:CardID" json:"-"`
}

func (Card) TableName() string {
	return "cards"
}
