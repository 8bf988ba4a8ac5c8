package model

import "time"

// Price 每日价格快照，按普通/闪卡分行
// 只追加不覆盖：(card_id, foil, created) 唯一索引保证同一天重复同步是 no-op，
// 历史快照长期累积，支撑时间序列查询
// 不挂 BaseModel：快照没有更新和软删除的概念
type Price struct {
	ID int64 `gorm:"primaryKey" json:"id"`

	// --- 所属卡牌 ---
	CardID int64 `gorm:"not null;uniqueIndex:idx_price_card_foil_day" json:"card_id"`
	Card   *Card `gorm:"foreignKey:CardID" json:"-"`

	// --- 报价维度 ---
	Foil bool `gorm:"not null;uniqueIndex:idx_price_card_foil_day" json:"foil"`

	// --- 四个价位，各自独立可空，但入库前保证至少一个非空 ---
	Low    *float64 `gorm:"type:decimal(10,2)" json:"low"`
	Mid    *float64 `gorm:"type:decimal(10,2)" json:"mid"`
	High   *float64 `gorm:"type:decimal(10,2)" json:"high"`
	Market *float64 `gorm:"type:decimal(10,2)" json:"market"`

	// --- 快照日（UTC 自然日，一天一份）---
	Created time.Time `gorm:"type:date;not null;uniqueIndex:idx_price_card_foil_day" json:"created"`
}

func (Price) TableName() string {
	return "prices"
}
