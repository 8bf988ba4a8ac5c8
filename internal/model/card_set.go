package model

import "time"

// CardSet 卡牌系列（TCGplayer 侧的 Group，一个系列即一次扩充包发行）
// 同步只做插入，系列一经创建不更新、不删除
type CardSet struct {
	BaseModel

	// --- TCGplayer 身份标识 ---
	TcgplayerID int64 `gorm:"uniqueIndex;not null" json:"tcgplayer_id"` // TCGplayer 侧唯一且稳定的 ID

	// --- 系列信息 ---
	Name     string     `gorm:"size:255;not null" json:"name"`
	Code     string     `gorm:"size:20;index" json:"code"`     // 系列缩写，如 "TST"
	Released *time.Time `gorm:"type:date" json:"released"`     // 发售日期，上游可能缺失

	// --- 关联关系 ---
	Cards []Card `gorm:"foreignKey:CardSetID" json:"-"`
}

func (CardSet) TableName() string {
	return "card_sets"
}
