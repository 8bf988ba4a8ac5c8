package service

import (
	"encoding/json"
	"strings"
	"time"

	"tcg_sync_v1_202608/internal/model"
	"tcg_sync_v1_202608/pkg/tcgplayer"
)

// ==================== 过滤规则 ====================

// excludedRarities 不入库的稀有度（衍生物 Token 不是真实卡牌）
var excludedRarities = map[string]bool{
	"T": true,
}

// IsExcludedRarity 判断商品稀有度是否在排除名单内
func IsExcludedRarity(p *tcgplayer.ProductDTO) bool {
	return excludedRarities[strings.TrimSpace(p.Extended["Rarity"])]
}

// ==================== 字段清洗 ====================

// normalizeText 去首尾空白，空串归一为 nil
func normalizeText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// stripNewlines 去掉文本里的换行符，远端的规则文本常带 \r\n 尾巴
func stripNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	return s
}

// upgradeImageURL 把缩略图地址换成高清版本，只替换第一处
func upgradeImageURL(url string) string {
	return strings.Replace(url, "200w", "400w", 1)
}

// ==================== DTO 转换 ====================

// ToCardSet 把远端系列转换为本地模型
func ToCardSet(g *tcgplayer.GroupDTO) model.CardSet {
	set := model.CardSet{
		TcgplayerID: g.GroupID,
		Name:        strings.TrimSpace(g.Name),
		Code:        strings.TrimSpace(g.Abbreviation),
	}

	// publishedOn 可能带时间后缀，只取日期部分
	if published := strings.TrimSpace(g.PublishedOn); len(published) >= 10 {
		if t, err := time.Parse("2006-01-02", published[:10]); err == nil {
			set.Released = &t
		}
	}

	return set
}

// ToCard 把远端商品转换为本地模型，cardSetID 为本地系列主键
func ToCard(p *tcgplayer.ProductDTO, cardSetID int64) model.Card {
	card := model.Card{
		TcgplayerID:     p.ProductID,
		CardSetID:       cardSetID,
		Name:            strings.TrimSpace(p.Name),
		CollectorNumber: normalizeText(p.Extended["Number"]),
		Rarity:          normalizeText(p.Extended["Rarity"]),
		Type:            normalizeText(p.Extended["SubType"]),
		Power:           normalizeText(p.Extended["P"]),
		Toughness:       normalizeText(p.Extended["T"]),
		OracleText:      normalizeText(stripNewlines(p.Extended["OracleText"])),
		FlavorText:      normalizeText(stripNewlines(p.Extended["FlavorText"])),
		URL:             normalizeText(p.URL),
		ImageURL:        normalizeText(upgradeImageURL(p.ImageURL)),
	}

	if len(p.Extended) > 0 {
		if raw, err := json.Marshal(p.Extended); err == nil {
			card.ExtendedRaw = raw
		}
	}

	return card
}

// ToPrice 把远端报价转换为某张卡某天的快照行
func ToPrice(q *tcgplayer.PriceDTO, cardID int64, day time.Time) model.Price {
	return model.Price{
		CardID:  cardID,
		Foil:    q.IsFoil(),
		Low:     q.LowPrice,
		Mid:     q.MidPrice,
		High:    q.HighPrice,
		Market:  q.MarketPrice,
		Created: day,
	}
}
