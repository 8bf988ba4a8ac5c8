package tcgplayer

// ==================== 鉴权 ====================

// TokenResp 客户端凭证换取的 Bearer 令牌响应
type TokenResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ==================== 目录 ====================

// GroupDTO 卡牌系列（TCGplayer 分类下的 Group）
type GroupDTO struct {
	GroupID      int64  `json:"groupId"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"` // 系列缩写，如 "TST"
	PublishedOn  string `json:"publishedOn"`  // 发售日期，如 "2024-01-01" 或带时间后缀
}

// ExtendedField 商品扩展属性的 {name, value} 对
type ExtendedField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProductDTO 单个商品（卡牌）
// 原始响应里 extendedData 是数组，客户端返回前会调用 FoldExtendedData
// 摊平成 Extended 映射，下游只消费摊平后的字段
type ProductDTO struct {
	ProductID    int64           `json:"productId"`
	Name         string          `json:"name"`
	GroupID      int64           `json:"groupId"`
	URL          string          `json:"url"`
	ImageURL     string          `json:"imageUrl"`
	ExtendedData []ExtendedField `json:"extendedData"`

	// Extended 摊平后的扩展属性：Rarity、Number、P、T、SubType、OracleText、FlavorText
	Extended map[string]string `json:"-"`
}

// FoldExtendedData 把 extendedData 数组摊平成按属性名索引的映射
// 同名属性后者覆盖前者
func (p *ProductDTO) FoldExtendedData() {
	p.Extended = make(map[string]string, len(p.ExtendedData))
	for _, f := range p.ExtendedData {
		p.Extended[f.Name] = f.Value
	}
}

// ==================== 价格 ====================

// PriceDTO 单条价格报价，按普通/闪卡（subTypeName）区分，四个价位均可能为空
type PriceDTO struct {
	ProductID   int64    `json:"productId"`
	LowPrice    *float64 `json:"lowPrice"`
	MidPrice    *float64 `json:"midPrice"`
	HighPrice   *float64 `json:"highPrice"`
	MarketPrice *float64 `json:"marketPrice"`
	SubTypeName string   `json:"subTypeName"` // "Normal" / "Foil"
}

// HasAnyPrice 是否存在至少一个非空价位，全空的报价没有入库价值
func (p *PriceDTO) HasAnyPrice() bool {
	return p.LowPrice != nil || p.MidPrice != nil || p.HighPrice != nil || p.MarketPrice != nil
}

// IsFoil 是否为闪卡报价
func (p *PriceDTO) IsFoil() bool {
	return p.SubTypeName == "Foil"
}

// ==================== 列表响应 ====================

type GroupListResp struct {
	TotalItems int64      `json:"totalItems"`
	Results    []GroupDTO `json:"results"`
}

type ProductListResp struct {
	TotalItems int64        `json:"totalItems"`
	Results    []ProductDTO `json:"results"`
}

type PriceListResp struct {
	Results []PriceDTO `json:"results"`
}
