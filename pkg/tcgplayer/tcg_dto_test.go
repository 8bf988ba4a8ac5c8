package tcgplayer

import "testing"

func TestProductDTO_FoldExtendedData(t *testing.T) {
	p := ProductDTO{
		ProductID: 9001,
		Name:      "Dragon",
		ExtendedData: []ExtendedField{
			{Name: "Rarity", Value: "R"},
			{Name: "Number", Value: "42"},
			{Name: "Rarity", Value: "M"}, // 同名属性后者覆盖前者
		},
	}

	p.FoldExtendedData()

	if got := p.Extended["Rarity"]; got != "M" {
		t.Errorf("Rarity 摊平结果错误: got %q, want %q", got, "M")
	}
	if got := p.Extended["Number"]; got != "42" {
		t.Errorf("Number 摊平结果错误: got %q, want %q", got, "42")
	}
}

func TestProductDTO_FoldExtendedData_Empty(t *testing.T) {
	p := ProductDTO{ProductID: 1}
	p.FoldExtendedData()

	if p.Extended == nil {
		t.Fatal("摊平空扩展属性应得到空映射而不是 nil")
	}
	if len(p.Extended) != 0 {
		t.Errorf("空扩展属性摊平后应为空: got %v", p.Extended)
	}
}

func TestPriceDTO_HasAnyPrice(t *testing.T) {
	price := 1.25

	tests := []struct {
		name string
		dto  PriceDTO
		want bool
	}{
		{
			name: "四个价位全空",
			dto:  PriceDTO{ProductID: 1},
			want: false,
		},
		{
			name: "仅市场价",
			dto:  PriceDTO{ProductID: 1, MarketPrice: &price},
			want: true,
		},
		{
			name: "仅最低价",
			dto:  PriceDTO{ProductID: 1, LowPrice: &price},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dto.HasAnyPrice(); got != tt.want {
				t.Errorf("HasAnyPrice() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPriceDTO_IsFoil(t *testing.T) {
	tests := []struct {
		name    string
		subType string
		want    bool
	}{
		{"普通报价", "Normal", false},
		{"闪卡报价", "Foil", true},
		{"空类型", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dto := PriceDTO{SubTypeName: tt.subType}
			if got := dto.IsFoil(); got != tt.want {
				t.Errorf("IsFoil(%q) = %v, want %v", tt.subType, got, tt.want)
			}
		})
	}
}
