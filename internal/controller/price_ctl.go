package controller

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"tcg_sync_v1_202608/internal/repository"
)

// PriceController 价格查询控制器
type PriceController struct {
	cardRepo  repository.CardRepository
	priceRepo repository.PriceRepository
}

// NewPriceController 创建价格查询控制器
func NewPriceController(cardRepo repository.CardRepository, priceRepo repository.PriceRepository) *PriceController {
	return &PriceController{
		cardRepo:  cardRepo,
		priceRepo: priceRepo,
	}
}

// ==================== Handler 实现 ====================

// GetCardPrices 查询某张卡牌的价格时间序列
// @Summary 查询卡牌价格历史
// @Tags Price
// @Param id path int true "卡牌 ID"
// @Param foil query bool false "只看普通或闪卡报价，不传则都返回"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/cards/{id}/prices [get]
func (c *PriceController) GetCardPrices(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(400, gin.H{"code": 400, "message": "无效的卡牌 ID"})
		return
	}

	// 先确认卡牌存在，区分 404 和单纯没有价格
	if _, err := c.cardRepo.GetByID(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(404, gin.H{"code": 404, "message": "卡牌不存在"})
			return
		}
		ctx.JSON(500, gin.H{"code": 500, "message": "查询卡牌失败"})
		return
	}

	var foil *bool
	if s := ctx.Query("foil"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			ctx.JSON(400, gin.H{"code": 400, "message": "无效的 foil 参数"})
			return
		}
		foil = &v
	}

	prices, err := c.priceRepo.ListByCard(ctx.Request.Context(), id, foil)
	if err != nil {
		ctx.JSON(500, gin.H{"code": 500, "message": "查询价格失败"})
		return
	}

	ctx.JSON(200, gin.H{
		"code": 200,
		"data": gin.H{
			"card_id": id,
			"items":   prices,
			"count":   len(prices),
		},
	})
}
