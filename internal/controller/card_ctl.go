package controller

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"tcg_sync_v1_202608/internal/repository"
)

// CardController 卡牌查询控制器
type CardController struct {
	setRepo  repository.CardSetRepository
	cardRepo repository.CardRepository
}

// NewCardController 创建卡牌查询控制器
func NewCardController(setRepo repository.CardSetRepository, cardRepo repository.CardRepository) *CardController {
	return &CardController{
		setRepo:  setRepo,
		cardRepo: cardRepo,
	}
}

// ==================== Handler 实现 ====================

// GetCards 查询卡牌列表（游标分页）
// @Summary 查询卡牌列表
// @Tags Card
// @Param last_id query int false "游标：上一页最后一张卡的 ID"
// @Param limit query int false "每页条数，默认 250"
// @Param set_id query int false "按系列过滤"
// @Param rarity query string false "按稀有度过滤"
// @Param q query string false "按名称模糊搜索"
// @Success 200 {object} map[string]interface{}
// @Router /api/cards [get]
func (c *CardController) GetCards(ctx *gin.Context) {
	filter := repository.CardFilter{
		LastID:  parseQueryInt64(ctx, "last_id"),
		SetID:   parseQueryInt64(ctx, "set_id"),
		Rarity:  ctx.Query("rarity"),
		Keyword: ctx.Query("q"),
	}
	if limit := parseQueryInt64(ctx, "limit"); limit > 0 {
		filter.Limit = int(limit)
	}

	cards, err := c.cardRepo.List(ctx.Request.Context(), filter)
	if err != nil {
		ctx.JSON(500, gin.H{"code": 500, "message": "查询卡牌失败"})
		return
	}

	// 返回本页最后一个 ID 作为下一页游标，空页表示翻完了
	var lastID int64
	if len(cards) > 0 {
		lastID = cards[len(cards)-1].ID
	}

	ctx.JSON(200, gin.H{
		"code": 200,
		"data": gin.H{
			"items":   cards,
			"count":   len(cards),
			"last_id": lastID,
		},
	})
}

// GetCard 查询单张卡牌详情
// @Summary 查询单张卡牌
// @Tags Card
// @Param id path int true "卡牌 ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/cards/{id} [get]
func (c *CardController) GetCard(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(400, gin.H{"code": 400, "message": "无效的卡牌 ID"})
		return
	}

	card, err := c.cardRepo.GetByID(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(404, gin.H{"code": 404, "message": "卡牌不存在"})
			return
		}
		ctx.JSON(500, gin.H{"code": 500, "message": "查询卡牌失败"})
		return
	}

	ctx.JSON(200, gin.H{
		"code": 200,
		"data": card,
	})
}

// GetSets 查询系列列表
// @Summary 查询全部卡牌系列
// @Tags Card
// @Success 200 {object} map[string]interface{}
// @Router /api/sets [get]
func (c *CardController) GetSets(ctx *gin.Context) {
	sets, err := c.setRepo.List(ctx.Request.Context())
	if err != nil {
		ctx.JSON(500, gin.H{"code": 500, "message": "查询系列失败"})
		return
	}

	ctx.JSON(200, gin.H{
		"code": 200,
		"data": gin.H{
			"items": sets,
			"count": len(sets),
		},
	})
}

// ==================== 工具函数 ====================

func parseQueryInt64(ctx *gin.Context, key string) int64 {
	s := ctx.Query(key)
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
