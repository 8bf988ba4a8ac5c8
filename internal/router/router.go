package router

import (
	"github.com/gin-gonic/gin"

	"tcg_sync_v1_202608/internal/controller"
	"tcg_sync_v1_202608/internal/middleware"
)

// Controllers 路由依赖的控制器集合
type Controllers struct {
	Sync  *controller.SyncController
	Card  *controller.CardController
	Price *controller.PriceController
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, ctl Controllers, apiKeys []string) {
	// 1. 健康检查，不鉴权
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"ping": "pong"})
	})

	// 2. API 路由组，整组走 API Key 认证
	api := r.Group("/api")
	api.Use(middleware.APIKeyAuth(apiKeys))
	{
		// sync 同步触发
		sync := api.Group("/sync")
		{
			// POST /api/sync/catalog
			sync.POST("/catalog",
				middleware.SyncRateLimit(middleware.SyncTypeCatalog, 0),
				ctl.Sync.SyncCatalog)

			// POST /api/sync/prices
			sync.POST("/prices",
				middleware.SyncRateLimit(middleware.SyncTypePrice, 0),
				ctl.Sync.SyncPrices)

			// GET /api/sync/status
			sync.GET("/status", ctl.Sync.Status)
		}

		// cards 卡牌查询
		cards := api.Group("/cards")
		{
			// GET /api/cards
			cards.GET("", ctl.Card.GetCards)
			cards.GET("/:id", ctl.Card.GetCard)

			// GET /api/cards/:id/prices
			cards.GET("/:id/prices", ctl.Price.GetCardPrices)
		}

		// sets 系列查询
		api.GET("/sets", ctl.Card.GetSets)
	}
}
