package controller

import (
	"errors"

	"github.com/gin-gonic/gin"

	"tcg_sync_v1_202608/internal/task"
)

// SyncController 同步控制器
type SyncController struct {
	taskManager *task.TaskManager
}

// NewSyncController 创建同步控制器
func NewSyncController(taskManager *task.TaskManager) *SyncController {
	return &SyncController{taskManager: taskManager}
}

// ==================== Handler 实现 ====================

// SyncCatalog 触发目录同步
// @Summary 手动触发目录（系列 + 卡牌）同步
// @Tags Sync
// @Success 200 {object} map[string]interface{}
// @Failure 429 {object} map[string]interface{} "限流中"
// @Failure 503 {object} map[string]interface{} "队列已满"
// @Router /api/sync/catalog [post]
func (c *SyncController) SyncCatalog(ctx *gin.Context) {
	if err := c.taskManager.TriggerCatalogSync(); err != nil {
		c.renderEnqueueError(ctx, err)
		return
	}

	ctx.JSON(200, gin.H{
		"code":    200,
		"message": "目录同步已触发",
	})
}

// SyncPrices 触发价格同步
// @Summary 手动触发当日价格快照同步
// @Tags Sync
// @Success 200 {object} map[string]interface{}
// @Failure 429 {object} map[string]interface{} "限流中"
// @Failure 503 {object} map[string]interface{} "队列已满"
// @Router /api/sync/prices [post]
func (c *SyncController) SyncPrices(ctx *gin.Context) {
	if err := c.taskManager.TriggerPriceSync(); err != nil {
		c.renderEnqueueError(ctx, err)
		return
	}

	ctx.JSON(200, gin.H{
		"code":    200,
		"message": "价格同步已触发",
	})
}

// Status 查询同步任务状态
// @Summary 查询任务队列状态
// @Tags Sync
// @Success 200 {object} map[string]interface{}
// @Router /api/sync/status [get]
func (c *SyncController) Status(ctx *gin.Context) {
	ctx.JSON(200, gin.H{
		"code": 200,
		"data": c.taskManager.Status(),
	})
}

// ==================== 工具函数 ====================

func (c *SyncController) renderEnqueueError(ctx *gin.Context, err error) {
	if errors.Is(err, task.ErrQueueFull) {
		ctx.JSON(503, gin.H{"code": 503, "message": "任务队列已满，请稍后重试"})
		return
	}
	ctx.JSON(500, gin.H{"code": 500, "message": err.Error()})
}
