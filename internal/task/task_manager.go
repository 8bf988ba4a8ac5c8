package task

import (
	"log"

	"github.com/robfig/cron/v3"

	"tcg_sync_v1_202608/internal/service"
)

// ==================== TaskManager 同步任务管理器 ====================

// TaskManager 统一管理目录 / 价格两类同步
// 周期触发走 cron，手动触发走 HTTP 接口，两条路最终都只是往队列里投一个顶层任务
type TaskManager struct {
	queue   *Queue
	syncSvc *service.SyncService
	cron    *cron.Cron
	config  *TaskManagerConfig
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	Workers     int
	QueueBuffer int

	// 周期调度
	CronEnabled bool
	CatalogSpec string // 目录同步 cron 表达式（秒级）
	PriceSpec   string // 价格同步 cron 表达式（秒级）
}

// DefaultConfig 默认配置：每周日凌晨 4 点同步目录，每天凌晨 6 点同步价格
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		Workers:     4,
		QueueBuffer: 1024,
		CronEnabled: true,
		CatalogSpec: "0 0 4 * * 0",
		PriceSpec:   "0 0 6 * * *",
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(queue *Queue, syncSvc *service.SyncService, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &TaskManager{
		queue:   queue,
		syncSvc: syncSvc,
		cron:    cron.New(cron.WithSeconds()),
		config:  cfg,
	}
}

// ==================== 生命周期管理 ====================

// Start 启动队列和周期调度
func (tm *TaskManager) Start() error {
	log.Println("[TaskManager] 正在启动同步任务...")
	tm.queue.Start()

	if tm.config.CronEnabled {
		if _, err := tm.cron.AddFunc(tm.config.CatalogSpec, func() {
			if err := tm.TriggerCatalogSync(); err != nil {
				log.Printf("[TaskManager] 周期目录同步触发失败: %v", err)
			}
		}); err != nil {
			return err
		}
		if _, err := tm.cron.AddFunc(tm.config.PriceSpec, func() {
			if err := tm.TriggerPriceSync(); err != nil {
				log.Printf("[TaskManager] 周期价格同步触发失败: %v", err)
			}
		}); err != nil {
			return err
		}
		tm.cron.Start()
		log.Printf("[TaskManager] 周期调度已启动（目录: %s，价格: %s）", tm.config.CatalogSpec, tm.config.PriceSpec)
	}

	log.Println("[TaskManager] 同步任务已全部启动")
	return nil
}

// Stop 停止调度并排空队列
func (tm *TaskManager) Stop() {
	log.Println("[TaskManager] 正在停止同步任务...")
	<-tm.cron.Stop().Done()
	tm.queue.Stop()
	log.Println("[TaskManager] 同步任务已全部停止")
}

// ==================== 手动触发接口 ====================

// TriggerCatalogSync 触发目录同步（投递顶层任务后立即返回）
func (tm *TaskManager) TriggerCatalogSync() error {
	return tm.queue.Enqueue("catalog_sync", tm.syncSvc.SyncCatalog)
}

// TriggerPriceSync 触发价格同步
func (tm *TaskManager) TriggerPriceSync() error {
	return tm.queue.Enqueue("price_sync", tm.syncSvc.SyncPrices)
}

// ==================== 状态查询 ====================

// Status 队列状态快照
func (tm *TaskManager) Status() map[string]interface{} {
	stats := tm.queue.Stats()
	return map[string]interface{}{
		"workers":      tm.config.Workers,
		"cron_enabled": tm.config.CronEnabled,
		"pending":      tm.queue.Pending(),
		"queued":       stats[JobQueued],
		"running":      stats[JobRunning],
		"completed":    stats[JobCompleted],
		"failed":       stats[JobFailed],
	}
}
