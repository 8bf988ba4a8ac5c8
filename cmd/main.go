package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"tcg_sync_v1_202608/internal/controller"
	"tcg_sync_v1_202608/internal/model"
	"tcg_sync_v1_202608/internal/repository"
	"tcg_sync_v1_202608/internal/router"
	"tcg_sync_v1_202608/internal/service"
	"tcg_sync_v1_202608/internal/task"
	"tcg_sync_v1_202608/pkg/database"
	"tcg_sync_v1_202608/pkg/report"
)

func main() {
	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动同步任务
	if err := deps.TaskManager.Start(); err != nil {
		log.Fatalf("同步任务启动失败: %v", err)
	}

	// 4. 初始化路由
	r := gin.Default()
	router.InitRoutes(r, deps.Controllers, deps.APIKeys)

	// 5. 启动服务
	startServer(r, deps)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Reporter    report.Reporter
	Queue       *task.Queue
	TaskManager *task.TaskManager
	Controllers router.Controllers
	APIKeys     []string
}

// Repositories 仓库集合
type Repositories struct {
	Set   repository.CardSetRepository
	Card  repository.CardRepository
	Price repository.PriceRepository
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_DSN",
		"host=localhost user=postgres password=postgres dbname=tcg_sync port=5432 sslmode=disable")
	return database.InitDB(dsn,
		&model.CardSet{}, &model.Card{}, &model.Price{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Set:   repository.NewCardSetRepository(db),
		Card:  repository.NewCardRepository(db),
		Price: repository.NewPriceRepository(db),
	}

	// -------- 错误上报 --------
	reporter := report.NewRollbarReporter(
		getEnv("ROLLBAR_TOKEN", ""),
		getEnv("ROLLBAR_ENV", "production"),
	)

	// -------- TCGplayer 客户端 --------
	tcgSvc := service.NewTCGPlayerService(service.TCGPlayerConfig{
		BaseURL:    getEnv("TCGPLAYER_BASE_URL", ""),
		PublicKey:  getEnv("TCGPLAYER_PUBLIC_KEY", ""),
		PrivateKey: getEnv("TCGPLAYER_PRIVATE_KEY", ""),
		RetryCount: 2,
	})

	// -------- 任务队列 & 同步服务 --------
	workers := getEnvInt("SYNC_WORKERS", 4)
	queue := task.NewQueue(workers, 1024, reporter)
	syncSvc := service.NewSyncService(tcgSvc, repos.Set, repos.Card, repos.Price, queue, reporter)

	taskCfg := task.DefaultConfig()
	taskCfg.Workers = workers
	taskCfg.CronEnabled = getEnv("CRON_ENABLED", "true") == "true"
	taskManager := task.NewTaskManager(queue, syncSvc, taskCfg)

	// -------- Controller 层 --------
	controllers := router.Controllers{
		Sync:  controller.NewSyncController(taskManager),
		Card:  controller.NewCardController(repos.Set, repos.Card),
		Price: controller.NewPriceController(repos.Card, repos.Price),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Reporter:    reporter,
		Queue:       queue,
		TaskManager: taskManager,
		Controllers: controllers,
		APIKeys:     parseAPIKeys(getEnv("API_KEYS", "")),
	}
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine, deps *Dependencies) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 先停 HTTP 再停任务，避免关停窗口里还有新任务进来
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	deps.TaskManager.Stop()

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

// parseAPIKeys 解析逗号分隔的 API Key 名单
func parseAPIKeys(raw string) []string {
	if raw == "" {
		return nil
	}

	var keys []string
	for _, key := range strings.Split(raw, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}
