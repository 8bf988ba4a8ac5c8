package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tcg_sync_v1_202608/internal/model"
	"tcg_sync_v1_202608/internal/repository"
	"tcg_sync_v1_202608/pkg/tcgplayer"
)

// syncQueue 测试用同步队列，投递即执行
type syncQueue struct {
	jobs []string
}

func (q *syncQueue) Enqueue(name string, run func(ctx context.Context) error) error {
	q.jobs = append(q.jobs, name)
	return run(context.Background())
}

func setupSyncTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	if err := db.AutoMigrate(&model.CardSet{}, &model.Card{}, &model.Price{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	return db
}

// newFakeTCGServer 模拟 TCGplayer API：一个系列、一张真卡、一个衍生物
func newFakeTCGServer(t *testing.T) *httptest.Server {
	market := 1.25
	low := 0.5

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/token":
			json.NewEncoder(w).Encode(tcgplayer.TokenResp{AccessToken: "tok"})

		case strings.Contains(r.URL.Path, "/groups"):
			if r.URL.Query().Get("offset") != "0" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(tcgplayer.GroupListResp{
				TotalItems: 1,
				Results: []tcgplayer.GroupDTO{
					{GroupID: 501, Name: "Test Set", Abbreviation: "TST", PublishedOn: "2024-01-01"},
				},
			})

		case r.URL.Path == "/catalog/products":
			if r.URL.Query().Get("offset") != "0" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(tcgplayer.ProductListResp{
				TotalItems: 2,
				Results: []tcgplayer.ProductDTO{
					{
						ProductID: 9001,
						Name:      "Dragon",
						GroupID:   501,
						ImageURL:  "https://img.example.com/9001_200w.jpg",
						ExtendedData: []tcgplayer.ExtendedField{
							{Name: "Rarity", Value: "M"},
							{Name: "OracleText", Value: "Flying.\r\n"},
						},
					},
					{
						ProductID: 9002,
						Name:      "Dragon Token",
						GroupID:   501,
						ExtendedData: []tcgplayer.ExtendedField{
							{Name: "Rarity", Value: "T"},
						},
					},
				},
			})

		case strings.Contains(r.URL.Path, "/pricing/product/"):
			json.NewEncoder(w).Encode(tcgplayer.PriceListResp{
				Results: []tcgplayer.PriceDTO{
					{ProductID: 9001, LowPrice: &low, MarketPrice: &market, SubTypeName: "Normal"},
					// 四个价位全空的闪卡报价应被丢弃
					{ProductID: 9001, SubTypeName: "Foil"},
				},
			})

		default:
			t.Errorf("意外的请求路径: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newTestSyncService(t *testing.T, baseURL string) (*SyncService, *syncQueue, *gorm.DB) {
	db := setupSyncTestDB(t)
	queue := &syncQueue{}

	svc := NewSyncService(
		newTestTCGService(baseURL),
		repository.NewCardSetRepository(db),
		repository.NewCardRepository(db),
		repository.NewPriceRepository(db),
		queue,
		nil,
	)
	return svc, queue, db
}

func TestSyncService_SyncCatalog(t *testing.T) {
	server := newFakeTCGServer(t)
	defer server.Close()

	svc, queue, db := newTestSyncService(t, server.URL)
	ctx := context.Background()

	if err := svc.SyncCatalog(ctx); err != nil {
		t.Fatalf("目录同步失败: %v", err)
	}

	// 系列入库
	var set model.CardSet
	if err := db.Where("tcgplayer_id = ?", 501).First(&set).Error; err != nil {
		t.Fatalf("系列未入库: %v", err)
	}
	if set.Name != "Test Set" || set.Code != "TST" {
		t.Errorf("系列字段错误: %+v", set)
	}

	// 每个系列扇出一个卡牌子任务
	if len(queue.jobs) != 1 || queue.jobs[0] != "fetch_cards:Test Set" {
		t.Errorf("扇出任务错误: %v", queue.jobs)
	}

	// 真卡入库，衍生物被过滤
	var cards []model.Card
	if err := db.Find(&cards).Error; err != nil {
		t.Fatalf("查询卡牌失败: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("卡牌数 = %d, want 1（衍生物应被过滤）", len(cards))
	}

	card := cards[0]
	if card.TcgplayerID != 9001 || card.Name != "Dragon" {
		t.Errorf("卡牌字段错误: %+v", card)
	}
	if card.CardSetID != set.ID {
		t.Errorf("卡牌未挂到本地系列主键: CardSetID = %d, want %d", card.CardSetID, set.ID)
	}
	if card.OracleText == nil || *card.OracleText != "Flying." {
		t.Errorf("规则文本未清洗: %v", card.OracleText)
	}
	if card.ImageURL == nil || !strings.Contains(*card.ImageURL, "400w") {
		t.Errorf("图片地址未升级: %v", card.ImageURL)
	}
}

func TestSyncService_SyncCatalog_Idempotent(t *testing.T) {
	server := newFakeTCGServer(t)
	defer server.Close()

	svc, _, db := newTestSyncService(t, server.URL)
	ctx := context.Background()

	if err := svc.SyncCatalog(ctx); err != nil {
		t.Fatalf("第一次目录同步失败: %v", err)
	}
	if err := svc.SyncCatalog(ctx); err != nil {
		t.Fatalf("第二次目录同步失败: %v", err)
	}

	var setCount, cardCount int64
	db.Model(&model.CardSet{}).Count(&setCount)
	db.Model(&model.Card{}).Count(&cardCount)

	if setCount != 1 {
		t.Errorf("重复同步后系列数 = %d, want 1", setCount)
	}
	if cardCount != 1 {
		t.Errorf("重复同步后卡牌数 = %d, want 1", cardCount)
	}
}

func TestSyncService_SyncPrices(t *testing.T) {
	server := newFakeTCGServer(t)
	defer server.Close()

	svc, queue, db := newTestSyncService(t, server.URL)
	ctx := context.Background()

	if err := svc.SyncCatalog(ctx); err != nil {
		t.Fatalf("目录同步失败: %v", err)
	}

	if err := svc.SyncPrices(ctx); err != nil {
		t.Fatalf("价格同步失败: %v", err)
	}

	var prices []model.Price
	if err := db.Find(&prices).Error; err != nil {
		t.Fatalf("查询价格失败: %v", err)
	}
	// 全空的闪卡报价被丢弃，只剩普通报价
	if len(prices) != 1 {
		t.Fatalf("价格数 = %d, want 1", len(prices))
	}

	price := prices[0]
	if price.Foil {
		t.Error("普通报价的 Foil 应为 false")
	}
	if price.Market == nil || *price.Market != 1.25 {
		t.Errorf("Market = %v, want 1.25", price.Market)
	}
	if price.Mid != nil || price.High != nil {
		t.Error("缺失价位应保持 nil")
	}

	// 今天已有快照，再跑一轮不该扇出新批次
	jobsBefore := len(queue.jobs)
	if err := svc.SyncPrices(ctx); err != nil {
		t.Fatalf("第二次价格同步失败: %v", err)
	}
	if len(queue.jobs) != jobsBefore {
		t.Errorf("已有快照仍扇出了批次: %v", queue.jobs[jobsBefore:])
	}

	var priceCount int64
	db.Model(&model.Price{}).Count(&priceCount)
	if priceCount != 1 {
		t.Errorf("重复同步后价格数 = %d, want 1", priceCount)
	}
}

// captureReporter 记录上报错误的 Reporter
type captureReporter struct {
	reported []error
}

func (r *captureReporter) Report(err error, context map[string]interface{}) {
	r.reported = append(r.reported, err)
}

func TestSyncService_FetchGroupCards_SetNotSynced(t *testing.T) {
	server := newFakeTCGServer(t)
	defer server.Close()

	svc, _, db := newTestSyncService(t, server.URL)
	reporter := &captureReporter{}
	svc.Reporter = reporter
	ctx := context.Background()

	// 系列未入库：整批跳过并留痕，不算任务失败
	if err := svc.FetchGroupCards(ctx, 501); err != nil {
		t.Fatalf("系列缺失应跳过而不是报错: %v", err)
	}
	if len(reporter.reported) != 1 {
		t.Errorf("跳过应上报一次, got %d", len(reporter.reported))
	}

	var cardCount int64
	db.Model(&model.Card{}).Count(&cardCount)
	if cardCount != 0 {
		t.Errorf("跳过后不应有卡牌入库, got %d", cardCount)
	}
}

func TestSplitPriceBatches(t *testing.T) {
	tests := []struct {
		name        string
		total       int
		size        int
		wantBatches int
	}{
		{"空清单", 0, 250, 0},
		{"不足一批", 10, 250, 1},
		{"整批", 500, 250, 2},
		{"带尾批", 501, 250, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refs := make([]repository.CardPriceRef, tt.total)
			for i := range refs {
				refs[i] = repository.CardPriceRef{ID: int64(i + 1), TcgplayerID: int64(1000 + i)}
			}

			batches := SplitPriceBatches(refs, tt.size)
			if len(batches) != tt.wantBatches {
				t.Fatalf("批次数 = %d, want %d", len(batches), tt.wantBatches)
			}

			// 每张卡恰好出现一次
			seen := make(map[int64]bool, tt.total)
			for _, batch := range batches {
				if len(batch) == 0 || len(batch) > tt.size {
					t.Errorf("批大小越界: %d", len(batch))
				}
				for _, ref := range batch {
					if seen[ref.ID] {
						t.Errorf("卡牌 %d 出现在多个批次", ref.ID)
					}
					seen[ref.ID] = true
				}
			}
			if len(seen) != tt.total {
				t.Errorf("覆盖卡牌数 = %d, want %d", len(seen), tt.total)
			}
		})
	}
}

func TestPriceDay(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	input := time.Date(2026, 8, 30, 23, 30, 0, 0, loc) // UTC 为 8 月 30 日 15:30

	day := PriceDay(input)

	want := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	if !day.Equal(want) {
		t.Errorf("PriceDay = %v, want %v", day, want)
	}
}
