package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"tcg_sync_v1_202608/internal/model"
	"tcg_sync_v1_202608/internal/repository"
	"tcg_sync_v1_202608/pkg/report"
)

// PriceBatchSize 单次价格请求携带的商品 ID 上限
const PriceBatchSize = 250

// JobQueue 子任务投递接口，由任务队列实现
// 在这里声明而不是任务包里，避免服务层反向依赖任务层
type JobQueue interface {
	Enqueue(name string, run func(context.Context) error) error
}

// ==================== 同步服务 ====================

// SyncService 目录与价格同步的编排层
// 顶层任务负责拉取清单并拆分，每个系列 / 每个价格批次拆成独立子任务
// 丢回同一个队列，由工作协程池并发消化
type SyncService struct {
	TCG       *TCGPlayerService
	SetRepo   repository.CardSetRepository
	CardRepo  repository.CardRepository
	PriceRepo repository.PriceRepository
	Queue     JobQueue
	Reporter  report.Reporter
}

// NewSyncService 创建同步服务
func NewSyncService(
	tcg *TCGPlayerService,
	setRepo repository.CardSetRepository,
	cardRepo repository.CardRepository,
	priceRepo repository.PriceRepository,
	queue JobQueue,
	reporter report.Reporter,
) *SyncService {
	if reporter == nil {
		reporter = report.NewLogReporter()
	}
	return &SyncService{
		TCG:       tcg,
		SetRepo:   setRepo,
		CardRepo:  cardRepo,
		PriceRepo: priceRepo,
		Queue:     queue,
		Reporter:  reporter,
	}
}

// ==================== 目录同步 ====================

// SyncCatalog 目录同步顶层任务：先同步全部系列，再按系列扇出卡牌子任务
func (s *SyncService) SyncCatalog(ctx context.Context) error {
	token, err := s.TCG.Authenticate(ctx)
	if err != nil {
		return fmt.Errorf("目录同步鉴权失败: %w", err)
	}

	groups, err := s.TCG.ListAllGroups(ctx, token, CategoryMagic)
	if err != nil {
		return fmt.Errorf("拉取系列列表失败: %w", err)
	}
	log.Printf("[Sync] 系列列表拉取完成，共 %d 个系列", len(groups))

	sets := make([]model.CardSet, 0, len(groups))
	for i := range groups {
		sets = append(sets, ToCardSet(&groups[i]))
	}
	if err := s.SetRepo.UpsertBatch(ctx, sets); err != nil {
		return fmt.Errorf("写入系列失败: %w", err)
	}

	// 按名称排序再扇出，任务日志顺序稳定，排查问题好对照
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Name < groups[j].Name
	})

	for i := range groups {
		g := groups[i]
		jobName := fmt.Sprintf("fetch_cards:%s", g.Name)
		err := s.Queue.Enqueue(jobName, func(jobCtx context.Context) error {
			return s.FetchGroupCards(jobCtx, g.GroupID)
		})
		if err != nil {
			// 单个系列投递失败不中断整体扇出，上报后继续
			s.Reporter.Report(fmt.Errorf("系列子任务投递失败: %w", err), map[string]interface{}{
				"group_id":   g.GroupID,
				"group_name": g.Name,
			})
		}
	}

	return nil
}

// FetchGroupCards 单系列卡牌同步子任务
func (s *SyncService) FetchGroupCards(ctx context.Context, groupID int64) error {
	token, err := s.TCG.Authenticate(ctx)
	if err != nil {
		return fmt.Errorf("卡牌同步鉴权失败: %w", err)
	}

	products, err := s.TCG.ListAllProducts(ctx, token, CategoryMagic, groupID)
	if err != nil {
		return fmt.Errorf("拉取系列 %d 商品失败: %w", groupID, err)
	}

	setIDs, err := s.SetRepo.MapTcgplayerIDs(ctx, []int64{groupID})
	if err != nil {
		return fmt.Errorf("解析系列 %d 本地主键失败: %w", groupID, err)
	}
	cardSetID, ok := setIDs[groupID]
	if !ok {
		// 系列还没入库时整批跳过，下一轮目录同步会补上；跳过要留痕
		s.Reporter.Report(fmt.Errorf("系列 %d 尚未入库，跳过 %d 个商品", groupID, len(products)), map[string]interface{}{
			"group_id": groupID,
		})
		return nil
	}

	cards := make([]model.Card, 0, len(products))
	excluded := 0
	for i := range products {
		if IsExcludedRarity(&products[i]) {
			excluded++
			continue
		}
		cards = append(cards, ToCard(&products[i], cardSetID))
	}
	if excluded > 0 {
		log.Printf("[Sync] 系列 %d 过滤掉 %d 个衍生物商品", groupID, excluded)
	}

	if err := s.CardRepo.UpsertBatch(ctx, cards); err != nil {
		return fmt.Errorf("写入系列 %d 卡牌失败: %w", groupID, err)
	}

	log.Printf("[Sync] 系列 %d 卡牌同步完成，共 %d 张", groupID, len(cards))
	return nil
}

// ==================== 价格同步 ====================

// PriceDay 当前价格快照日（UTC 自然日零点）
func PriceDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SyncPrices 价格同步顶层任务：找出今天还没有快照的卡牌，按批扇出价格子任务
func (s *SyncService) SyncPrices(ctx context.Context) error {
	day := PriceDay(time.Now())

	refs, err := s.CardRepo.FindWithoutPriceOn(ctx, day)
	if err != nil {
		return fmt.Errorf("查询待刷新卡牌失败: %w", err)
	}
	if len(refs) == 0 {
		log.Printf("[Sync] 今日价格快照已齐，无需刷新")
		return nil
	}

	batches := SplitPriceBatches(refs, PriceBatchSize)
	log.Printf("[Sync] 待刷新卡牌 %d 张，拆分为 %d 批", len(refs), len(batches))

	for i, batch := range batches {
		batch := batch
		jobName := fmt.Sprintf("fetch_prices:batch_%d", i+1)
		err := s.Queue.Enqueue(jobName, func(jobCtx context.Context) error {
			return s.FetchPriceBatch(jobCtx, batch, day)
		})
		if err != nil {
			s.Reporter.Report(fmt.Errorf("价格子任务投递失败: %w", err), map[string]interface{}{
				"batch": i + 1,
				"size":  len(batch),
			})
		}
	}

	return nil
}

// SplitPriceBatches 把待刷新清单按批大小切片，每张卡恰好落在一批
func SplitPriceBatches(refs []repository.CardPriceRef, size int) [][]repository.CardPriceRef {
	if size <= 0 {
		size = PriceBatchSize
	}

	var batches [][]repository.CardPriceRef
	for start := 0; start < len(refs); start += size {
		end := start + size
		if end > len(refs) {
			end = len(refs)
		}
		batches = append(batches, refs[start:end])
	}
	return batches
}

// FetchPriceBatch 单批价格同步子任务
func (s *SyncService) FetchPriceBatch(ctx context.Context, refs []repository.CardPriceRef, day time.Time) error {
	if len(refs) == 0 {
		return nil
	}

	token, err := s.TCG.Authenticate(ctx)
	if err != nil {
		return fmt.Errorf("价格同步鉴权失败: %w", err)
	}

	tcgIDs := make([]int64, 0, len(refs))
	cardByTcgID := make(map[int64]int64, len(refs))
	for _, ref := range refs {
		tcgIDs = append(tcgIDs, ref.TcgplayerID)
		cardByTcgID[ref.TcgplayerID] = ref.ID
	}

	quotes, err := s.TCG.FetchPrices(ctx, token, tcgIDs)
	if err != nil {
		return fmt.Errorf("拉取价格失败: %w", err)
	}

	prices := make([]model.Price, 0, len(quotes))
	unresolved := 0
	for i := range quotes {
		q := &quotes[i]
		if !q.HasAnyPrice() {
			// 四个价位全空的报价没有入库价值
			continue
		}
		cardID, ok := cardByTcgID[q.ProductID]
		if !ok {
			unresolved++
			continue
		}
		prices = append(prices, ToPrice(q, cardID, day))
	}

	if unresolved > 0 {
		// 远端返回了本批没要的商品报价，静默丢弃会掩盖映射问题，记一笔
		s.Reporter.Report(fmt.Errorf("价格批次存在 %d 条无法归属的报价", unresolved), map[string]interface{}{
			"batch_size": len(refs),
		})
	}

	if err := s.PriceRepo.UpsertBatch(ctx, prices); err != nil {
		return fmt.Errorf("写入价格快照失败: %w", err)
	}

	log.Printf("[Sync] 价格批次完成，%d 张卡写入 %d 条快照", len(refs), len(prices))
	return nil
}
