package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"tcg_sync_v1_202608/pkg/tcgplayer"
)

// ==================== 常量与错误 ====================

const (
	// CategoryMagic TCGplayer 上 Magic: The Gathering 的分类 ID
	CategoryMagic = 1

	// PageLength 远端目录接口的固定页大小
	PageLength = 100

	defaultBaseURL = "https://api.tcgplayer.com"
	defaultTimeout = 20 * time.Second
)

// ErrNoResults 远端对超出范围的页返回 404，调用方据此结束翻页
var ErrNoResults = errors.New("tcgplayer: no results")

// ==================== 客户端定义 ====================

// TCGPlayerConfig TCGplayer API 客户端配置
type TCGPlayerConfig struct {
	BaseURL    string
	PublicKey  string
	PrivateKey string
	Timeout    time.Duration
	RetryCount int
}

// TCGPlayerService TCGplayer API 客户端
// 令牌不在客户端内部缓存，由单次同步任务持有并贯穿整个任务周期，
// 任务间互不共享，过期问题在任务粒度上自然消解
type TCGPlayerService struct {
	client *resty.Client
	config TCGPlayerConfig
}

// NewTCGPlayerService 创建 TCGplayer API 客户端
func NewTCGPlayerService(cfg TCGPlayerConfig) *TCGPlayerService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.RetryCount > 0 {
		client.SetRetryCount(cfg.RetryCount).
			SetRetryWaitTime(2 * time.Second)
	}

	return &TCGPlayerService{
		client: client,
		config: cfg,
	}
}

// ==================== 鉴权 ====================

// Authenticate 用客户端凭证换取 Bearer 令牌
func (s *TCGPlayerService) Authenticate(ctx context.Context) (string, error) {
	var token tcgplayer.TokenResp
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "client_credentials",
			"client_id":     s.config.PublicKey,
			"client_secret": s.config.PrivateKey,
		}).
		SetResult(&token).
		Post("/token")
	if err != nil {
		return "", fmt.Errorf("请求令牌失败: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("令牌接口返回异常状态 %d: %s", resp.StatusCode(), resp.String())
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("令牌接口返回空令牌")
	}
	return token.AccessToken, nil
}

// ==================== 请求基础设施 ====================

// get 带令牌的 GET 请求，404 统一译为 ErrNoResults
func (s *TCGPlayerService) get(ctx context.Context, token, path string, query map[string]string, result interface{}) error {
	req := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "bearer "+token).
		SetResult(result)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Get(path)
	if err != nil {
		return fmt.Errorf("请求 %s 失败: %w", path, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return ErrNoResults
	}
	if resp.IsError() {
		return fmt.Errorf("请求 %s 返回异常状态 %d: %s", path, resp.StatusCode(), resp.String())
	}
	return nil
}

// pageOffset 页号转偏移量，页号从 1 开始
func pageOffset(page int) int {
	return (page - 1) * PageLength
}

// ==================== 目录接口 ====================

// ListAllGroups 拉取分类下的全部系列，内部翻页直到远端没有更多数据
func (s *TCGPlayerService) ListAllGroups(ctx context.Context, token string, categoryID int) ([]tcgplayer.GroupDTO, error) {
	var all []tcgplayer.GroupDTO
	path := fmt.Sprintf("/catalog/categories/%d/groups", categoryID)

	for page := 1; ; page++ {
		var body tcgplayer.GroupListResp
		err := s.get(ctx, token, path, map[string]string{
			"offset": strconv.Itoa(pageOffset(page)),
			"limit":  strconv.Itoa(PageLength),
		}, &body)
		if errors.Is(err, ErrNoResults) {
			// 404 表示翻过了最后一页
			break
		}
		if err != nil {
			return nil, err
		}
		if len(body.Results) == 0 {
			// 兜底：部分情况下最后一页之后返回 200 + 空列表
			break
		}

		all = append(all, body.Results...)
		log.Printf("[TCGPlayer] 系列第 %d 页拉取完成，本页 %d 条，累计 %d 条", page, len(body.Results), len(all))
	}

	return all, nil
}

// ListAllProducts 拉取某个系列下的全部卡牌商品，含扩展属性
func (s *TCGPlayerService) ListAllProducts(ctx context.Context, token string, categoryID int, groupID int64) ([]tcgplayer.ProductDTO, error) {
	var all []tcgplayer.ProductDTO

	for page := 1; ; page++ {
		var body tcgplayer.ProductListResp
		err := s.get(ctx, token, "/catalog/products", map[string]string{
			"categoryId":        strconv.Itoa(categoryID),
			"groupId":           strconv.FormatInt(groupID, 10),
			"productTypes":      "Cards",
			"getExtendedFields": "true",
			"offset":            strconv.Itoa(pageOffset(page)),
			"limit":             strconv.Itoa(PageLength),
		}, &body)
		if errors.Is(err, ErrNoResults) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(body.Results) == 0 {
			break
		}

		for i := range body.Results {
			body.Results[i].FoldExtendedData()
		}
		all = append(all, body.Results...)
	}

	return all, nil
}

// ==================== 价格接口 ====================

// FetchPrices 批量查询商品价格，一个商品会返回多条报价（普通/闪卡各一）
// 整批商品都没有价格时远端返回 404，这里译为空结果而不是错误
func (s *TCGPlayerService) FetchPrices(ctx context.Context, token string, productIDs []int64) ([]tcgplayer.PriceDTO, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		ids = append(ids, strconv.FormatInt(id, 10))
	}

	var body tcgplayer.PriceListResp
	err := s.get(ctx, token, "/pricing/product/"+strings.Join(ids, ","), nil, &body)
	if errors.Is(err, ErrNoResults) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return body.Results, nil
}
