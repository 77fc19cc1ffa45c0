package title

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/John-Robertt/titlemeta/internal/domain"
	"github.com/John-Robertt/titlemeta/internal/infra/logx"
	"github.com/John-Robertt/titlemeta/internal/metrics"
)

// PageFetcher 返回 url 对应页面的原始 HTML。
// 重试、代理、UA 等网络策略由实现方负责；Service 不做任何重试。
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// SeriesEnricher 为剧集补充 series 专属字段（季、集）。返回的 key 合并进记录并覆盖同名字段。
type SeriesEnricher interface {
	FetchSeries(ctx context.Context, id domain.TitleID) (map[string]any, error)
}

var errNoContent = errors.New("未获取到 HTML 内容")

// Service 串联 Fetch -> Extract -> Normalize -> (可选) Series 补充。
//
// 约束：
// - Get 是全函数：fetch/extract 失败时返回降级记录，不向调用方抛错
// - series 补充失败只记 warning + 指标，记录仍按成功返回
// - 不持有任何跨调用的可变状态；不同 id 可并发调用
type Service struct {
	Fetcher PageFetcher
	Series  SeriesEnricher // nil 表示不做 series 补充

	// BaseURL 是抓取页面的前缀（为空时使用 CanonicalBaseURL），页面 URL = BaseURL + id。
	BaseURL string

	Log     logx.Logger
	Metrics *metrics.Metrics
}

func (s Service) baseURL() string {
	u := strings.TrimSpace(s.BaseURL)
	if u == "" {
		return CanonicalBaseURL
	}
	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	return u
}

func (s Service) log() logx.Logger {
	if s.Log == nil {
		return logx.Discard
	}
	return s.Log
}

// PageURL 返回 id 对应的抓取地址。
func (s Service) PageURL(id domain.TitleID) string {
	return s.baseURL() + string(id)
}

// Get 查询单个 title 并返回对外记录（成功记录或降级记录）。
func (s Service) Get(ctx context.Context, id domain.TitleID) domain.Record {
	started := time.Now()

	rec, err := s.lookup(ctx, id)
	if err != nil {
		s.log().Emit(logx.Error, "处理 %s 失败：%v", id, err)
		s.Metrics.ObserveTitle(resultOf(err), time.Since(started))
		return domain.ErrorRecord(id, err.Error())
	}

	s.Metrics.ObserveTitle(metrics.ResultOK, time.Since(started))
	return rec
}

func (s Service) lookup(ctx context.Context, id domain.TitleID) (domain.Record, error) {
	pageURL := s.PageURL(id)
	if s.Fetcher == nil {
		return nil, &FetchError{ID: id, URL: pageURL, Err: errors.New("未配置 PageFetcher")}
	}
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{ID: id, URL: pageURL, Err: err}
	}

	html, err := s.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, &FetchError{ID: id, URL: pageURL, Err: err}
	}
	if len(bytes.TrimSpace(html)) == 0 {
		return nil, &FetchError{ID: id, URL: pageURL, Err: errNoContent}
	}

	props, err := Extract(html)
	if err != nil {
		return nil, err
	}

	t := Normalize(id, props)
	rec, err := t.Record()
	if err != nil {
		return nil, err
	}

	if !t.IsSeries || s.Series == nil {
		return rec, nil
	}

	extra, err := s.enrich(ctx, id)
	if err != nil {
		s.log().Emit(logx.Warning, "%v", err)
		s.Metrics.ObserveSeries(metrics.ResultFailed)
		return rec, nil
	}
	s.Metrics.ObserveSeries(metrics.ResultOK)
	return rec.Merge(extra), nil
}

func (s Service) enrich(ctx context.Context, id domain.TitleID) (map[string]any, error) {
	// 第二次网络往返之前再检查一次取消；取消同样按“补充失败”处理。
	if err := ctx.Err(); err != nil {
		return nil, &SeriesEnrichmentError{ID: id, Err: err}
	}
	extra, err := s.Series.FetchSeries(ctx, id)
	if err != nil {
		return nil, &SeriesEnrichmentError{ID: id, Err: err}
	}
	return extra, nil
}

func resultOf(err error) string {
	var fe *FetchError
	if errors.As(err, &fe) {
		return metrics.ResultFetchError
	}
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return metrics.ResultExtractionError
	}
	return metrics.ResultFailed
}
