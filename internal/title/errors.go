package title

import (
	"fmt"

	"github.com/John-Robertt/titlemeta/internal/domain"
)

// FetchError 表示没有拿到页面 HTML（网络失败、非 2xx、空 body 或 ctx 已取消）。
type FetchError struct {
	ID  domain.TitleID
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("获取页面失败：id=%s url=%s: %v", e.ID, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractionError 表示页面中找不到数据岛，或其内容不是合法 JSON，或缺少 props.pageProps。
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("提取数据岛失败：%s: %v", e.Reason, e.Err)
	}
	return "提取数据岛失败：" + e.Reason
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// SeriesEnrichmentError 是 series 补充失败；只用于旁路报告，不会让整次查询失败。
type SeriesEnrichmentError struct {
	ID  domain.TitleID
	Err error
}

func (e *SeriesEnrichmentError) Error() string {
	return fmt.Sprintf("series 补充失败：id=%s: %v", e.ID, e.Err)
}

func (e *SeriesEnrichmentError) Unwrap() error { return e.Err }
