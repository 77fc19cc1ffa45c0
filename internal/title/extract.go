package title

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/titlemeta/internal/payload"
)

// DataIslandID 是页面内嵌 JSON 状态节点的 id。
const DataIslandID = "__NEXT_DATA__"

// Extract 从页面 HTML 中定位数据岛并返回 props.pageProps。
//
// 约束：
// - 纯函数：每次调用独立解析，不保留任何状态（可并发调用）
// - 只保证 pageProps 存在；其下的结构不确定性全部交给 Normalize 处理
func Extract(html []byte) (payload.Node, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return payload.Node{}, &ExtractionError{Reason: "HTML 解析失败", Err: err}
	}

	island := doc.Find(`[id="` + DataIslandID + `"]`)
	if island.Length() == 0 {
		return payload.Node{}, &ExtractionError{Reason: "页面中未找到 " + DataIslandID}
	}

	text := strings.TrimSpace(island.First().Text())
	if text == "" {
		return payload.Node{}, &ExtractionError{Reason: DataIslandID + " 内容为空"}
	}

	root, err := payload.Decode([]byte(text))
	if err != nil {
		return payload.Node{}, &ExtractionError{Reason: DataIslandID + " 不是合法 JSON", Err: err}
	}

	props := root.Get("props", "pageProps")
	if !props.Truthy() {
		return payload.Node{}, &ExtractionError{Reason: "缺少 props.pageProps"}
	}
	return props, nil
}
