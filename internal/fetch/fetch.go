package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
)

// maxBody 限制单个页面的读取上限，避免异常响应占满内存。
const maxBody = 16 << 20

// Client 用给定的 http.Client 抓取页面原文。
//
// 约束：
// - 不做缓存、不做限速；重试由 http.Client 的 Transport（httpx）负责
// - 只接受 2xx；WAF 验证页视为 BlockedError
type Client struct {
	HTTP *http.Client

	// Header 会附加到每个请求（例如 Accept-Language）；User-Agent 由 httpx 的 UA 池填充。
	Header http.Header
}

func (c Client) Fetch(ctx context.Context, u string) ([]byte, error) {
	if c.HTTP == nil {
		return nil, errors.New("http client 不能为空")
	}
	if strings.TrimSpace(u) == "" {
		return nil, errors.New("url 不能为空")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range c.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPStatusError{URL: u, StatusCode: resp.StatusCode, Location: resp.Header.Get("Location")}
	}
	if reason := blockedReason(resp); reason != "" {
		return nil, &BlockedError{URL: u, Reason: reason}
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBody))
}

// blockedReason 识别 AWS WAF 的 challenge 响应（202 + x-amzn-waf-action）。
func blockedReason(resp *http.Response) string {
	action := strings.ToLower(strings.TrimSpace(resp.Header.Get("X-Amzn-Waf-Action")))
	switch action {
	case "":
		return ""
	case "challenge", "captcha":
		return "waf-" + action
	default:
		return "waf"
	}
}
