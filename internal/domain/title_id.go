package domain

import (
	"regexp"
	"strings"
)

// TitleID 是作品的唯一标识（例如 tt0944947），直接用于拼接 URL 并原样回显到输出记录。
//
// 约束：除“URL 安全”外不假设任何内部结构。
type TitleID string

var titleIDRE = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ParseTitleID 校验并返回 TitleID；空串或含 URL 不安全字符时 ok=false。
func ParseTitleID(s string) (TitleID, bool) {
	s = strings.TrimSpace(s)
	if !titleIDRE.MatchString(s) {
		return "", false
	}
	return TitleID(s), true
}
