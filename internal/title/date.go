package title

import (
	"time"

	"github.com/John-Robertt/titlemeta/internal/payload"
)

// isoLayout 与 JS Date.prototype.toISOString 的输出一致（毫秒 + Z）。
const isoLayout = "2006-01-02T15:04:05.000Z"

// ValidatedDate 把 {year, month, day} 合成为 ISO-8601 UTC 时间戳；任何一步不合法都返回 nil。
//
// 规则：
// - 三个分量按 parseInt 语义解析（数字或数字前缀的字符串），任一失败 => nil
// - month 必须在 [1,12]，day 必须在 [1,31]
// - 以 UTC 构造日期后回读年月日，不一致（如 4 月 31 日溢出到 5 月 1 日）=> nil
// - 年份限定在 [0,9999]：超出范围无法用四位年份的 ISO 形式表示
func ValidatedDate(rd payload.Node) *string {
	if !rd.Truthy() {
		return nil
	}

	year, ok := rd.Get("year").ParseInt()
	if !ok {
		return nil
	}
	month, ok := rd.Get("month").ParseInt()
	if !ok {
		return nil
	}
	day, ok := rd.Get("day").ParseInt()
	if !ok {
		return nil
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}
	if year < 0 || year > 9999 {
		return nil
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return nil
	}

	s := t.Format(isoLayout)
	return &s
}
