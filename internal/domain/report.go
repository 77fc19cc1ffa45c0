package domain

import (
	"encoding/json"
	"sort"
	"time"
)

// Report 是批量运行（多个 TitleID）的对外稳定输出。
type Report struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Items   []Record      `json:"items"`
}

type ReportSummary struct {
	OK     int `json:"ok"`
	Failed int `json:"failed"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) items 稳定排序：按 id 字典序；id=="" 的条目排在最后
// 3) summary 由 items 计算得出
func (r *Report) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()
	if r.Items == nil {
		r.Items = []Record{}
	}

	sort.SliceStable(r.Items, func(i, j int) bool {
		a := r.Items[i].ID()
		b := r.Items[j].ID()
		if a == "" {
			return false
		}
		if b == "" {
			return true
		}
		return a < b
	})

	var s ReportSummary
	for _, it := range r.Items {
		if it.Failed() {
			s.Failed++
			continue
		}
		s.OK++
	}
	r.Summary = s
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
func (r Report) MarshalJSON() ([]byte, error) {
	type Alias Report
	return json.Marshal(Alias(r))
}
