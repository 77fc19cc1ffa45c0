package domain

// Record 是对外返回的扁平记录（"wire format"）。
//
// 成功时为 Title 的展平结果（可能合并了 series 字段）；失败时为降级记录：
//
//	{"id": "...", "error": true, "message": "..."}
//
// 调用方应通过 Failed() 分支，而不是依赖错误类型。
type Record map[string]any

// ErrorRecord 构造降级记录。message 为空时给出兜底文案（保证对外可读）。
func ErrorRecord(id TitleID, message string) Record {
	if message == "" {
		message = "未知错误"
	}
	return Record{
		"id":      string(id),
		"error":   true,
		"message": message,
	}
}

func (r Record) ID() string {
	s, _ := r["id"].(string)
	return s
}

// Failed 报告该记录是否为降级记录。
func (r Record) Failed() bool {
	b, _ := r["error"].(bool)
	return b
}

func (r Record) Message() string {
	s, _ := r["message"].(string)
	return s
}

// Merge 返回新记录：先复制 r，再写入 extra（同名 key 以 extra 为准）。r 本身不被修改。
func (r Record) Merge(extra map[string]any) Record {
	out := make(Record, len(r)+len(extra))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
