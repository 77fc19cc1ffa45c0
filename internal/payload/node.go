package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
)

// Node 包装一段未类型化的 JSON 值（由 Decode 以 UseNumber 解出）。
//
// 约束：
// - 所有访问都是“可选链”：路径缺失或类型不符时返回空 Node，不 panic、不返回 error
// - 取值类方法统一采用“假值回退”：nil/false/""/0 都视为缺失，返回调用方给出的默认值
// - Node 只读；上层不应修改 Raw() 返回的 map/slice
type Node struct {
	v any
}

// Of 把任意已解码的 JSON 值包装为 Node。
func Of(v any) Node { return Node{v: v} }

// Decode 解析 JSON 文本。数字保留为 json.Number，避免 float64 丢精度。
// 与 JSON.parse 一致：尾部只允许空白。
func Decode(b []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return Node{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Node{}, errors.New("JSON 之后存在多余内容")
	}
	return Node{v: v}, nil
}

// Get 沿对象 key 逐级下钻；任一级不是对象或 key 不存在都返回空 Node。
func (n Node) Get(keys ...string) Node {
	cur := n.v
	for _, k := range keys {
		m, ok := cur.(map[string]any)
		if !ok {
			return Node{}
		}
		cur = m[k]
	}
	return Node{v: cur}
}

// Index 取数组第 i 个元素；越界或不是数组返回空 Node。
func (n Node) Index(i int) Node {
	a, ok := n.v.([]any)
	if !ok || i < 0 || i >= len(a) {
		return Node{}
	}
	return Node{v: a[i]}
}

// List 把数组展开为 []Node；不是数组时返回 nil（可直接 range）。
func (n Node) List() []Node {
	a, ok := n.v.([]any)
	if !ok {
		return nil
	}
	out := make([]Node, len(a))
	for i, v := range a {
		out[i] = Node{v: v}
	}
	return out
}

func (n Node) Raw() any { return n.v }

func (n Node) IsNull() bool { return n.v == nil }

// Truthy 按 JS 真值语义判断：nil、false、""、0 为假；对象与数组（即便为空）为真。
func (n Node) Truthy() bool {
	switch v := n.v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case json.Number:
		f, err := v.Float64()
		return err != nil || f != 0
	case float64:
		return v != 0
	default:
		return true
	}
}

// RawOrNil 返回原始值；假值返回 nil。用于“原样透出”的字段。
func (n Node) RawOrNil() any {
	if !n.Truthy() {
		return nil
	}
	return n.v
}

// Str 仅在值是字符串时返回 ok=true（空串也算）。
func (n Node) Str() (string, bool) {
	s, ok := n.v.(string)
	return s, ok
}

// StringOr 返回非空字符串，否则返回 def。
func (n Node) StringOr(def string) string {
	if s, ok := n.v.(string); ok && s != "" {
		return s
	}
	return def
}

// StringPtr 返回非空字符串的指针，否则返回 nil（JSON 输出为 null）。
func (n Node) StringPtr() *string {
	s, ok := n.v.(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

func (n Node) Bool() bool { return n.Truthy() }

// IntOr 返回数值（小数截断）；非数值或为 0 时返回 def。
func (n Node) IntOr(def int) int {
	f, ok := n.number()
	if !ok || f == 0 {
		return def
	}
	if num, isNum := n.v.(json.Number); isNum {
		if i, err := num.Int64(); err == nil {
			return int(i)
		}
	}
	return int(f)
}

// IntPtr 与 IntOr 相同，但缺失时返回 nil。
func (n Node) IntPtr() *int {
	if _, ok := n.number(); !ok || !n.Truthy() {
		return nil
	}
	i := n.IntOr(0)
	return &i
}

// FloatOr 返回数值；非数值或为 0 时返回 def。
func (n Node) FloatOr(def float64) float64 {
	f, ok := n.number()
	if !ok || f == 0 {
		return def
	}
	return f
}

func (n Node) number() (float64, bool) {
	switch v := n.v.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// ParseInt 模拟 parseInt：把值转成文本后取前导整数（允许前导空白与正负号）。
// 非数字/非字符串，或没有任何前导数字时返回 ok=false。
func (n Node) ParseInt() (int, bool) {
	var s string
	switch v := n.v.(type) {
	case json.Number:
		s = v.String()
	case string:
		s = v
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return v, true
	default:
		return 0, false
	}

	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	i, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return i, true
}
