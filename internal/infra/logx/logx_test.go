package logx

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestManager_FiltersBelowMin(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = old }()

	var buf bytes.Buffer
	m := New(&buf, Warning)
	l := m.Get("title")

	l.Emit(Info, "不应输出 %s", "x")
	l.Emit(Warning, "series 补充失败：%s", "tt1")

	out := buf.String()
	if strings.Contains(out, "不应输出") {
		t.Fatalf("低于 min 的日志不应输出：%q", out)
	}
	if !strings.Contains(out, "[title] (!) series 补充失败：tt1") {
		t.Fatalf("日志格式不符合预期：%q", out)
	}
}

func TestManager_PadsNames(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = old }()

	var buf bytes.Buffer
	m := New(&buf, Debug)
	m.Get("server").Emit(Info, "a")
	m.Get("run").Emit(Info, "b")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("期望 2 行，实际 %d：%q", len(lines), buf.String())
	}
	if lines[1] != "[run]    (I) b" {
		t.Fatalf("名字列未对齐：%q", lines[1])
	}
}

func TestParseLevel(t *testing.T) {
	if l, err := ParseLevel("WARN"); err != nil || l != Warning {
		t.Fatalf("期望 Warning，实际 %v err=%v", l, err)
	}
	if l, err := ParseLevel(""); err != nil || l != Info {
		t.Fatalf("空串应为 Info，实际 %v err=%v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}
