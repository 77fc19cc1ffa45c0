package logx

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Level 是日志级别；低于 Manager.min 的事件直接丢弃。
type Level int

const (
	Debug Level = iota
	Info
	Success
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "D"
	case Info:
		return "I"
	case Success:
		return "✓"
	case Warning:
		return "!"
	case Error:
		return "!!"
	default:
		return "?"
	}
}

func (l Level) color() *color.Color {
	switch l {
	case Debug:
		return color.New(color.FgWhite, color.Italic)
	case Success:
		return color.New(color.FgHiGreen)
	case Warning:
		return color.New(color.FgYellow, color.Underline)
	case Error:
		return color.New(color.FgHiRed, color.Bold)
	default:
		return color.New(color.FgWhite)
	}
}

// ParseLevel 解析配置中的级别名（大小写不敏感）；空串视为 info。
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug, nil
	case "", "info":
		return Info, nil
	case "warn", "warning":
		return Warning, nil
	case "error":
		return Error, nil
	default:
		return Info, fmt.Errorf("未知日志级别：%q", s)
	}
}

// Logger 是带名字的日志句柄（通常每个组件一个）。
type Logger interface {
	Emit(Level, string, ...any)
}

// Manager 负责把各组件的日志统一写到同一个 writer（默认 stderr，stdout 保留给记录输出）。
//
// 约束：并发安全；名字列按出现过的最长名字对齐。
type Manager struct {
	mu     sync.Mutex
	w      io.Writer
	min    Level
	offset int
}

func New(w io.Writer, min Level) *Manager {
	if w == nil {
		w = io.Discard
	}
	return &Manager{w: w, min: min}
}

func (m *Manager) Get(name string) Logger {
	return &named{mgr: m, name: name}
}

func (m *Manager) SetLevel(l Level) {
	m.mu.Lock()
	m.min = l
	m.mu.Unlock()
}

func (m *Manager) Emit(level Level, name, message string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if level < m.min {
		return
	}
	if len(name) > m.offset {
		m.offset = len(name)
	}
	padding := strings.Repeat(" ", m.offset-len(name))
	msg := fmt.Sprintf(message, args...)
	level.color().Fprintf(m.w, "[%s] %s(%s) %s\n", name, padding, level, msg)
}

type named struct {
	mgr  *Manager
	name string
}

func (l *named) Emit(level Level, message string, args ...any) {
	l.mgr.Emit(level, l.name, message, args...)
}

// Discard 丢弃所有日志（测试与未配置时使用）。
var Discard Logger = discard{}

type discard struct{}

func (discard) Emit(Level, string, ...any) {}
