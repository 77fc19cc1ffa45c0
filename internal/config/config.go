package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/John-Robertt/titlemeta/internal/infra/httpx"
	"github.com/John-Robertt/titlemeta/internal/infra/logx"
)

const (
	// ErrCodeNotFound 表示 --config 指定的文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

const (
	// FileName 是 cwd 下自动发现的配置文件名（可选）。
	FileName = "titlemeta.yaml"

	DefaultConcurrency = 4
	MaxConcurrency     = 32
	DefaultListen      = ":8080"
	DefaultFormat      = "json"
)

// CLIArgs 是 CLI 层显式给出的覆盖项；nil 表示未指定（保留“是否显式指定”的信息）。
// 这能保证 --series=false 可以覆盖配置文件中的 series: true。
type CLIArgs struct {
	ConfigPath string

	BaseURL     *string
	ProxyURL    *string
	Concurrency *int
	RetryMax    *int
	Timeout     *time.Duration
	Listen      *string
	Format      *string
	Series      *bool
	LogLevel    *string
}

// FileConfig 对应 titlemeta.yaml；同名环境变量（TITLEMETA_*）覆盖文件中的值。
//
// 约束：默认值在读取前预先填好，不使用 env-default（bool/0 值无法与“未设置”区分）。
type FileConfig struct {
	BaseURL     string        `yaml:"base_url" env:"TITLEMETA_BASE_URL"`
	ProxyURL    string        `yaml:"proxy_url" env:"TITLEMETA_PROXY_URL"`
	Concurrency int           `yaml:"concurrency" env:"TITLEMETA_CONCURRENCY"`
	RetryMax    int           `yaml:"retry_max" env:"TITLEMETA_RETRY_MAX"`
	Timeout     time.Duration `yaml:"timeout" env:"TITLEMETA_TIMEOUT"`
	Listen      string        `yaml:"listen" env:"TITLEMETA_LISTEN"`
	Format      string        `yaml:"format" env:"TITLEMETA_FORMAT"`
	Series      bool          `yaml:"series" env:"TITLEMETA_SERIES"`
	LogLevel    string        `yaml:"log_level" env:"TITLEMETA_LOG_LEVEL"`
}

func defaults() FileConfig {
	return FileConfig{
		Concurrency: DefaultConcurrency,
		RetryMax:    httpx.DefaultRetryMax,
		Timeout:     httpx.DefaultTimeout,
		Listen:      DefaultListen,
		Format:      DefaultFormat,
		Series:      true,
		LogLevel:    "info",
	}
}

// EffectiveConfig 是合并并规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	// Path 是实际读取的配置文件；没有读取任何文件时为空。
	Path string

	BaseURL     string
	ProxyURL    string
	Concurrency int
	RetryMax    int
	Timeout     time.Duration
	Listen      string
	Format      string
	Series      bool
	LogLevel    logx.Level
}

// HTTPOptions 返回页面客户端的构造参数。retry_max=0 表示不重试。
func (c EffectiveConfig) HTTPOptions() httpx.Options {
	retry := c.RetryMax
	if retry == 0 {
		retry = -1
	}
	return httpx.Options{ProxyURL: c.ProxyURL, RetryMax: retry, Timeout: c.Timeout}
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取配置文件，叠加环境变量，再与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 --config：必须存在，否则 config_not_found
// 2) 否则尝试 <cwd>/titlemeta.yaml（可选）
// 3) 两者都没有时只读取环境变量
//
// 覆盖优先级（固定）：CLI > 环境变量 > 配置文件 > 内置默认值
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	cfgPath := ""
	if p := strings.TrimSpace(cli.ConfigPath); p != "" {
		cfgPath = absCleanFrom(cwdAbs, p)
		if _, err := os.Stat(cfgPath); err != nil {
			if os.IsNotExist(err) {
				return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
			}
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
	} else if p := filepath.Join(cwdAbs, FileName); fileExists(p) {
		cfgPath = p
	}

	fc := defaults()
	if cfgPath != "" {
		err = cleanenv.ReadConfig(cfgPath, &fc)
	} else {
		err = cleanenv.ReadEnv(&fc)
	}
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	return merge(fc, cli, cfgPath)
}

func merge(fc FileConfig, cli CLIArgs, cfgPath string) (EffectiveConfig, error) {
	override(&fc.BaseURL, cli.BaseURL)
	override(&fc.ProxyURL, cli.ProxyURL)
	override(&fc.Concurrency, cli.Concurrency)
	override(&fc.RetryMax, cli.RetryMax)
	override(&fc.Timeout, cli.Timeout)
	override(&fc.Listen, cli.Listen)
	override(&fc.Format, cli.Format)
	override(&fc.Series, cli.Series)
	override(&fc.LogLevel, cli.LogLevel)

	invalid := func(format string, args ...any) error {
		return &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf(format, args...)}
	}

	baseURL := strings.TrimSpace(fc.BaseURL)
	if baseURL != "" {
		if err := validateHTTPURL(baseURL); err != nil {
			return EffectiveConfig{}, invalid("base_url 无效：%v", err)
		}
	}
	proxyURL := strings.TrimSpace(fc.ProxyURL)
	if proxyURL != "" {
		if _, err := url.Parse(proxyURL); err != nil {
			return EffectiveConfig{}, invalid("proxy_url 无效：%v", err)
		}
	}

	concurrency := fc.Concurrency
	if concurrency == 0 {
		concurrency = DefaultConcurrency
	}
	// 范围 [1, 32]；超出截断。
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > MaxConcurrency {
		concurrency = MaxConcurrency
	}

	if fc.RetryMax < 0 {
		return EffectiveConfig{}, invalid("retry_max 不能为负数，实际是 %d", fc.RetryMax)
	}
	if fc.Timeout < 0 {
		return EffectiveConfig{}, invalid("timeout 不能为负数，实际是 %s", fc.Timeout)
	}

	format := strings.ToLower(strings.TrimSpace(fc.Format))
	switch format {
	case "json", "yaml":
	case "":
		format = DefaultFormat
	default:
		return EffectiveConfig{}, invalid("format 只能是 json 或 yaml，实际是 %q", fc.Format)
	}

	level := logx.Info
	if s := strings.TrimSpace(fc.LogLevel); s != "" {
		l, err := logx.ParseLevel(s)
		if err != nil {
			return EffectiveConfig{}, invalid("log_level 无效：%v", err)
		}
		level = l
	}

	listen := strings.TrimSpace(fc.Listen)
	if listen == "" {
		listen = DefaultListen
	}

	return EffectiveConfig{
		Path:        cfgPath,
		BaseURL:     baseURL,
		ProxyURL:    proxyURL,
		Concurrency: concurrency,
		RetryMax:    fc.RetryMax,
		Timeout:     fc.Timeout,
		Listen:      listen,
		Format:      format,
		Series:      fc.Series,
		LogLevel:    level,
	}, nil
}

func override[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func validateHTTPURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("缺少 scheme 或 host：%q", s)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("必须是 http/https：%q", s)
	}
	return nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}
