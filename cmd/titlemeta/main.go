package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/titlemeta/internal/app/run"
	"github.com/John-Robertt/titlemeta/internal/config"
	"github.com/John-Robertt/titlemeta/internal/fetch"
	"github.com/John-Robertt/titlemeta/internal/infra/fsx"
	"github.com/John-Robertt/titlemeta/internal/infra/httpx"
	"github.com/John-Robertt/titlemeta/internal/infra/logx"
	"github.com/John-Robertt/titlemeta/internal/metrics"
	"github.com/John-Robertt/titlemeta/internal/series"
	"github.com/John-Robertt/titlemeta/internal/server"
	"github.com/John-Robertt/titlemeta/internal/title"
)

func main() {
	os.Exit(runCLI(os.Args[1:], os.Stdout, os.Stderr))
}

// exitCode 让子命令把退出码交回 runCLI（输出已由子命令自行完成）。
type exitCode int

func (e exitCode) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

// globalOptions 对所有子命令生效；指针字段为 nil 表示“未显式指定”。
type globalOptions struct {
	Config   string         `long:"config" description:"配置文件路径（默认读取 ./titlemeta.yaml，可选）"`
	BaseURL  *string        `long:"base-url" description:"title 页面根地址（默认 https://www.imdb.com/title/）"`
	Proxy    *string        `long:"proxy" description:"代理地址（http/https/socks5）"`
	RetryMax *int           `long:"retry-max" description:"网络错误与网关 5xx 的最大重试次数"`
	Timeout  *time.Duration `long:"timeout" description:"单个请求的总超时（例如 20s）"`
	NoSeries bool           `long:"no-series" description:"跳过剧集的 series 补充"`
	LogLevel *string        `long:"log-level" description:"日志级别：debug|info|warn|error"`
}

func (g *globalOptions) cliArgs() config.CLIArgs {
	a := config.CLIArgs{
		ConfigPath: g.Config,
		BaseURL:    g.BaseURL,
		ProxyURL:   g.Proxy,
		RetryMax:   g.RetryMax,
		Timeout:    g.Timeout,
		LogLevel:   g.LogLevel,
	}
	if g.NoSeries {
		off := false
		a.Series = &off
	}
	return a
}

type app struct {
	stdout io.Writer
	stderr io.Writer
	logs   *logx.Manager
	opts   globalOptions
}

func runCLI(args []string, stdout, stderr io.Writer) int {
	logW := stderr
	if stderr == io.Writer(os.Stderr) {
		// Windows 终端需要 colorable 包装才能正确显示颜色。
		logW = color.Error
	}
	a := &app{stdout: stdout, stderr: stderr, logs: logx.New(logW, logx.Info)}

	parser := flags.NewParser(&a.opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "titlemeta"
	if _, err := parser.AddCommand("get", "查询一个或多个 title",
		"抓取 title 页面并输出扁平记录；单个 id 输出记录，多个 id 输出批量报告。", &getCommand{app: a}); err != nil {
		fmt.Fprintf(stderr, "初始化命令失败：%v\n", err)
		return 1
	}
	if _, err := parser.AddCommand("serve", "启动 HTTP API",
		"GET /title/{id}、/healthz、/metrics。", &serveCommand{app: a}); err != nil {
		fmt.Fprintf(stderr, "初始化命令失败：%v\n", err)
		return 1
	}

	if _, err := parser.ParseArgs(args); err != nil {
		var ec exitCode
		if errors.As(err, &ec) {
			return int(ec)
		}
		var fe *flags.Error
		if errors.As(err, &fe) {
			if fe.Type == flags.ErrHelp {
				fmt.Fprintln(stdout, fe.Message)
				return 0
			}
			fmt.Fprintf(stderr, "参数错误：%v\n\n", err)
			parser.WriteHelp(stderr)
			return 2
		}
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	return 0
}

// load 读取配置，并把日志级别应用到 app 的日志管理器。
func (a *app) load(cli config.CLIArgs) (config.EffectiveConfig, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return config.EffectiveConfig{}, fmt.Errorf("读取当前目录失败：%w", err)
	}
	eff, err := config.LoadEffective(cwd, cli)
	if err != nil {
		return config.EffectiveConfig{}, err
	}
	a.logs.SetLevel(eff.LogLevel)
	if eff.Path != "" {
		a.logs.Get("config").Emit(logx.Debug, "使用配置文件 %s", eff.Path)
	}
	return eff, nil
}

// service 按最终配置装配 title.Service；m 为 nil 时不上报指标。
func (a *app) service(eff config.EffectiveConfig, m *metrics.Metrics) (title.Service, error) {
	client, err := httpx.NewPageClient(eff.HTTPOptions())
	if err != nil {
		return title.Service{}, fmt.Errorf("proxy_url 无效：%w", err)
	}
	f := fetch.Client{HTTP: client, Header: http.Header{"Accept-Language": {"en-US,en;q=0.9"}}}

	svc := title.Service{
		Fetcher: f,
		BaseURL: eff.BaseURL,
		Log:     a.logs.Get("title"),
		Metrics: m,
	}
	if eff.Series {
		svc.Series = series.Enricher{Fetcher: f, BaseURL: eff.BaseURL}
	}
	return svc, nil
}

type getCommand struct {
	app *app

	Format      *string `short:"f" long:"format" description:"输出格式：json|yaml"`
	Concurrency *int    `short:"c" long:"concurrency" description:"批量查询的并发数（1-32）"`
	Out         string  `short:"o" long:"out" description:"写入文件而不是 stdout（原子写入）"`
	Force       bool    `long:"force" description:"允许覆盖 --out 指定的已有文件"`

	Args struct {
		IDs []string `positional-arg-name:"id" required:"1"`
	} `positional-args:"yes" required:"yes"`
}

func (c *getCommand) Execute(_ []string) error {
	a := c.app

	cli := a.opts.cliArgs()
	cli.Format = c.Format
	cli.Concurrency = c.Concurrency
	eff, err := a.load(cli)
	if err != nil {
		fmt.Fprintf(a.stderr, "%v\n", err)
		return exitCode(1)
	}
	svc, err := a.service(eff, nil)
	if err != nil {
		fmt.Fprintf(a.stderr, "%v\n", err)
		return exitCode(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		out    any
		failed bool
	)
	if len(c.Args.IDs) == 1 {
		rr := run.Execute(ctx, c.Args.IDs, svc, 1)
		rec := rr.Items[0]
		out, failed = rec, rec.Failed()
	} else {
		var obs run.Observer
		if w, ok := pickProgressWriter(a.stderr); ok {
			obs = newProgressUI(w)
		}
		rr := run.ExecuteWithObserver(ctx, c.Args.IDs, svc, eff.Concurrency, obs)
		out, failed = rr, rr.Summary.Failed > 0
		fmt.Fprintf(a.stderr, "完成：ok=%d failed=%d\n", rr.Summary.OK, rr.Summary.Failed)
	}

	b, err := encode(out, eff.Format)
	if err != nil {
		fmt.Fprintf(a.stderr, "编码输出失败：%v\n", err)
		return exitCode(1)
	}

	if c.Out != "" {
		p, _ := filepath.Abs(c.Out)
		if err := fsx.WriteFile(p, b, c.Force); err != nil {
			fmt.Fprintf(a.stderr, "写入 %s 失败：%v\n", p, err)
			return exitCode(1)
		}
		a.logs.Get("out").Emit(logx.Success, "已写入 %s", p)
	} else if _, err := a.stdout.Write(b); err != nil {
		return exitCode(1)
	}

	if failed {
		return exitCode(1)
	}
	return nil
}

type serveCommand struct {
	app *app

	Listen *string `short:"l" long:"listen" description:"监听地址（默认 :8080）"`
}

func (c *serveCommand) Execute(_ []string) error {
	a := c.app

	cli := a.opts.cliArgs()
	cli.Listen = c.Listen
	eff, err := a.load(cli)
	if err != nil {
		fmt.Fprintf(a.stderr, "%v\n", err)
		return exitCode(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	svc, err := a.service(eff, metrics.New(reg))
	if err != nil {
		fmt.Fprintf(a.stderr, "%v\n", err)
		return exitCode(1)
	}

	log := a.logs.Get("http")
	srv := &http.Server{
		Addr:         eff.Listen,
		Handler:      server.NewRouter(server.Options{Titles: svc, Gatherer: reg, Log: log}),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Emit(logx.Info, "监听 %s（GET /title/{id}、/healthz、/metrics）", eff.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Emit(logx.Info, "收到退出信号，正在关闭")
	case err, ok := <-errCh:
		if ok {
			fmt.Fprintf(a.stderr, "HTTP 服务失败：%v\n", err)
			return exitCode(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(a.stderr, "关闭 HTTP 服务失败：%v\n", err)
		return exitCode(1)
	}
	log.Emit(logx.Success, "已关闭")
	return nil
}

// encode 输出带换行的 JSON 或 YAML。
//
// YAML 先经过一次 JSON 往返：记录里混有结构体（例如 series 的季列表），
// 直接交给 yaml 会得到与 JSON 不一致的 key。
func encode(v any, format string) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	if format != "yaml" {
		return append(b, '\n'), nil
	}

	var generic any
	if err := json.Unmarshal(b, &generic); err != nil {
		return nil, err
	}
	return yaml.Marshal(generic)
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// pickProgressWriter 只在交互终端启用进度输出（不污染重定向后的 stderr 日志）。
func pickProgressWriter(w io.Writer) (io.Writer, bool) {
	f, ok := w.(*os.File)
	if !ok || !isTTY(f) {
		return nil, false
	}
	return f, true
}
