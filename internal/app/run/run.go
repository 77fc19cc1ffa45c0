package run

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/titlemeta/internal/domain"
)

// Getter 是单个 title 的查询入口（title.Service 实现它）。
//
// 约束：Get 必须是全函数，失败以降级记录返回，不返回 error。
type Getter interface {
	Get(ctx context.Context, id domain.TitleID) domain.Record
}

// Execute 对一组 id 执行一次批量查询，并返回对外稳定的 Report。
func Execute(ctx context.Context, ids []string, g Getter, concurrency int) domain.Report {
	return ExecuteWithObserver(ctx, ids, g, concurrency, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 以输出进度（由上层决定是否启用）。
//
// 每个 id 是独立的一条：非法 id 直接降级为错误记录，不发请求；重复 id 只查询一次。
func ExecuteWithObserver(ctx context.Context, ids []string, g Getter, concurrency int, obs Observer) domain.Report {
	started := time.Now().UTC()

	uniq := dedupe(ids)

	workers := concurrency
	if workers < 1 {
		workers = 1
	}
	if workers > len(uniq) && len(uniq) > 0 {
		workers = len(uniq)
	}

	if obs != nil {
		obs.OnStart(len(uniq), workers)
	}

	rr := domain.Report{
		StartedAt: started,
		Items:     make([]domain.Record, 0, len(uniq)),
	}

	type execResult struct {
		id  string
		rec domain.Record
		dur time.Duration
	}

	jobs := make(chan string)
	results := make(chan execResult, len(uniq))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for raw := range jobs {
				oneStarted := time.Now()
				results <- execResult{
					id:  raw,
					rec: execOne(ctx, g, raw),
					dur: time.Since(oneStarted),
				}
			}
		}()
	}

	go func() {
		for _, id := range uniq {
			jobs <- id
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	done := 0
	for it := range results {
		done++
		rr.Items = append(rr.Items, it.rec)
		if obs != nil {
			obs.OnItemDone(done, len(uniq), it.id, it.rec, it.dur)
		}
	}

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return rr
}

func execOne(ctx context.Context, g Getter, raw string) domain.Record {
	id, ok := domain.ParseTitleID(raw)
	if !ok {
		return domain.ErrorRecord(domain.TitleID(raw), fmt.Sprintf("无效的 title id：%q", raw))
	}
	if g == nil {
		return domain.ErrorRecord(id, "未配置查询服务")
	}
	return g.Get(ctx, id)
}

// dedupe 去掉首尾空白与重复项，保持首次出现的顺序。
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
