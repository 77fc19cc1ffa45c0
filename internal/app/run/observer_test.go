package run

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/John-Robertt/titlemeta/internal/domain"
)

type recordObserver struct {
	mu sync.Mutex

	startCalls int
	total      int
	workers    int
	idx        []int
	ids        []string
}

func (o *recordObserver) OnStart(total, workers int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.startCalls++
	o.total = total
	o.workers = workers
}

func (o *recordObserver) OnItemDone(idx, total int, id string, rec domain.Record, dur time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.idx = append(o.idx, idx)
	o.ids = append(o.ids, id)
}

func TestExecuteWithObserver_EmitsStartAndItemEvents(t *testing.T) {
	obs := &recordObserver{}
	g := &stubGetter{}

	ExecuteWithObserver(context.Background(), []string{"tt2", "tt1", "bad id", "tt3"}, g, 8, obs)

	if obs.startCalls != 1 {
		t.Fatalf("期望 OnStart 调用 1 次，实际 %d", obs.startCalls)
	}
	if obs.total != 4 {
		t.Fatalf("期望 total=4，实际 %d", obs.total)
	}
	// workers 不超过条目数。
	if obs.workers != 4 {
		t.Fatalf("期望 workers=4，实际 %d", obs.workers)
	}
	for i, idx := range obs.idx {
		if idx != i+1 {
			t.Fatalf("idx 应单调递增：%v", obs.idx)
		}
	}

	got := append([]string(nil), obs.ids...)
	sort.Strings(got)
	want := []string{"bad id", "tt1", "tt2", "tt3"}
	if len(got) != len(want) {
		t.Fatalf("期望 %v，实际 %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("期望 %v，实际 %v", want, got)
		}
	}
}
