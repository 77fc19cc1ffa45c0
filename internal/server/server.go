package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/John-Robertt/titlemeta/internal/domain"
	"github.com/John-Robertt/titlemeta/internal/infra/logx"
)

// RequestIDHeader 回显在每个响应上；请求已携带时沿用调用方的值。
const RequestIDHeader = "X-Request-Id"

// Getter 是单个 title 的查询入口（title.Service 实现它）。
type Getter interface {
	Get(ctx context.Context, id domain.TitleID) domain.Record
}

// Options 是 HTTP API 的依赖。
type Options struct {
	Titles Getter

	// Gatherer 为空时不挂载 /metrics。
	Gatherer prometheus.Gatherer

	Log logx.Logger
}

type handler struct {
	titles Getter
	log    logx.Logger
}

// NewRouter 构造 HTTP API：
//
//	GET /title/{id}  200 记录；400 非法 id；502 降级记录
//	GET /healthz
//	GET /metrics
func NewRouter(o Options) *mux.Router {
	h := &handler{titles: o.Titles, log: o.Log}
	if h.log == nil {
		h.log = logx.Discard
	}

	r := mux.NewRouter()
	r.Use(h.requestID)

	r.HandleFunc("/title/{id}", h.getTitle).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)
	if o.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(o.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	return r
}

func (h *handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		started := time.Now()
		next.ServeHTTP(w, r)
		h.log.Emit(logx.Debug, "%s %s (%s) rid=%s", r.Method, r.URL.Path, time.Since(started).Round(time.Millisecond), id)
	})
}

func (h *handler) getTitle(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["id"]
	id, ok := domain.ParseTitleID(raw)
	if !ok {
		writeJSON(w, http.StatusBadRequest, domain.ErrorRecord(domain.TitleID(raw), "无效的 title id"))
		return
	}
	if h.titles == nil {
		writeJSON(w, http.StatusServiceUnavailable, domain.ErrorRecord(id, "未配置查询服务"))
		return
	}

	rec := h.titles.Get(r.Context(), id)
	status := http.StatusOK
	if rec.Failed() {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, rec)
}

func (h *handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
