package mocks

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/LENAX/quant-board/pkg/upstream"
)

// MockEngine 模拟上游任务引擎的HTTP服务
// 返回固定数据集，控制指令记录在内存里供断言
type MockEngine struct {
	Server *httptest.Server

	mu       sync.Mutex
	actions  []string // 收到的控制指令，形如 "pause chain-1"
	failNext bool     // 下一个请求返回500
}

// NewMockEngine 启动模拟引擎
func NewMockEngine() *MockEngine {
	m := &MockEngine{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/chains", m.listChains)
	mux.HandleFunc("GET /api/v1/chains/{id}", m.getChain)
	mux.HandleFunc("GET /api/v1/chains/{id}/graph", m.getGraph)
	mux.HandleFunc("GET /api/v1/chains/{id}/instances", m.listInstances)
	mux.HandleFunc("POST /api/v1/chains/{id}/{action}", m.control)
	mux.HandleFunc("GET /api/v1/strategies", m.listStrategies)
	mux.HandleFunc("GET /api/v1/strategies/{id}/performance", m.performance)
	mux.HandleFunc("GET /api/v1/knowledge/graph", m.getGraph)
	mux.HandleFunc("POST /api/v1/assistant/ask", m.ask)

	m.Server = httptest.NewServer(mux)
	return m
}

// Close 关闭模拟引擎
func (m *MockEngine) Close() {
	m.Server.Close()
}

// URL 模拟引擎地址
func (m *MockEngine) URL() string {
	return m.Server.URL
}

// Actions 收到的控制指令
func (m *MockEngine) Actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.actions))
	copy(out, m.actions)
	return out
}

// FailNext 让下一个请求返回500
func (m *MockEngine) FailNext() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = true
}

func (m *MockEngine) shouldFail() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return true
	}
	return false
}

func (m *MockEngine) write(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"code":    0,
		"message": "success",
		"data":    data,
	})
}

func (m *MockEngine) listChains(w http.ResponseWriter, r *http.Request) {
	if m.shouldFail() {
		http.Error(w, "engine down", http.StatusInternalServerError)
		return
	}
	m.write(w, upstream.ChainList{
		Total: 2,
		Items: []upstream.ChainSummary{
			{ID: "chain-1", Name: "因子更新", TaskCount: 4, Status: "running", CreatedAt: time.Now()},
			{ID: "chain-2", Name: "日终结算", TaskCount: 7, Status: "success", CreatedAt: time.Now()},
		},
	})
}

func (m *MockEngine) getChain(w http.ResponseWriter, r *http.Request) {
	m.write(w, upstream.ChainDetail{
		ChainSummary: upstream.ChainSummary{
			ID: r.PathValue("id"), Name: "因子更新", TaskCount: 2, Status: "running",
		},
	})
}

func (m *MockEngine) getGraph(w http.ResponseWriter, r *http.Request) {
	m.write(w, map[string]any{
		"nodes": []any{
			map[string]any{"id": "fetch", "data": map[string]any{"label": "拉取行情", "status": "completed"}},
			map[string]any{"id": "calc", "data": map[string]any{"label": "计算因子", "status": "running", "progress": 0.6}},
			map[string]any{"id": "store", "data": map[string]any{"label": "入库", "status": "pending"}},
		},
		"edges": []any{
			map[string]any{"source": "fetch", "target": "calc"},
			map[string]any{"source": "calc", "target": "store"},
		},
	})
}

func (m *MockEngine) listInstances(w http.ResponseWriter, r *http.Request) {
	m.write(w, upstream.InstanceList{Total: 0, Items: []upstream.ChainInstance{}})
}

func (m *MockEngine) control(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.actions = append(m.actions, r.PathValue("action")+" "+r.PathValue("id"))
	m.mu.Unlock()
	m.write(w, map[string]string{"action": r.PathValue("action")})
}

func (m *MockEngine) listStrategies(w http.ResponseWriter, r *http.Request) {
	m.write(w, []upstream.StrategySummary{
		{ID: "s1", Name: "动量精选", Style: []string{"momentum"}, NAV: 1.32, AnnualReturn: 0.18, MaxDrawdown: 0.12, Sharpe: 1.8, Status: "running"},
		{ID: "s2", Name: "均值回归", Style: []string{"mean-reversion"}, NAV: 0.98, AnnualReturn: 0.05, MaxDrawdown: 0.25, Sharpe: 0.6, Status: "paused"},
	})
}

func (m *MockEngine) performance(w http.ResponseWriter, r *http.Request) {
	m.write(w, upstream.PerformanceSeries{
		StrategyID: r.PathValue("id"),
		Window:     r.URL.Query().Get("window"),
		Points: []upstream.PerformancePoint{
			{Date: "2026-08-28", NAV: 1.30, Drawdown: 0.02},
			{Date: "2026-08-29", NAV: 1.32, Drawdown: 0.01},
		},
	})
}

func (m *MockEngine) ask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt  string              `json:"prompt"`
		History []upstream.ChatTurn `json:"history"`
	}
	json.NewDecoder(r.Body).Decode(&req)
	m.write(w, upstream.AssistantReply{
		Content: "收到: " + req.Prompt,
	})
}
