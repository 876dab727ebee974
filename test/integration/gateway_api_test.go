package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/quant-board/pkg/api"
	"github.com/LENAX/quant-board/pkg/core/assistant"
	"github.com/LENAX/quant-board/pkg/core/cache"
	"github.com/LENAX/quant-board/pkg/core/graphview"
	"github.com/LENAX/quant-board/pkg/core/poller"
	"github.com/LENAX/quant-board/pkg/state"
	"github.com/LENAX/quant-board/pkg/upstream"
	"github.com/LENAX/quant-board/test/mocks"
)

// testGateway 一套完整的网关路由与其依赖
type testGateway struct {
	router *gin.Engine
	engine *mocks.MockEngine
	token  string
}

func newTestGateway(t *testing.T) *testGateway {
	t.Helper()

	mockEngine := mocks.NewMockEngine()
	t.Cleanup(mockEngine.Close)

	repo := mocks.NewMockDashboardRepository()
	appState := state.New(repo, nil)
	client := upstream.New(mockEngine.URL())

	deps := api.Deps{
		Engine:    client,
		Snapshots: poller.NewSnapshotStore(),
		AppState:  appState,
		Repo:      repo,
		Assistant: assistant.NewService(appState.Chat, client),
		Previewer: assistant.NewPreviewer(cache.NewMemoryCache()),
		Layout:    graphview.DefaultLayoutOptions(),

		AuthSecret:    "integration-test-secret",
		TokenTTL:      time.Hour,
		AdminUser:     "admin",
		AdminPassword: "changeme",
		Version:       "test",
	}
	router := api.SetupRouter(deps)

	gw := &testGateway{router: router, engine: mockEngine}
	gw.token = gw.login(t, "admin", "changeme")
	return gw
}

func (g *testGateway) login(t *testing.T, user, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": user, "password": password})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	g.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

// do 带令牌请求
func (g *testGateway) do(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.token)
	g.router.ServeHTTP(w, req)
	return w
}

func TestLoginRejectsBadPassword(t *testing.T) {
	gw := newTestGateway(t)

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	gw.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	gw := newTestGateway(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/chains", nil)
	gw.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChainListPassthrough(t *testing.T) {
	gw := newTestGateway(t)

	w := gw.do(http.MethodGet, "/api/v1/chains", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data upstream.ChainList `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, "chain-1", resp.Data.Items[0].ID)
}

func TestChainGraphIsRenderReady(t *testing.T) {
	gw := newTestGateway(t)

	w := gw.do(http.MethodGet, "/api/v1/chains/chain-1/graph", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data graphview.RenderGraph `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Nodes, 3)

	// fetch -> calc -> store 链式依赖，x坐标逐层递增
	byID := map[string]graphview.RenderNode{}
	for _, n := range resp.Data.Nodes {
		byID[n.ID] = n
	}
	assert.Less(t, byID["fetch"].Position.X, byID["calc"].Position.X)
	assert.Less(t, byID["calc"].Position.X, byID["store"].Position.X)

	// 状态样式已附着在节点数据上
	assert.NotEmpty(t, byID["calc"].Data.Style.Background)
}

func TestChainControlForwarded(t *testing.T) {
	gw := newTestGateway(t)

	w := gw.do(http.MethodPost, "/api/v1/chains/chain-1/pause", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, []string{"pause chain-1"}, gw.engine.Actions())
}

func TestChainPlanStages(t *testing.T) {
	gw := newTestGateway(t)

	w := gw.do(http.MethodGet, "/api/v1/chains/chain-1/plan", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data graphview.Plan `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Data.Depth)
	assert.Equal(t, [][]string{{"fetch"}, {"calc"}, {"store"}}, resp.Data.Stages)
}

func TestStrategyScreenFiltersSnapshot(t *testing.T) {
	gw := newTestGateway(t)

	w := gw.do(http.MethodPost, "/api/v1/strategies/screen", map[string]string{
		"expression": "sharpe > 1.0 && max_drawdown < 0.2",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Items []upstream.StrategySummary `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, "s1", resp.Data.Items[0].ID)
}

func TestStrategyScreenRejectsBadExpression(t *testing.T) {
	gw := newTestGateway(t)

	w := gw.do(http.MethodPost, "/api/v1/strategies/screen", map[string]string{
		"expression": "sharpe >",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAskCreatesSessionAndPersistsTurns(t *testing.T) {
	gw := newTestGateway(t)

	w := gw.do(http.MethodPost, "/api/v1/chat/ask", map[string]string{
		"prompt": "今天的回撤怎么样",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			SessionID string `json:"session_id"`
			Role      string `json:"role"`
			Content   string `json:"content"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.SessionID)
	assert.Equal(t, "assistant", resp.Data.Role)
	assert.Equal(t, "收到: 今天的回撤怎么样", resp.Data.Content)

	// 会话里应有一问一答两条消息
	w = gw.do(http.MethodGet, "/api/v1/chat/sessions/"+resp.Data.SessionID+"/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var msgResp struct {
		Data struct {
			Total int `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msgResp))
	assert.Equal(t, 2, msgResp.Data.Total)
}

func TestPreferencesRoundtrip(t *testing.T) {
	gw := newTestGateway(t)

	w := gw.do(http.MethodPut, "/api/v1/preferences", map[string]any{
		"theme":                 "dark",
		"poll_interval_seconds": 5,
		"pinned_chains":         []string{"chain-1"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = gw.do(http.MethodGet, "/api/v1/preferences", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data state.Preferences `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "dark", resp.Data.Theme)
	assert.Equal(t, []string{"chain-1"}, resp.Data.PinnedChains)
}

func TestUpstreamFailureWritesNotification(t *testing.T) {
	gw := newTestGateway(t)

	gw.engine.FailNext()
	w := gw.do(http.MethodGet, "/api/v1/chains?status=failed", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = gw.do(http.MethodGet, "/api/v1/notifications?unread_only=true", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Total int `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Total)
}

func TestAlertRuleCRUDOverAPI(t *testing.T) {
	gw := newTestGateway(t)

	w := gw.do(http.MethodPost, "/api/v1/alerts/rules", map[string]any{
		"name":      "失败告警",
		"event":     "chain.status_changed",
		"condition": `status == "failed"`,
		"channel":   "webhook",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var createResp struct {
		Data struct {
			ID      string `json:"id"`
			Enabled bool   `json:"enabled"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &createResp))
	require.NotEmpty(t, createResp.Data.ID)
	assert.True(t, createResp.Data.Enabled)

	// 非法表达式被拒
	w = gw.do(http.MethodPost, "/api/v1/alerts/rules", map[string]any{
		"name":      "坏规则",
		"event":     "chain.status_changed",
		"condition": "status ==",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = gw.do(http.MethodDelete, "/api/v1/alerts/rules/"+createResp.Data.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
