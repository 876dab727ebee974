package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"code":    0,
		"message": "success",
		"data":    data,
	})
}

func TestListChainsPassesQueryAndToken(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		gotAuth = r.Header.Get("Authorization")
		writeEnvelope(w, ChainList{
			Total: 1,
			Items: []ChainSummary{{ID: "chain-1", Name: "因子更新", TaskCount: 4, Status: "running"}},
		})
	}))
	defer server.Close()

	client := New(server.URL, WithToken("secret-token"))
	list, err := client.ListChains(context.Background(), "running", 10, 20)
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/chains?limit=10&offset=20&status=running", gotPath)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "chain-1", list.Items[0].ID)
}

func TestGetChainGraphDegradesMalformedNodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 一个好节点、一个缺ID的坏节点
		writeEnvelope(w, map[string]any{
			"nodes": []any{
				map[string]any{"id": "n1", "data": map[string]any{"label": "拉取行情", "status": "running"}},
				map[string]any{"data": map[string]any{"label": "没有ID"}},
			},
			"edges": []any{
				map[string]any{"source": "n1", "target": "n2"},
			},
		})
	}))
	defer server.Close()

	client := New(server.URL)
	g, err := client.GetChainGraph(context.Background(), "chain-1")
	require.NoError(t, err)

	require.Len(t, g.Nodes, 1)
	assert.Equal(t, "n1", g.Nodes[0].ID)
	assert.Equal(t, "拉取行情", g.Nodes[0].Label)
	// 悬空边原样透传
	assert.Len(t, g.Edges, 1)
}

func TestControlChainSendsAction(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		writeEnvelope(w, map[string]string{"action": "pause"})
	}))
	defer server.Close()

	client := New(server.URL)
	require.NoError(t, client.PauseChain(context.Background(), "chain-1"))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/v1/chains/chain-1/pause", gotPath)
}

func TestEngineErrorCodeSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"code":    40401,
			"message": "chain not found",
		})
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.GetChain(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chain not found")
}

func TestAskAssistantCarriesHistory(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeEnvelope(w, AssistantReply{Content: "最大回撤2.1%"})
	}))
	defer server.Close()

	client := New(server.URL)
	history := []ChatTurn{{Role: "user", Content: "你好"}}
	reply, err := client.AskAssistant(context.Background(), "sess-1", "今天的回撤", history)
	require.NoError(t, err)

	assert.Equal(t, "最大回撤2.1%", reply.Content)
	assert.Equal(t, "sess-1", gotBody["session_id"])
	assert.Equal(t, "今天的回撤", gotBody["prompt"])
	turns, ok := gotBody["history"].([]any)
	require.True(t, ok)
	assert.Len(t, turns, 1)
}

func TestContextCancellationAborts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := New(server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListStrategies(ctx)
	require.Error(t, err)
}
