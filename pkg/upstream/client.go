package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/LENAX/quant-board/pkg/core/graphview"
)

// Client 引擎HTTP API客户端（对外导出）
// 无重试、无退避、无缓存：拉取失败直接上抛，由轮询层在下一个周期重试
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option 客户端可选配置（对外导出）
type Option func(*Client)

// WithTimeout 设置请求超时
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithToken 设置引擎API访问令牌
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New 创建引擎客户端（对外导出）
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ========== 任务链 只读API ==========

// ListChains 列出任务链
func (c *Client) ListChains(ctx context.Context, status string, limit, offset int) (*ChainList, error) {
	params := url.Values{}
	if status != "" {
		params.Set("status", status)
	}
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}
	if offset > 0 {
		params.Set("offset", fmt.Sprintf("%d", offset))
	}

	path := "/api/v1/chains"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp envelope[ChainList]
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("引擎返回业务错误: code=%d, message=%s", resp.Code, resp.Message)
	}
	return &resp.Data, nil
}

// GetChain 获取任务链详情
func (c *Client) GetChain(ctx context.Context, id string) (*ChainDetail, error) {
	var resp envelope[ChainDetail]
	if err := c.get(ctx, "/api/v1/chains/"+id, &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("引擎返回业务错误: code=%d, message=%s", resp.Code, resp.Message)
	}
	return &resp.Data, nil
}

// GetChainGraph 获取任务链DAG原始载荷并解析为图结构
// 信封解析失败是错误；图字段内容脏数据由graphview逐字段容错降级
func (c *Client) GetChainGraph(ctx context.Context, id string) (*graphview.Graph, error) {
	var resp envelope[json.RawMessage]
	if err := c.get(ctx, "/api/v1/chains/"+id+"/graph", &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("引擎返回业务错误: code=%d, message=%s", resp.Code, resp.Message)
	}
	return graphview.ParseGraph(resp.Data), nil
}

// GetChainInstances 查询任务链执行实例
func (c *Client) GetChainInstances(ctx context.Context, id, status string, limit, offset int) (*InstanceList, error) {
	params := url.Values{}
	if status != "" {
		params.Set("status", status)
	}
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}
	if offset > 0 {
		params.Set("offset", fmt.Sprintf("%d", offset))
	}

	path := "/api/v1/chains/" + id + "/instances"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp envelope[InstanceList]
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("引擎返回业务错误: code=%d, message=%s", resp.Code, resp.Message)
	}
	return &resp.Data, nil
}

// ========== 任务链 控制API（即发即弃） ==========

// StartChain 启动任务链
func (c *Client) StartChain(ctx context.Context, id string) error {
	return c.control(ctx, id, "start", nil)
}

// PauseChain 暂停任务链
func (c *Client) PauseChain(ctx context.Context, id string) error {
	return c.control(ctx, id, "pause", nil)
}

// ResumeChain 恢复任务链
func (c *Client) ResumeChain(ctx context.Context, id string) error {
	return c.control(ctx, id, "resume", nil)
}

// CancelChain 取消任务链
func (c *Client) CancelChain(ctx context.Context, id string) error {
	return c.control(ctx, id, "cancel", nil)
}

// ExecuteChain 带参数触发任务链执行
func (c *Client) ExecuteChain(ctx context.Context, id string, params map[string]any) (*ExecuteResult, error) {
	var resp envelope[ExecuteResult]
	if err := c.post(ctx, "/api/v1/chains/"+id+"/execute", map[string]any{"params": params}, &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("引擎返回业务错误: code=%d, message=%s", resp.Code, resp.Message)
	}
	return &resp.Data, nil
}

// control 控制动作统一入口：只关心信封是否成功，不消费响应体
func (c *Client) control(ctx context.Context, id, action string, body any) error {
	var resp envelope[json.RawMessage]
	if err := c.post(ctx, "/api/v1/chains/"+id+"/"+action, body, &resp); err != nil {
		return err
	}
	if resp.Code != 0 {
		return fmt.Errorf("控制指令 %s 失败: code=%d, message=%s", action, resp.Code, resp.Message)
	}
	return nil
}

// ========== 策略 只读API ==========

// ListStrategies 列出策略快照
func (c *Client) ListStrategies(ctx context.Context) ([]StrategySummary, error) {
	var resp envelope[[]StrategySummary]
	if err := c.get(ctx, "/api/v1/strategies", &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("引擎返回业务错误: code=%d, message=%s", resp.Code, resp.Message)
	}
	return resp.Data, nil
}

// GetStrategy 获取策略详情
func (c *Client) GetStrategy(ctx context.Context, id string) (*StrategyDetail, error) {
	var resp envelope[StrategyDetail]
	if err := c.get(ctx, "/api/v1/strategies/"+id, &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("引擎返回业务错误: code=%d, message=%s", resp.Code, resp.Message)
	}
	return &resp.Data, nil
}

// GetStrategyPerformance 获取策略净值序列
func (c *Client) GetStrategyPerformance(ctx context.Context, id, window string) (*PerformanceSeries, error) {
	path := "/api/v1/strategies/" + id + "/performance"
	if window != "" {
		path += "?window=" + url.QueryEscape(window)
	}

	var resp envelope[PerformanceSeries]
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("引擎返回业务错误: code=%d, message=%s", resp.Code, resp.Message)
	}
	return &resp.Data, nil
}

// ========== 知识图谱 只读API ==========

// GetKnowledgeGraph 拉取知识图谱切片（与任务链共用节点/边载荷格式）
func (c *Client) GetKnowledgeGraph(ctx context.Context, root string, depth int) (*graphview.Graph, error) {
	params := url.Values{}
	if root != "" {
		params.Set("root", root)
	}
	if depth > 0 {
		params.Set("depth", fmt.Sprintf("%d", depth))
	}

	path := "/api/v1/knowledge/graph"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp envelope[json.RawMessage]
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("引擎返回业务错误: code=%d, message=%s", resp.Code, resp.Message)
	}
	return graphview.ParseGraph(resp.Data), nil
}

// ========== 助手API ==========

// AskAssistant 调用引擎侧的对话助手
func (c *Client) AskAssistant(ctx context.Context, sessionID, prompt string, history []ChatTurn) (*AssistantReply, error) {
	req := map[string]any{
		"session_id": sessionID,
		"prompt":     prompt,
		"history":    history,
	}

	var resp envelope[AssistantReply]
	if err := c.post(ctx, "/api/v1/assistant/ask", req, &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("助手调用失败: code=%d, message=%s", resp.Code, resp.Message)
	}
	return &resp.Data, nil
}

// ========== HTTP基础方法 ==========

func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	return c.do(req, result)
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("序列化请求体失败: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应体失败: %w", err)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("解析响应失败: %w, body: %s", err, string(body))
	}

	return nil
}
