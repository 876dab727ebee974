// Package qboard 提供面板网关的HTTP API客户端，供CLI使用。
package qboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/LENAX/quant-board/pkg/api/dto"
	"github.com/LENAX/quant-board/pkg/core/graphview"
	"github.com/LENAX/quant-board/pkg/storage"
	"github.com/LENAX/quant-board/pkg/upstream"
)

// QuantBoard 网关HTTP API客户端
type QuantBoard struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New 创建QuantBoard客户端
func New(baseURL, token string) *QuantBoard {
	return &QuantBoard{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ========== Auth API ==========

// Login 登录换取令牌
func (q *QuantBoard) Login(username, password string) (*dto.TokenResponse, error) {
	req := dto.LoginRequest{Username: username, Password: password}
	var resp dto.APIResponse[dto.TokenResponse]
	if err := q.post("/api/v1/auth/login", req, &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, errors.New(resp.Message)
	}
	q.token = resp.Data.Token
	return &resp.Data, nil
}

// ========== Chain API ==========

// ListChains 列出任务链
func (q *QuantBoard) ListChains(status string, limit, offset int) (*upstream.ChainList, error) {
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

	var resp dto.APIResponse[upstream.ChainList]
	if err := q.get(path, &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, errors.New(resp.Message)
	}
	return &resp.Data, nil
}

// GetChain 获取任务链详情
func (q *QuantBoard) GetChain(id string) (*upstream.ChainDetail, error) {
	var resp dto.APIResponse[upstream.ChainDetail]
	if err := q.get("/api/v1/chains/"+id, &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, errors.New(resp.Message)
	}
	return &resp.Data, nil
}

// GetChainGraph 获取渲染就绪的任务链图
func (q *QuantBoard) GetChainGraph(id string) (*graphview.RenderGraph, error) {
	var resp dto.APIResponse[graphview.RenderGraph]
	if err := q.get("/api/v1/chains/"+id+"/graph", &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, errors.New(resp.Message)
	}
	return &resp.Data, nil
}

// GetChainDot 获取任务链图DOT导出
func (q *QuantBoard) GetChainDot(id string) (*dto.DotResponse, error) {
	var resp dto.APIResponse[dto.DotResponse]
	if err := q.get("/api/v1/chains/"+id+"/graph/dot", &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, errors.New(resp.Message)
	}
	return &resp.Data, nil
}

// GetChainPlan 获取执行计划预览
func (q *QuantBoard) GetChainPlan(id string) (*graphview.Plan, error) {
	var resp dto.APIResponse[graphview.Plan]
	if err := q.get("/api/v1/chains/"+id+"/plan", &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, errors.New(resp.Message)
	}
	return &resp.Data, nil
}

// ControlChain 下发控制指令（start/pause/resume/cancel）
func (q *QuantBoard) ControlChain(id, action string) error {
	var resp dto.APIResponse[map[string]string]
	if err := q.post("/api/v1/chains/"+id+"/"+action, nil, &resp); err != nil {
		return err
	}
	if resp.Code != 0 {
		return errors.New(resp.Message)
	}
	return nil
}

// ========== Strategy API ==========

// ListStrategies 列出策略
func (q *QuantBoard) ListStrategies() (*dto.ListResponse[upstream.StrategySummary], error) {
	var resp dto.APIResponse[dto.ListResponse[upstream.StrategySummary]]
	if err := q.get("/api/v1/strategies", &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, errors.New(resp.Message)
	}
	return &resp.Data, nil
}

// ScreenStrategies 表达式筛选策略
func (q *QuantBoard) ScreenStrategies(expression string) (*dto.ListResponse[upstream.StrategySummary], error) {
	req := dto.ScreenRequest{Expression: expression}
	var resp dto.APIResponse[dto.ListResponse[upstream.StrategySummary]]
	if err := q.post("/api/v1/strategies/screen", req, &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, errors.New(resp.Message)
	}
	return &resp.Data, nil
}

// ========== Notification API ==========

// ListNotifications 列出通知
func (q *QuantBoard) ListNotifications(unreadOnly bool, limit int) (*dto.ListResponse[*storage.Notification], error) {
	params := url.Values{}
	if unreadOnly {
		params.Set("unread_only", "true")
	}
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}

	var resp dto.APIResponse[dto.ListResponse[*storage.Notification]]
	if err := q.get("/api/v1/notifications?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, errors.New(resp.Message)
	}
	return &resp.Data, nil
}

// MarkNotificationRead 标记通知已读
func (q *QuantBoard) MarkNotificationRead(id string) error {
	var resp dto.APIResponse[map[string]string]
	if err := q.post("/api/v1/notifications/"+id+"/read", nil, &resp); err != nil {
		return err
	}
	if resp.Code != 0 {
		return errors.New(resp.Message)
	}
	return nil
}

// ========== Health API ==========

// Health 健康检查
func (q *QuantBoard) Health() (*dto.HealthResponse, error) {
	var resp dto.APIResponse[dto.HealthResponse]
	if err := q.get("/health", &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, errors.New(resp.Message)
	}
	return &resp.Data, nil
}

// ========== HTTP Methods ==========

func (q *QuantBoard) get(path string, result interface{}) error {
	req, err := http.NewRequest(http.MethodGet, q.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	return q.do(req, result)
}

func (q *QuantBoard) post(path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("序列化请求体失败: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(http.MethodPost, q.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return q.do(req, result)
}

func (q *QuantBoard) do(req *http.Request, result interface{}) error {
	if q.token != "" {
		req.Header.Set("Authorization", "Bearer "+q.token)
	}

	resp, err := q.httpClient.Do(req)
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
