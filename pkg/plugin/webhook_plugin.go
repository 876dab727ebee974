package plugin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// WebhookPlugin Webhook触达插件（对外导出）
// 把告警数据POST到配置的回调地址，非2xx视为失败
type WebhookPlugin struct {
	url        string
	httpClient *http.Client
}

// NewWebhookPlugin 创建Webhook触达插件（对外导出）
func NewWebhookPlugin() *WebhookPlugin {
	return &WebhookPlugin{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Name 插件名称（实现Plugin接口，对外导出）
func (w *WebhookPlugin) Name() string {
	return "webhook"
}

// Init 初始化插件（实现Plugin接口，对外导出）
func (w *WebhookPlugin) Init(params map[string]string) error {
	w.url = params["url"]
	if w.url == "" {
		return fmt.Errorf("缺少url参数")
	}
	log.Println("✅ Webhook触达插件初始化完成")
	return nil
}

// Execute 推送告警到回调地址（实现Plugin接口，对外导出）
func (w *WebhookPlugin) Execute(data AlertData) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("序列化告警数据失败: %w", err)
	}

	resp, err := w.httpClient.Post(w.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("推送Webhook失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("Webhook返回异常状态: %d", resp.StatusCode)
	}

	log.Printf("🔔 [告警] Webhook已推送: rule=%s, event=%s", data.RuleName, data.Event)
	return nil
}
