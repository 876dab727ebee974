package dto

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ExecuteChainRequest 带参触发任务链请求
type ExecuteChainRequest struct {
	Params map[string]any `json:"params"`
}

// ScreenRequest 策略筛选请求
type ScreenRequest struct {
	Expression string `json:"expression"`
}

// CreateSessionRequest 新建会话请求
type CreateSessionRequest struct {
	Title string `json:"title"`
}

// AskRequest 助手提问请求
type AskRequest struct {
	SessionID string `json:"session_id"`
	Prompt    string `json:"prompt" binding:"required"`
}

// PutPreferencesRequest 偏好写入请求
type PutPreferencesRequest struct {
	Theme               string   `json:"theme"`
	PollIntervalSeconds int      `json:"poll_interval_seconds"`
	PinnedChains        []string `json:"pinned_chains"`
}

// SaveAlertRuleRequest 告警规则写入请求
type SaveAlertRuleRequest struct {
	Name      string `json:"name" binding:"required"`
	Event     string `json:"event" binding:"required"`
	Condition string `json:"condition"`
	Channel   string `json:"channel"`
	Enabled   *bool  `json:"enabled"`
}
