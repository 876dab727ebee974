// Package upstream 封装对上游量化任务引擎REST API的只读与控制调用。
// 本网关不拥有任何执行语义：数据采集、任务调度、DAG执行、因子计算、
// 风险分析全部在引擎侧完成，这里只负责拉取展示数据和转发控制指令。
package upstream

import "time"

// envelope 引擎API通用响应信封
type envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

// ChainSummary 任务链摘要信息（对外导出）
type ChainSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	TaskCount   int       `json:"task_count"`
	Status      string    `json:"status"`
	CronExpr    string    `json:"cron_expr,omitempty"`
	CronEnabled bool      `json:"cron_enabled"`
	CreatedAt   time.Time `json:"created_at"`
}

// ChainDetail 任务链详细信息（对外导出）
type ChainDetail struct {
	ChainSummary
	Tasks        []ChainTask         `json:"tasks"`
	Dependencies map[string][]string `json:"dependencies"`
}

// ChainTask 任务链中的单个任务（对外导出）
type ChainTask struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	TaskType     string   `json:"task_type"`
	Dependencies []string `json:"dependencies,omitempty"`
	Timeout      int      `json:"timeout,omitempty"`
	RetryCount   int      `json:"retry_count,omitempty"`
}

// ChainInstance 任务链执行实例（对外导出）
type ChainInstance struct {
	ID           string     `json:"id"`
	ChainID      string     `json:"chain_id"`
	ChainName    string     `json:"chain_name,omitempty"`
	Status       string     `json:"status"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	Duration     string     `json:"duration,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// ChainList 任务链列表响应（对外导出）
type ChainList struct {
	Total   int            `json:"total"`
	Items   []ChainSummary `json:"items"`
	HasMore bool           `json:"has_more"`
}

// InstanceList 实例列表响应（对外导出）
type InstanceList struct {
	Total   int             `json:"total"`
	Items   []ChainInstance `json:"items"`
	HasMore bool            `json:"has_more"`
}

// ExecuteResult 触发执行的响应（对外导出）
type ExecuteResult struct {
	InstanceID string `json:"instance_id"`
	Message    string `json:"message"`
}

// StrategySummary 策略摘要信息（对外导出）
type StrategySummary struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Style        []string `json:"style,omitempty"`
	NAV          float64  `json:"nav"`
	ReturnRate   float64  `json:"return_rate"`
	AnnualReturn float64  `json:"annual_return"`
	MaxDrawdown  float64  `json:"max_drawdown"`
	Sharpe       float64  `json:"sharpe"`
	Positions    int      `json:"positions"`
	Status       string   `json:"status"`
}

// StrategyDetail 策略详细信息（对外导出）
type StrategyDetail struct {
	StrategySummary
	Description string            `json:"description"`
	Params      map[string]string `json:"params,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// PerformancePoint 策略净值曲线上的一个采样点（对外导出）
type PerformancePoint struct {
	Date     string  `json:"date"`
	NAV      float64 `json:"nav"`
	Drawdown float64 `json:"drawdown"`
	Benchmark float64 `json:"benchmark,omitempty"`
}

// PerformanceSeries 策略净值序列（对外导出）
// 直接透传给前端图表组件，网关不做任何指标计算
type PerformanceSeries struct {
	StrategyID string             `json:"strategy_id"`
	Window     string             `json:"window"`
	Points     []PerformancePoint `json:"points"`
}

// ChatTurn 会话历史中的一轮对话（对外导出）
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AssistantReply 助手回复（对外导出）
type AssistantReply struct {
	Content    string   `json:"content"`
	References []string `json:"references,omitempty"`
}
