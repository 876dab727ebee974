// Package alert 提供告警规则的求值与分发。
// 规则的Condition是一条对事件载荷求值的布尔表达式，
// 评估器订阅总线事件，命中规则后经触达插件送出并落一条面板通知。
package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/LENAX/quant-board/pkg/core/stream"
	"github.com/LENAX/quant-board/pkg/plugin"
	"github.com/LENAX/quant-board/pkg/state"
	"github.com/LENAX/quant-board/pkg/storage"
)

// ValidateCondition 校验规则表达式（对外导出）
// 空表达式合法（恒真）；非布尔结果或语法错误返回错误
func ValidateCondition(cond string) error {
	cond = strings.TrimSpace(cond)
	if cond == "" {
		return nil
	}
	if _, err := expr.Compile(cond, expr.AsBool(), expr.AllowUndefinedVariables()); err != nil {
		return fmt.Errorf("表达式无效: %w", err)
	}
	return nil
}

// evalCondition 对事件载荷求值
func evalCondition(prog *vm.Program, payload map[string]any) (bool, error) {
	if prog == nil {
		return true, nil
	}
	out, err := expr.Run(prog, payload)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("表达式结果必须是布尔值，实际为 %T", out)
	}
	return b, nil
}

// compiledRule 已编译的规则
type compiledRule struct {
	rule    *storage.AlertRule
	program *vm.Program // 空表达式时为nil
}

// Evaluator 告警评估器（对外导出）
type Evaluator struct {
	repo          storage.DashboardRepository
	notifiers     *plugin.Manager
	notifications *state.NotificationStore

	mu    sync.RWMutex
	rules map[string][]compiledRule // 事件主题 -> 规则
}

// NewEvaluator 创建告警评估器（对外导出）
func NewEvaluator(repo storage.DashboardRepository, notifiers *plugin.Manager, notifications *state.NotificationStore) *Evaluator {
	return &Evaluator{
		repo:          repo,
		notifiers:     notifiers,
		notifications: notifications,
		rules:         make(map[string][]compiledRule),
	}
}

// Reload 从存储加载启用的规则并编译（对外导出）
// 编译失败的规则跳过并告警日志，不影响其它规则
func (e *Evaluator) Reload(ctx context.Context) error {
	rules, err := e.repo.ListAlertRules(ctx, true)
	if err != nil {
		return fmt.Errorf("加载告警规则失败: %w", err)
	}

	compiled := make(map[string][]compiledRule)
	for _, rule := range rules {
		cr := compiledRule{rule: rule}
		cond := strings.TrimSpace(rule.Condition)
		if cond != "" {
			prog, err := expr.Compile(cond, expr.AsBool(), expr.AllowUndefinedVariables())
			if err != nil {
				log.Printf("⚠️ [告警] 规则 %s 表达式编译失败，已跳过: %v", rule.Name, err)
				continue
			}
			cr.program = prog
		}
		compiled[rule.Event] = append(compiled[rule.Event], cr)
	}

	e.mu.Lock()
	e.rules = compiled
	e.mu.Unlock()

	log.Printf("✅ [告警] 已加载 %d 条启用规则", len(rules))
	return nil
}

// Start 订阅总线主题并开始评估（对外导出）
// 先Reload再对每个出现在规则里的主题起一个消费协程
func (e *Evaluator) Start(ctx context.Context, bus *stream.Bus, topics ...string) error {
	if err := e.Reload(ctx); err != nil {
		return err
	}

	for _, topic := range topics {
		ch, err := bus.Subscribe(ctx, topic)
		if err != nil {
			return err
		}
		go e.consume(ctx, topic, ch)
	}

	log.Printf("🚨 [告警] 评估器启动, 订阅主题: %s", strings.Join(topics, ", "))
	return nil
}

// consume 消费单个主题
func (e *Evaluator) consume(ctx context.Context, topic string, ch <-chan *message.Message) {
	for msg := range ch {
		event := stream.DecodeEvent(msg)
		payload := decodePayload(event)
		e.Evaluate(ctx, topic, payload)
		msg.Ack()
	}
}

// decodePayload 事件载荷转求值环境；解析失败给空环境
func decodePayload(event stream.Event) map[string]any {
	payload := make(map[string]any)
	if len(event.Payload) > 0 {
		// 非对象载荷（数组等）放进value键
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			var v any
			if err2 := json.Unmarshal(event.Payload, &v); err2 == nil {
				payload["value"] = v
			}
		}
	}
	payload["topic"] = event.Topic
	return payload
}

// Evaluate 对一个事件评估所有匹配规则（对外导出）
func (e *Evaluator) Evaluate(ctx context.Context, topic string, payload map[string]any) {
	e.mu.RLock()
	rules := e.rules[topic]
	e.mu.RUnlock()

	for _, cr := range rules {
		hit, err := evalCondition(cr.program, payload)
		if err != nil {
			log.Printf("⚠️ [告警] 规则 %s 求值失败: %v", cr.rule.Name, err)
			continue
		}
		if !hit {
			continue
		}
		e.fire(ctx, cr.rule, topic, payload)
	}
}

// fire 规则命中：走触达通道 + 落面板通知
func (e *Evaluator) fire(ctx context.Context, rule *storage.AlertRule, topic string, payload map[string]any) {
	log.Printf("🚨 [告警] 规则命中: name=%s, event=%s", rule.Name, topic)

	data := plugin.AlertData{
		RuleID:   rule.ID,
		RuleName: rule.Name,
		Event:    topic,
		Payload:  payload,
		FiredAt:  time.Now(),
	}

	if rule.Channel != "" && e.notifiers != nil {
		if err := e.notifiers.Dispatch(rule.Channel, data); err != nil {
			log.Printf("⚠️ [告警] 触达失败: rule=%s, %v", rule.Name, err)
		}
	}

	if e.notifications != nil {
		body := fmt.Sprintf("事件 %s 命中规则「%s」", topic, rule.Name)
		if _, err := e.notifications.Append(ctx, storage.LevelWarning, "告警: "+rule.Name, body, "alert"); err != nil {
			log.Printf("⚠️ [告警] 写入通知失败: %v", err)
		}
	}
}
