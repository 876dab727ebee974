package plugin

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// EmailPlugin 邮件触达插件（对外导出）
type EmailPlugin struct {
	smtpHost string
	smtpPort string
	from     string
	to       []string
}

// NewEmailPlugin 创建邮件触达插件（对外导出）
func NewEmailPlugin() *EmailPlugin {
	return &EmailPlugin{}
}

// Name 插件名称（实现Plugin接口，对外导出）
func (e *EmailPlugin) Name() string {
	return "email"
}

// Init 初始化插件（实现Plugin接口，对外导出）
func (e *EmailPlugin) Init(params map[string]string) error {
	e.smtpHost = params["smtp_host"]
	e.smtpPort = params["smtp_port"]
	if e.smtpPort == "" {
		e.smtpPort = "25"
	}
	e.from = params["from"]
	if to := params["to"]; to != "" {
		e.to = strings.Split(to, ",")
	}

	if e.smtpHost == "" {
		return fmt.Errorf("缺少smtp_host参数")
	}
	if len(e.to) == 0 {
		return fmt.Errorf("缺少to参数")
	}

	log.Println("✅ 邮件触达插件初始化完成")
	return nil
}

// Execute 发送告警邮件（实现Plugin接口，对外导出）
func (e *EmailPlugin) Execute(data AlertData) error {
	subject := fmt.Sprintf("[量化面板告警] %s", data.RuleName)
	body := fmt.Sprintf("规则: %s\r\n事件: %s\r\n触发时间: %s\r\n载荷: %v\r\n",
		data.RuleName, data.Event, data.FiredAt.Format("2006-01-02 15:04:05"), data.Payload)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		e.from, strings.Join(e.to, ","), subject, body)

	addr := e.smtpHost + ":" + e.smtpPort
	if err := smtp.SendMail(addr, nil, e.from, e.to, []byte(msg)); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	log.Printf("📧 [告警] 邮件已发送: rule=%s, event=%s", data.RuleName, data.Event)
	return nil
}
