// Package sqldb 提供DashboardRepository的sqlx通用实现。
// CRUD逻辑跨数据库共用：查询统一用?占位符经Rebind适配方言，
// 建表DDL与连接初始化由各数据库包的Dialect提供。
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/LENAX/quant-board/pkg/storage"
	"github.com/LENAX/quant-board/pkg/storage/dao"
)

// Repo DashboardRepository的sqlx实现（对外导出）
type Repo struct {
	db      *sqlx.DB
	dialect storage.Dialect
}

var _ storage.DashboardRepository = (*Repo)(nil)

// New 基于已打开的连接创建Repository（对外导出）
// 自动执行连接初始化与建表
func New(db *sqlx.DB, dialect storage.Dialect) (*Repo, error) {
	r := &Repo{db: db, dialect: dialect}

	for _, stmt := range dialect.ConfigureDB() {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("初始化连接失败(%s): %w", dialect.Name(), err)
		}
	}
	if err := r.initSchema(); err != nil {
		return nil, fmt.Errorf("初始化表结构失败(%s): %w", dialect.Name(), err)
	}
	return r, nil
}

// initSchema 执行方言提供的建表DDL
func (r *Repo) initSchema() error {
	for _, ddl := range r.dialect.Schema() {
		if _, err := r.db.Exec(ddl); err != nil {
			return err
		}
	}
	return nil
}

// GetDB 获取底层数据库连接（对外导出）
func (r *Repo) GetDB() *sqlx.DB {
	return r.db
}

// Close 关闭数据库连接（对外导出）
func (r *Repo) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ========== 会话 ==========

// SaveChatSession 新建或更新会话
func (r *Repo) SaveChatSession(ctx context.Context, session *storage.ChatSession) error {
	d := dao.FromChatSession(session)
	query := r.db.Rebind(`
		INSERT INTO chat_session (id, user_id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, updated_at = excluded.updated_at`)
	if r.dialect.Name() == "mysql" {
		query = r.db.Rebind(`
			INSERT INTO chat_session (id, user_id, title, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE title = VALUES(title), updated_at = VALUES(updated_at)`)
	}
	if _, err := r.db.ExecContext(ctx, query, d.ID, d.UserID, d.Title, d.CreatedAt, d.UpdatedAt); err != nil {
		return fmt.Errorf("保存会话失败: %w", err)
	}
	return nil
}

// GetChatSession 按ID查询会话
func (r *Repo) GetChatSession(ctx context.Context, id string) (*storage.ChatSession, error) {
	var d dao.ChatSessionDAO
	query := r.db.Rebind(`SELECT id, user_id, title, created_at, updated_at FROM chat_session WHERE id = ?`)
	if err := r.db.GetContext(ctx, &d, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("查询会话失败: %w", err)
	}
	return d.ToModel(), nil
}

// ListChatSessions 列出用户的会话，按更新时间倒序
func (r *Repo) ListChatSessions(ctx context.Context, userID string) ([]*storage.ChatSession, error) {
	var rows []dao.ChatSessionDAO
	query := r.db.Rebind(`SELECT id, user_id, title, created_at, updated_at FROM chat_session WHERE user_id = ? ORDER BY updated_at DESC`)
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("列出会话失败: %w", err)
	}
	sessions := make([]*storage.ChatSession, 0, len(rows))
	for i := range rows {
		sessions = append(sessions, rows[i].ToModel())
	}
	return sessions, nil
}

// DeleteChatSession 删除会话及其全部消息
func (r *Repo) DeleteChatSession(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM chat_message WHERE session_id = ?`), id); err != nil {
		return fmt.Errorf("删除会话消息失败: %w", err)
	}
	if _, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM chat_session WHERE id = ?`), id); err != nil {
		return fmt.Errorf("删除会话失败: %w", err)
	}
	return tx.Commit()
}

// DeleteChatSessionsBefore 删除更新时间早于cutoff的会话
func (r *Repo) DeleteChatSessionsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, r.db.Rebind(
		`DELETE FROM chat_message WHERE session_id IN (SELECT id FROM chat_session WHERE updated_at < ?)`), cutoff); err != nil {
		return 0, fmt.Errorf("清理会话消息失败: %w", err)
	}
	res, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM chat_session WHERE updated_at < ?`), cutoff)
	if err != nil {
		return 0, fmt.Errorf("清理会话失败: %w", err)
	}
	count, _ := res.RowsAffected()
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

// SaveChatMessage 追加消息并推进会话更新时间
func (r *Repo) SaveChatMessage(ctx context.Context, msg *storage.ChatMessage) error {
	d := dao.FromChatMessage(msg)
	query := r.db.Rebind(`INSERT INTO chat_message (id, session_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, d.ID, d.SessionID, d.Role, d.Content, d.CreatedAt); err != nil {
		return fmt.Errorf("保存消息失败: %w", err)
	}

	touch := r.db.Rebind(`UPDATE chat_session SET updated_at = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, touch, d.CreatedAt, d.SessionID); err != nil {
		return fmt.Errorf("更新会话时间失败: %w", err)
	}
	return nil
}

// ListChatMessages 列出会话的消息，按创建时间正序
func (r *Repo) ListChatMessages(ctx context.Context, sessionID string) ([]*storage.ChatMessage, error) {
	var rows []dao.ChatMessageDAO
	query := r.db.Rebind(`SELECT id, session_id, role, content, created_at FROM chat_message WHERE session_id = ? ORDER BY created_at ASC`)
	if err := r.db.SelectContext(ctx, &rows, query, sessionID); err != nil {
		return nil, fmt.Errorf("列出消息失败: %w", err)
	}
	msgs := make([]*storage.ChatMessage, 0, len(rows))
	for i := range rows {
		msgs = append(msgs, rows[i].ToModel())
	}
	return msgs, nil
}

// ========== 偏好 ==========

// SetPreference 写入单条用户偏好
func (r *Repo) SetPreference(ctx context.Context, userID, key, value string) error {
	now := time.Now()
	query := r.db.Rebind(`
		INSERT INTO user_preference (user_id, pref_key, pref_value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, pref_key) DO UPDATE SET pref_value = excluded.pref_value, updated_at = excluded.updated_at`)
	if r.dialect.Name() == "mysql" {
		query = r.db.Rebind(`
			INSERT INTO user_preference (user_id, pref_key, pref_value, updated_at)
			VALUES (?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE pref_value = VALUES(pref_value), updated_at = VALUES(updated_at)`)
	}
	if _, err := r.db.ExecContext(ctx, query, userID, key, value, now); err != nil {
		return fmt.Errorf("写入偏好失败: %w", err)
	}
	return nil
}

// GetPreferences 读取用户全部偏好键值
func (r *Repo) GetPreferences(ctx context.Context, userID string) (map[string]string, error) {
	var rows []dao.PreferenceDAO
	query := r.db.Rebind(`SELECT user_id, pref_key, pref_value, updated_at FROM user_preference WHERE user_id = ?`)
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("读取偏好失败: %w", err)
	}
	prefs := make(map[string]string, len(rows))
	for _, row := range rows {
		prefs[row.PrefKey] = row.PrefValue
	}
	return prefs, nil
}

// ========== 通知 ==========

// SaveNotification 追加通知
func (r *Repo) SaveNotification(ctx context.Context, n *storage.Notification) error {
	d := dao.FromNotification(n)
	query := r.db.Rebind(`INSERT INTO notification (id, level, title, body, source, read_flag, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, d.ID, d.Level, d.Title, d.Body, d.Source, d.Read, d.CreatedAt); err != nil {
		return fmt.Errorf("保存通知失败: %w", err)
	}
	return nil
}

// ListNotifications 列出通知，按创建时间倒序
func (r *Repo) ListNotifications(ctx context.Context, unreadOnly bool, limit int) ([]*storage.Notification, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `SELECT id, level, title, body, source, read_flag, created_at FROM notification`
	args := []any{}
	if unreadOnly {
		q += ` WHERE read_flag = ?`
		args = append(args, false)
	}
	q += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	var rows []dao.NotificationDAO
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("列出通知失败: %w", err)
	}
	list := make([]*storage.Notification, 0, len(rows))
	for i := range rows {
		list = append(list, rows[i].ToModel())
	}
	return list, nil
}

// MarkNotificationRead 标记单条已读
func (r *Repo) MarkNotificationRead(ctx context.Context, id string) error {
	query := r.db.Rebind(`UPDATE notification SET read_flag = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, true, id)
	if err != nil {
		return fmt.Errorf("标记已读失败: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// MarkAllNotificationsRead 全部标记已读
func (r *Repo) MarkAllNotificationsRead(ctx context.Context) error {
	query := r.db.Rebind(`UPDATE notification SET read_flag = ? WHERE read_flag = ?`)
	if _, err := r.db.ExecContext(ctx, query, true, false); err != nil {
		return fmt.Errorf("全部标记已读失败: %w", err)
	}
	return nil
}

// PurgeReadNotifications 清理早于cutoff的已读通知
func (r *Repo) PurgeReadNotifications(ctx context.Context, cutoff time.Time) (int64, error) {
	query := r.db.Rebind(`DELETE FROM notification WHERE read_flag = ? AND created_at < ?`)
	res, err := r.db.ExecContext(ctx, query, true, cutoff)
	if err != nil {
		return 0, fmt.Errorf("清理通知失败: %w", err)
	}
	count, _ := res.RowsAffected()
	return count, nil
}

// ========== 告警规则 ==========

// SaveAlertRule 新建或更新规则
func (r *Repo) SaveAlertRule(ctx context.Context, rule *storage.AlertRule) error {
	d := dao.FromAlertRule(rule)
	query := r.db.Rebind(`
		INSERT INTO alert_rule (id, name, event, condition_expr, channel, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, event = excluded.event, condition_expr = excluded.condition_expr,
			channel = excluded.channel, enabled = excluded.enabled, updated_at = excluded.updated_at`)
	if r.dialect.Name() == "mysql" {
		query = r.db.Rebind(`
			INSERT INTO alert_rule (id, name, event, condition_expr, channel, enabled, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE
				name = VALUES(name), event = VALUES(event), condition_expr = VALUES(condition_expr),
				channel = VALUES(channel), enabled = VALUES(enabled), updated_at = VALUES(updated_at)`)
	}
	if _, err := r.db.ExecContext(ctx, query,
		d.ID, d.Name, d.Event, d.Condition, d.Channel, d.Enabled, d.CreatedAt, d.UpdatedAt); err != nil {
		return fmt.Errorf("保存告警规则失败: %w", err)
	}
	return nil
}

// GetAlertRule 按ID查询规则
func (r *Repo) GetAlertRule(ctx context.Context, id string) (*storage.AlertRule, error) {
	var d dao.AlertRuleDAO
	query := r.db.Rebind(`SELECT id, name, event, condition_expr, channel, enabled, created_at, updated_at FROM alert_rule WHERE id = ?`)
	if err := r.db.GetContext(ctx, &d, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("查询告警规则失败: %w", err)
	}
	return d.ToModel(), nil
}

// ListAlertRules 列出规则
func (r *Repo) ListAlertRules(ctx context.Context, enabledOnly bool) ([]*storage.AlertRule, error) {
	q := `SELECT id, name, event, condition_expr, channel, enabled, created_at, updated_at FROM alert_rule`
	args := []any{}
	if enabledOnly {
		q += ` WHERE enabled = ?`
		args = append(args, true)
	}
	q += ` ORDER BY created_at ASC`

	var rows []dao.AlertRuleDAO
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("列出告警规则失败: %w", err)
	}
	rules := make([]*storage.AlertRule, 0, len(rows))
	for i := range rows {
		rules = append(rules, rows[i].ToModel())
	}
	return rules, nil
}

// DeleteAlertRule 删除规则
func (r *Repo) DeleteAlertRule(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM alert_rule WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("删除告警规则失败: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
