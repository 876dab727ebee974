package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/LENAX/quant-board/pkg/api/dto"
	"github.com/LENAX/quant-board/pkg/core/alert"
	"github.com/LENAX/quant-board/pkg/storage"
)

// AlertHandler 告警规则处理器
// 规则增删改后热加载评估器，不需要重启服务
type AlertHandler struct {
	repo      storage.DashboardRepository
	evaluator *alert.Evaluator
}

// NewAlertHandler 创建AlertHandler
func NewAlertHandler(repo storage.DashboardRepository, evaluator *alert.Evaluator) *AlertHandler {
	return &AlertHandler{repo: repo, evaluator: evaluator}
}

// reload 规则变更后刷新评估器
func (h *AlertHandler) reload(c *gin.Context) {
	if h.evaluator == nil {
		return
	}
	if err := h.evaluator.Reload(c.Request.Context()); err != nil {
		log.Printf("⚠️ [告警] 规则热加载失败: %v", err)
	}
}

// List 规则列表
// GET /api/v1/alerts/rules
func (h *AlertHandler) List(c *gin.Context) {
	rules, err := h.repo.ListAlertRules(c.Request.Context(), false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, "规则读取失败: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ListResponse[*storage.AlertRule]{
		Items: rules,
		Total: len(rules),
	}))
}

// Create 新建规则
// POST /api/v1/alerts/rules
func (h *AlertHandler) Create(c *gin.Context) {
	var req dto.SaveAlertRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, "请求参数无效: "+err.Error()))
		return
	}
	if err := alert.ValidateCondition(req.Condition); err != nil {
		c.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponse(422, "条件表达式无效: "+err.Error()))
		return
	}

	now := time.Now()
	rule := &storage.AlertRule{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Event:     req.Event,
		Condition: req.Condition,
		Channel:   req.Channel,
		Enabled:   req.Enabled == nil || *req.Enabled,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.repo.SaveAlertRule(c.Request.Context(), rule); err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, "规则保存失败: "+err.Error()))
		return
	}
	h.reload(c)
	c.JSON(http.StatusOK, dto.NewSuccessResponse(rule))
}

// Update 更新规则
// PUT /api/v1/alerts/rules/:id
func (h *AlertHandler) Update(c *gin.Context) {
	var req dto.SaveAlertRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, "请求参数无效: "+err.Error()))
		return
	}
	if err := alert.ValidateCondition(req.Condition); err != nil {
		c.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponse(422, "条件表达式无效: "+err.Error()))
		return
	}

	rule, err := h.repo.GetAlertRule(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.NewErrorResponse(404, "规则不存在"))
			return
		}
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, "规则读取失败: "+err.Error()))
		return
	}

	rule.Name = req.Name
	rule.Event = req.Event
	rule.Condition = req.Condition
	rule.Channel = req.Channel
	if req.Enabled != nil {
		rule.Enabled = *req.Enabled
	}
	rule.UpdatedAt = time.Now()

	if err := h.repo.SaveAlertRule(c.Request.Context(), rule); err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, "规则保存失败: "+err.Error()))
		return
	}
	h.reload(c)
	c.JSON(http.StatusOK, dto.NewSuccessResponse(rule))
}

// Delete 删除规则
// DELETE /api/v1/alerts/rules/:id
func (h *AlertHandler) Delete(c *gin.Context) {
	if err := h.repo.DeleteAlertRule(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.NewErrorResponse(404, "规则不存在"))
			return
		}
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, "规则删除失败: "+err.Error()))
		return
	}
	h.reload(c)
	c.JSON(http.StatusOK, dto.NewSuccessResponse(map[string]string{"deleted": c.Param("id")}))
}
