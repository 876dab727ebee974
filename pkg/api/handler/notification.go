package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/quant-board/pkg/api/dto"
	"github.com/LENAX/quant-board/pkg/state"
	"github.com/LENAX/quant-board/pkg/storage"
)

// NotificationHandler 面板通知处理器
type NotificationHandler struct {
	notifications *state.NotificationStore
}

// NewNotificationHandler 创建NotificationHandler
func NewNotificationHandler(notifications *state.NotificationStore) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List 通知列表
// GET /api/v1/notifications?unread_only=&limit=
func (h *NotificationHandler) List(c *gin.Context) {
	unreadOnly := c.Query("unread_only") == "true"
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	list, err := h.notifications.List(c.Request.Context(), unreadOnly, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, "通知读取失败: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ListResponse[*storage.Notification]{
		Items: list,
		Total: len(list),
	}))
}

// MarkRead 标记单条已读
// POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notifications.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.NewErrorResponse(404, "通知不存在"))
			return
		}
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, "标记已读失败: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(map[string]string{"read": c.Param("id")}))
}

// MarkAllRead 全部标记已读
// POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notifications.MarkAllRead(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, "标记已读失败: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(map[string]string{"read": "all"}))
}
