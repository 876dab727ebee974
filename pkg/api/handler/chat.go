package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/quant-board/pkg/api/dto"
	"github.com/LENAX/quant-board/pkg/api/middleware"
	"github.com/LENAX/quant-board/pkg/core/assistant"
	"github.com/LENAX/quant-board/pkg/state"
	"github.com/LENAX/quant-board/pkg/storage"
)

// ChatHandler 助手会话处理器
type ChatHandler struct {
	chat      *state.ChatStore
	assistant *assistant.Service
	previewer *assistant.Previewer
}

// NewChatHandler 创建ChatHandler
func NewChatHandler(chat *state.ChatStore, svc *assistant.Service, previewer *assistant.Previewer) *ChatHandler {
	return &ChatHandler{chat: chat, assistant: svc, previewer: previewer}
}

// ListSessions 会话列表
// GET /api/v1/chat/sessions
func (h *ChatHandler) ListSessions(c *gin.Context) {
	user := middleware.CurrentUser(c)
	sessions, err := h.chat.ListSessions(c.Request.Context(), user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, "会话列表读取失败: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ListResponse[*storage.ChatSession]{
		Items: sessions,
		Total: len(sessions),
	}))
}

// CreateSession 新建会话
// POST /api/v1/chat/sessions
func (h *ChatHandler) CreateSession(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, "请求参数无效: "+err.Error()))
		return
	}

	session, err := h.chat.CreateSession(c.Request.Context(), middleware.CurrentUser(c), req.Title)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, "会话创建失败: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(session))
}

// Messages 会话消息列表
// GET /api/v1/chat/sessions/:id/messages
func (h *ChatHandler) Messages(c *gin.Context) {
	messages, err := h.chat.Messages(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.NewErrorResponse(404, "会话不存在"))
			return
		}
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, "消息读取失败: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ListResponse[*storage.ChatMessage]{
		Items: messages,
		Total: len(messages),
	}))
}

// DeleteSession 删除会话及其消息
// DELETE /api/v1/chat/sessions/:id
func (h *ChatHandler) DeleteSession(c *gin.Context) {
	err := h.chat.DeleteSession(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.NewErrorResponse(404, "会话不存在"))
			return
		}
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, "会话删除失败: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(map[string]string{"deleted": c.Param("id")}))
}

// Activate 切换当前会话
// POST /api/v1/chat/sessions/:id/activate
func (h *ChatHandler) Activate(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.chat.GetSession(c.Request.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.NewErrorResponse(404, "会话不存在"))
			return
		}
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, "会话读取失败: "+err.Error()))
		return
	}
	h.chat.SetActiveSession(middleware.CurrentUser(c), id)
	c.JSON(http.StatusOK, dto.NewSuccessResponse(map[string]string{"active": id}))
}

// Ask 向助手提问
// POST /api/v1/chat/ask
// session_id为空时自动新建会话，回复消息里带session_id
func (h *ChatHandler) Ask(c *gin.Context) {
	var req dto.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, "请求参数无效: "+err.Error()))
		return
	}

	reply, err := h.assistant.Ask(c.Request.Context(), middleware.CurrentUser(c), req.SessionID, req.Prompt)
	if err != nil {
		c.JSON(http.StatusBadGateway, dto.NewErrorResponse(502, "助手调用失败: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(reply))
}

// LinkPreview 链接卡片预览
// GET /api/v1/chat/link-preview?url=
func (h *ChatHandler) LinkPreview(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, "缺少url参数"))
		return
	}

	preview, err := h.previewer.Preview(c.Request.Context(), rawURL)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponse(422, "链接预览失败: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(preview))
}
