package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/quant-board/pkg/api/dto"
	"github.com/LENAX/quant-board/pkg/api/middleware"
	"github.com/LENAX/quant-board/pkg/state"
)

// PreferenceHandler 界面偏好处理器
type PreferenceHandler struct {
	prefs *state.PreferenceStore
}

// NewPreferenceHandler 创建PreferenceHandler
func NewPreferenceHandler(prefs *state.PreferenceStore) *PreferenceHandler {
	return &PreferenceHandler{prefs: prefs}
}

// Get 当前用户偏好，缺失项回落默认值
// GET /api/v1/preferences
func (h *PreferenceHandler) Get(c *gin.Context) {
	prefs, err := h.prefs.Get(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, "偏好读取失败: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(prefs))
}

// Put 全量覆盖当前用户偏好
// PUT /api/v1/preferences
func (h *PreferenceHandler) Put(c *gin.Context) {
	var req dto.PutPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, "请求参数无效: "+err.Error()))
		return
	}

	prefs := state.Preferences{
		Theme:               req.Theme,
		PollIntervalSeconds: req.PollIntervalSeconds,
		PinnedChains:        req.PinnedChains,
	}
	if err := h.prefs.Put(c.Request.Context(), middleware.CurrentUser(c), prefs); err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, "偏好写入失败: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(prefs))
}
