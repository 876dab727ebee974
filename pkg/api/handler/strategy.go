package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/quant-board/pkg/api/dto"
	"github.com/LENAX/quant-board/pkg/core/poller"
	"github.com/LENAX/quant-board/pkg/core/strategy"
	"github.com/LENAX/quant-board/pkg/upstream"
)

// StrategyHandler 策略视图处理器
type StrategyHandler struct {
	engine    *upstream.Client
	snapshots *poller.SnapshotStore
}

// NewStrategyHandler 创建StrategyHandler
func NewStrategyHandler(engine *upstream.Client, snapshots *poller.SnapshotStore) *StrategyHandler {
	return &StrategyHandler{engine: engine, snapshots: snapshots}
}

// snapshot 策略快照，miss时穿透到引擎
func (h *StrategyHandler) snapshot(c *gin.Context) ([]upstream.StrategySummary, error) {
	if snap, ok := h.snapshots.Get(poller.KeyStrategies); ok {
		if list, ok := snap.Value.([]upstream.StrategySummary); ok {
			return list, nil
		}
	}
	return h.engine.ListStrategies(c.Request.Context())
}

// List 策略列表
// GET /api/v1/strategies
func (h *StrategyHandler) List(c *gin.Context) {
	list, err := h.snapshot(c)
	if err != nil {
		c.JSON(http.StatusBadGateway, dto.NewErrorResponse(502, "引擎不可达: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ListResponse[upstream.StrategySummary]{
		Items: list,
		Total: len(list),
	}))
}

// Get 策略详情
// GET /api/v1/strategies/:id
func (h *StrategyHandler) Get(c *gin.Context) {
	detail, err := h.engine.GetStrategy(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadGateway, dto.NewErrorResponse(502, "引擎不可达: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(detail))
}

// Performance 策略绩效曲线
// GET /api/v1/strategies/:id/performance?window=30d
func (h *StrategyHandler) Performance(c *gin.Context) {
	window := c.DefaultQuery("window", "30d")
	series, err := h.engine.GetStrategyPerformance(c.Request.Context(), c.Param("id"), window)
	if err != nil {
		c.JSON(http.StatusBadGateway, dto.NewErrorResponse(502, "引擎不可达: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(series))
}

// Screen 策略表达式筛选
// POST /api/v1/strategies/screen
// 表达式在快照上本地求值，不转发引擎
func (h *StrategyHandler) Screen(c *gin.Context) {
	var req dto.ScreenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, "请求参数无效: "+err.Error()))
		return
	}

	list, err := h.snapshot(c)
	if err != nil {
		c.JSON(http.StatusBadGateway, dto.NewErrorResponse(502, "引擎不可达: "+err.Error()))
		return
	}

	matched, err := strategy.Screen(list, req.Expression)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponse(422, "筛选表达式无效: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ListResponse[upstream.StrategySummary]{
		Items: matched,
		Total: len(matched),
	}))
}
