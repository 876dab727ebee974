package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/quant-board/pkg/api/dto"
	"github.com/LENAX/quant-board/pkg/core/graphview"
	"github.com/LENAX/quant-board/pkg/core/poller"
	"github.com/LENAX/quant-board/pkg/state"
	"github.com/LENAX/quant-board/pkg/storage"
	"github.com/LENAX/quant-board/pkg/upstream"
)

// ChainHandler 任务链视图处理器
// 列表优先走轮询快照，详情与图实时拉取；
// 引擎不可达时除了错误响应还落一条面板通知
type ChainHandler struct {
	engine    *upstream.Client
	snapshots *poller.SnapshotStore
	appState  *state.AppState
	layout    graphview.LayoutOptions
}

// NewChainHandler 创建ChainHandler
func NewChainHandler(engine *upstream.Client, snapshots *poller.SnapshotStore, appState *state.AppState, layout graphview.LayoutOptions) *ChainHandler {
	return &ChainHandler{
		engine:    engine,
		snapshots: snapshots,
		appState:  appState,
		layout:    layout,
	}
}

// notifyFetchFailure 拉取失败时落面板通知
func (h *ChainHandler) notifyFetchFailure(c *gin.Context, what string, err error) {
	if h.appState == nil {
		return
	}
	// 通知失败只能放弃，错误响应already在路上
	h.appState.Notifications.Append(c.Request.Context(), storage.LevelError,
		"数据拉取失败", what+": "+err.Error(), "api")
}

// List 任务链列表
// GET /api/v1/chains?status=&limit=&offset=
// 快照命中时直接返回缓存；miss（如启动初期）时穿透到引擎
func (h *ChainHandler) List(c *gin.Context) {
	status := c.Query("status")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	// 无过滤的默认查询可以吃快照
	if status == "" && offset == 0 {
		if snap, ok := h.snapshots.Get(poller.KeyChains); ok {
			if list, ok := snap.Value.(*upstream.ChainList); ok {
				c.JSON(http.StatusOK, dto.NewSuccessResponse(list))
				return
			}
		}
	}

	list, err := h.engine.ListChains(c.Request.Context(), status, limit, offset)
	if err != nil {
		h.notifyFetchFailure(c, "任务链列表", err)
		c.JSON(http.StatusBadGateway, dto.NewErrorResponse(502, "引擎不可达: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(list))
}

// Get 任务链详情
// GET /api/v1/chains/:id
func (h *ChainHandler) Get(c *gin.Context) {
	detail, err := h.engine.GetChain(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.notifyFetchFailure(c, "任务链详情", err)
		c.JSON(http.StatusBadGateway, dto.NewErrorResponse(502, "引擎不可达: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(detail))
}

// layoutFromQuery 允许前端用query微调布局参数
func (h *ChainHandler) layoutFromQuery(c *gin.Context) graphview.LayoutOptions {
	opts := h.layout
	if v, err := strconv.ParseFloat(c.Query("h_spacing"), 64); err == nil && v > 0 {
		opts.HSpacing = v
	}
	if v, err := strconv.ParseFloat(c.Query("v_spacing"), 64); err == nil && v > 0 {
		opts.VSpacing = v
	}
	return opts
}

// Graph 渲染就绪的任务链图
// GET /api/v1/chains/:id/graph
// 完整投影：拉取 -> 层级 -> 坐标 -> 描述符
func (h *ChainHandler) Graph(c *gin.Context) {
	g, err := h.engine.GetChainGraph(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.notifyFetchFailure(c, "任务链图", err)
		c.JSON(http.StatusBadGateway, dto.NewErrorResponse(502, "引擎不可达: "+err.Error()))
		return
	}

	layout := graphview.ComputeLayout(g, h.layoutFromQuery(c))
	rg := graphview.BuildDescriptors(g, layout, graphview.DescriptorOptions{})
	c.JSON(http.StatusOK, dto.NewSuccessResponse(rg))
}

// Dot 任务链图DOT导出
// GET /api/v1/chains/:id/graph/dot
func (h *ChainHandler) Dot(c *gin.Context) {
	id := c.Param("id")
	g, err := h.engine.GetChainGraph(c.Request.Context(), id)
	if err != nil {
		h.notifyFetchFailure(c, "任务链图", err)
		c.JSON(http.StatusBadGateway, dto.NewErrorResponse(502, "引擎不可达: "+err.Error()))
		return
	}

	dot, err := graphview.ExportDOT(g, "chain_"+id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, "DOT导出失败: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.DotResponse{ChainID: id, Dot: dot}))
}

// Plan 执行计划预览（拓扑分批）
// GET /api/v1/chains/:id/plan
func (h *ChainHandler) Plan(c *gin.Context) {
	g, err := h.engine.GetChainGraph(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.notifyFetchFailure(c, "任务链图", err)
		c.JSON(http.StatusBadGateway, dto.NewErrorResponse(502, "引擎不可达: "+err.Error()))
		return
	}

	plan, err := graphview.ExecutionPlan(g)
	if err != nil {
		// 含环的载荷算不出执行计划，这是上游数据契约问题
		c.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponse(422, "执行计划计算失败: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(plan))
}

// Instances 任务链执行实例列表
// GET /api/v1/chains/:id/instances
func (h *ChainHandler) Instances(c *gin.Context) {
	status := c.Query("status")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	list, err := h.engine.GetChainInstances(c.Request.Context(), c.Param("id"), status, limit, offset)
	if err != nil {
		h.notifyFetchFailure(c, "执行实例", err)
		c.JSON(http.StatusBadGateway, dto.NewErrorResponse(502, "引擎不可达: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(list))
}

// Start 启动任务链
// POST /api/v1/chains/:id/start
func (h *ChainHandler) Start(c *gin.Context) {
	h.control(c, "start", h.engine.StartChain)
}

// Pause 暂停任务链
// POST /api/v1/chains/:id/pause
func (h *ChainHandler) Pause(c *gin.Context) {
	h.control(c, "pause", h.engine.PauseChain)
}

// Resume 恢复任务链
// POST /api/v1/chains/:id/resume
func (h *ChainHandler) Resume(c *gin.Context) {
	h.control(c, "resume", h.engine.ResumeChain)
}

// Cancel 取消任务链
// POST /api/v1/chains/:id/cancel
func (h *ChainHandler) Cancel(c *gin.Context) {
	h.control(c, "cancel", h.engine.CancelChain)
}

// control 控制动作公共逻辑：转发后即返回，不等待引擎状态收敛
func (h *ChainHandler) control(c *gin.Context, action string, fn func(ctx context.Context, id string) error) {
	if err := fn(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadGateway, dto.NewErrorResponse(502, "控制指令失败: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(map[string]string{"action": action}))
}

// Execute 带参触发任务链
// POST /api/v1/chains/:id/execute
func (h *ChainHandler) Execute(c *gin.Context) {
	var req dto.ExecuteChainRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, "请求参数无效: "+err.Error()))
		return
	}

	result, err := h.engine.ExecuteChain(c.Request.Context(), c.Param("id"), req.Params)
	if err != nil {
		c.JSON(http.StatusBadGateway, dto.NewErrorResponse(502, "触发执行失败: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}
