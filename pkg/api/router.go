package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/quant-board/pkg/api/handler"
	"github.com/LENAX/quant-board/pkg/api/middleware"
	"github.com/LENAX/quant-board/pkg/core/alert"
	"github.com/LENAX/quant-board/pkg/core/assistant"
	"github.com/LENAX/quant-board/pkg/core/graphview"
	"github.com/LENAX/quant-board/pkg/core/poller"
	"github.com/LENAX/quant-board/pkg/core/stream"
	"github.com/LENAX/quant-board/pkg/state"
	"github.com/LENAX/quant-board/pkg/storage"
	"github.com/LENAX/quant-board/pkg/upstream"
)

// Deps 路由依赖集合
type Deps struct {
	Engine    *upstream.Client          // 上游引擎客户端
	Snapshots *poller.SnapshotStore     // 轮询快照
	AppState  *state.AppState           // 会话/偏好/通知
	Repo      storage.DashboardRepository
	Assistant *assistant.Service   // 助手服务
	Previewer *assistant.Previewer // 链接预览
	Evaluator *alert.Evaluator     // 告警评估器，可为nil
	Hub       *stream.Hub          // WebSocket推送中枢
	Layout    graphview.LayoutOptions

	AuthSecret    string        // JWT签名密钥
	TokenTTL      time.Duration // 令牌有效期
	AdminUser     string        // 管理员账号
	AdminPassword string        // 管理员口令
	Version       string        // 服务版本号
}

// SetupRouter 设置路由
func SetupRouter(deps Deps) *gin.Engine {
	// 设置gin模式
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// 全局中间件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS())

	// 创建handlers
	healthHandler := handler.NewHealthHandler(deps.Version)
	authHandler := handler.NewAuthHandler([]byte(deps.AuthSecret), deps.TokenTTL, deps.AdminUser, deps.AdminPassword)
	chainHandler := handler.NewChainHandler(deps.Engine, deps.Snapshots, deps.AppState, deps.Layout)
	strategyHandler := handler.NewStrategyHandler(deps.Engine, deps.Snapshots)
	knowledgeHandler := handler.NewKnowledgeHandler(deps.Engine, deps.Snapshots, deps.Layout)
	chatHandler := handler.NewChatHandler(deps.AppState.Chat, deps.Assistant, deps.Previewer)
	preferenceHandler := handler.NewPreferenceHandler(deps.AppState.Preferences)
	notificationHandler := handler.NewNotificationHandler(deps.AppState.Notifications)
	alertHandler := handler.NewAlertHandler(deps.Repo, deps.Evaluator)

	// 健康检查与登录（不鉴权）
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.POST("/api/v1/auth/login", authHandler.Login)

	// API v1 路由组（JWT鉴权）
	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth([]byte(deps.AuthSecret)))
	{
		// 任务链路由
		chains := v1.Group("/chains")
		{
			chains.GET("", chainHandler.List)
			chains.GET("/:id", chainHandler.Get)
			chains.GET("/:id/graph", chainHandler.Graph)
			chains.GET("/:id/graph/dot", chainHandler.Dot)
			chains.GET("/:id/plan", chainHandler.Plan)
			chains.GET("/:id/instances", chainHandler.Instances)
			chains.POST("/:id/start", chainHandler.Start)
			chains.POST("/:id/pause", chainHandler.Pause)
			chains.POST("/:id/resume", chainHandler.Resume)
			chains.POST("/:id/cancel", chainHandler.Cancel)
			chains.POST("/:id/execute", chainHandler.Execute)
		}

		// 策略路由
		strategies := v1.Group("/strategies")
		{
			strategies.GET("", strategyHandler.List)
			strategies.POST("/screen", strategyHandler.Screen)
			strategies.GET("/:id", strategyHandler.Get)
			strategies.GET("/:id/performance", strategyHandler.Performance)
		}

		// 知识图谱路由
		v1.GET("/knowledge/graph", knowledgeHandler.Graph)

		// 助手会话路由
		chat := v1.Group("/chat")
		{
			chat.GET("/sessions", chatHandler.ListSessions)
			chat.POST("/sessions", chatHandler.CreateSession)
			chat.GET("/sessions/:id/messages", chatHandler.Messages)
			chat.DELETE("/sessions/:id", chatHandler.DeleteSession)
			chat.POST("/sessions/:id/activate", chatHandler.Activate)
			chat.POST("/ask", chatHandler.Ask)
			chat.GET("/link-preview", chatHandler.LinkPreview)
		}

		// 偏好路由
		v1.GET("/preferences", preferenceHandler.Get)
		v1.PUT("/preferences", preferenceHandler.Put)

		// 通知路由
		notifications := v1.Group("/notifications")
		{
			notifications.GET("", notificationHandler.List)
			notifications.POST("/read-all", notificationHandler.MarkAllRead)
			notifications.POST("/:id/read", notificationHandler.MarkRead)
		}

		// 告警规则路由
		alerts := v1.Group("/alerts/rules")
		{
			alerts.GET("", alertHandler.List)
			alerts.POST("", alertHandler.Create)
			alerts.PUT("/:id", alertHandler.Update)
			alerts.DELETE("/:id", alertHandler.Delete)
		}

		// 实时事件推送（WS握手带?token=）
		if deps.Hub != nil {
			v1.GET("/stream", func(c *gin.Context) {
				deps.Hub.ServeWS(c.Writer, c.Request)
			})
		}
	}

	return router
}
