// Package app 面板网关的装配与生命周期管理。
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LENAX/quant-board/internal/storage"
	"github.com/LENAX/quant-board/pkg/api"
	"github.com/LENAX/quant-board/pkg/config"
	"github.com/LENAX/quant-board/pkg/core/alert"
	"github.com/LENAX/quant-board/pkg/core/assistant"
	"github.com/LENAX/quant-board/pkg/core/cache"
	"github.com/LENAX/quant-board/pkg/core/graphview"
	"github.com/LENAX/quant-board/pkg/core/poller"
	"github.com/LENAX/quant-board/pkg/core/refresh"
	"github.com/LENAX/quant-board/pkg/core/stream"
	"github.com/LENAX/quant-board/pkg/plugin"
	"github.com/LENAX/quant-board/pkg/state"
	storagepkg "github.com/LENAX/quant-board/pkg/storage"
	"github.com/LENAX/quant-board/pkg/upstream"
)

// Version 服务版本号，构建时注入
var Version = "0.1.0"

// Run 装配并运行面板网关，阻塞到收到退出信号
func Run(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}

	// 持久化层
	repo, err := storage.NewDashboardRepository(cfg.Storage.Database.Type, cfg.Storage.Database.DSN)
	if err != nil {
		return fmt.Errorf("初始化存储失败: %w", err)
	}
	defer repo.Close()

	// 事件总线与应用状态
	bus := stream.NewBus(false)
	defer bus.Close()
	appState := state.New(repo, bus)

	// 上游引擎客户端
	engineOpts := []upstream.Option{upstream.WithTimeout(cfg.Upstream.Timeout.Std())}
	if cfg.Upstream.Token != "" {
		engineOpts = append(engineOpts, upstream.WithToken(cfg.Upstream.Token))
	}
	engine := upstream.New(cfg.Upstream.BaseURL, engineOpts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 轮询器：拉取成功发事件，失败落通知
	snapshots := poller.NewSnapshotStore()
	onError := func(name string, err error) {
		if _, aerr := appState.Notifications.Append(ctx, storagepkg.LevelError,
			"后台拉取失败", name+": "+err.Error(), "poller"); aerr != nil {
			log.Printf("⚠️ [装配] 拉取失败通知写入失败: %v", aerr)
		}
	}
	pollers := poller.NewGroup(
		poller.NewPoller("任务链列表", poller.KeyChains, cfg.Polling.Chains.Std(), snapshots,
			func(ctx context.Context) (any, error) {
				return engine.ListChains(ctx, "", 200, 0)
			},
			poller.WithUpdateHook(func(key string, snap poller.Snapshot) {
				if err := bus.Publish(stream.TopicChainStatusChanged, snap.Value); err != nil {
					log.Printf("⚠️ [装配] 任务链事件发布失败: %v", err)
				}
			}),
			poller.WithErrorHook(onError),
		),
		poller.NewPoller("策略快照", poller.KeyStrategies, cfg.Polling.Strategies.Std(), snapshots,
			func(ctx context.Context) (any, error) {
				return engine.ListStrategies(ctx)
			},
			poller.WithUpdateHook(func(key string, snap poller.Snapshot) {
				if err := bus.Publish(stream.TopicStrategiesUpdated, snap.Value); err != nil {
					log.Printf("⚠️ [装配] 策略事件发布失败: %v", err)
				}
			}),
			poller.WithErrorHook(onError),
		),
		poller.NewPoller("知识图谱", poller.KeyKnowledge, cfg.Polling.Knowledge.Std(), snapshots,
			func(ctx context.Context) (any, error) {
				return engine.GetKnowledgeGraph(ctx, "", 0)
			},
			poller.WithUpdateHook(func(key string, snap poller.Snapshot) {
				if err := bus.Publish(stream.TopicGraphUpdated, snap.Value); err != nil {
					log.Printf("⚠️ [装配] 图谱事件发布失败: %v", err)
				}
			}),
			poller.WithErrorHook(onError),
		),
	)
	pollers.Start(ctx)

	// WebSocket推送中枢：订阅全部面板事件
	hub := stream.NewHub()
	if err := hub.Start(ctx, bus,
		stream.TopicChainStatusChanged,
		stream.TopicStrategiesUpdated,
		stream.TopicGraphUpdated,
		stream.TopicNotificationCreated,
	); err != nil {
		return fmt.Errorf("启动推送中枢失败: %w", err)
	}

	// 告警评估器（可选）
	var evaluator *alert.Evaluator
	if cfg.Alerts.Enabled {
		notifiers := plugin.NewManager()
		for channel, params := range cfg.Alerts.Channels {
			var p plugin.Plugin
			switch channel {
			case "email":
				p = plugin.NewEmailPlugin()
			case "webhook":
				p = plugin.NewWebhookPlugin()
			default:
				log.Printf("⚠️ [装配] 未知告警通道: %s，已跳过", channel)
				continue
			}
			if err := notifiers.RegisterWithInit(p, params); err != nil {
				log.Printf("⚠️ [装配] 告警通道注册失败 %s: %v", channel, err)
			}
		}

		evaluator = alert.NewEvaluator(repo, notifiers, appState.Notifications)
		if err := evaluator.Reload(ctx); err != nil {
			log.Printf("⚠️ [装配] 告警规则加载失败: %v", err)
		}
		if err := evaluator.Start(ctx, bus,
			stream.TopicChainStatusChanged,
			stream.TopicStrategiesUpdated,
		); err != nil {
			return fmt.Errorf("启动告警评估器失败: %w", err)
		}
	}

	// 定时清理：过期会话与已读通知
	scheduler := refresh.NewScheduler()
	err = scheduler.Register("retention-cleanup", cfg.Cleanup.CronExpr, func(ctx context.Context) {
		if n, err := appState.Chat.PurgeBefore(ctx, time.Now().Add(-cfg.Cleanup.ChatRetention.Std())); err != nil {
			log.Printf("⚠️ [清理] 会话清理失败: %v", err)
		} else if n > 0 {
			log.Printf("🧹 [清理] 清理过期会话 %d 个", n)
		}
		if n, err := appState.Notifications.PurgeRead(ctx, time.Now().Add(-cfg.Cleanup.NotificationRetention.Std())); err != nil {
			log.Printf("⚠️ [清理] 通知清理失败: %v", err)
		} else if n > 0 {
			log.Printf("🧹 [清理] 清理已读通知 %d 条", n)
		}
	})
	if err != nil {
		return fmt.Errorf("注册清理任务失败: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// API服务器
	deps := api.Deps{
		Engine:    engine,
		Snapshots: snapshots,
		AppState:  appState,
		Repo:      repo,
		Assistant: assistant.NewService(appState.Chat, engine),
		Previewer: assistant.NewPreviewer(cache.NewMemoryCache()),
		Evaluator: evaluator,
		Hub:       hub,
		Layout: graphview.LayoutOptions{
			HSpacing: cfg.Layout.HSpacing,
			VSpacing: cfg.Layout.VSpacing,
			BaseX:    cfg.Layout.BaseX,
			BaseY:    cfg.Layout.BaseY,
		},
		AuthSecret:    cfg.Auth.Secret,
		TokenTTL:      cfg.Auth.TokenTTL.Std(),
		AdminUser:     cfg.Auth.AdminUser,
		AdminPassword: cfg.Auth.AdminPassword,
		Version:       Version,
	}
	server := api.NewAPIServer(deps, api.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
	})

	go func() {
		if err := server.Start(); err != nil {
			log.Printf("API服务器错误: %v", err)
		}
	}()

	log.Printf("✅ Quant Board Gateway v%s started on %s", Version, server.Addr())

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	cancel()
	pollers.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("关闭API服务器失败: %v", err)
	}

	log.Println("✅ 服务已停止")
	return nil
}
