// internal/api/router.go
package api

import (
	"fmt"
	"net/http"
	"os"

	"github.com/Corphon/ShortSparkMCP/internal/config"
	"github.com/Corphon/ShortSparkMCP/internal/di"
	"github.com/Corphon/ShortSparkMCP/internal/services"
	"github.com/gin-gonic/gin"
)

// SetupRouter 配置HTTP路由
func SetupRouter() (*gin.Engine, error) {
	cfg := config.GetCurrentConfig()

	// 获取依赖注入容器
	container := di.GetContainer()

	// 只从容器获取服务，不创建新实例
	recommendService, ok := container.Get("recommend").(*services.RecommendService)
	if !ok {
		return nil, fmt.Errorf("推荐服务未正确初始化")
	}

	selectionService, ok := container.Get("selection").(*services.SelectionService)
	if !ok {
		return nil, fmt.Errorf("选中服务未正确初始化")
	}

	libraryService, ok := container.Get("library").(*services.LibraryService)
	if !ok {
		return nil, fmt.Errorf("收藏库服务未正确初始化")
	}

	captionService, ok := container.Get("caption").(*services.CaptionService)
	if !ok {
		return nil, fmt.Errorf("字幕服务未正确初始化")
	}

	generationService, ok := container.Get("generation").(*services.GenerationService)
	if !ok {
		return nil, fmt.Errorf("生成服务未正确初始化")
	}

	wsManager, ok := container.Get("websocket").(*WebSocketManager)
	if !ok {
		return nil, fmt.Errorf("WebSocket管理器未正确初始化")
	}

	handler := NewHandler(
		recommendService,
		selectionService,
		libraryService,
		captionService,
		generationService,
		wsManager,
	)

	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	r.Use(CORSMiddleware())
	r.Use(RequestIDMiddleware())

	// 静态文件服务（前端页面）
	if _, err := os.Stat(cfg.StaticDir); err == nil {
		r.Static("/static", cfg.StaticDir)
		r.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusFound, "/static/index.html")
		})
	}

	// WebSocket 预览事件订阅
	r.GET("/ws", handler.PreviewWebSocket)

	// ===============================
	// API路由组
	// ===============================
	api := r.Group("/api")
	{
		// 创意推荐
		api.POST("/recommend", handler.RecommendConcepts)
		api.GET("/suggestions", handler.GetSuggestions)

		// 选中与预览
		selectionGroup := api.Group("/selection")
		{
			selectionGroup.GET("", handler.GetSelection)
			selectionGroup.POST("", handler.SelectConcept)
			selectionGroup.POST("/audio", handler.PreviewAudio)
		}

		// 字幕提取
		api.POST("/captions", handler.ExtractCaptions)

		// 收藏库
		libraryGroup := api.Group("/library")
		{
			libraryGroup.GET("", handler.ListLibrary)
			libraryGroup.POST("", handler.SaveToLibrary)
			libraryGroup.DELETE("", handler.ClearLibrary)
			libraryGroup.DELETE("/:id", handler.RemoveFromLibrary)
		}

		// 设置
		settingsGroup := api.Group("/settings")
		{
			settingsGroup.GET("", handler.GetSettings)
			settingsGroup.POST("", handler.UpdateSettings)
		}

		// 健康检查
		api.GET("/health", handler.HealthCheck)
	}

	return r, nil
}
