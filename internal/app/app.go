// internal/app/app.go
package app

import (
	"fmt"

	"github.com/Corphon/ShortSparkMCP/internal/api"
	"github.com/Corphon/ShortSparkMCP/internal/config"
	"github.com/Corphon/ShortSparkMCP/internal/di"
	"github.com/Corphon/ShortSparkMCP/internal/logging"
	"github.com/Corphon/ShortSparkMCP/internal/services"
	"github.com/Corphon/ShortSparkMCP/internal/storage"
)

// InitServices 按依赖顺序初始化所有服务并注册到容器
//
// 顺序很重要：生成服务依赖配置，选中服务依赖生成和语音，
// 推荐服务依赖生成和选中。
func InitServices() error {
	log := logging.ForComponent("app")
	container := di.GetContainer()

	appConfig := config.GetCurrentConfig()
	if appConfig == nil {
		return fmt.Errorf("配置系统尚未初始化")
	}

	// 1. 文件存储
	fileStorage, err := storage.NewFileStorage(appConfig.DataDir)
	if err != nil {
		return fmt.Errorf("初始化文件存储失败: %w", err)
	}
	container.Register("storage", fileStorage)

	// 2. 生成提供商服务（未配置密钥时可运行，操作时报错提示）
	generationService := services.NewGenerationService(appConfig)
	container.Register("generation", generationService)

	// 3. 语音服务（合成 + 本机播放）
	speechService := services.NewSpeechService(generationService, services.NewOtoPlayer())
	container.Register("speech", speechService)

	// 4. 选中与预览服务
	selectionService := services.NewSelectionService(generationService, speechService)
	container.Register("selection", selectionService)

	// 5. 推荐服务
	recommendService := services.NewRecommendService(generationService, selectionService)
	container.Register("recommend", recommendService)

	// 6. 收藏库服务
	libraryService := services.NewLibraryService(fileStorage)
	container.Register("library", libraryService)

	// 7. 字幕服务
	captionService := services.NewCaptionService()
	container.Register("caption", captionService)

	// 8. WebSocket 事件推送，接到选中服务上
	wsManager := api.NewWebSocketManager()
	selectionService.SetNotifier(wsManager)
	container.Register("websocket", wsManager)

	log.Infof("✅ 服务初始化完成，共注册 %d 个服务", len(container.GetNames()))
	return nil
}
