// internal/services/generation_service.go
package services

import (
	"context"
	"sync"

	"github.com/Corphon/ShortSparkMCP/internal/config"
	apperrors "github.com/Corphon/ShortSparkMCP/internal/errors"
	"github.com/Corphon/ShortSparkMCP/internal/generation"
	"github.com/Corphon/ShortSparkMCP/internal/logging"
)

// GenerationService 持有当前启用的生成服务提供者
// 文本/语音走主提供者，图像可以单独指定提供者（含无密钥的pollinations后备）
type GenerationService struct {
	mu            sync.RWMutex
	provider      generation.Provider
	imageProvider generation.Provider
	log           logging.Logger
}

// NewGenerationService 根据当前配置创建生成服务
// 没有可用密钥时服务照常创建，具体调用时报错，允许运行中再配置
func NewGenerationService(cfg *config.AppConfig) *GenerationService {
	service := &GenerationService{log: logging.ForComponent("generation")}

	if cfg != nil {
		if err := service.Reconfigure(cfg.Provider, cfg.ImageProvider, cfg.ProviderConfig); err != nil {
			service.log.Warnf("生成服务初始化未完成: %v", err)
		}
	}

	return service
}

// Reconfigure 重建提供者实例，供设置接口热切换
func (s *GenerationService) Reconfigure(providerName, imageProviderName string, providerConfig map[string]string) error {
	provider, err := buildProvider(providerName, providerConfig)
	if err != nil {
		s.log.Warnf("主提供者 %s 不可用: %v", providerName, err)
	}

	if imageProviderName == "" {
		imageProviderName = providerName
	}
	imageProvider, imgErr := buildProvider(imageProviderName, providerConfig)
	if imgErr != nil {
		s.log.Warnf("图像提供者 %s 不可用: %v", imageProviderName, imgErr)
		// 无密钥环境回退到免费的pollinations
		imageProvider, imgErr = buildProvider("pollinations", providerConfig)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if provider != nil {
		s.provider = provider
	}
	if imageProvider != nil {
		s.imageProvider = imageProvider
	}

	if err != nil {
		return err
	}
	return imgErr
}

// buildProvider 根据名称和配置实例化提供者
func buildProvider(name string, providerConfig map[string]string) (generation.Provider, error) {
	cfg := map[string]string{}
	switch name {
	case "openai":
		cfg["api_key"] = providerConfig["openai_api_key"]
	case "gemini":
		cfg["api_key"] = providerConfig["gemini_api_key"]
	}
	for _, key := range []string{"default_model", "image_model", "tts_model", "base_url"} {
		if v := providerConfig[key]; v != "" {
			cfg[key] = v
		}
	}

	return generation.GetProvider(name, cfg)
}

// CompleteText 用主提供者生成文本
func (s *GenerationService) CompleteText(ctx context.Context, req generation.CompletionRequest) (*generation.CompletionResponse, error) {
	provider := s.currentProvider()
	if provider == nil {
		return nil, apperrors.NewValidationError("生成服务尚未配置API密钥", nil)
	}
	return provider.CompleteText(ctx, req)
}

// GenerateImage 用图像提供者生成预览配图
func (s *GenerationService) GenerateImage(ctx context.Context, req generation.ImageRequest) (*generation.ImageResponse, error) {
	s.mu.RLock()
	provider := s.imageProvider
	s.mu.RUnlock()

	if provider == nil {
		return nil, apperrors.NewValidationError("图像生成服务尚未配置", nil)
	}
	return provider.GenerateImage(ctx, req)
}

// SynthesizeSpeech 用主提供者合成语音
func (s *GenerationService) SynthesizeSpeech(ctx context.Context, req generation.SpeechRequest) (*generation.SpeechResponse, error) {
	provider := s.currentProvider()
	if provider == nil {
		return nil, apperrors.NewValidationError("生成服务尚未配置API密钥", nil)
	}
	return provider.SynthesizeSpeech(ctx, req)
}

// Status 返回当前提供者状态，供健康检查和设置页面使用
func (s *GenerationService) Status() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := map[string]string{
		"provider":       "",
		"image_provider": "",
	}
	if s.provider != nil {
		status["provider"] = s.provider.GetName()
	}
	if s.imageProvider != nil {
		status["image_provider"] = s.imageProvider.GetName()
	}
	return status
}

func (s *GenerationService) currentProvider() generation.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.provider
}
