// internal/generation/interface.go
package generation

import (
	"context"
	"errors"
)

// 错误定义
var (
	ErrUnknownProvider      = errors.New("未知的生成服务提供者")
	ErrUnsupportedOperation = errors.New("提供者不支持该操作")
)

// CompletionRequest 文本生成请求参数标准化
type CompletionRequest struct {
	Prompt       string  `json:"prompt"`
	SystemPrompt string  `json:"system_prompt,omitempty"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
	Temperature  float32 `json:"temperature,omitempty"`
	Model        string  `json:"model,omitempty"`
}

// CompletionResponse 文本生成响应标准化
type CompletionResponse struct {
	Text         string `json:"text"`
	ModelName    string `json:"model_name,omitempty"`
	ProviderName string `json:"provider_name,omitempty"`
}

// ImageRequest 图像生成请求
type ImageRequest struct {
	Prompt      string `json:"prompt"`
	VisualStyle string `json:"visual_style,omitempty"`
	Model       string `json:"model,omitempty"`
}

// ImageResponse 图像生成响应，URL可能是远程地址或data URL
type ImageResponse struct {
	URL          string `json:"url"`
	ProviderName string `json:"provider_name,omitempty"`
}

// SpeechRequest 语音合成请求
type SpeechRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voice_id"`
	Model   string `json:"model,omitempty"`
}

// SpeechResponse 语音合成响应
// 音频载荷为base64编码的16位小端PCM，单声道
type SpeechResponse struct {
	AudioBase64  string `json:"audio_base64"`
	SampleRate   int    `json:"sample_rate"`
	ChannelCount int    `json:"channel_count"`
	ProviderName string `json:"provider_name,omitempty"`
}

// Provider 定义所有生成服务提供者必须实现的接口
// 不支持某类生成的提供者返回 ErrUnsupportedOperation
type Provider interface {
	// 初始化提供者，传入配置
	Initialize(config map[string]string) error

	// 获取提供者名称
	GetName() string

	// 文本生成（创意批次）
	CompleteText(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// 图像生成（预览配图）
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error)

	// 语音合成（口播预览）
	SynthesizeSpeech(ctx context.Context, req SpeechRequest) (*SpeechResponse, error)
}

// ProviderFactory 提供者工厂函数类型
type ProviderFactory func() Provider

// 全局注册表
var providers = make(map[string]ProviderFactory)

// Register 注册提供者工厂，由各provider包的init调用
func Register(name string, factory ProviderFactory) {
	providers[name] = factory
}

// GetProvider 获取指定名称的提供者实例并完成初始化
func GetProvider(name string, config map[string]string) (Provider, error) {
	factory, exists := providers[name]
	if !exists {
		return nil, ErrUnknownProvider
	}

	provider := factory()
	if err := provider.Initialize(config); err != nil {
		return nil, err
	}

	return provider, nil
}

// GetAvailableProviders 返回所有已注册的提供者名称
func GetAvailableProviders() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	return names
}
