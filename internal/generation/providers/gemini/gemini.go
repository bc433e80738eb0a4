// internal/generation/providers/gemini/gemini.go
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/Corphon/ShortSparkMCP/internal/generation"
	"google.golang.org/genai"
)

// Gemini原生TTS固定输出24kHz单声道PCM16
const (
	pcmSampleRate   = 24000
	pcmChannelCount = 1
)

func init() {
	generation.Register("gemini", func() generation.Provider {
		return &Provider{
			defaultModel:      "gemini-2.5-flash",
			defaultImageModel: "imagen-3.0-generate-002",
			defaultTTSModel:   "gemini-2.5-flash-preview-tts",
		}
	})
}

type Provider struct {
	apiKey            string
	defaultModel      string
	defaultImageModel string
	defaultTTSModel   string
}

// 通用语音标识到Gemini预置音色的映射
var voiceNames = map[string]string{
	"onyx": "Charon",
	"nova": "Kore",
}

func (p *Provider) Initialize(config map[string]string) error {
	apiKey, exists := config["api_key"]
	if !exists || apiKey == "" {
		return errors.New("Gemini API密钥未提供")
	}
	p.apiKey = apiKey

	if model, exists := config["default_model"]; exists && model != "" {
		p.defaultModel = model
	}
	if model, exists := config["image_model"]; exists && model != "" {
		p.defaultImageModel = model
	}
	if model, exists := config["tts_model"]; exists && model != "" {
		p.defaultTTSModel = model
	}

	return nil
}

func (p *Provider) GetName() string {
	return "Gemini"
}

// newAPIClient 按调用创建客户端，SDK自身不保持连接状态
func (p *Provider) newAPIClient(ctx context.Context) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  p.apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("创建Gemini客户端失败: %w", err)
	}
	return client, nil
}

// CompleteText 调用GenerateContent生成文本
func (p *Provider) CompleteText(ctx context.Context, req generation.CompletionRequest) (*generation.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	client, err := p.newAPIClient(ctx)
	if err != nil {
		return nil, err
	}

	cfg := &genai.GenerateContentConfig{}
	if req.SystemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr(req.Temperature)
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	response, err := client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return nil, fmt.Errorf("Gemini文本生成请求失败: %w", err)
	}

	text := strings.TrimSpace(response.Text())
	if text == "" {
		return nil, errors.New("Gemini响应内容为空")
	}

	return &generation.CompletionResponse{
		Text:         text,
		ModelName:    model,
		ProviderName: p.GetName(),
	}, nil
}

// GenerateImage 调用Imagen生成预览配图，以data URL形式返回
func (p *Provider) GenerateImage(ctx context.Context, req generation.ImageRequest) (*generation.ImageResponse, error) {
	model := req.Model
	if model == "" {
		model = p.defaultImageModel
	}

	client, err := p.newAPIClient(ctx)
	if err != nil {
		return nil, err
	}

	prompt := req.Prompt
	if req.VisualStyle != "" {
		prompt = fmt.Sprintf("%s，视觉风格: %s", prompt, req.VisualStyle)
	}

	response, err := client.Models.GenerateImages(ctx, model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("Gemini图像生成请求失败: %w", err)
	}
	if len(response.GeneratedImages) == 0 || response.GeneratedImages[0].Image == nil {
		return nil, errors.New("Gemini图像响应为空")
	}

	encoded := base64.StdEncoding.EncodeToString(response.GeneratedImages[0].Image.ImageBytes)
	return &generation.ImageResponse{
		URL:          "data:image/png;base64," + encoded,
		ProviderName: p.GetName(),
	}, nil
}

// SynthesizeSpeech 调用Gemini原生TTS合成口播音频
// 返回base64编码的PCM16载荷（24kHz单声道）
func (p *Provider) SynthesizeSpeech(ctx context.Context, req generation.SpeechRequest) (*generation.SpeechResponse, error) {
	model := req.Model
	if model == "" {
		model = p.defaultTTSModel
	}

	client, err := p.newAPIClient(ctx)
	if err != nil {
		return nil, err
	}

	voiceName := voiceNames[req.VoiceID]
	if voiceName == "" {
		voiceName = req.VoiceID
	}

	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voiceName},
			},
		},
	}

	response, err := client.Models.GenerateContent(ctx, model, genai.Text(req.Text), cfg)
	if err != nil {
		return nil, fmt.Errorf("Gemini语音合成请求失败: %w", err)
	}

	pcm := extractAudioData(response)
	if len(pcm) == 0 {
		return nil, errors.New("Gemini语音响应中没有音频数据")
	}

	return &generation.SpeechResponse{
		AudioBase64:  base64.StdEncoding.EncodeToString(pcm),
		SampleRate:   pcmSampleRate,
		ChannelCount: pcmChannelCount,
		ProviderName: p.GetName(),
	}, nil
}

// extractAudioData 从响应中取出首个内联音频载荷
func extractAudioData(response *genai.GenerateContentResponse) []byte {
	if response == nil {
		return nil
	}
	for _, candidate := range response.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data
			}
		}
	}
	return nil
}
