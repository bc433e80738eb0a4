// internal/generation/providers/openai/openai.go
package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/Corphon/ShortSparkMCP/internal/generation"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAI语音接口固定输出24kHz单声道PCM16
const (
	pcmSampleRate   = 24000
	pcmChannelCount = 1
)

func init() {
	generation.Register("openai", func() generation.Provider {
		return &Provider{
			defaultModel:      "gpt-4o-mini",
			defaultImageModel: "dall-e-3",
			defaultTTSModel:   "gpt-4o-mini-tts",
		}
	})
}

type Provider struct {
	apiKey            string
	client            openai.Client
	defaultModel      string
	defaultImageModel string
	defaultTTSModel   string
}

func (p *Provider) Initialize(config map[string]string) error {
	apiKey, exists := config["api_key"]
	if !exists || apiKey == "" {
		return errors.New("OpenAI API密钥未提供")
	}

	p.apiKey = apiKey
	p.client = openai.NewClient(option.WithAPIKey(apiKey))

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
	return "OpenAI"
}

// CompleteText 调用Chat Completions生成文本
func (p *Provider) CompleteText(ctx context.Context, req generation.CompletionRequest) (*generation.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    openai.ChatModel(model),
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(float64(req.Temperature))
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("OpenAI文本生成请求失败: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("OpenAI响应中没有候选结果")
	}

	return &generation.CompletionResponse{
		Text:         completion.Choices[0].Message.Content,
		ModelName:    model,
		ProviderName: p.GetName(),
	}, nil
}

// GenerateImage 调用Images接口生成预览配图
func (p *Provider) GenerateImage(ctx context.Context, req generation.ImageRequest) (*generation.ImageResponse, error) {
	model := req.Model
	if model == "" {
		model = p.defaultImageModel
	}

	prompt := req.Prompt
	if req.VisualStyle != "" {
		prompt = fmt.Sprintf("%s，视觉风格: %s", prompt, req.VisualStyle)
	}

	result, err := p.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModel(model),
		N:      openai.Int(1),
		Size:   openai.ImageGenerateParamsSize1024x1792,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI图像生成请求失败: %w", err)
	}
	if len(result.Data) == 0 || result.Data[0].URL == "" {
		return nil, errors.New("OpenAI图像响应为空")
	}

	return &generation.ImageResponse{
		URL:          result.Data[0].URL,
		ProviderName: p.GetName(),
	}, nil
}

// SynthesizeSpeech 调用Speech接口合成口播音频
// 返回base64编码的PCM16载荷（24kHz单声道）
func (p *Provider) SynthesizeSpeech(ctx context.Context, req generation.SpeechRequest) (*generation.SpeechResponse, error) {
	model := req.Model
	if model == "" {
		model = p.defaultTTSModel
	}

	resp, err := p.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(model),
		Voice:          openai.AudioSpeechNewParamsVoice(req.VoiceID),
		Input:          req.Text,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatPCM,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI语音合成请求失败: %w", err)
	}
	defer resp.Body.Close()

	pcm, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取语音响应失败: %w", err)
	}
	if len(pcm) == 0 {
		return nil, errors.New("OpenAI语音响应为空")
	}

	return &generation.SpeechResponse{
		AudioBase64:  base64.StdEncoding.EncodeToString(pcm),
		SampleRate:   pcmSampleRate,
		ChannelCount: pcmChannelCount,
		ProviderName: p.GetName(),
	}, nil
}
