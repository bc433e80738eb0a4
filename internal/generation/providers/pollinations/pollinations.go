// internal/generation/providers/pollinations/pollinations.go
package pollinations

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Corphon/ShortSparkMCP/internal/generation"
)

// Pollinations.ai 免费图像生成，无需API密钥
// 只支持图像生成，作为无密钥环境下的预览配图后备
func init() {
	generation.Register("pollinations", func() generation.Provider {
		return &Provider{
			baseURL: "https://image.pollinations.ai/prompt",
		}
	})
}

type Provider struct {
	baseURL string
	client  *http.Client
}

func (p *Provider) Initialize(config map[string]string) error {
	if baseURL, exists := config["base_url"]; exists && baseURL != "" {
		p.baseURL = baseURL
	}
	p.client = &http.Client{Timeout: 60 * time.Second}
	return nil
}

func (p *Provider) GetName() string {
	return "Pollinations"
}

// CompleteText 不支持文本生成
func (p *Provider) CompleteText(ctx context.Context, req generation.CompletionRequest) (*generation.CompletionResponse, error) {
	return nil, generation.ErrUnsupportedOperation
}

// SynthesizeSpeech 不支持语音合成
func (p *Provider) SynthesizeSpeech(ctx context.Context, req generation.SpeechRequest) (*generation.SpeechResponse, error) {
	return nil, generation.ErrUnsupportedOperation
}

// GenerateImage 构造Pollinations图像地址并确认其可用
// 格式: {base}/{encoded_prompt}?width=..&height=..
func (p *Provider) GenerateImage(ctx context.Context, req generation.ImageRequest) (*generation.ImageResponse, error) {
	prompt := req.Prompt
	if req.VisualStyle != "" {
		prompt = fmt.Sprintf("%s, %s", prompt, req.VisualStyle)
	}

	imageURL := fmt.Sprintf("%s/%s?width=1080&height=1920&nologo=true&model=flux",
		p.baseURL, url.PathEscape(prompt))

	// 探测一次，避免把失效地址交给预览界面
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("User-Agent", "ShortSparkMCP/1.0")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("Pollinations图像请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Pollinations返回HTTP %d", resp.StatusCode)
	}

	return &generation.ImageResponse{
		URL:          imageURL,
		ProviderName: p.GetName(),
	}, nil
}
