// internal/services/recommend_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/Corphon/ShortSparkMCP/internal/errors"
	"github.com/Corphon/ShortSparkMCP/internal/generation"
	"github.com/Corphon/ShortSparkMCP/internal/logging"
	"github.com/Corphon/ShortSparkMCP/internal/models"
)

// TextGenerator 文本生成上游的最小接口
type TextGenerator interface {
	CompleteText(ctx context.Context, req generation.CompletionRequest) (*generation.CompletionResponse, error)
}

// RecommendRequest 创意推荐请求
type RecommendRequest struct {
	Category       models.Category `json:"category"`
	Keywords       string          `json:"keywords"`
	VisualStyle    string          `json:"visual_style"`
	FeaturedFigure string          `json:"featured_figure,omitempty"`
}

// RecommendService 创意推荐协调器
// 校验输入、发出单次批量请求、校验响应结构，成功后替换当前批次
type RecommendService struct {
	generator TextGenerator
	selection *SelectionService
	log       logging.Logger
}

// NewRecommendService 创建推荐服务
func NewRecommendService(generator TextGenerator, selection *SelectionService) *RecommendService {
	return &RecommendService{
		generator: generator,
		selection: selection,
		log:       logging.ForComponent("recommend"),
	}
}

// Recommend 生成一批短视频创意
// 输入校验失败立即返回，不会发出任何上游请求；
// 上游响应结构不合法整批拒绝，绝不返回部分合法的对象；
// 单次请求无重试，瞬时故障原样上抛由调用方决定策略
func (s *RecommendService) Recommend(ctx context.Context, req RecommendRequest) ([]models.Concept, error) {
	if err := validateRecommendRequest(req); err != nil {
		return nil, err
	}

	response, err := s.generator.CompleteText(ctx, generation.CompletionRequest{
		SystemPrompt: recommendSystemPrompt,
		Prompt:       buildRecommendPrompt(req),
		Temperature:  0.8,
	})
	if err != nil {
		if apperrors.IsValidationError(err) {
			return nil, err
		}
		s.log.Errorf("创意推荐请求失败: %v", err)
		return nil, apperrors.NewNetworkError("创意推荐请求失败", err)
	}

	concepts, err := parseConceptBatch(response.Text)
	if err != nil {
		s.log.Errorf("创意批次结构校验失败: %v", err)
		return nil, err
	}

	// 成功批次替换当前选择批次，作废在途预览
	s.selection.ResetBatch(concepts)
	s.log.Infof("创意批次已生成: %d 条 (category=%s)", len(concepts), req.Category)

	return concepts, nil
}

// validateRecommendRequest 前置校验，违反时不发出任何网络请求
func validateRecommendRequest(req RecommendRequest) error {
	if !req.Category.IsValid() {
		return apperrors.NewValidationError(fmt.Sprintf("未知的内容分类: %s", req.Category), nil)
	}

	keywords := strings.TrimSpace(req.Keywords)
	figure := strings.TrimSpace(req.FeaturedFigure)

	switch req.Category {
	case models.CategorySelfImprovement:
		if keywords == "" {
			return apperrors.NewValidationError("自我提升类必须提供关键词", nil)
		}
	case models.CategoryPhilosophy:
		if figure == "" && keywords == "" {
			return apperrors.NewValidationError("哲学类必须提供出镜人物或关键词", nil)
		}
	}

	return nil
}

// parseConceptBatch 解析并校验上游返回的创意批次
// 任何结构问题都按SchemaError整批拒绝
func parseConceptBatch(text string) ([]models.Concept, error) {
	cleaned := stripCodeFence(text)

	var concepts []models.Concept
	if err := json.Unmarshal([]byte(cleaned), &concepts); err != nil {
		return nil, apperrors.NewSchemaError("上游响应不是合法的创意JSON数组", err)
	}
	if len(concepts) == 0 {
		return nil, apperrors.NewSchemaError("上游返回了空的创意批次", nil)
	}

	seen := make(map[string]bool, len(concepts))
	for i := range concepts {
		if err := concepts[i].Validate(); err != nil {
			return nil, apperrors.NewSchemaError("创意结构校验失败", err)
		}
		if seen[concepts[i].ID] {
			return nil, apperrors.NewSchemaError(fmt.Sprintf("批次内创意id重复: %s", concepts[i].ID), nil)
		}
		seen[concepts[i].ID] = true
	}

	return concepts, nil
}

// stripCodeFence 去掉模型偶尔包裹的markdown代码块标记
func stripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	}
	return strings.TrimSpace(cleaned)
}

// 推荐生成的系统提示词
const recommendSystemPrompt = `你是一名短视频内容策划，擅长为竖屏短视频设计有传播力的创意。
你只输出合法的JSON数组，不输出任何解释、markdown标记或多余文本。`

// buildRecommendPrompt 组装用户提示词
func buildRecommendPrompt(req RecommendRequest) string {
	var sb strings.Builder

	sb.WriteString("请为以下需求生成3到5条短视频创意。\n\n")
	switch req.Category {
	case models.CategorySelfImprovement:
		sb.WriteString("内容分类: 自我提升\n")
	case models.CategoryPhilosophy:
		sb.WriteString("内容分类: 哲学人物\n")
	}
	if figure := strings.TrimSpace(req.FeaturedFigure); figure != "" {
		sb.WriteString(fmt.Sprintf("出镜人物: %s\n", figure))
	}
	if keywords := strings.TrimSpace(req.Keywords); keywords != "" {
		sb.WriteString(fmt.Sprintf("关键词: %s\n", keywords))
	}
	if style := strings.TrimSpace(req.VisualStyle); style != "" {
		sb.WriteString(fmt.Sprintf("视觉风格: %s\n", style))
	}

	sb.WriteString(`
每条创意是一个JSON对象，字段如下：
- id: 批次内唯一的字符串标识
- title: 视频标题
- hook: 开场3秒的钩子句
- detailedScript: 完整口播脚本；其中需要上屏的字幕行单独成行并以"字幕:"开头
- visualScenes: 镜头数组，每个镜头含 sceneNumber（从1开始递增的正整数）、description、prompt（图像生成提示词）
- visualStyle: 视觉风格
- targetAudience: 目标人群
- personalizedReason: 推荐理由

直接输出JSON数组。`)

	return sb.String()
}
