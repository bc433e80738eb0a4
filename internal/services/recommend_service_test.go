// internal/services/recommend_service_test.go
package services

import (
	"context"
	"encoding/json"
	"testing"

	apperrors "github.com/Corphon/ShortSparkMCP/internal/errors"
	"github.com/Corphon/ShortSparkMCP/internal/generation"
	"github.com/Corphon/ShortSparkMCP/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTextGenerator 返回预置文本或错误
type fakeTextGenerator struct {
	text    string
	err     error
	called  int
	lastReq generation.CompletionRequest
}

func (f *fakeTextGenerator) CompleteText(_ context.Context, req generation.CompletionRequest) (*generation.CompletionResponse, error) {
	f.called++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &generation.CompletionResponse{Text: f.text}, nil
}

func conceptBatchJSON(t *testing.T, ids ...string) string {
	t.Helper()
	concepts := make([]models.Concept, 0, len(ids))
	for _, id := range ids {
		concepts = append(concepts, sceneConcept(id, "prompt-"+id))
	}
	data, err := json.Marshal(concepts)
	require.NoError(t, err)
	return string(data)
}

func newTestRecommendService(generator TextGenerator) (*RecommendService, *SelectionService) {
	selection, _ := newTestSelectionService(newGatedImageGenerator())
	return NewRecommendService(generator, selection), selection
}

func TestRecommend(t *testing.T) {
	generator := &fakeTextGenerator{}
	service, selection := newTestRecommendService(generator)
	generator.text = conceptBatchJSON(t, "a", "b", "c")

	concepts, err := service.Recommend(context.Background(), RecommendRequest{
		Category: models.CategorySelfImprovement,
		Keywords: "自律 早起",
	})
	require.NoError(t, err)
	require.Len(t, concepts, 3)
	assert.Equal(t, 1, generator.called)

	// 成功批次替换当前选择批次
	installed, ok := selection.ConceptFromBatch("b")
	require.True(t, ok)
	assert.Equal(t, "b", installed.ID)

	// 提示词带上了关键词
	assert.Contains(t, generator.lastReq.Prompt, "自律 早起")
}

func TestRecommend_CodeFence(t *testing.T) {
	generator := &fakeTextGenerator{}
	service, _ := newTestRecommendService(generator)
	generator.text = "```json\n" + conceptBatchJSON(t, "a") + "\n```"

	concepts, err := service.Recommend(context.Background(), RecommendRequest{
		Category: models.CategorySelfImprovement,
		Keywords: "专注",
	})
	require.NoError(t, err)
	assert.Len(t, concepts, 1)
}

func TestRecommend_ValidationNoRequest(t *testing.T) {
	cases := []struct {
		name string
		req  RecommendRequest
	}{
		{"未知分类", RecommendRequest{Category: "cooking", Keywords: "菜谱"}},
		{"自我提升缺关键词", RecommendRequest{Category: models.CategorySelfImprovement}},
		{"哲学缺人物和关键词", RecommendRequest{Category: models.CategoryPhilosophy}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			generator := &fakeTextGenerator{}
			service, _ := newTestRecommendService(generator)

			_, err := service.Recommend(context.Background(), tc.req)
			assert.True(t, apperrors.IsValidationError(err))
			// 校验失败时不发出任何上游请求
			assert.Equal(t, 0, generator.called)
		})
	}
}

func TestRecommend_PhilosophyWithFigure(t *testing.T) {
	generator := &fakeTextGenerator{}
	service, _ := newTestRecommendService(generator)
	generator.text = conceptBatchJSON(t, "a")

	_, err := service.Recommend(context.Background(), RecommendRequest{
		Category:       models.CategoryPhilosophy,
		FeaturedFigure: "尼采",
	})
	require.NoError(t, err)
	assert.Contains(t, generator.lastReq.Prompt, "尼采")
}

func TestRecommend_SchemaErrors(t *testing.T) {
	valid := sceneConcept("a", "p")
	missingTitle := valid
	missingTitle.Title = ""
	badScene := sceneConcept("b", "p")
	badScene.VisualScenes = []models.Scene{{SceneNumber: 2}, {SceneNumber: 1}}

	encode := func(concepts ...models.Concept) string {
		data, err := json.Marshal(concepts)
		require.NoError(t, err)
		return string(data)
	}

	cases := []struct {
		name string
		text string
	}{
		{"不是JSON", "这不是JSON"},
		{"空批次", "[]"},
		{"缺字段", encode(missingTitle)},
		{"镜头编号乱序", encode(badScene)},
		{"id重复", encode(valid, valid)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			generator := &fakeTextGenerator{text: tc.text}
			service, selection := newTestRecommendService(generator)
			selection.ResetBatch([]models.Concept{sceneConcept("old", "p")})

			_, err := service.Recommend(context.Background(), RecommendRequest{
				Category: models.CategorySelfImprovement,
				Keywords: "习惯",
			})
			assert.True(t, apperrors.IsSchemaError(err))

			// 整批拒绝，原有批次保持不变
			_, ok := selection.ConceptFromBatch("old")
			assert.True(t, ok)
		})
	}
}

func TestRecommend_UpstreamFailure(t *testing.T) {
	generator := &fakeTextGenerator{err: assert.AnError}
	service, _ := newTestRecommendService(generator)

	_, err := service.Recommend(context.Background(), RecommendRequest{
		Category: models.CategorySelfImprovement,
		Keywords: "阅读",
	})
	assert.True(t, apperrors.IsNetworkError(err))
	// 单次请求，无重试
	assert.Equal(t, 1, generator.called)
}
