// internal/services/category_tables_test.go
package services

import (
	"testing"

	"github.com/Corphon/ShortSparkMCP/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestVoiceForCategory(t *testing.T) {
	assert.Equal(t, "nova", VoiceForCategory(models.CategorySelfImprovement))
	assert.Equal(t, "onyx", VoiceForCategory(models.CategoryPhilosophy))

	// 未知分类回退到默认音色
	assert.Equal(t, "nova", VoiceForCategory(models.Category("unknown")))
}

func TestFiguresForCategory(t *testing.T) {
	figures := FiguresForCategory(models.CategoryPhilosophy)
	assert.NotEmpty(t, figures)
	assert.Contains(t, figures, "尼采")

	// 返回副本，调用方修改不影响内部表
	figures[0] = "改掉"
	assert.NotEqual(t, "改掉", FiguresForCategory(models.CategoryPhilosophy)[0])

	assert.Empty(t, FiguresForCategory(models.CategorySelfImprovement))
}
