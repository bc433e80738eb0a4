// internal/services/category_tables.go
package services

import "github.com/Corphon/ShortSparkMCP/internal/models"

// 分类到口播音色的静态映射，每个分类一个固定音色
var categoryVoices = map[models.Category]string{
	models.CategorySelfImprovement: "nova",
	models.CategoryPhilosophy:      "onyx",
}

// 默认音色，处理未知分类时兜底
const defaultVoice = "nova"

// VoiceForCategory 返回分类对应的音色标识
func VoiceForCategory(category models.Category) string {
	if voice, ok := categoryVoices[category]; ok {
		return voice
	}
	return defaultVoice
}

// 分类到推荐人物的静态映射，供哲学类选择出镜人物
var categoryFigures = map[models.Category][]string{
	models.CategoryPhilosophy: {
		"苏格拉底",
		"尼采",
		"叔本华",
		"老子",
		"庄子",
		"马可·奥勒留",
		"加缪",
		"王阳明",
	},
}

// FiguresForCategory 返回分类的推荐出镜人物列表副本
func FiguresForCategory(category models.Category) []string {
	figures, ok := categoryFigures[category]
	if !ok {
		return nil
	}

	result := make([]string, len(figures))
	copy(result, figures)
	return result
}
