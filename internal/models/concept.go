// internal/models/concept.go
package models

import (
	"fmt"
	"strings"
)

// Category 短视频内容分类
type Category string

const (
	// CategorySelfImprovement 自我提升类内容
	CategorySelfImprovement Category = "self_improvement"
	// CategoryPhilosophy 哲学人物类内容（需要指定人物或关键词）
	CategoryPhilosophy Category = "philosophy"
)

// IsValid 检查分类是否为已知分类
func (c Category) IsValid() bool {
	switch c {
	case CategorySelfImprovement, CategoryPhilosophy:
		return true
	}
	return false
}

// Scene 表示创意脚本中的一个视觉镜头
type Scene struct {
	SceneNumber int    `json:"sceneNumber"` // 从1开始递增，批次内不重复
	Description string `json:"description"` // 镜头内容描述
	Prompt      string `json:"prompt"`      // 图像生成提示词
}

// Concept 表示一条生成的短视频创意
// 由推荐协调器生成后即不可变
type Concept struct {
	ID                 string  `json:"id"` // 批次内唯一
	Title              string  `json:"title"`
	Hook               string  `json:"hook"`
	DetailedScript     string  `json:"detailedScript"` // 含内嵌指令标记（如字幕标记）的完整脚本
	VisualScenes       []Scene `json:"visualScenes"`
	VisualStyle        string  `json:"visualStyle"`
	TargetAudience     string  `json:"targetAudience"`
	PersonalizedReason string  `json:"personalizedReason"`
}

// Validate 校验创意对象的完整性
// 任何字段缺失或镜头编号非法都视为上游响应结构错误
func (c *Concept) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("创意缺少id字段")
	}
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("创意 %s 缺少title字段", c.ID)
	}
	if strings.TrimSpace(c.Hook) == "" {
		return fmt.Errorf("创意 %s 缺少hook字段", c.ID)
	}
	if strings.TrimSpace(c.DetailedScript) == "" {
		return fmt.Errorf("创意 %s 缺少detailedScript字段", c.ID)
	}

	lastNumber := 0
	for i, scene := range c.VisualScenes {
		if scene.SceneNumber <= 0 {
			return fmt.Errorf("创意 %s 第%d个镜头编号非法: %d", c.ID, i+1, scene.SceneNumber)
		}
		if scene.SceneNumber <= lastNumber {
			return fmt.Errorf("创意 %s 镜头编号必须递增且不重复: %d", c.ID, scene.SceneNumber)
		}
		lastNumber = scene.SceneNumber
	}

	return nil
}

// FirstScenePrompt 返回首个镜头的图像提示词
// 没有镜头时回退到创意标题
func (c *Concept) FirstScenePrompt() string {
	if len(c.VisualScenes) > 0 && strings.TrimSpace(c.VisualScenes[0].Prompt) != "" {
		return c.VisualScenes[0].Prompt
	}
	return c.Title
}
