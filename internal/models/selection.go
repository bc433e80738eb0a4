// internal/models/selection.go
package models

// SelectionState 选择流程状态机的状态
type SelectionState string

const (
	// SelectionIdle 没有选中创意
	SelectionIdle SelectionState = "idle"
	// SelectionSelecting 已选中，预览图请求在途
	SelectionSelecting SelectionState = "selecting"
	// SelectionPreviewing 预览图已返回（或失败），创意正在展示
	SelectionPreviewing SelectionState = "previewing"
)

// GeneratedImage 一次预览生成的配图，只在当前预览期间存在，不做持久化
type GeneratedImage struct {
	URL       string `json:"url"`
	ConceptID string `json:"conceptId"`
}

// SelectionSnapshot 当前选择状态的只读快照，供API层和WebSocket推送使用
type SelectionSnapshot struct {
	State   SelectionState  `json:"state"`
	Concept *Concept        `json:"concept,omitempty"`
	Image   *GeneratedImage `json:"image,omitempty"`
}
