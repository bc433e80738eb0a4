// internal/models/library.go
package models

import "time"

// SavedConcept 表示收藏库中的一条创意
// 只能通过显式收藏操作创建，以id为唯一键
type SavedConcept struct {
	Concept
	SavedAt  time.Time `json:"savedAt"`
	Category Category  `json:"category"`
}
