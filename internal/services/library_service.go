// internal/services/library_service.go
package services

import (
	"sync"
	"time"

	apperrors "github.com/Corphon/ShortSparkMCP/internal/errors"
	"github.com/Corphon/ShortSparkMCP/internal/logging"
	"github.com/Corphon/ShortSparkMCP/internal/models"
	"github.com/Corphon/ShortSparkMCP/internal/storage"
)

// 收藏库的持久化槽位
const (
	libraryDir  = "library"
	libraryFile = "saved_concepts.json"
)

// LibraryService 管理收藏的创意
// 集合按id去重、最新收藏在前，每次变更整体重写持久化槽位
type LibraryService struct {
	storage *storage.FileStorage
	log     logging.Logger

	// 保护内存集合的读-改-写
	mu       sync.Mutex
	concepts []models.SavedConcept
}

// NewLibraryService 创建收藏库服务并从持久化槽位恢复集合
// 槽位损坏或无法读取时按空集合处理，只记录日志，不阻塞启动
func NewLibraryService(fileStorage *storage.FileStorage) *LibraryService {
	service := &LibraryService{
		storage:  fileStorage,
		log:      logging.ForComponent("library"),
		concepts: []models.SavedConcept{},
	}

	var saved []models.SavedConcept
	if err := fileStorage.LoadJSONFile(libraryDir, libraryFile, &saved); err != nil {
		if !storage.IsNotExist(err) {
			service.log.Warnf("收藏库数据无法读取，按空库处理: %v", err)
		}
		return service
	}

	service.concepts = saved
	service.log.Infof("收藏库已加载: %d 条创意", len(saved))
	return service
}

// Save 收藏一条创意
// 同id已存在时返回冲突（幂等空操作，不算故障）；成功后新条目排在最前
func (s *LibraryService) Save(concept models.Concept, category models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.concepts {
		if existing.ID == concept.ID {
			return apperrors.NewConflictError("该创意已在收藏库中", nil)
		}
	}

	entry := models.SavedConcept{
		Concept:  concept,
		SavedAt:  time.Now(),
		Category: category,
	}

	updated := make([]models.SavedConcept, 0, len(s.concepts)+1)
	updated = append(updated, entry)
	updated = append(updated, s.concepts...)

	if err := s.persist(updated); err != nil {
		return err
	}

	s.concepts = updated
	return nil
}

// Remove 按id移除收藏，不存在时为空操作
// 被移除的创意若是当前选中项，由调用方负责清除选择状态
func (s *LibraryService) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := make([]models.SavedConcept, 0, len(s.concepts))
	found := false
	for _, existing := range s.concepts {
		if existing.ID == id {
			found = true
			continue
		}
		updated = append(updated, existing)
	}

	if !found {
		return nil
	}

	if err := s.persist(updated); err != nil {
		return err
	}

	s.concepts = updated
	return nil
}

// Clear 清空收藏库
func (s *LibraryService) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	empty := []models.SavedConcept{}
	if err := s.persist(empty); err != nil {
		return err
	}

	s.concepts = empty
	return nil
}

// List 返回收藏列表的副本，最新收藏在前
func (s *LibraryService) List() []models.SavedConcept {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]models.SavedConcept, len(s.concepts))
	copy(result, s.concepts)
	return result
}

// Get 按id查找收藏的创意
func (s *LibraryService) Get(id string) (*models.SavedConcept, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.concepts {
		if existing.ID == id {
			entry := existing
			return &entry, true
		}
	}
	return nil, false
}

// persist 整体覆盖写入持久化槽位，成功后才提交内存状态
func (s *LibraryService) persist(concepts []models.SavedConcept) error {
	if err := s.storage.SaveJSONFile(libraryDir, libraryFile, concepts); err != nil {
		s.log.Errorf("收藏库持久化失败: %v", err)
		return apperrors.NewStorageError("收藏库保存失败", err)
	}
	return nil
}
