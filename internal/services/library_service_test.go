// internal/services/library_service_test.go
package services

import (
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/Corphon/ShortSparkMCP/internal/errors"
	"github.com/Corphon/ShortSparkMCP/internal/models"
	"github.com/Corphon/ShortSparkMCP/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *storage.FileStorage {
	t.Helper()
	fileStorage, err := storage.NewFileStorage(t.TempDir())
	require.NoError(t, err)
	return fileStorage
}

func testConcept(id string) models.Concept {
	return models.Concept{
		ID:             id,
		Title:          "标题" + id,
		Hook:           "钩子" + id,
		DetailedScript: "脚本\n字幕: 测试字幕",
		VisualScenes: []models.Scene{
			{SceneNumber: 1, Description: "开场", Prompt: "cinematic opening shot"},
		},
	}
}

func TestLibrarySaveAndList(t *testing.T) {
	service := NewLibraryService(newTestStorage(t))

	require.NoError(t, service.Save(testConcept("x"), models.CategorySelfImprovement))
	require.NoError(t, service.Save(testConcept("y"), models.CategoryPhilosophy))
	require.NoError(t, service.Save(testConcept("z"), models.CategorySelfImprovement))

	concepts := service.List()
	require.Len(t, concepts, 3)

	// 最新收藏排在最前
	assert.Equal(t, "z", concepts[0].ID)
	assert.Equal(t, "y", concepts[1].ID)
	assert.Equal(t, "x", concepts[2].ID)
	assert.Equal(t, models.CategoryPhilosophy, concepts[1].Category)
	assert.False(t, concepts[0].SavedAt.IsZero())
}

func TestLibrarySave_Duplicate(t *testing.T) {
	service := NewLibraryService(newTestStorage(t))

	require.NoError(t, service.Save(testConcept("x"), models.CategorySelfImprovement))

	err := service.Save(testConcept("x"), models.CategorySelfImprovement)
	assert.True(t, apperrors.IsConflictError(err))

	// 重复收藏不改变集合
	assert.Len(t, service.List(), 1)
}

func TestLibraryRemove(t *testing.T) {
	service := NewLibraryService(newTestStorage(t))

	require.NoError(t, service.Save(testConcept("x"), models.CategorySelfImprovement))
	require.NoError(t, service.Save(testConcept("y"), models.CategorySelfImprovement))

	require.NoError(t, service.Remove("x"))
	concepts := service.List()
	require.Len(t, concepts, 1)
	assert.Equal(t, "y", concepts[0].ID)

	// 移除不存在的id是空操作
	require.NoError(t, service.Remove("ghost"))
	assert.Len(t, service.List(), 1)
}

func TestLibraryClear(t *testing.T) {
	service := NewLibraryService(newTestStorage(t))

	require.NoError(t, service.Save(testConcept("x"), models.CategorySelfImprovement))
	require.NoError(t, service.Clear())

	assert.Empty(t, service.List())
}

func TestLibraryGet(t *testing.T) {
	service := NewLibraryService(newTestStorage(t))
	require.NoError(t, service.Save(testConcept("x"), models.CategoryPhilosophy))

	saved, ok := service.Get("x")
	require.True(t, ok)
	assert.Equal(t, "标题x", saved.Title)
	assert.Equal(t, models.CategoryPhilosophy, saved.Category)

	_, ok = service.Get("ghost")
	assert.False(t, ok)
}

func TestLibraryPersistence(t *testing.T) {
	fileStorage := newTestStorage(t)

	first := NewLibraryService(fileStorage)
	require.NoError(t, first.Save(testConcept("x"), models.CategorySelfImprovement))
	require.NoError(t, first.Save(testConcept("y"), models.CategoryPhilosophy))

	// 用同一个存储重建服务，集合应当恢复
	second := NewLibraryService(fileStorage)
	concepts := second.List()
	require.Len(t, concepts, 2)
	assert.Equal(t, "y", concepts[0].ID)
	assert.Equal(t, "x", concepts[1].ID)
}

func TestLibraryCorruptSlot(t *testing.T) {
	baseDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(baseDir, "library"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(baseDir, "library", "saved_concepts.json"), []byte("{not json"), 0644))

	fileStorage, err := storage.NewFileStorage(baseDir)
	require.NoError(t, err)

	// 槽位损坏时按空库启动，不报错
	service := NewLibraryService(fileStorage)
	assert.Empty(t, service.List())

	// 之后的收藏正常覆盖损坏数据
	require.NoError(t, service.Save(testConcept("x"), models.CategorySelfImprovement))
	recovered := NewLibraryService(fileStorage)
	assert.Len(t, recovered.List(), 1)
}
