// internal/storage/file_storage_test.go
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T) *FileStorage {
	t.Helper()
	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	return fs
}

func TestSaveAndLoadTextFile(t *testing.T) {
	fs := newStorage(t)

	require.NoError(t, fs.SaveTextFile("notes", "a.txt", []byte("你好")))

	content, err := fs.LoadTextFile("notes", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "你好", string(content))

	// 写入后不留临时文件
	_, err = os.Stat(filepath.Join(fs.BaseDir, "notes", "a.txt.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestSaveJSONFile_Overwrite(t *testing.T) {
	fs := newStorage(t)

	type record struct {
		Name string `json:"name"`
	}

	require.NoError(t, fs.SaveJSONFile("slots", "r.json", record{Name: "第一版"}))
	require.NoError(t, fs.SaveJSONFile("slots", "r.json", record{Name: "第二版"}))

	var loaded record
	require.NoError(t, fs.LoadJSONFile("slots", "r.json", &loaded))
	assert.Equal(t, "第二版", loaded.Name)
}

func TestLoadMissingFile(t *testing.T) {
	fs := newStorage(t)

	_, err := fs.LoadTextFile("ghost", "missing.json")
	assert.True(t, IsNotExist(err))

	var v map[string]string
	err = fs.LoadJSONFile("ghost", "missing.json", &v)
	assert.True(t, IsNotExist(err))
}

func TestLoadJSONFile_Corrupt(t *testing.T) {
	fs := newStorage(t)
	require.NoError(t, fs.SaveTextFile("slots", "bad.json", []byte("{broken")))

	var v map[string]string
	err := fs.LoadJSONFile("slots", "bad.json", &v)
	require.Error(t, err)
	assert.False(t, IsNotExist(err))
}

func TestFileExistsAndDelete(t *testing.T) {
	fs := newStorage(t)

	assert.False(t, fs.FileExists("slots", "a.json"))
	require.NoError(t, fs.SaveTextFile("slots", "a.json", []byte("{}")))
	assert.True(t, fs.FileExists("slots", "a.json"))

	require.NoError(t, fs.DeleteFile("slots", "a.json"))
	assert.False(t, fs.FileExists("slots", "a.json"))

	// 删除不存在的文件不报错
	require.NoError(t, fs.DeleteFile("slots", "a.json"))
}

func TestConcurrentWrites(t *testing.T) {
	fs := newStorage(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			content := []byte(fmt.Sprintf(`{"n": %d}`, n))
			assert.NoError(t, fs.SaveTextFile("slots", "shared.json", content))
		}(i)
	}
	wg.Wait()

	// 并发覆盖写后文件必须是某次完整写入的结果
	var v map[string]int
	require.NoError(t, fs.LoadJSONFile("slots", "shared.json", &v))
	assert.Contains(t, v, "n")
}
