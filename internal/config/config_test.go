// internal/config/config_test.go
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetConfig() {
	configMutex.Lock()
	defer configMutex.Unlock()
	currentConfig = nil
	configFile = ""
}

// setTestDirs 把路径类环境变量指到临时目录，避免在包目录下建目录
func setTestDirs(t *testing.T) {
	t.Helper()
	base := t.TempDir()
	t.Setenv("DATA_DIR", filepath.Join(base, "data"))
	t.Setenv("STATIC_DIR", filepath.Join(base, "static"))
	t.Setenv("LOG_DIR", filepath.Join(base, "logs"))
}

func TestInitConfig_Defaults(t *testing.T) {
	t.Cleanup(resetConfig)
	setTestDirs(t)
	t.Setenv("PORT", "9090")
	t.Setenv("GEN_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	require.NoError(t, InitConfig(t.TempDir()))

	cfg := GetCurrentConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "sk-test", cfg.ProviderConfig["openai_api_key"])
}

func TestInitConfig_SavedOverrides(t *testing.T) {
	t.Cleanup(resetConfig)
	setTestDirs(t)
	t.Setenv("GEN_PROVIDER", "openai")

	dataDir := t.TempDir()
	saved := AppConfig{
		Provider:      "gemini",
		ImageProvider: "pollinations",
		ProviderConfig: map[string]string{
			"gemini_api_key": "gm-saved",
		},
	}
	data, err := json.Marshal(saved)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "config.json"), data, 0644))

	require.NoError(t, InitConfig(dataDir))

	cfg := GetCurrentConfig()
	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, "pollinations", cfg.ImageProvider)
	assert.Equal(t, "gm-saved", cfg.ProviderConfig["gemini_api_key"])
}

func TestInitConfig_CorruptFile(t *testing.T) {
	t.Cleanup(resetConfig)
	setTestDirs(t)

	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "config.json"), []byte("{broken"), 0644))

	// 配置文件损坏不阻塞启动，沿用环境变量配置
	require.NoError(t, InitConfig(dataDir))
	assert.NotNil(t, GetCurrentConfig())
}

func TestUpdateProviderConfig(t *testing.T) {
	t.Cleanup(resetConfig)
	setTestDirs(t)

	dataDir := t.TempDir()
	require.NoError(t, InitConfig(dataDir))

	require.NoError(t, UpdateProviderConfig("gemini", "pollinations", map[string]string{
		"gemini_api_key": "gm-new",
	}))

	cfg := GetCurrentConfig()
	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, "gm-new", cfg.ProviderConfig["gemini_api_key"])

	// 更新已持久化到槽位文件
	data, err := os.ReadFile(filepath.Join(dataDir, "config.json"))
	require.NoError(t, err)

	var persisted AppConfig
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.Equal(t, "gemini", persisted.Provider)
	assert.Equal(t, "gm-new", persisted.ProviderConfig["gemini_api_key"])
}

func TestUpdateProviderConfig_NotInitialized(t *testing.T) {
	resetConfig()
	assert.Error(t, UpdateProviderConfig("openai", "", nil))
}
