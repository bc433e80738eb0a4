// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

// 当前配置的单例实例
var (
	currentConfig *AppConfig
	configMutex   sync.RWMutex
	configFile    string
)

// AppConfig 包含应用程序的所有配置
type AppConfig struct {
	// 基础配置
	Port      string `json:"port"`
	DataDir   string `json:"data_dir"`
	StaticDir string `json:"static_dir"`
	LogDir    string `json:"log_dir"`
	DebugMode bool   `json:"debug_mode"`

	// 生成服务相关配置
	Provider       string            `json:"provider"`        // openai / gemini
	ImageProvider  string            `json:"image_provider"`  // openai / gemini / pollinations
	ProviderConfig map[string]string `json:"provider_config"` // api_key、default_model等
}

// Config 存储从环境变量加载的基础配置
type Config struct {
	Port          string
	OpenAIAPIKey  string
	GeminiAPIKey  string
	DataDir       string
	StaticDir     string
	LogDir        string
	DebugMode     bool
	Provider      string
	ImageProvider string
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	// 尝试加载.env文件（可选）
	godotenv.Load()

	config := &Config{
		Port:          getEnv("PORT", "8080"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		DataDir:       getEnvPath("DATA_DIR", "data"),
		StaticDir:     getEnvPath("STATIC_DIR", "static"),
		LogDir:        getEnvPath("LOG_DIR", "logs"),
		DebugMode:     getEnvBool("DEBUG_MODE", true),
		Provider:      getEnv("GEN_PROVIDER", "openai"),
		ImageProvider: getEnv("IMAGE_PROVIDER", ""),
	}

	// 验证API密钥
	if config.OpenAIAPIKey == "" && config.GeminiAPIKey == "" {
		// 只记录警告，不返回错误
		log.Println("警告: 未设置生成服务API密钥，将需要在设置接口中配置后才能生成创意")
	}

	return config, nil
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvPath 获取环境变量表示的路径，如果不存在则返回默认值
func getEnvPath(key, defaultValue string) string {
	path := getEnv(key, defaultValue)

	// 确保目录存在
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0755); err != nil {
			fmt.Printf("警告: 创建目录失败 %s: %v\n", path, err)
		}
	}

	return path
}

// getEnvBool 获取布尔类型环境变量
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value == "true" || value == "1" || value == "yes"
}

// InitConfig 初始化配置管理器
// 基础配置来自环境变量，data/config.json中的设置项覆盖其上
func InitConfig(dataDir string) error {
	configFile = filepath.Join(dataDir, "config.json")

	baseConfig, err := Load()
	if err != nil {
		return err
	}

	configMutex.Lock()
	defer configMutex.Unlock()

	currentConfig = &AppConfig{
		Port:          baseConfig.Port,
		DataDir:       baseConfig.DataDir,
		StaticDir:     baseConfig.StaticDir,
		LogDir:        baseConfig.LogDir,
		DebugMode:     baseConfig.DebugMode,
		Provider:      baseConfig.Provider,
		ImageProvider: baseConfig.ImageProvider,
		ProviderConfig: map[string]string{
			"openai_api_key": baseConfig.OpenAIAPIKey,
			"gemini_api_key": baseConfig.GeminiAPIKey,
		},
	}

	// 读取持久化的设置项（可选）
	data, err := os.ReadFile(configFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("读取配置文件失败: %w", err)
	}

	var saved AppConfig
	if err := json.Unmarshal(data, &saved); err != nil {
		// 配置文件损坏时沿用环境变量配置，不阻塞启动
		log.Printf("警告: 配置文件损坏，使用默认配置: %v", err)
		return nil
	}

	if saved.Provider != "" {
		currentConfig.Provider = saved.Provider
	}
	if saved.ImageProvider != "" {
		currentConfig.ImageProvider = saved.ImageProvider
	}
	for k, v := range saved.ProviderConfig {
		if v != "" {
			currentConfig.ProviderConfig[k] = v
		}
	}

	return nil
}

// GetCurrentConfig 获取当前配置
func GetCurrentConfig() *AppConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()

	return currentConfig
}

// UpdateProviderConfig 更新生成服务配置并持久化
func UpdateProviderConfig(provider, imageProvider string, providerConfig map[string]string) error {
	configMutex.Lock()
	defer configMutex.Unlock()

	if currentConfig == nil {
		return fmt.Errorf("配置系统尚未初始化")
	}

	if provider != "" {
		currentConfig.Provider = provider
	}
	if imageProvider != "" {
		currentConfig.ImageProvider = imageProvider
	}
	for k, v := range providerConfig {
		if v != "" {
			currentConfig.ProviderConfig[k] = v
		}
	}

	return saveLocked()
}

// saveLocked 持久化当前配置，调用方必须持有写锁
func saveLocked() error {
	if configFile == "" {
		return nil
	}

	data, err := json.MarshalIndent(currentConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(configFile, data, 0644); err != nil {
		return fmt.Errorf("保存配置文件失败: %w", err)
	}

	return nil
}
