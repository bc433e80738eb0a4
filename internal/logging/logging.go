// internal/logging/logging.go
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// 全局日志实例
var (
	base     *logrus.Logger
	baseOnce sync.Once
	logFile  *os.File
)

// Logger 服务层使用的日志接口
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	WithField(key string, value any) *logrus.Entry
}

// get 返回全局logrus实例（懒初始化，默认输出到stdout）
func get() *logrus.Logger {
	baseOnce.Do(func() {
		base = logrus.New()
		base.SetOutput(os.Stdout)
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
		base.SetLevel(logrus.InfoLevel)
	})
	return base
}

// Init 初始化日志系统，同时写入stdout和日志文件
func Init(logDir string, debug bool) error {
	logger := get()

	if debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	if logDir == "" {
		return nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("创建日志目录失败: %w", err)
	}

	file, err := os.OpenFile(filepath.Join(logDir, "shortspark.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("打开日志文件失败: %w", err)
	}

	// 替换之前的日志文件句柄
	if logFile != nil {
		logFile.Close()
	}
	logFile = file

	logger.SetOutput(io.MultiWriter(os.Stdout, file))
	return nil
}

// ForComponent 返回带component字段的日志入口，供各服务使用
func ForComponent(name string) Logger {
	return get().WithField("component", name)
}
