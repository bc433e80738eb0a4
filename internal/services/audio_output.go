// internal/services/audio_output.go
package services

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/Corphon/ShortSparkMCP/internal/logging"
	"github.com/Corphon/ShortSparkMCP/internal/models"
	"github.com/ebitengine/oto/v3"
)

// 语音服务固定输出24kHz单声道，输出设备上下文按此创建
const (
	outputSampleRate   = 24000
	outputChannelCount = 1
)

// 单个会话共享一个输出设备上下文：懒创建，创建后不再销毁
var (
	otoContext  *oto.Context
	otoInitOnce sync.Once
	otoInitErr  error
)

// OtoPlayer 把波形写入共享的系统音频输出
// 每次Play相互独立，重叠播放是允许的
type OtoPlayer struct {
	log logging.Logger
}

// NewOtoPlayer 创建音频输出播放器
func NewOtoPlayer() *OtoPlayer {
	return &OtoPlayer{log: logging.ForComponent("audio_output")}
}

// sharedContext 获取共享输出上下文，至多创建一次
func sharedContext() (*oto.Context, error) {
	otoInitOnce.Do(func() {
		options := &oto.NewContextOptions{
			SampleRate:   outputSampleRate,
			ChannelCount: outputChannelCount,
			Format:       oto.FormatFloat32LE,
		}

		ctx, ready, err := oto.NewContext(options)
		if err != nil {
			otoInitErr = fmt.Errorf("创建音频输出上下文失败: %w", err)
			return
		}
		<-ready
		otoContext = ctx
	})

	return otoContext, otoInitErr
}

// Play 开始播放一段波形后立即返回，不跟踪播放完成
func (p *OtoPlayer) Play(waveform *models.Waveform) error {
	ctx, err := sharedContext()
	if err != nil {
		return err
	}

	player := ctx.NewPlayer(bytes.NewReader(waveformBytes(waveform)))
	player.Play()

	// 播放结束后回收播放器，不向调用方暴露任何完成状态
	go func() {
		for player.IsPlaying() {
			time.Sleep(100 * time.Millisecond)
		}
		if err := player.Close(); err != nil {
			p.log.Warnf("关闭播放器失败: %v", err)
		}
	}()

	return nil
}

// waveformBytes 把归一化波形编码为float32小端字节流
func waveformBytes(waveform *models.Waveform) []byte {
	buf := make([]byte, len(waveform.Samples)*4)
	for i, sample := range waveform.Samples {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(sample))
	}
	return buf
}
