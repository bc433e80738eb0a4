// internal/services/speech_service.go
package services

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"

	apperrors "github.com/Corphon/ShortSparkMCP/internal/errors"
	"github.com/Corphon/ShortSparkMCP/internal/generation"
	"github.com/Corphon/ShortSparkMCP/internal/logging"
	"github.com/Corphon/ShortSparkMCP/internal/models"
)

// SpeechSynthesizer 语音合成上游的最小接口
type SpeechSynthesizer interface {
	SynthesizeSpeech(ctx context.Context, req generation.SpeechRequest) (*generation.SpeechResponse, error)
}

// WaveformPlayer 波形播放设备的最小接口
type WaveformPlayer interface {
	Play(waveform *models.Waveform) error
}

// SpeechService 口播预览管道：合成 → 解码 → 播放
// 每次播放相互独立，允许重叠，不跟踪播放完成
type SpeechService struct {
	synth  SpeechSynthesizer
	player WaveformPlayer
	log    logging.Logger
}

// NewSpeechService 创建语音服务
func NewSpeechService(synth SpeechSynthesizer, player WaveformPlayer) *SpeechService {
	return &SpeechService{
		synth:  synth,
		player: player,
		log:    logging.ForComponent("speech"),
	}
}

// SynthesizeAndPlay 合成一段口播并立即播放（fire-and-forget）
func (s *SpeechService) SynthesizeAndPlay(ctx context.Context, text, voiceID string) error {
	if strings.TrimSpace(text) == "" {
		return apperrors.NewValidationError("口播文本不能为空", nil)
	}

	response, err := s.synth.SynthesizeSpeech(ctx, generation.SpeechRequest{
		Text:    text,
		VoiceID: voiceID,
	})
	if err != nil {
		s.log.Errorf("语音合成失败: %v", err)
		return apperrors.NewNetworkError("语音合成请求失败", err)
	}

	pcm, err := DecodeAudioPayload(response.AudioBase64)
	if err != nil {
		s.log.Errorf("音频载荷解码失败: %v", err)
		return err
	}

	waveform, err := PCMToWaveform(pcm, response.SampleRate, response.ChannelCount)
	if err != nil {
		s.log.Errorf("PCM解码失败: %v", err)
		return err
	}

	if err := s.player.Play(waveform); err != nil {
		s.log.Errorf("音频播放失败: %v", err)
		return fmt.Errorf("音频播放失败: %w", err)
	}

	s.log.Debugf("开始播放口播预览: %d samples @ %dHz", len(waveform.Samples), waveform.SampleRate)
	return nil
}

// DecodeAudioPayload 解码base64音频载荷
// 非法字符（除填充外）返回解码错误
func DecodeAudioPayload(payload string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, apperrors.NewDecodeError("base64音频载荷格式错误", err)
	}
	return data, nil
}

// PCMToWaveform 把16位小端线性PCM解码为归一化波形
// 每声道采样数 = floor(字节数 / 2 / 声道数)，末尾不完整的采样直接丢弃；
// 每个采样除以32768.0归一化到[-1.0, 1.0]；
// 纯函数，相同输入必然产生相同输出
func PCMToWaveform(data []byte, sampleRate, channelCount int) (*models.Waveform, error) {
	if sampleRate <= 0 {
		return nil, apperrors.NewDecodeError(fmt.Sprintf("采样率非法: %d", sampleRate), nil)
	}
	if channelCount <= 0 {
		return nil, apperrors.NewDecodeError(fmt.Sprintf("声道数非法: %d", channelCount), nil)
	}

	framesPerChannel := len(data) / 2 / channelCount
	total := framesPerChannel * channelCount

	samples := make([]float32, total)
	for i := 0; i < total; i++ {
		raw := int16(binary.LittleEndian.Uint16(data[i*2 : i*2+2]))
		samples[i] = float32(raw) / 32768.0
	}

	return &models.Waveform{
		Samples:      samples,
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
	}, nil
}
