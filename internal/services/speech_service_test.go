// internal/services/speech_service_test.go
package services

import (
	"context"
	"encoding/base64"
	"testing"

	apperrors "github.com/Corphon/ShortSparkMCP/internal/errors"
	"github.com/Corphon/ShortSparkMCP/internal/generation"
	"github.com/Corphon/ShortSparkMCP/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSynthesizer 返回预置的合成结果
type fakeSynthesizer struct {
	response *generation.SpeechResponse
	err      error
	lastReq  generation.SpeechRequest
}

func (f *fakeSynthesizer) SynthesizeSpeech(_ context.Context, req generation.SpeechRequest) (*generation.SpeechResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

// fakePlayer 记录播放的波形
type fakePlayer struct {
	played []*models.Waveform
	err    error
}

func (f *fakePlayer) Play(waveform *models.Waveform) error {
	if f.err != nil {
		return f.err
	}
	f.played = append(f.played, waveform)
	return nil
}

func TestPCMToWaveform_SampleCount(t *testing.T) {
	// 4字节单声道 → 2个采样
	waveform, err := PCMToWaveform([]byte{0, 0, 0, 0}, 24000, 1)
	require.NoError(t, err)
	assert.Len(t, waveform.Samples, 2)
	assert.Equal(t, 2, waveform.SamplesPerChannel())

	// 3字节单声道 → 末尾不完整采样丢弃，只剩1个
	waveform, err = PCMToWaveform([]byte{0, 0, 0}, 24000, 1)
	require.NoError(t, err)
	assert.Len(t, waveform.Samples, 1)

	// 6字节双声道 → 每声道1帧，末尾2字节凑不满一帧被丢弃
	waveform, err = PCMToWaveform([]byte{0, 0, 0, 0, 0, 0}, 44100, 2)
	require.NoError(t, err)
	assert.Len(t, waveform.Samples, 2)
	assert.Equal(t, 1, waveform.SamplesPerChannel())
}

func TestPCMToWaveform_Normalization(t *testing.T) {
	// 0x7FFF → 32767/32768，0x8000 → -1.0，0x0000 → 0
	data := []byte{0xFF, 0x7F, 0x00, 0x80, 0x00, 0x00}
	waveform, err := PCMToWaveform(data, 24000, 1)
	require.NoError(t, err)

	require.Len(t, waveform.Samples, 3)
	assert.InDelta(t, float32(32767)/32768.0, waveform.Samples[0], 1e-7)
	assert.InDelta(t, -1.0, waveform.Samples[1], 1e-7)
	assert.InDelta(t, 0.0, waveform.Samples[2], 1e-7)
}

func TestPCMToWaveform_Deterministic(t *testing.T) {
	data := []byte{0x12, 0x34, 0x56, 0x78}

	first, err := PCMToWaveform(data, 24000, 1)
	require.NoError(t, err)
	second, err := PCMToWaveform(data, 24000, 1)
	require.NoError(t, err)

	assert.Equal(t, first.Samples, second.Samples)
}

func TestPCMToWaveform_InvalidParams(t *testing.T) {
	_, err := PCMToWaveform([]byte{0, 0}, 0, 1)
	assert.True(t, apperrors.IsDecodeError(err))

	_, err = PCMToWaveform([]byte{0, 0}, 24000, 0)
	assert.True(t, apperrors.IsDecodeError(err))
}

func TestPCMToWaveform_Empty(t *testing.T) {
	waveform, err := PCMToWaveform(nil, 24000, 1)
	require.NoError(t, err)
	assert.Empty(t, waveform.Samples)
}

func TestDecodeAudioPayload(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte{1, 2, 3})

	data, err := DecodeAudioPayload(encoded)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	_, err = DecodeAudioPayload("不是base64!!!")
	assert.True(t, apperrors.IsDecodeError(err))
}

func TestSynthesizeAndPlay(t *testing.T) {
	pcm := []byte{0xFF, 0x7F, 0x00, 0x80}
	synth := &fakeSynthesizer{
		response: &generation.SpeechResponse{
			AudioBase64:  base64.StdEncoding.EncodeToString(pcm),
			SampleRate:   24000,
			ChannelCount: 1,
		},
	}
	player := &fakePlayer{}
	service := NewSpeechService(synth, player)

	err := service.SynthesizeAndPlay(context.Background(), "每天进步一点点", "nova")
	require.NoError(t, err)

	assert.Equal(t, "每天进步一点点", synth.lastReq.Text)
	assert.Equal(t, "nova", synth.lastReq.VoiceID)

	require.Len(t, player.played, 1)
	assert.Equal(t, 24000, player.played[0].SampleRate)
	assert.Len(t, player.played[0].Samples, 2)
}

func TestSynthesizeAndPlay_EmptyText(t *testing.T) {
	synth := &fakeSynthesizer{}
	service := NewSpeechService(synth, &fakePlayer{})

	err := service.SynthesizeAndPlay(context.Background(), "   ", "nova")
	assert.True(t, apperrors.IsValidationError(err))
	// 校验失败不应发出合成请求
	assert.Empty(t, synth.lastReq.Text)
}

func TestSynthesizeAndPlay_SynthesisFailure(t *testing.T) {
	synth := &fakeSynthesizer{err: assert.AnError}
	service := NewSpeechService(synth, &fakePlayer{})

	err := service.SynthesizeAndPlay(context.Background(), "测试", "nova")
	assert.True(t, apperrors.IsNetworkError(err))
}

func TestSynthesizeAndPlay_BadPayload(t *testing.T) {
	synth := &fakeSynthesizer{
		response: &generation.SpeechResponse{
			AudioBase64:  "@@@",
			SampleRate:   24000,
			ChannelCount: 1,
		},
	}
	player := &fakePlayer{}
	service := NewSpeechService(synth, player)

	err := service.SynthesizeAndPlay(context.Background(), "测试", "nova")
	assert.True(t, apperrors.IsDecodeError(err))
	assert.Empty(t, player.played)
}
