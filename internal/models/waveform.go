// internal/models/waveform.go
package models

// Waveform 解码后的可播放波形
// 采样值已归一化到[-1.0, 1.0]，按声道交错存放
type Waveform struct {
	Samples      []float32
	SampleRate   int
	ChannelCount int
}

// SamplesPerChannel 返回每声道的采样数
func (w *Waveform) SamplesPerChannel() int {
	if w.ChannelCount <= 0 {
		return 0
	}
	return len(w.Samples) / w.ChannelCount
}
