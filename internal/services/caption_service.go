// internal/services/caption_service.go
package services

import "strings"

// CaptionMarker 脚本中标记字幕行的指令标记
const CaptionMarker = "字幕:"

// CaptionService 从创意脚本中提取字幕
type CaptionService struct{}

// NewCaptionService 创建字幕服务
func NewCaptionService() *CaptionService {
	return &CaptionService{}
}

// ExtractCaptions 从脚本文本中提取全部字幕行
// 确定性纯函数：没有字幕标记时返回空字符串，永不失败
func (s *CaptionService) ExtractCaptions(script string) string {
	return ExtractCaptions(script)
}

// ExtractCaptions 逐行扫描脚本，保留含字幕标记的行：
// 取标记之后的子串，去掉首尾空白，再剥掉最外层的一对引号，
// 清理后为空的行丢弃，其余按原顺序用换行符连接
func ExtractCaptions(script string) string {
	lines := strings.Split(script, "\n")

	captions := make([]string, 0, len(lines))
	for _, line := range lines {
		idx := strings.Index(line, CaptionMarker)
		if idx < 0 {
			continue
		}

		caption := strings.TrimSpace(line[idx+len(CaptionMarker):])
		caption = stripOuterQuotes(caption)
		caption = strings.TrimSpace(caption)
		if caption == "" {
			continue
		}

		captions = append(captions, caption)
	}

	return strings.Join(captions, "\n")
}

// 字幕文本可能带的引号字符（中西文）
var quoteRunes = map[rune]bool{
	'"': true, '\'': true,
	'“': true, '”': true, // “ ”
	'「': true, '」': true, // 「 」
}

// stripOuterQuotes 剥掉首尾各一个引号字符，只处理最外层，不递归
func stripOuterQuotes(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}

	start, end := 0, len(runes)
	if quoteRunes[runes[0]] {
		start = 1
	}
	if end > start && quoteRunes[runes[end-1]] {
		end--
	}

	return string(runes[start:end])
}
