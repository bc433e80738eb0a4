// internal/services/selection_service.go
package services

import (
	"context"
	"sync"
	"time"

	"github.com/Corphon/ShortSparkMCP/internal/generation"
	"github.com/Corphon/ShortSparkMCP/internal/logging"
	"github.com/Corphon/ShortSparkMCP/internal/models"
	"github.com/google/uuid"
)

// 预览配图生成的超时上限
const imageEnrichTimeout = 2 * time.Minute

// ImageGenerator 图像生成上游的最小接口
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req generation.ImageRequest) (*generation.ImageResponse, error)
}

// PreviewNotifier 预览事件推送接口（WebSocket层实现）
type PreviewNotifier interface {
	NotifyPreview(snapshot models.SelectionSnapshot)
}

// SelectionService 管理当前选中的创意及其预览增强
//
// 每次选择开启一个新的"选择期"：铸造一个新的期号token，
// 异步配图请求带着铸造时的token出发，返回时与当前token比对，
// 不一致说明选择已经变更，结果直接丢弃。
// 乱序返回的旧请求因此永远不会覆盖新选择的预览。
type SelectionService struct {
	images   ImageGenerator
	speech   *SpeechService
	notifier PreviewNotifier // 可为nil（测试或无连接时）
	log      logging.Logger

	stateMu sync.Mutex
	batch   []models.Concept
	state   models.SelectionState
	current *models.Concept
	image   *models.GeneratedImage
	token   string
}

// NewSelectionService 创建选择控制器
func NewSelectionService(images ImageGenerator, speech *SpeechService) *SelectionService {
	return &SelectionService{
		images: images,
		speech: speech,
		log:    logging.ForComponent("selection"),
		state:  models.SelectionIdle,
	}
}

// SetNotifier 注入预览事件推送器
func (s *SelectionService) SetNotifier(notifier PreviewNotifier) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.notifier = notifier
}

// ResetBatch 安装新的创意批次
// 同时清除当前选择并作废所有在途的配图请求
func (s *SelectionService) ResetBatch(concepts []models.Concept) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	s.batch = concepts
	s.current = nil
	s.image = nil
	s.state = models.SelectionIdle
	s.token = uuid.NewString() // 作废在途请求
}

// ConceptFromBatch 按id在当前批次中查找创意
func (s *SelectionService) ConceptFromBatch(id string) (*models.Concept, bool) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	for i := range s.batch {
		if s.batch[i].ID == id {
			concept := s.batch[i]
			return &concept, true
		}
	}
	return nil, false
}

// Select 选中一条创意
// 同步更新选择状态并清空旧预览图，随后异步发起配图请求
func (s *SelectionService) Select(concept models.Concept) models.SelectionSnapshot {
	s.stateMu.Lock()
	token := uuid.NewString()
	s.token = token
	selected := concept
	s.current = &selected
	s.image = nil
	s.state = models.SelectionSelecting
	snapshot := s.snapshotLocked()
	s.stateMu.Unlock()

	go s.enrichImage(token, concept)

	return snapshot
}

// enrichImage 异步生成预览配图
// 只有期号token仍与当前选择一致时结果才会被采纳
func (s *SelectionService) enrichImage(token string, concept models.Concept) {
	ctx, cancel := context.WithTimeout(context.Background(), imageEnrichTimeout)
	defer cancel()

	response, err := s.images.GenerateImage(ctx, generation.ImageRequest{
		Prompt:      concept.FirstScenePrompt(),
		VisualStyle: concept.VisualStyle,
	})

	s.stateMu.Lock()
	if s.token != token {
		// 过期结果：选择已变更，静默丢弃
		s.stateMu.Unlock()
		s.log.Debugf("丢弃过期配图结果: concept=%s", concept.ID)
		return
	}

	s.state = models.SelectionPreviewing
	if err != nil {
		// 配图失败不阻塞预览，留空即可
		s.image = nil
		s.log.Warnf("预览配图生成失败: concept=%s err=%v", concept.ID, err)
	} else {
		s.image = &models.GeneratedImage{URL: response.URL, ConceptID: concept.ID}
	}
	snapshot := s.snapshotLocked()
	notifier := s.notifier
	s.stateMu.Unlock()

	if notifier != nil {
		notifier.NotifyPreview(snapshot)
	}
}

// TriggerAudioPreview 播放选中创意钩子句的口播预览
// 并发触发互相独立，失败作为可恢复错误上抛
func (s *SelectionService) TriggerAudioPreview(ctx context.Context, concept models.Concept, category models.Category) error {
	voice := VoiceForCategory(category)
	return s.speech.SynthesizeAndPlay(ctx, concept.Hook, voice)
}

// Snapshot 返回当前选择状态的只读快照
func (s *SelectionService) Snapshot() models.SelectionSnapshot {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.snapshotLocked()
}

// ClearIf 若指定创意是当前选中项则清除选择
// 供收藏库移除创意后调用
func (s *SelectionService) ClearIf(conceptID string) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	if s.current == nil || s.current.ID != conceptID {
		return
	}

	s.current = nil
	s.image = nil
	s.state = models.SelectionIdle
	s.token = uuid.NewString()
}

// snapshotLocked 生成状态快照，调用方必须持有stateMu
func (s *SelectionService) snapshotLocked() models.SelectionSnapshot {
	snapshot := models.SelectionSnapshot{State: s.state}
	if s.current != nil {
		concept := *s.current
		snapshot.Concept = &concept
	}
	if s.image != nil {
		image := *s.image
		snapshot.Image = &image
	}
	return snapshot
}
