// internal/api/handlers.go
package api

import (
	"net/http"
	"time"

	"github.com/Corphon/ShortSparkMCP/internal/config"
	apperrors "github.com/Corphon/ShortSparkMCP/internal/errors"
	"github.com/Corphon/ShortSparkMCP/internal/logging"
	"github.com/Corphon/ShortSparkMCP/internal/models"
	"github.com/Corphon/ShortSparkMCP/internal/services"
	"github.com/gin-gonic/gin"
)

// Handler 处理API请求
type Handler struct {
	// 核心服务
	RecommendService  *services.RecommendService  // 创意推荐服务
	SelectionService  *services.SelectionService  // 选中与预览服务
	LibraryService    *services.LibraryService    // 收藏库服务
	CaptionService    *services.CaptionService    // 字幕提取服务
	GenerationService *services.GenerationService // 生成提供商服务
	WebSocketManager  *WebSocketManager           // WebSocket 事件推送
	Response          *ResponseHelper             // 响应助手

	log logging.Logger
}

// NewHandler 创建API处理器
func NewHandler(
	recommend *services.RecommendService,
	selection *services.SelectionService,
	library *services.LibraryService,
	caption *services.CaptionService,
	generator *services.GenerationService,
	wsManager *WebSocketManager,
) *Handler {
	return &Handler{
		RecommendService:  recommend,
		SelectionService:  selection,
		LibraryService:    library,
		CaptionService:    caption,
		GenerationService: generator,
		WebSocketManager:  wsManager,
		Response:          NewResponseHelper(),
		log:               logging.ForComponent("api"),
	}
}

// SelectConceptRequest 选中创意的请求结构
type SelectConceptRequest struct {
	ConceptID string `json:"concept_id"` // 创意ID（当前批次或收藏库）
}

// AudioPreviewRequest 口播预览的请求结构
type AudioPreviewRequest struct {
	ConceptID string `json:"concept_id"` // 创意ID
	Category  string `json:"category"`   // 分类（决定音色，可省略）
}

// ExtractCaptionsRequest 字幕提取的请求结构
type ExtractCaptionsRequest struct {
	ConceptID string `json:"concept_id"` // 创意ID（与script二选一）
	Script    string `json:"script"`     // 直接传入的脚本文本
}

// SaveConceptRequest 收藏创意的请求结构
type SaveConceptRequest struct {
	ConceptID string `json:"concept_id"` // 当前批次里的创意ID
	Category  string `json:"category"`   // 创意所属分类
}

// UpdateSettingsRequest 更新提供商配置的请求结构
type UpdateSettingsRequest struct {
	Provider       string            `json:"provider"`        // 文本/语音提供商
	ImageProvider  string            `json:"image_provider"`  // 图像提供商
	ProviderConfig map[string]string `json:"provider_config"` // API密钥和模型配置
}

// ------------------------------------------------
// 推荐

// RecommendConcepts 根据分类和偏好生成一批创意
func (h *Handler) RecommendConcepts(c *gin.Context) {
	var req services.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.ErrorWithCode(c, http.StatusBadRequest, ErrorInvalidRequest, "无效的请求数据: "+err.Error())
		return
	}

	concepts, err := h.RecommendService.Recommend(c.Request.Context(), req)
	if err != nil {
		h.Response.Error(c, err)
		return
	}

	h.Response.Success(c, gin.H{
		"concepts": concepts,
		"count":    len(concepts),
	})
}

// GetSuggestions 返回指定分类的推荐人物/主题建议
func (h *Handler) GetSuggestions(c *gin.Context) {
	category := models.Category(c.Query("category"))
	if !category.IsValid() {
		h.Response.ErrorWithCode(c, http.StatusBadRequest, ErrorInvalidCategory, "未知的创意分类: "+string(category))
		return
	}

	h.Response.Success(c, gin.H{
		"category": category,
		"figures":  services.FiguresForCategory(category),
		"voice":    services.VoiceForCategory(category),
	})
}

// ------------------------------------------------
// 选中与预览

// GetSelection 返回当前选中状态快照
func (h *Handler) GetSelection(c *gin.Context) {
	h.Response.Success(c, h.SelectionService.Snapshot())
}

// SelectConcept 选中一个创意并触发预览图生成
func (h *Handler) SelectConcept(c *gin.Context) {
	var req SelectConceptRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ConceptID == "" {
		h.Response.ErrorWithCode(c, http.StatusBadRequest, ErrorInvalidRequest, "缺少创意ID")
		return
	}

	concept, ok := h.resolveConcept(req.ConceptID)
	if !ok {
		h.Response.ErrorWithCode(c, http.StatusNotFound, ErrorConceptNotFound, "找不到创意: "+req.ConceptID)
		return
	}

	snapshot := h.SelectionService.Select(*concept)
	h.Response.Success(c, snapshot, "已选中，预览图生成中")
}

// PreviewAudio 合成并播放选中创意的口播预览
func (h *Handler) PreviewAudio(c *gin.Context) {
	var req AudioPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ConceptID == "" {
		h.Response.ErrorWithCode(c, http.StatusBadRequest, ErrorInvalidRequest, "缺少创意ID")
		return
	}

	concept, ok := h.resolveConcept(req.ConceptID)
	if !ok {
		h.Response.ErrorWithCode(c, http.StatusNotFound, ErrorConceptNotFound, "找不到创意: "+req.ConceptID)
		return
	}

	category := models.Category(req.Category)
	if !category.IsValid() {
		// 收藏过的创意带有分类，优先用它
		if saved, found := h.LibraryService.Get(req.ConceptID); found {
			category = saved.Category
		}
	}

	if err := h.SelectionService.TriggerAudioPreview(c.Request.Context(), *concept, category); err != nil {
		h.WebSocketManager.Broadcast("audio_error", gin.H{
			"concept_id": req.ConceptID,
			"message":    err.Error(),
		})
		h.Response.Error(c, err)
		return
	}

	h.Response.Success(c, gin.H{"concept_id": req.ConceptID}, "口播预览播放中")
}

// resolveConcept 按ID查找创意：先当前批次，再收藏库
func (h *Handler) resolveConcept(id string) (*models.Concept, bool) {
	if concept, ok := h.SelectionService.ConceptFromBatch(id); ok {
		return concept, true
	}
	if saved, ok := h.LibraryService.Get(id); ok {
		concept := saved.Concept
		return &concept, true
	}
	return nil, false
}

// ------------------------------------------------
// 字幕

// ExtractCaptions 从分镜脚本中提取字幕文案
func (h *Handler) ExtractCaptions(c *gin.Context) {
	var req ExtractCaptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.ErrorWithCode(c, http.StatusBadRequest, ErrorInvalidRequest, "无效的请求数据: "+err.Error())
		return
	}

	script := req.Script
	if script == "" && req.ConceptID != "" {
		concept, ok := h.resolveConcept(req.ConceptID)
		if !ok {
			h.Response.ErrorWithCode(c, http.StatusNotFound, ErrorConceptNotFound, "找不到创意: "+req.ConceptID)
			return
		}
		script = concept.DetailedScript
	}

	captions := h.CaptionService.ExtractCaptions(script)
	if captions == "" {
		h.Response.Success(c, gin.H{"captions": ""}, "脚本中没有字幕标记")
		return
	}

	h.Response.Success(c, gin.H{"captions": captions})
}

// ------------------------------------------------
// 收藏库

// ListLibrary 返回全部已收藏创意（新收藏在前）
func (h *Handler) ListLibrary(c *gin.Context) {
	concepts := h.LibraryService.List()
	h.Response.Success(c, gin.H{
		"concepts": concepts,
		"count":    len(concepts),
	})
}

// SaveToLibrary 把当前批次中的创意收藏到库里
func (h *Handler) SaveToLibrary(c *gin.Context) {
	var req SaveConceptRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ConceptID == "" {
		h.Response.ErrorWithCode(c, http.StatusBadRequest, ErrorInvalidRequest, "缺少创意ID")
		return
	}

	category := models.Category(req.Category)
	if !category.IsValid() {
		h.Response.ErrorWithCode(c, http.StatusBadRequest, ErrorInvalidCategory, "未知的创意分类: "+req.Category)
		return
	}

	concept, ok := h.SelectionService.ConceptFromBatch(req.ConceptID)
	if !ok {
		h.Response.ErrorWithCode(c, http.StatusNotFound, ErrorConceptNotFound, "当前批次中找不到创意: "+req.ConceptID)
		return
	}

	if err := h.LibraryService.Save(*concept, category); err != nil {
		if apperrors.IsConflictError(err) {
			// 重复收藏不算失败，前端据此提示即可
			h.Response.ErrorWithCode(c, http.StatusConflict, ErrorAlreadyExists, "该创意已在收藏库中")
			return
		}
		h.Response.Error(c, err)
		return
	}

	h.Response.Success(c, gin.H{"concept_id": req.ConceptID}, "已收藏")
}

// RemoveFromLibrary 从收藏库删除一个创意
func (h *Handler) RemoveFromLibrary(c *gin.Context) {
	id := c.Param("id")
	if err := h.LibraryService.Remove(id); err != nil {
		h.Response.Error(c, err)
		return
	}

	// 被删除的创意如果正处于选中态，一并清掉
	h.SelectionService.ClearIf(id)

	h.Response.Success(c, gin.H{"concept_id": id}, "已移除")
}

// ClearLibrary 清空收藏库
func (h *Handler) ClearLibrary(c *gin.Context) {
	if err := h.LibraryService.Clear(); err != nil {
		h.Response.Error(c, err)
		return
	}
	h.Response.Success(c, nil, "收藏库已清空")
}

// ------------------------------------------------
// 设置与状态

// GetSettings 返回当前提供商配置（密钥只返回是否已设置）
func (h *Handler) GetSettings(c *gin.Context) {
	cfg := config.GetCurrentConfig()

	masked := make(map[string]string, len(cfg.ProviderConfig))
	for key, value := range cfg.ProviderConfig {
		if key == "openai_api_key" || key == "gemini_api_key" {
			if value != "" {
				masked[key] = "已设置"
			}
			continue
		}
		masked[key] = value
	}

	h.Response.Success(c, gin.H{
		"provider":        cfg.Provider,
		"image_provider":  cfg.ImageProvider,
		"provider_config": masked,
	})
}

// UpdateSettings 更新提供商配置并热切换生成服务
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.ErrorWithCode(c, http.StatusBadRequest, ErrorInvalidRequest, "无效的请求数据: "+err.Error())
		return
	}

	if err := h.GenerationService.Reconfigure(req.Provider, req.ImageProvider, req.ProviderConfig); err != nil {
		h.Response.Error(c, err)
		return
	}

	if err := config.UpdateProviderConfig(req.Provider, req.ImageProvider, req.ProviderConfig); err != nil {
		h.Response.Error(c, err)
		return
	}

	h.log.Infof("🔄 提供商配置已更新: provider=%s image_provider=%s", req.Provider, req.ImageProvider)
	h.Response.Success(c, nil, "配置已更新")
}

// HealthCheck 返回服务健康状态
func (h *Handler) HealthCheck(c *gin.Context) {
	status := gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"providers": h.GenerationService.Status(),
		"websocket": h.WebSocketManager.Status(),
		"library":   gin.H{"count": len(h.LibraryService.List())},
	}
	c.JSON(http.StatusOK, status)
}

// PreviewWebSocket 升级为WebSocket连接，订阅预览事件
func (h *Handler) PreviewWebSocket(c *gin.Context) {
	if err := h.WebSocketManager.HandleConnection(c.Writer, c.Request); err != nil {
		h.log.Warnf("⚠️ WebSocket 升级失败: %v", err)
	}
}
