package organizations

import (
	"errors"

	"backend/internal/analyzer"
	"backend/internal/common"
	"backend/internal/infra/queue"
	"backend/internal/logger"
	"backend/internal/organization"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 组织画像接口
type Handler struct {
	profiles *organization.Service
	analyzer *analyzer.Service
	queue    queue.Client
}

// NewHandler 创建组织画像接口
func NewHandler(profiles *organization.Service, analyzerSvc *analyzer.Service, queueClient queue.Client) *Handler {
	return &Handler{profiles: profiles, analyzer: analyzerSvc, queue: queueClient}
}

// Create 创建组织画像
// POST /api/organizations
func (h *Handler) Create(c *gin.Context) {
	var req organization.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	profile, err := h.profiles.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, organization.ErrProfileExists) {
			common.ResponseError(c, common.CodeConflict, "该客户已有组织画像")
			return
		}
		common.ResponseBadRequest(c, err.Error())
		return
	}

	common.ResponseCreated(c, profile)
}

// Get 查询组织画像
// GET /api/organizations/:id
func (h *Handler) Get(c *gin.Context) {
	profile, err := h.profiles.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, organization.ErrProfileNotFound) {
			common.ResponseNotFound(c, "组织画像不存在")
			return
		}
		common.ResponseServerError(c, "")
		return
	}
	common.ResponseSuccess(c, profile)
}

// Update 更新组织画像（会重置分析结果）
// PUT /api/organizations/:id
func (h *Handler) Update(c *gin.Context) {
	var req organization.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	profile, err := h.profiles.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, organization.ErrProfileNotFound) {
			common.ResponseNotFound(c, "组织画像不存在")
			return
		}
		common.ResponseBadRequest(c, err.Error())
		return
	}

	common.ResponseSuccess(c, profile)
}

// Analyze 发起画像分析（异步）
// POST /api/organizations/:id/analyze
func (h *Handler) Analyze(c *gin.Context) {
	profileID := c.Param("id")

	// 画像不存在要同步报 404，不投递任务
	if _, err := h.profiles.Get(c.Request.Context(), profileID); err != nil {
		if errors.Is(err, organization.ErrProfileNotFound) {
			common.ResponseNotFound(c, "组织画像不存在")
			return
		}
		common.ResponseServerError(c, "")
		return
	}

	if err := h.queue.EnqueueAnalyzeProfile(c.Request.Context(), profileID); err != nil {
		logger.Error("投递画像分析任务失败", zap.String("profile_id", profileID), zap.Error(err))
		common.ResponseServerError(c, "分析任务投递失败")
		return
	}

	common.ResponseAccepted(c, gin.H{"profileId": profileID, "status": "queued"})
}

// GetAnalysis 查询分析结果
// GET /api/organizations/:id/analysis
func (h *Handler) GetAnalysis(c *gin.Context) {
	profile, err := h.profiles.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, organization.ErrProfileNotFound) {
			common.ResponseNotFound(c, "组织画像不存在")
			return
		}
		common.ResponseServerError(c, "")
		return
	}

	common.ResponseSuccess(c, gin.H{
		"profileId":         profile.ID,
		"analysisComplete":  profile.AnalysisComplete,
		"analyzedAt":        profile.AnalyzedAt,
		"recommendedAgents": profile.RecommendedAgents,
	})
}

// Score 对画像执行加权评分（同步）
// POST /api/organizations/:id/score
func (h *Handler) Score(c *gin.Context) {
	var req analyzer.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	result, err := h.analyzer.Score(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, organization.ErrProfileNotFound) {
			common.ResponseNotFound(c, "组织画像不存在")
			return
		}
		common.ResponseServerError(c, "")
		return
	}

	common.ResponseSuccess(c, result)
}
