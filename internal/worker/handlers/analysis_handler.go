package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"backend/internal/analyzer"
	"backend/internal/logger"
	"backend/internal/metrics"
	"backend/internal/organization"
	"backend/internal/worker/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ProfileAnalyzer 画像分析能力
type ProfileAnalyzer interface {
	Analyze(ctx context.Context, profileID string) (*analyzer.AnalyzeResult, error)
}

// AnalysisHandler 画像分析任务处理器
type AnalysisHandler struct {
	analyzer ProfileAnalyzer
}

// NewAnalysisHandler 创建画像分析任务处理器
func NewAnalysisHandler(profileAnalyzer ProfileAnalyzer) *AnalysisHandler {
	return &AnalysisHandler{analyzer: profileAnalyzer}
}

// HandleAnalyzeProfile 处理画像分析任务
func (h *AnalysisHandler) HandleAnalyzeProfile(ctx context.Context, task *asynq.Task) error {
	var payload tasks.AnalyzeProfilePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("解析任务载荷失败: %w", err)
	}

	result, err := h.analyzer.Analyze(ctx, payload.ProfileID)
	if err != nil {
		// 画像已不存在，重试没有意义
		if errors.Is(err, organization.ErrProfileNotFound) {
			logger.Warn("画像分析任务指向不存在的画像",
				zap.String("profile_id", payload.ProfileID),
			)
			return nil
		}
		return fmt.Errorf("画像分析失败: %w", err)
	}

	metrics.AnalysesTotal.Inc()
	logger.Info("画像分析任务完成",
		zap.String("profile_id", payload.ProfileID),
		zap.Int("recommended", len(result.RecommendedAgents)),
	)
	return nil
}
