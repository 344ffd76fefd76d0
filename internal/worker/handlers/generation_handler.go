package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"backend/internal/generator"
	"backend/internal/logger"
	"backend/internal/worker/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// JobRunner 生成任务处理能力
type JobRunner interface {
	ProcessJob(ctx context.Context, jobID string) error
}

// GenerationHandler 智能体生成任务处理器
type GenerationHandler struct {
	runner JobRunner
}

// NewGenerationHandler 创建生成任务处理器
func NewGenerationHandler(runner JobRunner) *GenerationHandler {
	return &GenerationHandler{runner: runner}
}

// HandleGenerateAgents 处理智能体生成任务
func (h *GenerationHandler) HandleGenerateAgents(ctx context.Context, task *asynq.Task) error {
	var payload tasks.GenerateAgentsPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("解析任务载荷失败: %w", err)
	}

	err := h.runner.ProcessJob(ctx, payload.JobID)
	if err != nil {
		// 任务不存在或已到终态，重试只会重复报错
		if errors.Is(err, generator.ErrJobNotFound) || errors.Is(err, generator.ErrJobFinished) {
			logger.Warn("生成任务不可处理，丢弃",
				zap.String("job_id", payload.JobID),
				zap.Error(err),
			)
			return nil
		}
		return fmt.Errorf("处理生成任务失败: %w", err)
	}

	return nil
}
