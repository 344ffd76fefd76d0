package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"backend/internal/worker/tasks"

	"github.com/hibiken/asynq"
)

// Client 任务队列客户端
// 业务服务只依赖该接口，测试里用假实现替换
type Client interface {
	// EnqueueAnalyzeProfile 投递画像分析任务
	EnqueueAnalyzeProfile(ctx context.Context, profileID string) error
	// EnqueueGenerateAgents 投递智能体生成任务
	EnqueueGenerateAgents(ctx context.Context, jobID string) error
	// Close 关闭底层连接
	Close() error
}

// AsynqClient 基于 asynq 的队列客户端
type AsynqClient struct {
	client *asynq.Client
}

// NewAsynqClient 创建队列客户端
func NewAsynqClient(redisAddr, password string, db int) *AsynqClient {
	return &AsynqClient{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: password,
			DB:       db,
		}),
	}
}

// EnqueueAnalyzeProfile 投递画像分析任务
func (c *AsynqClient) EnqueueAnalyzeProfile(ctx context.Context, profileID string) error {
	payload, err := json.Marshal(tasks.AnalyzeProfilePayload{ProfileID: profileID})
	if err != nil {
		return fmt.Errorf("序列化任务载荷失败: %w", err)
	}

	task := asynq.NewTask(tasks.TypeAnalyzeProfile, payload)
	if _, err := c.client.EnqueueContext(ctx, task, asynq.MaxRetry(3)); err != nil {
		return fmt.Errorf("投递画像分析任务失败: %w", err)
	}
	return nil
}

// EnqueueGenerateAgents 投递智能体生成任务
func (c *AsynqClient) EnqueueGenerateAgents(ctx context.Context, jobID string) error {
	payload, err := json.Marshal(tasks.GenerateAgentsPayload{JobID: jobID})
	if err != nil {
		return fmt.Errorf("序列化任务载荷失败: %w", err)
	}

	task := asynq.NewTask(tasks.TypeGenerateAgents, payload)
	if _, err := c.client.EnqueueContext(ctx, task, asynq.MaxRetry(3)); err != nil {
		return fmt.Errorf("投递生成任务失败: %w", err)
	}
	return nil
}

// Close 关闭底层连接
func (c *AsynqClient) Close() error {
	return c.client.Close()
}
