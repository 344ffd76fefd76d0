package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/catalog"
	"backend/internal/common"
	"backend/internal/logger"
	"backend/internal/metrics"
	"backend/internal/organization"
	"backend/internal/tenant"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	// ErrJobNotFound 任务不存在
	ErrJobNotFound = errors.New("generator: job not found")
	// ErrJobFinished 任务已处于终态，不允许重复处理
	ErrJobFinished = errors.New("generator: job already finished")
	// ErrAgentNotFound 智能体不存在
	ErrAgentNotFound = errors.New("generator: agent not found")
	// ErrValidation 请求参数不合法
	ErrValidation = errors.New("generator: validation failed")
)

// 进度常量：领取任务 10，前置检查完成 20，模板处理推进到 90，完成 100
const (
	progressClaimed  = 10
	progressPrepared = 20
	progressSpan     = 70
	progressDone     = 100
)

// Service 智能体生成服务
type Service struct {
	db        *gorm.DB
	templates catalog.Provider
	profiles  *organization.Service
	clients   *tenant.Service

	maxTemplates int
	jobTimeout   time.Duration
}

// NewService 创建生成服务
func NewService(db *gorm.DB, templates catalog.Provider, profiles *organization.Service, clients *tenant.Service) *Service {
	return &Service{
		db:           db,
		templates:    templates,
		profiles:     profiles,
		clients:      clients,
		maxTemplates: 50,
		jobTimeout:   10 * time.Minute,
	}
}

// WithLimits 覆盖单任务模板上限和处理超时
func (s *Service) WithLimits(maxTemplates int, jobTimeout time.Duration) *Service {
	if maxTemplates > 0 {
		s.maxTemplates = maxTemplates
	}
	if jobTimeout > 0 {
		s.jobTimeout = jobTimeout
	}
	return s
}

// CreateJobRequest 创建生成任务请求
type CreateJobRequest struct {
	ClientID    string   `json:"clientId" binding:"required,uuid"`
	TemplateIDs []string `json:"templateIds" binding:"required"`
}

// CreateJob 创建生成任务
// 所有校验在创建时同步完成：客户存在、画像归属、模板列表非空且无重复、
// 每个模板存在且处于启用状态。校验失败不会留下任务记录
func (s *Service) CreateJob(ctx context.Context, req *CreateJobRequest) (*AgentGenerationJob, error) {
	if err := s.clients.Exists(ctx, req.ClientID); err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetByClient(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	if len(req.TemplateIDs) == 0 {
		return nil, fmt.Errorf("%w: 模板列表不能为空", ErrValidation)
	}
	if len(req.TemplateIDs) > s.maxTemplates {
		return nil, fmt.Errorf("%w: 单个任务最多选择 %d 个模板", ErrValidation, s.maxTemplates)
	}

	seen := make(map[string]bool, len(req.TemplateIDs))
	for _, id := range req.TemplateIDs {
		if seen[id] {
			return nil, fmt.Errorf("%w: 模板重复选择 %s", ErrValidation, id)
		}
		seen[id] = true
	}

	for _, id := range req.TemplateIDs {
		tpl, err := s.templates.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if !tpl.IsActive {
			return nil, fmt.Errorf("%w: 模板已停用 %s", catalog.ErrTemplateNotFound, id)
		}
	}

	job := &AgentGenerationJob{
		ClientID:              req.ClientID,
		OrganizationProfileID: profile.ID,
		Status:                JobStatusPending,
		Progress:              0,
		SelectedTemplates:     req.TemplateIDs,
		GeneratedAgents:       []string{},
	}

	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, fmt.Errorf("创建生成任务失败: %w", err)
	}

	logger.Info("生成任务已创建",
		zap.String("job_id", job.ID),
		zap.String("client_id", job.ClientID),
		zap.Int("templates", len(job.SelectedTemplates)),
	)
	return job, nil
}

// GetJob 根据 ID 查询任务
func (s *Service) GetJob(ctx context.Context, id string) (*AgentGenerationJob, error) {
	var job AgentGenerationJob
	err := s.db.WithContext(ctx).First(&job, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("查询生成任务失败: %w", err)
	}
	return &job, nil
}

// ListJobs 分页查询客户的任务，最新的在前
func (s *Service) ListJobs(ctx context.Context, clientID string, page common.PaginationRequest) ([]AgentGenerationJob, error) {
	var jobs []AgentGenerationJob
	err := s.db.WithContext(ctx).
		Scopes(common.ByClient(clientID)).
		Order("created_at DESC").
		Offset(page.GetOffset()).
		Limit(page.GetPageSize()).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("查询任务列表失败: %w", err)
	}
	return jobs, nil
}

// ProcessJob 处理一个生成任务，驱动状态机走到终态
// 终态任务直接拒绝；运行期错误记录到任务本身（状态翻为 failed），
// 不会作为错误向上传播，调用方通过轮询任务获知结果
func (s *Service) ProcessJob(ctx context.Context, jobID string) error {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status.IsTerminal() {
		return fmt.Errorf("%w: %s 已是 %s", ErrJobFinished, job.ID, job.Status)
	}

	started := time.Now()

	// 领取任务
	job.Status = JobStatusInProgress
	job.Progress = progressClaimed
	if err := s.saveJob(ctx, job); err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(ctx, s.jobTimeout)
	defer cancel()

	if err := s.runJob(runCtx, job); err != nil {
		// 超时中断也要落到 failed，用未取消的上下文写失败状态
		s.failJob(ctx, job, err)
		metrics.JobsTotal.WithLabelValues(string(JobStatusFailed)).Inc()
		metrics.JobDuration.Observe(time.Since(started).Seconds())
		return nil
	}

	metrics.JobsTotal.WithLabelValues(string(JobStatusCompleted)).Inc()
	metrics.JobDuration.Observe(time.Since(started).Seconds())
	return nil
}

// runJob 执行任务主体
// 返回的错误都是任务级失败；单个模板的失败在循环内消化
func (s *Service) runJob(ctx context.Context, job *AgentGenerationJob) error {
	client, err := s.clients.Get(ctx, job.ClientID)
	if err != nil {
		return fmt.Errorf("加载客户失败: %w", err)
	}

	// 画像只在任务开始时读取一次，整个循环复用同一份快照
	profile, err := s.profiles.Get(ctx, job.OrganizationProfileID)
	if err != nil {
		return fmt.Errorf("加载组织画像失败: %w", err)
	}

	folder, err := s.ensureFolder(ctx, client)
	if err != nil {
		return fmt.Errorf("创建归档目录失败: %w", err)
	}

	job.Progress = progressPrepared
	if err := s.saveJob(ctx, job); err != nil {
		return err
	}

	total := len(job.SelectedTemplates)
	generated := make([]string, 0, total)

	for i, templateID := range job.SelectedTemplates {
		agentID, err := s.materializeTemplate(ctx, job.ClientID, folder.ID, templateID, profile)
		if err != nil {
			metrics.TemplatesSkipped.Inc()
			logger.Warn("模板实例化失败，跳过",
				zap.String("job_id", job.ID),
				zap.String("template_id", templateID),
				zap.Error(err),
			)
		} else {
			generated = append(generated, agentID)
			metrics.AgentsGenerated.Inc()
		}

		// 每处理完一个模板立即持久化进度，保证轮询方能看到推进
		job.Progress = progressPrepared + (i+1)*progressSpan/total
		job.GeneratedAgents = generated
		if err := s.saveJob(ctx, job); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	job.Status = JobStatusCompleted
	job.Progress = progressDone
	job.GeneratedAgents = generated
	job.CompletedAt = &now
	if err := s.saveJob(ctx, job); err != nil {
		return err
	}

	logger.Info("生成任务完成",
		zap.String("job_id", job.ID),
		zap.Int("selected", total),
		zap.Int("generated", len(generated)),
	)
	return nil
}

// materializeTemplate 实例化单个模板并落库
// 任何一步失败都只影响这个模板
func (s *Service) materializeTemplate(ctx context.Context, clientID, folderID, templateID string, profile *organization.OrganizationProfile) (string, error) {
	tpl, err := s.templates.Get(ctx, templateID)
	if err != nil {
		return "", err
	}
	if !tpl.IsActive {
		return "", fmt.Errorf("模板已停用: %s", templateID)
	}

	materialized, err := Materialize(tpl, profile)
	if err != nil {
		return "", err
	}

	agent := &Agent{
		ClientID:    clientID,
		FolderID:    &folderID,
		TemplateID:  tpl.ID,
		Name:        materialized.Name,
		AgentType:   materialized.AgentType,
		Role:        materialized.Role,
		Description: materialized.Description,
		IsActive:    true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(agent).Error; err != nil {
			return err
		}
		configuration := &AgentConfiguration{
			AgentID:       agent.ID,
			Version:       1,
			IsActive:      true,
			Configuration: datatypes.JSONMap(materialized.Configuration),
		}
		return tx.Create(configuration).Error
	})
	if err != nil {
		return "", fmt.Errorf("写入智能体记录失败: %w", err)
	}

	return agent.ID, nil
}

// ensureFolder 确保客户的自动生成目录存在
func (s *Service) ensureFolder(ctx context.Context, client *tenant.Client) (*AgentFolder, error) {
	folder := &AgentFolder{
		ClientID: client.ID,
		Name:     fmt.Sprintf("%s - Auto-generated Agents", client.Name),
	}
	err := s.db.WithContext(ctx).
		Where("client_id = ?", client.ID).
		FirstOrCreate(folder).Error
	if err != nil {
		return nil, err
	}
	return folder, nil
}

// failJob 把任务记为失败
// completed_at 保持为空，error_message 记录失败原因
func (s *Service) failJob(ctx context.Context, job *AgentGenerationJob, cause error) {
	job.Status = JobStatusFailed
	job.ErrorMessage = cause.Error()

	if err := s.saveJob(ctx, job); err != nil {
		logger.Error("写入任务失败状态出错",
			zap.String("job_id", job.ID),
			zap.Error(err),
		)
		return
	}

	logger.Warn("生成任务失败",
		zap.String("job_id", job.ID),
		zap.String("reason", cause.Error()),
	)
}

func (s *Service) saveJob(ctx context.Context, job *AgentGenerationJob) error {
	if err := s.db.WithContext(ctx).Save(job).Error; err != nil {
		return fmt.Errorf("保存任务状态失败: %w", err)
	}
	return nil
}
