package agents

import (
	"errors"

	"backend/internal/agent/runtime"
	"backend/internal/catalog"
	"backend/internal/common"
	"backend/internal/generator"
	"backend/internal/infra/queue"
	"backend/internal/logger"
	"backend/internal/organization"
	"backend/internal/tenant"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 智能体生成与管理接口
type Handler struct {
	generator *generator.Service
	queue     queue.Client
	registry  *runtime.Registry
}

// NewHandler 创建智能体接口
func NewHandler(generatorSvc *generator.Service, queueClient queue.Client, registry *runtime.Registry) *Handler {
	return &Handler{generator: generatorSvc, queue: queueClient, registry: registry}
}

// Generate 创建生成任务并投递异步处理
// POST /api/agents/generate
func (h *Handler) Generate(c *gin.Context) {
	var req generator.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	job, err := h.generator.CreateJob(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, tenant.ErrClientNotFound):
			common.ResponseNotFound(c, "客户不存在")
		case errors.Is(err, organization.ErrProfileNotFound):
			common.ResponseNotFound(c, "客户还没有组织画像")
		case errors.Is(err, catalog.ErrTemplateNotFound):
			common.ResponseNotFound(c, err.Error())
		case errors.Is(err, generator.ErrValidation):
			common.ResponseBadRequest(c, err.Error())
		default:
			common.ResponseServerError(c, "")
		}
		return
	}

	if err := h.queue.EnqueueGenerateAgents(c.Request.Context(), job.ID); err != nil {
		logger.Error("投递生成任务失败", zap.String("job_id", job.ID), zap.Error(err))
		common.ResponseServerError(c, "生成任务投递失败")
		return
	}

	// 立即返回任务 ID，调用方轮询任务获知结果
	common.ResponseAccepted(c, job)
}

// GetJob 查询生成任务
// GET /api/agents/jobs/:id
func (h *Handler) GetJob(c *gin.Context) {
	job, err := h.generator.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, generator.ErrJobNotFound) {
			common.ResponseNotFound(c, "生成任务不存在")
			return
		}
		common.ResponseServerError(c, "")
		return
	}
	common.ResponseSuccess(c, job)
}

// ListJobs 分页查询客户的生成任务列表
// GET /api/agents/jobs?client_id=...&page=1&page_size=20
func (h *Handler) ListJobs(c *gin.Context) {
	clientID := c.Query("client_id")
	if clientID == "" {
		common.ResponseBadRequest(c, "client_id 不能为空")
		return
	}

	var page common.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		common.ResponseBadRequest(c, "分页参数错误: "+err.Error())
		return
	}

	jobs, err := h.generator.ListJobs(c.Request.Context(), clientID, page)
	if err != nil {
		common.ResponseServerError(c, "")
		return
	}
	common.ResponseSuccess(c, jobs)
}

// List 分页查询客户的智能体列表
// GET /api/agents?client_id=...&page=1&page_size=20
func (h *Handler) List(c *gin.Context) {
	clientID := c.Query("client_id")
	if clientID == "" {
		common.ResponseBadRequest(c, "client_id 不能为空")
		return
	}

	var page common.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		common.ResponseBadRequest(c, "分页参数错误: "+err.Error())
		return
	}

	agents, err := h.generator.ListAgents(c.Request.Context(), clientID, page)
	if err != nil {
		common.ResponseServerError(c, "")
		return
	}
	common.ResponseSuccess(c, agents)
}

// Get 查询智能体及激活配置
// GET /api/agents/:id
func (h *Handler) Get(c *gin.Context) {
	agent, err := h.generator.GetAgent(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, generator.ErrAgentNotFound) {
			common.ResponseNotFound(c, "智能体不存在")
			return
		}
		common.ResponseServerError(c, "")
		return
	}
	common.ResponseSuccess(c, agent)
}

// Validate 审批智能体（通过/驳回，配置变更产生新版本）
// POST /api/agents/:id/validate
func (h *Handler) Validate(c *gin.Context) {
	var req generator.ValidateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	agent, err := h.generator.ValidateAgent(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, generator.ErrAgentNotFound) {
			common.ResponseNotFound(c, "智能体不存在")
			return
		}
		common.ResponseServerError(c, "")
		return
	}
	common.ResponseSuccess(c, agent)
}

// SendMessageRequest 向智能体发消息的请求
type SendMessageRequest struct {
	UserID  string `json:"userId" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// SendMessage 向智能体发送一条消息并获取模拟回复
// POST /api/agents/:id/messages
func (h *Handler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	agent, err := h.generator.GetAgent(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, generator.ErrAgentNotFound) {
			common.ResponseNotFound(c, "智能体不存在")
			return
		}
		common.ResponseServerError(c, "")
		return
	}
	if !agent.IsActive {
		common.ResponseError(c, common.CodeForbidden, "智能体已停用")
		return
	}

	rt, err := h.registry.Get(agent.AgentType)
	if err != nil {
		common.ResponseBadRequest(c, "该类型的智能体暂不支持对话: "+agent.AgentType)
		return
	}

	reply, err := rt.ProcessMessage(c.Request.Context(), req.UserID, req.Content)
	if err != nil {
		common.ResponseBadRequest(c, err.Error())
		return
	}

	common.ResponseSuccess(c, gin.H{
		"agentId": agent.ID,
		"reply":   reply,
	})
}
