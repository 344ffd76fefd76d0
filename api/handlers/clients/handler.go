package clients

import (
	"errors"

	"backend/internal/common"
	"backend/internal/tenant"

	"github.com/gin-gonic/gin"
)

// Handler 客户接口
type Handler struct {
	clients *tenant.Service
}

// NewHandler 创建客户接口
func NewHandler(clients *tenant.Service) *Handler {
	return &Handler{clients: clients}
}

// Create 创建客户
// POST /api/clients
func (h *Handler) Create(c *gin.Context) {
	var req tenant.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	client, err := h.clients.Create(c.Request.Context(), &req)
	if err != nil {
		common.ResponseServerError(c, err.Error())
		return
	}
	common.ResponseCreated(c, client)
}

// Get 查询客户
// GET /api/clients/:id
func (h *Handler) Get(c *gin.Context) {
	client, err := h.clients.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, tenant.ErrClientNotFound) {
			common.ResponseNotFound(c, "客户不存在")
			return
		}
		common.ResponseServerError(c, "")
		return
	}
	common.ResponseSuccess(c, client)
}
