package templates

import (
	"backend/internal/catalog"
	"backend/internal/common"

	"github.com/gin-gonic/gin"
)

// Handler 模板目录接口
type Handler struct {
	templates catalog.Provider
}

// NewHandler 创建模板目录接口
func NewHandler(templates catalog.Provider) *Handler {
	return &Handler{templates: templates}
}

// List 查询启用状态的模板，支持行业/部门过滤
// GET /api/templates?industry=...&department=...
func (h *Handler) List(c *gin.Context) {
	result, err := h.templates.ListActive(c.Request.Context(), catalog.ListFilter{
		Industry:   c.Query("industry"),
		Department: c.Query("department"),
	})
	if err != nil {
		common.ResponseServerError(c, "")
		return
	}
	common.ResponseSuccess(c, result)
}
