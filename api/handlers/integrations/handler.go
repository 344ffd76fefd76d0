package integrations

import (
	"errors"

	"backend/internal/channel"
	"backend/internal/common"

	"github.com/gin-gonic/gin"
)

// Handler 渠道集成接口
type Handler struct {
	dispatcher *channel.Dispatcher
}

// NewHandler 创建渠道集成接口
func NewHandler(dispatcher *channel.Dispatcher) *Handler {
	return &Handler{dispatcher: dispatcher}
}

// Test 在指定渠道发送一条测试消息（模拟投递）
// POST /api/integrations/:channel/test
func (h *Handler) Test(c *gin.Context) {
	var msg channel.Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		common.ResponseBadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	result, err := h.dispatcher.Send(c.Request.Context(), c.Param("channel"), &msg)
	if err != nil {
		if errors.Is(err, channel.ErrUnknownChannel) {
			common.ResponseNotFound(c, "不支持的渠道")
			return
		}
		common.ResponseBadRequest(c, err.Error())
		return
	}
	common.ResponseSuccess(c, result)
}
