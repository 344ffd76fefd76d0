package common

// 业务状态码
const (
	CodeSuccess        = 0
	CodeInvalidRequest = 40000
	CodeUnauthorized   = 40100
	CodeForbidden      = 40300
	CodeNotFound       = 40400
	CodeConflict       = 40900
	CodeInternalError  = 50000
)

// APIResponse 统一 API 响应格式
type APIResponse struct {
	Success bool   `json:"success"`           // 是否成功
	Code    int    `json:"code"`              // 业务状态码
	Message string `json:"message,omitempty"` // 提示信息
	Data    any    `json:"data,omitempty"`    // 响应数据
}

// SuccessResponse 构造成功响应
func SuccessResponse(data any) APIResponse {
	return APIResponse{
		Success: true,
		Code:    CodeSuccess,
		Data:    data,
	}
}

// ErrorResponse 构造错误响应
func ErrorResponse(code int, message string) APIResponse {
	return APIResponse{
		Success: false,
		Code:    code,
		Message: message,
	}
}

// PaginationRequest 分页请求参数
type PaginationRequest struct {
	Page     int `json:"page" form:"page" binding:"omitempty,min=1"`           // 页码，从1开始
	PageSize int `json:"page_size" form:"page_size" binding:"omitempty,min=1"` // 每页数量
}

// GetOffset 计算数据库查询的偏移量
func (p PaginationRequest) GetOffset() int {
	if p.Page < 1 {
		p.Page = 1
	}
	return (p.Page - 1) * p.GetPageSize()
}

// GetPageSize 获取每页数量，提供默认值
func (p PaginationRequest) GetPageSize() int {
	if p.PageSize < 1 {
		return 20
	}
	if p.PageSize > 100 {
		return 100
	}
	return p.PageSize
}
