package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AgentTemplate 智能体模板（目录条目）
// 只读参考数据：行业/部门决定匹配范围，base_instruction 携带占位符，
// config_template 是实例化时的配置骨架
type AgentTemplate struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string `gorm:"size:255;not null" json:"name"`        // 模板名称
	Description string `gorm:"type:text" json:"description"`         // 模板说明
	AgentType   string `gorm:"size:50;not null;index" json:"agentType"` // 智能体类型

	Industry   *string `gorm:"size:50;index" json:"industry"`   // 适用行业，null 表示全行业通用
	Department *string `gorm:"size:50;index" json:"department"` // 对应部门，与画像部门开关匹配

	BaseInstruction     string            `gorm:"type:text" json:"baseInstruction"`              // 指令文本，含 {INDUSTRY} 等占位符
	ConfigTemplate      datatypes.JSONMap `gorm:"type:json" json:"configTemplate"`               // 配置骨架
	RequiredTools       []string          `gorm:"serializer:json" json:"requiredTools"`          // 依赖的工具
	CustomizationFields []string          `gorm:"serializer:json" json:"customizationFields"`    // 允许调用方覆盖的字段

	IsActive bool `gorm:"default:true;index" json:"isActive"` // 停用的模板不参与任何匹配

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (AgentTemplate) TableName() string {
	return "agent_templates"
}

// BeforeCreate 创建前生成 UUID
func (t *AgentTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}
