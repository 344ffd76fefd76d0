package generator

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// JobStatus 生成任务状态
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"     // 已创建，等待处理
	JobStatusInProgress JobStatus = "in_progress" // 处理中
	JobStatusCompleted  JobStatus = "completed"   // 完成（终态）
	JobStatusFailed     JobStatus = "failed"      // 失败（终态）
)

// IsTerminal 是否处于终态
// 终态任务不允许再次处理，纠正失败任务只能新建任务
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// AgentGenerationJob 智能体生成任务
// 一次任务按固定顺序实例化若干模板；单个模板失败只跳过不终止任务
type AgentGenerationJob struct {
	ID                    string `gorm:"primaryKey;type:uuid" json:"id"`
	ClientID              string `gorm:"type:uuid;not null;index" json:"clientId"`
	OrganizationProfileID string `gorm:"type:uuid;not null" json:"organizationProfileId"`

	Status       JobStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	Progress     int       `gorm:"default:0" json:"progress"`      // 0-100，单调不减
	ErrorMessage string    `gorm:"type:text" json:"errorMessage"` // 仅失败时写入

	SelectedTemplates []string `gorm:"serializer:json" json:"selectedTemplates"` // 创建时固定，顺序即处理顺序
	GeneratedAgents   []string `gorm:"serializer:json" json:"generatedAgents"`   // 成功产出的智能体 ID

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt"` // 仅 completed 时写入
}

// TableName 指定表名
func (AgentGenerationJob) TableName() string {
	return "agent_generation_jobs"
}

// BeforeCreate 创建前生成 UUID
func (j *AgentGenerationJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	return nil
}

// AgentFolder 智能体归档目录
// 每个客户一个自动生成目录，任务开始时确保存在；创建失败对任务是致命的
type AgentFolder struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	ClientID  string    `gorm:"type:uuid;uniqueIndex;not null" json:"clientId"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (AgentFolder) TableName() string {
	return "agent_folders"
}

// BeforeCreate 创建前生成 UUID
func (f *AgentFolder) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

// Agent 生成的智能体
type Agent struct {
	ID         string  `gorm:"primaryKey;type:uuid" json:"id"`
	ClientID   string  `gorm:"type:uuid;not null;index" json:"clientId"`
	FolderID   *string `gorm:"type:uuid" json:"folderId"`
	TemplateID string  `gorm:"type:uuid" json:"templateId"` // 来源模板

	Name        string `gorm:"size:255;not null" json:"name"`
	AgentType   string `gorm:"size:50;not null" json:"agentType"`
	Role        string `gorm:"size:100" json:"role"`
	Description string `gorm:"type:text" json:"description"`
	IsActive    bool   `gorm:"default:true;index" json:"isActive"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Agent) TableName() string {
	return "agents"
}

// BeforeCreate 创建前生成 UUID
func (a *Agent) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// AgentConfiguration 智能体配置（带版本）
// 只追加不修改：审批通过的变更会停用旧版本并插入 version+1，
// 任意时刻每个智能体最多只有一个激活版本
type AgentConfiguration struct {
	ID            string            `gorm:"primaryKey;type:uuid" json:"id"`
	AgentID       string            `gorm:"type:uuid;not null;index" json:"agentId"`
	Version       int               `gorm:"not null;default:1" json:"version"`
	IsActive      bool              `gorm:"default:true;index" json:"isActive"`
	Configuration datatypes.JSONMap `gorm:"type:json" json:"configuration"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// TableName 指定表名
func (AgentConfiguration) TableName() string {
	return "agent_configurations"
}

// BeforeCreate 创建前生成 UUID
func (c *AgentConfiguration) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
