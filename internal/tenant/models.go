package tenant

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client 客户（租户）
// 平台的顶级隔离单位，所有画像、智能体、任务都挂在某个客户之下
type Client struct {
	ID        string         `gorm:"primaryKey;type:uuid" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`              // 客户名称
	Domain    string         `gorm:"size:255;uniqueIndex" json:"domain"`         // 客户域名（唯一）
	IsActive  bool           `gorm:"default:true;index" json:"isActive"`         // 是否启用
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Client) TableName() string {
	return "clients"
}

// BeforeCreate 创建前生成 UUID
func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
