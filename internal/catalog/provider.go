package catalog

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/common"

	"gorm.io/gorm"
)

// ErrTemplateNotFound 模板不存在
var ErrTemplateNotFound = errors.New("catalog: template not found")

// ListFilter 模板查询条件
type ListFilter struct {
	Industry   string // 为空则不过滤；匹配指定行业或全行业通用（industry IS NULL）
	Department string // 为空则不过滤
}

// Provider 模板目录的只读访问接口
// 评分器和生成器都通过该接口取模板，便于在测试中替换实现
type Provider interface {
	// ListActive 查询启用状态的模板
	ListActive(ctx context.Context, filter ListFilter) ([]AgentTemplate, error)
	// Get 根据 ID 查询模板（含停用的）
	Get(ctx context.Context, id string) (*AgentTemplate, error)
}

// DBProvider 数据库实现的模板目录
type DBProvider struct {
	db *gorm.DB
}

// NewDBProvider 创建数据库模板目录
func NewDBProvider(db *gorm.DB) *DBProvider {
	return &DBProvider{db: db}
}

// ListActive 查询启用状态的模板
func (p *DBProvider) ListActive(ctx context.Context, filter ListFilter) ([]AgentTemplate, error) {
	query := p.db.WithContext(ctx).Scopes(common.ActiveOnly())

	if filter.Industry != "" {
		// 行业为空的模板视为全行业通用
		query = query.Where("industry IS NULL OR industry = ?", filter.Industry)
	}
	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}

	var templates []AgentTemplate
	if err := query.Order("created_at ASC").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("查询模板列表失败: %w", err)
	}
	return templates, nil
}

// Get 根据 ID 查询模板
func (p *DBProvider) Get(ctx context.Context, id string) (*AgentTemplate, error) {
	var template AgentTemplate
	err := p.db.WithContext(ctx).First(&template, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("查询模板失败: %w", err)
	}
	return &template, nil
}
