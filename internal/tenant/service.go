package tenant

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrClientNotFound 客户不存在
var ErrClientNotFound = errors.New("tenant: client not found")

// Service 客户服务
type Service struct {
	db *gorm.DB
}

// NewService 创建客户服务
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateClientRequest 创建客户请求
type CreateClientRequest struct {
	Name   string `json:"name" binding:"required,max=255"`
	Domain string `json:"domain" binding:"required,max=255"`
}

// Create 创建客户
func (s *Service) Create(ctx context.Context, req *CreateClientRequest) (*Client, error) {
	client := &Client{
		Name:     req.Name,
		Domain:   req.Domain,
		IsActive: true,
	}

	if err := s.db.WithContext(ctx).Create(client).Error; err != nil {
		return nil, fmt.Errorf("创建客户失败: %w", err)
	}

	return client, nil
}

// Get 根据 ID 查询客户
func (s *Service) Get(ctx context.Context, id string) (*Client, error) {
	var client Client
	err := s.db.WithContext(ctx).First(&client, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("查询客户失败: %w", err)
	}
	return &client, nil
}

// Exists 校验客户是否存在且处于启用状态
func (s *Service) Exists(ctx context.Context, id string) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&Client{}).
		Where("id = ? AND is_active = ?", id, true).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("查询客户失败: %w", err)
	}
	if count == 0 {
		return ErrClientNotFound
	}
	return nil
}
