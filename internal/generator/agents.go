package generator

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/common"
	"backend/internal/logger"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AgentWithConfig 智能体及其当前激活配置
type AgentWithConfig struct {
	Agent
	ActiveConfiguration *AgentConfiguration `json:"activeConfiguration"`
}

// GetAgent 查询智能体及其激活配置
func (s *Service) GetAgent(ctx context.Context, id string) (*AgentWithConfig, error) {
	var agent Agent
	err := s.db.WithContext(ctx).First(&agent, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgentNotFound
		}
		return nil, fmt.Errorf("查询智能体失败: %w", err)
	}

	result := &AgentWithConfig{Agent: agent}

	var configuration AgentConfiguration
	err = s.db.WithContext(ctx).
		Where("agent_id = ? AND is_active = ?", agent.ID, true).
		First(&configuration).Error
	if err == nil {
		result.ActiveConfiguration = &configuration
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("查询智能体配置失败: %w", err)
	}

	return result, nil
}

// ListAgents 分页查询客户的智能体
func (s *Service) ListAgents(ctx context.Context, clientID string, page common.PaginationRequest) ([]Agent, error) {
	var agents []Agent
	err := s.db.WithContext(ctx).
		Scopes(common.ByClient(clientID)).
		Order("created_at DESC").
		Offset(page.GetOffset()).
		Limit(page.GetPageSize()).
		Find(&agents).Error
	if err != nil {
		return nil, fmt.Errorf("查询智能体列表失败: %w", err)
	}
	return agents, nil
}

// ValidateAgentRequest 智能体审批请求
type ValidateAgentRequest struct {
	Approved      bool           `json:"approved"`
	Name          *string        `json:"name"`
	Description   *string        `json:"description"`
	ConfigChanges map[string]any `json:"configChanges"` // 顶层字段覆盖
}

// ValidateAgent 审批一个生成的智能体
// 驳回：停用智能体。
// 通过且带修改：在当前激活配置的副本上套用修改，插入 version+1 的新版本，
// 停用旧版本（只追加，不原地改写），并同步更新智能体的名称/描述镜像
func (s *Service) ValidateAgent(ctx context.Context, agentID string, req *ValidateAgentRequest) (*AgentWithConfig, error) {
	current, err := s.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}

	if !req.Approved {
		err := s.db.WithContext(ctx).Model(&Agent{}).
			Where("id = ?", agentID).
			Update("is_active", false).Error
		if err != nil {
			return nil, fmt.Errorf("停用智能体失败: %w", err)
		}
		logger.Info("智能体已驳回", zap.String("agent_id", agentID))
		return s.GetAgent(ctx, agentID)
	}

	hasChanges := len(req.ConfigChanges) > 0 || req.Name != nil || req.Description != nil
	if !hasChanges {
		return current, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		nextVersion := 1
		base := map[string]any{}

		if current.ActiveConfiguration != nil {
			nextVersion = current.ActiveConfiguration.Version + 1
			copied, err := deepCopyConfig(current.ActiveConfiguration.Configuration)
			if err != nil {
				return fmt.Errorf("复制当前配置失败: %w", err)
			}
			base = copied

			err = tx.Model(&AgentConfiguration{}).
				Where("id = ?", current.ActiveConfiguration.ID).
				Update("is_active", false).Error
			if err != nil {
				return fmt.Errorf("停用旧配置版本失败: %w", err)
			}
		}

		for key, value := range req.ConfigChanges {
			base[key] = value
		}

		next := &AgentConfiguration{
			AgentID:       agentID,
			Version:       nextVersion,
			IsActive:      true,
			Configuration: datatypes.JSONMap(base),
		}
		if err := tx.Create(next).Error; err != nil {
			return fmt.Errorf("写入新配置版本失败: %w", err)
		}

		updates := map[string]any{}
		if req.Name != nil {
			updates["name"] = *req.Name
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if len(updates) > 0 {
			if err := tx.Model(&Agent{}).Where("id = ?", agentID).Updates(updates).Error; err != nil {
				return fmt.Errorf("更新智能体信息失败: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("智能体审批通过", zap.String("agent_id", agentID))
	return s.GetAgent(ctx, agentID)
}
