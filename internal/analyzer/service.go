package analyzer

import (
	"context"
	"fmt"

	"backend/internal/catalog"
	"backend/internal/logger"
	"backend/internal/organization"

	"go.uber.org/zap"
)

// Service 组织画像分析服务
type Service struct {
	profiles  *organization.Service
	templates catalog.Provider
}

// NewService 创建分析服务
func NewService(profiles *organization.Service, templates catalog.Provider) *Service {
	return &Service{profiles: profiles, templates: templates}
}

// AnalyzeResult 分析结果
type AnalyzeResult struct {
	ProfileID         string                          `json:"profileId"`
	RecommendedAgents []organization.RecommendedAgent `json:"recommendedAgents"`
}

// Analyze 执行画像分析
// 按过滤策略选出匹配模板，快照写回画像并标记 analysis_complete
func (s *Service) Analyze(ctx context.Context, profileID string) (*AnalyzeResult, error) {
	profile, err := s.profiles.Get(ctx, profileID)
	if err != nil {
		return nil, err
	}

	templates, err := s.templates.ListActive(ctx, catalog.ListFilter{
		Industry: string(profile.Industry),
	})
	if err != nil {
		return nil, fmt.Errorf("加载模板目录失败: %w", err)
	}

	matched := FilterTemplates(profile, templates)

	recommended := make([]organization.RecommendedAgent, 0, len(matched))
	for _, tpl := range matched {
		snapshot := organization.RecommendedAgent{
			TemplateID:  tpl.ID,
			Name:        tpl.Name,
			Description: tpl.Description,
			AgentType:   tpl.AgentType,
		}
		if tpl.Department != nil {
			snapshot.Department = *tpl.Department
		}
		recommended = append(recommended, snapshot)
	}

	if err := s.profiles.SaveAnalysis(ctx, profileID, recommended); err != nil {
		return nil, err
	}

	logger.Info("画像分析完成",
		zap.String("profile_id", profileID),
		zap.Int("recommended", len(recommended)),
	)

	return &AnalyzeResult{ProfileID: profileID, RecommendedAgents: recommended}, nil
}

// ScoreRequest 加权评分请求
type ScoreRequest struct {
	Objectives map[string]bool `json:"objectives"` // 业务目标开关，如 customer_support/sales/marketing
}

// ScoreResult 加权评分结果
type ScoreResult struct {
	ProfileID   string           `json:"profileId"`
	Scores      []ArchetypeScore `json:"scores"`      // 全部原型，按得分降序
	Recommended []ArchetypeScore `json:"recommended"` // 得分大于 70 的原型
}

// Score 对画像执行加权评分（同步）
func (s *Service) Score(ctx context.Context, profileID string, req *ScoreRequest) (*ScoreResult, error) {
	profile, err := s.profiles.Get(ctx, profileID)
	if err != nil {
		return nil, err
	}

	objectives := map[string]bool{}
	if req != nil && req.Objectives != nil {
		objectives = req.Objectives
	}

	scores := ScoreArchetypes(profile, objectives)
	return &ScoreResult{
		ProfileID:   profileID,
		Scores:      scores,
		Recommended: Recommended(scores),
	}, nil
}
