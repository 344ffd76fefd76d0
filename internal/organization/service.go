package organization

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend/internal/logger"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrProfileNotFound 组织画像不存在
var ErrProfileNotFound = errors.New("organization: profile not found")

// ErrProfileExists 客户已有组织画像（每客户唯一）
var ErrProfileExists = errors.New("organization: profile already exists")

// Service 组织画像服务
type Service struct {
	db *gorm.DB
}

// NewService 创建组织画像服务
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateProfileRequest 创建组织画像请求
type CreateProfileRequest struct {
	ClientID    string       `json:"clientId" binding:"required,uuid"`
	Industry    IndustryType `json:"industry" binding:"required"`
	CompanySize CompanySize  `json:"companySize" binding:"required"`

	HasSalesTeam       bool `json:"hasSalesTeam"`
	HasCustomerService bool `json:"hasCustomerService"`
	HasMarketingTeam   bool `json:"hasMarketingTeam"`
	HasHRTeam          bool `json:"hasHrTeam"`
	HasFinanceTeam     bool `json:"hasFinanceTeam"`
	HasOperationsTeam  bool `json:"hasOperationsTeam"`

	UsesWhatsApp  bool `json:"usesWhatsapp"`
	UsesEmail     bool `json:"usesEmail"`
	UsesPhone     bool `json:"usesPhone"`
	UsesLinkedIn  bool `json:"usesLinkedin"`
	UsesInstagram bool `json:"usesInstagram"`
	UsesFacebook  bool `json:"usesFacebook"`
	UsesTwitter   bool `json:"usesTwitter"`
	UsesTelegram  bool `json:"usesTelegram"`

	PrimaryLanguage    string   `json:"primaryLanguage"`
	SecondaryLanguages []string `json:"secondaryLanguages"`

	CRMSystem      string `json:"crmSystem"`
	ERPSystem      string `json:"erpSystem"`
	HelpdeskSystem string `json:"helpdeskSystem"`

	CustomFields map[string]any `json:"customFields"`
}

// UpdateProfileRequest 更新组织画像请求
// 均为可选字段，nil 表示不修改；任何更新都会重置分析结果
type UpdateProfileRequest struct {
	Industry    *IndustryType `json:"industry"`
	CompanySize *CompanySize  `json:"companySize"`

	HasSalesTeam       *bool `json:"hasSalesTeam"`
	HasCustomerService *bool `json:"hasCustomerService"`
	HasMarketingTeam   *bool `json:"hasMarketingTeam"`
	HasHRTeam          *bool `json:"hasHrTeam"`
	HasFinanceTeam     *bool `json:"hasFinanceTeam"`
	HasOperationsTeam  *bool `json:"hasOperationsTeam"`

	UsesWhatsApp  *bool `json:"usesWhatsapp"`
	UsesEmail     *bool `json:"usesEmail"`
	UsesPhone     *bool `json:"usesPhone"`
	UsesLinkedIn  *bool `json:"usesLinkedin"`
	UsesInstagram *bool `json:"usesInstagram"`
	UsesFacebook  *bool `json:"usesFacebook"`
	UsesTwitter   *bool `json:"usesTwitter"`
	UsesTelegram  *bool `json:"usesTelegram"`

	PrimaryLanguage    *string   `json:"primaryLanguage"`
	SecondaryLanguages *[]string `json:"secondaryLanguages"`

	CRMSystem      *string `json:"crmSystem"`
	ERPSystem      *string `json:"erpSystem"`
	HelpdeskSystem *string `json:"helpdeskSystem"`

	CustomFields map[string]any `json:"customFields"`
}

// Create 创建组织画像（每个客户只能有一份）
func (s *Service) Create(ctx context.Context, req *CreateProfileRequest) (*OrganizationProfile, error) {
	if !req.Industry.IsValid() {
		return nil, fmt.Errorf("不支持的行业类型: %s", req.Industry)
	}
	if !req.CompanySize.IsValid() {
		return nil, fmt.Errorf("不支持的公司规模: %s", req.CompanySize)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&OrganizationProfile{}).
		Where("client_id = ?", req.ClientID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("查询组织画像失败: %w", err)
	}
	if count > 0 {
		return nil, ErrProfileExists
	}

	profile := &OrganizationProfile{
		ClientID:           req.ClientID,
		Industry:           req.Industry,
		CompanySize:        req.CompanySize,
		HasSalesTeam:       req.HasSalesTeam,
		HasCustomerService: req.HasCustomerService,
		HasMarketingTeam:   req.HasMarketingTeam,
		HasHRTeam:          req.HasHRTeam,
		HasFinanceTeam:     req.HasFinanceTeam,
		HasOperationsTeam:  req.HasOperationsTeam,
		UsesWhatsApp:       req.UsesWhatsApp,
		UsesEmail:          req.UsesEmail,
		UsesPhone:          req.UsesPhone,
		UsesLinkedIn:       req.UsesLinkedIn,
		UsesInstagram:      req.UsesInstagram,
		UsesFacebook:       req.UsesFacebook,
		UsesTwitter:        req.UsesTwitter,
		UsesTelegram:       req.UsesTelegram,
		PrimaryLanguage:    req.PrimaryLanguage,
		SecondaryLanguages: req.SecondaryLanguages,
		CRMSystem:          req.CRMSystem,
		ERPSystem:          req.ERPSystem,
		HelpdeskSystem:     req.HelpdeskSystem,
		CustomFields:       datatypes.JSONMap(req.CustomFields),
		RecommendedAgents:  []RecommendedAgent{},
	}

	if err := s.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, fmt.Errorf("创建组织画像失败: %w", err)
	}

	logger.Info("组织画像已创建",
		zap.String("profile_id", profile.ID),
		zap.String("client_id", profile.ClientID),
		zap.String("industry", string(profile.Industry)),
	)
	return profile, nil
}

// Get 根据 ID 查询组织画像
func (s *Service) Get(ctx context.Context, id string) (*OrganizationProfile, error) {
	var profile OrganizationProfile
	err := s.db.WithContext(ctx).First(&profile, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("查询组织画像失败: %w", err)
	}
	return &profile, nil
}

// GetByClient 根据客户 ID 查询组织画像
func (s *Service) GetByClient(ctx context.Context, clientID string) (*OrganizationProfile, error) {
	var profile OrganizationProfile
	err := s.db.WithContext(ctx).First(&profile, "client_id = ?", clientID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("查询组织画像失败: %w", err)
	}
	return &profile, nil
}

// Update 更新组织画像
// 任何字段变更都会将 analysis_complete 重置为 false 并清空推荐结果，分析需要重跑
func (s *Service) Update(ctx context.Context, id string, req *UpdateProfileRequest) (*OrganizationProfile, error) {
	profile, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}

	if req.Industry != nil {
		if !req.Industry.IsValid() {
			return nil, fmt.Errorf("不支持的行业类型: %s", *req.Industry)
		}
		updates["industry"] = *req.Industry
	}
	if req.CompanySize != nil {
		if !req.CompanySize.IsValid() {
			return nil, fmt.Errorf("不支持的公司规模: %s", *req.CompanySize)
		}
		updates["company_size"] = *req.CompanySize
	}

	if req.HasSalesTeam != nil {
		updates["has_sales_team"] = *req.HasSalesTeam
	}
	if req.HasCustomerService != nil {
		updates["has_customer_service"] = *req.HasCustomerService
	}
	if req.HasMarketingTeam != nil {
		updates["has_marketing_team"] = *req.HasMarketingTeam
	}
	if req.HasHRTeam != nil {
		updates["has_hr_team"] = *req.HasHRTeam
	}
	if req.HasFinanceTeam != nil {
		updates["has_finance_team"] = *req.HasFinanceTeam
	}
	if req.HasOperationsTeam != nil {
		updates["has_operations_team"] = *req.HasOperationsTeam
	}

	if req.UsesWhatsApp != nil {
		updates["uses_whatsapp"] = *req.UsesWhatsApp
	}
	if req.UsesEmail != nil {
		updates["uses_email"] = *req.UsesEmail
	}
	if req.UsesPhone != nil {
		updates["uses_phone"] = *req.UsesPhone
	}
	if req.UsesLinkedIn != nil {
		updates["uses_linkedin"] = *req.UsesLinkedIn
	}
	if req.UsesInstagram != nil {
		updates["uses_instagram"] = *req.UsesInstagram
	}
	if req.UsesFacebook != nil {
		updates["uses_facebook"] = *req.UsesFacebook
	}
	if req.UsesTwitter != nil {
		updates["uses_twitter"] = *req.UsesTwitter
	}
	if req.UsesTelegram != nil {
		updates["uses_telegram"] = *req.UsesTelegram
	}

	if req.PrimaryLanguage != nil {
		updates["primary_language"] = *req.PrimaryLanguage
	}
	if req.SecondaryLanguages != nil {
		languages, err := json.Marshal(*req.SecondaryLanguages)
		if err != nil {
			return nil, fmt.Errorf("序列化语言列表失败: %w", err)
		}
		updates["secondary_languages"] = datatypes.JSON(languages)
	}
	if req.CRMSystem != nil {
		updates["crm_system"] = *req.CRMSystem
	}
	if req.ERPSystem != nil {
		updates["erp_system"] = *req.ERPSystem
	}
	if req.HelpdeskSystem != nil {
		updates["helpdesk_system"] = *req.HelpdeskSystem
	}
	if req.CustomFields != nil {
		updates["custom_fields"] = datatypes.JSONMap(req.CustomFields)
	}

	// 画像变更后旧的分析结果不再可信，统一重置
	updates["analysis_complete"] = false
	updates["recommended_agents"] = datatypes.JSON("[]")
	updates["analyzed_at"] = nil

	if err := s.db.WithContext(ctx).Model(profile).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("更新组织画像失败: %w", err)
	}

	return s.Get(ctx, id)
}

// SaveAnalysis 保存分析结果到画像
func (s *Service) SaveAnalysis(ctx context.Context, id string, recommended []RecommendedAgent) error {
	if recommended == nil {
		recommended = []RecommendedAgent{}
	}
	snapshot, err := json.Marshal(recommended)
	if err != nil {
		return fmt.Errorf("序列化推荐结果失败: %w", err)
	}

	now := time.Now().UTC()
	result := s.db.WithContext(ctx).Model(&OrganizationProfile{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"recommended_agents": datatypes.JSON(snapshot),
			"analysis_complete":  true,
			"analyzed_at":        &now,
		})
	if result.Error != nil {
		return fmt.Errorf("保存分析结果失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}
