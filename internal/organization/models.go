package organization

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// IndustryType 行业类型
type IndustryType string

const (
	IndustryTechnology     IndustryType = "technology"     // 科技
	IndustryFinance        IndustryType = "finance"        // 金融
	IndustryHealthcare     IndustryType = "healthcare"     // 医疗健康
	IndustryRetail         IndustryType = "retail"         // 零售
	IndustryManufacturing  IndustryType = "manufacturing"  // 制造业
	IndustryEducation      IndustryType = "education"      // 教育
	IndustryRealEstate     IndustryType = "real_estate"    // 房地产
	IndustryHospitality    IndustryType = "hospitality"    // 酒店餐饮
	IndustryTransportation IndustryType = "transportation" // 交通运输
	IndustryEnergy         IndustryType = "energy"         // 能源
	IndustryAgriculture    IndustryType = "agriculture"    // 农业
	IndustryEntertainment  IndustryType = "entertainment"  // 娱乐
	IndustryLegal          IndustryType = "legal"          // 法律
	IndustryConsulting     IndustryType = "consulting"     // 咨询
	IndustryOther          IndustryType = "other"          // 其他
)

// ValidIndustries 所有合法的行业取值
var ValidIndustries = []IndustryType{
	IndustryTechnology, IndustryFinance, IndustryHealthcare, IndustryRetail,
	IndustryManufacturing, IndustryEducation, IndustryRealEstate,
	IndustryHospitality, IndustryTransportation, IndustryEnergy,
	IndustryAgriculture, IndustryEntertainment, IndustryLegal,
	IndustryConsulting, IndustryOther,
}

// IsValid 校验行业取值是否合法
func (i IndustryType) IsValid() bool {
	for _, v := range ValidIndustries {
		if i == v {
			return true
		}
	}
	return false
}

// CompanySize 公司规模
type CompanySize string

const (
	SizeSmall      CompanySize = "small"      // 小型（1-50人）
	SizeMedium     CompanySize = "medium"     // 中型（51-200人）
	SizeLarge      CompanySize = "large"      // 大型（201-1000人）
	SizeEnterprise CompanySize = "enterprise" // 超大型（1000人以上）
)

// IsValid 校验公司规模取值是否合法
func (s CompanySize) IsValid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge, SizeEnterprise:
		return true
	}
	return false
}

// CanonicalChannels 渠道的规范顺序，所有渠道列表都按此顺序输出
var CanonicalChannels = []string{
	"whatsapp", "email", "phone", "linkedin",
	"instagram", "facebook", "twitter", "telegram",
}

// RecommendedAgent 分析产出的模板推荐快照
type RecommendedAgent struct {
	TemplateID  string `json:"templateId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	AgentType   string `json:"agentType"`
	Department  string `json:"department,omitempty"`
}

// OrganizationProfile 组织画像
// 每个客户（租户）只有一份画像，是评分和模板实例化的数据来源
type OrganizationProfile struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	ClientID string `gorm:"type:uuid;uniqueIndex;not null" json:"clientId"` // 所属客户，每客户唯一

	Industry    IndustryType `gorm:"size:50;not null" json:"industry"`    // 行业
	CompanySize CompanySize  `gorm:"size:20;not null" json:"companySize"` // 公司规模

	// 部门设置
	HasSalesTeam       bool `gorm:"default:false" json:"hasSalesTeam"`       // 有销售团队
	HasCustomerService bool `gorm:"default:false" json:"hasCustomerService"` // 有客服团队
	HasMarketingTeam   bool `gorm:"default:false" json:"hasMarketingTeam"`   // 有市场团队
	HasHRTeam          bool `gorm:"default:false" json:"hasHrTeam"`          // 有人力团队
	HasFinanceTeam     bool `gorm:"default:false" json:"hasFinanceTeam"`     // 有财务团队
	HasOperationsTeam  bool `gorm:"default:false" json:"hasOperationsTeam"`  // 有运营团队

	// 渠道使用情况
	UsesWhatsApp  bool `gorm:"column:uses_whatsapp;default:false" json:"usesWhatsapp"`
	UsesEmail     bool `gorm:"default:false" json:"usesEmail"`
	UsesPhone     bool `gorm:"default:false" json:"usesPhone"`
	UsesLinkedIn  bool `gorm:"column:uses_linkedin;default:false" json:"usesLinkedin"`
	UsesInstagram bool `gorm:"default:false" json:"usesInstagram"`
	UsesFacebook  bool `gorm:"default:false" json:"usesFacebook"`
	UsesTwitter   bool `gorm:"default:false" json:"usesTwitter"`
	UsesTelegram  bool `gorm:"default:false" json:"usesTelegram"`

	// 语言设置
	PrimaryLanguage    string   `gorm:"size:10;default:pt" json:"primaryLanguage"`    // 主要语言
	SecondaryLanguages []string `gorm:"serializer:json" json:"secondaryLanguages"`    // 其他语言（有序）

	// 系统集成
	CRMSystem      string `gorm:"size:100" json:"crmSystem"`      // CRM 系统
	ERPSystem      string `gorm:"size:100" json:"erpSystem"`      // ERP 系统
	HelpdeskSystem string `gorm:"size:100" json:"helpdeskSystem"` // 工单系统

	CustomFields datatypes.JSONMap `gorm:"type:json" json:"customFields"` // 自定义字段

	// 分析结果（由分析器写入，画像更新后会被重置）
	RecommendedAgents []RecommendedAgent `gorm:"serializer:json" json:"recommendedAgents"`
	AnalysisComplete  bool               `gorm:"default:false" json:"analysisComplete"`
	AnalyzedAt        *time.Time         `json:"analyzedAt"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (OrganizationProfile) TableName() string {
	return "organization_profiles"
}

// BeforeCreate 创建前生成 UUID
func (p *OrganizationProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.PrimaryLanguage == "" {
		p.PrimaryLanguage = "pt"
	}
	return nil
}

// EnabledChannels 按规范顺序返回画像启用的渠道列表
func (p *OrganizationProfile) EnabledChannels() []string {
	flags := map[string]bool{
		"whatsapp":  p.UsesWhatsApp,
		"email":     p.UsesEmail,
		"phone":     p.UsesPhone,
		"linkedin":  p.UsesLinkedIn,
		"instagram": p.UsesInstagram,
		"facebook":  p.UsesFacebook,
		"twitter":   p.UsesTwitter,
		"telegram":  p.UsesTelegram,
	}

	channels := make([]string, 0, len(CanonicalChannels))
	for _, name := range CanonicalChannels {
		if flags[name] {
			channels = append(channels, name)
		}
	}
	return channels
}

// EnabledLanguages 返回画像启用的语言列表，主语言在最前
func (p *OrganizationProfile) EnabledLanguages() []string {
	languages := make([]string, 0, 1+len(p.SecondaryLanguages))
	if p.PrimaryLanguage != "" {
		languages = append(languages, p.PrimaryLanguage)
	}
	languages = append(languages, p.SecondaryLanguages...)
	return languages
}

// EnabledIntegrations 返回画像配置的系统集成标识列表
func (p *OrganizationProfile) EnabledIntegrations() []string {
	integrations := make([]string, 0, 3)
	if p.CRMSystem != "" {
		integrations = append(integrations, p.CRMSystem)
	}
	if p.ERPSystem != "" {
		integrations = append(integrations, p.ERPSystem)
	}
	if p.HelpdeskSystem != "" {
		integrations = append(integrations, p.HelpdeskSystem)
	}
	return integrations
}

// HasDepartment 按部门名称查询对应的部门开关
// 未知部门名称返回 false（不报错）
func (p *OrganizationProfile) HasDepartment(department string) bool {
	switch department {
	case "sales":
		return p.HasSalesTeam
	case "customer_service":
		return p.HasCustomerService
	case "marketing":
		return p.HasMarketingTeam
	case "hr":
		return p.HasHRTeam
	case "finance":
		return p.HasFinanceTeam
	case "operations":
		return p.HasOperationsTeam
	}
	return false
}
