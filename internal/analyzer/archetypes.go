package analyzer

import "backend/internal/organization"

// Archetype 内置智能体原型
// 评分器的静态参照数据：每个原型声明自己支持的渠道、语言和系统集成
type Archetype struct {
	ID           string
	Name         string
	AgentType    string
	Department   string
	Channels     []string // 支持的渠道
	Languages    []string // 支持的语言
	Integrations []string // 支持的系统集成
}

// Archetypes 五个内置原型，声明顺序即评分遍历顺序（同分时保持此顺序）
var Archetypes = []Archetype{
	{
		ID:           "virginia",
		Name:         "Virginia",
		AgentType:    "customer_support",
		Department:   "customer_service",
		Channels:     []string{"whatsapp", "email", "phone", "telegram"},
		Languages:    []string{"pt", "en", "es"},
		Integrations: []string{"zendesk", "freshdesk", "hubspot"},
	},
	{
		ID:           "guilherme",
		Name:         "Guilherme",
		AgentType:    "sales",
		Department:   "sales",
		Channels:     []string{"whatsapp", "email", "linkedin", "phone"},
		Languages:    []string{"pt", "en"},
		Integrations: []string{"salesforce", "hubspot", "pipedrive"},
	},
	{
		ID:           "amanda",
		Name:         "Amanda",
		AgentType:    "marketing",
		Department:   "marketing",
		Channels:     []string{"instagram", "facebook", "twitter", "email", "linkedin"},
		Languages:    []string{"pt", "en", "es"},
		Integrations: []string{"hubspot", "mailchimp"},
	},
	{
		ID:           "ricardo",
		Name:         "Ricardo",
		AgentType:    "finance",
		Department:   "finance",
		Channels:     []string{"email", "phone"},
		Languages:    []string{"pt"},
		Integrations: []string{"sap", "totvs", "conta_azul"},
	},
	{
		ID:           "fernanda",
		Name:         "Fernanda",
		AgentType:    "hr",
		Department:   "hr",
		Channels:     []string{"email", "whatsapp"},
		Languages:    []string{"pt", "en"},
		Integrations: []string{"gupy", "workday"},
	},
}

// industryPriorities 行业优先原型表：命中的原型各加 15 分
var industryPriorities = map[organization.IndustryType][]string{
	organization.IndustryTechnology:     {"virginia", "guilherme", "amanda"},
	organization.IndustryFinance:        {"ricardo", "virginia", "guilherme"},
	organization.IndustryHealthcare:     {"virginia", "fernanda"},
	organization.IndustryRetail:         {"guilherme", "amanda", "virginia"},
	organization.IndustryManufacturing:  {"guilherme", "ricardo"},
	organization.IndustryEducation:      {"virginia", "amanda"},
	organization.IndustryRealEstate:     {"guilherme", "virginia"},
	organization.IndustryHospitality:    {"virginia", "amanda"},
	organization.IndustryTransportation: {"virginia", "guilherme"},
	organization.IndustryEnergy:         {"ricardo", "virginia"},
	organization.IndustryAgriculture:    {"guilherme"},
	organization.IndustryEntertainment:  {"amanda", "virginia"},
	organization.IndustryLegal:          {"virginia", "ricardo"},
	organization.IndustryConsulting:     {"guilherme", "amanda"},
	organization.IndustryOther:          {"virginia"},
}

// objectiveArchetypes 业务目标到原型的映射：目标为 true 时对应原型加 20 分
var objectiveArchetypes = map[string]string{
	"customer_support": "virginia",
	"sales":            "guilherme",
	"lead_generation":  "guilherme",
	"marketing":        "amanda",
	"finance":          "ricardo",
	"hr":               "fernanda",
}

// sizeBonuses 公司规模加分表，只作用于内置原型
var sizeBonuses = map[organization.CompanySize]map[string]int{
	organization.SizeSmall: {
		"virginia": 5, "guilherme": 10,
	},
	organization.SizeMedium: {
		"virginia": 8, "guilherme": 8, "amanda": 5,
	},
	organization.SizeLarge: {
		"virginia": 10, "guilherme": 8, "amanda": 8, "ricardo": 10, "fernanda": 10,
	},
	organization.SizeEnterprise: {
		"virginia": 10, "guilherme": 8, "amanda": 8, "ricardo": 10, "fernanda": 10,
	},
}
