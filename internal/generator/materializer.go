package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"backend/internal/catalog"
	"backend/internal/organization"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// crmFallback CRM 未配置时占位符的兜底值
const crmFallback = "generic CRM"

// defaultRole 模板没有部门归属时的角色兜底值
const defaultRole = "Assistant"

var titleCaser = cases.Title(language.Und)

// MaterializedAgent 模板实例化的产物
// 纯数据，不含任何持久化状态，由调用方写入智能体记录
type MaterializedAgent struct {
	Name          string         `json:"name"`
	Role          string         `json:"role"`
	AgentType     string         `json:"agentType"`
	Description   string         `json:"description"`
	Instruction   string         `json:"instruction"`
	Configuration map[string]any `json:"configuration"`
}

// Materialize 把模板和组织画像实例化为具体的智能体配置
// 纯函数：不修改入参模板（配置走深拷贝），不做任何持久化。
// 出错时返回 error，调用方应跳过该模板而不是终止整个任务
func Materialize(tpl *catalog.AgentTemplate, profile *organization.OrganizationProfile) (*MaterializedAgent, error) {
	instruction := substituteInstruction(tpl.BaseInstruction, profile)

	config, err := deepCopyConfig(tpl.ConfigTemplate)
	if err != nil {
		return nil, fmt.Errorf("复制配置骨架失败: %w", err)
	}

	channels, err := ensureSection(config, "channels")
	if err != nil {
		return nil, err
	}
	channels["enabled"] = profile.EnabledChannels()

	languages, err := ensureSection(config, "languages")
	if err != nil {
		return nil, err
	}
	languages["primary"] = profile.PrimaryLanguage
	languages["supported"] = profile.EnabledLanguages()

	config["instruction"] = instruction

	role := defaultRole
	if tpl.Department != nil && *tpl.Department != "" {
		role = titleLabel(*tpl.Department)
	}

	return &MaterializedAgent{
		Name:          fmt.Sprintf("%s - %s", tpl.Name, titleLabel(string(profile.Industry))),
		Role:          role,
		AgentType:     tpl.AgentType,
		Description:   tpl.Description,
		Instruction:   instruction,
		Configuration: config,
	}, nil
}

// substituteInstruction 替换指令文本中的占位符
// 未知占位符原样保留，不视为错误
func substituteInstruction(instruction string, profile *organization.OrganizationProfile) string {
	crm := profile.CRMSystem
	if crm == "" {
		crm = crmFallback
	}

	replacer := strings.NewReplacer(
		"{INDUSTRY}", string(profile.Industry),
		"{COMPANY_SIZE}", string(profile.CompanySize),
		"{PRIMARY_LANGUAGE}", profile.PrimaryLanguage,
		"{CRM_SYSTEM}", crm,
	)
	return replacer.Replace(instruction)
}

// deepCopyConfig 通过 JSON 往返深拷贝配置骨架，保证模板不被修改
func deepCopyConfig(template map[string]any) (map[string]any, error) {
	if template == nil {
		return map[string]any{}, nil
	}

	raw, err := json.Marshal(template)
	if err != nil {
		return nil, err
	}

	var copied map[string]any
	if err := json.Unmarshal(raw, &copied); err != nil {
		return nil, err
	}
	return copied, nil
}

// ensureSection 取出配置里的子映射，不存在则创建
// 已存在但不是映射时说明模板配置畸形，返回错误
func ensureSection(config map[string]any, key string) (map[string]any, error) {
	existing, ok := config[key]
	if !ok || existing == nil {
		section := map[string]any{}
		config[key] = section
		return section, nil
	}

	section, ok := existing.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("模板配置 %s 段不是映射", key)
	}
	return section, nil
}

// titleLabel 把枚举值转成展示用标题，下划线视为分词
func titleLabel(value string) string {
	return titleCaser.String(strings.ReplaceAll(value, "_", " "))
}
