package catalog

import (
	"fmt"

	"backend/internal/logger"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

// defaultTemplates 内置的默认模板集
// 与五个内置智能体原型一一对应，base_instruction 使用占位符在实例化时填充
func defaultTemplates() []AgentTemplate {
	return []AgentTemplate{
		{
			Name:        "Virginia - Atendimento ao Cliente",
			Description: "Agente de atendimento que responde dúvidas e acompanha chamados",
			AgentType:   "customer_support",
			Department:  strPtr("customer_service"),
			BaseInstruction: "Você é um agente de atendimento ao cliente para empresas de {INDUSTRY} " +
				"de porte {COMPANY_SIZE}. Responda sempre em {PRIMARY_LANGUAGE} e registre os " +
				"atendimentos no {CRM_SYSTEM}.",
			ConfigTemplate: datatypes.JSONMap{
				"personality": map[string]any{"tone": "friendly", "formality": "medium"},
				"behavior":    map[string]any{"max_response_time": 30, "escalation_enabled": true},
			},
			RequiredTools:       []string{"ticket_lookup", "knowledge_base"},
			CustomizationFields: []string{"personality", "behavior"},
			IsActive:            true,
		},
		{
			Name:        "Guilherme - Vendas",
			Description: "Agente de vendas que qualifica leads e agenda reuniões",
			AgentType:   "sales",
			Department:  strPtr("sales"),
			BaseInstruction: "Você é um agente de vendas para empresas de {INDUSTRY} de porte " +
				"{COMPANY_SIZE}. Qualifique leads, agende reuniões e mantenha o {CRM_SYSTEM} atualizado.",
			ConfigTemplate: datatypes.JSONMap{
				"personality": map[string]any{"tone": "persuasive", "formality": "medium"},
				"behavior":    map[string]any{"follow_up_days": 3},
			},
			RequiredTools:       []string{"crm_write", "calendar"},
			CustomizationFields: []string{"personality", "behavior"},
			IsActive:            true,
		},
		{
			Name:        "Amanda - Marketing",
			Description: "Agente de marketing para campanhas e redes sociais",
			AgentType:   "marketing",
			Department:  strPtr("marketing"),
			BaseInstruction: "Você é um agente de marketing para empresas de {INDUSTRY}. Crie " +
				"conteúdo em {PRIMARY_LANGUAGE} adequado ao porte {COMPANY_SIZE} da empresa.",
			ConfigTemplate: datatypes.JSONMap{
				"personality": map[string]any{"tone": "creative", "formality": "low"},
			},
			RequiredTools:       []string{"social_scheduler"},
			CustomizationFields: []string{"personality"},
			IsActive:            true,
		},
		{
			Name:        "Ricardo - Financeiro",
			Description: "Agente financeiro para cobranças e conciliação",
			AgentType:   "finance",
			Department:  strPtr("finance"),
			BaseInstruction: "Você é um agente financeiro para empresas de {INDUSTRY} de porte " +
				"{COMPANY_SIZE}. Trate cobranças com cordialidade em {PRIMARY_LANGUAGE}.",
			ConfigTemplate: datatypes.JSONMap{
				"personality": map[string]any{"tone": "formal", "formality": "high"},
			},
			RequiredTools:       []string{"billing_lookup"},
			CustomizationFields: []string{"personality"},
			IsActive:            true,
		},
		{
			Name:        "Fernanda - Recursos Humanos",
			Description: "Agente de RH para triagem de candidatos e dúvidas internas",
			AgentType:   "hr",
			Department:  strPtr("hr"),
			BaseInstruction: "Você é um agente de recursos humanos para empresas de {INDUSTRY}. " +
				"Atenda colaboradores e candidatos em {PRIMARY_LANGUAGE}.",
			ConfigTemplate: datatypes.JSONMap{
				"personality": map[string]any{"tone": "welcoming", "formality": "medium"},
			},
			RequiredTools:       []string{"hris_lookup"},
			CustomizationFields: []string{"personality"},
			IsActive:            true,
		},
	}
}

// EnsureSeedTemplates 首次启动时写入默认模板
// 表非空时不做任何事，不覆盖运营侧的目录管理
func EnsureSeedTemplates(db *gorm.DB) error {
	var count int64
	if err := db.Model(&AgentTemplate{}).Count(&count).Error; err != nil {
		return fmt.Errorf("查询模板数量失败: %w", err)
	}
	if count > 0 {
		return nil
	}

	templates := defaultTemplates()
	if err := db.Create(&templates).Error; err != nil {
		return fmt.Errorf("写入默认模板失败: %w", err)
	}

	logger.Info("默认模板已写入")
	return nil
}
