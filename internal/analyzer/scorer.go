package analyzer

import (
	"math"
	"sort"

	"backend/internal/catalog"
	"backend/internal/organization"
)

const (
	baseScore             = 50
	industryBonus         = 15
	objectiveBonus        = 20
	affinityWeight        = 10
	recommendThreshold = 70
)

// departmentOrder 部门过滤策略的固定遍历顺序
var departmentOrder = []string{
	"sales", "customer_service", "marketing", "hr", "finance", "operations",
}

// Compatibility 各维度的兼容度百分比
// 画像在某个维度没有任何选择时，该维度视为完全兼容（100）
type Compatibility struct {
	Channels     int `json:"channels"`
	Languages    int `json:"languages"`
	Integrations int `json:"integrations"`
}

// ArchetypeScore 单个原型的评分结果
type ArchetypeScore struct {
	AgentID       string        `json:"agentId"`
	Name          string        `json:"name"`
	AgentType     string        `json:"agentType"`
	Score         int           `json:"score"`
	Recommended   bool          `json:"recommended"`
	Compatibility Compatibility `json:"compatibility"`
}

// ScoreArchetypes 加权评分策略
// 纯函数：同样的画像和目标集合总是得到同样的结果。
// 每个原型从基础分 50 起算，按行业优先、业务目标、渠道/语言/集成亲和度
// 和公司规模逐项加分，最终截断到 [0,100]，严格大于 70 才进入推荐
func ScoreArchetypes(profile *organization.OrganizationProfile, objectives map[string]bool) []ArchetypeScore {
	enabledChannels := profile.EnabledChannels()
	enabledLanguages := profile.EnabledLanguages()
	enabledIntegrations := profile.EnabledIntegrations()

	priority := industryPriorities[profile.Industry]
	bonuses := sizeBonuses[profile.CompanySize]

	scores := make([]ArchetypeScore, 0, len(Archetypes))
	for _, arch := range Archetypes {
		score := float64(baseScore)

		if containsString(priority, arch.ID) {
			score += industryBonus
		}

		for objective, enabled := range objectives {
			if enabled && objectiveArchetypes[objective] == arch.ID {
				score += objectiveBonus
			}
		}

		score += affinity(enabledChannels, arch.Channels) * affinityWeight
		score += affinity(enabledLanguages, arch.Languages) * affinityWeight
		score += affinity(enabledIntegrations, arch.Integrations) * affinityWeight

		score += float64(bonuses[arch.ID])

		final := clampScore(int(math.Round(score)))
		scores = append(scores, ArchetypeScore{
			AgentID:     arch.ID,
			Name:        arch.Name,
			AgentType:   arch.AgentType,
			Score:       final,
			Recommended: final > recommendThreshold,
			Compatibility: Compatibility{
				Channels:     compatibilityPercent(enabledChannels, arch.Channels),
				Languages:    compatibilityPercent(enabledLanguages, arch.Languages),
				Integrations: compatibilityPercent(enabledIntegrations, arch.Integrations),
			},
		})
	}

	// 降序稳定排序：同分保持原型声明顺序
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores
}

// Recommended 过滤出得分超过阈值的结果（输入已按得分降序）
func Recommended(scores []ArchetypeScore) []ArchetypeScore {
	recommended := make([]ArchetypeScore, 0, len(scores))
	for _, s := range scores {
		if s.Recommended {
			recommended = append(recommended, s)
		}
	}
	return recommended
}

// FilterTemplates 目录过滤策略
// 候选条件：模板启用、行业匹配（或全行业通用）、对应部门开关为 true；
// 无部门归属的模板不受部门开关限制。
// 输出顺序：按固定部门顺序分组，组内保持目录查询顺序，无部门模板排最后
func FilterTemplates(profile *organization.OrganizationProfile, templates []catalog.AgentTemplate) []catalog.AgentTemplate {
	byDepartment := make(map[string][]catalog.AgentTemplate)
	var general []catalog.AgentTemplate

	for _, tpl := range templates {
		if !tpl.IsActive {
			continue
		}
		if tpl.Industry != nil && organization.IndustryType(*tpl.Industry) != profile.Industry {
			continue
		}
		if tpl.Department == nil {
			general = append(general, tpl)
			continue
		}
		byDepartment[*tpl.Department] = append(byDepartment[*tpl.Department], tpl)
	}

	matched := make([]catalog.AgentTemplate, 0, len(templates))
	for _, department := range departmentOrder {
		if !profile.HasDepartment(department) {
			continue
		}
		matched = append(matched, byDepartment[department]...)
	}
	matched = append(matched, general...)
	return matched
}

// affinity 计算已选集合被支持集合覆盖的比例
// 画像没有任何选择时贡献 0 分（不是错误）
func affinity(selected, supported []string) float64 {
	if len(selected) == 0 {
		return 0
	}
	return float64(countMatches(selected, supported)) / float64(len(selected))
}

// compatibilityPercent 计算兼容度百分比，空选择集视为完全兼容
func compatibilityPercent(selected, supported []string) int {
	if len(selected) == 0 {
		return 100
	}
	ratio := float64(countMatches(selected, supported)) / float64(len(selected))
	return int(math.Round(ratio * 100))
}

func countMatches(selected, supported []string) int {
	matches := 0
	for _, item := range selected {
		if containsString(supported, item) {
			matches++
		}
	}
	return matches
}

func containsString(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
