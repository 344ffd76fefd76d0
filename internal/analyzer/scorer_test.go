package analyzer

import (
	"reflect"
	"testing"

	"backend/internal/catalog"
	"backend/internal/organization"
)

func techSupportProfile() *organization.OrganizationProfile {
	return &organization.OrganizationProfile{
		Industry:           organization.IndustryTechnology,
		CompanySize:        organization.SizeSmall,
		HasCustomerService: true,
		UsesWhatsApp:       true,
		UsesEmail:          true,
		PrimaryLanguage:    "pt",
	}
}

func findScore(t *testing.T, scores []ArchetypeScore, agentID string) ArchetypeScore {
	t.Helper()
	for _, s := range scores {
		if s.AgentID == agentID {
			return s
		}
	}
	t.Fatalf("agent %q missing from scores", agentID)
	return ArchetypeScore{}
}

func TestScoreTechnologyCustomerSupportScenario(t *testing.T) {
	profile := techSupportProfile()
	objectives := map[string]bool{"customer_support": true}

	scores := ScoreArchetypes(profile, objectives)
	if len(scores) != len(Archetypes) {
		t.Fatalf("expected %d scores, got %d", len(Archetypes), len(scores))
	}

	virginia := findScore(t, scores, "virginia")
	if virginia.Score <= 70 {
		t.Fatalf("virginia should exceed threshold, got %d", virginia.Score)
	}
	if !virginia.Recommended {
		t.Fatal("virginia should be recommended")
	}

	ricardo := findScore(t, scores, "ricardo")
	if ricardo.Score > 70 {
		t.Fatalf("ricardo should stay at or below threshold, got %d", ricardo.Score)
	}
	if ricardo.Recommended {
		t.Fatal("ricardo should not be recommended")
	}

	for _, rec := range Recommended(scores) {
		if rec.AgentID == "ricardo" {
			t.Fatal("ricardo leaked into recommendations")
		}
	}
}

func TestScoreClampInvariant(t *testing.T) {
	// 所有加分项全开也不能超过 100
	profile := &organization.OrganizationProfile{
		Industry:           organization.IndustryTechnology,
		CompanySize:        organization.SizeEnterprise,
		HasCustomerService: true,
		HasSalesTeam:       true,
		UsesWhatsApp:       true,
		UsesEmail:          true,
		UsesPhone:          true,
		UsesTelegram:       true,
		PrimaryLanguage:    "pt",
		SecondaryLanguages: []string{"en", "es"},
		CRMSystem:          "hubspot",
		HelpdeskSystem:     "zendesk",
	}
	objectives := map[string]bool{
		"customer_support": true,
		"sales":            true,
		"marketing":        true,
		"finance":          true,
		"hr":               true,
	}

	for _, s := range ScoreArchetypes(profile, objectives) {
		if s.Score < 0 || s.Score > 100 {
			t.Fatalf("score out of range for %s: %d", s.AgentID, s.Score)
		}
	}
}

func TestScoreIsPure(t *testing.T) {
	profile := techSupportProfile()
	objectives := map[string]bool{"customer_support": true}

	first := ScoreArchetypes(profile, objectives)
	second := ScoreArchetypes(profile, objectives)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("same input should produce identical scores")
	}
}

func TestScoreDescendingStableOrder(t *testing.T) {
	scores := ScoreArchetypes(techSupportProfile(), map[string]bool{"customer_support": true})

	for i := 1; i < len(scores); i++ {
		if scores[i].Score > scores[i-1].Score {
			t.Fatalf("scores not descending at index %d: %d > %d", i, scores[i].Score, scores[i-1].Score)
		}
	}

	// 同分时必须保持原型声明顺序
	declared := map[string]int{}
	for i, arch := range Archetypes {
		declared[arch.ID] = i
	}
	for i := 1; i < len(scores); i++ {
		if scores[i].Score == scores[i-1].Score &&
			declared[scores[i].AgentID] < declared[scores[i-1].AgentID] {
			t.Fatalf("tie between %s and %s broke declaration order",
				scores[i-1].AgentID, scores[i].AgentID)
		}
	}
}

func TestCompatibilityVacuousMatch(t *testing.T) {
	// 没有启用任何渠道/语言/集成时，各维度兼容度都是 100
	profile := &organization.OrganizationProfile{
		Industry:    organization.IndustryOther,
		CompanySize: organization.SizeSmall,
	}

	for _, s := range ScoreArchetypes(profile, nil) {
		if s.Compatibility.Channels != 100 {
			t.Fatalf("%s: empty channel selection should be 100%%, got %d", s.AgentID, s.Compatibility.Channels)
		}
		if s.Compatibility.Languages != 100 {
			t.Fatalf("%s: empty language selection should be 100%%, got %d", s.AgentID, s.Compatibility.Languages)
		}
		if s.Compatibility.Integrations != 100 {
			t.Fatalf("%s: empty integration selection should be 100%%, got %d", s.AgentID, s.Compatibility.Integrations)
		}
	}
}

func TestCompatibilityRounding(t *testing.T) {
	// ricardo 支持 email/phone：3 个启用渠道命中 1 个 → round(33.3) = 33
	profile := &organization.OrganizationProfile{
		Industry:        organization.IndustryOther,
		CompanySize:     organization.SizeSmall,
		UsesWhatsApp:    true,
		UsesEmail:       true,
		UsesInstagram:   true,
		PrimaryLanguage: "pt",
	}

	ricardo := findScore(t, ScoreArchetypes(profile, nil), "ricardo")
	if ricardo.Compatibility.Channels != 33 {
		t.Fatalf("expected channel compatibility 33, got %d", ricardo.Compatibility.Channels)
	}
}

func TestZeroChannelsContributeZeroNotError(t *testing.T) {
	noChannels := &organization.OrganizationProfile{
		Industry:        organization.IndustryOther,
		CompanySize:     organization.SizeSmall,
		PrimaryLanguage: "pt",
	}
	withChannels := &organization.OrganizationProfile{
		Industry:        organization.IndustryOther,
		CompanySize:     organization.SizeSmall,
		PrimaryLanguage: "pt",
		UsesEmail:       true,
	}

	without := findScore(t, ScoreArchetypes(noChannels, nil), "ricardo")
	with := findScore(t, ScoreArchetypes(withChannels, nil), "ricardo")
	if with.Score <= without.Score {
		t.Fatalf("enabled supported channel should raise score: %d vs %d", with.Score, without.Score)
	}
}

func strPtr(s string) *string { return &s }

func filterFixture() []catalog.AgentTemplate {
	return []catalog.AgentTemplate{
		{ID: "t-sales", Name: "Vendas", AgentType: "sales", Department: strPtr("sales"), IsActive: true},
		{ID: "t-support", Name: "Atendimento", AgentType: "customer_support", Department: strPtr("customer_service"), IsActive: true},
		{ID: "t-inactive", Name: "Desativado", AgentType: "sales", Department: strPtr("sales"), IsActive: false},
		{ID: "t-retail", Name: "Varejo", AgentType: "sales", Department: strPtr("sales"), Industry: strPtr("retail"), IsActive: true},
		{ID: "t-general", Name: "Geral", AgentType: "customer_support", IsActive: true},
		{ID: "t-ops", Name: "Operações", AgentType: "operations", Department: strPtr("operations"), IsActive: true},
	}
}

func TestFilterTemplatesRespectsFlags(t *testing.T) {
	profile := &organization.OrganizationProfile{
		Industry:           organization.IndustryTechnology,
		HasSalesTeam:       true,
		HasCustomerService: true,
	}

	matched := FilterTemplates(profile, filterFixture())

	ids := make([]string, len(matched))
	for i, tpl := range matched {
		ids[i] = tpl.ID
	}

	// 部门顺序 sales → customer_service，无部门模板排最后；
	// 停用、行业不匹配、部门开关关闭的都不出现
	want := []string{"t-sales", "t-support", "t-general"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
}

func TestFilterTemplatesOperationsFlag(t *testing.T) {
	profile := &organization.OrganizationProfile{
		Industry:          organization.IndustryTechnology,
		HasOperationsTeam: true,
	}

	matched := FilterTemplates(profile, filterFixture())

	var foundOps bool
	for _, tpl := range matched {
		if tpl.ID == "t-ops" {
			foundOps = true
		}
		if tpl.ID == "t-sales" || tpl.ID == "t-support" {
			t.Fatalf("template %s matched without its department flag", tpl.ID)
		}
	}
	if !foundOps {
		t.Fatal("operations template should match the operations flag")
	}
}

func TestFilterTemplatesIndustryMatch(t *testing.T) {
	profile := &organization.OrganizationProfile{
		Industry:     organization.IndustryRetail,
		HasSalesTeam: true,
	}

	matched := FilterTemplates(profile, filterFixture())

	var foundRetail bool
	for _, tpl := range matched {
		if !tpl.IsActive {
			t.Fatalf("inactive template %s matched", tpl.ID)
		}
		if tpl.ID == "t-retail" {
			foundRetail = true
		}
	}
	if !foundRetail {
		t.Fatal("retail-specific template should match a retail profile")
	}
}
