package organization

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var testDBSeq int

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testDBSeq++
	dsn := fmt.Sprintf("file:organization_test_%d_%d?mode=memory&cache=shared", testDBSeq, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&OrganizationProfile{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestProfile(t *testing.T, svc *Service, clientID string) *OrganizationProfile {
	t.Helper()

	profile, err := svc.Create(context.Background(), &CreateProfileRequest{
		ClientID:           clientID,
		Industry:           IndustryTechnology,
		CompanySize:        SizeSmall,
		HasCustomerService: true,
		UsesWhatsApp:       true,
		UsesEmail:          true,
		PrimaryLanguage:    "pt",
		SecondaryLanguages: []string{"en"},
		CRMSystem:          "hubspot",
	})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return profile
}

func TestCreateProfileUniquePerClient(t *testing.T) {
	svc := NewService(setupTestDB(t))
	clientID := "11111111-1111-1111-1111-111111111111"

	newTestProfile(t, svc, clientID)

	_, err := svc.Create(context.Background(), &CreateProfileRequest{
		ClientID:    clientID,
		Industry:    IndustryRetail,
		CompanySize: SizeMedium,
	})
	if err != ErrProfileExists {
		t.Fatalf("expected ErrProfileExists, got %v", err)
	}
}

func TestCreateProfileRejectsUnknownIndustry(t *testing.T) {
	svc := NewService(setupTestDB(t))

	_, err := svc.Create(context.Background(), &CreateProfileRequest{
		ClientID:    "11111111-1111-1111-1111-111111111111",
		Industry:    IndustryType("space_mining"),
		CompanySize: SizeSmall,
	})
	if err == nil {
		t.Fatal("expected validation error for unknown industry")
	}
}

func TestGetProfileNotFound(t *testing.T) {
	svc := NewService(setupTestDB(t))

	_, err := svc.Get(context.Background(), "22222222-2222-2222-2222-222222222222")
	if err != ErrProfileNotFound {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestUpdateResetsAnalysisResults(t *testing.T) {
	svc := NewService(setupTestDB(t))
	profile := newTestProfile(t, svc, "11111111-1111-1111-1111-111111111111")
	ctx := context.Background()

	err := svc.SaveAnalysis(ctx, profile.ID, []RecommendedAgent{
		{TemplateID: "tpl-1", Name: "Suporte", AgentType: "customer_support"},
	})
	if err != nil {
		t.Fatalf("save analysis: %v", err)
	}

	analyzed, err := svc.Get(ctx, profile.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !analyzed.AnalysisComplete {
		t.Fatal("expected analysis_complete=true after SaveAnalysis")
	}
	if len(analyzed.RecommendedAgents) != 1 {
		t.Fatalf("expected 1 recommended agent, got %d", len(analyzed.RecommendedAgents))
	}
	if analyzed.AnalyzedAt == nil {
		t.Fatal("expected analyzed_at to be set")
	}

	// 即使只改一个与分析无关的字段，分析结果也必须被重置
	crm := "salesforce"
	updated, err := svc.Update(ctx, profile.ID, &UpdateProfileRequest{CRMSystem: &crm})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.CRMSystem != "salesforce" {
		t.Fatalf("expected crm_system=salesforce, got %q", updated.CRMSystem)
	}
	if updated.AnalysisComplete {
		t.Fatal("expected analysis_complete=false after update")
	}
	if len(updated.RecommendedAgents) != 0 {
		t.Fatalf("expected recommended_agents cleared, got %d entries", len(updated.RecommendedAgents))
	}
	if updated.AnalyzedAt != nil {
		t.Fatal("expected analyzed_at cleared after update")
	}
}

func TestEnabledChannelsCanonicalOrder(t *testing.T) {
	profile := &OrganizationProfile{
		UsesTelegram: true,
		UsesEmail:    true,
		UsesWhatsApp: true,
	}

	channels := profile.EnabledChannels()
	want := []string{"whatsapp", "email", "telegram"}
	if len(channels) != len(want) {
		t.Fatalf("expected %d channels, got %v", len(want), channels)
	}
	for i := range want {
		if channels[i] != want[i] {
			t.Fatalf("expected channel order %v, got %v", want, channels)
		}
	}
}

func TestEnabledLanguagesPrimaryFirst(t *testing.T) {
	profile := &OrganizationProfile{
		PrimaryLanguage:    "pt",
		SecondaryLanguages: []string{"en", "es"},
	}

	languages := profile.EnabledLanguages()
	want := []string{"pt", "en", "es"}
	if len(languages) != len(want) {
		t.Fatalf("expected %v, got %v", want, languages)
	}
	for i := range want {
		if languages[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, languages)
		}
	}
}
