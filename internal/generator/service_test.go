package generator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"backend/internal/catalog"
	"backend/internal/organization"
	"backend/internal/tenant"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var testDBSeq int

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testDBSeq++
	dsn := fmt.Sprintf("file:generator_test_%d_%d?mode=memory&cache=shared", testDBSeq, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	err = db.AutoMigrate(
		&tenant.Client{},
		&organization.OrganizationProfile{},
		&catalog.AgentTemplate{},
		&AgentGenerationJob{},
		&AgentFolder{},
		&Agent{},
		&AgentConfiguration{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type testEnv struct {
	db        *gorm.DB
	svc       *Service
	clients   *tenant.Service
	profiles  *organization.Service
	templates catalog.Provider
	client    *tenant.Client
	profile   *organization.OrganizationProfile
}

// hookedProvider 包装模板目录，在每次 Get 时触发回调，用于观察处理中的任务状态
type hookedProvider struct {
	inner catalog.Provider
	onGet func(id string)
}

func (p *hookedProvider) ListActive(ctx context.Context, filter catalog.ListFilter) ([]catalog.AgentTemplate, error) {
	return p.inner.ListActive(ctx, filter)
}

func (p *hookedProvider) Get(ctx context.Context, id string) (*catalog.AgentTemplate, error) {
	if p.onGet != nil {
		p.onGet(id)
	}
	return p.inner.Get(ctx, id)
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	ctx := context.Background()

	clients := tenant.NewService(db)
	client, err := clients.Create(ctx, &tenant.CreateClientRequest{
		Name:   "Acme Varejo",
		Domain: "acme.example.com",
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	profiles := organization.NewService(db)
	profile, err := profiles.Create(ctx, &organization.CreateProfileRequest{
		ClientID:           client.ID,
		Industry:           organization.IndustryRetail,
		CompanySize:        organization.SizeSmall,
		HasSalesTeam:       true,
		HasCustomerService: true,
		UsesWhatsApp:       true,
		UsesEmail:          true,
		PrimaryLanguage:    "pt",
	})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}

	templates := catalog.NewDBProvider(db)
	return &testEnv{
		db:        db,
		svc:       NewService(db, templates, profiles, clients),
		clients:   clients,
		profiles:  profiles,
		templates: templates,
		client:    client,
		profile:   profile,
	}
}

func (e *testEnv) createTemplate(t *testing.T, name string, active bool) *catalog.AgentTemplate {
	t.Helper()

	tpl := &catalog.AgentTemplate{
		Name:            name,
		AgentType:       "customer_support",
		Department:      strPtr("customer_service"),
		BaseInstruction: "Atende empresas de {INDUSTRY}.",
		ConfigTemplate:  datatypes.JSONMap{"personality": map[string]any{"tone": "friendly"}},
		IsActive:        active,
	}
	if err := e.db.Create(tpl).Error; err != nil {
		t.Fatalf("create template %s: %v", name, err)
	}
	// IsActive 为零值时会被 default:true 覆盖，需显式写回 false
	if !active {
		if err := e.db.Model(tpl).Update("is_active", false).Error; err != nil {
			t.Fatalf("deactivate template %s: %v", name, err)
		}
	}
	return tpl
}

func TestCreateJobValidations(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	tpl := env.createTemplate(t, "Tpl A", true)

	// 空模板列表
	_, err := env.svc.CreateJob(ctx, &CreateJobRequest{ClientID: env.client.ID, TemplateIDs: nil})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("empty selection: expected ErrValidation, got %v", err)
	}

	// 重复模板
	_, err = env.svc.CreateJob(ctx, &CreateJobRequest{
		ClientID:    env.client.ID,
		TemplateIDs: []string{tpl.ID, tpl.ID},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("duplicate selection: expected ErrValidation, got %v", err)
	}

	// 不存在的模板
	_, err = env.svc.CreateJob(ctx, &CreateJobRequest{
		ClientID:    env.client.ID,
		TemplateIDs: []string{"33333333-3333-3333-3333-333333333333"},
	})
	if !errors.Is(err, catalog.ErrTemplateNotFound) {
		t.Fatalf("missing template: expected ErrTemplateNotFound, got %v", err)
	}

	// 停用的模板在创建时就拒绝
	inactive := env.createTemplate(t, "Tpl Off", false)
	_, err = env.svc.CreateJob(ctx, &CreateJobRequest{
		ClientID:    env.client.ID,
		TemplateIDs: []string{inactive.ID},
	})
	if !errors.Is(err, catalog.ErrTemplateNotFound) {
		t.Fatalf("inactive template: expected ErrTemplateNotFound, got %v", err)
	}

	// 不存在的客户
	_, err = env.svc.CreateJob(ctx, &CreateJobRequest{
		ClientID:    "44444444-4444-4444-4444-444444444444",
		TemplateIDs: []string{tpl.ID},
	})
	if !errors.Is(err, tenant.ErrClientNotFound) {
		t.Fatalf("missing client: expected ErrClientNotFound, got %v", err)
	}

	// 校验失败不能留下任务记录
	var count int64
	env.db.Model(&AgentGenerationJob{}).Count(&count)
	if count != 0 {
		t.Fatalf("failed validations must not persist jobs, found %d", count)
	}
}

func TestProcessJobHappyPath(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	a := env.createTemplate(t, "Tpl A", true)
	b := env.createTemplate(t, "Tpl B", true)

	job, err := env.svc.CreateJob(ctx, &CreateJobRequest{
		ClientID:    env.client.ID,
		TemplateIDs: []string{a.ID, b.ID},
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	if job.Status != JobStatusPending || job.Progress != 0 {
		t.Fatalf("new job should be pending/0, got %s/%d", job.Status, job.Progress)
	}

	if err := env.svc.ProcessJob(ctx, job.ID); err != nil {
		t.Fatalf("process job: %v", err)
	}

	done, err := env.svc.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if done.Status != JobStatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", done.Status, done.ErrorMessage)
	}
	if done.Progress != 100 {
		t.Fatalf("expected progress 100, got %d", done.Progress)
	}
	if len(done.GeneratedAgents) != 2 {
		t.Fatalf("expected 2 generated agents, got %d", len(done.GeneratedAgents))
	}
	if done.CompletedAt == nil {
		t.Fatal("expected completed_at to be set")
	}

	// 生成的智能体带版本 1 的激活配置
	agent, err := env.svc.GetAgent(ctx, done.GeneratedAgents[0])
	if err != nil {
		t.Fatalf("get agent: %v", err)
	}
	if agent.ActiveConfiguration == nil || agent.ActiveConfiguration.Version != 1 {
		t.Fatalf("expected active configuration version 1, got %+v", agent.ActiveConfiguration)
	}
	if agent.Name != "Tpl A - Retail" {
		t.Fatalf("unexpected agent name %q", agent.Name)
	}

	// 每个客户一个归档目录
	var folder AgentFolder
	if err := env.db.First(&folder, "client_id = ?", env.client.ID).Error; err != nil {
		t.Fatalf("folder missing: %v", err)
	}
	if folder.Name != "Acme Varejo - Auto-generated Agents" {
		t.Fatalf("unexpected folder name %q", folder.Name)
	}
}

func TestProcessJobSkipsDeactivatedTemplate(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	a := env.createTemplate(t, "Tpl A", true)
	b := env.createTemplate(t, "Tpl B", true)
	c := env.createTemplate(t, "Tpl C", true)

	job, err := env.svc.CreateJob(ctx, &CreateJobRequest{
		ClientID:    env.client.ID,
		TemplateIDs: []string{a.ID, b.ID, c.ID},
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	// B 在创建后、处理前被下线
	if err := env.db.Model(&catalog.AgentTemplate{}).Where("id = ?", b.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate template: %v", err)
	}

	if err := env.svc.ProcessJob(ctx, job.ID); err != nil {
		t.Fatalf("process job: %v", err)
	}

	done, _ := env.svc.GetJob(ctx, job.ID)
	if done.Status != JobStatusCompleted {
		t.Fatalf("template failure must not fail the job, got %s", done.Status)
	}
	if done.Progress != 100 {
		t.Fatalf("expected progress 100, got %d", done.Progress)
	}
	if len(done.GeneratedAgents) != 2 {
		t.Fatalf("expected A and C only, got %d agents", len(done.GeneratedAgents))
	}
}

func TestProcessJobFailsWhenProfileMissing(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	tpl := env.createTemplate(t, "Tpl A", true)
	job, err := env.svc.CreateJob(ctx, &CreateJobRequest{
		ClientID:    env.client.ID,
		TemplateIDs: []string{tpl.ID},
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	// 画像在处理前被删除
	if err := env.db.Delete(&organization.OrganizationProfile{}, "id = ?", env.profile.ID).Error; err != nil {
		t.Fatalf("delete profile: %v", err)
	}

	if err := env.svc.ProcessJob(ctx, job.ID); err != nil {
		t.Fatalf("processing errors must stay on the job record, got %v", err)
	}

	failed, _ := env.svc.GetJob(ctx, job.ID)
	if failed.Status != JobStatusFailed {
		t.Fatalf("expected failed, got %s", failed.Status)
	}
	if failed.ErrorMessage == "" {
		t.Fatal("expected error_message to be set")
	}
	if len(failed.GeneratedAgents) != 0 {
		t.Fatalf("expected no generated agents, got %d", len(failed.GeneratedAgents))
	}
	if failed.CompletedAt != nil {
		t.Fatal("failed jobs must not set completed_at")
	}
}

func TestProcessJobRejectsTerminalJob(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	tpl := env.createTemplate(t, "Tpl A", true)
	job, err := env.svc.CreateJob(ctx, &CreateJobRequest{
		ClientID:    env.client.ID,
		TemplateIDs: []string{tpl.ID},
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	if err := env.svc.ProcessJob(ctx, job.ID); err != nil {
		t.Fatalf("first run: %v", err)
	}

	first, _ := env.svc.GetJob(ctx, job.ID)

	err = env.svc.ProcessJob(ctx, job.ID)
	if !errors.Is(err, ErrJobFinished) {
		t.Fatalf("expected ErrJobFinished, got %v", err)
	}

	// 终态任务重复读取结果不变
	second, _ := env.svc.GetJob(ctx, job.ID)
	if first.Status != second.Status || first.Progress != second.Progress ||
		len(first.GeneratedAgents) != len(second.GeneratedAgents) {
		t.Fatal("terminal job must not mutate after rejection")
	}
}

func TestProcessJobProgressMonotone(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	a := env.createTemplate(t, "Tpl A", true)
	b := env.createTemplate(t, "Tpl B", true)
	c := env.createTemplate(t, "Tpl C", true)

	job, err := env.svc.CreateJob(ctx, &CreateJobRequest{
		ClientID:    env.client.ID,
		TemplateIDs: []string{a.ID, b.ID, c.ID},
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	// 每次模板查询时从库里读一次任务进度，模拟外部轮询
	var observed []int
	hooked := &hookedProvider{
		inner: env.templates,
		onGet: func(string) {
			var mid AgentGenerationJob
			if err := env.db.First(&mid, "id = ?", job.ID).Error; err == nil {
				observed = append(observed, mid.Progress)
			}
		},
	}
	svc := NewService(env.db, hooked, env.profiles, env.clients)

	if err := svc.ProcessJob(ctx, job.ID); err != nil {
		t.Fatalf("process job: %v", err)
	}

	if len(observed) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(observed))
	}
	// 20 → 43 → 66，期间必须单调不减且已持久化
	want := []int{20, 43, 66}
	for i, progress := range observed {
		if progress != want[i] {
			t.Fatalf("expected observed progress %v, got %v", want, observed)
		}
	}

	done, _ := env.svc.GetJob(ctx, job.ID)
	if done.Progress != 100 {
		t.Fatalf("expected final progress 100, got %d", done.Progress)
	}
}

func TestProcessJobReadsProfileOnce(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	a := env.createTemplate(t, "Tpl A", true)
	b := env.createTemplate(t, "Tpl B", true)

	job, err := env.svc.CreateJob(ctx, &CreateJobRequest{
		ClientID:    env.client.ID,
		TemplateIDs: []string{a.ID, b.ID},
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	// 第一个模板处理时删除画像：任务开始时已读入，后续模板不受影响
	deleted := false
	hooked := &hookedProvider{
		inner: env.templates,
		onGet: func(string) {
			if !deleted {
				env.db.Delete(&organization.OrganizationProfile{}, "id = ?", env.profile.ID)
				deleted = true
			}
		},
	}
	svc := NewService(env.db, hooked, env.profiles, env.clients)

	if err := svc.ProcessJob(ctx, job.ID); err != nil {
		t.Fatalf("process job: %v", err)
	}

	done, _ := env.svc.GetJob(ctx, job.ID)
	if done.Status != JobStatusCompleted {
		t.Fatalf("profile snapshot should carry the job, got %s (%s)", done.Status, done.ErrorMessage)
	}
	if len(done.GeneratedAgents) != 2 {
		t.Fatalf("expected 2 agents, got %d", len(done.GeneratedAgents))
	}
}

func TestProcessJobAllTemplatesFailStillCompletes(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	a := env.createTemplate(t, "Tpl A", true)
	b := env.createTemplate(t, "Tpl B", true)

	job, err := env.svc.CreateJob(ctx, &CreateJobRequest{
		ClientID:    env.client.ID,
		TemplateIDs: []string{a.ID, b.ID},
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	// 所有模板在处理前都被下线
	if err := env.db.Model(&catalog.AgentTemplate{}).Where("1 = 1").Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate templates: %v", err)
	}

	if err := env.svc.ProcessJob(ctx, job.ID); err != nil {
		t.Fatalf("process job: %v", err)
	}

	done, _ := env.svc.GetJob(ctx, job.ID)
	if done.Status != JobStatusCompleted {
		t.Fatalf("all-skip run must still complete, got %s", done.Status)
	}
	if len(done.GeneratedAgents) != 0 {
		t.Fatalf("expected empty generated_agents, got %d", len(done.GeneratedAgents))
	}
	if done.Progress != 100 {
		t.Fatalf("expected progress 100, got %d", done.Progress)
	}
}

func TestValidateAgentVersioning(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	tpl := env.createTemplate(t, "Tpl A", true)
	job, err := env.svc.CreateJob(ctx, &CreateJobRequest{
		ClientID:    env.client.ID,
		TemplateIDs: []string{tpl.ID},
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	if err := env.svc.ProcessJob(ctx, job.ID); err != nil {
		t.Fatalf("process job: %v", err)
	}
	done, _ := env.svc.GetJob(ctx, job.ID)
	agentID := done.GeneratedAgents[0]

	name := "Atendente Acme"
	updated, err := env.svc.ValidateAgent(ctx, agentID, &ValidateAgentRequest{
		Approved:      true,
		Name:          &name,
		ConfigChanges: map[string]any{"temperature": 0.2},
	})
	if err != nil {
		t.Fatalf("validate agent: %v", err)
	}

	if updated.Name != "Atendente Acme" {
		t.Fatalf("expected renamed agent, got %q", updated.Name)
	}
	if updated.ActiveConfiguration == nil || updated.ActiveConfiguration.Version != 2 {
		t.Fatalf("expected active version 2, got %+v", updated.ActiveConfiguration)
	}
	if updated.ActiveConfiguration.Configuration["temperature"] == nil {
		t.Fatal("config change missing from new version")
	}

	// 旧版本保留但停用；任意时刻只有一个激活版本
	var versions []AgentConfiguration
	if err := env.db.Where("agent_id = ?", agentID).Order("version ASC").Find(&versions).Error; err != nil {
		t.Fatalf("load versions: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(versions))
	}
	if versions[0].Version != 1 || versions[0].IsActive {
		t.Fatalf("version 1 should be kept but inactive: %+v", versions[0])
	}
	activeCount := 0
	for _, v := range versions {
		if v.IsActive {
			activeCount++
		}
	}
	if activeCount != 1 {
		t.Fatalf("expected exactly one active version, got %d", activeCount)
	}
}

func TestValidateAgentRejection(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	tpl := env.createTemplate(t, "Tpl A", true)
	job, err := env.svc.CreateJob(ctx, &CreateJobRequest{
		ClientID:    env.client.ID,
		TemplateIDs: []string{tpl.ID},
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	if err := env.svc.ProcessJob(ctx, job.ID); err != nil {
		t.Fatalf("process job: %v", err)
	}
	done, _ := env.svc.GetJob(ctx, job.ID)

	rejected, err := env.svc.ValidateAgent(ctx, done.GeneratedAgents[0], &ValidateAgentRequest{Approved: false})
	if err != nil {
		t.Fatalf("reject agent: %v", err)
	}
	if rejected.IsActive {
		t.Fatal("rejected agent should be deactivated")
	}
}
