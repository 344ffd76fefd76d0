package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var testDBSeq int

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testDBSeq++
	dsn := fmt.Sprintf("file:catalog_test_%d_%d?mode=memory&cache=shared", testDBSeq, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&AgentTemplate{}))
	return db
}

func TestSeedTemplatesOnce(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, EnsureSeedTemplates(db))

	var count int64
	require.NoError(t, db.Model(&AgentTemplate{}).Count(&count).Error)
	assert.EqualValues(t, 5, count)

	// 再次执行不会重复写入
	require.NoError(t, EnsureSeedTemplates(db))
	require.NoError(t, db.Model(&AgentTemplate{}).Count(&count).Error)
	assert.EqualValues(t, 5, count)
}

func TestListActiveFilters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	provider := NewDBProvider(db)

	require.NoError(t, EnsureSeedTemplates(db))

	retail := "retail"
	require.NoError(t, db.Create(&AgentTemplate{
		Name:      "Varejo Especial",
		AgentType: "sales",
		Industry:  &retail,
		IsActive:  true,
	}).Error)
	inactive := &AgentTemplate{
		Name:      "Desativado",
		AgentType: "sales",
		IsActive:  false,
	}
	require.NoError(t, db.Create(inactive).Error)
	// IsActive 为零值时会被 default:true 覆盖，需显式写回 false
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

	all, err := provider.ListActive(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 6)
	for _, tpl := range all {
		assert.True(t, tpl.IsActive, "inactive template %s leaked", tpl.Name)
	}

	// 行业过滤：命中指定行业的模板 + 全行业通用模板
	retailOnly, err := provider.ListActive(ctx, ListFilter{Industry: "retail"})
	require.NoError(t, err)
	assert.Len(t, retailOnly, 6)

	techOnly, err := provider.ListActive(ctx, ListFilter{Industry: "technology"})
	require.NoError(t, err)
	assert.Len(t, techOnly, 5)

	sales, err := provider.ListActive(ctx, ListFilter{Department: "sales"})
	require.NoError(t, err)
	require.NotEmpty(t, sales)
	for _, tpl := range sales {
		require.NotNil(t, tpl.Department)
		assert.Equal(t, "sales", *tpl.Department)
	}
}

func TestGetTemplateNotFound(t *testing.T) {
	provider := NewDBProvider(setupTestDB(t))

	_, err := provider.Get(context.Background(), "55555555-5555-5555-5555-555555555555")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}
