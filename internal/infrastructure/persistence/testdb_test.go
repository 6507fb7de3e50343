package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTemplatingTestDB creates an in-memory SQLite database with the templating tables
func setupTemplatingTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// every pooled connection to :memory: would see its own empty database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = db.Exec(`
		CREATE TABLE document_templates (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			document_type TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			content TEXT NOT NULL,
			placeholders TEXT,
			paper_size TEXT NOT NULL DEFAULT 'A4',
			orientation TEXT NOT NULL DEFAULT 'PORTRAIT',
			margin_top INTEGER NOT NULL DEFAULT 15,
			margin_right INTEGER NOT NULL DEFAULT 15,
			margin_bottom INTEGER NOT NULL DEFAULT 15,
			margin_left INTEGER NOT NULL DEFAULT 15,
			is_default INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'ACTIVE',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1
		)
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE template_variables (
			tenant_id TEXT NOT NULL,
			variable_key TEXT NOT NULL,
			label TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT 'text',
			required INTEGER NOT NULL DEFAULT 0,
			category TEXT NOT NULL,
			description TEXT,
			usage_count INTEGER NOT NULL DEFAULT 0,
			last_used_at DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			PRIMARY KEY (tenant_id, variable_key)
		)
	`).Error
	require.NoError(t, err)

	return db
}
