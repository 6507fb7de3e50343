// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
// - base.go: shared aggregate columns (id, tenant, timestamps, version)
// - templating.go: document templates and the per-company variable registry
package models
