package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig configures query spans
type DBTracingConfig struct {
	Enabled            bool
	IncludeVariables   bool // bound query values on spans; development only
	SlowQueryThreshold time.Duration
	DBName             string
}

// DefaultDBTracingConfig returns tracing off with a 200ms slow query threshold
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowQueryThreshold: 200 * time.Millisecond,
		DBName:             "bizdocs",
	}
}

type queryStartKey struct{}

// RegisterDBTracing installs the otelgorm plugin and callbacks that tag its
// query spans with table, row count, errors and slow query markers
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) { annotateSpan(tx, cfg.SlowQueryThreshold) }

	cb := db.Callback()
	if err := errors.Join(
		cb.Create().Before("gorm:create").Register("bizdocs_trace:before_create", before),
		cb.Create().After("gorm:create").Register("bizdocs_trace:after_create", after),
		cb.Query().Before("gorm:query").Register("bizdocs_trace:before_query", before),
		cb.Query().After("gorm:query").Register("bizdocs_trace:after_query", after),
		cb.Update().Before("gorm:update").Register("bizdocs_trace:before_update", before),
		cb.Update().After("gorm:update").Register("bizdocs_trace:after_update", after),
		cb.Delete().Before("gorm:delete").Register("bizdocs_trace:before_delete", before),
		cb.Delete().After("gorm:delete").Register("bizdocs_trace:after_delete", after),
		cb.Row().Before("gorm:row").Register("bizdocs_trace:before_row", before),
		cb.Row().After("gorm:row").Register("bizdocs_trace:after_row", after),
		cb.Raw().Before("gorm:raw").Register("bizdocs_trace:before_raw", before),
		cb.Raw().After("gorm:raw").Register("bizdocs_trace:after_raw", after),
	); err != nil {
		return err
	}

	// Registered after the callbacks above so they wrap the otelgorm span.
	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.IncludeVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("include_variables", cfg.IncludeVariables),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThreshold))
	return nil
}

func annotateSpan(tx *gorm.DB, slowThreshold time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, tx.Error.Error())
		span.RecordError(tx.Error)
	}

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > slowThreshold {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
}
