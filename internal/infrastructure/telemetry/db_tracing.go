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

// DBTracingConfig controls the otelgorm plugin and slow query reporting
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool
	SlowQueryThresh time.Duration
	DBName          string
}

const defaultSlowQueryThresh = 200 * time.Millisecond

type queryStartKey struct{}

// RegisterDBTracing installs otelgorm on db and adds callbacks that annotate
// spans with table and row counts and log queries slower than the threshold
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = defaultSlowQueryThresh
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	t := &queryTimer{thresh: cfg.SlowQueryThresh, logger: logger}
	cb := db.Callback()
	err := errors.Join(
		cb.Create().Before("gorm:create").Register("timing:before_create", t.before),
		cb.Query().Before("gorm:query").Register("timing:before_query", t.before),
		cb.Update().Before("gorm:update").Register("timing:before_update", t.before),
		cb.Delete().Before("gorm:delete").Register("timing:before_delete", t.before),
		cb.Row().Before("gorm:row").Register("timing:before_row", t.before),
		cb.Raw().Before("gorm:raw").Register("timing:before_raw", t.before),
		cb.Create().After("gorm:create").Register("timing:after_create", t.after),
		cb.Query().After("gorm:query").Register("timing:after_query", t.after),
		cb.Update().After("gorm:update").Register("timing:after_update", t.after),
		cb.Delete().After("gorm:delete").Register("timing:after_delete", t.after),
		cb.Row().After("gorm:row").Register("timing:after_row", t.after),
		cb.Raw().After("gorm:raw").Register("timing:after_raw", t.after),
	)
	if err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

type queryTimer struct {
	thresh time.Duration
	logger *zap.Logger
}

func (t *queryTimer) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (t *queryTimer) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	elapsed := time.Since(start)
	slow := ok && elapsed > t.thresh

	if slow {
		t.logger.Warn("Slow query",
			zap.String("table", db.Statement.Table),
			zap.Duration("elapsed", elapsed),
			zap.Int64("rows_affected", db.Statement.RowsAffected),
		)
	}

	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}
	if slow {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
}
