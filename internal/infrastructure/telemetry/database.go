package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/shopdesk/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const slowQueryCallback = "telemetry:slow_query"

type queryStartKey struct{}

// InstrumentDB registers otelgorm spans (when database tracing is on), a
// slow-statement span event and connection pool gauges on db
func InstrumentDB(db *gorm.DB, cfg config.TelemetryConfig, driver string, meter metric.Meter, logger *zap.Logger) error {
	if cfg.Enabled && cfg.DBTraceEnabled {
		opts := []otelgorm.Option{
			otelgorm.WithDBName(driver),
			otelgorm.WithAttributes(attribute.String("db.driver", driver)),
		}
		if !cfg.DBLogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return fmt.Errorf("register otelgorm: %w", err)
		}
		if err := registerSlowQueryCallbacks(db, cfg.DBSlowQueryThresh); err != nil {
			return err
		}
		logger.Info("Database tracing enabled",
			zap.Bool("full_sql", cfg.DBLogFullSQL),
			zap.Duration("slow_query_threshold", cfg.DBSlowQueryThresh),
		)
	}
	return registerPoolMetrics(db, meter)
}

func registerSlowQueryCallbacks(db *gorm.DB, threshold time.Duration) error {
	if threshold <= 0 {
		return nil
	}
	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) {
		ctx := tx.Statement.Context
		if ctx == nil {
			return
		}
		start, ok := ctx.Value(queryStartKey{}).(time.Time)
		if !ok {
			return
		}
		if elapsed := time.Since(start); elapsed >= threshold {
			trace.SpanFromContext(ctx).AddEvent("slow_query", trace.WithAttributes(
				attribute.String("db.table", tx.Statement.Table),
				attribute.Int64("db.duration_ms", elapsed.Milliseconds()),
			))
		}
	}

	cb := db.Callback()
	registrations := []struct {
		name     string
		register func(string, func(*gorm.DB)) error
		fn       func(*gorm.DB)
	}{
		{"create:before", cb.Create().Before("gorm:create").Register, before},
		{"create:after", cb.Create().After("gorm:create").Register, after},
		{"query:before", cb.Query().Before("gorm:query").Register, before},
		{"query:after", cb.Query().After("gorm:query").Register, after},
		{"update:before", cb.Update().Before("gorm:update").Register, before},
		{"update:after", cb.Update().After("gorm:update").Register, after},
		{"delete:before", cb.Delete().Before("gorm:delete").Register, before},
		{"delete:after", cb.Delete().After("gorm:delete").Register, after},
		{"raw:before", cb.Raw().Before("gorm:raw").Register, before},
		{"raw:after", cb.Raw().After("gorm:raw").Register, after},
	}
	for _, r := range registrations {
		if err := r.register(slowQueryCallback+":"+r.name, r.fn); err != nil {
			return fmt.Errorf("register %s callback: %w", r.name, err)
		}
	}
	return nil
}

// registerPoolMetrics reports database/sql pool statistics on every collection
func registerPoolMetrics(db *gorm.DB, meter metric.Meter) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}

	open, err := meter.Int64ObservableGauge("db.pool.connections",
		metric.WithDescription("Database connections by state"))
	if err != nil {
		return err
	}
	maxOpen, err := meter.Int64ObservableGauge("db.pool.max_open",
		metric.WithDescription("Configured maximum open connections"))
	if err != nil {
		return err
	}
	waits, err := meter.Int64ObservableCounter("db.pool.wait_count",
		metric.WithDescription("Total connections waited for"))
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(open, int64(stats.InUse), metric.WithAttributes(attribute.String("state", "in_use")))
		o.ObserveInt64(open, int64(stats.Idle), metric.WithAttributes(attribute.String("state", "idle")))
		o.ObserveInt64(maxOpen, int64(stats.MaxOpenConnections))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, open, maxOpen, waits)
	return err
}
