package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/shopdesk/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type probe struct {
	ID   uint
	Name string
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestInstrumentDB_PoolMetrics(t *testing.T) {
	reader, mp := newTestMeter(t)
	db := openTestDB(t)

	require.NoError(t, InstrumentDB(db, config.TelemetryConfig{}, config.DriverSQLite, mp.Meter("db"), zap.NewNop()))

	metrics := collect(t, reader)
	gauge, ok := metrics["db.pool.max_open"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(1), gauge.DataPoints[0].Value)

	conns, ok := metrics["db.pool.connections"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	assert.Len(t, conns.DataPoints, 2)
}

func TestInstrumentDB_Tracing(t *testing.T) {
	_, mp := newTestMeter(t)
	db := openTestDB(t)
	cfg := config.TelemetryConfig{
		Enabled:           true,
		DBTraceEnabled:    true,
		DBSlowQueryThresh: time.Nanosecond,
	}

	require.NoError(t, InstrumentDB(db, cfg, config.DriverSQLite, mp.Meter("db"), zap.NewNop()))

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).AutoMigrate(&probe{}))
	require.NoError(t, db.WithContext(ctx).Create(&probe{Name: "drill"}).Error)

	var got probe
	require.NoError(t, db.WithContext(ctx).First(&got).Error)
	assert.Equal(t, "drill", got.Name)
}
