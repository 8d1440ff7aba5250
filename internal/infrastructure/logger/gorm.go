package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowQuery is used when no slow query threshold is configured
const DefaultSlowQuery = 200 * time.Millisecond

// QueryLogger routes gorm's statement log into zap. Statement lines carry the
// request, user and trace IDs found on the query context, so a slow stock
// update can be traced back to the sale that issued it.
type QueryLogger struct {
	log   *zap.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

var _ gormlogger.Interface = (*QueryLogger)(nil)

// NewQueryLogger creates a query logger for the application log level.
// slow <= 0 selects DefaultSlowQuery.
func NewQueryLogger(log *zap.Logger, appLevel string, slow time.Duration) *QueryLogger {
	if slow <= 0 {
		slow = DefaultSlowQuery
	}
	return &QueryLogger{log: log.Named("sql"), level: QueryLogLevel(appLevel), slow: slow}
}

// QueryLogLevel maps the application log level onto gorm's levels.
// Statements themselves are only traced at debug.
func QueryLogLevel(appLevel string) gormlogger.LogLevel {
	switch appLevel {
	case "debug":
		return gormlogger.Info
	case "error":
		return gormlogger.Error
	case "silent":
		return gormlogger.Silent
	default:
		return gormlogger.Warn
	}
}

// LogMode returns a copy at the given level
func (l *QueryLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *QueryLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.log.Sugar().Infof(msg, data...)
	}
}

func (l *QueryLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.log.Sugar().Warnf(msg, data...)
	}
}

func (l *QueryLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.log.Sugar().Errorf(msg, data...)
	}
}

// Trace logs failed statements at error, slow ones at warn and the rest at
// debug. Missing rows are not failures; repositories map them to NOT_FOUND.
func (l *QueryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	var (
		lvl  gormlogger.LogLevel
		msg  string
		fail = err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound)
	)
	switch {
	case fail:
		lvl, msg = gormlogger.Error, "Query failed"
	case elapsed >= l.slow:
		lvl, msg = gormlogger.Warn, "Slow query"
	default:
		lvl, msg = gormlogger.Info, "Query"
	}
	if l.level < lvl {
		return
	}

	sql, rows := fc()
	fields := append(queryContextFields(ctx),
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	)
	switch lvl {
	case gormlogger.Error:
		l.log.Error(msg, append(fields, zap.Error(err))...)
	case gormlogger.Warn:
		l.log.Warn(msg, append(fields, zap.Duration("threshold", l.slow))...)
	default:
		l.log.Debug(msg, fields...)
	}
}

func queryContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 6)
	for _, kv := range [][2]string{
		{"request_id", GetRequestID(ctx)},
		{"user_id", GetUserID(ctx)},
		{"trace_id", GetTraceID(ctx)},
	} {
		if kv[1] != "" {
			fields = append(fields, zap.String(kv[0], kv[1]))
		}
	}
	return fields
}
