package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/factorycraft/factory-economy/internal/infrastructure/config"
)

// queryLogger sends gorm's statement log to slog
type queryLogger struct {
	log   *slog.Logger
	level logger.LogLevel
	all   bool
	slow  time.Duration
}

func newQueryLogger(log *slog.Logger, cfg *config.DatabaseConfig) logger.Interface {
	if log == nil || cfg.LogQueries == "" || cfg.LogQueries == "off" {
		return logger.Default.LogMode(logger.Silent)
	}
	return &queryLogger{
		log:   log.With("component", "database"),
		level: logger.Warn,
		all:   cfg.LogQueries == "all",
		slow:  cfg.SlowQueryThreshold,
	}
}

func (l *queryLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *queryLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Info {
		l.log.InfoContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *queryLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Warn {
		l.log.WarnContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *queryLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Error {
		l.log.ErrorContext(ctx, fmt.Sprintf(msg, args...))
	}
}

// Trace logs failures, then slow statements, then (in "all" mode) everything else.
// Record-not-found is a normal lookup miss and is never logged as a failure.
func (l *queryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= logger.Error:
		sql, rows := fc()
		l.log.ErrorContext(ctx, "query failed", "sql", sql, "rows", rows, "elapsed", elapsed.String(), "error", err)
	case l.slow > 0 && elapsed > l.slow && l.level >= logger.Warn:
		sql, rows := fc()
		l.log.WarnContext(ctx, "slow query", "sql", sql, "rows", rows, "elapsed", elapsed.String(), "threshold", l.slow.String())
	case l.all:
		sql, rows := fc()
		l.log.DebugContext(ctx, "query", "sql", sql, "rows", rows, "elapsed", elapsed.String())
	}
}
