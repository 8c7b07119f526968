package datastore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phibia/phibia-go/internal/errors"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowQueryThreshold defines the duration after which a query is
// considered slow and logged at warn level.
const DefaultSlowQueryThreshold = 1 * time.Second

// slogGormLogger adapts a slog.Logger to the GORM logger interface.
type slogGormLogger struct {
	logger        *slog.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger(logger *slog.Logger) gormlogger.Interface {
	return &slogGormLogger{
		logger:        logger,
		level:         gormlogger.Warn,
		slowThreshold: DefaultSlowQueryThreshold,
	}
}

func (l *slogGormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *slogGormLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info && l.logger != nil {
		l.logger.Info(fmt.Sprintf(msg, args...))
	}
}

func (l *slogGormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn && l.logger != nil {
		l.logger.Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *slogGormLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error && l.logger != nil {
		l.logger.Error(fmt.Sprintf(msg, args...))
	}
}

func (l *slogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.logger == nil || l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.logger.Error("query failed", "error", err, "sql", sql, "rows", rows, "elapsed_ms", elapsed.Milliseconds())
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.logger.Warn("slow query", "sql", sql, "rows", rows, "elapsed_ms", elapsed.Milliseconds())
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.logger.Debug("query", "sql", sql, "rows", rows, "elapsed_ms", elapsed.Milliseconds())
	}
}

// performAutoMigration runs the schema migration for all models and seeds
// the sentinel rows the predict pipeline depends on.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string, logger *slog.Logger) error {
	if err := db.AutoMigrate(&User{}, &Species{}, &Location{}, &Capture{}); err != nil {
		return fmt.Errorf("failed to auto-migrate %s database: %w", dbType, err)
	}

	if debug && logger != nil {
		logger.Debug("Database connection established", "type", dbType, "connection", connectionInfo)
	}

	return seedSentinelRows(db, logger)
}

// seedSentinelRows creates the guest user and the unknown location when they
// are missing. Seeding keeps a fresh database usable; a guest row removed at
// runtime still surfaces as a precondition failure on the predict path.
func seedSentinelRows(db *gorm.DB, logger *slog.Logger) error {
	guest := User{
		Name:         GuestUserName,
		Email:        "invitado@phibia.local",
		PasswordHash: "!", // never a valid bcrypt hash, login impossible
	}
	if err := db.Where(&User{Name: GuestUserName}).FirstOrCreate(&guest).Error; err != nil {
		return fmt.Errorf("failed to seed guest user: %w", err)
	}

	unknown := Location{Description: UnknownLocationDesc}
	if err := db.Where(&Location{Description: UnknownLocationDesc}).FirstOrCreate(&unknown).Error; err != nil {
		return fmt.Errorf("failed to seed unknown location: %w", err)
	}

	if logger != nil {
		logger.Debug("Sentinel rows present", "guest_user_id", guest.ID, "unknown_location_id", unknown.ID)
	}
	return nil
}
