package status

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// snapshotRecord is the GORM model backing gormSink, one row per
// recorded Snapshot. The snapshot itself is stored as a JSON blob
// rather than normalized columns -- it is a diagnostic archive, not a
// queryable operational table, so the schema should never need a
// migration when Snapshot grows a field.
type snapshotRecord struct {
	ID         string    `gorm:"primaryKey"`
	CapturedAt time.Time `gorm:"index"`
	Payload    string    `gorm:"type:jsonb"`
}

func (snapshotRecord) TableName() string { return "abstractionlayer_status_snapshots" }

// GormSinkConfig configures a gormSink.
type GormSinkConfig struct {
	// DSN is the Postgres connection string, e.g.
	// "host=localhost user=postgres dbname=alhost sslmode=disable".
	DSN string
}

// gormSink persists Snapshots to Postgres via GORM, grounded on the
// teacher's GORMStore (pkg/controlplane/store/gorm.go): open a
// dialector, configure a silent logger, AutoMigrate the model.
type gormSink struct {
	db *gorm.DB
}

// NewGormSink opens a Postgres connection and ensures the snapshot
// table exists.
func NewGormSink(cfg GormSinkConfig) (Sink, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("status: connect to postgres: %w", err)
	}
	if err := db.AutoMigrate(&snapshotRecord{}); err != nil {
		return nil, fmt.Errorf("status: migrate snapshot table: %w", err)
	}
	return &gormSink{db: db}, nil
}

func (s *gormSink) Record(ctx context.Context, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("status: marshal snapshot: %w", err)
	}
	rec := snapshotRecord{
		ID:         uuid.New().String(),
		CapturedAt: snap.CapturedAt,
		Payload:    string(payload),
	}
	return s.db.WithContext(ctx).Create(&rec).Error
}

func (s *gormSink) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
