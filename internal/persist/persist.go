// Package persist is the host-provided durability layer: a Postgres snapshot
// of the in-memory blueprint and assignment stores. The stores stay
// authoritative at runtime; this package hydrates them at boot and records
// each successful mutation write-through.
package persist

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"finboard/internal/dashboard"
)

// Connect establishes a PostgreSQL backed GORM session for the snapshot store.
func Connect(ctx context.Context, dsn string) (*gorm.DB, error) {
	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return database, nil
}

// Close releases the underlying sql.DB resources.
func Close(database *gorm.DB) error {
	sqlDB, err := database.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate performs schema migrations for the snapshot tables.
func Migrate(ctx context.Context, database *gorm.DB) error {
	return database.WithContext(ctx).AutoMigrate(
		&blueprintRecord{},
		&assignmentRecord{},
	)
}

// Load hydrates the stores from the persisted snapshot.
func Load(ctx context.Context, database *gorm.DB, blueprints *dashboard.BlueprintStore, assignments *dashboard.AssignmentStore) error {
	var bpRecords []blueprintRecord
	if err := database.WithContext(ctx).Order("id ASC").Find(&bpRecords).Error; err != nil {
		return fmt.Errorf("load blueprints: %w", err)
	}
	for _, record := range bpRecords {
		bp, err := record.toDomain()
		if err != nil {
			return err
		}
		if err := blueprints.Add(bp); err != nil {
			return fmt.Errorf("restore blueprint %s: %w", bp.ID, err)
		}
	}

	var aRecords []assignmentRecord
	if err := database.WithContext(ctx).Order("created_at ASC, id ASC").Find(&aRecords).Error; err != nil {
		return fmt.Errorf("load assignments: %w", err)
	}
	for _, record := range aRecords {
		if err := assignments.Restore(record.toDomain()); err != nil {
			return fmt.Errorf("restore assignment %s: %w", record.ID, err)
		}
	}
	return nil
}

// Recorder mirrors successful store mutations into the snapshot tables.
type Recorder struct {
	db *gorm.DB
}

// NewRecorder wraps a connected database handle.
func NewRecorder(database *gorm.DB) *Recorder {
	return &Recorder{db: database}
}

// SaveBlueprint upserts a blueprint row.
func (r *Recorder) SaveBlueprint(ctx context.Context, bp dashboard.Blueprint) error {
	record, err := toBlueprintRecord(bp)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&record).Error
}

// DeleteBlueprint removes a blueprint row. Missing rows are not an error;
// the in-memory store already validated existence.
func (r *Recorder) DeleteBlueprint(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&blueprintRecord{}, "id = ?", id).Error
}

// SaveAssignment upserts an assignment row.
func (r *Recorder) SaveAssignment(ctx context.Context, a dashboard.Assignment) error {
	record := toAssignmentRecord(a)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&record).Error
}

// DeleteAssignment removes an assignment row.
func (r *Recorder) DeleteAssignment(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&assignmentRecord{}, "id = ?", id).Error
}
