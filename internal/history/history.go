// Package history keeps a sqlite ledger of written reports. Every entry
// carries the SHA-256 digest of the report bytes, so a regenerated report
// shows whether its content changed under the same window.
package history

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/agentstation/quorum"
	"github.com/agentstation/quorum/pkg/errors"
	"github.com/agentstation/quorum/pkg/logging"
)

// MemoryPath opens a private in-memory ledger.
const MemoryPath = ":memory:"

// Run is one written report.
type Run struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	RunID     string    `json:"run_id" gorm:"uniqueIndex"`
	Kind      string    `json:"kind" gorm:"index"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Path      string    `json:"path" gorm:"index"`
	Digest    string    `json:"digest"`
	Changed   bool      `json:"changed"`
	Sources   int       `json:"sources"`
	Rows      int       `json:"rows"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the run ledger.
type Store struct {
	db     *gorm.DB
	logger *zerolog.Logger
}

// Open opens or creates the ledger at path and migrates its schema.
func Open(path string, logger *zerolog.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	// one connection keeps an in-memory database alive across queries
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Run{}); err != nil {
		_ = sqlDB.Close()
		return nil, errors.WrapIO("migrate", path, err)
	}
	return &Store{db: db, logger: logging.OrNop(logger)}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Record stores a written report.
func (s *Store) Record(ctx context.Context, ev quorum.ReportEvent) (*Run, error) {
	sum := sha256.Sum256(ev.Content)
	runID := ev.RunID
	if runID == "" {
		runID = uuid.New().String()
	}
	run := &Run{
		RunID:     runID,
		Kind:      string(ev.Kind),
		Start:     ev.Start,
		End:       ev.End,
		Path:      ev.Path,
		Digest:    hex.EncodeToString(sum[:]),
		Sources:   ev.Sources,
		Rows:      ev.Rows,
		CreatedAt: ev.CreatedAt,
	}

	var prev Run
	err := s.db.WithContext(ctx).Where("path = ?", ev.Path).Order("id DESC").First(&prev).Error
	switch {
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		run.Changed = true
	case err != nil:
		return nil, errors.WrapIO("read", "history", err)
	default:
		run.Changed = prev.Digest != run.Digest
	}

	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, errors.WrapIO("write", "history", err)
	}
	s.logger.Debug().
		Str("run_id", run.RunID).
		Str("kind", run.Kind).
		Str("path", run.Path).
		Bool("changed", run.Changed).
		Msg("Run recorded")
	return run, nil
}

// Last returns the latest run of kind.
func (s *Store) Last(ctx context.Context, kind quorum.Kind) (*Run, error) {
	var run Run
	err := s.db.WithContext(ctx).Where("kind = ?", string(kind)).Order("id DESC").First(&run).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NewNotFoundError("run", string(kind))
	}
	if err != nil {
		return nil, errors.WrapIO("read", "history", err)
	}
	return &run, nil
}

// List returns up to limit runs, newest first. A non-positive limit returns
// every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	q := s.db.WithContext(ctx).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var runs []Run
	if err := q.Find(&runs).Error; err != nil {
		return nil, errors.WrapIO("read", "history", err)
	}
	return runs, nil
}

// Hook returns a report hook that records every written report. Failures are
// logged; a report on disk is never rolled back.
func (s *Store) Hook(ctx context.Context) quorum.ReportWrittenHook {
	return func(ev quorum.ReportEvent) {
		if _, err := s.Record(ctx, ev); err != nil {
			s.logger.Warn().Err(err).Str("path", ev.Path).Msg("Failed to record run")
		}
	}
}
