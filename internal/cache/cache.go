// Package cache implements the no-match cache spec §5 describes as an
// external collaborator consulted before matching: a `(file-hash,
// pattern-hash)` hit short-circuits a file straight to "no match" without
// running the matcher over it again. Grounded on the teacher's
// db/sqlite.go Connect/Migrate pair, ported from gorm.io/driver/sqlite (CGO)
// to github.com/glebarez/sqlite (pure Go) so the cache has no C toolchain
// dependency, and from the teacher's Stage/Apply row-per-operation model to
// a single row-per-key no-match table.
package cache

import (
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/oxhq/gritql/internal/core"
)

// NoMatchEntry is the persisted row for one (file-hash, pattern-hash) pair
// already known to produce no match (spec §5 "a hit short-circuits to
// 'no match'"). SeenAt lets a host expire stale entries; Cache itself never
// reads it.
type NoMatchEntry struct {
	FileHash    string `gorm:"primaryKey;type:varchar(64)"`
	PatternHash string `gorm:"primaryKey;type:varchar(64)"`
	SeenAt      time.Time `gorm:"autoCreateTime"`
}

func (NoMatchEntry) TableName() string { return "no_match_entries" }

// Cache wraps a gorm.DB scoped to the no-match table.
type Cache struct {
	db *gorm.DB
}

// Open connects to the sqlite DSN (a file path, or ":memory:"), creating
// its directory and running the migration if needed, following the
// teacher's Connect's directory-creation-then-migrate sequence.
func Open(dsn string, debug bool) (*Cache, error) {
	if dsn != ":memory:" {
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, core.Wrap(core.KindRuntimeError, "cache: create db directory", err)
			}
		}
	}

	gcfg := &gorm.Config{}
	if debug {
		gcfg.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(sqlite.Open(dsn), gcfg)
	if err != nil {
		return nil, core.Wrap(core.KindRuntimeError, "cache: connect", err)
	}
	if err := db.AutoMigrate(&NoMatchEntry{}); err != nil {
		return nil, core.Wrap(core.KindRuntimeError, "cache: migrate", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying connection pool.
func (c *Cache) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Hit reports whether (fileHash, patternHash) is already known to produce
// no match.
func (c *Cache) Hit(fileHash, patternHash string) (bool, error) {
	var n int64
	err := c.db.Model(&NoMatchEntry{}).
		Where("file_hash = ? AND pattern_hash = ?", fileHash, patternHash).
		Count(&n).Error
	if err != nil {
		return false, core.Wrap(core.KindRuntimeError, "cache: lookup", err)
	}
	return n > 0, nil
}

// RecordNoMatch persists that (fileHash, patternHash) produced no match,
// so a subsequent run can skip re-matching the same pattern against an
// unchanged file. Idempotent: re-recording the same pair is a no-op.
func (c *Cache) RecordNoMatch(fileHash, patternHash string) error {
	entry := NoMatchEntry{FileHash: fileHash, PatternHash: patternHash}
	err := c.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error
	if err != nil {
		return core.Wrap(core.KindRuntimeError, "cache: record", err)
	}
	return nil
}

// Invalidate drops every entry for fileHash, used when a host knows a
// file's content changed under a path it had previously cached results for.
func (c *Cache) Invalidate(fileHash string) error {
	err := c.db.Where("file_hash = ?", fileHash).Delete(&NoMatchEntry{}).Error
	if err != nil {
		return core.Wrap(core.KindRuntimeError, "cache: invalidate", err)
	}
	return nil
}

