package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("record not found")

// Database wraps the GORM DB handle and exposes repository helpers.
type Database struct {
	gorm *gorm.DB
	mu   sync.Mutex
}

// Open initializes the SQLite-backed database at the provided path.
func Open(path string, silent bool) (*Database, error) {
	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&FactCheck{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		logrus.WithError(err).Warn("enable WAL mode")
	}
	if err := db.Exec("PRAGMA synchronous=NORMAL").Error; err != nil {
		logrus.WithError(err).Warn("set synchronous pragma")
	}
	if err := applyIndexes(db); err != nil {
		return nil, fmt.Errorf("apply indexes: %w", err)
	}
	return &Database{gorm: db}, nil
}

// Close closes the underlying database connection.
func (d *Database) Close() error {
	if d == nil {
		return nil
	}
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveFactCheck inserts a history row, assigning an id when missing.
func (d *Database) SaveFactCheck(row *FactCheck) error {
	if row == nil {
		return errors.New("fact check is nil")
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.AnalysisTime.IsZero() {
		row.AnalysisTime = time.Now().UTC()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Create(row).Error
}

// GetFactCheck loads one history row.
func (d *Database) GetFactCheck(id string) (*FactCheck, error) {
	var row FactCheck
	if err := d.gorm.Where("id = ?", strings.TrimSpace(id)).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// FactCheckQuery encapsulates filters and pagination for listing history rows.
type FactCheckQuery struct {
	Classification string
	FallbackOnly   bool
	Offset         int
	Limit          int
}

// ListFactChecks returns history rows newest first, with the filtered total.
func (d *Database) ListFactChecks(opts FactCheckQuery) ([]FactCheck, int64, error) {
	base := d.gorm.Model(&FactCheck{})
	if label := strings.ToLower(strings.TrimSpace(opts.Classification)); label != "" {
		base = base.Where("classification = ?", label)
	}
	if opts.FallbackOnly {
		base = base.Where("fallback = ?", true)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := base.Order("analysis_time DESC").Order("created_at DESC").Offset(opts.Offset)
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	var rows []FactCheck
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Stats summarizes the stored history.
type Stats struct {
	Total             int64
	ByClassification  map[string]int64
	FallbackCount     int64
	AverageConfidence float64
}

// FactCheckStats aggregates counts per label and the fallback share.
func (d *Database) FactCheckStats() (Stats, error) {
	stats := Stats{ByClassification: make(map[string]int64)}

	var groups []struct {
		Classification string
		Total          int64
	}
	if err := d.gorm.Model(&FactCheck{}).
		Select("classification, COUNT(*) AS total").
		Group("classification").
		Scan(&groups).Error; err != nil {
		return Stats{}, err
	}
	for _, g := range groups {
		stats.ByClassification[g.Classification] = g.Total
		stats.Total += g.Total
	}

	if err := d.gorm.Model(&FactCheck{}).Where("fallback = ?", true).Count(&stats.FallbackCount).Error; err != nil {
		return Stats{}, err
	}

	if stats.Total > 0 {
		var avg struct{ Value float64 }
		if err := d.gorm.Model(&FactCheck{}).Select("AVG(confidence) AS value").Scan(&avg).Error; err != nil {
			return Stats{}, err
		}
		stats.AverageConfidence = avg.Value
	}
	return stats, nil
}

func applyIndexes(db *gorm.DB) error {
	stmts := []string{
		"CREATE INDEX IF NOT EXISTS idx_fact_checks_analysis_created ON fact_checks(analysis_time, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_fact_checks_classification_time ON fact_checks(classification, analysis_time)",
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
