// Package migration runs and tracks schema migrations in batches.
//
// Migrations register themselves from init() in database/migrations and are
// executed in registration order:
//
//	func init() {
//	    migration.Register("20260115000000_create_orders_table", &CreateOrdersTable{})
//	}
//
// CLI: orders migrate | migrate:rollback | migrate:status
package migration

import (
	"fmt"
	"sort"
	"time"

	"github.com/buy01/order-service/pkg/logger"
	"gorm.io/gorm"
)

// Migration is the interface every migration must implement.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

// migrationRecord is the GORM model stored in the tracking table.
type migrationRecord struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (migrationRecord) TableName() string { return "order_service_migrations" }

type registeredMigration struct {
	name string
	m    Migration
}

var registry []registeredMigration

// Register adds a migration to the global registry. Use a timestamp-prefixed
// name so registration order matches chronology.
func Register(name string, m Migration) {
	registry = append(registry, registeredMigration{name: name, m: m})
}

// Runner executes and tracks migrations.
type Runner struct {
	db *gorm.DB
}

// New creates a Runner backed by the provided gorm.DB.
func New(db *gorm.DB) *Runner {
	return &Runner{db: db}
}

func (r *Runner) ensureTable() error {
	return r.db.AutoMigrate(&migrationRecord{})
}

func (r *Runner) ranSet() (map[string]migrationRecord, error) {
	var ran []migrationRecord
	if err := r.db.Find(&ran).Error; err != nil {
		return nil, err
	}

	set := make(map[string]migrationRecord, len(ran))
	for _, rec := range ran {
		set[rec.Name] = rec
	}
	return set, nil
}

// Run applies every pending migration as one new batch.
func (r *Runner) Run() error {
	if err := r.ensureTable(); err != nil {
		return err
	}

	ran, err := r.ranSet()
	if err != nil {
		return err
	}

	batch := 1
	for _, rec := range ran {
		if rec.Batch >= batch {
			batch = rec.Batch + 1
		}
	}

	applied := 0
	for _, reg := range registry {
		if _, ok := ran[reg.name]; ok {
			continue
		}

		logger.Info("migrating", "name", reg.name)
		if err := reg.m.Up(r.db); err != nil {
			return fmt.Errorf("migration %s: %w", reg.name, err)
		}
		if err := r.db.Create(&migrationRecord{Name: reg.name, Batch: batch}).Error; err != nil {
			return err
		}
		applied++
	}

	if applied == 0 {
		fmt.Println("Nothing to migrate.")
	} else {
		fmt.Printf("Applied %d migration(s) in batch %d.\n", applied, batch)
	}
	return nil
}

// Rollback reverses the most recent batch, newest migration first.
func (r *Runner) Rollback() error {
	if err := r.ensureTable(); err != nil {
		return err
	}

	var last []migrationRecord
	if err := r.db.Order("batch desc, id desc").Find(&last).Error; err != nil {
		return err
	}
	if len(last) == 0 {
		fmt.Println("Nothing to roll back.")
		return nil
	}

	batch := last[0].Batch
	byName := make(map[string]Migration, len(registry))
	for _, reg := range registry {
		byName[reg.name] = reg.m
	}

	for _, rec := range last {
		if rec.Batch != batch {
			break
		}
		m, ok := byName[rec.Name]
		if !ok {
			return fmt.Errorf("migration %s is recorded but not registered", rec.Name)
		}

		logger.Info("rolling back", "name", rec.Name)
		if err := m.Down(r.db); err != nil {
			return fmt.Errorf("rollback %s: %w", rec.Name, err)
		}
		if err := r.db.Delete(&migrationRecord{}, "name = ?", rec.Name).Error; err != nil {
			return err
		}
	}

	return nil
}

// Status prints each registered migration with its run state.
func (r *Runner) Status() error {
	if err := r.ensureTable(); err != nil {
		return err
	}

	ran, err := r.ranSet()
	if err != nil {
		return err
	}

	names := make([]string, 0, len(registry))
	for _, reg := range registry {
		names = append(names, reg.name)
	}
	sort.Strings(names)

	for _, name := range names {
		if rec, ok := ran[name]; ok {
			fmt.Printf("  [ran, batch %d] %s\n", rec.Batch, name)
		} else {
			fmt.Printf("  [pending]      %s\n", name)
		}
	}
	return nil
}
