package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Supported SQL drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// collectionRow holds one whole collection as a JSON array.
type collectionRow struct {
	Name      string         `gorm:"primaryKey;size:100"`
	Records   datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName sets the database table name.
func (collectionRow) TableName() string { return "collections" }

// SQLBackend stores collections in a relational database through GORM, one
// row per collection.
type SQLBackend struct {
	db *gorm.DB
}

// OpenSQL connects to the database identified by driver and dsn and makes
// sure the collections table exists.
func OpenSQL(driver, dsn string) (*SQLBackend, error) {
	const op = "OpenSQL"

	dialector, err := dialectorFor(driver, dsn)
	if err != nil {
		return nil, NewStoreError(op, "", err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, NewStoreError(op, "", fmt.Errorf("failed to open %s database: %w", driver, err))
	}

	return NewSQLBackend(db)
}

// NewSQLBackend wraps an existing GORM handle and migrates the collections table.
func NewSQLBackend(db *gorm.DB) (*SQLBackend, error) {
	if err := db.AutoMigrate(&collectionRow{}); err != nil {
		return nil, NewStoreError("NewSQLBackend", "", fmt.Errorf("failed to migrate collections table: %w", err))
	}
	return &SQLBackend{db: db}, nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	if dsn == "" {
		return nil, errors.New("empty database DSN")
	}

	switch strings.ToLower(driver) {
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverMySQL:
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported SQL driver %q", driver)
	}
}

func (b *SQLBackend) Get(ctx context.Context, name string) ([]Record, bool, error) {
	const op = "Get"

	var row collectionRow
	err := b.db.WithContext(ctx).Where("name = ?", name).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, NewStoreError(op, name, err)
	}

	records, err := DecodeRecords(row.Records)
	if err != nil {
		return nil, false, NewStoreError(op, name, err)
	}
	return records, true, nil
}

func (b *SQLBackend) Put(ctx context.Context, name string, records []Record) error {
	const op = "Put"

	if records == nil {
		records = []Record{}
	}
	encoded, err := json.Marshal(records)
	if err != nil {
		return NewStoreError(op, name, fmt.Errorf("failed to encode records: %w", err))
	}

	row := collectionRow{
		Name:    name,
		Records: datatypes.JSON(encoded),
	}

	err = b.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return NewStoreError(op, name, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (b *SQLBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return NewStoreError("Close", "", err)
	}
	return sqlDB.Close()
}
