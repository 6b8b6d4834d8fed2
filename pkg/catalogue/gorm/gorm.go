// Package gorm is a catalogue backend on SQLite or PostgreSQL through GORM.
package gorm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/marmos91/dittotape/pkg/catalogue"
	"github.com/marmos91/dittotape/pkg/rao"
)

// DatabaseType selects the SQL backend.
type DatabaseType string

const (
	DatabaseTypeSQLite   DatabaseType = "sqlite"
	DatabaseTypePostgres DatabaseType = "postgres"
)

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the database file, or ":memory:".
	Path string `mapstructure:"path" yaml:"path"`
}

// PostgresConfig contains PostgreSQL-specific configuration.
type PostgresConfig struct {
	Host         string `mapstructure:"host" yaml:"host"`
	Port         int    `mapstructure:"port" yaml:"port"`
	Database     string `mapstructure:"database" yaml:"database"`
	User         string `mapstructure:"user" yaml:"user"`
	Password     string `mapstructure:"password" yaml:"password,omitempty"`
	SSLMode      string `mapstructure:"sslmode" yaml:"sslmode,omitempty"` // disable, require, verify-ca, verify-full
	MaxOpenConns int    `mapstructure:"max_open_conns" yaml:"max_open_conns,omitempty"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" yaml:"max_idle_conns,omitempty"`
}

// DSN returns the PostgreSQL connection string.
func (c *PostgresConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
		c.Host, c.Port, c.User, c.Password, c.Database)
	if c.SSLMode != "" {
		dsn += " sslmode=" + c.SSLMode
	}
	return dsn
}

// Config contains database configuration.
type Config struct {
	Type     DatabaseType   `mapstructure:"type" yaml:"type"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite" yaml:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
}

// ApplyDefaults fills in missing configuration with default values.
func (c *Config) ApplyDefaults() {
	if c.Type == "" {
		c.Type = DatabaseTypeSQLite
	}

	if c.Type == DatabaseTypeSQLite && c.SQLite.Path == "" {
		configDir := os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			homeDir, _ := os.UserHomeDir()
			configDir = filepath.Join(homeDir, ".config")
		}
		c.SQLite.Path = filepath.Join(configDir, "dittotape", "catalogue.db")
	}

	if c.Type == DatabaseTypePostgres {
		if c.Postgres.Port == 0 {
			c.Postgres.Port = 5432
		}
		if c.Postgres.SSLMode == "" {
			c.Postgres.SSLMode = "disable"
		}
		if c.Postgres.MaxOpenConns == 0 {
			c.Postgres.MaxOpenConns = 10
		}
		if c.Postgres.MaxIdleConns == 0 {
			c.Postgres.MaxIdleConns = 2
		}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Type {
	case DatabaseTypeSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite path is required")
		}
	case DatabaseTypePostgres:
		if c.Postgres.Host == "" {
			return fmt.Errorf("postgres host is required")
		}
		if c.Postgres.Database == "" {
			return fmt.Errorf("postgres database is required")
		}
		if c.Postgres.User == "" {
			return fmt.Errorf("postgres user is required")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Type)
	}
	return nil
}

// Store implements catalogue.Store with GORM.
type Store struct {
	db     *gorm.DB
	config Config
}

// New opens the database and migrates the schema.
func New(config Config) (*Store, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalogue database configuration: %w", err)
	}

	var dialector gorm.Dialector
	switch config.Type {
	case DatabaseTypeSQLite:
		path := config.SQLite.Path
		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		// WAL for concurrent readers; wait up to 5s on a locked database.
		dialector = sqlite.Open(path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	case DatabaseTypePostgres:
		dialector = postgres.Open(config.Postgres.DSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying database: %w", err)
	}
	switch config.Type {
	case DatabaseTypePostgres:
		sqlDB.SetMaxOpenConns(config.Postgres.MaxOpenConns)
		sqlDB.SetMaxIdleConns(config.Postgres.MaxIdleConns)
	case DatabaseTypeSQLite:
		// Every connection to ":memory:" is a separate database.
		if config.SQLite.Path == ":memory:" {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	if err := db.AutoMigrate(catalogue.AllModels()...); err != nil {
		return nil, fmt.Errorf("failed to run database migration: %w", err)
	}

	return &Store{db: db, config: config}, nil
}

// DB returns the underlying GORM connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) Type() catalogue.Type {
	if s.config.Type == DatabaseTypePostgres {
		return catalogue.TypePostgres
	}
	return catalogue.TypeSQLite
}

func (s *Store) MediaGeometry(ctx context.Context, vid string) (*rao.MediaGeometry, error) {
	return catalogue.ResolveGeometry(ctx, s, vid)
}

// ============================================================================
// Media Types
// ============================================================================

func (s *Store) CreateMediaType(ctx context.Context, mt *catalogue.MediaType) error {
	if err := mt.Validate(); err != nil {
		return err
	}
	return create(s.db, ctx, mt, catalogue.ErrDuplicateMediaType)
}

func (s *Store) GetMediaType(ctx context.Context, name string) (*catalogue.MediaType, error) {
	return getByField[catalogue.MediaType](s.db, ctx, "name", name, catalogue.ErrMediaTypeNotFound)
}

func (s *Store) ListMediaTypes(ctx context.Context) ([]*catalogue.MediaType, error) {
	return listAll[catalogue.MediaType](s.db, ctx, "name")
}

func (s *Store) DeleteMediaType(ctx context.Context, name string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&catalogue.Tape{}).Where("media_type = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return catalogue.ErrMediaTypeInUse
		}
		return deleteByField[catalogue.MediaType](tx, ctx, "name", name, catalogue.ErrMediaTypeNotFound)
	})
}

// ============================================================================
// Tapes
// ============================================================================

func (s *Store) CreateTape(ctx context.Context, tape *catalogue.Tape) error {
	if err := tape.Validate(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getByField[catalogue.MediaType](tx, ctx, "name", tape.MediaType, catalogue.ErrMediaTypeNotFound); err != nil {
			return err
		}
		return create(tx, ctx, tape, catalogue.ErrDuplicateTape)
	})
}

func (s *Store) GetTape(ctx context.Context, vid string) (*catalogue.Tape, error) {
	return getByField[catalogue.Tape](s.db, ctx, "vid", vid, catalogue.ErrTapeNotFound)
}

func (s *Store) ListTapes(ctx context.Context) ([]*catalogue.Tape, error) {
	return listAll[catalogue.Tape](s.db, ctx, "vid")
}

func (s *Store) DeleteTape(ctx context.Context, vid string) error {
	return deleteByField[catalogue.Tape](s.db, ctx, "vid", vid, catalogue.ErrTapeNotFound)
}

// ============================================================================
// Lifecycle
// ============================================================================

func (s *Store) Healthcheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}
	return sqlDB.Close()
}

// ============================================================================
// Generic GORM Helpers
// ============================================================================

func getByField[T any](db *gorm.DB, ctx context.Context, field string, value any, notFoundErr error) (*T, error) {
	var result T
	if err := db.WithContext(ctx).Where(field+" = ?", value).First(&result).Error; err != nil {
		return nil, convertNotFoundError(err, notFoundErr)
	}
	return &result, nil
}

// listAll returns every record of type T ordered by orderBy. The slice is
// empty, not nil, when there are none.
func listAll[T any](db *gorm.DB, ctx context.Context, orderBy string) ([]*T, error) {
	results := []*T{}
	if err := db.WithContext(ctx).Order(orderBy).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func create[T any](db *gorm.DB, ctx context.Context, entity *T, dupErr error) error {
	if err := db.WithContext(ctx).Create(entity).Error; err != nil {
		if isUniqueConstraintError(err) {
			return dupErr
		}
		return err
	}
	return nil
}

func deleteByField[T any](db *gorm.DB, ctx context.Context, field string, value any, notFoundErr error) error {
	var zero T
	result := db.WithContext(ctx).Where(field+" = ?", value).Delete(&zero)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFoundErr
	}
	return nil
}

// isUniqueConstraintError matches SQLite and PostgreSQL unique violations.
func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

func convertNotFoundError(err error, notFoundErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundErr
	}
	return err
}

var _ catalogue.Store = (*Store)(nil)
