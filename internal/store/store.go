// Package store provides storage backends for finbot.
//
// It defines the CompanyStore interface with in-memory, SQLite and PostgreSQL
// implementations, and the in-process deduplication ledger for inbound
// messages. Persistence follows full-snapshot semantics: LoadAll reads the
// whole table, ReplaceAll rewrites it in one transaction, and Save replaces a
// single record wholesale.
package store

import (
	"strings"

	"github.com/finsalud/finbot/internal/models"
)

// Opts holds configuration options for store implementations.
type Opts struct {
	DSN string // database connection string (file path for SQLite, URL for Postgres)
}

// Option defines a configuration option for store creation.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// DetectDSNType determines whether a DSN refers to PostgreSQL or SQLite.
// PostgreSQL DSNs use URL schemes or key=value form; everything else is
// treated as a SQLite file path.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=") || strings.Contains(dsn, "dbname=") {
		return "postgres"
	}
	return "sqlite"
}

// CompanyStore is the durable table of registered companies.
// Implementations must be safe for concurrent use.
type CompanyStore interface {
	// LoadAll returns every stored company keyed by name.
	LoadAll() (map[string]models.Company, error)

	// ReplaceAll rewrites the full table with the given snapshot.
	ReplaceAll(companies map[string]models.Company) error

	// Save inserts or wholesale-replaces a single company by name.
	Save(company models.Company) error

	// Get returns the company with the exact (case-sensitive) name, or
	// models.ErrCompanyNotFound.
	Get(name string) (models.Company, error)

	// Delete removes a company by name. Deleting a missing name is not an error.
	Delete(name string) error

	// List returns all companies in unspecified order.
	List() ([]models.Company, error)

	// Close releases underlying resources.
	Close() error
}
