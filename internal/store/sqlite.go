package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/finsalud/finbot/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// Compile-time check that SQLiteStore implements CompanyStore.
var _ CompanyStore = (*SQLiteStore)(nil)

// SQLiteStore is a CompanyStore backed by a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) the SQLite database at the
// configured DSN and applies migrations.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run SQLite migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite company store ready", "path", cfg.DSN)

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) LoadAll() (map[string]models.Company, error) {
	companies, err := s.List()
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.Company, len(companies))
	for _, c := range companies {
		out[c.Name] = c
	}
	return out, nil
}

func (s *SQLiteStore) ReplaceAll(companies map[string]models.Company) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin snapshot replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM companies`); err != nil {
		return fmt.Errorf("clear companies: %w", err)
	}
	for _, c := range companies {
		analysisJSON, err := json.Marshal(c.Analysis)
		if err != nil {
			return fmt.Errorf("marshal analysis for %s: %w", c.Name, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO companies (name, sector, annual_value, profit, employees, assets, receivables, debt, registered_at, analysis)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.Name, c.Sector, c.AnnualValue, c.Profit, c.Employees, c.Assets, c.Receivables, c.Debt, c.RegisteredAt, string(analysisJSON),
		); err != nil {
			return fmt.Errorf("insert company %s: %w", c.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot replace: %w", err)
	}
	slog.Debug("SQLiteStore ReplaceAll succeeded", "count", len(companies))
	return nil
}

func (s *SQLiteStore) Save(company models.Company) error {
	if err := company.Validate(); err != nil {
		return err
	}
	analysisJSON, err := json.Marshal(company.Analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis for %s: %w", company.Name, err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO companies (name, sector, annual_value, profit, employees, assets, receivables, debt, registered_at, analysis)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		company.Name, company.Sector, company.AnnualValue, company.Profit, company.Employees,
		company.Assets, company.Receivables, company.Debt, company.RegisteredAt, string(analysisJSON),
	)
	if err != nil {
		slog.Error("SQLiteStore Save failed", "error", err, "name", company.Name)
		return fmt.Errorf("save company %s: %w", company.Name, err)
	}
	slog.Debug("SQLiteStore Save succeeded", "name", company.Name)
	return nil
}

func (s *SQLiteStore) Get(name string) (models.Company, error) {
	row := s.db.QueryRow(
		`SELECT name, sector, annual_value, profit, employees, assets, receivables, debt, registered_at, analysis
		 FROM companies WHERE name = ?`, name)
	c, err := scanCompanyRow(row)
	if err == sql.ErrNoRows {
		return models.Company{}, models.ErrCompanyNotFound
	}
	if err != nil {
		slog.Error("SQLiteStore Get failed", "error", err, "name", name)
		return models.Company{}, fmt.Errorf("get company %s: %w", name, err)
	}
	return c, nil
}

func (s *SQLiteStore) Delete(name string) error {
	if _, err := s.db.Exec(`DELETE FROM companies WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete company %s: %w", name, err)
	}
	return nil
}

func (s *SQLiteStore) List() ([]models.Company, error) {
	rows, err := s.db.Query(
		`SELECT name, sector, annual_value, profit, employees, assets, receivables, debt, registered_at, analysis
		 FROM companies ORDER BY name`)
	if err != nil {
		slog.Error("SQLiteStore List query failed", "error", err)
		return nil, fmt.Errorf("query companies: %w", err)
	}
	defer rows.Close()

	var companies []models.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate company rows: %w", err)
	}
	return companies, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite company store")
	return s.db.Close()
}
