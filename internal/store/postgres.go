package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	_ "embed"

	"github.com/finsalud/finbot/internal/models"
	_ "github.com/lib/pq"
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// Compile-time check that PostgresStore implements CompanyStore.
var _ CompanyStore = (*PostgresStore)(nil)

// PostgresStore is a CompanyStore backed by PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to PostgreSQL using the configured DSN and applies
// migrations.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run Postgres migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres company store ready")

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) LoadAll() (map[string]models.Company, error) {
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

func (s *PostgresStore) ReplaceAll(companies map[string]models.Company) error {
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
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			c.Name, c.Sector, c.AnnualValue, c.Profit, c.Employees, c.Assets, c.Receivables, c.Debt, c.RegisteredAt, string(analysisJSON),
		); err != nil {
			return fmt.Errorf("insert company %s: %w", c.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot replace: %w", err)
	}
	slog.Debug("PostgresStore ReplaceAll succeeded", "count", len(companies))
	return nil
}

func (s *PostgresStore) Save(company models.Company) error {
	if err := company.Validate(); err != nil {
		return err
	}
	analysisJSON, err := json.Marshal(company.Analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis for %s: %w", company.Name, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO companies (name, sector, annual_value, profit, employees, assets, receivables, debt, registered_at, analysis)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (name) DO UPDATE SET
		   sector = EXCLUDED.sector, annual_value = EXCLUDED.annual_value, profit = EXCLUDED.profit,
		   employees = EXCLUDED.employees, assets = EXCLUDED.assets, receivables = EXCLUDED.receivables,
		   debt = EXCLUDED.debt, registered_at = EXCLUDED.registered_at, analysis = EXCLUDED.analysis`,
		company.Name, company.Sector, company.AnnualValue, company.Profit, company.Employees,
		company.Assets, company.Receivables, company.Debt, company.RegisteredAt, string(analysisJSON),
	)
	if err != nil {
		slog.Error("PostgresStore Save failed", "error", err, "name", company.Name)
		return fmt.Errorf("save company %s: %w", company.Name, err)
	}
	slog.Debug("PostgresStore Save succeeded", "name", company.Name)
	return nil
}

func (s *PostgresStore) Get(name string) (models.Company, error) {
	row := s.db.QueryRow(
		`SELECT name, sector, annual_value, profit, employees, assets, receivables, debt, registered_at, analysis
		 FROM companies WHERE name = $1`, name)
	c, err := scanCompanyRow(row)
	if err == sql.ErrNoRows {
		return models.Company{}, models.ErrCompanyNotFound
	}
	if err != nil {
		slog.Error("PostgresStore Get failed", "error", err, "name", name)
		return models.Company{}, fmt.Errorf("get company %s: %w", name, err)
	}
	return c, nil
}

func (s *PostgresStore) Delete(name string) error {
	if _, err := s.db.Exec(`DELETE FROM companies WHERE name = $1`, name); err != nil {
		return fmt.Errorf("delete company %s: %w", name, err)
	}
	return nil
}

func (s *PostgresStore) List() ([]models.Company, error) {
	rows, err := s.db.Query(
		`SELECT name, sector, annual_value, profit, employees, assets, receivables, debt, registered_at, analysis
		 FROM companies ORDER BY name`)
	if err != nil {
		slog.Error("PostgresStore List query failed", "error", err)
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

// Close closes the PostgreSQL connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres company store")
	return s.db.Close()
}
