package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/finsalud/finbot/internal/models"
)

// rowScanner abstracts sql.Row and sql.Rows for shared scanning code.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCompanyInto(sc rowScanner) (models.Company, error) {
	var c models.Company
	var analysisJSON string
	err := sc.Scan(
		&c.Name, &c.Sector, &c.AnnualValue, &c.Profit, &c.Employees,
		&c.Assets, &c.Receivables, &c.Debt, &c.RegisteredAt, &analysisJSON,
	)
	if err != nil {
		return c, err
	}
	if analysisJSON != "" && analysisJSON != "{}" {
		if err := json.Unmarshal([]byte(analysisJSON), &c.Analysis); err != nil {
			// A corrupt analysis column should not make the record unreadable.
			slog.Error("Failed to unmarshal stored analysis", "error", err, "name", c.Name)
			c.Analysis = models.Analysis{}
		}
	}
	return c, nil
}

// scanCompany scans a Company from sql.Rows.
func scanCompany(rows *sql.Rows) (models.Company, error) {
	c, err := scanCompanyInto(rows)
	if err != nil {
		return c, fmt.Errorf("scan company failed: %w", err)
	}
	return c, nil
}

// scanCompanyRow scans a Company from a single sql.Row, preserving
// sql.ErrNoRows for not-found detection.
func scanCompanyRow(row *sql.Row) (models.Company, error) {
	return scanCompanyInto(row)
}
