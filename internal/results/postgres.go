package results

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"loan-workers/internal/common/database"
	"loan-workers/internal/common/errors"
)

// PostgresStore keeps records in a single results table with the full
// terminal state as a jsonb column.
type PostgresStore struct {
	client *database.PostgresClient
	table  string
}

func NewPostgresStore(client *database.PostgresClient, table string) *PostgresStore {
	return &PostgresStore{client: client, table: table}
}

// EnsureSchema creates the results table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			application_id TEXT PRIMARY KEY,
			customer_name  TEXT NOT NULL,
			product_type   TEXT NOT NULL,
			loan_amount    NUMERIC NOT NULL,
			outcome        TEXT NOT NULL,
			completed_at   TIMESTAMPTZ NOT NULL,
			result         JSONB NOT NULL
		)`, s.table)

	if _, err := s.client.Exec(ctx, query); err != nil {
		return errors.NewDatabaseConnectionFailedError(err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, rec *Record) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (application_id, customer_name, product_type, loan_amount, outcome, completed_at, result)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (application_id) DO UPDATE SET
			outcome      = EXCLUDED.outcome,
			completed_at = EXCLUDED.completed_at,
			result       = EXCLUDED.result`, s.table)

	_, err := s.client.Exec(ctx, query,
		rec.ApplicationID, rec.CustomerName, rec.ProductType,
		rec.LoanAmount, rec.Outcome, rec.CompletedAt, []byte(rec.Result))
	if err != nil {
		return errors.NewResultStoreFailedError(rec.ApplicationID, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, applicationID string) (*Record, error) {
	query := fmt.Sprintf(`
		SELECT application_id, customer_name, product_type, loan_amount, outcome, completed_at, result
		FROM %s WHERE application_id = $1`, s.table)

	var rec Record
	var payload []byte
	err := s.client.QueryRow(ctx, query, applicationID).Scan(
		&rec.ApplicationID, &rec.CustomerName, &rec.ProductType,
		&rec.LoanAmount, &rec.Outcome, &rec.CompletedAt, &payload)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewResultNotFoundError(applicationID)
	}
	if err != nil {
		return nil, errors.NewResultStoreFailedError(applicationID, err)
	}

	rec.Result = payload
	return &rec, nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]Summary, error) {
	query := fmt.Sprintf(`
		SELECT application_id, customer_name, product_type, loan_amount, outcome, completed_at
		FROM %s ORDER BY completed_at DESC LIMIT $1`, s.table)

	rows, err := s.client.Query(ctx, query, limit)
	if err != nil {
		return nil, errors.NewResultStoreFailedError("", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ApplicationID, &s.CustomerName, &s.ProductType,
			&s.LoanAmount, &s.Outcome, &s.CompletedAt); err != nil {
			return nil, errors.NewResultStoreFailedError("", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewResultStoreFailedError("", err)
	}
	return summaries, nil
}
