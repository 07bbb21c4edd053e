package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arvindnk/dataforge/pkg/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Users ---

func (s *PostgresStore) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash)
		 VALUES ($1, $2)
		 RETURNING id, username, password_hash, created_at, updated_at`,
		username, passwordHash,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at, updated_at
		 FROM users WHERE username = $1`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return &u, nil
}

// --- Datasets ---

func (s *PostgresStore) CreateDataset(ctx context.Context, in DatasetInput) (*models.Dataset, error) {
	var d models.Dataset
	err := s.pool.QueryRow(ctx,
		`INSERT INTO datasets (name, source, format, owner)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, name, source, format, owner, created_at, updated_at`,
		in.Name, in.Source, in.Format, in.Owner,
	).Scan(&d.ID, &d.Name, &d.Source, &d.Format, &d.Owner, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("create dataset: %w", err)
	}
	return &d, nil
}

func (s *PostgresStore) GetDataset(ctx context.Context, id int64) (*models.Dataset, error) {
	var d models.Dataset
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, source, format, owner, created_at, updated_at
		 FROM datasets WHERE id = $1`, id,
	).Scan(&d.ID, &d.Name, &d.Source, &d.Format, &d.Owner, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get dataset: %w", err)
	}
	return &d, nil
}

// ListDatasets returns datasets in insertion order. skip is clamped to 0
// and limit to [1, MaxListLimit]; a zero limit gets DefaultListLimit.
func (s *PostgresStore) ListDatasets(ctx context.Context, skip, limit int) ([]*models.Dataset, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, name, source, format, owner, created_at, updated_at
		 FROM datasets ORDER BY id LIMIT $1 OFFSET $2`, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close()

	var datasets []*models.Dataset
	for rows.Next() {
		var d models.Dataset
		if err := rows.Scan(&d.ID, &d.Name, &d.Source, &d.Format, &d.Owner,
			&d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan dataset: %w", err)
		}
		datasets = append(datasets, &d)
	}
	return datasets, rows.Err()
}

func (s *PostgresStore) UpdateDataset(ctx context.Context, id int64, patch DatasetPatch) (*models.Dataset, error) {
	d, err := updateDatasetRow(ctx, s.pool, id, patch)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrNotFound
	}
	return d, nil
}

func (s *PostgresStore) DeleteDataset(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM datasets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete dataset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateDatasets applies all patches in a single transaction: either
// every matched dataset is updated or none are. Patches referencing
// unknown ids are silently skipped.
func (s *PostgresStore) UpdateDatasets(ctx context.Context, patches []DatasetBatchPatch) ([]*models.Dataset, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin batch update: %w", err)
	}
	defer tx.Rollback(ctx)

	var updated []*models.Dataset
	for _, p := range patches {
		d, err := updateDatasetRow(ctx, tx, p.ID, p.DatasetPatch)
		if err != nil {
			return nil, err
		}
		if d != nil {
			updated = append(updated, d)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit batch update: %w", err)
	}
	return updated, nil
}

// DeleteDatasets removes every dataset whose id is in ids. Unknown ids
// are skipped; the call succeeds regardless of how many rows matched.
func (s *PostgresStore) DeleteDatasets(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM datasets WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("delete datasets: %w", err)
	}
	return nil
}

// rowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// updateDatasetRow builds a SET clause from the non-nil patch fields and
// refreshes updated_at. Returns (nil, nil) when the id does not exist.
func updateDatasetRow(ctx context.Context, q rowQuerier, id int64, patch DatasetPatch) (*models.Dataset, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}
	argIdx := 2

	if patch.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, *patch.Name)
		argIdx++
	}
	if patch.Source != nil {
		sets = append(sets, fmt.Sprintf("source = $%d", argIdx))
		args = append(args, *patch.Source)
		argIdx++
	}
	if patch.Format != nil {
		sets = append(sets, fmt.Sprintf("format = $%d", argIdx))
		args = append(args, *patch.Format)
		argIdx++
	}
	if patch.Owner != nil {
		sets = append(sets, fmt.Sprintf("owner = $%d", argIdx))
		args = append(args, *patch.Owner)
		argIdx++
	}

	query := fmt.Sprintf(
		`UPDATE datasets SET %s WHERE id = $1
		 RETURNING id, name, source, format, owner, created_at, updated_at`,
		strings.Join(sets, ", "))

	var d models.Dataset
	err := q.QueryRow(ctx, query, args...).Scan(
		&d.ID, &d.Name, &d.Source, &d.Format, &d.Owner, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("update dataset: %w", err)
	}
	return &d, nil
}

// --- Jobs ---

func (s *PostgresStore) CreateJob(ctx context.Context, datasetID int64) (*models.Job, error) {
	var j models.Job
	err := s.pool.QueryRow(ctx,
		`INSERT INTO jobs (dataset_id, status)
		 VALUES ($1, $2)
		 RETURNING id, dataset_id, status, message, created_at, updated_at`,
		datasetID, models.JobStatusPending,
	).Scan(&j.ID, &j.DatasetID, &j.Status, &j.Message, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return &j, nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id int64) (*models.Job, error) {
	var j models.Job
	err := s.pool.QueryRow(ctx,
		`SELECT id, dataset_id, status, message, created_at, updated_at
		 FROM jobs WHERE id = $1`, id,
	).Scan(&j.ID, &j.DatasetID, &j.Status, &j.Message, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &j, nil
}

// LatestJobForDataset returns the most recently created job for a dataset.
func (s *PostgresStore) LatestJobForDataset(ctx context.Context, datasetID int64) (*models.Job, error) {
	var j models.Job
	err := s.pool.QueryRow(ctx,
		`SELECT id, dataset_id, status, message, created_at, updated_at
		 FROM jobs WHERE dataset_id = $1 ORDER BY id DESC LIMIT 1`, datasetID,
	).Scan(&j.ID, &j.DatasetID, &j.Status, &j.Message, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest job for dataset: %w", err)
	}
	return &j, nil
}

var validTransitions = map[string][]string{
	models.JobStatusPending: {models.JobStatusRunning},
	models.JobStatusRunning: {models.JobStatusCompleted, models.JobStatusFailed},
}

// UpdateJobStatus advances a job along the one-directional lifecycle
// PENDING -> RUNNING -> {COMPLETED, FAILED}. Any other transition is
// rejected, so a terminal job can never re-enter an earlier state.
func (s *PostgresStore) UpdateJobStatus(ctx context.Context, id int64, status string, opts ...JobUpdateOption) error {
	params := &JobUpdateParams{}
	for _, opt := range opts {
		opt(params)
	}

	var currentStatus string
	err := s.pool.QueryRow(ctx, `SELECT status FROM jobs WHERE id = $1`, id).Scan(&currentStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get job status: %w", err)
	}

	valid := false
	for _, a := range validTransitions[currentStatus] {
		if a == status {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid job status transition: %s -> %s", currentStatus, status)
	}

	now := time.Now().UTC()
	query := `UPDATE jobs SET status = $2, updated_at = $3`
	args := []any{id, status, now}

	if params.Message != nil {
		query += `, message = $4`
		args = append(args, *params.Message)
	}
	query += ` WHERE id = $1`

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	return nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
