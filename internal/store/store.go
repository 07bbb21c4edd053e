package store

import (
	"context"
	"errors"

	"github.com/arvindnk/dataforge/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// MaxListLimit caps page sizes so a single request can never pull an
// unbounded result set.
const MaxListLimit = 100

// DefaultListLimit is applied when a list request omits limit.
const DefaultListLimit = 10

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	CreateDataset(ctx context.Context, in DatasetInput) (*models.Dataset, error)
	GetDataset(ctx context.Context, id int64) (*models.Dataset, error)
	ListDatasets(ctx context.Context, skip, limit int) ([]*models.Dataset, error)
	UpdateDataset(ctx context.Context, id int64, patch DatasetPatch) (*models.Dataset, error)
	DeleteDataset(ctx context.Context, id int64) error
	UpdateDatasets(ctx context.Context, patches []DatasetBatchPatch) ([]*models.Dataset, error)
	DeleteDatasets(ctx context.Context, ids []int64) error

	CreateJob(ctx context.Context, datasetID int64) (*models.Job, error)
	GetJob(ctx context.Context, id int64) (*models.Job, error)
	LatestJobForDataset(ctx context.Context, datasetID int64) (*models.Job, error)
	UpdateJobStatus(ctx context.Context, id int64, status string, opts ...JobUpdateOption) error
}

// DatasetInput holds the fields required to register a dataset.
type DatasetInput struct {
	Name   string
	Source string
	Format string
	Owner  *string
}

// DatasetPatch is a partial update: nil fields are left untouched.
type DatasetPatch struct {
	Name   *string `json:"name"`
	Source *string `json:"source"`
	Format *string `json:"format"`
	Owner  *string `json:"owner"`
}

// DatasetBatchPatch targets one dataset within a batch update. The patch
// fields sit alongside the id on the wire.
type DatasetBatchPatch struct {
	ID int64 `json:"id"`
	DatasetPatch
}

// JobUpdateParams collects the optional parts of a job status update.
type JobUpdateParams struct {
	Message *string
}

type JobUpdateOption func(*JobUpdateParams)

// WithMessage attaches a human-readable message to a job status update.
func WithMessage(msg string) JobUpdateOption {
	return func(p *JobUpdateParams) {
		p.Message = &msg
	}
}
