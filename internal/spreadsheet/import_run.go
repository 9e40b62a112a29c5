package spreadsheet

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"cerven-ot/internal/shared/dbtx"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Import kinds recorded on ImportRun.Kind.
const (
	KindTickets   = "tickets"
	KindInventory = "inventory"
)

// ImportRun is the audit row written once per import.
type ImportRun struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID      `gorm:"type:uuid;not null;index"`
	Kind      string         `gorm:"type:varchar(30);not null"`
	Filename  string         `gorm:"type:varchar(255)"`
	StartedBy uuid.UUID      `gorm:"type:uuid;not null"`
	Total     int            `gorm:"not null;default:0"`
	Succeeded int            `gorm:"not null;default:0"`
	Failed    int            `gorm:"not null;default:0"`
	Skipped   int            `gorm:"not null;default:0"`
	Errors    datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time
}

func (ImportRun) TableName() string {
	return "import_runs"
}

func NewImportRun(companyID, startedBy uuid.UUID, kind, filename string, s Summary) (*ImportRun, error) {
	errs := s.Errors
	if errs == nil {
		errs = []RowError{}
	}
	payload, err := json.Marshal(errs)
	if err != nil {
		return nil, err
	}
	return &ImportRun{
		ID:        uuid.New(),
		CompanyID: companyID,
		Kind:      kind,
		Filename:  filename,
		StartedBy: startedBy,
		Total:     s.Total,
		Succeeded: s.Succeeded,
		Failed:    s.Failed,
		Skipped:   s.Skipped,
		Errors:    datatypes.JSON(payload),
	}, nil
}

//go:generate mockgen -source=import_run.go -destination=mock/import_run_repo_mock.go -package=mock
type RunRepository interface {
	WithTx(tx *sql.Tx) RunRepository
	Create(ctx context.Context, run *ImportRun) error
}

type runRepository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRunRepository(db *gorm.DB) RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) WithTx(tx *sql.Tx) RunRepository {
	return &runRepository{db: r.db, tx: tx}
}

func (r *runRepository) Create(ctx context.Context, run *ImportRun) error {
	return dbtx.Conn(ctx, r.db, r.tx).Create(run).Error
}
